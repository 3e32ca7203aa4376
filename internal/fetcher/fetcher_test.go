package fetcher

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/internal/connector"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

func TestFetchAllIsolatesFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	logger, hook := test.NewNullLogger()
	dc := &connector.DatabaseConnector{Driver: catalog.DriverPostgres, DB: db, Logger: logger}

	queries := []models.Query{
		{Name: catalog.ProductsByType, SQL: "SELECT product_type, cnt FROM a"},
		{Name: catalog.StockDistribution, SQL: "SELECT stock FROM offer LIMIT $1", Args: []interface{}{10}},
		{Name: catalog.TyresBySeason, SQL: "SELECT season, cnt FROM b"},
	}

	mock.ExpectQuery(regexp.QuoteMeta(queries[0].SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"product_type", "cnt"}).AddRow("TYRE", int64(30000)))
	mock.ExpectQuery(regexp.QuoteMeta(queries[1].SQL)).WithArgs(10).
		WillReturnError(errors.New(`relation "offer" does not exist`))
	mock.ExpectQuery(regexp.QuoteMeta(queries[2].SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"season", "cnt"}).AddRow("Summer", int64(10)).AddRow("Winter", int64(5)))

	results, failures := NewFetcher(dc, logger).FetchAll(context.Background(), queries)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results[catalog.ProductsByType].Len())
	assert.True(t, results[catalog.StockDistribution].Empty())
	assert.Equal(t, 2, results[catalog.TyresBySeason].Len())

	require.Len(t, failures, 1)
	assert.Contains(t, failures[catalog.StockDistribution].Error(), "does not exist")

	var warnings []*logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel {
			warnings = append(warnings, entry)
		}
	}
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, catalog.StockDistribution)
	assert.Contains(t, warnings[0].Message, `relation "offer" does not exist`)

	assert.NoError(t, mock.ExpectationsWereMet())
}

type panickingExecutor struct{}

func (panickingExecutor) ExecuteQuery(ctx context.Context, query string, params ...interface{}) (*models.Result, error) {
	panic("driver exploded")
}

func TestFetchAllRecoversPanics(t *testing.T) {
	logger, hook := test.NewNullLogger()
	queries := []models.Query{{Name: catalog.MissingCoreFields, SQL: "SELECT 1"}}

	results, failures := NewFetcher(panickingExecutor{}, logger).FetchAll(context.Background(), queries)

	assert.True(t, results[catalog.MissingCoreFields].Empty())
	var panicErr *PanicError
	assert.ErrorAs(t, failures[catalog.MissingCoreFields], &panicErr)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, catalog.MissingCoreFields)
}

type nilExecutor struct{}

func (nilExecutor) ExecuteQuery(ctx context.Context, query string, params ...interface{}) (*models.Result, error) {
	return nil, nil
}

func TestFetchAllNilResult(t *testing.T) {
	logger, _ := test.NewNullLogger()
	queries := []models.Query{{Name: catalog.ProductsByBrand, SQL: "SELECT 1"}}

	results, failures := NewFetcher(nilExecutor{}, logger).FetchAll(context.Background(), queries)

	assert.Empty(t, failures)
	require.NotNil(t, results[catalog.ProductsByBrand])
	assert.True(t, results[catalog.ProductsByBrand].Empty())
}
