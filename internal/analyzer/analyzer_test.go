package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// MockDatabaseConnector is a mock implementation of the QueryExecutor
type MockDatabaseConnector struct {
	ExecuteQueryFunc func(query string, params ...interface{}) (*models.Result, error)
}

func (m *MockDatabaseConnector) ExecuteQuery(ctx context.Context, query string, params ...interface{}) (*models.Result, error) {
	return m.ExecuteQueryFunc(query, params...)
}

func tablesResult(names ...string) *models.Result {
	result := &models.Result{Columns: []string{"table_name"}}
	for _, name := range names {
		result.Rows = append(result.Rows, map[string]interface{}{"table_name": name})
	}
	return result
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestNewSchemaAnalyzer(t *testing.T) {
	db := &MockDatabaseConnector{}
	logger := quietLogger()

	analyzer := NewSchemaAnalyzer(db, catalog.DriverPostgres, logger)

	if analyzer == nil {
		t.Fatal("Expected analyzer to be created, got nil")
	}
	if analyzer.DB != db {
		t.Error("Expected analyzer.DB to be the mock connector")
	}
	if analyzer.Logger != logger {
		t.Error("Expected analyzer.Logger to be the test logger")
	}
	if analyzer.Tables == nil {
		t.Error("Expected analyzer.Tables to be initialized")
	}
}

func TestCheckReports(t *testing.T) {
	db := &MockDatabaseConnector{
		ExecuteQueryFunc: func(query string, params ...interface{}) (*models.Result, error) {
			return tablesResult("product", "brand", "offer", "product_tyres", "dimension", "season"), nil
		},
	}

	analyzer := NewSchemaAnalyzer(db, catalog.DriverPostgres, quietLogger())
	missing := analyzer.CheckReports(context.Background(), catalog.BuildQueries(10, catalog.DriverPostgres))

	if len(missing) != 1 {
		t.Fatalf("Expected exactly one report with missing tables, got %v", missing)
	}
	tables := missing[catalog.PartnerPriceDelta]
	if len(tables) != 1 || tables[0] != "partner_price" {
		t.Errorf("Expected '%s' to miss partner_price, got %v", catalog.PartnerPriceDelta, tables)
	}
}

func TestCheckReportsAllMissing(t *testing.T) {
	db := &MockDatabaseConnector{
		ExecuteQueryFunc: func(query string, params ...interface{}) (*models.Result, error) {
			return tablesResult(), nil
		},
	}

	analyzer := NewSchemaAnalyzer(db, catalog.DriverPostgres, quietLogger())
	queries := catalog.BuildQueries(10, catalog.DriverPostgres)
	missing := analyzer.CheckReports(context.Background(), queries)

	if len(missing) != len(queries) {
		t.Errorf("Expected every report to miss tables, got %d of %d", len(missing), len(queries))
	}
	brand := missing[catalog.ProductsByBrand]
	if len(brand) != 2 || brand[0] != "brand" || brand[1] != "product" {
		t.Errorf("Expected sorted missing tables [brand product], got %v", brand)
	}
}

func TestCheckReportsQueryError(t *testing.T) {
	db := &MockDatabaseConnector{
		ExecuteQueryFunc: func(query string, params ...interface{}) (*models.Result, error) {
			return nil, errors.New("connection refused")
		},
	}

	analyzer := NewSchemaAnalyzer(db, catalog.DriverMySQL, quietLogger())
	if missing := analyzer.CheckReports(context.Background(), catalog.BuildQueries(10, catalog.DriverMySQL)); missing != nil {
		t.Errorf("Expected no findings when the schema cannot be read, got %v", missing)
	}
}
