// Package fetcher runs the report catalog against a database, isolating each report.
package fetcher

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// QueryExecutor executes a single query and returns its tabular result
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query string, params ...interface{}) (*models.Result, error)
}

// Fetcher runs report queries one after another
type Fetcher struct {
	Executor QueryExecutor
	Logger   *logrus.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(executor QueryExecutor, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		Executor: executor,
		Logger:   logger,
	}
}

// FetchAll runs every query in order. A failing query is logged with its
// report name and yields an empty result; the remaining queries still run.
// The returned error map holds the failure of each report that failed.
func (f *Fetcher) FetchAll(ctx context.Context, queries []models.Query) (models.ResultSet, map[string]error) {
	results := make(models.ResultSet, len(queries))
	failures := make(map[string]error)

	for _, q := range queries {
		result, err := f.fetch(ctx, q)
		if err != nil {
			f.Logger.Warningf("%s failed: %v", q.Name, err)
			failures[q.Name] = err
			results[q.Name] = models.EmptyResult()
			continue
		}

		f.Logger.Debugf("%s returned %d row(s)", q.Name, result.Len())
		results[q.Name] = result
	}

	return results, failures
}

// fetch runs one query and turns a panic in the driver into an error
func (f *Fetcher) fetch(ctx context.Context, q models.Query) (result *models.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, &PanicError{Value: r}
		}
	}()

	result, err = f.Executor.ExecuteQuery(ctx, q.SQL, q.Args...)
	if err == nil && result == nil {
		result = models.EmptyResult()
	}
	return result, err
}
