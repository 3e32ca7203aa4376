package analyzer

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// QueryExecutor executes a single query and returns its tabular result
type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query string, params ...interface{}) (*models.Result, error)
}

// SchemaAnalyzer checks that the tables each report reads exist before the reports run
type SchemaAnalyzer struct {
	DB     QueryExecutor
	Driver string
	Tables map[string]bool
	Logger *logrus.Logger
}

// NewSchemaAnalyzer creates a new schema analyzer
func NewSchemaAnalyzer(db QueryExecutor, driver string, logger *logrus.Logger) *SchemaAnalyzer {
	return &SchemaAnalyzer{
		DB:     db,
		Driver: driver,
		Tables: make(map[string]bool),
		Logger: logger,
	}
}

// tablesQuery lists the base tables of the current schema
func (sa *SchemaAnalyzer) tablesQuery() string {
	if sa.Driver == catalog.DriverMySQL {
		return `
			SELECT table_name AS table_name
			FROM information_schema.tables
			WHERE table_schema = DATABASE()
			AND table_type = 'BASE TABLE'
			ORDER BY table_name
		`
	}
	return `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
}

// AnalyzeSchema loads the table names of the current schema
func (sa *SchemaAnalyzer) AnalyzeSchema(ctx context.Context) error {
	result, err := sa.DB.ExecuteQuery(ctx, sa.tablesQuery())
	if err != nil {
		sa.Logger.Warningf("Error getting tables: %v", err)
		return err
	}

	sa.Tables = make(map[string]bool, result.Len())
	for _, name := range result.Strings("table_name") {
		if name != "" {
			sa.Tables[name] = true
		}
	}

	sa.Logger.Debugf("Found %d tables in current schema", len(sa.Tables))
	return nil
}

// MissingTables returns, per report, the tables it reads that are not in the schema
func (sa *SchemaAnalyzer) MissingTables(queries []models.Query) map[string][]string {
	missing := make(map[string][]string)
	for _, q := range queries {
		for _, table := range q.Tables {
			if !sa.Tables[table] {
				missing[q.Name] = append(missing[q.Name], table)
			}
		}
		sort.Strings(missing[q.Name])
	}
	return missing
}

// CheckReports analyzes the schema and logs every report that is expected to
// fail. It never prevents a report from running; a failing analysis is logged
// and yields no findings.
func (sa *SchemaAnalyzer) CheckReports(ctx context.Context, queries []models.Query) map[string][]string {
	if err := sa.AnalyzeSchema(ctx); err != nil {
		sa.Logger.Warning("Skipping schema preflight")
		return nil
	}

	missing := sa.MissingTables(queries)
	for _, q := range queries {
		if tables, ok := missing[q.Name]; ok {
			sa.Logger.Warningf("%s reads missing table(s): %v", q.Name, tables)
		}
	}
	return missing
}
