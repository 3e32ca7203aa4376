package connector

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// DatabaseConnector handles database connection and query execution
type DatabaseConnector struct {
	Driver   string
	Host     string
	User     string
	Password string
	Database string
	Port     string
	DSN      string
	DB       *sql.DB
	Logger   *logrus.Logger
}

// NewDatabaseConnector creates a new database connector from a resolved run configuration
func NewDatabaseConnector(cfg models.RunConfig, logger *logrus.Logger) *DatabaseConnector {
	driver := cfg.Driver
	if driver == "" {
		driver = catalog.DriverPostgres
	}

	return &DatabaseConnector{
		Driver:   driver,
		Host:     cfg.Host,
		User:     cfg.User,
		Password: cfg.Password,
		Database: cfg.Database,
		Port:     cfg.Port,
		DSN:      cfg.DSN,
		Logger:   logger,
	}
}

// DataSourceName builds the driver specific connection string. An explicit DSN wins.
func (dc *DatabaseConnector) DataSourceName() string {
	if dc.DSN != "" {
		return dc.DSN
	}

	switch dc.Driver {
	case catalog.DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", dc.User, dc.Password, dc.Host, dc.Port, dc.Database)
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(dc.User, dc.Password),
			Host:   dc.Host + ":" + dc.Port,
			Path:   "/" + dc.Database,
		}
		return u.String()
	}
}

// sqlDriverName maps the configured driver to the registered database/sql driver
func (dc *DatabaseConnector) sqlDriverName() string {
	if dc.Driver == catalog.DriverMySQL {
		return "mysql"
	}
	return "pgx"
}

// Connect opens the database handle. Only a failure to open the handle is
// returned; an unreachable server is logged and left to fail per query.
func (dc *DatabaseConnector) Connect(ctx context.Context) error {
	db, err := sql.Open(dc.sqlDriverName(), dc.DataSourceName())
	if err != nil {
		dc.Logger.Errorf("Error opening %s database handle: %v", dc.Driver, err)
		return fmt.Errorf("open %s database: %w", dc.Driver, err)
	}
	dc.DB = db

	if err := db.PingContext(ctx); err != nil {
		dc.Logger.Warningf("Error pinging %s database %s: %v", dc.Driver, dc.Database, err)
		return nil
	}

	dc.Logger.Infof("Connected to %s database: %s", dc.Driver, dc.Database)
	return nil
}

// Disconnect closes the database connection
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB != nil {
		err := dc.DB.Close()
		if err != nil {
			dc.Logger.Errorf("Error closing database connection: %v", err)
		} else {
			dc.Logger.Debugf("%s connection closed", dc.Driver)
		}
	}
}

// ExecuteQuery executes a SQL query and returns the results
func (dc *DatabaseConnector) ExecuteQuery(ctx context.Context, query string, params ...interface{}) (*models.Result, error) {
	if dc.DB == nil {
		if err := dc.Connect(ctx); err != nil {
			return nil, err
		}
	}

	rows, err := dc.DB.QueryContext(ctx, query, params...)
	if err != nil {
		dc.Logger.Debugf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		dc.Logger.Debugf("Error getting columns: %v", err)
		return nil, err
	}

	result := &models.Result{Columns: columns}

	for rows.Next() {
		// Create a slice of interface{} to hold the values
		values := make([]interface{}, len(columns))
		// Create a slice of pointers to the values
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			dc.Logger.Debugf("Error scanning row: %v", err)
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			// Convert []byte to string for text and decimal fields
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}

		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		dc.Logger.Debugf("Error iterating rows: %v", err)
		return nil, err
	}

	return result, nil
}
