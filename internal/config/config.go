package config

import (
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// Flag names shared by the command line and the resolver
const (
	FlagDriver   = "driver"
	FlagHost     = "host"
	FlagDatabase = "db"
	FlagUser     = "user"
	FlagPassword = "pwd"
	FlagPort     = "port"
	FlagDSN      = "dsn"
	FlagLogLevel = "log-level"
	FlagLimit    = "limit"
)

// Environment variables read when the matching flag is not given
const (
	LogLevelEnv = "EXPLORER_LOG_LEVEL"
	LimitEnv    = "EXPLORER_LIMIT"
)

// envDefault names the environment variable and fallback for one flag
type envDefault struct {
	flag     string
	env      string
	fallback string
}

var postgresDefaults = []envDefault{
	{FlagHost, "PGHOST", "localhost"},
	{FlagDatabase, "PGDATABASE", "tyres"},
	{FlagUser, "PGUSER", "tyres"},
	{FlagPassword, "PGPASSWORD", "tyres"},
	{FlagPort, "PGPORT", "5432"},
	{FlagDSN, "DATABASE_URL", ""},
}

var mysqlDefaults = []envDefault{
	{FlagHost, "MYSQL_HOST", "localhost"},
	{FlagDatabase, "MYSQL_DATABASE", "tyres"},
	{FlagUser, "MYSQL_USER", "root"},
	{FlagPassword, "MYSQL_PASSWORD", ""},
	{FlagPort, "MYSQL_PORT", "3306"},
}

// RegisterFlags defines the run configuration flags on a flag set
func RegisterFlags(fs *pflag.FlagSet, cfg *models.RunConfig) {
	fs.StringVar(&cfg.Driver, FlagDriver, catalog.DriverPostgres, "Database driver (postgres, mysql)")
	fs.StringVarP(&cfg.Host, FlagHost, "H", "", "Database host (default: $PGHOST or localhost)")
	fs.StringVarP(&cfg.Database, FlagDatabase, "d", "", "Database name (default: $PGDATABASE or tyres)")
	fs.StringVarP(&cfg.User, FlagUser, "u", "", "Database user (default: $PGUSER or tyres)")
	fs.StringVarP(&cfg.Password, FlagPassword, "p", "", "Database password (default: $PGPASSWORD or tyres)")
	fs.StringVarP(&cfg.Port, FlagPort, "P", "", "Database port (default: $PGPORT or 5432)")
	fs.StringVar(&cfg.DSN, FlagDSN, "", "Full connection string, overrides the individual connection flags (default: $DATABASE_URL)")
	fs.BoolVar(&cfg.Save, "save", false, "Save figures to the output directory")
	fs.BoolVar(&cfg.Show, "show", false, "Show figures in the system image viewer")
	fs.IntVar(&cfg.Limit, FlagLimit, catalog.DefaultLimit, "Row limit for heavy queries")
	fs.StringVar(&cfg.OutDir, "out-dir", "figs", "Directory figures are saved to")
	fs.StringVarP(&cfg.EnvFile, "env-file", "e", ".env", "Path to .env file")
	fs.StringVarP(&cfg.LogLevel, FlagLogLevel, "l", "", "Log level (debug, info, warn, error)")
}

// ApplyEnvDefaults fills every connection field whose flag was not set
// explicitly from the environment, then from the documented fallback.
func ApplyEnvDefaults(fs *pflag.FlagSet, cfg *models.RunConfig) {
	defaults := postgresDefaults
	if cfg.Driver == catalog.DriverMySQL {
		defaults = mysqlDefaults
	}

	targets := map[string]*string{
		FlagHost:     &cfg.Host,
		FlagDatabase: &cfg.Database,
		FlagUser:     &cfg.User,
		FlagPassword: &cfg.Password,
		FlagPort:     &cfg.Port,
		FlagDSN:      &cfg.DSN,
	}

	for _, d := range defaults {
		if flagChanged(fs, d.flag) {
			continue
		}
		*targets[d.flag] = getEnvOrDefault(d.env, d.fallback)
	}

	if !flagChanged(fs, FlagLogLevel) && cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv(LogLevelEnv)
	}
	if !flagChanged(fs, FlagLimit) {
		cfg.Limit = GetEnvInt(LimitEnv, cfg.Limit)
	}
}

func flagChanged(fs *pflag.FlagSet, name string) bool {
	return fs != nil && fs.Changed(name)
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer value from an environment variable
func GetEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
