package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vitebski/tyre-explorer/internal/analyzer"
	"github.com/vitebski/tyre-explorer/internal/catalog"
	"github.com/vitebski/tyre-explorer/internal/config"
	"github.com/vitebski/tyre-explorer/internal/connector"
	"github.com/vitebski/tyre-explorer/internal/fetcher"
	"github.com/vitebski/tyre-explorer/internal/renderer"
	"github.com/vitebski/tyre-explorer/internal/utils"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

func main() {
	var (
		cfg           models.RunConfig
		printTable    bool
		skipPreflight bool
	)

	rootCmd := &cobra.Command{
		Use:   "tyre-explorer",
		Short: "Visualize interesting slices of the tyre catalog database",
		Long: `Tyre Explorer

Runs a fixed set of analytical queries against the tyre catalog database,
renders each result as a chart (saved as PNG and/or shown in the system
image viewer) and prints a short data quality snapshot.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			// Environment first, so the .env file can feed the log level too
			bootLogger := utils.SetupLogging(os.Getenv(config.LogLevelEnv))
			utils.LoadEnvironmentVariables(cfg.EnvFile, bootLogger)

			config.ApplyEnvDefaults(cmd.Flags(), &cfg)
			logger := utils.SetupLogging(cfg.LogLevel)

			if cfg.Driver != catalog.DriverPostgres && cfg.Driver != catalog.DriverMySQL {
				return fmt.Errorf("unsupported driver %q (want %s or %s)", cfg.Driver, catalog.DriverPostgres, catalog.DriverMySQL)
			}
			cmd.SilenceUsage = true

			db := connector.NewDatabaseConnector(cfg, logger)
			if err := db.Connect(ctx); err != nil {
				logger.Errorf("Failed to open database: %v", err)
				return err
			}
			defer db.Disconnect()

			queries := catalog.BuildQueries(cfg.Limit, cfg.Driver)

			if !skipPreflight {
				analyzer.NewSchemaAnalyzer(db, cfg.Driver, logger).CheckReports(ctx, queries)
			}

			results, failures := fetcher.NewFetcher(db, logger).FetchAll(ctx, queries)
			if printTable {
				utils.PrintFetchSummary(os.Stdout, queries, results, failures)
			}

			r := renderer.NewRenderer(renderer.Options{
				OutDir: cfg.OutDir,
				Save:   cfg.Save,
				Show:   cfg.Show,
				Out:    os.Stdout,
			}, logger)
			written := r.RenderAll(results)
			if cfg.Save {
				logger.Infof("Saved %d figure(s) to %s", len(written), cfg.OutDir)
			}

			utils.PrintDataQuality(os.Stdout, results[catalog.MissingCoreFields], cfg.OutDir)
			return nil
		},
	}

	rootCmd.SilenceErrors = true

	// Define flags
	config.RegisterFlags(rootCmd.Flags(), &cfg)
	rootCmd.Flags().BoolVarP(&printTable, "table", "t", false, "Print a per-report fetch status table")
	rootCmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Do not check the schema for the tables each report reads")

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
