package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	levelStr := logLevel
	if levelStr == "" {
		levelStr = "info"
	}

	// Parse log level
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from an optional .env file.
// Variables already set in the environment are not overridden.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); err != nil {
		logger.Debugf("No %s file found, using existing environment variables", envFile)
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Debugf("Loaded environment variables from %s", envFile)

	// Log the connection variables (for debugging)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			if !strings.HasPrefix(env, "PG") && !strings.HasPrefix(env, "MYSQL_") && !strings.HasPrefix(env, "DATABASE_URL=") {
				continue
			}
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 {
				continue
			}
			// Mask secrets
			if strings.HasSuffix(parts[0], "PASSWORD") || parts[0] == "DATABASE_URL" {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], parts[1])
			}
		}
	}

	return true
}

// MissingPercentages returns the share of products missing an image, a title
// and an EAN, in percent. All shares are zero when there are no products.
func MissingPercentages(m models.MissingFields) (image, title, ean float64) {
	if m.Total == 0 {
		return 0, 0, 0
	}
	pct := func(x int64) float64 { return 100 * float64(x) / float64(m.Total) }
	return pct(m.MissingImage), pct(m.MissingTitle), pct(m.MissingEAN)
}

// PrintDataQuality prints the data quality snapshot built from the missing core fields report.
// Nothing is printed when the report has no rows.
func PrintDataQuality(w io.Writer, result *models.Result, outDir string) bool {
	m, ok := models.MissingFieldsFromResult(result)
	if !ok {
		return false
	}
	image, title, ean := MissingPercentages(m)

	fmt.Fprintln(w, "=== Data Quality Snapshot ===")
	fmt.Fprintf(w, "Total products : %s\n", humanize.Comma(m.Total))
	fmt.Fprintf(w, "Missing image  : %s (%.1f%%)\n", humanize.Comma(m.MissingImage), image)
	fmt.Fprintf(w, "Missing title  : %s (%.1f%%)\n", humanize.Comma(m.MissingTitle), title)
	fmt.Fprintf(w, "Missing EAN    : %s (%.1f%%)\n", humanize.Comma(m.MissingEAN), ean)
	fmt.Fprintf(w, "Figures saved  : ./%s (if --save used)\n", strings.TrimPrefix(outDir, "./"))
	return true
}

// PrintFetchSummary prints one line per report with its row count and status
func PrintFetchSummary(w io.Writer, queries []models.Query, results models.ResultSet, failures map[string]error) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("REPORTS")
	t.AppendHeader(table.Row{"#", "Report", "Rows", "Status"})

	failed := 0
	for i, q := range queries {
		status := "ok"
		if err, ok := failures[q.Name]; ok {
			status = "failed: " + err.Error()
			failed++
		} else if results[q.Name].Empty() {
			status = "empty"
		}
		t.AppendRow(table.Row{i + 1, q.Name, humanize.Comma(int64(results[q.Name].Len())), status})
	}

	t.AppendFooter(table.Row{"", "Total", len(queries), fmt.Sprintf("%d failed", failed)})
	t.Render()
}
