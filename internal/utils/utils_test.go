package utils

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/vitebski/tyre-explorer/pkg/models"
)

func TestSetupLogging(t *testing.T) {
	// Test with default log level
	logger := SetupLogging("")
	if logger == nil {
		t.Fatal("Expected logger to be created, got nil")
	}
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected default log level to be info, got %s", logger.Level)
	}

	logger = SetupLogging("debug")
	if logger.Level != logrus.DebugLevel {
		t.Errorf("Expected log level to be debug, got %s", logger.Level)
	}

	logger = SetupLogging("warn")
	if logger.Level != logrus.WarnLevel {
		t.Errorf("Expected log level to be warn, got %s", logger.Level)
	}

	// Test with invalid log level (should default to info)
	logger = SetupLogging("invalid")
	if logger.Level != logrus.InfoLevel {
		t.Errorf("Expected log level to be info for invalid input, got %s", logger.Level)
	}
}

func TestLoadEnvironmentVariables(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests

	if LoadEnvironmentVariables(filepath.Join(t.TempDir(), "missing.env"), logger) {
		t.Error("Expected a missing env file not to be loaded")
	}

	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("TYRE_EXPLORER_TEST_HOST=db.internal\n"), 0o600); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("TYRE_EXPLORER_TEST_HOST", "")
	os.Unsetenv("TYRE_EXPLORER_TEST_HOST")

	if !LoadEnvironmentVariables(envFile, logger) {
		t.Fatal("Expected env file to be loaded")
	}
	if got := os.Getenv("TYRE_EXPLORER_TEST_HOST"); got != "db.internal" {
		t.Errorf("Expected TYRE_EXPLORER_TEST_HOST to be 'db.internal', got '%s'", got)
	}
}

func TestMissingPercentages(t *testing.T) {
	image, title, ean := MissingPercentages(models.MissingFields{Total: 30000, MissingImage: 150, MissingTitle: 0, MissingEAN: 300})
	if image != 0.5 || title != 0 || ean != 1.0 {
		t.Errorf("Expected 0.5/0/1.0, got %v/%v/%v", image, title, ean)
	}

	// No division by zero
	image, title, ean = MissingPercentages(models.MissingFields{Total: 0, MissingImage: 5, MissingTitle: 3, MissingEAN: 1})
	if image != 0 || title != 0 || ean != 0 {
		t.Errorf("Expected all zero percentages for zero total, got %v/%v/%v", image, title, ean)
	}
}

func TestPrintDataQuality(t *testing.T) {
	result := &models.Result{
		Columns: []string{"missing_image", "missing_title", "missing_ean", "total"},
		Rows: []map[string]interface{}{
			{"missing_image": int64(150), "missing_title": int64(0), "missing_ean": int64(300), "total": int64(30000)},
		},
	}

	var buf bytes.Buffer
	if !PrintDataQuality(&buf, result, "figs") {
		t.Fatal("Expected summary to be printed")
	}

	expected := []string{
		"=== Data Quality Snapshot ===",
		"Total products : 30,000",
		"Missing image  : 150 (0.5%)",
		"Missing title  : 0 (0.0%)",
		"Missing EAN    : 300 (1.0%)",
		"Figures saved  : ./figs (if --save used)",
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d:\n%s", len(expected), len(lines), buf.String())
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected '%s', got '%s'", i, expected[i], lines[i])
		}
	}
}

func TestPrintDataQualityZeroTotal(t *testing.T) {
	result := &models.Result{
		Rows: []map[string]interface{}{
			{"missing_image": int64(0), "missing_title": int64(0), "missing_ean": int64(0), "total": int64(0)},
		},
	}

	var buf bytes.Buffer
	PrintDataQuality(&buf, result, "figs")
	if !strings.Contains(buf.String(), "Missing EAN    : 0 (0.0%)") {
		t.Errorf("Expected zero percentages, got:\n%s", buf.String())
	}
}

func TestPrintDataQualityEmpty(t *testing.T) {
	var buf bytes.Buffer
	if PrintDataQuality(&buf, models.EmptyResult(), "figs") {
		t.Error("Expected nothing to be printed for an empty result")
	}
	if PrintDataQuality(&buf, nil, "figs") {
		t.Error("Expected nothing to be printed for an absent result")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got:\n%s", buf.String())
	}
}

func TestPrintFetchSummary(t *testing.T) {
	queries := []models.Query{{Name: "Products by Type"}, {Name: "Stock Distribution"}, {Name: "Tyres by Season"}}
	results := models.ResultSet{
		"Products by Type":   {Rows: []map[string]interface{}{{"cnt": int64(1)}}},
		"Stock Distribution": models.EmptyResult(),
		"Tyres by Season":    models.EmptyResult(),
	}
	failures := map[string]error{"Stock Distribution": errors.New("timeout")}

	var buf bytes.Buffer
	PrintFetchSummary(&buf, queries, results, failures)
	// go-pretty upper-cases headers and footers
	out := strings.ToLower(buf.String())

	for _, want := range []string{"products by type", "failed: timeout", "empty", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain '%s', got:\n%s", want, out)
		}
	}
}
