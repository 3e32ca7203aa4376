package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Query represents one named report backed by a SQL statement
type Query struct {
	Name   string
	SQL    string
	Args   []interface{}
	Tables []string
}

// Result represents the tabular result of a report query
type Result struct {
	Columns []string
	Rows    []map[string]interface{}
}

// ResultSet maps report names to their results
type ResultSet map[string]*Result

// RunConfig represents the resolved configuration of a run
type RunConfig struct {
	Driver   string
	Host     string
	Database string
	User     string
	Password string
	Port     string
	DSN      string
	Save     bool
	Show     bool
	Limit    int
	OutDir   string
	LogLevel string
	EnvFile  string
}

// MissingFields represents the aggregate counts of the data quality report
type MissingFields struct {
	Total        int64
	MissingImage int64
	MissingTitle int64
	MissingEAN   int64
}

// EmptyResult returns a result with no columns and no rows
func EmptyResult() *Result {
	return &Result{}
}

// Empty reports whether the result is absent or has no rows
func (r *Result) Empty() bool {
	return r == nil || len(r.Rows) == 0
}

// Len returns the number of rows
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// Value returns the raw value of a column in a row, or nil
func (r *Result) Value(row int, column string) interface{} {
	if r == nil || row < 0 || row >= len(r.Rows) {
		return nil
	}
	return r.Rows[row][column]
}

// HasValues reports whether at least one row has a non-null value in column
func (r *Result) HasValues(column string) bool {
	if r == nil {
		return false
	}
	for _, row := range r.Rows {
		if row[column] != nil {
			return true
		}
	}
	return false
}

// Floats returns the numeric values of a column, skipping nulls and values that are not numbers
func (r *Result) Floats(column string) []float64 {
	if r == nil {
		return nil
	}
	values := make([]float64, 0, len(r.Rows))
	for _, row := range r.Rows {
		if f, ok := ToFloat(row[column]); ok {
			values = append(values, f)
		}
	}
	return values
}

// Strings returns the values of a column formatted as strings. Nulls become empty strings.
func (r *Result) Strings(column string) []string {
	if r == nil {
		return nil
	}
	values := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		values = append(values, ToString(row[column]))
	}
	return values
}

// ToFloat converts a driver value to float64
func ToFloat(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int16:
		return float64(val), true
	case int:
		return float64(val), true
	case uint64:
		return float64(val), true
	case []byte:
		return ToFloat(string(val))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToInt64 converts a driver value to int64, truncating fractional values
func ToInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	default:
		f, ok := ToFloat(v)
		if !ok {
			return 0, false
		}
		return int64(f), true
	}
}

// ToTime converts a driver value to time.Time
func ToTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case []byte:
		return ToTime(string(val))
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, val); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ToString formats a driver value as a string
func ToString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// MissingFieldsFromResult reads the first row of the missing core fields report
func MissingFieldsFromResult(r *Result) (MissingFields, bool) {
	if r.Empty() {
		return MissingFields{}, false
	}
	row := r.Rows[0]
	var m MissingFields
	m.Total, _ = ToInt64(row["total"])
	m.MissingImage, _ = ToInt64(row["missing_image"])
	m.MissingTitle, _ = ToInt64(row["missing_title"])
	m.MissingEAN, _ = ToInt64(row["missing_ean"])
	return m, true
}
