// Package dataset implements the concrete ingestion pipelines for the
// two dataset shapes the service consumes: catalog files and daily
// sales files. Both accept loosely formatted CSV exports and emit
// canonical rows for the aggregator.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultDateLayout = "20060102"

// Config holds the shared settings for dataset pipelines.
type Config struct {
	// InputDateFormat is the Go layout of the date prefix in incoming
	// filenames, e.g. 20060102 for 20250801_catalog.csv.
	InputDateFormat string
}

func (c Config) dateLayout() string {
	if c.InputDateFormat == "" {
		return defaultDateLayout
	}
	return c.InputDateFormat
}

// snapshotDateFromFilename extracts the leading date from a filename,
// accepting both 20250801.csv and 20250801_catalog_main.csv forms.
func snapshotDateFromFilename(layout, filename string) (time.Time, error) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if len(base) < len(layout) {
		return time.Time{}, fmt.Errorf("filename %s does not contain date with layout %s", filename, layout)
	}

	return time.Parse(layout, base[:len(layout)])
}

// validateCSVFile performs basic validation on the input file.
func validateCSVFile(inputFile string) error {
	info, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", inputFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", inputFile)
	}
	ext := strings.ToLower(filepath.Ext(inputFile))
	if ext != ".csv" {
		return fmt.Errorf("unsupported file extension %s for %s", ext, inputFile)
	}
	return nil
}

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// columnIndexer resolves column positions by any of several accepted
// header spellings.
func columnIndexer(header []string) func(names ...string) int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = normalizeColumnName(h)
	}

	return func(names ...string) int {
		for _, name := range names {
			target := normalizeColumnName(name)
			for i, h := range normalized {
				if h == target {
					return i
				}
			}
		}
		return -1
	}
}

func getField(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func parseFloatField(record []string, idx int) float64 {
	v := getField(record, idx)
	if v == "" {
		return 0
	}
	v = strings.ReplaceAll(v, ",", "")
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func parseIntField(record []string, idx int) int {
	return int(parseFloatField(record, idx))
}

// parseRowDate tries the formats sales exports actually arrive in.
func parseRowDate(value string) (time.Time, bool) {
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"02/01/2006",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
