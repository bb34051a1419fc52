package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ConvertXLSXToCSV writes the first sheet of a workbook out as CSV so
// spreadsheet drops can run through the CSV pipelines unchanged. The
// sheet's first row becomes the CSV header. Short rows are padded to
// the header width because the workbook reader drops trailing empty
// cells, and a ragged CSV fails column counting downstream. Fully
// empty rows are phantom formatting artifacts and are skipped.
func ConvertXLSXToCSV(xlsxPath, csvPath string) error {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("failed to open workbook %s: %w", xlsxPath, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", xlsxPath)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	defer rows.Close()

	out, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", csvPath, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)

	width := 0
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("failed to read row from %s: %w", xlsxPath, err)
		}
		if emptyRow(record) {
			continue
		}

		if width == 0 {
			width = len(record)
		}
		for len(record) < width {
			record = append(record, "")
		}
		if len(record) > width {
			return fmt.Errorf("row in %s has %d cells but the header has %d", xlsxPath, len(record), width)
		}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", csvPath, err)
		}
	}
	if err := rows.Error(); err != nil {
		return fmt.Errorf("failed to iterate rows in %s: %w", xlsxPath, err)
	}

	w.Flush()
	return w.Error()
}

func emptyRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
