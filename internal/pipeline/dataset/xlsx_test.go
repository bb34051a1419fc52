package dataset

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestConvertXLSXToCSV(t *testing.T) {
	dir := t.TempDir()
	xlsxPath := filepath.Join(dir, "20250801_catalog.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	// Row 3 stays empty; the converter must skip it. The last row is
	// short because the workbook reader drops trailing empty cells.
	rows := map[string][]interface{}{
		"A1": {"sku_id", "category", "unit_cost"},
		"A2": {"SKU-0001", "Electronics", 25.5},
		"A4": {"SKU-0002", "Food"},
	}
	for cell, row := range rows {
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow %s: %v", cell, err)
		}
	}
	if err := f.SaveAs(xlsxPath); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	csvPath := filepath.Join(dir, "20250801_catalog.csv")
	if err := ConvertXLSXToCSV(xlsxPath, csvPath); err != nil {
		t.Fatalf("ConvertXLSXToCSV: %v", err)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatalf("open converted csv: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read converted csv: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 rows after skipping the empty one, got %d", len(records))
	}
	if got := records[0][0]; got != "sku_id" {
		t.Errorf("header[0] = %q, want sku_id", got)
	}
	for i, rec := range records {
		if len(rec) != 3 {
			t.Errorf("row %d has %d cells, want 3", i, len(rec))
		}
	}
	if got := records[2][2]; got != "" {
		t.Errorf("padded cell = %q, want empty", got)
	}
	if got := records[1][2]; got != "25.5" {
		t.Errorf("unit_cost cell = %q, want 25.5", got)
	}
}
