package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestCatalogPipeline_Transform(t *testing.T) {
	content := "SKU, Category ,Sales Velocity,Turnover Rate,Unit Cost,Lead Time,Lead Time Std,Ordering Cost,Demand Mean,Demand Std,Stock\n" +
		"SKU-0001,Electronics,50,0.6,25.5,7,1.5,100,18250,3650,400\n" +
		",Food,10,0.2,1,1,0.1,50,3650,730,10\n" +
		"SKU-0002,Clothing,\"1,200\",0.4,12,3,0.5,80,438000,87600,250\n"

	path := writeTempCSV(t, "20250801_catalog_main.csv", content)

	p := NewCatalogPipeline(Config{})
	rows, err := p.Transform(context.Background(), path)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows (blank SKU skipped), got %d", len(rows))
	}

	first := rows[0].Data
	if got := first["sku_id"]; got != "SKU-0001" {
		t.Errorf("sku_id = %v, want SKU-0001", got)
	}
	if got := first["date"]; got != "2025-08-01" {
		t.Errorf("date = %v, want 2025-08-01", got)
	}
	if got := first["category"]; got != "Electronics" {
		t.Errorf("category = %v, want Electronics", got)
	}
	if got := first["unit_cost"]; got != 25.5 {
		t.Errorf("unit_cost = %v, want 25.5", got)
	}
	if got := first["current_stock"]; got != 400 {
		t.Errorf("current_stock = %v, want 400", got)
	}

	// Thousands separators in numeric fields are stripped.
	if got := rows[1].Data["sales_velocity"]; got != 1200.0 {
		t.Errorf("sales_velocity = %v, want 1200", got)
	}
}

func TestCatalogPipeline_MissingSKUColumn(t *testing.T) {
	path := writeTempCSV(t, "20250801_broken.csv", "name,price\nwidget,10\n")

	p := NewCatalogPipeline(Config{})
	if _, err := p.Transform(context.Background(), path); err == nil {
		t.Fatal("expected error for file without SKU column")
	}
}

func TestCatalogPipeline_SnapshotDate(t *testing.T) {
	p := NewCatalogPipeline(Config{})

	date, err := p.SnapshotDate("20250801_catalog_main.csv")
	if err != nil {
		t.Fatalf("SnapshotDate: %v", err)
	}
	want := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	if !date.Equal(want) {
		t.Errorf("date = %v, want %v", date, want)
	}

	if _, err := p.SnapshotDate("catalog.csv"); err == nil {
		t.Error("expected error for filename without date prefix")
	}
}

func TestSalesPipeline_Transform(t *testing.T) {
	content := "date,sku_id,category,quantity\n" +
		"2025-08-01,SKU-0001,Electronics,12\n" +
		"01/08/2025,SKU-0002,Food,7\n" +
		"not-a-date,SKU-0003,Food,5\n" +
		"2025-08-01,,Food,3\n"

	path := writeTempCSV(t, "20250801_sales.csv", content)

	p := NewSalesPipeline(Config{})
	rows, err := p.Transform(context.Background(), path)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(rows))
	}
	if got := rows[0].Data["quantity"]; got != 12 {
		t.Errorf("quantity = %v, want 12", got)
	}
	// Slash-formatted dates normalize to ISO.
	if got := rows[1].Data["date"]; got != "2025-08-01" {
		t.Errorf("date = %v, want 2025-08-01", got)
	}
}

func TestSalesPipeline_MissingColumns(t *testing.T) {
	path := writeTempCSV(t, "20250801_sales.csv", "sku_id,category\nSKU-0001,Food\n")

	p := NewSalesPipeline(Config{})
	if _, err := p.Transform(context.Background(), path); err == nil {
		t.Fatal("expected error for file without date and quantity columns")
	}
}

func TestValidateCSVFile(t *testing.T) {
	dir := t.TempDir()

	if err := validateCSVFile(dir); err == nil {
		t.Error("expected error for directory input")
	}

	txt := filepath.Join(dir, "data.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateCSVFile(txt); err == nil {
		t.Error("expected error for non-CSV extension")
	}

	csvPath := filepath.Join(dir, "20250801_data.csv")
	if err := os.WriteFile(csvPath, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := validateCSVFile(csvPath); err != nil {
		t.Errorf("expected CSV file to validate, got %v", err)
	}
}
