package datagen

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Seed:  42,
		Items: 50,
		Days:  60,
		End:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCatalog_Deterministic(t *testing.T) {
	a := New(testConfig()).Catalog()
	b := New(testConfig()).Catalog()

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Item != b[i].Item || a[i].Category != b[i].Category ||
			a[i].SalesVelocity != b[i].SalesVelocity || a[i].CurrentStock != b[i].CurrentStock {
			t.Fatalf("item %d differs between same-seed runs", i)
		}
	}

	other := testConfig()
	other.Seed = 43
	c := New(other).Catalog()
	same := true
	for i := range a {
		if a[i].Item != c[i].Item {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical catalogs")
	}
}

func TestCatalog_Ranges(t *testing.T) {
	items := New(testConfig()).Catalog()
	if len(items) != 50 {
		t.Fatalf("got %d items, want 50", len(items))
	}

	validCategories := map[string]bool{
		"Electronics": true, "Clothing": true, "Food": true,
		"Home Goods": true, "Office Supplies": true,
	}

	for _, it := range items {
		if err := it.Item.Validate(); err != nil {
			t.Fatalf("%s: generated item fails validation: %v", it.SKUID, err)
		}
		if !validCategories[it.Category] {
			t.Errorf("%s: unknown category %q", it.SKUID, it.Category)
		}
		if it.UnitCost < 10 || it.UnitCost > 100 {
			t.Errorf("%s: unit_cost %v outside [10,100]", it.SKUID, it.UnitCost)
		}
		if it.LeadTimeMean < 1 || it.LeadTimeMean > 14 {
			t.Errorf("%s: lead_time_mean %v outside [1,14]", it.SKUID, it.LeadTimeMean)
		}
		if it.LeadTimeStd < 0.2 || it.LeadTimeStd > 3 {
			t.Errorf("%s: lead_time_std %v outside [0.2,3]", it.SKUID, it.LeadTimeStd)
		}
		if it.OrderingCost < 50 || it.OrderingCost > 200 {
			t.Errorf("%s: ordering_cost %v outside [50,200]", it.SKUID, it.OrderingCost)
		}
		if it.SalesVelocity < 1 {
			t.Errorf("%s: sales_velocity %v below 1", it.SKUID, it.SalesVelocity)
		}
		if it.TurnoverRate < 0.01 || it.TurnoverRate > 0.99 {
			t.Errorf("%s: turnover_rate %v outside [0.01,0.99]", it.SKUID, it.TurnoverRate)
		}
		if it.CurrentStock < 0 {
			t.Errorf("%s: current_stock %d negative", it.SKUID, it.CurrentStock)
		}
		if it.DemandMean != it.SalesVelocity*DaysPerYear {
			t.Errorf("%s: demand_mean %v != velocity*%d", it.SKUID, it.DemandMean, DaysPerYear)
		}
		if it.DemandStd != 0.2*it.DemandMean {
			t.Errorf("%s: demand_std %v != 0.2*demand_mean", it.SKUID, it.DemandStd)
		}
	}

	if items[0].SKUID != "SKU-0001" || items[49].SKUID != "SKU-0050" {
		t.Errorf("SKU numbering = %s ... %s", items[0].SKUID, items[49].SKUID)
	}
}

func TestDailySales(t *testing.T) {
	g := New(testConfig())
	items := g.Catalog()
	sales := g.DailySales(items)

	if len(sales) != len(items)*60 {
		t.Fatalf("got %d sales rows, want %d", len(sales), len(items)*60)
	}

	start := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	if !sales[0].Date.Equal(start) {
		t.Errorf("first date = %v, want %v", sales[0].Date, start)
	}
	if last := sales[len(sales)-1].Date; !last.Equal(end) {
		t.Errorf("last date = %v, want %v", last, end)
	}

	// Weekday demand carries a 1.2x lift, so the aggregate weekday mean
	// must exceed the weekend mean.
	var weekdaySum, weekendSum float64
	var weekdayN, weekendN int
	for _, s := range sales {
		if s.Quantity < 0 {
			t.Fatalf("negative quantity %d on %v", s.Quantity, s.Date)
		}
		if wd := s.Date.Weekday(); wd >= time.Monday && wd <= time.Friday {
			weekdaySum += float64(s.Quantity)
			weekdayN++
		} else {
			weekendSum += float64(s.Quantity)
			weekendN++
		}
	}
	if weekdaySum/float64(weekdayN) <= weekendSum/float64(weekendN) {
		t.Errorf("weekday mean %v not above weekend mean %v",
			weekdaySum/float64(weekdayN), weekendSum/float64(weekendN))
	}
}

func TestWriteCatalogCSV_RoundTrip(t *testing.T) {
	cfg := testConfig()
	cfg.Items = 5
	items := New(cfg).Catalog()

	var buf bytes.Buffer
	if err := WriteCatalogCSV(&buf, items); err != nil {
		t.Fatalf("WriteCatalogCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 6 {
		t.Fatalf("got %d records, want header + 5 rows", len(records))
	}
	if records[0][0] != "sku_id" || records[0][10] != "current_stock" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "SKU-0001" {
		t.Errorf("first row SKU = %q", records[1][0])
	}
	if records[1][1] != items[0].Category {
		t.Errorf("first row category = %q, want %q", records[1][1], items[0].Category)
	}
}

func TestWriteSalesCSV(t *testing.T) {
	cfg := testConfig()
	cfg.Items = 2
	cfg.Days = 3
	g := New(cfg)
	items := g.Catalog()
	sales := g.DailySales(items)

	var buf bytes.Buffer
	if err := WriteSalesCSV(&buf, sales); err != nil {
		t.Fatalf("WriteSalesCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(records) != 1+6 {
		t.Fatalf("got %d records, want header + 6 rows", len(records))
	}
	if records[1][0] != "2025-06-28" {
		t.Errorf("first sales date = %q, want 2025-06-28", records[1][0])
	}
}
