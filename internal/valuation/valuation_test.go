package valuation

import (
	"testing"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

func TestSummarize(t *testing.T) {
	items := []domain.OptimizedItem{
		{
			Item:               domain.Item{SKUID: "A", UnitCost: 20},
			OptimalInventory:   150.5,
			AnnualHoldingCost:  100.125,
			AnnualOrderingCost: 50.25,
			TotalAnnualCost:    150.375,
		},
		{
			Item:               domain.Item{SKUID: "B", UnitCost: 10},
			OptimalInventory:   80.25,
			AnnualHoldingCost:  60.5,
			AnnualOrderingCost: 39.5,
			TotalAnnualCost:    100,
		},
	}

	got := Summarize(items, 3)

	if got.ItemCount != 2 || got.FailureCount != 3 {
		t.Errorf("counts = %d/%d, want 2/3", got.ItemCount, got.FailureCount)
	}
	// 150.375 + 100 = 250.375, half away from zero at two places.
	if got.TotalAnnualCost != "250.38" {
		t.Errorf("TotalAnnualCost = %q, want \"250.38\"", got.TotalAnnualCost)
	}
	if got.TotalHoldingCost != "160.63" {
		t.Errorf("TotalHoldingCost = %q, want \"160.63\"", got.TotalHoldingCost)
	}
	if got.TotalOrderingCost != "89.75" {
		t.Errorf("TotalOrderingCost = %q, want \"89.75\"", got.TotalOrderingCost)
	}
	// 150.5*20 + 80.25*10 = 3010 + 802.5
	if got.InventoryInvestment != "3812.50" {
		t.Errorf("InventoryInvestment = %q, want \"3812.50\"", got.InventoryInvestment)
	}
	if got.AvgUnitCost != "15.00" {
		t.Errorf("AvgUnitCost = %q, want \"15.00\"", got.AvgUnitCost)
	}
}

func TestSummarize_Empty(t *testing.T) {
	got := Summarize(nil, 0)
	if got.ItemCount != 0 {
		t.Errorf("ItemCount = %d, want 0", got.ItemCount)
	}
	if got.TotalAnnualCost != "0.00" || got.AvgUnitCost != "0.00" {
		t.Errorf("empty summary = %q / %q, want \"0.00\" / \"0.00\"",
			got.TotalAnnualCost, got.AvgUnitCost)
	}
}

func TestCategoryRollup(t *testing.T) {
	items := []domain.OptimizedItem{
		{Item: domain.Item{SKUID: "E1"}, EOQ: 100, SafetyStock: 10, TotalAnnualCost: 500},
		{Item: domain.Item{SKUID: "E2"}, EOQ: 200, SafetyStock: 30, TotalAnnualCost: 300},
		{Item: domain.Item{SKUID: "F1"}, EOQ: 50, SafetyStock: 5, TotalAnnualCost: 1000},
		{Item: domain.Item{SKUID: "X1"}, EOQ: 10, SafetyStock: 1, TotalAnnualCost: 50},
	}
	categories := map[string]string{"E1": "Electronics", "E2": "Electronics", "F1": "Food"}

	got := CategoryRollup(items, categories)

	if len(got) != 3 {
		t.Fatalf("got %d categories, want 3", len(got))
	}
	// Ordered by descending total cost: Food 1000, Electronics 800, Uncategorized 50.
	if got[0].Category != "Food" || got[1].Category != "Electronics" || got[2].Category != UncategorizedLabel {
		t.Errorf("order = %s, %s, %s", got[0].Category, got[1].Category, got[2].Category)
	}

	elec := got[1]
	if elec.ItemCount != 2 {
		t.Errorf("Electronics count = %d, want 2", elec.ItemCount)
	}
	if elec.TotalAnnualCost != 800 {
		t.Errorf("Electronics total = %v, want 800", elec.TotalAnnualCost)
	}
	if elec.AvgEOQ != 150 {
		t.Errorf("Electronics avg EOQ = %v, want 150", elec.AvgEOQ)
	}
	if elec.AvgSafetyStock != 20 {
		t.Errorf("Electronics avg safety stock = %v, want 20", elec.AvgSafetyStock)
	}
}

func TestTopByCost(t *testing.T) {
	items := []domain.OptimizedItem{
		{Item: domain.Item{SKUID: "A"}, TotalAnnualCost: 100},
		{Item: domain.Item{SKUID: "B"}, TotalAnnualCost: 900},
		{Item: domain.Item{SKUID: "C"}, TotalAnnualCost: 400},
		{Item: domain.Item{SKUID: "D"}, TotalAnnualCost: 700},
	}
	categories := map[string]string{"B": "Food"}

	got := TopByCost(items, categories, 3)
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3", len(got))
	}
	if got[0].SKUID != "B" || got[1].SKUID != "D" || got[2].SKUID != "C" {
		t.Errorf("order = %s, %s, %s; want B, D, C", got[0].SKUID, got[1].SKUID, got[2].SKUID)
	}
	if got[0].Category != "Food" {
		t.Errorf("B category = %q, want \"Food\"", got[0].Category)
	}
	if got[1].Category != UncategorizedLabel {
		t.Errorf("D category = %q, want %q", got[1].Category, UncategorizedLabel)
	}

	if more := TopByCost(items, categories, 10); len(more) != 4 {
		t.Errorf("n beyond len = %d items, want 4", len(more))
	}
	if none := TopByCost(items, categories, 0); none != nil {
		t.Errorf("n=0 = %v, want nil", none)
	}
}
