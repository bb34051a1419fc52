package anomaly

import (
	"fmt"
	"math"
	"testing"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// uniformBatch builds n near-identical items plus one extreme outlier.
func uniformBatch(n int) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, n+1)
	for i := 0; i < n; i++ {
		items = append(items, domain.CatalogItem{
			Item:          domain.Item{SKUID: fmt.Sprintf("N-%03d", i)},
			SalesVelocity: 50 + float64(i%5),
			TurnoverRate:  0.5 + float64(i%5)/100,
			CurrentStock:  500 + i%5,
		})
	}
	items = append(items, domain.CatalogItem{
		Item:          domain.Item{SKUID: "OUTLIER"},
		SalesVelocity: 5000,
		TurnoverRate:  0.5,
		CurrentStock:  500,
	})
	return items
}

func TestDetect_FlagsOutlier(t *testing.T) {
	items := uniformBatch(100)
	reports := New().Detect(items)

	if len(reports) != len(items) {
		t.Fatalf("got %d reports for %d items", len(reports), len(items))
	}

	var outlier *Report
	flagged := 0
	for i := range reports {
		if reports[i].Anomaly {
			flagged++
		}
		if reports[i].SKUID == "OUTLIER" {
			outlier = &reports[i]
		}
	}

	if outlier == nil {
		t.Fatal("no report for OUTLIER")
	}
	if !outlier.Anomaly {
		t.Errorf("outlier not flagged, score %v", outlier.Score)
	}
	if outlier.ZScores["sales_velocity"] <= DefaultThreshold {
		t.Errorf("outlier velocity z = %v, want above %v", outlier.ZScores["sales_velocity"], DefaultThreshold)
	}
	if outlier.Score != outlier.ZScores["sales_velocity"] {
		t.Errorf("score %v != worst feature z %v", outlier.Score, outlier.ZScores["sales_velocity"])
	}
	if flagged != 1 {
		t.Errorf("%d items flagged, want only the outlier", flagged)
	}
}

func TestDetect_ScoreIsMaxZ(t *testing.T) {
	reports := New().Detect(uniformBatch(50))
	for _, r := range reports {
		want := 0.0
		for _, z := range r.ZScores {
			if z > want {
				want = z
			}
		}
		if math.Abs(r.Score-want) > 1e-12 {
			t.Errorf("%s: score %v != max z %v", r.SKUID, r.Score, want)
		}
	}
}

func TestDetect_ConstantFeatures(t *testing.T) {
	items := make([]domain.CatalogItem, 10)
	for i := range items {
		items[i] = domain.CatalogItem{
			Item:          domain.Item{SKUID: fmt.Sprintf("C-%02d", i)},
			SalesVelocity: 42,
			TurnoverRate:  0.5,
			CurrentStock:  100,
		}
	}

	for _, r := range New().Detect(items) {
		if r.Anomaly {
			t.Errorf("%s flagged in constant batch", r.SKUID)
		}
		if r.Score != 0 {
			t.Errorf("%s: score = %v, want 0", r.SKUID, r.Score)
		}
	}
}

func TestDetect_Empty(t *testing.T) {
	if got := New().Detect(nil); got != nil {
		t.Errorf("Detect(nil) = %v, want nil", got)
	}
}

func TestAnomalies_SortedBySeverity(t *testing.T) {
	reports := []Report{
		{SKUID: "A", Anomaly: true, Score: 3.5},
		{SKUID: "B", Anomaly: false, Score: 1.2},
		{SKUID: "C", Anomaly: true, Score: 8.1},
	}

	got := Anomalies(reports)
	if len(got) != 2 {
		t.Fatalf("got %d anomalies, want 2", len(got))
	}
	if got[0].SKUID != "C" || got[1].SKUID != "A" {
		t.Errorf("order = %s, %s; want C, A", got[0].SKUID, got[1].SKUID)
	}
}
