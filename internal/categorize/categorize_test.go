package categorize

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// blobItems builds three well-separated groups so cluster recovery is
// unambiguous.
func blobItems() ([]domain.CatalogItem, map[string]string) {
	r := rand.New(rand.NewSource(9))
	var items []domain.CatalogItem
	want := make(map[string]string)

	add := func(prefix string, n int, velocity, turnover float64, movement string) {
		for i := 0; i < n; i++ {
			sku := fmt.Sprintf("%s-%03d", prefix, i)
			items = append(items, domain.CatalogItem{
				Item:          domain.Item{SKUID: sku},
				SalesVelocity: velocity + r.NormFloat64()*3,
				TurnoverRate:  turnover + r.NormFloat64()*0.02,
			})
			want[sku] = movement
		}
	}

	add("FAST", 30, 120, 0.85, domain.MovementFast)
	add("MED", 30, 60, 0.5, domain.MovementMedium)
	add("SLOW", 30, 15, 0.15, domain.MovementSlow)
	return items, want
}

func TestCategorize_RecoversBands(t *testing.T) {
	items, want := blobItems()

	got, err := New().Categorize(items)
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if len(got) != len(items) {
		t.Fatalf("got %d assignments for %d items", len(got), len(items))
	}

	misses := 0
	for _, a := range got {
		if a.Movement != want[a.SKUID] {
			misses++
		}
	}
	// Blobs are far apart; allow a stray point or two on the margins.
	if misses > 2 {
		t.Errorf("%d of %d items landed in the wrong band", misses, len(items))
	}

	counts := Counts(got)
	for _, movement := range []string{domain.MovementFast, domain.MovementMedium, domain.MovementSlow} {
		if counts[movement] < 28 || counts[movement] > 32 {
			t.Errorf("%s count = %d, want ~30", movement, counts[movement])
		}
	}
}

func TestCategorize_Deterministic(t *testing.T) {
	items, _ := blobItems()

	a, err := New().Categorize(items)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	b, err := New().Categorize(items)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("assignment %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestCategorize_TooFewItems(t *testing.T) {
	items := []domain.CatalogItem{
		{Item: domain.Item{SKUID: "A"}, SalesVelocity: 10, TurnoverRate: 0.5},
		{Item: domain.Item{SKUID: "B"}, SalesVelocity: 20, TurnoverRate: 0.6},
	}
	_, err := New().Categorize(items)
	if err == nil {
		t.Fatal("expected error for 2 items")
	}
	var de *domain.DomainError
	if !errors.As(err, &de) {
		t.Errorf("error = %T, want *domain.DomainError", err)
	}
}

func TestCategorize_IdenticalPoints(t *testing.T) {
	items := make([]domain.CatalogItem, 10)
	for i := range items {
		items[i] = domain.CatalogItem{
			Item:          domain.Item{SKUID: fmt.Sprintf("DUP-%02d", i)},
			SalesVelocity: 50,
			TurnoverRate:  0.5,
		}
	}
	got, err := New().Categorize(items)
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	// Degenerate input still labels every item with a valid band.
	for _, a := range got {
		if _, ok := domain.ParseMovementLabel(a.Movement); !ok {
			t.Errorf("%s: invalid movement %q", a.SKUID, a.Movement)
		}
	}
}
