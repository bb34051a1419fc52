package optimizer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

func mustOptimizer(t *testing.T, policy domain.Policy) *Optimizer {
	t.Helper()
	o, err := New(policy)
	if err != nil {
		t.Fatalf("New(%+v): %v", policy, err)
	}
	return o
}

func TestNew_RejectsBadPolicy(t *testing.T) {
	tests := []struct {
		name   string
		policy domain.Policy
	}{
		{"negative holding rate", domain.Policy{HoldingCostRate: -0.1, StockoutCostRate: 0.5, ServiceLevel: 0.95}},
		{"negative stockout rate", domain.Policy{HoldingCostRate: 0.25, StockoutCostRate: -1, ServiceLevel: 0.95}},
		{"service level zero", domain.Policy{HoldingCostRate: 0.25, StockoutCostRate: 0.5, ServiceLevel: 0}},
		{"service level one", domain.Policy{HoldingCostRate: 0.25, StockoutCostRate: 0.5, ServiceLevel: 1}},
		{"service level above one", domain.Policy{HoldingCostRate: 0.25, StockoutCostRate: 0.5, ServiceLevel: 1.2}},
		{"holding rate NaN", domain.Policy{HoldingCostRate: math.NaN(), StockoutCostRate: 0.5, ServiceLevel: 0.95}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.policy)
			if err == nil {
				t.Fatal("expected ConfigurationError, got nil")
			}
			var ce *domain.ConfigurationError
			if !errors.As(err, &ce) {
				t.Errorf("error = %T, want *domain.ConfigurationError", err)
			}
		})
	}
}

func TestEOQ_Scenario(t *testing.T) {
	// rate 0.25, demand 1000, ordering 50, unit 20:
	// sqrt((2*1000*50)/(0.25*20)) = sqrt(20000) ~ 141.42
	o := NewDefault()
	got, err := o.EOQ(1000, 50, 20)
	if err != nil {
		t.Fatalf("EOQ: %v", err)
	}
	want := math.Sqrt(20000)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EOQ = %v, want %v", got, want)
	}
}

func TestEOQ_ZeroDemand(t *testing.T) {
	o := NewDefault()
	got, err := o.EOQ(0, 50, 20)
	if err != nil {
		t.Fatalf("EOQ: %v", err)
	}
	if got != 0 {
		t.Errorf("EOQ(0, ...) = %v, want 0", got)
	}

	// Zero demand short-circuits even when the denominator would be bad.
	got, err = o.EOQ(0, 50, 0)
	if err != nil || got != 0 {
		t.Errorf("EOQ(0, 50, 0) = %v, %v; want 0, nil", got, err)
	}
}

func TestEOQ_DivisionByZero(t *testing.T) {
	o := NewDefault()
	if _, err := o.EOQ(1000, 50, 0); err == nil {
		t.Fatal("EOQ with zero unit cost: expected DomainError")
	} else {
		var de *domain.DomainError
		if !errors.As(err, &de) {
			t.Errorf("error = %T, want *domain.DomainError", err)
		}
	}

	zeroRate := mustOptimizer(t, domain.Policy{HoldingCostRate: 0, StockoutCostRate: 0.5, ServiceLevel: 0.95})
	if _, err := zeroRate.EOQ(1000, 50, 20); err == nil {
		t.Fatal("EOQ with zero holding rate: expected DomainError")
	}
}

func TestEOQ_Monotonicity(t *testing.T) {
	o := NewDefault()

	eoq := func(demand, ordering, unit float64) float64 {
		v, err := o.EOQ(demand, ordering, unit)
		if err != nil {
			t.Fatalf("EOQ(%v,%v,%v): %v", demand, ordering, unit, err)
		}
		return v
	}

	// Non-decreasing in demand.
	prev := 0.0
	for _, d := range []float64{0, 10, 100, 1000, 10000} {
		cur := eoq(d, 50, 20)
		if cur < prev {
			t.Errorf("EOQ decreased in demand at %v: %v < %v", d, cur, prev)
		}
		prev = cur
	}

	// Non-decreasing in ordering cost.
	prev = 0.0
	for _, oc := range []float64{0, 10, 50, 200} {
		cur := eoq(1000, oc, 20)
		if cur < prev {
			t.Errorf("EOQ decreased in ordering cost at %v: %v < %v", oc, cur, prev)
		}
		prev = cur
	}

	// Non-increasing in unit cost.
	prev = math.Inf(1)
	for _, uc := range []float64{5, 20, 80, 500} {
		cur := eoq(1000, 50, uc)
		if cur > prev {
			t.Errorf("EOQ increased in unit cost at %v: %v > %v", uc, cur, prev)
		}
		prev = cur
	}

	// Non-increasing in holding rate.
	prev = math.Inf(1)
	for _, rate := range []float64{0.05, 0.25, 0.5, 0.9} {
		ro := mustOptimizer(t, domain.Policy{HoldingCostRate: rate, StockoutCostRate: 0.5, ServiceLevel: 0.95})
		cur, err := ro.EOQ(1000, 50, 20)
		if err != nil {
			t.Fatalf("EOQ at rate %v: %v", rate, err)
		}
		if cur > prev {
			t.Errorf("EOQ increased in holding rate at %v: %v > %v", rate, cur, prev)
		}
		prev = cur
	}
}

func TestReorderPoint_Scenario(t *testing.T) {
	// SL 0.95, L=100, S=10: z ~ 1.6449, ROP ~ 116.449
	o := NewDefault()
	got, err := o.ReorderPoint(100, 10)
	if err != nil {
		t.Fatalf("ReorderPoint: %v", err)
	}
	if math.Abs(got-116.44853626951472) > 1e-6 {
		t.Errorf("ReorderPoint = %v, want ~116.4485", got)
	}
	if ss := got - 100; math.Abs(ss-16.448536269514722) > 1e-6 {
		t.Errorf("implied safety stock = %v, want ~16.4485", ss)
	}
}

func TestReorderPoint_Bracketing(t *testing.T) {
	o := NewDefault()

	// ROP >= L whenever S >= 0 and serviceLevel >= 0.5.
	for _, sl := range []float64{0.5, 0.6, 0.8, 0.95, 0.999} {
		for _, s := range []float64{0, 1, 10, 500} {
			got, err := o.ReorderPointAt(100, s, sl)
			if err != nil {
				t.Fatalf("ReorderPointAt(100, %v, %v): %v", s, sl, err)
			}
			if got < 100-1e-12 {
				t.Errorf("ReorderPointAt(100, %v, %v) = %v, below lead-time demand", s, sl, got)
			}
		}
	}

	// Strictly increasing in service level for S > 0.
	prev := math.Inf(-1)
	for _, sl := range []float64{0.5, 0.75, 0.9, 0.95, 0.99, 0.999} {
		got, err := o.ReorderPointAt(100, 10, sl)
		if err != nil {
			t.Fatalf("ReorderPointAt at %v: %v", sl, err)
		}
		if got <= prev {
			t.Errorf("ReorderPoint not strictly increasing at service level %v: %v <= %v", sl, got, prev)
		}
		prev = got
	}
}

func TestReorderPoint_BoundaryServiceLevel(t *testing.T) {
	o := NewDefault()
	for _, sl := range []float64{0, 1, -0.1, 1.1} {
		if _, err := o.ReorderPointAt(100, 10, sl); err == nil {
			t.Errorf("ReorderPointAt with service level %v: expected DomainError", sl)
		}
	}
}

func TestOptimizeItem_ReferenceBatch(t *testing.T) {
	// Single item, default policy:
	// ltd = 2000, ltd_std = sqrt(1000^2*0.5^2 + 2^2*200^2) = sqrt(410000) ~ 640.31
	// eoq ~ 141.42, rop ~ 2000 + 1.6449*640.31 ~ 3053.3
	o := NewDefault()
	item := domain.Item{
		SKUID:        "SKU-0001",
		DemandMean:   1000,
		DemandStd:    200,
		LeadTimeMean: 2,
		LeadTimeStd:  0.5,
		UnitCost:     20,
		OrderingCost: 50,
	}

	got, err := o.OptimizeItem(item)
	if err != nil {
		t.Fatalf("OptimizeItem: %v", err)
	}

	checks := []struct {
		name string
		got  float64
		want float64
		tol  float64
	}{
		{"lead_time_demand", got.LeadTimeDemand, 2000, 1e-9},
		{"lead_time_demand_std", got.LeadTimeDemandStd, math.Sqrt(410000), 1e-9},
		{"eoq", got.EOQ, math.Sqrt(20000), 1e-9},
		{"reorder_point", got.ReorderPoint, 2000 + 1.6448536269514722*math.Sqrt(410000), 1e-6},
		{"safety_stock", got.SafetyStock, 1.6448536269514722 * math.Sqrt(410000), 1e-6},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > c.tol {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	if math.Abs(got.ReorderPoint-3053.3) > 0.1 {
		t.Errorf("reorder_point = %v, want ~3053.3", got.ReorderPoint)
	}
}

func TestOptimizeItem_Identities(t *testing.T) {
	o := NewDefault()
	items := []domain.Item{
		{SKUID: "A", DemandMean: 1000, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: 20, OrderingCost: 50},
		{SKUID: "B", DemandMean: 5, DemandStd: 1, LeadTimeMean: 14, LeadTimeStd: 3, UnitCost: 99.5, OrderingCost: 200},
		{SKUID: "C", DemandMean: 0, DemandStd: 0, LeadTimeMean: 7, LeadTimeStd: 1, UnitCost: 10, OrderingCost: 50},
		{SKUID: "D", DemandMean: 120000, DemandStd: 24000, LeadTimeMean: 0, LeadTimeStd: 0, UnitCost: 10.5, OrderingCost: 55},
	}

	for _, item := range items {
		got, err := o.OptimizeItem(item)
		if err != nil {
			t.Fatalf("OptimizeItem(%s): %v", item.SKUID, err)
		}
		if d := math.Abs(got.SafetyStock - (got.ReorderPoint - got.LeadTimeDemand)); d >= 1e-9 {
			t.Errorf("%s: safety stock identity off by %v", item.SKUID, d)
		}
		if d := math.Abs(got.TotalAnnualCost - (got.AnnualHoldingCost + got.AnnualOrderingCost)); d >= 1e-9 {
			t.Errorf("%s: cost identity off by %v", item.SKUID, d)
		}
	}
}

func TestOptimizeItem_ZeroDemand(t *testing.T) {
	o := NewDefault()
	got, err := o.OptimizeItem(domain.Item{
		SKUID: "ZD", DemandMean: 0, DemandStd: 50, LeadTimeMean: 3, LeadTimeStd: 1, UnitCost: 20, OrderingCost: 50,
	})
	if err != nil {
		t.Fatalf("OptimizeItem: %v", err)
	}
	if got.EOQ != 0 {
		t.Errorf("eoq = %v, want 0", got.EOQ)
	}
	if got.AnnualOrderingCost != 0 {
		t.Errorf("annual_ordering_cost = %v, want 0", got.AnnualOrderingCost)
	}
	if got.LeadTimeDemand != 0 {
		t.Errorf("lead_time_demand = %v, want 0", got.LeadTimeDemand)
	}
	// With zero lead-time demand the reorder point is safety stock only.
	if math.Abs(got.ReorderPoint-got.SafetyStock) > 1e-12 {
		t.Errorf("reorder_point = %v, safety_stock = %v; want equal", got.ReorderPoint, got.SafetyStock)
	}
	if math.IsNaN(got.TotalAnnualCost) || math.IsInf(got.TotalAnnualCost, 0) {
		t.Errorf("total_annual_cost = %v, want finite", got.TotalAnnualCost)
	}
}

func TestOptimizeInventoryLevels_OrderPreserved(t *testing.T) {
	o := NewDefault()
	items := make([]domain.Item, 0, 25)
	for i := 0; i < 25; i++ {
		items = append(items, domain.Item{
			SKUID:        skuID(i),
			DemandMean:   float64(100 + i*37),
			DemandStd:    float64(10 + i),
			LeadTimeMean: float64(1 + i%14),
			LeadTimeStd:  0.5,
			UnitCost:     float64(10 + i),
			OrderingCost: 50,
		})
	}

	res := o.OptimizeInventoryLevels(items)
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failures)
	}
	if len(res.Items) != len(items) {
		t.Fatalf("got %d results for %d items", len(res.Items), len(items))
	}
	for i, r := range res.Items {
		if r.SKUID != items[i].SKUID {
			t.Errorf("result %d has SKU %s, want %s", i, r.SKUID, items[i].SKUID)
		}
	}
}

func TestOptimizeInventoryLevels_PartialFailure(t *testing.T) {
	o := NewDefault()
	items := []domain.Item{
		{SKUID: "GOOD-1", DemandMean: 1000, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: 20, OrderingCost: 50},
		{SKUID: "", DemandMean: 1000, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: 20, OrderingCost: 50},
		{SKUID: "NEG-DEMAND", DemandMean: -5, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: 20, OrderingCost: 50},
		{SKUID: "NAN-COST", DemandMean: 1000, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: math.NaN(), OrderingCost: 50},
		{SKUID: "FREE-UNIT", DemandMean: 1000, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: 0, OrderingCost: 50},
		{SKUID: "GOOD-2", DemandMean: 500, DemandStd: 100, LeadTimeMean: 3, LeadTimeStd: 1, UnitCost: 15, OrderingCost: 75},
	}

	res := o.OptimizeInventoryLevels(items)

	if len(res.Items) != 2 {
		t.Fatalf("got %d successes, want 2", len(res.Items))
	}
	if res.Items[0].SKUID != "GOOD-1" || res.Items[1].SKUID != "GOOD-2" {
		t.Errorf("successes out of order: %s, %s", res.Items[0].SKUID, res.Items[1].SKUID)
	}
	if len(res.Failures) != 4 {
		t.Fatalf("got %d failures, want 4: %+v", len(res.Failures), res.Failures)
	}
	// FREE-UNIT fails in the EOQ formula, not validation.
	found := false
	for _, f := range res.Failures {
		if f.SKUID == "FREE-UNIT" {
			found = true
		}
	}
	if !found {
		t.Error("expected FREE-UNIT among failures")
	}

	// No success carries a non-finite value.
	for _, r := range res.Items {
		for name, v := range map[string]float64{
			"eoq": r.EOQ, "reorder_point": r.ReorderPoint, "total_annual_cost": r.TotalAnnualCost,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("%s: %s = %v, want finite", r.SKUID, name, v)
			}
		}
	}
}

func TestOptimizeInventoryLevelsParallel_MatchesSequential(t *testing.T) {
	o := NewDefault()
	items := make([]domain.Item, 0, 200)
	for i := 0; i < 200; i++ {
		it := domain.Item{
			SKUID:        skuID(i),
			DemandMean:   float64((i * 131) % 5000),
			DemandStd:    float64(i % 97),
			LeadTimeMean: float64(i%14) + 0.5,
			LeadTimeStd:  float64(i%5) / 2,
			UnitCost:     float64(10 + i%90),
			OrderingCost: float64(50 + i%150),
		}
		if i%23 == 0 {
			it.DemandMean = -1 // forces a validation failure
		}
		items = append(items, it)
	}

	seq := o.OptimizeInventoryLevels(items)
	par, err := o.OptimizeInventoryLevelsParallel(context.Background(), items, 8)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if len(par.Items) != len(seq.Items) || len(par.Failures) != len(seq.Failures) {
		t.Fatalf("parallel (%d ok, %d failed) != sequential (%d ok, %d failed)",
			len(par.Items), len(par.Failures), len(seq.Items), len(seq.Failures))
	}
	for i := range seq.Items {
		if par.Items[i] != seq.Items[i] {
			t.Fatalf("result %d differs: parallel %+v, sequential %+v", i, par.Items[i], seq.Items[i])
		}
	}
	for i := range seq.Failures {
		if par.Failures[i] != seq.Failures[i] {
			t.Fatalf("failure %d differs: parallel %+v, sequential %+v", i, par.Failures[i], seq.Failures[i])
		}
	}
}

func TestOptimizeInventoryLevelsParallel_Cancelled(t *testing.T) {
	o := NewDefault()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []domain.Item{
		{SKUID: "A", DemandMean: 1000, DemandStd: 200, LeadTimeMean: 2, LeadTimeStd: 0.5, UnitCost: 20, OrderingCost: 50},
	}
	if _, err := o.OptimizeInventoryLevelsParallel(ctx, items, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func skuID(i int) string {
	const digits = "0123456789"
	return "SKU-" + string([]byte{
		digits[(i/1000)%10], digits[(i/100)%10], digits[(i/10)%10], digits[i%10],
	})
}
