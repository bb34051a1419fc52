// Package valuation turns raw optimization results into the money
// figures shown on the dashboard. Totals are accumulated as decimals
// so the displayed strings carry no float rounding artifacts.
package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// UncategorizedLabel is used when an item has no catalog category.
const UncategorizedLabel = "Uncategorized"

// Summarize computes the top-level money rollups for one batch of
// results. Category and top-item tables are filled in separately so
// callers without catalog access can still produce totals.
func Summarize(items []domain.OptimizedItem, failureCount int) domain.OptimizationSummary {
	var (
		totalCost    = decimal.Zero
		holdingCost  = decimal.Zero
		orderingCost = decimal.Zero
		investment   = decimal.Zero
		unitCostSum  = decimal.Zero
	)

	for _, it := range items {
		totalCost = totalCost.Add(decimal.NewFromFloat(it.TotalAnnualCost))
		holdingCost = holdingCost.Add(decimal.NewFromFloat(it.AnnualHoldingCost))
		orderingCost = orderingCost.Add(decimal.NewFromFloat(it.AnnualOrderingCost))
		investment = investment.Add(
			decimal.NewFromFloat(it.OptimalInventory).Mul(decimal.NewFromFloat(it.UnitCost)))
		unitCostSum = unitCostSum.Add(decimal.NewFromFloat(it.UnitCost))
	}

	avgUnitCost := decimal.Zero
	if len(items) > 0 {
		avgUnitCost = unitCostSum.Div(decimal.NewFromInt(int64(len(items))))
	}

	return domain.OptimizationSummary{
		ItemCount:           len(items),
		FailureCount:        failureCount,
		TotalAnnualCost:     totalCost.StringFixed(2),
		TotalHoldingCost:    holdingCost.StringFixed(2),
		TotalOrderingCost:   orderingCost.StringFixed(2),
		InventoryInvestment: investment.StringFixed(2),
		AvgUnitCost:         avgUnitCost.StringFixed(2),
	}
}

// CategoryRollup groups results by catalog category. Categories are
// ordered by descending total annual cost; items without a category
// land under UncategorizedLabel.
func CategoryRollup(items []domain.OptimizedItem, categories map[string]string) []domain.CategoryBreakdown {
	type acc struct {
		count     int
		totalCost float64
		eoqSum    float64
		safetySum float64
	}

	byCategory := make(map[string]*acc)
	for _, it := range items {
		cat := categories[it.SKUID]
		if cat == "" {
			cat = UncategorizedLabel
		}
		a := byCategory[cat]
		if a == nil {
			a = &acc{}
			byCategory[cat] = a
		}
		a.count++
		a.totalCost += it.TotalAnnualCost
		a.eoqSum += it.EOQ
		a.safetySum += it.SafetyStock
	}

	out := make([]domain.CategoryBreakdown, 0, len(byCategory))
	for cat, a := range byCategory {
		out = append(out, domain.CategoryBreakdown{
			Category:        cat,
			ItemCount:       a.count,
			TotalAnnualCost: a.totalCost,
			AvgEOQ:          a.eoqSum / float64(a.count),
			AvgSafetyStock:  a.safetySum / float64(a.count),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAnnualCost != out[j].TotalAnnualCost {
			return out[i].TotalAnnualCost > out[j].TotalAnnualCost
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TopByCost returns the n most expensive items by total annual cost.
func TopByCost(items []domain.OptimizedItem, categories map[string]string, n int) []domain.TopCostItem {
	if n <= 0 || len(items) == 0 {
		return nil
	}

	ranked := make([]domain.OptimizedItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalAnnualCost > ranked[j].TotalAnnualCost
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]domain.TopCostItem, 0, n)
	for _, it := range ranked[:n] {
		cat := categories[it.SKUID]
		if cat == "" {
			cat = UncategorizedLabel
		}
		out = append(out, domain.TopCostItem{
			SKUID:           it.SKUID,
			Category:        cat,
			EOQ:             it.EOQ,
			ReorderPoint:    it.ReorderPoint,
			SafetyStock:     it.SafetyStock,
			TotalAnnualCost: it.TotalAnnualCost,
		})
	}
	return out
}
