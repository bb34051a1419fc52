// Package optimizer implements the inventory optimization engine:
// closed-form EOQ and reorder-point calculations composed into a
// per-item annual cost model, governed by three policy scalars.
//
// Every derived quantity is a pure function of one input record and
// the policy; items in a batch are independent of each other, which
// keeps the batch entry points trivially parallelizable.
package optimizer

import (
	"math"

	"github.com/Sohamiota/Target-JIT-org/internal/domain"
)

// Optimizer applies the configured policy to item records. It holds no
// per-item state across calls; the policy is read-only after New.
type Optimizer struct {
	policy domain.Policy
}

// New validates the policy and builds an Optimizer. An invalid scalar
// is a ConfigurationError; it is never silently replaced by a default.
func New(policy domain.Policy) (*Optimizer, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Optimizer{policy: policy}, nil
}

// NewDefault builds an Optimizer with the reference policy defaults
// (holding 0.25, stockout 0.5, service level 0.95).
func NewDefault() *Optimizer {
	return &Optimizer{policy: domain.DefaultPolicy()}
}

// Policy returns the configured policy scalars.
func (o *Optimizer) Policy() domain.Policy {
	return o.policy
}

// EOQ returns the order quantity minimizing annual holding plus
// ordering cost under the classical assumptions (constant demand rate,
// fixed lead time, no backorders):
//
//	sqrt((2 * demand * orderingCost) / (holdingCostRate * unitCost))
//
// Zero demand needs no replenishment and returns 0. A zero unit cost
// or holding rate would divide by zero; that is a DomainError, never a
// propagated Inf.
func (o *Optimizer) EOQ(demand, orderingCost, unitCost float64) (float64, error) {
	if demand == 0 {
		return 0, nil
	}
	denom := o.policy.HoldingCostRate * unitCost
	if denom == 0 {
		return 0, &domain.DomainError{
			Op:     "eoq",
			Reason: "holding_cost_rate * unit_cost is zero",
		}
	}
	return math.Sqrt((2 * demand * orderingCost) / denom), nil
}

// ReorderPoint returns the inventory level that triggers replenishment
// at the configured service level.
func (o *Optimizer) ReorderPoint(leadTimeDemand, leadTimeDemandStd float64) (float64, error) {
	return o.ReorderPointAt(leadTimeDemand, leadTimeDemandStd, o.policy.ServiceLevel)
}

// ReorderPointAt is ReorderPoint with an explicit service level
// override. The returned level is leadTimeDemand + z*leadTimeDemandStd
// with z the standard-normal quantile of the service level, so the
// probability that lead-time demand exceeds it is about
// 1 - serviceLevel under the normality assumption.
func (o *Optimizer) ReorderPointAt(leadTimeDemand, leadTimeDemandStd, serviceLevel float64) (float64, error) {
	z, err := NormQuantile(serviceLevel)
	if err != nil {
		return 0, err
	}
	return leadTimeDemand + z*leadTimeDemandStd, nil
}

// OptimizeItem derives the nine planning fields for one item.
func (o *Optimizer) OptimizeItem(item domain.Item) (domain.OptimizedItem, error) {
	if err := item.Validate(); err != nil {
		return domain.OptimizedItem{}, err
	}

	out := domain.OptimizedItem{Item: item}

	// 1. Expected demand during the replenishment lead time.
	out.LeadTimeDemand = item.DemandMean * item.LeadTimeMean

	// 2. Std dev of lead-time demand: variance of a product of two
	// independent factors (demand rate and lead time), first order.
	out.LeadTimeDemandStd = math.Sqrt(
		item.DemandMean*item.DemandMean*item.LeadTimeStd*item.LeadTimeStd +
			item.LeadTimeMean*item.LeadTimeMean*item.DemandStd*item.DemandStd,
	)

	// 3. Economic order quantity.
	eoq, err := o.EOQ(item.DemandMean, item.OrderingCost, item.UnitCost)
	if err != nil {
		return domain.OptimizedItem{}, err
	}
	out.EOQ = eoq

	// 4. Reorder point at the configured service level.
	rop, err := o.ReorderPoint(out.LeadTimeDemand, out.LeadTimeDemandStd)
	if err != nil {
		return domain.OptimizedItem{}, err
	}
	out.ReorderPoint = rop

	// 5. Safety stock, by construction equal to z * leadTimeDemandStd.
	out.SafetyStock = out.ReorderPoint - out.LeadTimeDemand

	// 6. Target on-hand level right after a replenishment arrives.
	out.OptimalInventory = out.EOQ + out.SafetyStock

	// 7. Annual holding cost on the optimal level.
	out.AnnualHoldingCost = out.OptimalInventory * item.UnitCost * o.policy.HoldingCostRate

	// 8. Orders per year times cost per order. A zero EOQ means zero
	// demand (no orders) or a free order; either way the annual
	// ordering cost is 0, not a division by zero.
	if out.EOQ > 0 {
		out.AnnualOrderingCost = (item.DemandMean / out.EOQ) * item.OrderingCost
	}

	// 9. Total, by construction the sum of the two cost terms.
	out.TotalAnnualCost = out.AnnualHoldingCost + out.AnnualOrderingCost

	return out, nil
}

// Result is the outcome of a batch optimization: successful items in
// input order plus the per-item failures. One bad record never blocks
// the rest of the batch.
type Result struct {
	Items    []domain.OptimizedItem `json:"results"`
	Failures []domain.ItemFailure   `json:"failures"`
}

// OptimizeInventoryLevels optimizes a batch sequentially. Output order
// follows input order; no cross-item aggregation happens here.
func (o *Optimizer) OptimizeInventoryLevels(items []domain.Item) Result {
	res := Result{Items: make([]domain.OptimizedItem, 0, len(items))}
	for _, item := range items {
		opt, err := o.OptimizeItem(item)
		if err != nil {
			res.Failures = append(res.Failures, domain.ItemFailure{
				SKUID: item.SKUID,
				Error: err.Error(),
			})
			continue
		}
		res.Items = append(res.Items, opt)
	}
	return res
}
