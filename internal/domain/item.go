package domain

import (
	"math"
	"time"
)

// Item is the per-SKU input record for the optimizer. The JSON field
// names are a fixed contract shared with the ingestion and presentation
// sides; do not rename them.
type Item struct {
	SKUID        string  `json:"sku_id" db:"sku_id"`
	DemandMean   float64 `json:"demand_mean" db:"demand_mean"`
	DemandStd    float64 `json:"demand_std" db:"demand_std"`
	LeadTimeMean float64 `json:"lead_time_mean" db:"lead_time_mean"`
	LeadTimeStd  float64 `json:"lead_time_std" db:"lead_time_std"`
	UnitCost     float64 `json:"unit_cost" db:"unit_cost"`
	OrderingCost float64 `json:"ordering_cost" db:"ordering_cost"`
}

// Validate checks the record against the input contract: all values
// finite, non-negative where required. A zero lead time is a valid
// degenerate case and passes; a zero unit cost passes here and is
// rejected later by the EOQ formula itself.
func (it Item) Validate() error {
	if it.SKUID == "" {
		return &ValidationError{Field: "sku_id", Reason: "must not be empty"}
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"demand_mean", it.DemandMean},
		{"demand_std", it.DemandStd},
		{"lead_time_mean", it.LeadTimeMean},
		{"lead_time_std", it.LeadTimeStd},
		{"unit_cost", it.UnitCost},
		{"ordering_cost", it.OrderingCost},
	}

	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ValidationError{SKUID: it.SKUID, Field: f.name, Reason: "must be finite"}
		}
		if f.value < 0 {
			return &ValidationError{SKUID: it.SKUID, Field: f.name, Reason: "must not be negative"}
		}
	}

	return nil
}

// OptimizedItem is an Item extended with the nine derived planning
// fields. Every derived field is a pure function of the input record
// and the policy; safety_stock and total_annual_cost hold their
// defining identities by construction.
type OptimizedItem struct {
	Item

	LeadTimeDemand     float64 `json:"lead_time_demand" db:"lead_time_demand"`
	LeadTimeDemandStd  float64 `json:"lead_time_demand_std" db:"lead_time_demand_std"`
	EOQ                float64 `json:"eoq" db:"eoq"`
	ReorderPoint       float64 `json:"reorder_point" db:"reorder_point"`
	SafetyStock        float64 `json:"safety_stock" db:"safety_stock"`
	OptimalInventory   float64 `json:"optimal_inventory" db:"optimal_inventory"`
	AnnualHoldingCost  float64 `json:"annual_holding_cost" db:"annual_holding_cost"`
	AnnualOrderingCost float64 `json:"annual_ordering_cost" db:"annual_ordering_cost"`
	TotalAnnualCost    float64 `json:"total_annual_cost" db:"total_annual_cost"`
}

// ItemFailure pairs a rejected input record's SKU with the error that
// rejected it, for the partial-failure batch contract.
type ItemFailure struct {
	SKUID string `json:"sku_id"`
	Error string `json:"error"`
}

// CatalogItem is a stored catalog row: the optimizer input fields plus
// the descriptive attributes the analysis modules work on.
type CatalogItem struct {
	Item

	Category      string    `json:"category" db:"category"`
	SalesVelocity float64   `json:"sales_velocity" db:"sales_velocity"`
	TurnoverRate  float64   `json:"turnover_rate" db:"turnover_rate"`
	CurrentStock  int       `json:"current_stock" db:"current_stock"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DailySale is one day of sales history for a SKU.
type DailySale struct {
	Date     time.Time `json:"date" db:"date"`
	SKUID    string    `json:"sku_id" db:"sku_id"`
	Category string    `json:"category" db:"category"`
	Quantity int       `json:"quantity" db:"quantity"`
}

// ItemFilter restricts catalog and result queries. SortBy and SortDir
// only apply to listings that support sorting; unknown fields fall back
// to the listing's default order.
type ItemFilter struct {
	SKUIDs     []string `json:"sku_ids"`
	Categories []string `json:"categories"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	SortBy     string   `json:"sort_by"`
	SortDir    string   `json:"sort_dir"`
}

// ItemsPage is a paginated catalog listing.
type ItemsPage struct {
	Items      []CatalogItem `json:"items"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}
