package domain

// CategoryBreakdown aggregates optimization results for one product
// category.
type CategoryBreakdown struct {
	Category        string  `json:"category" db:"category"`
	ItemCount       int     `json:"item_count" db:"item_count"`
	TotalAnnualCost float64 `json:"total_annual_cost" db:"total_annual_cost"`
	AvgEOQ          float64 `json:"avg_eoq" db:"avg_eoq"`
	AvgSafetyStock  float64 `json:"avg_safety_stock" db:"avg_safety_stock"`
}

// TopCostItem is one row of the highest-cost item table on the
// dashboard.
type TopCostItem struct {
	SKUID           string  `json:"sku_id" db:"sku_id"`
	Category        string  `json:"category" db:"category"`
	EOQ             float64 `json:"eoq" db:"eoq"`
	ReorderPoint    float64 `json:"reorder_point" db:"reorder_point"`
	SafetyStock     float64 `json:"safety_stock" db:"safety_stock"`
	TotalAnnualCost float64 `json:"total_annual_cost" db:"total_annual_cost"`
}

// OptimizationSummary aggregates the latest completed run for the
// dashboard. Money figures are decimal strings assembled by the
// valuation layer so display values carry no float error.
type OptimizationSummary struct {
	RunID               string              `json:"run_id"`
	PolicyVersion       int                 `json:"policy_version"`
	ItemCount           int                 `json:"item_count"`
	FailureCount        int                 `json:"failure_count"`
	TotalAnnualCost     string              `json:"total_annual_cost"`
	TotalHoldingCost    string              `json:"total_holding_cost"`
	TotalOrderingCost   string              `json:"total_ordering_cost"`
	InventoryInvestment string              `json:"inventory_investment"`
	AvgUnitCost         string              `json:"avg_unit_cost"`
	Categories          []CategoryBreakdown `json:"categories"`
	TopItems            []TopCostItem       `json:"top_items"`
}

// ResultsPage is a paginated listing of optimization results for a run.
type ResultsPage struct {
	Results    []OptimizedItem `json:"results"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// SummaryFilter restricts the dashboard summary. An empty filter means
// the latest run over the whole catalog.
type SummaryFilter struct {
	Category string `json:"category"`
	RunID    string `json:"run_id"`
}
