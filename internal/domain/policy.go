package domain

import (
	"math"
	"time"
)

// PolicyFileVersion identifies the on-disk policy serialization format.
const PolicyFileVersion = 1

// Policy holds the three scalars governing the optimizer. It is
// immutable after validation; updates create a new stored version.
//
// StockoutCostRate is accepted and persisted but not consumed by the
// current cost formula. It is reserved for a future stockout-cost term.
type Policy struct {
	HoldingCostRate  float64 `json:"holding_cost_rate" db:"holding_cost_rate"`
	StockoutCostRate float64 `json:"stockout_cost_rate" db:"stockout_cost_rate"`
	ServiceLevel     float64 `json:"service_level" db:"service_level"`
}

// DefaultPolicy returns the reference defaults: 25% holding cost, 50%
// stockout cost, 95% service level.
func DefaultPolicy() Policy {
	return Policy{
		HoldingCostRate:  0.25,
		StockoutCostRate: 0.5,
		ServiceLevel:     0.95,
	}
}

// Validate rejects rates outside [0, inf) and service levels outside
// the open interval (0,1).
func (p Policy) Validate() error {
	rates := []struct {
		name  string
		value float64
	}{
		{"holding_cost_rate", p.HoldingCostRate},
		{"stockout_cost_rate", p.StockoutCostRate},
	}
	for _, r := range rates {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) {
			return &ConfigurationError{Param: r.name, Value: r.value, Reason: "must be finite"}
		}
		if r.value < 0 {
			return &ConfigurationError{Param: r.name, Value: r.value, Reason: "must not be negative"}
		}
	}

	if math.IsNaN(p.ServiceLevel) || p.ServiceLevel <= 0 || p.ServiceLevel >= 1 {
		return &ConfigurationError{
			Param:  "service_level",
			Value:  p.ServiceLevel,
			Reason: "must lie strictly between 0 and 1",
		}
	}

	return nil
}

// PolicyVersion is a stored policy revision. The highest version is the
// active one.
type PolicyVersion struct {
	Version   int       `json:"version" db:"version"`
	Policy    Policy    `json:"policy"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PolicyFile is the flat key-value serialization of the three policy
// scalars, the only state the optimizer persists.
type PolicyFile struct {
	Version          int     `json:"version"`
	HoldingCostRate  float64 `json:"holding_cost_rate"`
	StockoutCostRate float64 `json:"stockout_cost_rate"`
	ServiceLevel     float64 `json:"service_level"`
}

// File returns the serializable form of p.
func (p Policy) File() PolicyFile {
	return PolicyFile{
		Version:          PolicyFileVersion,
		HoldingCostRate:  p.HoldingCostRate,
		StockoutCostRate: p.StockoutCostRate,
		ServiceLevel:     p.ServiceLevel,
	}
}

// Policy converts the serialized form back to a Policy.
func (f PolicyFile) Policy() Policy {
	return Policy{
		HoldingCostRate:  f.HoldingCostRate,
		StockoutCostRate: f.StockoutCostRate,
		ServiceLevel:     f.ServiceLevel,
	}
}
