package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Optimization run lifecycle states.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// OptimizationRun records one persisted optimization pass over the
// catalog: which policy version drove it, how it went, and the cost
// rollup of its results.
type OptimizationRun struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	PolicyVersion   int        `json:"policy_version" db:"policy_version"`
	Status          string     `json:"status" db:"status"`
	ItemCount       int        `json:"item_count" db:"item_count"`
	FailureCount    int        `json:"failure_count" db:"failure_count"`
	TotalAnnualCost float64    `json:"total_annual_cost" db:"total_annual_cost"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	ErrorMessage    *string    `json:"error_message,omitempty" db:"error_message"`
}

// Movement-speed labels assigned by the SKU categorizer.
const (
	MovementFast   = "fast-moving"
	MovementMedium = "medium-moving"
	MovementSlow   = "slow-moving"
)

var movementLabels = map[string]string{
	"fast":   MovementFast,
	"medium": MovementMedium,
	"slow":   MovementSlow,
}

// ParseMovementLabel resolves a label or its short form
// (case-insensitive) to the canonical movement label.
func ParseMovementLabel(s string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if label, ok := movementLabels[v]; ok {
		return label, true
	}
	switch v {
	case MovementFast, MovementMedium, MovementSlow:
		return v, true
	}
	return "", false
}
