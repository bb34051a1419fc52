package domain

import "fmt"

// ConfigurationError reports an invalid policy scalar at construction time.
// It is fatal: callers must not fall back to defaults when they receive one.
type ConfigurationError struct {
	Param  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid policy configuration: %s=%v: %s", e.Param, e.Value, e.Reason)
}

// DomainError reports a violated mathematical precondition at call time,
// e.g. an EOQ division by zero or the normal quantile evaluated at a
// boundary. It exists so callers never see a silent NaN or Inf.
type DomainError struct {
	Op     string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// ValidationError reports a malformed item record. It always identifies
// the offending SKU and field so batch consumers can report failures
// per item.
type ValidationError struct {
	SKUID  string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.SKUID == "" {
		return fmt.Sprintf("invalid item: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid item %s: %s: %s", e.SKUID, e.Field, e.Reason)
}
