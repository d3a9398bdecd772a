package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrLoadConfig    = errors.New("load config failed")
)

// InvalidConfigError reports the precise offending field, per the fail-fast
// policy: a bad configuration aborts the run before any valuation happens.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// invalidf builds an InvalidConfigError for a field.
func invalidf(field, format string, args ...any) error {
	return &InvalidConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
