package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is matched by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ConfigError describes which configuration field was rejected and why.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func newConfigError(field string, value any, reason string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Reason: reason}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s (got %v)", e.Field, e.Reason, e.Value)
}

// Is reports ErrInvalidConfig so callers can use errors.Is without a type assertion.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
