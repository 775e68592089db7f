package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a prerequisite indicator column is absent.
	ErrMissingColumn = errors.New("missing prerequisite column")
	// ErrMutuallyExclusive is returned when mutually exclusive parameters are both set.
	ErrMutuallyExclusive = errors.New("mutually exclusive parameters")
	// ErrUnknownIndicator is returned for unknown indicator or pattern names.
	ErrUnknownIndicator = errors.New("unknown indicator")
	// ErrColumnLength is returned when a column does not match the series length.
	ErrColumnLength = errors.New("column length mismatch")
	// ErrOutOfBounds is returned when an index or lookback exceeds the series.
	ErrOutOfBounds = errors.New("index out of bounds")
)

// ConfigurationError represents a misconfigured indicator computation. These fail fast and are
// never recovered from by the engines.
type ConfigurationError struct {
	Indicator string
	Err       error
}

// Error returns the error string.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: configuration error: %v", e.Indicator, e.Err)
}

// Unwrap returns the wrapped error.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a configuration error for the named indicator.
func NewConfigurationError(indicator string, err error) *ConfigurationError {
	return &ConfigurationError{Indicator: indicator, Err: err}
}

// IndexBoundsError represents an index or lookback window that falls outside the series.
type IndexBoundsError struct {
	Index  int
	Length int
	Reason string
}

// Error returns the error string.
func (e *IndexBoundsError) Error() string {
	return fmt.Sprintf("index %d out of bounds for series of length %d: %s", e.Index, e.Length, e.Reason)
}

// Unwrap returns the sentinel bounds error.
func (e *IndexBoundsError) Unwrap() error {
	return ErrOutOfBounds
}

// NewIndexBoundsError creates an index bounds error.
func NewIndexBoundsError(index int, length int, reason string) *IndexBoundsError {
	return &IndexBoundsError{Index: index, Length: length, Reason: reason}
}
