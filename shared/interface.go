package shared

// Indicator defines the requirements of an indicator computation over a price series.
type Indicator interface {
	// Name returns the name of the indicator.
	Name() string
	// Requires returns the columns that must be present before the indicator is applied.
	Requires() []Column
	// Provides returns the columns the indicator writes.
	Provides() []Column
	// Apply computes the indicator over the provided series, mutating it in place.
	Apply(s *Series) error
}
