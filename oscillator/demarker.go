package oscillator

import (
	"github.com/dnldd/demark/shared"
)

const (
	// demarkerIPeriod is the number of bars DeMarker I sums over.
	demarkerIPeriod = 13
	// demarkerIIPeriod is the number of bars DeMarker II sums over.
	demarkerIIPeriod = 8
)

// DemarkerI compares the sum of the highs made above the prior high with the sum of the
// lows made below the prior low over thirteen bars, scaled 0 to 100.
type DemarkerI struct{}

// Ensure DeMarker I implements the Indicator interface.
var _ shared.Indicator = (*DemarkerI)(nil)

// NewDemarkerI initializes a new DeMarker I oscillator.
func NewDemarkerI() *DemarkerI {
	return &DemarkerI{}
}

// Name returns the name of the indicator.
func (d *DemarkerI) Name() string {
	return "demarker_i"
}

// Requires returns the columns required by the indicator.
func (d *DemarkerI) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (d *DemarkerI) Provides() []shared.Column {
	return []shared.Column{shared.DemarkerI}
}

// MinBars returns the number of bars the indicator requires.
func (d *DemarkerI) MinBars() int {
	return demarkerIPeriod + 1
}

// Apply computes DeMarker I over the provided series.
func (d *DemarkerI) Apply(s *shared.Series) error {
	err := requireBars(s, d.Name(), d.MinBars())
	if err != nil {
		return err
	}

	n := s.Len()
	highs := s.Highs()
	lows := s.Lows()

	ups := make([]float64, n)
	downs := make([]float64, n)
	for i := 1; i < n; i++ {
		if highs[i] > highs[i-1] {
			ups[i] = highs[i] - highs[i-1]
		}
		if lows[i] < lows[i-1] {
			downs[i] = lows[i-1] - lows[i]
		}
	}

	upSums := rollingSum(ups, demarkerIPeriod)
	downSums := rollingSum(downs, demarkerIPeriod)

	out := s.ResetColumn(shared.DemarkerI)
	for i := demarkerIPeriod; i < n; i++ {
		out[i] = ratio(upSums[i], downSums[i])
	}

	return nil
}

// DemarkerII compares buying pressure, the move from the prior close to the true high plus
// the close's distance from the low, with the mirrored selling pressure over eight bars,
// scaled 0 to 100.
type DemarkerII struct{}

// Ensure DeMarker II implements the Indicator interface.
var _ shared.Indicator = (*DemarkerII)(nil)

// NewDemarkerII initializes a new DeMarker II oscillator.
func NewDemarkerII() *DemarkerII {
	return &DemarkerII{}
}

// Name returns the name of the indicator.
func (d *DemarkerII) Name() string {
	return "demarker_ii"
}

// Requires returns the columns required by the indicator.
func (d *DemarkerII) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (d *DemarkerII) Provides() []shared.Column {
	return []shared.Column{shared.DemarkerII}
}

// MinBars returns the number of bars the indicator requires.
func (d *DemarkerII) MinBars() int {
	return demarkerIIPeriod + 1
}

// Apply computes DeMarker II over the provided series.
func (d *DemarkerII) Apply(s *shared.Series) error {
	err := requireBars(s, d.Name(), d.MinBars())
	if err != nil {
		return err
	}

	n := s.Len()
	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()

	buying := make([]float64, n)
	selling := make([]float64, n)
	for i := 1; i < n; i++ {
		trueHigh, err := shared.TrueHigh(s, i)
		if err != nil {
			return err
		}
		trueLow, err := shared.TrueLow(s, i)
		if err != nil {
			return err
		}

		buying[i] = (trueHigh - closes[i-1]) + (closes[i] - lows[i])
		selling[i] = (closes[i-1] - trueLow) + (highs[i] - closes[i])
	}

	buySums := rollingSum(buying, demarkerIIPeriod)
	sellSums := rollingSum(selling, demarkerIIPeriod)

	out := s.ResetColumn(shared.DemarkerII)
	for i := demarkerIIPeriod; i < n; i++ {
		out[i] = ratio(buySums[i], sellSums[i])
	}

	return nil
}
