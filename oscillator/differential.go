package oscillator

import (
	"github.com/dnldd/demark/shared"
)

const (
	// differentialBars is the number of bars the differential and reverse differential span.
	differentialBars = 3
	// antiDifferentialBars is the number of bars the anti-differential spans.
	antiDifferentialBars = 5
)

// Differential computes TD Differential, TD Reverse Differential and TD Anti-Differential.
// Each column holds 1 for a buy, -1 for a sell and 0 otherwise.
type Differential struct{}

// Ensure the differential family implements the Indicator interface.
var _ shared.Indicator = (*Differential)(nil)

// NewDifferential initializes a new differential family.
func NewDifferential() *Differential {
	return &Differential{}
}

// Name returns the name of the indicator.
func (d *Differential) Name() string {
	return "td_differential"
}

// Requires returns the columns required by the indicator.
func (d *Differential) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (d *Differential) Provides() []shared.Column {
	return []shared.Column{shared.TDDifferential, shared.TDReverseDifferential, shared.TDAntiDifferential}
}

// pressures returns the buying pressure, the close less the true low, and the selling
// pressure, the true high less the close, of the provided bar.
func pressures(s *shared.Series, i int) (float64, float64, error) {
	trueHigh, err := shared.TrueHigh(s, i)
	if err != nil {
		return 0, 0, err
	}
	trueLow, err := shared.TrueLow(s, i)
	if err != nil {
		return 0, 0, err
	}

	c := s.Closes()[i]
	return c - trueLow, trueHigh - c, nil
}

// MinBars returns the number of bars the indicator requires.
func (d *Differential) MinBars() int {
	return antiDifferentialBars
}

// Apply computes the differential family over the provided series.
func (d *Differential) Apply(s *shared.Series) error {
	err := requireBars(s, d.Name(), d.MinBars())
	if err != nil {
		return err
	}

	n := s.Len()
	closes := s.Closes()
	differential := s.ResetColumn(shared.TDDifferential)
	reverse := s.ResetColumn(shared.TDReverseDifferential)
	anti := s.ResetColumn(shared.TDAntiDifferential)

	for i := differentialBars - 1; i < n; i++ {
		buying, selling, err := pressures(s, i)
		if err != nil {
			return err
		}
		prevBuying, prevSelling, err := pressures(s, i-1)
		if err != nil {
			return err
		}

		lowerCloses := closes[i] < closes[i-1] && closes[i-1] < closes[i-2]
		higherCloses := closes[i] > closes[i-1] && closes[i-1] > closes[i-2]
		strengthening := buying > prevBuying && selling < prevSelling
		weakening := buying < prevBuying && selling > prevSelling

		// Pressure diverging from two lower closes anticipates a low, and vice versa.
		differential[i] = signal(lowerCloses && strengthening, higherCloses && weakening)
		// Pressure diverging from two higher closes anticipates continuation, and vice versa.
		reverse[i] = signal(higherCloses && weakening, lowerCloses && strengthening)

		if i >= antiDifferentialBars-1 {
			buy := closes[i-4] > closes[i-3] && closes[i-3] > closes[i-2] &&
				closes[i-1] > closes[i-2] && closes[i] < closes[i-1]
			sell := closes[i-4] < closes[i-3] && closes[i-3] < closes[i-2] &&
				closes[i-1] < closes[i-2] && closes[i] > closes[i-1]
			anti[i] = signal(buy, sell)
		}
	}

	return nil
}
