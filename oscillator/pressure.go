package oscillator

import (
	"github.com/dnldd/demark/shared"
)

// pressurePeriod is the number of bars TD Pressure sums over.
const pressurePeriod = 5

// Pressure computes TD Pressure: the volume weighted share of each bar's true range closed
// above the true low, summed over five bars and scaled 0 to 100.
type Pressure struct{}

// Ensure TD Pressure implements the Indicator interface.
var _ shared.Indicator = (*Pressure)(nil)

// NewPressure initializes a new TD Pressure oscillator.
func NewPressure() *Pressure {
	return &Pressure{}
}

// Name returns the name of the indicator.
func (p *Pressure) Name() string {
	return "td_pressure"
}

// Requires returns the columns required by the indicator.
func (p *Pressure) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (p *Pressure) Provides() []shared.Column {
	return []shared.Column{shared.TDPressure}
}

// MinBars returns the number of bars the indicator requires.
func (p *Pressure) MinBars() int {
	return pressurePeriod + 1
}

// Apply computes TD Pressure over the provided series.
func (p *Pressure) Apply(s *shared.Series) error {
	err := requireBars(s, p.Name(), p.MinBars())
	if err != nil {
		return err
	}

	n := s.Len()
	closes := s.Closes()
	volumes := s.Volumes()

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

		trueRange := trueHigh - trueLow
		if trueRange == 0 {
			continue
		}

		buying[i] = (closes[i] - trueLow) / trueRange * volumes[i]
		selling[i] = (trueHigh - closes[i]) / trueRange * volumes[i]
	}

	buySums := rollingSum(buying, pressurePeriod)
	sellSums := rollingSum(selling, pressurePeriod)

	out := s.ResetColumn(shared.TDPressure)
	for i := pressurePeriod; i < n; i++ {
		out[i] = ratio(buySums[i], sellSums[i])
	}

	return nil
}
