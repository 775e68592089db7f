package oscillator

import (
	"github.com/dnldd/demark/shared"
)

// camouflageBars is the number of bars TD Camouflage spans, the most of the initiation family.
const camouflageBars = 4

// Initiation computes the TD initiation family: Camouflage, Clop, Clopwin, Open and Trap. Each
// column holds 1 for a buy, -1 for a sell and 0 otherwise.
type Initiation struct{}

// Ensure the initiation family implements the Indicator interface.
var _ shared.Indicator = (*Initiation)(nil)

// NewInitiation initializes a new initiation family.
func NewInitiation() *Initiation {
	return &Initiation{}
}

// Name returns the name of the indicator.
func (in *Initiation) Name() string {
	return "td_initiation"
}

// Requires returns the columns required by the indicator.
func (in *Initiation) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (in *Initiation) Provides() []shared.Column {
	return []shared.Column{shared.TDCamouflage, shared.TDClop, shared.TDClopwin, shared.TDOpen, shared.TDTrap}
}

// MinBars returns the number of bars the indicator requires.
func (in *Initiation) MinBars() int {
	return camouflageBars
}

// Apply computes the initiation family over the provided series.
func (in *Initiation) Apply(s *shared.Series) error {
	err := requireBars(s, in.Name(), in.MinBars())
	if err != nil {
		return err
	}

	n := s.Len()
	opens := s.Opens()
	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()

	camouflage := s.ResetColumn(shared.TDCamouflage)
	clop := s.ResetColumn(shared.TDClop)
	clopwin := s.ResetColumn(shared.TDClopwin)
	open := s.ResetColumn(shared.TDOpen)
	trap := s.ResetColumn(shared.TDTrap)

	for i := 1; i < n; i++ {
		o, h, l, c := opens[i], highs[i], lows[i], closes[i]
		o1, h1, l1, c1 := opens[i-1], highs[i-1], lows[i-1], closes[i-1]

		// Opens below the prior open and close, then trades above both.
		clop[i] = signal(
			o < c1 && o < o1 && h > c1 && h > o1,
			o > c1 && o > o1 && l < c1 && l < o1,
		)

		bodyLow, bodyHigh := min(o1, c1), max(o1, c1)
		contained := o >= bodyLow && o <= bodyHigh && c >= bodyLow && c <= bodyHigh
		clopwin[i] = signal(contained && c > c1, contained && c < c1)

		// Gaps beyond the prior bar, then trades back into it.
		open[i] = signal(o < l1 && h > l1, o > h1 && l < h1)

		inside := o >= l1 && o <= h1
		trap[i] = signal(inside && h > h1, inside && l < l1)

		if i >= camouflageBars-1 {
			trueLow, err := shared.TrueLow(s, i-2)
			if err != nil {
				return err
			}
			trueHigh, err := shared.TrueHigh(s, i-2)
			if err != nil {
				return err
			}

			camouflage[i] = signal(
				c < c1 && c > o && l < trueLow,
				c > c1 && c < o && h > trueHigh,
			)
		}
	}

	return nil
}
