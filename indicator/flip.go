package indicator

import (
	"github.com/dnldd/demark/shared"
)

const (
	// flipLookback is the distance of the close a price flip compares against.
	flipLookback = 4
	// minFlipBars is the minimum number of bars a price flip can be evaluated over.
	minFlipBars = flipLookback + 2
)

// PriceFlip detects bullish and bearish price flips. A bullish flip occurs when the close
// rises above the close four bars earlier after the prior bar closed below its own
// four-bars-back close, a bearish flip is the mirror image.
type PriceFlip struct{}

// Ensure the price flip detector implements the Indicator interface.
var _ shared.Indicator = (*PriceFlip)(nil)

// NewPriceFlip initializes a new price flip detector.
func NewPriceFlip() *PriceFlip {
	return &PriceFlip{}
}

// Name returns the name of the indicator.
func (p *PriceFlip) Name() string {
	return "price_flip"
}

// Requires returns the columns required by the indicator.
func (p *PriceFlip) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (p *PriceFlip) Provides() []shared.Column {
	return []shared.Column{shared.BullishPriceFlip, shared.BearishPriceFlip}
}

// MinBars returns the number of bars the indicator requires.
func (p *PriceFlip) MinBars() int {
	return minFlipBars
}

// Apply detects price flips over the provided series.
func (p *PriceFlip) Apply(s *shared.Series) error {
	n := s.Len()
	if n < minFlipBars {
		return shared.NewIndexBoundsError(n-1, n, "price flips require at least 6 bars")
	}

	closes := s.Closes()
	bullish := s.ResetColumn(shared.BullishPriceFlip)
	bearish := s.ResetColumn(shared.BearishPriceFlip)

	for i := minFlipBars - 1; i < n; i++ {
		switch {
		case closes[i] > closes[i-flipLookback] && closes[i-1] < closes[i-flipLookback-1]:
			bullish[i] = 1
		case closes[i] < closes[i-flipLookback] && closes[i-1] > closes[i-flipLookback-1]:
			bearish[i] = 1
		}
	}

	return nil
}
