package indicator

import (
	"fmt"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
)

const (
	// comboRelaxedCount is the first combo count that only requires a lower (buy) or higher
	// (sell) close than the previous combo bar when counting strictly.
	comboRelaxedCount = 10
)

// ComboConfig represents the configuration of the combo engine.
type ComboConfig struct {
	// Strict restricts combo bars 10 through 13 to a close-only comparison against the
	// previous combo bar's close.
	Strict bool
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// Combo runs the combo countdown from the first bar of every setup.
type Combo struct {
	cfg    *ComboConfig
	logger *zerolog.Logger
}

// Ensure the combo engine implements the Indicator interface.
var _ shared.Indicator = (*Combo)(nil)

// NewCombo initializes a new combo engine.
func NewCombo(cfg *ComboConfig) *Combo {
	if cfg == nil {
		cfg = &ComboConfig{}
	}

	return &Combo{cfg: cfg, logger: shared.LoggerOrNop(cfg.Logger)}
}

// Name returns the name of the indicator.
func (e *Combo) Name() string {
	return "combo"
}

// Requires returns the columns required by the indicator.
func (e *Combo) Requires() []shared.Column {
	return []shared.Column{
		shared.BullishPriceFlip, shared.BearishPriceFlip, shared.BuySetup, shared.SellSetup,
		shared.BuySetupTrueEnd, shared.SellSetupTrueEnd,
	}
}

// Provides returns the columns written by the indicator.
func (e *Combo) Provides() []shared.Column {
	return []shared.Column{shared.BuyCombo, shared.SellCombo, shared.PatternStartIndex}
}

// Apply runs combos over the provided series.
func (e *Combo) Apply(s *shared.Series) error {
	err := s.Require(e.Name(), e.Requires()...)
	if err != nil {
		return err
	}

	s.EnsureColumn(shared.PatternStartIndex)

	for _, side := range []shared.Side{shared.Buy, shared.Sell} {
		combos := s.ResetColumn(shared.ComboColumn(side))

		for _, setup := range findSetups(s, side) {
			emitted := e.count(s, side, setup.start)
			if emitted < 0 {
				continue
			}

			combos[emitted] = 1
			err := s.MergeMax(shared.PatternStartIndex, emitted, float64(setup.start))
			if err != nil {
				return fmt.Errorf("merging %s combo start: %w", side.String(), err)
			}

			e.logger.Debug().Msgf("%s combo on %s from setup %d completed at %d",
				side.String(), s.Market, setup.index, emitted)
		}
	}

	return nil
}

// count runs the combo count from the provided setup start, returning the bar the combo
// completed at or -1.
func (e *Combo) count(s *shared.Series, side shared.Side, start int) int {
	opposite, _ := s.Column(shared.SetupColumn(side.Opposite()))
	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()

	var count int
	var lastClose float64

	for i := start; i < s.Len(); i++ {
		if opposite[i] != 0 {
			return -1
		}

		var qualifies bool
		relaxed := e.cfg.Strict && count >= comboRelaxedCount-1

		switch side {
		case shared.Buy:
			beyondLast := count == 0 || closes[i] < lastClose
			if relaxed {
				qualifies = beyondLast
				break
			}
			qualifies = closes[i] <= lows[i-2] && lows[i] <= lows[i-1] &&
				closes[i] < closes[i-1] && beyondLast
		case shared.Sell:
			beyondLast := count == 0 || closes[i] > lastClose
			if relaxed {
				qualifies = beyondLast
				break
			}
			qualifies = closes[i] >= highs[i-2] && highs[i] >= highs[i-1] &&
				closes[i] > closes[i-1] && beyondLast
		}

		if !qualifies {
			continue
		}

		count++
		lastClose = closes[i]
		if count == countdownLength {
			return i
		}
	}

	return -1
}
