package indicator

import (
	"fmt"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	// nineThirteenNineGap is the minimum number of bars between a countdown's completion and
	// the start of the confirming setup.
	nineThirteenNineGap = 9
)

// NineThirteenNineConfig represents the configuration of the 9-13-9 engine.
type NineThirteenNineConfig struct {
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// NineThirteenNine flags setups that confirm a completed countdown of the same side.
type NineThirteenNine struct {
	cfg    *NineThirteenNineConfig
	logger *zerolog.Logger
}

// Ensure the 9-13-9 engine implements the Indicator interface.
var _ shared.Indicator = (*NineThirteenNine)(nil)

// NewNineThirteenNine initializes a new 9-13-9 engine.
func NewNineThirteenNine(cfg *NineThirteenNineConfig) *NineThirteenNine {
	if cfg == nil {
		cfg = &NineThirteenNineConfig{}
	}

	return &NineThirteenNine{cfg: cfg, logger: shared.LoggerOrNop(cfg.Logger)}
}

// Name returns the name of the indicator.
func (e *NineThirteenNine) Name() string {
	return "nine_thirteen_nine"
}

// Requires returns the columns required by the indicator.
func (e *NineThirteenNine) Requires() []shared.Column {
	return []shared.Column{
		shared.BullishPriceFlip, shared.BearishPriceFlip, shared.BuySetup, shared.SellSetup,
		shared.BuySetupTrueEnd, shared.SellSetupTrueEnd, shared.BuyCountdown, shared.SellCountdown,
	}
}

// Provides returns the columns written by the indicator.
func (e *NineThirteenNine) Provides() []shared.Column {
	return []shared.Column{shared.BuyNineThirteenNine, shared.SellNineThirteenNine, shared.PatternStartIndex}
}

// Apply flags 9-13-9 patterns over the provided series.
func (e *NineThirteenNine) Apply(s *shared.Series) error {
	err := s.Require(e.Name(), e.Requires()...)
	if err != nil {
		return err
	}

	s.EnsureColumn(shared.PatternStartIndex)

	for _, side := range []shared.Side{shared.Buy, shared.Sell} {
		err := e.applySide(s, side)
		if err != nil {
			return fmt.Errorf("flagging %s 9-13-9s: %w", side.String(), err)
		}
	}

	return nil
}

// applySide flags 9-13-9 patterns of the provided side.
func (e *NineThirteenNine) applySide(s *shared.Series, side shared.Side) error {
	countdowns, _ := s.Column(shared.CountdownColumn(side))
	flips, _ := s.Column(shared.SeedFlipColumn(side))
	opposite, _ := s.Column(shared.SetupColumn(side.Opposite()))
	setups := findSetups(s, side)
	flags := s.ResetColumn(shared.NineThirteenNineColumn(side))

	isSet := func(v float64) bool { return v != 0 }

	for c := range countdowns {
		if countdowns[c] == 0 {
			continue
		}

		confirming, ok := lo.Find(setups, func(rec setupRecord) bool {
			return rec.start >= c+nineThirteenNineGap
		})
		if !ok {
			continue
		}

		between := c + 1
		if lo.ContainsBy(opposite[between:confirming.index], isSet) {
			continue
		}
		if lo.CountBy(flips[between:confirming.index], isSet) != 1 {
			continue
		}

		flags[confirming.index] = 1
		err := s.MergeMax(shared.PatternStartIndex, confirming.index, float64(confirming.start))
		if err != nil {
			return err
		}

		e.logger.Debug().Msgf("%s 9-13-9 on %s: countdown %d confirmed by setup %d",
			side.String(), s.Market, c, confirming.index)
	}

	return nil
}
