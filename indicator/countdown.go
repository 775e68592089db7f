package indicator

import (
	"fmt"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
)

const (
	// countdownLength is the number of qualifying bars that complete a countdown.
	countdownLength = 13
	// countdownLookback is the distance of the bar each countdown bar compares against.
	countdownLookback = 2
	// barEight is the countdown count whose close the final bar must exceed.
	barEight = 8
)

// CountdownConfig represents the configuration of the countdown engine.
type CountdownConfig struct {
	// Qualifiers are the cancellation qualifiers applied to setups before counting.
	Qualifiers []Qualifier
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// Countdown runs the thirteen bar countdown and the aggressive countdown for every active setup.
type Countdown struct {
	cfg    *CountdownConfig
	logger *zerolog.Logger
}

// Ensure the countdown engine implements the Indicator interface.
var _ shared.Indicator = (*Countdown)(nil)

// NewCountdown initializes a new countdown engine.
func NewCountdown(cfg *CountdownConfig) *Countdown {
	if cfg == nil {
		cfg = &CountdownConfig{}
	}

	return &Countdown{cfg: cfg, logger: shared.LoggerOrNop(cfg.Logger)}
}

// Name returns the name of the indicator.
func (e *Countdown) Name() string {
	return "countdown"
}

// Requires returns the columns required by the indicator.
func (e *Countdown) Requires() []shared.Column {
	return []shared.Column{
		shared.BullishPriceFlip, shared.BearishPriceFlip, shared.BuySetup, shared.SellSetup,
		shared.TDSTResistance, shared.TDSTSupport, shared.BuySetupTrueEnd, shared.SellSetupTrueEnd,
	}
}

// Provides returns the columns written by the indicator.
func (e *Countdown) Provides() []shared.Column {
	return []shared.Column{
		shared.BuyCountdown, shared.SellCountdown, shared.AggressiveBuyCountdown,
		shared.AggressiveSellCountdown, shared.PatternStartIndex,
	}
}

// Apply runs countdowns over the provided series.
func (e *Countdown) Apply(s *shared.Series) error {
	err := s.Require(e.Name(), e.Requires()...)
	if err != nil {
		return err
	}

	s.EnsureColumn(shared.PatternStartIndex)

	for _, side := range []shared.Side{shared.Buy, shared.Sell} {
		err := e.applySide(s, side)
		if err != nil {
			return fmt.Errorf("counting %s countdowns: %w", side.String(), err)
		}
	}

	return nil
}

// countdownResult represents the emission bars of a setup's countdowns, -1 when absent.
type countdownResult struct {
	countdown  int
	aggressive int
}

// applySide runs countdowns for every active setup of the provided side.
func (e *Countdown) applySide(s *shared.Series, side shared.Side) error {
	active, err := ActiveSetups(s, side, e.cfg.Qualifiers...)
	if err != nil {
		return err
	}

	countdowns := s.ResetColumn(shared.CountdownColumn(side))
	aggressive := s.ResetColumn(shared.AggressiveCountdownColumn(side))

	for _, setup := range active {
		res, err := e.count(s, side, setup)
		if err != nil {
			return err
		}

		if res.countdown >= 0 {
			countdowns[res.countdown] = 1
			err := s.MergeMax(shared.PatternStartIndex, res.countdown, float64(setup-(setupLength-1)))
			if err != nil {
				return err
			}

			e.logger.Debug().Msgf("%s countdown on %s from setup %d completed at %d",
				side.String(), s.Market, setup, res.countdown)
		}

		if res.aggressive >= 0 {
			aggressive[res.aggressive] = 1
		}
	}

	return nil
}

// count runs the countdown state machine for the setup completed at the provided index.
func (e *Countdown) count(s *shared.Series, side shared.Side, setup int) (countdownResult, error) {
	res := countdownResult{countdown: -1, aggressive: -1}

	trueEnds, _ := s.Column(shared.TrueEndColumn(side))
	if int(trueEnds[setup])-setup >= setupLength {
		e.logger.Debug().Msgf("%s setup %d on %s recycled, true end %d", side.String(),
			setup, s.Market, int(trueEnds[setup]))
		return res, nil
	}

	tdst, _ := s.Column(shared.TDSTColumn(side))
	opposite, _ := s.Column(shared.SetupColumn(side.Opposite()))
	closes := s.Closes()
	highs := s.Highs()
	lows := s.Lows()

	var count, aggressiveCount int
	var barEightClose float64

	for i := setup; i < s.Len() && (res.countdown < 0 || res.aggressive < 0); i++ {
		var cancelled, qualifies, aggressiveQualifies, completes bool

		switch side {
		case shared.Buy:
			trueLow, err := shared.TrueLow(s, i)
			if err != nil {
				return res, err
			}
			cancelled = trueLow > tdst[i]
			qualifies = closes[i] <= lows[i-countdownLookback]
			aggressiveQualifies = lows[i] <= lows[i-countdownLookback]
			completes = lows[i] < barEightClose
		case shared.Sell:
			trueHigh, err := shared.TrueHigh(s, i)
			if err != nil {
				return res, err
			}
			cancelled = trueHigh < tdst[i]
			qualifies = closes[i] >= highs[i-countdownLookback]
			aggressiveQualifies = highs[i] >= highs[i-countdownLookback]
			completes = highs[i] > barEightClose
		}

		if cancelled || opposite[i] != 0 {
			break
		}

		if res.countdown < 0 && qualifies {
			switch {
			case count < countdownLength-1:
				count++
				if count == barEight {
					barEightClose = closes[i]
				}
			case completes:
				res.countdown = i
			}
		}

		if res.aggressive < 0 && aggressiveQualifies {
			aggressiveCount++
			if aggressiveCount == countdownLength {
				res.aggressive = i
			}
		}
	}

	return res, nil
}
