package indicator

import (
	"fmt"
	"time"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
)

const (
	// setupLength is the number of consecutive bars a setup spans.
	setupLength = 9
	// setupLookback is the distance of the close each setup bar compares against.
	setupLookback = 4
)

// SetupConfig represents the configuration of the setup engine.
type SetupConfig struct {
	// MaxBars limits the scan to the most recent bars of the series. Zero scans every bar.
	MaxBars int
	// Start limits the scan to price flips at or after the provided time.
	Start time.Time
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *SetupConfig) Validate() error {
	if cfg.MaxBars < 0 {
		return fmt.Errorf("max bars cannot be negative: %d", cfg.MaxBars)
	}
	if cfg.MaxBars > 0 && !cfg.Start.IsZero() {
		return fmt.Errorf("%w: max bars and start cannot both be set", shared.ErrMutuallyExclusive)
	}

	return nil
}

// Setup detects buy and sell setups: nine consecutive bars closing below (buy) or above
// (sell) the close four bars earlier, seeded by an opposing price flip.
type Setup struct {
	cfg    *SetupConfig
	logger *zerolog.Logger
}

// Ensure the setup engine implements the Indicator interface.
var _ shared.Indicator = (*Setup)(nil)

// NewSetup initializes a new setup engine.
func NewSetup(cfg *SetupConfig) *Setup {
	if cfg == nil {
		cfg = &SetupConfig{}
	}

	return &Setup{cfg: cfg, logger: shared.LoggerOrNop(cfg.Logger)}
}

// Name returns the name of the indicator.
func (e *Setup) Name() string {
	return "setup"
}

// Requires returns the columns required by the indicator.
func (e *Setup) Requires() []shared.Column {
	return []shared.Column{shared.BullishPriceFlip, shared.BearishPriceFlip}
}

// Provides returns the columns written by the indicator.
func (e *Setup) Provides() []shared.Column {
	return []shared.Column{
		shared.BuySetup, shared.SellSetup, shared.PerfectBuySetup, shared.PerfectSellSetup,
		shared.TDSTResistance, shared.TDSTSupport, shared.BuySetupTrueEnd, shared.SellSetupTrueEnd,
	}
}

// setupHolds returns whether the close at the provided index satisfies the setup condition of
// the provided side.
func setupHolds(closes []float64, side shared.Side, k int) bool {
	if k < setupLookback {
		return false
	}

	if side == shared.Buy {
		return closes[k] < closes[k-setupLookback]
	}

	return closes[k] > closes[k-setupLookback]
}

// scanStart returns the first index price flips are considered from.
func (e *Setup) scanStart(s *shared.Series) int {
	switch {
	case e.cfg.MaxBars > 0:
		return max(s.Len()-e.cfg.MaxBars, 0)
	case !e.cfg.Start.IsZero():
		for idx := range s.Len() {
			if !s.Date(idx).Before(e.cfg.Start) {
				return idx
			}
		}
		return s.Len()
	default:
		return 0
	}
}

// Apply detects setups over the provided series.
func (e *Setup) Apply(s *shared.Series) error {
	err := e.cfg.Validate()
	if err != nil {
		return shared.NewConfigurationError(e.Name(), err)
	}

	err = s.Require(e.Name(), e.Requires()...)
	if err != nil {
		return err
	}

	from := e.scanStart(s)
	for _, side := range []shared.Side{shared.Buy, shared.Sell} {
		err := e.applySide(s, side, from)
		if err != nil {
			return fmt.Errorf("detecting %s setups: %w", side.String(), err)
		}
	}

	return nil
}

// applySide detects setups of the provided side seeded by flips at or after the provided index.
func (e *Setup) applySide(s *shared.Series, side shared.Side, from int) error {
	n := s.Len()
	closes := s.Closes()
	flips, _ := s.Column(shared.SeedFlipColumn(side))

	setups := s.ResetColumn(shared.SetupColumn(side))
	perfect := s.ResetColumn(shared.PerfectSetupColumn(side))
	tdst := s.ResetColumn(shared.TDSTColumn(side))
	trueEnds := s.ResetColumn(shared.TrueEndColumn(side))

	for f := from; f < n; f++ {
		if flips[f] == 0 {
			continue
		}

		end := f + setupLength - 1
		if end >= n {
			break
		}

		complete := true
		for k := f; k <= end; k++ {
			if !setupHolds(closes, side, k) {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}

		var level float64
		var err error
		switch side {
		case shared.Buy:
			level, err = shared.TrueHigh(s, f)
		case shared.Sell:
			level, err = shared.TrueLow(s, f)
		}
		if err != nil {
			return err
		}

		trueEnd := end
		for trueEnd+1 < n && setupHolds(closes, side, trueEnd+1) {
			trueEnd++
		}

		setups[end] = 1
		trueEnds[end] = float64(trueEnd)
		for j := end; j < n; j++ {
			tdst[j] = level
		}

		if isPerfect(s, side, f, trueEnd) {
			perfect[end] = 1
		}

		e.logger.Debug().Msgf("%s setup on %s completed at %d (flip %d, true end %d, tdst %.5f)",
			side.String(), s.Market, end, f, trueEnd, level)
	}

	return nil
}

// isPerfect returns whether the setup beginning at the provided flip index is perfected. A buy
// setup is perfected when bar 8, bar 9 or a later bar up to its true end records a low at or
// below the lows of bars 6 and 7, a sell setup mirrors this with highs.
func isPerfect(s *shared.Series, side shared.Side, flip int, trueEnd int) bool {
	bar6 := flip + 5
	bar7 := flip + 6
	bar8 := flip + 7

	switch side {
	case shared.Buy:
		lows := s.Lows()
		ref := min(lows[bar6], lows[bar7])
		for k := bar8; k <= trueEnd; k++ {
			if lows[k] <= ref {
				return true
			}
		}
	case shared.Sell:
		highs := s.Highs()
		ref := max(highs[bar6], highs[bar7])
		for k := bar8; k <= trueEnd; k++ {
			if highs[k] >= ref {
				return true
			}
		}
	}

	return false
}
