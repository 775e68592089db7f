package oscillator

import (
	"math"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
)

const (
	// defaultREIPeriod is the default number of bars the range expansion index sums over.
	defaultREIPeriod = 5
	// reiLookback is the farthest bar a single range expansion term compares against.
	reiLookback = 8
	// poqThreshold is the range expansion index level beyond which the market is overbought
	// (positive) or oversold (negative).
	poqThreshold = 40
	// poqMaxDuration is the longest overbought or oversold run the qualifier accepts.
	poqMaxDuration = 5
)

// REIConfig represents the configuration of the range expansion index.
type REIConfig struct {
	// Period is the number of bars summed, five when unset.
	Period int
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// REI computes the range expansion index and its price oscillator qualifier.
type REI struct {
	cfg    *REIConfig
	logger *zerolog.Logger
}

// Ensure the range expansion index implements the Indicator interface.
var _ shared.Indicator = (*REI)(nil)

// NewREI initializes a new range expansion index.
func NewREI(cfg *REIConfig) *REI {
	if cfg == nil {
		cfg = &REIConfig{}
	}
	if cfg.Period == 0 {
		cfg.Period = defaultREIPeriod
	}

	return &REI{cfg: cfg, logger: shared.LoggerOrNop(cfg.Logger)}
}

// Name returns the name of the indicator.
func (r *REI) Name() string {
	return "rei"
}

// Requires returns the columns required by the indicator.
func (r *REI) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (r *REI) Provides() []shared.Column {
	return []shared.Column{shared.REI, shared.POQ}
}

// MinBars returns the number of bars the indicator requires.
func (r *REI) MinBars() int {
	return reiLookback + r.cfg.Period
}

// Apply computes the range expansion index and the qualifier over the provided series.
func (r *REI) Apply(s *shared.Series) error {
	if r.cfg.Period < 1 {
		return shared.NewConfigurationError(r.Name(), errPeriod(r.cfg.Period))
	}

	err := requireBars(s, r.Name(), r.MinBars())
	if err != nil {
		return err
	}

	n := s.Len()
	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()

	nums := make([]float64, n)
	dens := make([]float64, n)
	for i := reiLookback; i < n; i++ {
		c1 := highs[i] >= lows[i-5] || highs[i] >= lows[i-6]
		c2 := highs[i-2] >= closes[i-7] || highs[i-2] >= closes[i-8]
		c3 := lows[i] <= highs[i-5] || lows[i] <= highs[i-6]
		c4 := lows[i-2] <= closes[i-7] || lows[i-2] <= closes[i-8]

		if (c1 || c2) && (c3 || c4) {
			nums[i] = (highs[i] - highs[i-2]) + (lows[i] - lows[i-2])
		}
		dens[i] = math.Abs(highs[i]-highs[i-2]) + math.Abs(lows[i]-lows[i-2])
	}

	numSums := rollingSum(nums, r.cfg.Period)
	denSums := rollingSum(dens, r.cfg.Period)

	rei := s.ResetColumn(shared.REI)
	for i := reiLookback + r.cfg.Period - 1; i < n; i++ {
		if denSums[i] != 0 {
			rei[i] = numSums[i] / denSums[i] * 100
		}
	}

	poq := s.ResetColumn(shared.POQ)
	first := reiLookback + r.cfg.Period - 1
	for i := first + 2; i < n; i++ {
		poq[i] = qualify(s, rei, first, i)
		if poq[i] != 0 {
			r.logger.Debug().Msgf("%s poq %v qualified at %s (rei %.2f)", s.Market, poq[i],
				s.Date(i).Format(shared.DateLayout), rei[i-1])
		}
	}

	return nil
}

// streak returns the number of consecutive bars ending at the provided index, not before
// first, for which the predicate holds.
func streak(values []float64, first int, end int, holds func(float64) bool) int {
	count := 0
	for k := end; k >= first && holds(values[k]); k-- {
		count++
	}

	return count
}

// qualify returns the price oscillator qualifier at the provided bar: 1 when a short
// oversold run is followed by a trade above the prior high, -1 when a short overbought run
// is followed by a trade below the prior low, 0 otherwise.
func qualify(s *shared.Series, rei []float64, first int, i int) float64 {
	opens := s.Opens()
	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()

	oversold := streak(rei, first, i-1, func(v float64) bool { return v < -poqThreshold })
	overbought := streak(rei, first, i-1, func(v float64) bool { return v > poqThreshold })

	buy := oversold >= 1 && oversold <= poqMaxDuration &&
		closes[i-1] < closes[i-2] && opens[i] <= highs[i-1] && highs[i] > highs[i-1]
	sell := overbought >= 1 && overbought <= poqMaxDuration &&
		closes[i-1] > closes[i-2] && opens[i] >= lows[i-1] && lows[i] < lows[i-1]

	return signal(buy, sell)
}
