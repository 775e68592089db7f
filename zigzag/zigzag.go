package zigzag

import (
	"errors"
	"fmt"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
)

const (
	// defaultDeviation is the default percentage move confirming a pivot.
	defaultDeviation = 5.0
	// defaultTolerance is the default fraction harmonic ratio bands are widened by.
	defaultTolerance = 0.1
	// harmonicPivots is the number of pivots a harmonic pattern spans.
	harmonicPivots = 5
)

// ZigZagConfig represents the configuration of the zigzag indicator.
type ZigZagConfig struct {
	// Deviation is the percentage move away from a candidate pivot that confirms it.
	Deviation float64
	// Repaint marks the developing, unconfirmed pivot at the end of the series.
	Repaint bool
	// Tolerance is the fraction harmonic ratio bands are widened by.
	Tolerance float64
	// Patterns restricts classification to the named harmonic patterns. All are considered
	// when empty.
	Patterns []string
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ZigZagConfig) Validate() error {
	var errs error
	if cfg.Deviation <= 0 {
		errs = errors.Join(errs, fmt.Errorf("deviation must be positive, got %f", cfg.Deviation))
	}
	if cfg.Tolerance < 0 || cfg.Tolerance >= 1 {
		errs = errors.Join(errs, fmt.Errorf("tolerance must be in [0, 1), got %f", cfg.Tolerance))
	}
	for _, name := range cfg.Patterns {
		_, err := ParsePattern(name)
		if err != nil {
			errs = errors.Join(errs, err)
		}
	}

	return errs
}

// ZigZag detects percentage deviation pivots and classifies harmonic patterns completing at
// them.
type ZigZag struct {
	cfg    *ZigZagConfig
	logger *zerolog.Logger
}

// Ensure the zigzag implements the Indicator interface.
var _ shared.Indicator = (*ZigZag)(nil)

// NewZigZag initializes a new zigzag indicator.
func NewZigZag(cfg *ZigZagConfig) *ZigZag {
	if cfg == nil {
		cfg = &ZigZagConfig{}
	}
	if cfg.Deviation == 0 {
		cfg.Deviation = defaultDeviation
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = defaultTolerance
	}

	logger := shared.LoggerOrNop(cfg.Logger)

	return &ZigZag{cfg: cfg, logger: logger}
}

// Name returns the name of the indicator.
func (z *ZigZag) Name() string {
	return "zigzag"
}

// Requires returns the columns required by the indicator.
func (z *ZigZag) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (z *ZigZag) Provides() []shared.Column {
	return []shared.Column{shared.ZigZag, shared.HarmonicPattern}
}

// tracker follows the swing under way while scanning for pivots.
type tracker struct {
	highs     []float64
	lows      []float64
	threshold float64
	// direction is 1 while a high is being tracked, -1 for a low and 0 before the first pivot.
	direction int
	candidate int
	hiIdx     int
	loIdx     int
}

// candidatePrice returns the price of the pivot being tracked.
func (t *tracker) candidatePrice() float64 {
	if t.direction == 1 {
		return t.highs[t.candidate]
	}

	return t.lows[t.candidate]
}

// step advances the tracker to the provided bar, returning a pivot when one is confirmed.
func (t *tracker) step(i int) (Pivot, bool) {
	switch t.direction {
	case 0:
		up := t.highs[i] > t.highs[t.hiIdx]
		down := t.lows[i] < t.lows[t.loIdx]
		if up && down {
			// An outside bar extends only its larger excursion so both pivots never share a bar.
			if t.highs[i]-t.highs[t.hiIdx] >= t.lows[t.loIdx]-t.lows[i] {
				down = false
			} else {
				up = false
			}
		}
		if up {
			t.hiIdx = i
		}
		if down {
			t.loIdx = i
		}

		if t.hiIdx == t.loIdx || t.highs[t.hiIdx] < t.lows[t.loIdx]*(1+t.threshold) {
			return Pivot{}, false
		}

		if t.loIdx < t.hiIdx {
			t.direction = 1
			t.candidate = t.hiIdx
			return Pivot{Index: t.loIdx, Price: t.lows[t.loIdx], Kind: PivotLow}, true
		}

		t.direction = -1
		t.candidate = t.loIdx
		return Pivot{Index: t.hiIdx, Price: t.highs[t.hiIdx], Kind: PivotHigh}, true

	case 1:
		if t.highs[i] > t.highs[t.candidate] {
			t.candidate = i
			return Pivot{}, false
		}

		if t.lows[i] > t.highs[t.candidate]*(1-t.threshold) {
			return Pivot{}, false
		}

		pivot := Pivot{Index: t.candidate, Price: t.highs[t.candidate], Kind: PivotHigh}
		t.direction = -1
		t.candidate = i
		return pivot, true

	default:
		if t.lows[i] < t.lows[t.candidate] {
			t.candidate = i
			return Pivot{}, false
		}

		if t.highs[i] < t.lows[t.candidate]*(1+t.threshold) {
			return Pivot{}, false
		}

		pivot := Pivot{Index: t.candidate, Price: t.lows[t.candidate], Kind: PivotLow}
		t.direction = 1
		t.candidate = i
		return pivot, true
	}
}

// Pivots returns the confirmed pivots of the provided series, oldest first. With repaint
// enabled the developing pivot is appended.
func (z *ZigZag) Pivots(s *shared.Series) []Pivot {
	if s.Len() < 2 {
		return nil
	}

	t := &tracker{
		highs:     s.Highs(),
		lows:      s.Lows(),
		threshold: z.cfg.Deviation / 100,
	}

	var pivots []Pivot
	for i := 1; i < s.Len(); i++ {
		pivot, ok := t.step(i)
		if ok {
			pivots = append(pivots, pivot)
		}
	}

	if z.cfg.Repaint && t.direction != 0 {
		kind := PivotLow
		if t.direction == 1 {
			kind = PivotHigh
		}
		pivots = append(pivots, Pivot{Index: t.candidate, Price: t.candidatePrice(), Kind: kind})
	}

	return pivots
}

// Apply marks the pivots of the provided series and the harmonic patterns completing at them.
// Series without pivots are left with all zero columns.
func (z *ZigZag) Apply(s *shared.Series) error {
	err := z.cfg.Validate()
	if err != nil {
		return shared.NewConfigurationError(z.Name(), err)
	}

	allowed := make([]Pattern, 0, len(z.cfg.Patterns))
	for _, name := range z.cfg.Patterns {
		pattern, _ := ParsePattern(name)
		allowed = append(allowed, pattern)
	}

	zigzag := s.ResetColumn(shared.ZigZag)
	harmonic := s.ResetColumn(shared.HarmonicPattern)

	window, err := newPivotWindow(harmonicPivots)
	if err != nil {
		return err
	}

	for _, pivot := range z.Pivots(s) {
		zigzag[pivot.Index] = float64(pivot.Kind)
		window.Update(pivot)
		if window.Len() < harmonicPivots {
			continue
		}

		pattern, code := Classify(window.LastN(harmonicPivots), z.cfg.Tolerance, allowed...)
		if pattern == NoPattern {
			continue
		}

		harmonic[pivot.Index] = float64(code)
		z.logger.Debug().Msgf("%s %s pattern completed at %s", s.Market, pattern,
			s.Date(pivot.Index).Format(shared.DateLayout))
	}

	return nil
}
