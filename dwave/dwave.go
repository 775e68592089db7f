package dwave

import (
	"fmt"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	// minBars is the minimum number of bars waves are labelled over.
	minBars = 21
	// defaultShallowRetracement is the retracement fraction below which a counter leg is
	// considered shallow.
	defaultShallowRetracement = 0.382
)

// DWaveConfig represents the configuration of the D-Wave engine.
type DWaveConfig struct {
	// ShiftRight reopens an impulse wave when its counter wave retraced shallowly and price
	// makes a new extreme. Disabled, the impulse wave's end stays frozen.
	ShiftRight bool
	// ShallowRetracement is the fraction of the impulse wave a counter wave must retrace
	// to not be considered shallow.
	ShallowRetracement float64
	// Logger represents the indicator logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *DWaveConfig) Validate() error {
	if cfg.ShallowRetracement < 0 || cfg.ShallowRetracement >= 1 {
		return fmt.Errorf("shallow retracement must be in [0, 1), got %f", cfg.ShallowRetracement)
	}

	return nil
}

// DWave labels up and down D-Waves over a series.
type DWave struct {
	cfg    *DWaveConfig
	logger *zerolog.Logger
}

// Ensure the D-Wave engine implements the Indicator interface.
var _ shared.Indicator = (*DWave)(nil)

// NewDWave initializes a new D-Wave engine.
func NewDWave(cfg *DWaveConfig) *DWave {
	if cfg == nil {
		cfg = &DWaveConfig{}
	}
	if cfg.ShallowRetracement == 0 {
		cfg.ShallowRetracement = defaultShallowRetracement
	}

	logger := shared.LoggerOrNop(cfg.Logger)

	return &DWave{cfg: cfg, logger: logger}
}

// Name returns the name of the indicator.
func (d *DWave) Name() string {
	return "dwave"
}

// Requires returns the columns required by the indicator.
func (d *DWave) Requires() []shared.Column {
	return nil
}

// Provides returns the columns written by the indicator.
func (d *DWave) Provides() []shared.Column {
	return []shared.Column{shared.DWaveUp, shared.DWaveDown}
}

// Apply labels the up and down waves of the provided series. Series shorter than the
// longest wave 1 lookback are labelled with zeros.
func (d *DWave) Apply(s *shared.Series) error {
	err := d.cfg.Validate()
	if err != nil {
		return shared.NewConfigurationError(d.Name(), err)
	}

	if s.Len() < minBars {
		s.ResetColumn(shared.DWaveUp)
		s.ResetColumn(shared.DWaveDown)
		d.logger.Debug().Msgf("%s has %d bars, too short for d-waves", s.Market, s.Len())
		return nil
	}

	up := d.label(s.Closes(), "up")
	err = s.SetColumn(shared.DWaveUp, up.labels)
	if err != nil {
		return err
	}

	negated := lo.Map(s.Closes(), func(c float64, _ int) float64 { return -c })
	down := d.label(negated, "down")

	return s.SetColumn(shared.DWaveDown, down.labels)
}

// label runs a wave machine over the provided closes.
func (d *DWave) label(closes []float64, direction string) *machine {
	logger := d.logger.With().Str("direction", direction).Logger()
	m := newMachine(d.cfg, closes, &logger)
	m.run()

	return m
}
