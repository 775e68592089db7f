package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/dnldd/demark/dwave"
	"github.com/dnldd/demark/indicator"
	"github.com/dnldd/demark/oscillator"
	"github.com/dnldd/demark/shared"
	"github.com/dnldd/demark/zigzag"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// IndicatorConfig represents a pipeline entry. Options not relevant to the named indicator
// are ignored.
type IndicatorConfig struct {
	Name string `yaml:"name"`

	// setup
	MaxBars int    `yaml:"max_bars,omitempty"`
	Start   string `yaml:"start,omitempty"` // UTC, in DateLayout

	// countdown
	Qualifiers []string `yaml:"qualifiers,omitempty"`

	// combo
	Strict bool `yaml:"strict,omitempty"`

	// dwave
	ShiftRight         bool    `yaml:"shift_right,omitempty"`
	ShallowRetracement float64 `yaml:"shallow_retracement,omitempty"`

	// rei
	Period int `yaml:"period,omitempty"`

	// zigzag
	Deviation float64  `yaml:"deviation,omitempty"`
	Repaint   bool     `yaml:"repaint,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
	Patterns  []string `yaml:"patterns,omitempty"`
}

// PipelineConfig represents an indicator pipeline definition.
type PipelineConfig struct {
	Copy       bool              `yaml:"copy"`
	SkipShort  bool              `yaml:"skip_short"`
	Workers    int               `yaml:"workers,omitempty"`
	Indicators []IndicatorConfig `yaml:"indicators"`
}

// DefaultPipeline returns the full dependency ordered pipeline.
func DefaultPipeline() *PipelineConfig {
	return &PipelineConfig{
		Copy:      true,
		SkipShort: true,
		Indicators: []IndicatorConfig{
			{Name: "price_flip"},
			{Name: "setup"},
			{Name: "countdown", Qualifiers: []string{"cqi", "cqii"}},
			{Name: "combo"},
			{Name: "nine_thirteen_nine"},
			{Name: "dwave"},
			{Name: "rei"},
			{Name: "demarker_i"},
			{Name: "demarker_ii"},
			{Name: "td_pressure"},
			{Name: "td_differential"},
			{Name: "td_initiation"},
			{Name: "zigzag"},
		},
	}
}

// LoadPipeline reads a pipeline definition from the provided yaml file.
func LoadPipeline(path string) (*PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline: %w", err)
	}

	return ParsePipeline(data)
}

// ParsePipeline parses a yaml pipeline definition.
func ParsePipeline(data []byte) (*PipelineConfig, error) {
	cfg := &PipelineConfig{}
	err := yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing pipeline: %w", err)
	}

	if len(cfg.Indicators) == 0 {
		return nil, fmt.Errorf("pipeline has no indicators")
	}

	return cfg, nil
}

// build creates the indicator described by the entry.
func (c *IndicatorConfig) build(logger *zerolog.Logger) (shared.Indicator, error) {
	switch c.Name {
	case "price_flip":
		return indicator.NewPriceFlip(), nil

	case "setup":
		cfg := &indicator.SetupConfig{MaxBars: c.MaxBars, Logger: logger}
		if c.Start != "" {
			start, err := time.Parse(shared.DateLayout, c.Start)
			if err != nil {
				return nil, shared.NewConfigurationError(c.Name, fmt.Errorf("parsing start: %w", err))
			}
			cfg.Start = start
		}
		return indicator.NewSetup(cfg), nil

	case "countdown":
		qualifiers := make([]indicator.Qualifier, 0, len(c.Qualifiers))
		for _, name := range c.Qualifiers {
			q, err := indicator.ParseQualifier(name)
			if err != nil {
				return nil, shared.NewConfigurationError(c.Name, err)
			}
			qualifiers = append(qualifiers, q)
		}
		return indicator.NewCountdown(&indicator.CountdownConfig{Qualifiers: qualifiers, Logger: logger}), nil

	case "combo":
		return indicator.NewCombo(&indicator.ComboConfig{Strict: c.Strict, Logger: logger}), nil

	case "nine_thirteen_nine":
		return indicator.NewNineThirteenNine(&indicator.NineThirteenNineConfig{Logger: logger}), nil

	case "dwave":
		return dwave.NewDWave(&dwave.DWaveConfig{
			ShiftRight:         c.ShiftRight,
			ShallowRetracement: c.ShallowRetracement,
			Logger:             logger,
		}), nil

	case "rei":
		return oscillator.NewREI(&oscillator.REIConfig{Period: c.Period, Logger: logger}), nil

	case "demarker_i":
		return oscillator.NewDemarkerI(), nil

	case "demarker_ii":
		return oscillator.NewDemarkerII(), nil

	case "td_pressure":
		return oscillator.NewPressure(), nil

	case "td_differential":
		return oscillator.NewDifferential(), nil

	case "td_initiation":
		return oscillator.NewInitiation(), nil

	case "zigzag":
		return zigzag.NewZigZag(&zigzag.ZigZagConfig{
			Deviation: c.Deviation,
			Repaint:   c.Repaint,
			Tolerance: c.Tolerance,
			Patterns:  c.Patterns,
			Logger:    logger,
		}), nil

	default:
		return nil, shared.NewConfigurationError(c.Name, shared.ErrUnknownIndicator)
	}
}

// Build creates the engine configuration described by the pipeline. Every indicator logs
// through a sub logger tagged with its name.
func (p *PipelineConfig) Build(logger zerolog.Logger, metrics *Metrics) (*EngineConfig, error) {
	indicators := make([]shared.Indicator, 0, len(p.Indicators))
	for idx := range p.Indicators {
		entry := &p.Indicators[idx]
		subLogger := logger.With().Str("indicator", entry.Name).Logger()
		ind, err := entry.build(&subLogger)
		if err != nil {
			return nil, err
		}

		indicators = append(indicators, ind)
	}

	cfg := &EngineConfig{
		Indicators: indicators,
		Copy:       p.Copy,
		SkipShort:  p.SkipShort,
		Workers:    p.Workers,
		Metrics:    metrics,
		Logger:     logger,
	}

	eng := NewEngine(cfg)
	err := eng.Validate(nil)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
