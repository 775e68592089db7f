package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dnldd/demark/database"
	"github.com/dnldd/demark/engine"
	"github.com/dnldd/demark/fetch"
	"github.com/dnldd/demark/indicator"
	"github.com/dnldd/demark/shared"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"go.uber.org/atomic"
)

const (
	// setupBars is the number of bars of a completed setup.
	setupBars = 9
)

// DemarkConfig represents the configuration struct for the demark service.
type DemarkConfig struct {
	// DataFilepath is the filepath to the historic market data.
	DataFilepath string
	// PipelineFilepath is the filepath to the yaml pipeline definition. The default pipeline
	// is used when empty.
	PipelineFilepath string
	// Digits is the precision stop levels are rounded to.
	Digits int32
	// SignalBars limits extracted signals to the most recent bars. Zero extracts signals for
	// every bar.
	SignalBars int
	// Interval is the period the pipeline is rerun at. Zero runs the pipeline once.
	Interval time.Duration
	// Backtest replays the historic data bar by bar instead of annotating it whole.
	Backtest bool
	// DatabaseEndpoint is the rqlite endpoint signals are persisted to, optional.
	DatabaseEndpoint string
	// DatabaseUser is the database user.
	DatabaseUser string
	// DatabasePass is the database user pass.
	DatabasePass string
	// Store overrides the signal store created from the database endpoint.
	Store database.SignalStorer
	// Registerer is the optional registerer of the pipeline metrics.
	Registerer prometheus.Registerer
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *DemarkConfig) Validate() error {
	var errs error

	if cfg.DataFilepath == "" {
		errs = errors.Join(errs, fmt.Errorf("data filepath cannot be an empty string"))
	}
	if cfg.Digits < 0 {
		errs = errors.Join(errs, fmt.Errorf("digits cannot be negative"))
	}
	if cfg.SignalBars < 0 {
		errs = errors.Join(errs, fmt.Errorf("signal bars cannot be negative"))
	}
	if cfg.Interval < 0 {
		errs = errors.Join(errs, fmt.Errorf("interval cannot be negative"))
	}
	if cfg.Backtest && cfg.Interval > 0 {
		errs = errors.Join(errs, fmt.Errorf("%w: backtest and interval", shared.ErrMutuallyExclusive))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// Demark represents the demark indicator service.
type Demark struct {
	cfg          *DemarkConfig
	historicData *fetch.HistoricData
	engine       *engine.Engine
	store        database.SignalStorer
	scheduler    *gocron.Scheduler
	signals      atomic.Uint64
	logger       *zerolog.Logger
}

// NewDemark initializes a new demark service.
func NewDemark(ctx context.Context, cfg *DemarkConfig) (*Demark, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "demark").Logger()

	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, fmt.Errorf("fetching new york time: %w", err)
	}

	historicDataLogger := logger.With().Str("component", "historicdata").Logger()
	historicData, err := fetch.NewHistoricData(&fetch.HistoricDataConfig{
		FilePath: cfg.DataFilepath,
		Location: loc,
		Logger:   &historicDataLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating historic data: %w", err)
	}

	pipeline := engine.DefaultPipeline()
	if cfg.PipelineFilepath != "" {
		pipeline, err = engine.LoadPipeline(cfg.PipelineFilepath)
		if err != nil {
			return nil, fmt.Errorf("loading pipeline: %w", err)
		}
	}

	var metrics *engine.Metrics
	if cfg.Registerer != nil {
		metrics = engine.NewMetrics(cfg.Registerer)
	}

	engineLogger := logger.With().Str("component", "engine").Logger()
	engineCfg, err := pipeline.Build(engineLogger, metrics)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}

	store := cfg.Store
	if store == nil && cfg.DatabaseEndpoint != "" {
		dbLogger := logger.With().Str("component", "database").Logger()
		store, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DatabaseEndpoint,
			User:     cfg.DatabaseUser,
			Pass:     cfg.DatabasePass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}
	}

	service := &Demark{
		cfg:          cfg,
		historicData: historicData,
		engine:       engine.NewEngine(engineCfg),
		store:        store,
		scheduler:    gocron.NewScheduler(loc),
		logger:       &logger,
	}

	return service, nil
}

// Signals returns the number of signals the service has extracted.
func (d *Demark) Signals() uint64 {
	return d.signals.Load()
}

// signalSide returns the side of the setup a signal column derives from.
func signalSide(c shared.Column) (shared.Side, bool) {
	switch c {
	case shared.BuySetup, shared.BuyCountdown, shared.BuyCombo, shared.BuyNineThirteenNine:
		return shared.Buy, true
	case shared.SellSetup, shared.SellCountdown, shared.SellCombo, shared.SellNineThirteenNine:
		return shared.Sell, true
	default:
		return 0, false
	}
}

// stopLoss returns the risk level of the setup the provided signal derives from, zero when
// the signal does not derive from a setup.
func (d *Demark) stopLoss(s *shared.Series, sig shared.Signal) float64 {
	side, ok := signalSide(sig.Column)
	if !ok {
		return 0
	}

	setup := sig.Index
	if sig.Column != shared.SetupColumn(side) {
		starts, ok := s.Column(shared.PatternStartIndex)
		if !ok || starts[sig.Index] == 0 {
			return 0
		}
		setup = int(starts[sig.Index]) + setupBars - 1
	}

	setups, ok := s.Column(shared.SetupColumn(side))
	if !ok || setup >= s.Len() || setups[setup] == 0 {
		return 0
	}

	level, err := indicator.StopLevel(s, side, setup, d.cfg.Digits)
	if err != nil {
		d.logger.Error().Err(err).Msgf("deriving stop level for %s at %d", sig.Column, sig.Index)
		return 0
	}

	return level
}

// extract returns the signals of the annotated series from the provided bar onward, with
// their stop levels.
func (d *Demark) extract(s *shared.Series, from int) []shared.Signal {
	signals := shared.ExtractSignals(s, from)
	for idx := range signals {
		signals[idx].StopLoss = d.stopLoss(s, signals[idx])
		sig := signals[idx]
		d.logger.Info().Msgf("%s %s signal %s (%.0f) at %s, stop %.*f", sig.Market,
			sig.Timeframe, sig.Column, sig.Value, sig.Date.Format(shared.DateLayout),
			int(d.cfg.Digits), sig.StopLoss)
	}

	d.signals.Add(uint64(len(signals)))

	return signals
}

// persist stores the provided signals when a store is configured.
func (d *Demark) persist(ctx context.Context, signals []shared.Signal) error {
	if d.store == nil || len(signals) == 0 {
		return nil
	}

	return d.store.PersistSignals(ctx, signals)
}

// Process applies the pipeline to the series of every timeframe and returns the extracted
// signals.
func (d *Demark) Process(ctx context.Context) ([]shared.Signal, error) {
	timeframes := d.historicData.Timeframes()
	series := make([]*shared.Series, 0, len(timeframes))
	for _, tf := range timeframes {
		s, err := d.historicData.Series(tf)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}

	annotated, err := d.engine.ApplyBatch(ctx, series)
	if err != nil {
		d.logger.Error().Err(err).Msg("applying pipeline")
	}

	var signals []shared.Signal
	for _, s := range annotated {
		if s == nil {
			continue
		}

		from := 0
		if d.cfg.SignalBars > 0 {
			from = s.Len() - d.cfg.SignalBars
		}
		signals = append(signals, d.extract(s, from)...)
	}

	perr := d.persist(ctx, signals)
	if perr != nil {
		err = errors.Join(err, fmt.Errorf("persisting signals: %w", perr))
	}

	return signals, err
}

// Backtest replays the series of every timeframe bar by bar, extracting the signals of each
// newly closed bar.
func (d *Demark) Backtest(ctx context.Context) ([]shared.Signal, error) {
	var signals []shared.Signal
	for _, tf := range d.historicData.Timeframes() {
		err := d.historicData.ProcessHistoricalData(ctx, tf, 1, func(s *shared.Series) error {
			annotated, err := d.engine.Apply(s)
			if err != nil {
				return err
			}

			latest := d.extract(annotated, annotated.Len()-1)
			err = d.persist(ctx, latest)
			if err != nil {
				return fmt.Errorf("persisting signals: %w", err)
			}

			signals = append(signals, latest...)
			return nil
		})
		if err != nil {
			return signals, fmt.Errorf("backtesting %s: %w", tf.String(), err)
		}
	}

	return signals, nil
}

// Run handles the lifecycle processes of the demark service.
func (d *Demark) Run(ctx context.Context) {
	switch {
	case d.cfg.Backtest:
		go func() {
			signals, err := d.Backtest(ctx)
			if err != nil {
				d.logger.Error().Err(err).Msg("backtesting")
			}

			d.logger.Info().Msgf("backtest for %s done, %d signals", d.historicData.FetchMarket(),
				len(signals))
			d.cfg.Cancel()
		}()

	case d.cfg.Interval > 0:
		_, err := d.scheduler.Every(d.cfg.Interval).Do(func() {
			_, err := d.Process(ctx)
			if err != nil {
				d.logger.Error().Err(err).Msg("processing scheduled run")
			}
		})
		if err != nil {
			d.logger.Error().Err(err).Msg("scheduling pipeline runs")
			d.cfg.Cancel()
			break
		}

		d.scheduler.StartAsync()

	default:
		_, err := d.Process(ctx)
		if err != nil {
			d.logger.Error().Err(err).Msg("processing")
		}
		d.cfg.Cancel()
	}

	<-ctx.Done()
	d.scheduler.Stop()
}
