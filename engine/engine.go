package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"
)

const (
	// maxWorkers is the maximum number of concurrent workers.
	maxWorkers = 16
)

// barRequirer is implemented by indicators with a minimum series length.
type barRequirer interface {
	MinBars() int
}

// EngineConfig represents the configuration of the pipeline engine.
type EngineConfig struct {
	// Indicators represents the pipeline, applied in order.
	Indicators []shared.Indicator
	// Copy deep copies series before mutating them, leaving the provided series untouched.
	Copy bool
	// SkipShort skips indicators, and the indicators depending on them, when a series holds
	// fewer bars than they require. Disabled, short series fail the pipeline.
	SkipShort bool
	// Workers is the maximum number of series applied concurrently by a batch.
	Workers int
	// Metrics represents the optional pipeline metrics.
	Metrics *Metrics
	// Logger represents the application logger.
	Logger zerolog.Logger
}

// Engine applies an indicator pipeline to price series.
type Engine struct {
	cfg       *EngineConfig
	workers   chan struct{}
	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewEngine initializes a new pipeline engine.
func NewEngine(cfg *EngineConfig) *Engine {
	workers := cfg.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = maxWorkers
	}

	return &Engine{
		cfg:     cfg,
		workers: make(chan struct{}, workers),
	}
}

// Processed returns the number of series the engine applied the pipeline to successfully.
func (e *Engine) Processed() uint64 {
	return e.processed.Load()
}

// Failed returns the number of series the pipeline failed for.
func (e *Engine) Failed() uint64 {
	return e.failed.Load()
}

// Validate asserts every indicator of the pipeline has its required columns provided by an
// earlier indicator or already present on the provided series.
func (e *Engine) Validate(s *shared.Series) error {
	available := make(map[shared.Column]struct{})
	for _, c := range shared.Columns() {
		if s != nil && s.HasColumn(c) {
			available[c] = struct{}{}
		}
	}

	for _, ind := range e.cfg.Indicators {
		var missing []string
		for _, c := range ind.Requires() {
			if _, ok := available[c]; !ok {
				missing = append(missing, c.String())
			}
		}

		if len(missing) > 0 {
			return shared.NewConfigurationError(ind.Name(),
				fmt.Errorf("%w: %v not provided by an earlier indicator", shared.ErrMissingColumn, missing))
		}

		for _, c := range ind.Provides() {
			available[c] = struct{}{}
		}
	}

	return nil
}

// skip returns whether the provided indicator must be skipped for the series, either because
// the series is too short for it or because it depends on a skipped column.
func (e *Engine) skip(ind shared.Indicator, s *shared.Series, skipped map[shared.Column]struct{}) bool {
	if !e.cfg.SkipShort {
		return false
	}

	if req, ok := ind.(barRequirer); ok && s.Len() < req.MinBars() {
		return true
	}

	for _, c := range ind.Requires() {
		if _, ok := skipped[c]; ok {
			return true
		}
	}

	return false
}

// Apply applies the pipeline to the provided series and returns the annotated series. With
// copy enabled the returned series is a deep copy and the provided one is left untouched.
// A failing indicator aborts the pipeline for the series.
func (e *Engine) Apply(s *shared.Series) (*shared.Series, error) {
	err := e.Validate(s)
	if err != nil {
		e.failed.Inc()
		e.cfg.Metrics.observeFailure()
		return nil, err
	}

	if e.cfg.Copy {
		s = s.Clone()
	}

	skipped := make(map[shared.Column]struct{})
	for _, ind := range e.cfg.Indicators {
		if e.skip(ind, s, skipped) {
			for _, c := range ind.Provides() {
				skipped[c] = struct{}{}
			}

			e.cfg.Logger.Debug().Msgf("skipping %s for %s/%s with %d bars", ind.Name(),
				s.Market, s.Timeframe, s.Len())
			continue
		}

		start := time.Now()
		err := ind.Apply(s)
		e.cfg.Metrics.observeDuration(ind.Name(), time.Since(start))
		if err != nil {
			e.failed.Inc()
			e.cfg.Metrics.observeFailure()
			e.cfg.Logger.Error().Err(err).Msgf("applying %s to %s/%s", ind.Name(),
				s.Market, s.Timeframe)
			return nil, fmt.Errorf("applying %s to %s/%s: %w", ind.Name(), s.Market,
				s.Timeframe, err)
		}
	}

	e.processed.Inc()
	e.cfg.Metrics.observeSuccess()

	return s, nil
}

// ApplyBatch applies the pipeline to the provided series concurrently, one worker per series.
// Results are positional; a failed or unprocessed series leaves a nil entry and its error
// joined into the returned error.
func (e *Engine) ApplyBatch(ctx context.Context, series []*shared.Series) ([]*shared.Series, error) {
	results := make([]*shared.Series, len(series))
	errs := make([]error, len(series))

	var wg sync.WaitGroup
	for idx, s := range series {
		if ctx.Err() != nil {
			errs[idx] = ctx.Err()
			continue
		}

		select {
		case <-ctx.Done():
			errs[idx] = ctx.Err()
			continue
		case e.workers <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, s *shared.Series) {
			defer func() {
				<-e.workers
				wg.Done()
			}()

			if s == nil {
				errs[idx] = fmt.Errorf("series at position %d is nil", idx)
				return
			}

			results[idx], errs[idx] = e.Apply(s)
		}(idx, s)
	}

	wg.Wait()

	err := errors.Join(errs...)
	if err != nil {
		e.cfg.Logger.Trace().Msgf("batch errors: %s", spew.Sdump(errs))
	}

	return results, err
}
