package fetch

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dnldd/demark/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// HistoricDataConfig represents the historic data source configuration.
type HistoricDataConfig struct {
	// FilePath is the filepath to the historic market data.
	FilePath string
	// Location is the location bar dates are interpreted in, new york when unset.
	Location *time.Location
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// HistoricData represents historic market data, one series per timeframe.
type HistoricData struct {
	cfg        *HistoricDataConfig
	market     string
	series     map[shared.Timeframe]*shared.Series
	timeframes []shared.Timeframe
	startTime  time.Time
	endTime    time.Time
}

// loadHistoricData loads the historic data bytes from the provided file path.
func loadHistoricData(filepath string) (*gjson.Result, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading historic data from file with path '%s': %w", filepath, err)
	}

	if !gjson.ValidBytes(readb) {
		return nil, fmt.Errorf("historic data at '%s' is not valid json", filepath)
	}

	b := gjson.ParseBytes(readb)

	return &b, nil
}

// NewHistoricData initializes a new historic data source. The file holds the market name and
// an array of bars per timeframe key.
func NewHistoricData(cfg *HistoricDataConfig) (*HistoricData, error) {
	b, err := loadHistoricData(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("loading historic data: %w", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc, err = time.LoadLocation(shared.NewYorkLocation)
		if err != nil {
			return nil, fmt.Errorf("loading new york location: %w", err)
		}
	}

	cfg.Logger = shared.LoggerOrNop(cfg.Logger)

	market := b.Get("market").String()
	if market == "" {
		return nil, fmt.Errorf("historic data at '%s' has no market", cfg.FilePath)
	}

	historicData := HistoricData{
		cfg:    cfg,
		market: market,
		series: make(map[shared.Timeframe]*shared.Series),
	}

	for _, timeframe := range shared.Timeframes {
		data := b.Get(timeframe.String()).Array()
		if len(data) == 0 {
			continue
		}

		bars, err := shared.ParseBars(data, loc)
		if err != nil {
			return nil, fmt.Errorf("parsing %s bars: %w", timeframe.String(), err)
		}

		s, err := shared.NewSeries(market, timeframe, bars)
		if err != nil {
			return nil, fmt.Errorf("creating %s series: %w", timeframe.String(), err)
		}

		historicData.series[timeframe] = s
		historicData.timeframes = append(historicData.timeframes, timeframe)

		first := bars[0].Date
		last := bars[len(bars)-1].Date
		if historicData.startTime.IsZero() || first.Before(historicData.startTime) {
			historicData.startTime = first
		}
		if last.After(historicData.endTime) {
			historicData.endTime = last
		}
	}

	if len(historicData.timeframes) == 0 {
		return nil, fmt.Errorf("historic data at '%s' has no bars", cfg.FilePath)
	}

	return &historicData, nil
}

// Series returns a copy of the series of the provided timeframe.
func (h *HistoricData) Series(timeframe shared.Timeframe) (*shared.Series, error) {
	s, ok := h.series[timeframe]
	if !ok {
		return nil, fmt.Errorf("no %s historic data for %s", timeframe.String(), h.market)
	}

	return s.Clone(), nil
}

// Window returns the series of the provided timeframe up to and excluding bar n.
func (h *HistoricData) Window(timeframe shared.Timeframe, n int) (*shared.Series, error) {
	s, ok := h.series[timeframe]
	if !ok {
		return nil, fmt.Errorf("no %s historic data for %s", timeframe.String(), h.market)
	}

	return s.Head(n)
}

// Len returns the number of bars of the provided timeframe.
func (h *HistoricData) Len(timeframe shared.Timeframe) int {
	s, ok := h.series[timeframe]
	if !ok {
		return 0
	}

	return s.Len()
}

// ProcessHistoricalData replays the series of the provided timeframe bar by bar from the
// provided bar count, handing every growing window to process.
func (h *HistoricData) ProcessHistoricalData(ctx context.Context, timeframe shared.Timeframe, from int, process func(s *shared.Series) error) error {
	total := h.Len(timeframe)
	if total == 0 {
		return fmt.Errorf("no %s historic data for %s", timeframe.String(), h.market)
	}

	h.cfg.Logger.Info().Msgf("processing historical %s data covering %.2f hours, from %s, to %s",
		timeframe.String(), h.endTime.Sub(h.startTime).Hours(), h.startTime.Format(time.RFC1123),
		h.endTime.Format(time.RFC1123))

	for n := max(from, 1); n <= total; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		window, err := h.Window(timeframe, n)
		if err != nil {
			return err
		}

		err = process(window)
		if err != nil {
			return fmt.Errorf("processing historical data: %w", err)
		}
	}

	return nil
}

// Timeframes returns the timeframes with historic data, shortest first.
func (h *HistoricData) Timeframes() []shared.Timeframe {
	return h.timeframes
}

// FetchStartTime returns the start time of the loaded historical data.
func (h *HistoricData) FetchStartTime() time.Time {
	return h.startTime
}

// FetchEndTime returns the end time of the loaded historical data.
func (h *HistoricData) FetchEndTime() time.Time {
	return h.endTime
}

// FetchMarket returns the historic data market.
func (h *HistoricData) FetchMarket() string {
	return h.market
}
