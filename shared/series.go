package shared

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Series represents an ordered, time indexed sequence of bars of a market annotated with
// indicator columns. A series is owned by a single computation at a time; callers that need
// the original untouched must work on a Clone.
type Series struct {
	Market    string
	Timeframe Timeframe

	bars    []Bar
	index   map[int64]int
	opens   []float64
	highs   []float64
	lows    []float64
	closes  []float64
	volumes []float64
	columns map[Column][]float64
	version uint64
}

// NewSeries initializes a new price series from the provided bars. Bar dates must be unique
// and strictly increasing.
func NewSeries(market string, timeframe Timeframe, bars []Bar) (*Series, error) {
	s := &Series{
		Market:    market,
		Timeframe: timeframe,
		bars:      slices.Clone(bars),
		index:     make(map[int64]int, len(bars)),
		opens:     make([]float64, len(bars)),
		highs:     make([]float64, len(bars)),
		lows:      make([]float64, len(bars)),
		closes:    make([]float64, len(bars)),
		volumes:   make([]float64, len(bars)),
		columns:   make(map[Column][]float64),
	}

	for idx := range s.bars {
		bar := s.bars[idx]
		if idx > 0 && !bar.Date.After(s.bars[idx-1].Date) {
			return nil, fmt.Errorf("bar at index %d (%s) is not after its predecessor (%s)",
				idx, bar.Date.Format(DateLayout), s.bars[idx-1].Date.Format(DateLayout))
		}

		s.index[bar.Date.UnixNano()] = idx
		s.opens[idx] = bar.Open
		s.highs[idx] = bar.High
		s.lows[idx] = bar.Low
		s.closes[idx] = bar.Close
		s.volumes[idx] = bar.Volume
	}

	return s, nil
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bar returns the bar at the provided index.
func (s *Series) Bar(i int) (Bar, error) {
	if i < 0 || i >= len(s.bars) {
		return Bar{}, NewIndexBoundsError(i, len(s.bars), "bar lookup")
	}

	return s.bars[i], nil
}

// Date returns the date of the bar at the provided index.
func (s *Series) Date(i int) time.Time {
	return s.bars[i].Date
}

// IndexOf returns the integer position of the bar with the provided date.
func (s *Series) IndexOf(date time.Time) (int, error) {
	idx, ok := s.index[date.UnixNano()]
	if !ok {
		return 0, fmt.Errorf("no bar found for %s", date.Format(DateLayout))
	}

	return idx, nil
}

// Opens returns the open prices of the series. The returned slice must be treated as read only.
func (s *Series) Opens() []float64 { return s.opens }

// Highs returns the high prices of the series. The returned slice must be treated as read only.
func (s *Series) Highs() []float64 { return s.highs }

// Lows returns the low prices of the series. The returned slice must be treated as read only.
func (s *Series) Lows() []float64 { return s.lows }

// Closes returns the close prices of the series. The returned slice must be treated as read only.
func (s *Series) Closes() []float64 { return s.closes }

// Volumes returns the volumes of the series. The returned slice must be treated as read only.
func (s *Series) Volumes() []float64 { return s.volumes }

// Version returns the write version of the series. It advances whenever a column is created,
// replaced or handed out for writing.
func (s *Series) Version() uint64 {
	return s.version
}

// Column returns the values of the provided column and whether it exists.
func (s *Series) Column(c Column) ([]float64, bool) {
	values, ok := s.columns[c]
	return values, ok
}

// HasColumn returns whether the provided column exists.
func (s *Series) HasColumn(c Column) bool {
	_, ok := s.columns[c]
	return ok
}

// ColumnNames returns the canonical keys of the columns present, in column order.
func (s *Series) ColumnNames() []string {
	cols := slices.Sorted(maps.Keys(s.columns))
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.String())
	}

	return names
}

// EnsureColumn returns the provided column for writing, creating a zero filled one if absent.
func (s *Series) EnsureColumn(c Column) []float64 {
	values, ok := s.columns[c]
	if !ok {
		values = make([]float64, len(s.bars))
		s.columns[c] = values
	}

	s.version++
	return values
}

// ResetColumn replaces the provided column with a zero filled one and returns it for writing.
func (s *Series) ResetColumn(c Column) []float64 {
	values := make([]float64, len(s.bars))
	s.columns[c] = values
	s.version++

	return values
}

// SetColumn replaces the provided column with the provided values.
func (s *Series) SetColumn(c Column, values []float64) error {
	if len(values) != len(s.bars) {
		return fmt.Errorf("%w: %s has %d values, series has %d bars", ErrColumnLength,
			c.String(), len(values), len(s.bars))
	}

	s.columns[c] = slices.Clone(values)
	s.version++

	return nil
}

// Require asserts the provided columns exist, returning a configuration error naming the
// indicator otherwise.
func (s *Series) Require(indicator string, cols ...Column) error {
	var missing []string
	for _, c := range cols {
		if !s.HasColumn(c) {
			missing = append(missing, c.String())
		}
	}

	if len(missing) > 0 {
		return NewConfigurationError(indicator, fmt.Errorf("%w: %v", ErrMissingColumn, missing))
	}

	return nil
}

// MergeMax merges the provided value into the column at the provided index, keeping the
// larger of the existing and provided values.
func (s *Series) MergeMax(c Column, i int, value float64) error {
	if i < 0 || i >= len(s.bars) {
		return NewIndexBoundsError(i, len(s.bars), "merge into "+c.String())
	}

	values := s.EnsureColumn(c)
	values[i] = MergeMaxValue(values[i], value)

	return nil
}

// Clone returns a deep copy of the series, including its column data.
func (s *Series) Clone() *Series {
	clone := &Series{
		Market:    s.Market,
		Timeframe: s.Timeframe,
		bars:      slices.Clone(s.bars),
		index:     maps.Clone(s.index),
		opens:     slices.Clone(s.opens),
		highs:     slices.Clone(s.highs),
		lows:      slices.Clone(s.lows),
		closes:    slices.Clone(s.closes),
		volumes:   slices.Clone(s.volumes),
		columns:   make(map[Column][]float64, len(s.columns)),
		version:   s.version,
	}

	for c, values := range s.columns {
		clone.columns[c] = slices.Clone(values)
	}

	return clone
}

// Head returns a new series of the first n bars, without columns.
func (s *Series) Head(n int) (*Series, error) {
	if n < 0 || n > len(s.bars) {
		return nil, NewIndexBoundsError(n, len(s.bars), "series head")
	}

	return NewSeries(s.Market, s.Timeframe, s.bars[:n])
}
