package shared

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the format layout for parsing bar dates.
	DateLayout = "2006-01-02 15:04:05"
	// NewYorkLocation is the default location bar dates are parsed in.
	NewYorkLocation = "America/New_York"
)

// Timeframe represents the nominal period of a bar.
type Timeframe int

const (
	OneMinute Timeframe = iota
	FiveMinute
	FifteenMinute
	ThirtyMinute
	OneHour
	FourHour
	OneDay
)

// Timeframes lists every supported timeframe in ascending duration.
var Timeframes = []Timeframe{OneMinute, FiveMinute, FifteenMinute, ThirtyMinute, OneHour, FourHour, OneDay}

// String stringifies the provided timeframe.
func (t Timeframe) String() string {
	switch t {
	case OneMinute:
		return "1m"
	case FiveMinute:
		return "5m"
	case FifteenMinute:
		return "15m"
	case ThirtyMinute:
		return "30m"
	case OneHour:
		return "1h"
	case FourHour:
		return "4h"
	case OneDay:
		return "1d"
	default:
		return "unknown"
	}
}

// Duration returns the nominal duration of the timeframe.
func (t Timeframe) Duration() time.Duration {
	switch t {
	case OneMinute:
		return time.Minute
	case FiveMinute:
		return time.Minute * 5
	case FifteenMinute:
		return time.Minute * 15
	case ThirtyMinute:
		return time.Minute * 30
	case OneHour:
		return time.Hour
	case FourHour:
		return time.Hour * 4
	case OneDay:
		return time.Hour * 24
	default:
		return 0
	}
}

// ParseTimeframe returns the timeframe associated with the provided string.
func ParseTimeframe(s string) (Timeframe, error) {
	for _, tf := range Timeframes {
		if tf.String() == s {
			return tf, nil
		}
	}

	return 0, fmt.Errorf("unknown timeframe provided: %s", s)
}

// NewYorkTime returns the current time in new york (EST/EDT adjusted automatically).
func NewYorkTime() (time.Time, *time.Location, error) {
	loc, err := time.LoadLocation(NewYorkLocation)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("loading new york timezone: %w", err)
	}

	now := time.Now().In(loc)
	return now, loc, nil
}

// NextInterval returns the start of the next bar of the provided timeframe after the
// provided time.
func NextInterval(timeframe Timeframe, now time.Time) (time.Time, error) {
	duration := timeframe.Duration()
	if duration == 0 {
		return time.Time{}, fmt.Errorf("unknown timeframe provided: %d", timeframe)
	}

	// Daily bars roll over at midnight in the time's own location.
	if timeframe == OneDay {
		year, month, day := now.Date()
		return time.Date(year, month, day+1, 0, 0, 0, 0, now.Location()), nil
	}

	return now.Truncate(duration).Add(duration), nil
}
