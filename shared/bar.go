package shared

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// Bar represents a unit OHLCV bar of a market.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ParseBars parses bars from the provided json data. Dates are expected in DateLayout and are
// interpreted in the provided location.
func ParseBars(data []gjson.Result, loc *time.Location) ([]Bar, error) {
	if loc == nil {
		loc = time.UTC
	}

	bars := make([]Bar, 0, len(data))
	for idx := range data {
		var bar Bar

		bar.Open = data[idx].Get("open").Float()
		bar.High = data[idx].Get("high").Float()
		bar.Low = data[idx].Get("low").Float()
		bar.Close = data[idx].Get("close").Float()
		bar.Volume = data[idx].Get("volume").Float()

		dt, err := time.ParseInLocation(DateLayout, data[idx].Get("date").String(), loc)
		if err != nil {
			return nil, fmt.Errorf("parsing bar date at index %d: %w", idx, err)
		}

		bar.Date = dt
		bars = append(bars, bar)
	}

	return bars, nil
}
