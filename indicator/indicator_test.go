package indicator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/dnldd/demark/shared"
	"github.com/peterldowns/testy/assert"
)

// newTestSeries creates an hourly series from the provided closes. Each bar opens at its close
// and spans a unit above and below it.
func newTestSeries(t *testing.T, closes []float64) *shared.Series {
	t.Helper()

	start := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	bars := make([]shared.Bar, len(closes))
	for idx, c := range closes {
		bars[idx] = shared.Bar{
			Date:   start.Add(time.Hour * time.Duration(idx)),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100,
		}
	}

	s, err := shared.NewSeries("^GSPC", shared.OneHour, bars)
	assert.NoError(t, err)

	return s
}

// newRandomSeries creates a random walk series from the provided seed.
func newRandomSeries(t *testing.T, seed int64, n int) *shared.Series {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	bars := make([]shared.Bar, n)
	price := 100.0
	for idx := range bars {
		open := price
		closePrice := open + rng.NormFloat64()*1.5
		bars[idx] = shared.Bar{
			Date:   start.Add(time.Hour * time.Duration(idx)),
			Open:   open,
			High:   max(open, closePrice) + rng.Float64(),
			Low:    min(open, closePrice) - rng.Float64(),
			Close:  closePrice,
			Volume: 100 + rng.Float64()*50,
		}
		price = closePrice
	}

	s, err := shared.NewSeries("^GSPC", shared.OneHour, bars)
	assert.NoError(t, err)

	return s
}

// apply runs the provided indicators over the series in order.
func apply(t *testing.T, s *shared.Series, indicators ...shared.Indicator) {
	t.Helper()

	for _, ind := range indicators {
		err := ind.Apply(s)
		assert.NoError(t, err)
	}
}

// column returns the provided column, failing the test when it is absent.
func column(t *testing.T, s *shared.Series, c shared.Column) []float64 {
	t.Helper()

	values, ok := s.Column(c)
	if !ok {
		t.Fatalf("expected column %s to be present", c.String())
	}

	return values
}

// indicesOf returns the indices of the non-zero values.
func indicesOf(values []float64) []int {
	indices := []int{}
	for idx, v := range values {
		if v != 0 {
			indices = append(indices, idx)
		}
	}

	return indices
}

// patternCloses extends a rise and a two point decline with the provided close deltas
// repeated the provided number of times.
func patternCloses(pattern []float64, reps int) []float64 {
	closes := []float64{100, 101, 102, 103, 104, 105}
	for k := range 10 {
		closes = append(closes, 103-2*float64(k))
	}

	x := closes[len(closes)-1]
	for range reps {
		for _, d := range pattern {
			x += d
			closes = append(closes, x)
		}
	}

	return closes
}

// setupCloses is a series with two buy setups, completing at 15 and 25.
func setupCloses() []float64 {
	closes := []float64{100, 101, 102, 103, 104, 105}
	for k := range 10 {
		closes = append(closes, 103-2*float64(k))
	}
	closes = append(closes, 92)
	for k := range 9 {
		closes = append(closes, 84-2*float64(k))
	}

	return append(closes, 80)
}

// countdownCloses is a series with a buy setup at 15 whose countdown completes at 33.
func countdownCloses() []float64 {
	return patternCloses([]float64{-3, -3, -3, -3, 10}, 6)
}

// sequenceCloses is a series with a buy setup at 15, a countdown at 33 and a confirming buy
// setup at 50.
func sequenceCloses() []float64 {
	closes := countdownCloses()[:34]
	closes = append(closes, 79)
	x := 79.0
	for range 7 {
		x += 3
		closes = append(closes, x)
	}
	x = 90
	closes = append(closes, x)
	for range 11 {
		x -= 2
		closes = append(closes, x)
	}

	return closes
}

// sequential returns the flip, setup and countdown indicators.
func sequential(qualifiers ...Qualifier) []shared.Indicator {
	return []shared.Indicator{
		NewPriceFlip(),
		NewSetup(nil),
		NewCountdown(&CountdownConfig{Qualifiers: qualifiers}),
	}
}

// testDate returns the date of the bar at the provided index of a test series.
func testDate(idx int) time.Time {
	return time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC).Add(time.Hour * time.Duration(idx))
}

// newBarSeries creates an hourly series of the provided bars, dating them as test bars.
func newBarSeries(t *testing.T, bars []shared.Bar) *shared.Series {
	t.Helper()

	for idx := range bars {
		bars[idx].Date = testDate(idx)
	}

	s, err := shared.NewSeries("^GSPC", shared.OneHour, bars)
	assert.NoError(t, err)

	return s
}

// flatBars returns n bars closing at the provided price with a unit range either side.
func flatBars(n int, price float64) []shared.Bar {
	bars := make([]shared.Bar, n)
	for idx := range bars {
		bars[idx] = shared.Bar{Open: price, High: price + 1, Low: price - 1, Close: price, Volume: 100}
	}

	return bars
}
