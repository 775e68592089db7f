package shared

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
)

func TestTrueRangeAtFirstBar(t *testing.T) {
	s, err := NewSeries("^GSPC", OneHour, testBars(10, 11, 12))
	assert.NoError(t, err)

	// Ensure true high, true low and true range fail at the first bar rather than defaulting.
	_, err = TrueHigh(s, 0)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = TrueLow(s, 0)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = TrueRange(s, 0)
	assert.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = TrueRangeOfInterval(s, 0, 2)
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	// Ensure indices past the series end fail as well.
	_, err = TrueHigh(s, 3)
	assert.Error(t, err)

	// Ensure inverted intervals fail.
	_, err = TrueRangeOfInterval(s, 2, 1)
	assert.Error(t, err)
}

func TestTrueRange(t *testing.T) {
	start := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)
	bars := []Bar{
		{Date: start, Open: 10, High: 11, Low: 9, Close: 10},
		// Gap up: the prior close sits below the low.
		{Date: start.Add(time.Hour), Open: 14, High: 15, Low: 13, Close: 14},
		// Gap down: the prior close sits above the high.
		{Date: start.Add(time.Hour * 2), Open: 10, High: 11, Low: 8, Close: 9},
		// Inside: the prior close sits within the range.
		{Date: start.Add(time.Hour * 3), Open: 9, High: 12, Low: 7, Close: 11},
	}
	s, err := NewSeries("^GSPC", OneHour, bars)
	assert.NoError(t, err)

	tests := []struct {
		name      string
		index     int
		trueHigh  float64
		trueLow   float64
		trueRange float64
	}{
		{"gap up", 1, 15, 10, 5},
		{"gap down", 2, 14, 8, 6},
		{"inside", 3, 12, 7, 5},
	}

	for _, test := range tests {
		th, err := TrueHigh(s, test.index)
		assert.NoError(t, err)
		if th != test.trueHigh {
			t.Errorf("%s: expected true high %v, got %v", test.name, test.trueHigh, th)
		}

		tl, err := TrueLow(s, test.index)
		assert.NoError(t, err)
		if tl != test.trueLow {
			t.Errorf("%s: expected true low %v, got %v", test.name, test.trueLow, tl)
		}

		tr, err := TrueRange(s, test.index)
		assert.NoError(t, err)
		if tr != test.trueRange {
			t.Errorf("%s: expected true range %v, got %v", test.name, test.trueRange, tr)
		}
	}

	// Ensure interval true ranges span the extreme true high and true low.
	tr, err := TrueRangeOfInterval(s, 1, 3)
	assert.NoError(t, err)
	assert.Equal(t, tr, float64(15-7))

	high, low, err := TrueExtremesOfInterval(s, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, high, float64(14))
	assert.Equal(t, low, float64(8))
}

func TestTrueRangeNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	start := time.Date(2024, time.January, 2, 9, 0, 0, 0, time.UTC)

	price := 100.0
	bars := make([]Bar, 500)
	for idx := range bars {
		open := price + rng.NormFloat64()
		closePrice := open + rng.NormFloat64()*2
		high := max(open, closePrice) + rng.Float64()*2
		low := min(open, closePrice) - rng.Float64()*2
		bars[idx] = Bar{Date: start.Add(time.Hour * time.Duration(idx)), Open: open, High: high,
			Low: low, Close: closePrice}
		price = closePrice
	}

	s, err := NewSeries("^GSPC", OneHour, bars)
	assert.NoError(t, err)

	// Ensure the true range is never negative and the true high never below the true low.
	for idx := 1; idx < s.Len(); idx++ {
		th, err := TrueHigh(s, idx)
		assert.NoError(t, err)
		tl, err := TrueLow(s, idx)
		assert.NoError(t, err)
		tr, err := TrueRange(s, idx)
		assert.NoError(t, err)

		if th < tl {
			t.Errorf("expected true high >= true low at %d, got %v < %v", idx, th, tl)
		}
		if tr < 0 {
			t.Errorf("expected non-negative true range at %d, got %v", idx, tr)
		}
	}
}
