package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestExtractSignals(t *testing.T) {
	s, err := NewSeries("^GSPC", OneHour, testBars(10, 11, 12, 13))
	assert.NoError(t, err)

	setups := s.EnsureColumn(BuySetup)
	setups[1] = 1
	setups[3] = 1
	waves := s.EnsureColumn(DWaveUp)
	waves[3] = 2
	// Levels and values are not events.
	tdst := s.EnsureColumn(TDSTResistance)
	tdst[3] = 14.5
	rei := s.EnsureColumn(REI)
	rei[3] = -45

	// Ensure every non-zero event value is extracted.
	signals := ExtractSignals(s, 0)
	assert.Equal(t, len(signals), 3)
	assert.Equal(t, signals[0].Column, BuySetup)
	assert.Equal(t, signals[0].Index, 1)
	assert.Equal(t, signals[1].Column, BuySetup)
	assert.Equal(t, signals[1].Index, 3)
	assert.Equal(t, signals[2].Column, DWaveUp)
	assert.Equal(t, signals[2].Value, float64(2))
	assert.Equal(t, signals[2].Date, s.Date(3))
	assert.Equal(t, signals[2].Market, "^GSPC")

	// Ensure signal ids are unique.
	assert.NotEqual(t, signals[0].ID, signals[1].ID)

	// Ensure extraction can be limited to recent bars.
	recent := ExtractSignals(s, 3)
	assert.Equal(t, len(recent), 2)

	// Ensure negative start indices are clamped.
	all := ExtractSignals(s, -5)
	assert.Equal(t, len(all), 3)
}

func TestRoundPrice(t *testing.T) {
	tests := []struct {
		name   string
		price  float64
		digits int32
		want   float64
	}{
		{"two digits", 5105.756, 2, 5105.76},
		{"zero digits", 5105.5, 0, 5106},
		{"five digits", 1.0845678, 5, 1.08457},
		{"already rounded", 12.5, 2, 12.5},
	}

	for _, test := range tests {
		got := RoundPrice(test.price, test.digits)
		if got != test.want {
			t.Errorf("%s: expected %v, got %v", test.name, test.want, got)
		}
	}
}
