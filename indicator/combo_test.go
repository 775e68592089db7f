package indicator

import (
	"errors"
	"testing"

	"github.com/dnldd/demark/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestCombo(t *testing.T) {
	s := newTestSeries(t, sequenceCloses())
	apply(t, s, NewPriceFlip(), NewSetup(nil), NewCombo(nil))

	// Ensure the combo counts from the first bar of the setup.
	combos := column(t, s, shared.BuyCombo)
	if !cmp.Equal(indicesOf(combos), []int{19}) {
		t.Fatalf("expected buy combo at [19], got %v", indicesOf(combos))
	}

	starts := column(t, s, shared.PatternStartIndex)
	assert.Equal(t, starts[19], float64(7))
	assert.Equal(t, len(indicesOf(column(t, s, shared.SellCombo))), 0)
}

func TestComboStrict(t *testing.T) {
	// A setup that keeps grinding lower by small steps whose lows never undercut the low two
	// bars back.
	closes := setupCloses()[:16]
	closes = append(closes, 84.6, 84.2, 83.8, 83.4, 83.0, 82.6, 82.2, 81.8, 81.4)

	tests := []struct {
		name   string
		strict bool
		want   []int
	}{
		{name: "relaxed", strict: false, want: []int{}},
		{name: "strict", strict: true, want: []int{19}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSeries(t, closes)
			apply(t, s, NewPriceFlip(), NewSetup(nil), NewCombo(&ComboConfig{Strict: test.strict}))

			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuySetup)), []int{15}))

			combos := column(t, s, shared.BuyCombo)
			if !cmp.Equal(indicesOf(combos), test.want) {
				t.Errorf("expected buy combos at %v, got %v", test.want, indicesOf(combos))
			}

			starts := column(t, s, shared.PatternStartIndex)
			for _, idx := range test.want {
				assert.Equal(t, starts[idx], float64(7))
			}
		})
	}
}

// rallyCloses is a series with a buy setup at 15 followed by a rally of the provided length
// and a steep decline.
func rallyCloses(rally int) []float64 {
	closes := setupCloses()[:16]
	x := 93.0
	closes = append(closes, x)
	for range rally - 1 {
		x += 2
		closes = append(closes, x)
	}
	for range 8 {
		x -= 7
		closes = append(closes, x)
	}

	return closes
}

func TestComboAbortedByOppositeSetup(t *testing.T) {
	tests := []struct {
		name  string
		rally int
		sells []int
		want  []int
	}{
		{
			// The rally is too short for a sell setup, the decline completes the count.
			name:  "short rally",
			rally: 5,
			sells: []int{},
			want:  []int{26},
		},
		{
			// The sell setup at 24 lands after count 9, the count is abandoned.
			name:  "sell setup mid count",
			rally: 9,
			sells: []int{24},
			want:  []int{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSeries(t, rallyCloses(test.rally))
			apply(t, s, NewPriceFlip(), NewSetup(nil), NewCombo(nil))

			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuySetup)), []int{15}))
			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.SellSetup)), test.sells))

			// Ensure an opposite setup inside the count aborts the combo.
			combos := column(t, s, shared.BuyCombo)
			if !cmp.Equal(indicesOf(combos), test.want) {
				t.Errorf("expected buy combos at %v, got %v", test.want, indicesOf(combos))
			}
			assert.Equal(t, len(indicesOf(column(t, s, shared.SellCombo))), 0)

			starts := column(t, s, shared.PatternStartIndex)
			for _, idx := range test.want {
				assert.Equal(t, starts[idx], float64(7))
			}
		})
	}
}

func TestComboMissingColumns(t *testing.T) {
	s := newTestSeries(t, sequenceCloses())

	// Ensure a combo without setups is a configuration error.
	err := NewCombo(nil).Apply(s)
	var cfgErr *shared.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, cfgErr.Indicator, "combo")
}
