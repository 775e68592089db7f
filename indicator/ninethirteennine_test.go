package indicator

import (
	"errors"
	"testing"

	"github.com/dnldd/demark/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestNineThirteenNine(t *testing.T) {
	s := newTestSeries(t, sequenceCloses())
	apply(t, s, NewPriceFlip(), NewSetup(nil), NewCountdown(nil), NewCombo(nil),
		NewNineThirteenNine(nil))

	assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuySetup)), []int{15, 50}))
	assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuyCountdown)), []int{33}))

	// Ensure the setup following the countdown after a single seed flip confirms it.
	flags := column(t, s, shared.BuyNineThirteenNine)
	if !cmp.Equal(indicesOf(flags), []int{50}) {
		t.Fatalf("expected buy 9-13-9 at [50], got %v", indicesOf(flags))
	}
	assert.Equal(t, len(indicesOf(column(t, s, shared.SellNineThirteenNine))), 0)

	// Ensure every pattern records the start of its originating setup.
	starts := column(t, s, shared.PatternStartIndex)
	want := map[int]float64{19: 7, 33: 7, 50: 42}
	for idx, v := range starts {
		assert.Equal(t, v, want[idx])
	}
}

func TestNineThirteenNineRequiresConfirmingSetup(t *testing.T) {
	// The countdown completes but no later buy setup follows.
	s := newTestSeries(t, countdownCloses())
	apply(t, s, sequential()...)
	apply(t, s, NewNineThirteenNine(nil))

	assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuyCountdown)), []int{33}))
	assert.Equal(t, len(indicesOf(column(t, s, shared.BuyNineThirteenNine))), 0)
}

// interruptedCloses is a series with a buy countdown at 33 followed by a sell setup at 44 and
// a buy setup at 56.
func interruptedCloses() []float64 {
	closes := countdownCloses()[:34]
	closes = append(closes, 79, 75, 74)
	x := 74.0
	for range 11 {
		x += 3
		closes = append(closes, x)
	}
	x -= 12
	closes = append(closes, x)
	for range 11 {
		x -= 2
		closes = append(closes, x)
	}

	return closes
}

// reflippedCloses is a series with a buy countdown at 33 followed by two bearish flips, at 42
// and 49, before a buy setup at 57.
func reflippedCloses() []float64 {
	closes := countdownCloses()[:34]
	closes = append(closes, 79)
	x := 79.0
	for range 7 {
		x += 3
		closes = append(closes, x)
	}
	closes = append(closes, 90, 88, 95, 99, 103, 106)
	x = 96
	closes = append(closes, x)
	for range 11 {
		x -= 2
		closes = append(closes, x)
	}

	return closes
}

func TestNineThirteenNineRejections(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		setups []int
		sells  []int
		flips  []int
	}{
		{
			name:   "opposite setup in the gap",
			closes: interruptedCloses(),
			setups: []int{15, 56},
			sells:  []int{44},
			flips:  []int{7, 24, 29, 48},
		},
		{
			name:   "two seed flips in the gap",
			closes: reflippedCloses(),
			setups: []int{15, 57},
			sells:  []int{},
			flips:  []int{7, 24, 29, 42, 49},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSeries(t, test.closes)
			apply(t, s, sequential()...)
			apply(t, s, NewNineThirteenNine(nil))

			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuyCountdown)), []int{33}))
			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BuySetup)), test.setups))
			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.SellSetup)), test.sells))
			assert.True(t, cmp.Equal(indicesOf(column(t, s, shared.BearishPriceFlip)), test.flips))

			// Ensure the later buy setup does not confirm the countdown.
			flags := column(t, s, shared.BuyNineThirteenNine)
			if len(indicesOf(flags)) != 0 {
				t.Errorf("expected no buy 9-13-9, got %v", indicesOf(flags))
			}
		})
	}
}

func TestNineThirteenNineMissingColumns(t *testing.T) {
	s := newTestSeries(t, sequenceCloses())
	apply(t, s, NewPriceFlip(), NewSetup(nil))

	// Ensure the pattern requires completed countdowns.
	err := NewNineThirteenNine(nil).Apply(s)
	var cfgErr *shared.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, shared.ErrMissingColumn))
}
