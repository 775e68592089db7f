package indicator

import (
	"errors"
	"testing"

	"github.com/dnldd/demark/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

// qualifierSeries creates a flat series with buy setups completing at 13 and 28, widening the
// range of the first setup at bar 9 and of the second at bar 24.
func qualifierSeries(t *testing.T, first [2]float64, second [2]float64, oppositeAt int) *shared.Series {
	t.Helper()

	bars := flatBars(35, 50)
	bars[9].High, bars[9].Low = first[0], first[1]
	bars[24].High, bars[24].Low = second[0], second[1]
	s := newBarSeries(t, bars)

	setups := make([]float64, s.Len())
	trueEnds := make([]float64, s.Len())
	opposite := make([]float64, s.Len())
	setups[13], trueEnds[13] = 1, 13
	setups[28], trueEnds[28] = 1, 28
	if oppositeAt > 0 {
		opposite[oppositeAt] = 1
	}

	assert.NoError(t, s.SetColumn(shared.BuySetup, setups))
	assert.NoError(t, s.SetColumn(shared.BuySetupTrueEnd, trueEnds))
	assert.NoError(t, s.SetColumn(shared.SellSetup, opposite))
	assert.NoError(t, s.SetColumn(shared.SellSetupTrueEnd, make([]float64, s.Len())))

	return s
}

func TestParseQualifier(t *testing.T) {
	for _, q := range []Qualifier{CQI, CQII} {
		parsed, err := ParseQualifier(q.String())
		assert.NoError(t, err)
		assert.Equal(t, parsed, q)
	}

	_, err := ParseQualifier("cqiii")
	assert.True(t, errors.Is(err, shared.ErrUnknownIndicator))
	assert.Equal(t, Qualifier(9).String(), "unknown")
}

func TestActiveSetups(t *testing.T) {
	tests := []struct {
		name       string
		first      [2]float64
		second     [2]float64
		oppositeAt int
		qualifiers []Qualifier
		want       []int
	}{
		{
			// True ranges 10 then 15, within the 1.618 ratio.
			name:       "cqi deactivates the earlier setup",
			first:      [2]float64{55, 45},
			second:     [2]float64{57.5, 42.5},
			qualifiers: []Qualifier{CQI},
			want:       []int{28},
		},
		{
			name:   "no qualifiers keeps every setup",
			first:  [2]float64{55, 45},
			second: [2]float64{57.5, 42.5},
			want:   []int{13, 28},
		},
		{
			// True ranges 10 then 20, beyond the 1.618 ratio.
			name:       "cqi keeps setups beyond the ratio",
			first:      [2]float64{55, 45},
			second:     [2]float64{60, 40},
			qualifiers: []Qualifier{CQI},
			want:       []int{13, 28},
		},
		{
			name:       "cqi keeps a narrower later setup",
			first:      [2]float64{55, 45},
			second:     [2]float64{53, 47},
			qualifiers: []Qualifier{CQI},
			want:       []int{13, 28},
		},
		{
			name:       "cqii deactivates a contained setup",
			first:      [2]float64{55, 45},
			second:     [2]float64{53, 47},
			qualifiers: []Qualifier{CQII},
			want:       []int{13},
		},
		{
			name:       "cqii keeps a setup after an opposite setup",
			first:      [2]float64{55, 45},
			second:     [2]float64{53, 47},
			oppositeAt: 17,
			qualifiers: []Qualifier{CQII},
			want:       []int{13, 28},
		},
		{
			name:       "cqii keeps a setup breaching the earlier range",
			first:      [2]float64{55, 45},
			second:     [2]float64{57.5, 42.5},
			qualifiers: []Qualifier{CQII},
			want:       []int{13, 28},
		},
		{
			name:       "qualifiers combine",
			first:      [2]float64{55, 45},
			second:     [2]float64{57.5, 42.5},
			qualifiers: []Qualifier{CQI, CQII, CQI},
			want:       []int{28},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := qualifierSeries(t, test.first, test.second, test.oppositeAt)
			got, err := ActiveSetups(s, shared.Buy, test.qualifiers...)
			assert.NoError(t, err)
			if !cmp.Equal(got, test.want) {
				t.Errorf("expected active setups %v, got %v", test.want, got)
			}
		})
	}
}

func TestActiveSetupsErrors(t *testing.T) {
	s := qualifierSeries(t, [2]float64{55, 45}, [2]float64{57.5, 42.5}, 0)

	// Ensure unknown qualifiers are configuration errors.
	_, err := ActiveSetups(s, shared.Buy, Qualifier(5))
	var cfgErr *shared.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))

	// Ensure missing setup columns are reported.
	bare := newBarSeries(t, flatBars(35, 50))
	_, err = ActiveSetups(bare, shared.Sell)
	assert.True(t, errors.Is(err, shared.ErrMissingColumn))
}
