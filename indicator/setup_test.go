package indicator

import (
	"errors"
	"testing"

	"github.com/dnldd/demark/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

func TestSetupConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SetupConfig
		wantErr bool
	}{
		{name: "default", cfg: SetupConfig{}},
		{name: "max bars", cfg: SetupConfig{MaxBars: 20}},
		{name: "start", cfg: SetupConfig{Start: testDate(40)}},
		{name: "negative max bars", cfg: SetupConfig{MaxBars: -1}, wantErr: true},
		{name: "max bars and start", cfg: SetupConfig{MaxBars: 20, Start: testDate(40)}, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSetup(t *testing.T) {
	s := newTestSeries(t, setupCloses())
	apply(t, s, NewPriceFlip(), NewSetup(nil))

	// Ensure both buy setups complete at their ninth bar.
	buy := column(t, s, shared.BuySetup)
	if !cmp.Equal(indicesOf(buy), []int{15, 25}) {
		t.Fatalf("expected buy setups at [15 25], got %v", indicesOf(buy))
	}
	assert.Equal(t, len(indicesOf(column(t, s, shared.SellSetup))), 0)

	// Ensure both setups are perfected and end where their condition stops holding.
	perfect := column(t, s, shared.PerfectBuySetup)
	assert.True(t, cmp.Equal(indicesOf(perfect), []int{15, 25}))

	trueEnds := column(t, s, shared.BuySetupTrueEnd)
	assert.Equal(t, trueEnds[15], float64(15))
	assert.Equal(t, trueEnds[25], float64(25))

	// Ensure the resistance level is the true high of each setup's first bar, broadcast
	// forward until superseded.
	tdst := column(t, s, shared.TDSTResistance)
	for idx := range 15 {
		assert.Equal(t, tdst[idx], float64(0))
	}
	for idx := 15; idx < 25; idx++ {
		assert.Equal(t, tdst[idx], float64(103))
	}
	assert.Equal(t, tdst[25], float64(92))
	assert.Equal(t, tdst[26], float64(92))

	support := column(t, s, shared.TDSTSupport)
	assert.Equal(t, len(indicesOf(support)), 0)
}

func TestSetupTrueEnd(t *testing.T) {
	s := newTestSeries(t, countdownCloses())
	apply(t, s, NewPriceFlip(), NewSetup(nil))

	// Ensure the true end extends past bar nine while the setup condition holds.
	buy := column(t, s, shared.BuySetup)
	assert.Equal(t, buy[15], float64(1))
	trueEnds := column(t, s, shared.BuySetupTrueEnd)
	assert.Equal(t, trueEnds[15], float64(19))
}

func TestSetupScanWindow(t *testing.T) {
	tests := []struct {
		name string
		cfg  *SetupConfig
		want []int
	}{
		{name: "all bars", cfg: &SetupConfig{}, want: []int{15, 50}},
		{name: "max bars", cfg: &SetupConfig{MaxBars: 20}, want: []int{50}},
		{name: "start", cfg: &SetupConfig{Start: testDate(40)}, want: []int{50}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestSeries(t, sequenceCloses())
			apply(t, s, NewPriceFlip(), NewSetup(test.cfg))

			got := indicesOf(column(t, s, shared.BuySetup))
			if !cmp.Equal(got, test.want) {
				t.Errorf("expected buy setups at %v, got %v", test.want, got)
			}
		})
	}
}

func TestSetupErrors(t *testing.T) {
	s := newTestSeries(t, setupCloses())

	// Ensure setups require price flips.
	err := NewSetup(nil).Apply(s)
	var cfgErr *shared.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, shared.ErrMissingColumn))
	assert.Equal(t, cfgErr.Indicator, "setup")

	// Ensure mutually exclusive scan limits are rejected as configuration errors.
	apply(t, s, NewPriceFlip())
	err = NewSetup(&SetupConfig{MaxBars: 10, Start: testDate(5)}).Apply(s)
	assert.True(t, errors.As(err, &cfgErr))
	assert.True(t, errors.Is(err, shared.ErrMutuallyExclusive))
}

func TestSetupProperties(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 99} {
		s := newRandomSeries(t, seed, 400)
		apply(t, s, NewPriceFlip(), NewSetup(nil))

		closes := s.Closes()
		for _, side := range []shared.Side{shared.Buy, shared.Sell} {
			setups := column(t, s, shared.SetupColumn(side))
			flips := column(t, s, shared.SeedFlipColumn(side))
			perfect := column(t, s, shared.PerfectSetupColumn(side))
			trueEnds := column(t, s, shared.TrueEndColumn(side))

			for e := range setups {
				if perfect[e] != 0 {
					// Ensure only completed setups are perfected.
					assert.Equal(t, setups[e], float64(1))
				}
				if setups[e] == 0 {
					continue
				}

				// Ensure every setup is seeded by an opposing flip eight bars earlier.
				f := e - 8
				assert.Equal(t, flips[f], float64(1))

				// Ensure every bar of the setup satisfies the close comparison.
				for k := f; k <= e; k++ {
					if side == shared.Buy {
						assert.True(t, closes[k] < closes[k-4])
					} else {
						assert.True(t, closes[k] > closes[k-4])
					}
				}

				// Ensure the true end never precedes the setup.
				assert.True(t, int(trueEnds[e]) >= e)
			}
		}
	}
}
