package indicator

import (
	"fmt"

	"github.com/dnldd/demark/shared"
)

// StopLevel returns the risk level of the setup of the provided side completed at the provided
// index, rounded to the provided digits. A buy setup's level is its lowest low less that bar's
// true range, a sell setup's is its highest high plus that bar's true range.
func StopLevel(s *shared.Series, side shared.Side, setup int, digits int32) (float64, error) {
	err := s.Require("stop_level", shared.SetupColumn(side), shared.TrueEndColumn(side))
	if err != nil {
		return 0, err
	}

	if setup < setupLength-1 || setup >= s.Len() {
		return 0, shared.NewIndexBoundsError(setup, s.Len(), "stop level setup index")
	}

	setups, _ := s.Column(shared.SetupColumn(side))
	if setups[setup] == 0 {
		return 0, fmt.Errorf("no %s setup completed at index %d", side.String(), setup)
	}

	trueEnds, _ := s.Column(shared.TrueEndColumn(side))
	start := setup - (setupLength - 1)
	end := int(trueEnds[setup])

	extreme := start
	switch side {
	case shared.Buy:
		lows := s.Lows()
		for k := start; k <= end; k++ {
			if lows[k] < lows[extreme] {
				extreme = k
			}
		}
	case shared.Sell:
		highs := s.Highs()
		for k := start; k <= end; k++ {
			if highs[k] > highs[extreme] {
				extreme = k
			}
		}
	}

	trueRange, err := shared.TrueRange(s, extreme)
	if err != nil {
		return 0, err
	}

	var level float64
	switch side {
	case shared.Buy:
		level = s.Lows()[extreme] - trueRange
	case shared.Sell:
		level = s.Highs()[extreme] + trueRange
	}

	return shared.RoundPrice(level, digits), nil
}
