package indicator

import (
	"fmt"
	"math"

	"github.com/dnldd/demark/shared"
	"github.com/samber/lo"
)

const (
	// cqiRatio is the upper bound of the true range ratio between consecutive setups under
	// which the cancellation qualifier I deactivates the earlier setup.
	cqiRatio = 1.618
)

// Qualifier represents a setup cancellation qualifier.
type Qualifier int

const (
	// CQI compares the true range of a setup with that of its predecessor.
	CQI Qualifier = iota
	// CQII checks whether a setup is contained within its predecessor's true range.
	CQII
)

// String stringifies the provided qualifier.
func (q Qualifier) String() string {
	switch q {
	case CQI:
		return "cqi"
	case CQII:
		return "cqii"
	default:
		return "unknown"
	}
}

// ParseQualifier returns the qualifier associated with the provided name.
func ParseQualifier(name string) (Qualifier, error) {
	switch name {
	case CQI.String():
		return CQI, nil
	case CQII.String():
		return CQII, nil
	default:
		return 0, fmt.Errorf("%w: qualifier %q", shared.ErrUnknownIndicator, name)
	}
}

// setupRecord represents a completed setup.
type setupRecord struct {
	// index is the bar the setup completed at (bar 9).
	index int
	// start is the price flip bar the setup began at (bar 1).
	start int
	// trueEnd is the last bar the setup condition held at.
	trueEnd int
}

// findSetups returns the completed setups of the provided side in chronological order.
func findSetups(s *shared.Series, side shared.Side) []setupRecord {
	setups, _ := s.Column(shared.SetupColumn(side))
	trueEnds, _ := s.Column(shared.TrueEndColumn(side))

	var records []setupRecord
	for idx := range setups {
		if setups[idx] == 0 {
			continue
		}

		records = append(records, setupRecord{
			index:   idx,
			start:   idx - (setupLength - 1),
			trueEnd: int(trueEnds[idx]),
		})
	}

	return records
}

// applyCQI deactivates the earlier of two consecutive setups when the later setup's true range
// is between one and 1.618 times the earlier's.
func applyCQI(s *shared.Series, records []setupRecord) ([]bool, error) {
	active := lo.Times(len(records), func(int) bool { return true })

	for j := 1; j < len(records); j++ {
		prev := records[j-1]
		curr := records[j]

		prevRange, err := shared.TrueRangeOfInterval(s, prev.start, prev.trueEnd)
		if err != nil {
			return nil, err
		}
		currRange, err := shared.TrueRangeOfInterval(s, curr.start, curr.trueEnd)
		if err != nil {
			return nil, err
		}

		if prevRange <= currRange && currRange <= cqiRatio*prevRange {
			active[j-1] = false
		}
	}

	return active, nil
}

// applyCQII deactivates a setup whose highs, lows and closes fall strictly within the true
// range of its predecessor when no opposite setup occurred between the two.
func applyCQII(s *shared.Series, side shared.Side, records []setupRecord) ([]bool, error) {
	active := lo.Times(len(records), func(int) bool { return true })
	opposite, _ := s.Column(shared.SetupColumn(side.Opposite()))
	highs := s.Highs()
	lows := s.Lows()
	closes := s.Closes()

	for j := 1; j < len(records); j++ {
		prev := records[j-1]
		curr := records[j]

		interrupted := lo.ContainsBy(opposite[prev.index+1:curr.index], func(v float64) bool {
			return v != 0
		})
		if interrupted {
			continue
		}

		trueHigh, trueLow, err := shared.TrueExtremesOfInterval(s, prev.start, prev.trueEnd)
		if err != nil {
			return nil, err
		}

		high, low := math.Inf(-1), math.Inf(1)
		highClose, lowClose := math.Inf(-1), math.Inf(1)
		for k := curr.start; k <= curr.trueEnd; k++ {
			high = max(high, highs[k])
			low = min(low, lows[k])
			highClose = max(highClose, closes[k])
			lowClose = min(lowClose, closes[k])
		}

		if high < trueHigh && low > trueLow && highClose < trueHigh && lowClose > trueLow {
			active[j] = false
		}
	}

	return active, nil
}

// ActiveSetups returns the completion indices of the setups of the provided side that remain
// active after applying the provided qualifiers. A setup must be active under every requested
// qualifier, without qualifiers every setup is active.
func ActiveSetups(s *shared.Series, side shared.Side, qualifiers ...Qualifier) ([]int, error) {
	err := s.Require("qualifier", shared.SetupColumn(side), shared.SetupColumn(side.Opposite()),
		shared.TrueEndColumn(side))
	if err != nil {
		return nil, err
	}

	records := findSetups(s, side)
	active := lo.Times(len(records), func(int) bool { return true })

	for _, q := range lo.Uniq(qualifiers) {
		var qualified []bool
		var err error

		switch q {
		case CQI:
			qualified, err = applyCQI(s, records)
		case CQII:
			qualified, err = applyCQII(s, side, records)
		default:
			return nil, shared.NewConfigurationError("countdown",
				fmt.Errorf("%w: qualifier %d", shared.ErrUnknownIndicator, q))
		}
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", q.String(), err)
		}

		for idx := range active {
			active[idx] = active[idx] && qualified[idx]
		}
	}

	var indices []int
	for idx, rec := range records {
		if active[idx] {
			indices = append(indices, rec.index)
		}
	}

	return indices, nil
}
