package oscillator

import (
	"fmt"

	"github.com/dnldd/demark/shared"
	talib "github.com/markcheno/go-talib"
)

// requireBars asserts the series holds at least the provided number of bars.
func requireBars(s *shared.Series, name string, minimum int) error {
	if s.Len() < minimum {
		return shared.NewIndexBoundsError(minimum-1, s.Len(),
			fmt.Sprintf("%s requires at least %d bars", name, minimum))
	}

	return nil
}

// rollingSum returns the sum of the trailing window of the provided values at every index.
// Indices before a full window are zero.
func rollingSum(values []float64, window int) []float64 {
	if window < 2 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}

	return talib.Sum(values, window)
}

// ratio returns num / (num + other) scaled to 100, zero when both are zero.
func ratio(num float64, other float64) float64 {
	den := num + other
	if den == 0 {
		return 0
	}

	return num / den * 100
}

// signal returns 1 when buy holds, -1 when sell holds and 0 otherwise.
func signal(buy bool, sell bool) float64 {
	switch {
	case buy && !sell:
		return 1
	case sell && !buy:
		return -1
	default:
		return 0
	}
}

// errPeriod returns the error of a non positive window period.
func errPeriod(period int) error {
	return fmt.Errorf("period must be positive, got %d", period)
}
