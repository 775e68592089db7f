package shared

import "math"

// checkTrueIndex asserts a true range primitive can be evaluated at the provided index. The
// first bar has no prior close and therefore no true high or low.
func checkTrueIndex(s *Series, i int) error {
	if i <= 0 || i >= s.Len() {
		return NewIndexBoundsError(i, s.Len(), "true range requires a prior close")
	}

	return nil
}

// TrueHigh returns the greater of the high at the provided index and the prior close.
func TrueHigh(s *Series, i int) (float64, error) {
	err := checkTrueIndex(s, i)
	if err != nil {
		return 0, err
	}

	return math.Max(s.highs[i], s.closes[i-1]), nil
}

// TrueLow returns the lesser of the low at the provided index and the prior close.
func TrueLow(s *Series, i int) (float64, error) {
	err := checkTrueIndex(s, i)
	if err != nil {
		return 0, err
	}

	return math.Min(s.lows[i], s.closes[i-1]), nil
}

// TrueRange returns the true high less the true low at the provided index.
func TrueRange(s *Series, i int) (float64, error) {
	err := checkTrueIndex(s, i)
	if err != nil {
		return 0, err
	}

	return math.Max(s.highs[i], s.closes[i-1]) - math.Min(s.lows[i], s.closes[i-1]), nil
}

// TrueExtremesOfInterval returns the highest true high and lowest true low over the
// inclusive interval [start, end].
func TrueExtremesOfInterval(s *Series, start int, end int) (float64, float64, error) {
	if start > end {
		return 0, 0, NewIndexBoundsError(start, s.Len(), "interval start after end")
	}

	err := checkTrueIndex(s, start)
	if err != nil {
		return 0, 0, err
	}
	err = checkTrueIndex(s, end)
	if err != nil {
		return 0, 0, err
	}

	high := math.Inf(-1)
	low := math.Inf(1)
	for i := start; i <= end; i++ {
		high = math.Max(high, math.Max(s.highs[i], s.closes[i-1]))
		low = math.Min(low, math.Min(s.lows[i], s.closes[i-1]))
	}

	return high, low, nil
}

// TrueRangeOfInterval returns the highest true high less the lowest true low over the
// inclusive interval [start, end].
func TrueRangeOfInterval(s *Series, start int, end int) (float64, error) {
	high, low, err := TrueExtremesOfInterval(s, start, end)
	if err != nil {
		return 0, err
	}

	return high - low, nil
}
