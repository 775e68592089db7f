package shared

import "fmt"

// MergeMaxValue merges two pattern index values. Zero is treated as unset, so the merge is
// total: max(0, v) == v for every valid index.
func MergeMaxValue(existing float64, value float64) float64 {
	if value > existing {
		return value
	}

	return existing
}

// MergeMax merges the source column into the destination column bar by bar, keeping the
// maximum value at every bar.
func MergeMax(dst []float64, src []float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("%w: merging %d values into %d", ErrColumnLength, len(src), len(dst))
	}

	for idx := range src {
		dst[idx] = MergeMaxValue(dst[idx], src[idx])
	}

	return nil
}
