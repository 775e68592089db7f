package zigzag

import (
	"fmt"
)

// PivotKind represents the kind of a zigzag pivot.
type PivotKind int

const (
	PivotLow  PivotKind = -1
	PivotHigh PivotKind = 1
)

// String stringifies the provided pivot kind.
func (k PivotKind) String() string {
	switch k {
	case PivotLow:
		return "low"
	case PivotHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Pivot represents a zigzag swing point.
type Pivot struct {
	Index int
	Price float64
	Kind  PivotKind
}

// pivotWindow holds the most recent pivots of a scan in a fixed size ring.
type pivotWindow struct {
	data  []Pivot
	start int
	count int
}

// newPivotWindow initializes a new pivot window.
func newPivotWindow(size int) (*pivotWindow, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pivot window size must be positive, got %d", size)
	}

	return &pivotWindow{data: make([]Pivot, size)}, nil
}

// Update adds the provided pivot, overwriting the oldest one at capacity.
func (w *pivotWindow) Update(pivot Pivot) {
	size := len(w.data)
	w.data[(w.start+w.count)%size] = pivot

	if w.count == size {
		w.start = (w.start + 1) % size
		return
	}

	w.count++
}

// Len returns the number of pivots held.
func (w *pivotWindow) Len() int {
	return w.count
}

// LastN fetches the last n pivots, oldest first.
func (w *pivotWindow) LastN(n int) []Pivot {
	if n <= 0 {
		return nil
	}

	n = min(n, w.count)
	size := len(w.data)
	first := w.start + w.count - n

	set := make([]Pivot, n)
	for i := range n {
		set[i] = w.data[(first+i)%size]
	}

	return set
}
