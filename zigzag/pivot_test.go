package zigzag

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestPivotWindow(t *testing.T) {
	// Ensure pivot window size cannot be negative or zero.
	_, err := newPivotWindow(-1)
	assert.Error(t, err)

	_, err = newPivotWindow(0)
	assert.Error(t, err)

	// Ensure a pivot window can be created.
	size := 4
	window, err := newPivotWindow(size)
	assert.NoError(t, err)

	// Ensure calling LastN on an empty window returns an empty set.
	assert.Equal(t, len(window.LastN(size)), 0)

	// Ensure calling LastN with zero or negative size returns nil.
	assert.Nil(t, window.LastN(-1))

	// Ensure the window can be updated with alternating pivots.
	kind := PivotLow
	for idx := range size {
		window.Update(Pivot{Index: idx * 5, Price: float64(idx + 1), Kind: kind})
		kind = -kind
	}
	assert.Equal(t, window.Len(), size)

	// Ensure calling LastN with a larger size than the window gets clamped to the window's size.
	lastN := window.LastN(size + 1)
	assert.Equal(t, len(lastN), size)
	assert.Equal(t, lastN[0].Index, 0)
	assert.Equal(t, lastN[3], Pivot{Index: 15, Price: 4, Kind: PivotHigh})

	// Ensure pivot updates at capacity overwrite the oldest slot.
	next := Pivot{Index: 20, Price: 5, Kind: PivotLow}
	window.Update(next)
	assert.Equal(t, window.Len(), size)

	// Ensure the last n pivots are returned oldest first.
	nSet := window.LastN(2)
	assert.Equal(t, nSet[0].Price, float64(4))
	assert.Equal(t, nSet[1], next)

	nSet = window.LastN(size)
	assert.Equal(t, nSet[0].Index, 5)
	assert.Equal(t, nSet[3].Index, 20)
}

func TestPivotKindString(t *testing.T) {
	assert.Equal(t, PivotLow.String(), "low")
	assert.Equal(t, PivotHigh.String(), "high")
	assert.Equal(t, PivotKind(0).String(), "unknown")
}
