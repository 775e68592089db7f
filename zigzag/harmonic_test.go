package zigzag

import (
	"errors"
	"testing"

	"github.com/dnldd/demark/shared"
	"github.com/peterldowns/testy/assert"
)

// gartley returns the X, A, B, C and D pivots of a bullish gartley.
func gartley() []Pivot {
	return []Pivot{
		{Index: 0, Price: 100, Kind: PivotLow},
		{Index: 10, Price: 200, Kind: PivotHigh},
		{Index: 16, Price: 138.2, Kind: PivotLow},
		{Index: 22, Price: 176.39, Kind: PivotHigh},
		{Index: 28, Price: 121.4, Kind: PivotLow},
	}
}

// mirror reflects the provided pivots around the provided price.
func mirror(pivots []Pivot, around float64) []Pivot {
	mirrored := make([]Pivot, len(pivots))
	for idx, p := range pivots {
		mirrored[idx] = Pivot{Index: p.Index, Price: around - p.Price, Kind: -p.Kind}
	}

	return mirrored
}

func TestClassify(t *testing.T) {
	sameKind := gartley()
	sameKind[2].Kind = PivotHigh

	flatLeg := gartley()
	flatLeg[2].Price = flatLeg[1].Price

	tests := []struct {
		name      string
		pivots    []Pivot
		tolerance float64
		allowed   []Pattern
		pattern   Pattern
		code      int
	}{
		{
			name:      "bullish gartley",
			pivots:    gartley(),
			tolerance: 0.1,
			pattern:   Gartley,
			code:      1,
		},
		{
			name:      "bearish gartley",
			pivots:    mirror(gartley(), 300),
			tolerance: 0.1,
			pattern:   Gartley,
			code:      -1,
		},
		{
			name:      "gartley without tolerance",
			pivots:    gartley(),
			tolerance: 0,
			pattern:   Gartley,
			code:      1,
		},
		{
			name:      "restricted to bat",
			pivots:    gartley(),
			tolerance: 0.1,
			allowed:   []Pattern{Bat},
			pattern:   NoPattern,
			code:      0,
		},
		{
			name:      "restricted to abcd",
			pivots:    gartley(),
			tolerance: 0.1,
			allowed:   []Pattern{ABCD},
			pattern:   ABCD,
			code:      9,
		},
		{
			name:      "pivots do not alternate",
			pivots:    sameKind,
			tolerance: 0.1,
			pattern:   NoPattern,
			code:      0,
		},
		{
			name:      "flat leg",
			pivots:    flatLeg,
			tolerance: 0.1,
			pattern:   NoPattern,
			code:      0,
		},
		{
			name:      "too few pivots",
			pivots:    gartley()[:4],
			tolerance: 0.1,
			pattern:   NoPattern,
			code:      0,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pattern, code := Classify(test.pivots, test.tolerance, test.allowed...)
			assert.Equal(t, pattern, test.pattern)
			assert.Equal(t, code, test.code)
		})
	}
}

func TestParsePattern(t *testing.T) {
	// Ensure every template can be parsed back from its name.
	for _, tmpl := range templates {
		pattern, err := ParsePattern(tmpl.pattern.String())
		assert.NoError(t, err)
		assert.Equal(t, pattern, tmpl.pattern)
	}

	assert.Equal(t, len(templates), 14)

	// Ensure unknown pattern names are rejected.
	_, err := ParsePattern("wolfe")
	assert.True(t, errors.Is(err, shared.ErrUnknownIndicator))

	assert.Equal(t, Pattern(99).String(), "unknown")
}
