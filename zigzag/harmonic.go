package zigzag

import (
	"fmt"
	"math"
	"slices"

	"github.com/dnldd/demark/shared"
)

// Pattern represents a harmonic pattern template.
type Pattern int

const (
	NoPattern Pattern = iota
	Gartley
	Bat
	AltBat
	Butterfly
	Crab
	DeepCrab
	Shark
	Cypher
	ABCD
	Navarro200
	FiveO
	ThreeDrives
	WhiteSwan
	BlackSwan
)

// String stringifies the provided pattern.
func (p Pattern) String() string {
	switch p {
	case NoPattern:
		return "none"
	case Gartley:
		return "gartley"
	case Bat:
		return "bat"
	case AltBat:
		return "alt_bat"
	case Butterfly:
		return "butterfly"
	case Crab:
		return "crab"
	case DeepCrab:
		return "deep_crab"
	case Shark:
		return "shark"
	case Cypher:
		return "cypher"
	case ABCD:
		return "abcd"
	case Navarro200:
		return "navarro_200"
	case FiveO:
		return "five_o"
	case ThreeDrives:
		return "three_drives"
	case WhiteSwan:
		return "white_swan"
	case BlackSwan:
		return "black_swan"
	default:
		return "unknown"
	}
}

// ratioRange is an inclusive band of leg ratios. A zero band is unconstrained.
type ratioRange struct {
	min float64
	max float64
}

// template represents the leg ratio bands of a harmonic pattern: AB/XA, BC/AB, CD/BC and
// AD/XA.
type template struct {
	pattern Pattern
	ab      ratioRange
	bc      ratioRange
	cd      ratioRange
	ad      ratioRange
}

var templates = []template{
	{Gartley, ratioRange{0.58, 0.66}, ratioRange{0.382, 0.886}, ratioRange{1.13, 1.618}, ratioRange{0.75, 0.82}},
	{Bat, ratioRange{0.382, 0.5}, ratioRange{0.382, 0.886}, ratioRange{1.618, 2.618}, ratioRange{0.85, 0.9}},
	{AltBat, ratioRange{0.35, 0.382}, ratioRange{0.382, 0.886}, ratioRange{2.0, 3.618}, ratioRange{1.1, 1.15}},
	{Butterfly, ratioRange{0.76, 0.8}, ratioRange{0.382, 0.886}, ratioRange{1.618, 2.24}, ratioRange{1.27, 1.618}},
	{Crab, ratioRange{0.382, 0.618}, ratioRange{0.382, 0.886}, ratioRange{2.24, 3.618}, ratioRange{1.6, 1.65}},
	{DeepCrab, ratioRange{0.87, 0.9}, ratioRange{0.382, 0.886}, ratioRange{2.0, 3.618}, ratioRange{1.6, 1.65}},
	{Shark, ratioRange{0.382, 0.618}, ratioRange{1.13, 1.618}, ratioRange{1.618, 2.24}, ratioRange{0.886, 1.13}},
	{Cypher, ratioRange{0.382, 0.618}, ratioRange{1.13, 1.414}, ratioRange{1.272, 2.0}, ratioRange{0.75, 0.8}},
	{ABCD, ratioRange{}, ratioRange{0.382, 0.886}, ratioRange{1.13, 2.618}, ratioRange{}},
	{Navarro200, ratioRange{0.382, 0.786}, ratioRange{0.886, 1.13}, ratioRange{0.886, 3.618}, ratioRange{0.886, 1.13}},
	{FiveO, ratioRange{1.13, 1.618}, ratioRange{1.618, 2.24}, ratioRange{0.45, 0.55}, ratioRange{}},
	{ThreeDrives, ratioRange{1.27, 1.618}, ratioRange{0.618, 0.786}, ratioRange{1.27, 1.618}, ratioRange{}},
	{WhiteSwan, ratioRange{1.382, 2.618}, ratioRange{0.236, 0.5}, ratioRange{1.128, 2.0}, ratioRange{0.238, 0.886}},
	{BlackSwan, ratioRange{0.382, 0.724}, ratioRange{2.0, 4.237}, ratioRange{0.5, 0.886}, ratioRange{1.127, 2.618}},
}

// fit returns the relative distance of the ratio from the band's center and whether the ratio
// lies within the band widened by the tolerance.
func (r ratioRange) fit(ratio float64, tolerance float64) (float64, bool) {
	if r.max == 0 {
		return 0, true
	}

	if ratio < r.min*(1-tolerance) || ratio > r.max*(1+tolerance) {
		return 0, false
	}

	mid := (r.min + r.max) / 2
	return math.Abs(ratio-mid) / mid, true
}

// Ratios represents the leg ratios of five alternating pivots X, A, B, C and D.
type Ratios struct {
	AB float64
	BC float64
	CD float64
	AD float64
}

// legRatios returns the leg ratios of the provided pivots, false when a leg is flat.
func legRatios(x, a, b, c, d float64) (Ratios, bool) {
	xa := math.Abs(a - x)
	ab := math.Abs(b - a)
	bc := math.Abs(c - b)
	if xa == 0 || ab == 0 || bc == 0 {
		return Ratios{}, false
	}

	return Ratios{
		AB: ab / xa,
		BC: bc / ab,
		CD: math.Abs(d-c) / bc,
		AD: math.Abs(d-a) / xa,
	}, true
}

// Classify returns the template best matching the provided five pivots within the tolerance
// and its signed code: positive when the pattern completes at a low (bullish), negative when
// it completes at a high (bearish), zero when nothing matches. Ties keep the earlier template.
// When allowed patterns are provided only those templates are considered.
func Classify(pivots []Pivot, tolerance float64, allowed ...Pattern) (Pattern, int) {
	if len(pivots) != 5 {
		return NoPattern, 0
	}

	for idx := 1; idx < len(pivots); idx++ {
		if pivots[idx].Kind == pivots[idx-1].Kind {
			return NoPattern, 0
		}
	}

	ratios, ok := legRatios(pivots[0].Price, pivots[1].Price, pivots[2].Price,
		pivots[3].Price, pivots[4].Price)
	if !ok {
		return NoPattern, 0
	}

	best := NoPattern
	bestErr := math.Inf(1)
	for _, tmpl := range templates {
		if len(allowed) > 0 && !slices.Contains(allowed, tmpl.pattern) {
			continue
		}

		total := 0.0
		matched := true
		for _, f := range []struct {
			band  ratioRange
			ratio float64
		}{
			{tmpl.ab, ratios.AB}, {tmpl.bc, ratios.BC}, {tmpl.cd, ratios.CD}, {tmpl.ad, ratios.AD},
		} {
			dist, ok := f.band.fit(f.ratio, tolerance)
			if !ok {
				matched = false
				break
			}
			total += dist
		}

		if matched && total < bestErr {
			best = tmpl.pattern
			bestErr = total
		}
	}

	if best == NoPattern {
		return NoPattern, 0
	}

	code := int(best)
	if pivots[4].Kind == PivotHigh {
		code = -code
	}

	return best, code
}

// ParsePattern returns the pattern with the provided name.
func ParsePattern(name string) (Pattern, error) {
	for _, tmpl := range templates {
		if tmpl.pattern.String() == name {
			return tmpl.pattern, nil
		}
	}

	return NoPattern, fmt.Errorf("%w: harmonic pattern %q", shared.ErrUnknownIndicator, name)
}
