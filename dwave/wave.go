package dwave

// WaveState represents a state of the D-Wave machine.
type WaveState int

const (
	Wave0 WaveState = iota
	// Wave1C1 is the candidate phase of wave 1, tracking the lowest close since a new low.
	Wave1C1
	// Wave1C2 is the confirmed phase of wave 1.
	Wave1C2
	Wave2
	Wave3
	Wave4
	Wave5
	WaveA
	WaveB
	WaveC
)

// String stringifies the provided wave state.
func (w WaveState) String() string {
	switch w {
	case Wave0:
		return "wave_0"
	case Wave1C1:
		return "wave_1c1"
	case Wave1C2:
		return "wave_1c2"
	case Wave2:
		return "wave_2"
	case Wave3:
		return "wave_3"
	case Wave4:
		return "wave_4"
	case Wave5:
		return "wave_5"
	case WaveA:
		return "wave_a"
	case WaveB:
		return "wave_b"
	case WaveC:
		return "wave_c"
	default:
		return "unknown"
	}
}

// Label returns the value written to the wave columns for bars of the provided state. Both
// wave 1 phases share a label.
func (w WaveState) Label() int {
	switch w {
	case Wave1C1, Wave1C2:
		return 1
	case Wave2, Wave3, Wave4, Wave5, WaveA, WaveB, WaveC:
		return int(w) - 1
	default:
		return 0
	}
}

// Lookback returns the number of prior closes the state's entry condition compares against.
func (w WaveState) Lookback() int {
	switch w {
	case Wave1C1, Wave3, WaveC:
		return 21
	case Wave1C2, Wave4, WaveA:
		return 13
	case Wave2, WaveB:
		return 8
	case Wave5:
		return 24
	default:
		return 0
	}
}
