package dwave

import (
	talib "github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
)

// legCount is the number of labelled wave legs, 1 through 5 and A through C.
const legCount = 8

// leg represents the bars of a wave leg. The leg starts at start and its extreme close,
// the bar it closes at, is ext.
type leg struct {
	start int
	ext   int
}

// span represents an inclusive range of bars.
type span struct {
	from int
	to   int
}

// machine labels the waves of one direction over a close series. The down direction runs
// the same machine over negated closes.
type machine struct {
	cfg    *DWaveConfig
	closes []float64
	labels []float64
	highs  map[int][]float64
	lows   map[int][]float64

	state WaveState
	legs  [legCount + 1]leg
	// origin is the bar whose close wave 1 must hold above.
	origin int
	// cycleStart is the first bar the current cycle may rewrite.
	cycleStart int
	// resets records the ranges erased by wave invalidations.
	resets []span
	logger *zerolog.Logger
}

// newMachine initializes a wave machine over the provided closes.
func newMachine(cfg *DWaveConfig, closes []float64, logger *zerolog.Logger) *machine {
	m := &machine{
		cfg:    cfg,
		closes: closes,
		labels: make([]float64, len(closes)),
		highs:  make(map[int][]float64),
		lows:   make(map[int][]float64),
		origin: -1,
		logger: logger,
	}

	for _, w := range []WaveState{Wave1C1, Wave1C2, Wave2, Wave3, Wave4, Wave5, WaveA, WaveB, WaveC} {
		n := w.Lookback()
		if _, ok := m.highs[n]; ok {
			continue
		}
		m.highs[n] = talib.Max(closes, n)
		m.lows[n] = talib.Min(closes, n)
	}

	return m
}

// newHigh returns whether the close at the provided index exceeds every close of the
// lookback window of the provided state.
func (m *machine) newHigh(w WaveState, i int) bool {
	n := w.Lookback()
	return i >= n && m.closes[i] > m.highs[n][i-1]
}

// newLow returns whether the close at the provided index undercuts every close of the
// lookback window of the provided state.
func (m *machine) newLow(w WaveState, i int) bool {
	n := w.Lookback()
	return i >= n && m.closes[i] < m.lows[n][i-1]
}

// write labels the inclusive range with the provided label, never before the cycle start.
func (m *machine) write(label int, from int, to int) {
	for k := max(from, m.cycleStart); k <= to; k++ {
		m.labels[k] = float64(label)
	}
}

// erase clears the labels of the inclusive range, never before the cycle start.
func (m *machine) erase(from int, to int) {
	m.write(0, from, to)
}

// closeLeg writes the provided leg across its bars.
func (m *machine) closeLeg(label int) {
	l := m.legs[label]
	m.write(label, l.start, l.ext)
}

// openLeg enters the provided state, starting its leg right after the previous leg's extreme.
func (m *machine) openLeg(w WaveState, i int) {
	label := w.Label()
	m.legs[label] = leg{start: m.legs[label-1].ext + 1, ext: i}
	m.state = w
}

// clearLegs drops the provided legs.
func (m *machine) clearLegs(labels ...int) {
	for _, label := range labels {
		m.legs[label] = leg{}
	}
}

// reset returns the machine to wave 0, clearing every leg. Bars up to the provided index
// are never rewritten again.
func (m *machine) reset(i int) {
	m.state = Wave0
	m.legs = [legCount + 1]leg{}
	m.origin = -1
	m.cycleStart = i + 1
}

// shallow returns whether the counter leg retraced less than the configured fraction of the
// impulse leg running from origin to impulse.
func (m *machine) shallow(origin int, impulse int, counter int) bool {
	c := m.closes
	size := c[impulse] - c[origin]
	if size <= 0 {
		return false
	}

	return (c[impulse]-c[counter])/size < m.cfg.ShallowRetracement
}

// shiftRight returns whether the impulse leg should be reopened at the provided bar: the
// counter leg was shallow and price made a new extreme in the impulse direction.
func (m *machine) shiftRight(origin int, impulse int, counter int, i int) bool {
	if !m.cfg.ShiftRight {
		return false
	}

	return m.closes[i] > m.closes[impulse] && m.shallow(origin, impulse, counter)
}

// reopen extends the provided impulse leg to the provided bar, dropping its counter leg.
func (m *machine) reopen(w WaveState, i int) {
	label := w.Label()
	m.clearLegs(label + 1)
	m.legs[label].ext = i
	m.state = w

	m.logger.Debug().Msgf("wave %d shifted right to %d", label, i)
}

// step advances the machine by the provided bar. It returns true when the bar rolled the
// machine back to an earlier wave and must be evaluated again.
func (m *machine) step(i int) bool {
	c := m.closes
	legs := &m.legs

	switch m.state {
	case Wave0:
		if m.newLow(Wave1C1, i) {
			legs[1] = leg{start: i, ext: i}
			m.origin = i
			m.state = Wave1C1
		}

	case Wave1C1:
		switch {
		case c[i] < c[legs[1].start]:
			legs[1] = leg{start: i, ext: i}
			m.origin = i
		case m.newHigh(Wave1C2, i):
			legs[1].ext = i
			m.state = Wave1C2
		}

	case Wave1C2:
		switch {
		case c[i] < c[m.origin]:
			m.erase(legs[1].start, i)
			legs[1] = leg{start: i, ext: i}
			m.origin = i
			m.state = Wave1C1
		case c[i] > c[legs[1].ext]:
			legs[1].ext = i
		case m.newLow(Wave2, i):
			m.closeLeg(1)
			m.openLeg(Wave2, i)
		}

	case Wave2:
		switch {
		case c[i] < c[m.origin]:
			from := max(legs[1].start, m.cycleStart)
			m.erase(from, i)
			m.resets = append(m.resets, span{from: from, to: i})
			m.logger.Debug().Msgf("wave 2 at %d closed beyond the wave 1 origin %d, "+
				"erased [%d, %d]", i, m.origin, from, i)
			m.reset(i)
		case c[i] < c[legs[2].ext]:
			legs[2].ext = i
		case m.shiftRight(m.origin, legs[1].ext, legs[2].ext, i):
			m.reopen(Wave1C2, i)
		case m.newHigh(Wave3, i):
			m.closeLeg(2)
			m.openLeg(Wave3, i)
		}

	case Wave3:
		switch {
		case c[i] > c[legs[3].ext]:
			legs[3].ext = i
		case m.newLow(Wave4, i):
			m.closeLeg(3)
			m.openLeg(Wave4, i)
		}

	case Wave4:
		switch {
		case c[i] < c[legs[2].ext]:
			m.erase(legs[3].start, i)
			m.clearLegs(3, 4)
			legs[2].ext = i
			m.state = Wave2
			return true
		case c[i] < c[legs[4].ext]:
			legs[4].ext = i
		case m.shiftRight(legs[2].ext, legs[3].ext, legs[4].ext, i):
			m.reopen(Wave3, i)
		case m.newHigh(Wave5, i):
			m.closeLeg(4)
			m.openLeg(Wave5, i)
		}

	case Wave5:
		switch {
		case c[i] > c[legs[5].ext]:
			legs[5].ext = i
		case m.newLow(WaveA, i):
			m.closeLeg(5)
			m.openLeg(WaveA, i)
		}

	case WaveA:
		switch {
		case c[i] < c[legs[6].ext]:
			legs[6].ext = i
		case m.shiftRight(legs[4].ext, legs[5].ext, legs[6].ext, i):
			m.reopen(Wave5, i)
		case m.newHigh(WaveB, i):
			m.closeLeg(6)
			m.openLeg(WaveB, i)
		}

	case WaveB:
		switch {
		case c[i] > c[legs[5].ext]:
			m.erase(legs[6].start, i)
			m.clearLegs(6, 7)
			legs[5].ext = i
			m.state = Wave5
		case c[i] > c[legs[7].ext]:
			legs[7].ext = i
		case m.newLow(WaveC, i):
			m.closeLeg(7)
			m.openLeg(WaveC, i)
		}

	case WaveC:
		switch {
		case c[i] > c[legs[5].ext]:
			// C overran wave 5: keep A, B and C and start a new wave 1 after C's low.
			m.closeLeg(8)
			low := legs[8].ext
			m.legs = [legCount + 1]leg{}
			m.legs[1] = leg{start: low + 1, ext: i}
			m.origin = low
			m.cycleStart = low + 1
			m.state = Wave1C2
			m.logger.Debug().Msgf("wave c at %d overran wave 5, relabelled as a new wave 1", i)
		case c[i] < c[legs[8].ext]:
			legs[8].ext = i
		case m.newHigh(WaveC, i):
			m.closeLeg(8)
			m.reset(i)
		}
	}

	return false
}

// run labels every bar and returns the labels. The open leg is written through the last bar.
func (m *machine) run() []float64 {
	n := len(m.closes)
	if n < minBars {
		return m.labels
	}

	for i := minBars; i < n; i++ {
		for m.step(i) {
		}
	}

	if m.state != Wave0 && m.state != Wave1C1 {
		label := m.state.Label()
		m.write(label, m.legs[label].start, n-1)
	}

	return m.labels
}
