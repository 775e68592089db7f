package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Signal represents an indicator event at a bar of a series, the hand-off unit to signal
// consumers.
type Signal struct {
	ID        string
	Market    string
	Timeframe Timeframe
	Column    Column
	Index     int
	Date      time.Time
	Value     float64
	StopLoss  float64
}

// NewSignal initializes a new signal for the provided column at the provided bar.
func NewSignal(s *Series, column Column, index int, value float64) Signal {
	return Signal{
		ID:        uuid.NewString(),
		Market:    s.Market,
		Timeframe: s.Timeframe,
		Column:    column,
		Index:     index,
		Date:      s.Date(index),
		Value:     value,
	}
}

// ExtractSignals returns a signal for every non-zero event column value at bars from the
// provided index onward. Signals are ordered by bar, then by column.
func ExtractSignals(s *Series, from int) []Signal {
	if from < 0 {
		from = 0
	}

	cols := lo.Filter(Columns(), func(c Column, _ int) bool {
		return c.IsEvent() && s.HasColumn(c)
	})

	var signals []Signal
	for idx := from; idx < s.Len(); idx++ {
		for _, c := range cols {
			values := s.columns[c]
			if values[idx] == 0 {
				continue
			}

			signals = append(signals, NewSignal(s, c, idx, values[idx]))
		}
	}

	return signals
}
