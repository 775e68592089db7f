package shared

import (
	"fmt"
)

// ColumnKind represents the kind of values an indicator column holds.
type ColumnKind int

const (
	// Flag columns hold 1 where an event occurred and 0 elsewhere.
	Flag ColumnKind = iota
	// Level columns hold a price level.
	Level
	// Index columns hold a bar index, 0 means unset.
	Index
	// Label columns hold a small signed enum code, 0 means none.
	Label
	// Value columns hold a continuous oscillator value.
	Value
)

// String stringifies the provided column kind.
func (k ColumnKind) String() string {
	switch k {
	case Flag:
		return "flag"
	case Level:
		return "level"
	case Index:
		return "index"
	case Label:
		return "label"
	case Value:
		return "value"
	default:
		return "unknown"
	}
}

// Column represents an indicator column of a price series.
type Column int

const (
	BullishPriceFlip Column = iota
	BearishPriceFlip
	BuySetup
	SellSetup
	PerfectBuySetup
	PerfectSellSetup
	TDSTResistance
	TDSTSupport
	BuySetupTrueEnd
	SellSetupTrueEnd
	BuyCountdown
	SellCountdown
	AggressiveBuyCountdown
	AggressiveSellCountdown
	BuyCombo
	SellCombo
	BuyNineThirteenNine
	SellNineThirteenNine
	PatternStartIndex
	DWaveUp
	DWaveDown
	REI
	POQ
	DemarkerI
	DemarkerII
	TDPressure
	TDDifferential
	TDReverseDifferential
	TDAntiDifferential
	TDCamouflage
	TDClop
	TDClopwin
	TDOpen
	TDTrap
	ZigZag
	HarmonicPattern

	// columnCount must remain the last entry.
	columnCount
)

// Columns lists every indicator column.
func Columns() []Column {
	cols := make([]Column, 0, columnCount)
	for c := Column(0); c < columnCount; c++ {
		cols = append(cols, c)
	}

	return cols
}

// String returns the canonical key of the column. These keys are the serialization contract
// with downstream consumers and must never change.
func (c Column) String() string {
	switch c {
	case BullishPriceFlip:
		return "bullish_price_flip"
	case BearishPriceFlip:
		return "bearish_price_flip"
	case BuySetup:
		return "buy_setup"
	case SellSetup:
		return "sell_setup"
	case PerfectBuySetup:
		return "perfect_buy_setup"
	case PerfectSellSetup:
		return "perfect_sell_setup"
	case TDSTResistance:
		return "tdst_resistance"
	case TDSTSupport:
		return "tdst_support"
	case BuySetupTrueEnd:
		return "buy_setup_true_end"
	case SellSetupTrueEnd:
		return "sell_setup_true_end"
	case BuyCountdown:
		return "buy_countdown"
	case SellCountdown:
		return "sell_countdown"
	case AggressiveBuyCountdown:
		return "aggressive_buy_countdown"
	case AggressiveSellCountdown:
		return "aggressive_sell_countdown"
	case BuyCombo:
		return "buy_combo"
	case SellCombo:
		return "sell_combo"
	case BuyNineThirteenNine:
		return "buy_9_13_9"
	case SellNineThirteenNine:
		return "sell_9_13_9"
	case PatternStartIndex:
		return "pattern_start_index"
	case DWaveUp:
		return "dwave_up"
	case DWaveDown:
		return "dwave_down"
	case REI:
		return "rei"
	case POQ:
		return "poq"
	case DemarkerI:
		return "demarker_i"
	case DemarkerII:
		return "demarker_ii"
	case TDPressure:
		return "td_pressure"
	case TDDifferential:
		return "td_differential"
	case TDReverseDifferential:
		return "td_reverse_differential"
	case TDAntiDifferential:
		return "td_anti_differential"
	case TDCamouflage:
		return "td_camouflage"
	case TDClop:
		return "td_clop"
	case TDClopwin:
		return "td_clopwin"
	case TDOpen:
		return "td_open"
	case TDTrap:
		return "td_trap"
	case ZigZag:
		return "zigzag"
	case HarmonicPattern:
		return "harmonic_pattern"
	default:
		return "unknown"
	}
}

// Kind returns the kind of values held by the column.
func (c Column) Kind() ColumnKind {
	switch c {
	case TDSTResistance, TDSTSupport:
		return Level
	case BuySetupTrueEnd, SellSetupTrueEnd, PatternStartIndex:
		return Index
	case DWaveUp, DWaveDown, POQ, TDDifferential, TDReverseDifferential, TDAntiDifferential,
		TDCamouflage, TDClop, TDClopwin, TDOpen, TDTrap, ZigZag, HarmonicPattern:
		return Label
	case REI, DemarkerI, DemarkerII, TDPressure:
		return Value
	default:
		return Flag
	}
}

// IsEvent returns whether non-zero values of the column mark discrete events.
func (c Column) IsEvent() bool {
	kind := c.Kind()
	return kind == Flag || kind == Label
}

// ParseColumn returns the column associated with the provided canonical key.
func ParseColumn(name string) (Column, error) {
	for c := Column(0); c < columnCount; c++ {
		if c.String() == name {
			return c, nil
		}
	}

	return 0, fmt.Errorf("%w: column %q", ErrUnknownIndicator, name)
}

// SetupColumn returns the setup column of the provided side.
func SetupColumn(side Side) Column {
	if side == Buy {
		return BuySetup
	}
	return SellSetup
}

// PerfectSetupColumn returns the perfect setup column of the provided side.
func PerfectSetupColumn(side Side) Column {
	if side == Buy {
		return PerfectBuySetup
	}
	return PerfectSellSetup
}

// TDSTColumn returns the TDST level column of the provided side. Buy setups define resistance,
// sell setups define support.
func TDSTColumn(side Side) Column {
	if side == Buy {
		return TDSTResistance
	}
	return TDSTSupport
}

// TrueEndColumn returns the setup true end column of the provided side.
func TrueEndColumn(side Side) Column {
	if side == Buy {
		return BuySetupTrueEnd
	}
	return SellSetupTrueEnd
}

// CountdownColumn returns the countdown column of the provided side.
func CountdownColumn(side Side) Column {
	if side == Buy {
		return BuyCountdown
	}
	return SellCountdown
}

// AggressiveCountdownColumn returns the aggressive countdown column of the provided side.
func AggressiveCountdownColumn(side Side) Column {
	if side == Buy {
		return AggressiveBuyCountdown
	}
	return AggressiveSellCountdown
}

// ComboColumn returns the combo column of the provided side.
func ComboColumn(side Side) Column {
	if side == Buy {
		return BuyCombo
	}
	return SellCombo
}

// NineThirteenNineColumn returns the 9-13-9 column of the provided side.
func NineThirteenNineColumn(side Side) Column {
	if side == Buy {
		return BuyNineThirteenNine
	}
	return SellNineThirteenNine
}

// SeedFlipColumn returns the price flip column that seeds setups of the provided side. Bearish
// flips seed buy setups and bullish flips seed sell setups.
func SeedFlipColumn(side Side) Column {
	if side == Buy {
		return BearishPriceFlip
	}
	return BullishPriceFlip
}
