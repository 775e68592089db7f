package shared

// Side represents the side of a pattern.
type Side int

const (
	Buy Side = iota
	Sell
)

// String stringifies the provided side.
func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the opposing side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}

	return Buy
}
