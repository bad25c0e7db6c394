package types

// Side is the direction of an open position.
type Side string

const (
	SideFlat  Side = "FLAT"
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Sign returns +1 for long, -1 for short and 0 when flat.
func (s Side) Sign() float64 {
	switch s {
	case SideLong:
		return 1
	case SideShort:
		return -1
	default:
		return 0
	}
}

// Opposite returns the other trading side. Flat stays flat.
func (s Side) Opposite() Side {
	switch s {
	case SideLong:
		return SideShort
	case SideShort:
		return SideLong
	default:
		return SideFlat
	}
}

// TradeType restricts which sides a strategy may open.
type TradeType string

const (
	TradeTypeLong  TradeType = "LONG"
	TradeTypeShort TradeType = "SHORT"
	TradeTypeBoth  TradeType = "BOTH"
)

// Allows reports whether side may be opened under this trade type.
func (t TradeType) Allows(side Side) bool {
	switch t {
	case TradeTypeLong:
		return side == SideLong
	case TradeTypeShort:
		return side == SideShort
	case TradeTypeBoth:
		return side == SideLong || side == SideShort
	default:
		return false
	}
}

// Valid reports whether t is a known trade type.
func (t TradeType) Valid() bool {
	return t == TradeTypeLong || t == TradeTypeShort || t == TradeTypeBoth
}
