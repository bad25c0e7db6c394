package types

// Account represents the simulated account state after the latest mark.
type Account struct {
	// Cash is the current cash balance (excluding unrealized P&L)
	Cash float64 `json:"cash" yaml:"cash"`
	// Equity is the total account value (cash + marked position value)
	Equity float64 `json:"equity" yaml:"equity"`
	// Quantity is the signed position quantity. Positive for long, negative for short.
	Quantity float64 `json:"quantity" yaml:"quantity"`
	// RealizedPnL is the total realized profit/loss from closed positions
	RealizedPnL float64 `json:"realized_pnl" yaml:"realized_pnl"`
	// TotalFees is the total fees paid
	TotalFees float64 `json:"total_fees" yaml:"total_fees"`
}
