package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// ExitReason tags why a position was closed.
type ExitReason string

const (
	ExitReasonTakeProfit   ExitReason = "take_profit"
	ExitReasonStopLoss     ExitReason = "stop_loss"
	ExitReasonTrailingStop ExitReason = "trailing_stop"
	ExitReasonTimeExpiry   ExitReason = "time_expiry"
	ExitReasonSignalExit   ExitReason = "signal_exit"
)

// ExitReasons lists every reason in evaluation priority order.
var ExitReasons = []ExitReason{
	ExitReasonTakeProfit,
	ExitReasonStopLoss,
	ExitReasonTrailingStop,
	ExitReasonTimeExpiry,
	ExitReasonSignalExit,
}

// Priority returns the evaluation rank of the reason. Lower wins.
func (r ExitReason) Priority() int {
	for i, reason := range ExitReasons {
		if reason == r {
			return i
		}
	}

	return len(ExitReasons)
}

// TradeRecord is one position from open to close. A trade still open when the
// bar stream ends has no close bar, exit price or exit reason.
type TradeRecord struct {
	RunID      string                      `yaml:"run_id" json:"run_id" csv:"run_id"`
	OpenBar    int                         `yaml:"open_bar" json:"open_bar" csv:"open_bar"`
	CloseBar   optional.Option[int]        `yaml:"close_bar" json:"close_bar" csv:"close_bar"`
	OpenTime   time.Time                   `yaml:"open_time" json:"open_time" csv:"open_time"`
	CloseTime  optional.Option[time.Time]  `yaml:"close_time" json:"close_time" csv:"close_time"`
	Side       Side                        `yaml:"side" json:"side" csv:"side"`
	EntryPrice float64                     `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice  optional.Option[float64]    `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	Size       float64                     `yaml:"size" json:"size" csv:"size"`
	ExitReason optional.Option[ExitReason] `yaml:"exit_reason" json:"exit_reason" csv:"exit_reason"`
	// PnL is realized profit net of fees. Zero while the trade is open.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
	// Fees is the commission paid on entry plus exit.
	Fees float64 `yaml:"fees" json:"fees" csv:"fees"`
}

// IsOpen reports whether the trade was still open at the end of the stream.
func (t TradeRecord) IsOpen() bool {
	return t.CloseBar.IsNone()
}

// BarsHeld returns the number of bars between open and close, or -1 if open.
func (t TradeRecord) BarsHeld() int {
	if t.IsOpen() {
		return -1
	}

	return t.CloseBar.Unwrap() - t.OpenBar
}

// EquitySample is the account equity after a bar was processed.
type EquitySample struct {
	Index  int       `yaml:"index" json:"index" csv:"index"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Equity float64   `yaml:"equity" json:"equity" csv:"equity"`
}
