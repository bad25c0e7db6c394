package exit

import (
	"math"

	"github.com/rxtech-lab/argo-sweep/internal/backtest/position"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

type takeProfit struct {
	source PriceSource
}

func (r *takeProfit) Name() RuleName { return RuleTakeProfit }
func (r *takeProfit) Reason() types.ExitReason { return types.ExitReasonTakeProfit }

func (r *takeProfit) Evaluate(pos *position.Position, bar types.Bar) bool {
	level := pos.Thresholds().TakeProfitPrice
	if level.IsNone() {
		return false
	}

	switch pos.Side() {
	case types.SideLong:
		return favourable(bar, pos.Side(), r.source) >= level.Unwrap()
	case types.SideShort:
		return favourable(bar, pos.Side(), r.source) <= level.Unwrap()
	default:
		return false
	}
}

type stopLoss struct {
	source PriceSource
}

func (r *stopLoss) Name() RuleName { return RuleStopLoss }
func (r *stopLoss) Reason() types.ExitReason { return types.ExitReasonStopLoss }

func (r *stopLoss) Evaluate(pos *position.Position, bar types.Bar) bool {
	level := pos.Thresholds().StopLossPrice
	if level.IsNone() {
		return false
	}

	switch pos.Side() {
	case types.SideLong:
		return adverse(bar, pos.Side(), r.source) <= level.Unwrap()
	case types.SideShort:
		return adverse(bar, pos.Side(), r.source) >= level.Unwrap()
	default:
		return false
	}
}

// trailingStop fires when the close moves strictly beyond the trail distance
// from the reference.
type trailingStop struct{}

func (r *trailingStop) Name() RuleName { return RuleTrailingStop }
func (r *trailingStop) Reason() types.ExitReason { return types.ExitReasonTrailingStop }

func (r *trailingStop) Evaluate(pos *position.Position, bar types.Bar) bool {
	trail := pos.Thresholds().TrailPct
	ref := pos.TrailingReference()

	if trail <= 0 || ref.IsNone() {
		return false
	}

	switch pos.Side() {
	case types.SideLong:
		return bar.Close < offset(ref.Unwrap(), -trail)
	case types.SideShort:
		return bar.Close > offset(ref.Unwrap(), trail)
	default:
		return false
	}
}

type timeExpiry struct{}

func (r *timeExpiry) Name() RuleName { return RuleTimeExpiry }
func (r *timeExpiry) Reason() types.ExitReason { return types.ExitReasonTimeExpiry }

func (r *timeExpiry) Evaluate(pos *position.Position, _ types.Bar) bool {
	maxHold := pos.Thresholds().MaxHoldBars

	return maxHold > 0 && pos.BarsHeld() >= maxHold
}

// zscoreBand closes once price has reverted inside |z| < zexit.
type zscoreBand struct {
	signal string
	zexit  float64
}

func (r *zscoreBand) Name() RuleName { return RuleZScoreBand }
func (r *zscoreBand) Reason() types.ExitReason { return types.ExitReasonSignalExit }

func (r *zscoreBand) Evaluate(_ *position.Position, bar types.Bar) bool {
	z, ok := bar.Signals.Get(r.signal)

	return ok && math.Abs(z) < r.zexit
}

// maCross closes when the fast average crosses to the wrong side of the slow one.
type maCross struct {
	fast string
	slow string
}

func (r *maCross) Name() RuleName { return RuleMACross }
func (r *maCross) Reason() types.ExitReason { return types.ExitReasonSignalExit }

func (r *maCross) Evaluate(pos *position.Position, bar types.Bar) bool {
	fast, okFast := bar.Signals.Get(r.fast)
	slow, okSlow := bar.Signals.Get(r.slow)

	if !okFast || !okSlow {
		return false
	}

	return against(pos.Side(), fast-slow)
}

// macdFlip closes when the MACD line crosses its signal line against the position.
type macdFlip struct {
	macd   string
	signal string
}

func (r *macdFlip) Name() RuleName { return RuleMACDFlip }
func (r *macdFlip) Reason() types.ExitReason { return types.ExitReasonSignalExit }

func (r *macdFlip) Evaluate(pos *position.Position, bar types.Bar) bool {
	line, okLine := bar.Signals.Get(r.macd)
	signal, okSignal := bar.Signals.Get(r.signal)

	if !okLine || !okSignal {
		return false
	}

	return against(pos.Side(), line-signal)
}

func against(side types.Side, spread float64) bool {
	switch side {
	case types.SideLong:
		return spread < 0
	case types.SideShort:
		return spread > 0
	default:
		return false
	}
}

// favourable is the price checked for take profit.
func favourable(bar types.Bar, side types.Side, source PriceSource) float64 {
	if source != PriceSourceIntrabar {
		return bar.Close
	}

	if side == types.SideShort {
		return bar.Low
	}

	return bar.High
}

// adverse is the price checked for stop loss.
func adverse(bar types.Bar, side types.Side, source PriceSource) float64 {
	if source != PriceSourceIntrabar {
		return bar.Close
	}

	if side == types.SideShort {
		return bar.High
	}

	return bar.Low
}
