// Package metrics turns a run's trade log and equity curve into scalar
// performance figures used for ranking.
package metrics

import (
	"math"
	"slices"

	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// Metric names exposed by Map.
const (
	FinalEquity        = "final_equity"
	PnL                = "pnl"
	PnLPercent         = "pnl_pct"
	TotalTrades        = "total_trades"
	OpenTrades         = "open_trades"
	WinningTrades      = "winning_trades"
	LosingTrades       = "losing_trades"
	WinRate            = "win_rate"
	ProfitFactor       = "profit_factor"
	AverageWin         = "avg_win"
	AverageLoss        = "avg_loss"
	LargestWin         = "largest_win"
	LargestLoss        = "largest_loss"
	AverageBarsHeld    = "avg_bars_held"
	MaxDrawdown        = "max_drawdown"
	MaxDrawdownPercent = "max_drawdown_pct"
	SharpeRatio        = "sharpe"
	SortinoRatio       = "sortino"
	CalmarRatio        = "calmar"
	TotalFees          = "total_fees"
)

// Names lists every rankable metric in a fixed order.
var Names = []string{
	FinalEquity, PnL, PnLPercent,
	TotalTrades, OpenTrades, WinningTrades, LosingTrades, WinRate,
	ProfitFactor, AverageWin, AverageLoss, LargestWin, LargestLoss, AverageBarsHeld,
	MaxDrawdown, MaxDrawdownPercent, SharpeRatio, SortinoRatio, CalmarRatio, TotalFees,
}

// lowerIsBetter holds the metrics where a smaller value ranks higher.
var lowerIsBetter = map[string]bool{
	MaxDrawdown:        true,
	MaxDrawdownPercent: true,
	TotalFees:          true,
}

// Metrics summarises one run. Open trades are counted but excluded from the
// realized statistics.
type Metrics struct {
	InitialCapital     float64                  `yaml:"initial_capital" json:"initial_capital"`
	FinalEquity        float64                  `yaml:"final_equity" json:"final_equity"`
	PnL                float64                  `yaml:"pnl" json:"pnl"`
	PnLPercent         float64                  `yaml:"pnl_pct" json:"pnl_pct"`
	TotalTrades        int                      `yaml:"total_trades" json:"total_trades"`
	OpenTrades         int                      `yaml:"open_trades" json:"open_trades"`
	WinningTrades      int                      `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades       int                      `yaml:"losing_trades" json:"losing_trades"`
	WinRate            float64                  `yaml:"win_rate" json:"win_rate"`
	ProfitFactor       float64                  `yaml:"profit_factor" json:"profit_factor"`
	AverageWin         float64                  `yaml:"avg_win" json:"avg_win"`
	AverageLoss        float64                  `yaml:"avg_loss" json:"avg_loss"`
	LargestWin         float64                  `yaml:"largest_win" json:"largest_win"`
	LargestLoss        float64                  `yaml:"largest_loss" json:"largest_loss"`
	AverageBarsHeld    float64                  `yaml:"avg_bars_held" json:"avg_bars_held"`
	MaxDrawdown        float64                  `yaml:"max_drawdown" json:"max_drawdown"`
	MaxDrawdownPercent float64                  `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	SharpeRatio        float64                  `yaml:"sharpe" json:"sharpe"`
	SortinoRatio       float64                  `yaml:"sortino" json:"sortino"`
	CalmarRatio        float64                  `yaml:"calmar" json:"calmar"`
	TotalFees          float64                  `yaml:"total_fees" json:"total_fees"`
	ExitCounts         map[types.ExitReason]int `yaml:"exit_counts" json:"exit_counts"`
}

// Validate returns a ConfigError if name is not a known metric.
func Validate(name string) error {
	if !slices.Contains(Names, name) {
		return errors.Newf(errors.ErrCodeInvalidMetric, "unknown metric %q", name)
	}

	return nil
}

// Better reports whether a ranks ahead of b for the named metric. NaN always
// ranks last.
func Better(name string, a float64, b float64) bool {
	switch {
	case math.IsNaN(a):
		return false
	case math.IsNaN(b):
		return true
	case lowerIsBetter[name]:
		return a < b
	default:
		return a > b
	}
}

// Compute derives the metrics of one run.
func Compute(initialCapital float64, trades []types.TradeRecord, equity []types.EquitySample) Metrics {
	m := Metrics{
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
		ExitCounts:     make(map[types.ExitReason]int),
	}

	if len(equity) > 0 {
		m.FinalEquity = equity[len(equity)-1].Equity
	}

	m.PnL = m.FinalEquity - initialCapital
	if initialCapital > 0 {
		m.PnLPercent = m.PnL / initialCapital * 100
	}

	m.tradeStats(trades)
	m.drawdown(initialCapital, equity)
	m.ratios(equity)

	return m
}

func (m *Metrics) tradeStats(trades []types.TradeRecord) {
	var (
		grossProfit float64
		grossLoss   float64
		barsHeld    int
		closed      int
	)

	for _, trade := range trades {
		m.TotalFees += trade.Fees

		if trade.IsOpen() {
			m.OpenTrades++

			continue
		}

		closed++
		barsHeld += trade.BarsHeld()
		m.ExitCounts[trade.ExitReason.Unwrap()]++

		switch {
		case trade.PnL > 0:
			m.WinningTrades++
			grossProfit += trade.PnL
			m.LargestWin = math.Max(m.LargestWin, trade.PnL)
		case trade.PnL < 0:
			m.LosingTrades++
			grossLoss += -trade.PnL
			m.LargestLoss = math.Min(m.LargestLoss, trade.PnL)
		}
	}

	m.TotalTrades = closed

	if closed > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(closed)
		m.AverageBarsHeld = float64(barsHeld) / float64(closed)
	}

	if m.WinningTrades > 0 {
		m.AverageWin = grossProfit / float64(m.WinningTrades)
	}

	if m.LosingTrades > 0 {
		m.AverageLoss = -grossLoss / float64(m.LosingTrades)
	}

	switch {
	case grossLoss > 0:
		m.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		m.ProfitFactor = math.Inf(1)
	}
}

func (m *Metrics) drawdown(initialCapital float64, equity []types.EquitySample) {
	peak := initialCapital

	for _, sample := range equity {
		peak = math.Max(peak, sample.Equity)

		dd := peak - sample.Equity
		if dd > m.MaxDrawdown {
			m.MaxDrawdown = dd
		}

		if peak > 0 {
			m.MaxDrawdownPercent = math.Max(m.MaxDrawdownPercent, dd/peak*100)
		}
	}

	if m.MaxDrawdownPercent > 0 {
		m.CalmarRatio = m.PnLPercent / m.MaxDrawdownPercent
	}
}

// ratios uses per-bar equity returns and is not annualised.
func (m *Metrics) ratios(equity []types.EquitySample) {
	if len(equity) < 3 {
		return
	}

	returns := make([]float64, 0, len(equity)-1)

	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev <= 0 {
			continue
		}

		returns = append(returns, equity[i].Equity/prev-1)
	}

	if len(returns) < 2 {
		return
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}

	mean := sum / float64(len(returns))

	var variance, downside float64

	for _, r := range returns {
		variance += (r - mean) * (r - mean)

		if r < 0 {
			downside += r * r
		}
	}

	std := math.Sqrt(variance / float64(len(returns)-1))
	if std > 0 {
		m.SharpeRatio = mean / std
	}

	downsideDev := math.Sqrt(downside / float64(len(returns)))
	if downsideDev > 0 {
		m.SortinoRatio = mean / downsideDev
	}
}

// Map exposes the scalar metrics by name. Exit counts appear as
// exits_<reason>.
func (m Metrics) Map() map[string]float64 {
	out := map[string]float64{
		FinalEquity:        m.FinalEquity,
		PnL:                m.PnL,
		PnLPercent:         m.PnLPercent,
		TotalTrades:        float64(m.TotalTrades),
		OpenTrades:         float64(m.OpenTrades),
		WinningTrades:      float64(m.WinningTrades),
		LosingTrades:       float64(m.LosingTrades),
		WinRate:            m.WinRate,
		ProfitFactor:       m.ProfitFactor,
		AverageWin:         m.AverageWin,
		AverageLoss:        m.AverageLoss,
		LargestWin:         m.LargestWin,
		LargestLoss:        m.LargestLoss,
		AverageBarsHeld:    m.AverageBarsHeld,
		MaxDrawdown:        m.MaxDrawdown,
		MaxDrawdownPercent: m.MaxDrawdownPercent,
		SharpeRatio:        m.SharpeRatio,
		SortinoRatio:       m.SortinoRatio,
		CalmarRatio:        m.CalmarRatio,
		TotalFees:          m.TotalFees,
	}

	for _, reason := range types.ExitReasons {
		out["exits_"+string(reason)] = float64(m.ExitCounts[reason])
	}

	return out
}
