// Package exit decides whether an open position closes on the current bar.
package exit

import (
	"math"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/position"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/shopspring/decimal"
)

// PriceSource selects the bar price the price based rules compare against.
type PriceSource string

const (
	// PriceSourceClose checks thresholds against the close.
	PriceSourceClose PriceSource = "close"
	// PriceSourceIntrabar checks take profit and stop loss against the bar
	// extremes (high/low for long, low/high for short).
	PriceSourceIntrabar PriceSource = "intrabar"
)

// RuleName identifies an exit rule in configuration.
type RuleName string

const (
	RuleTakeProfit   RuleName = "take_profit"
	RuleStopLoss     RuleName = "stop_loss"
	RuleTrailingStop RuleName = "trailing_stop"
	RuleTimeExpiry   RuleName = "time_expiry"
	RuleZScoreBand   RuleName = "zscore_band"
	RuleMACross      RuleName = "ma_cross"
	RuleMACDFlip     RuleName = "macd_flip"
)

// AllRules lists every known rule name.
var AllRules = []any{
	RuleTakeProfit,
	RuleStopLoss,
	RuleTrailingStop,
	RuleTimeExpiry,
	RuleZScoreBand,
	RuleMACross,
	RuleMACDFlip,
}

// SignalNames maps rule roles to the signal keys they read from a bar.
type SignalNames struct {
	ZScore     string `yaml:"zscore" json:"zscore"`
	Volatility string `yaml:"volatility" json:"volatility"`
	FastMA     string `yaml:"fast_ma" json:"fast_ma"`
	SlowMA     string `yaml:"slow_ma" json:"slow_ma"`
	MACD       string `yaml:"macd" json:"macd"`
	MACDSignal string `yaml:"macd_signal" json:"macd_signal"`
}

// Params are the sweepable exit parameters. Fractions are relative to the entry price.
type Params struct {
	TakeProfit        float64
	StopLoss          float64
	ATRStopMultiplier float64
	TrailPct          float64
	MaxHold           int
	ZExit             float64
	PriceSource       PriceSource
}

// Rule is one exit condition.
type Rule interface {
	Name() RuleName
	Reason() types.ExitReason
	// Evaluate reports whether the rule fires for pos on bar. A missing signal never fires.
	Evaluate(pos *position.Position, bar types.Bar) bool
}

// RuleSet evaluates enabled rules in fixed priority order:
// take profit, stop loss, trailing stop, time expiry, signal exit.
type RuleSet struct {
	rules  []Rule
	params Params
	names  SignalNames
}

// NewRuleSet builds and validates the rule set for the given rule names.
func NewRuleSet(enabled []RuleName, params Params, names SignalNames) (*RuleSet, error) {
	if params.PriceSource == "" {
		params.PriceSource = PriceSourceClose
	}

	if err := validate(enabled, params, names); err != nil {
		return nil, err
	}

	rules := make([]Rule, 0, len(enabled))
	seen := make(map[RuleName]bool, len(enabled))

	for _, name := range enabled {
		if seen[name] {
			continue
		}

		seen[name] = true

		rule, err := newRule(name, params, names)
		if err != nil {
			return nil, err
		}

		rules = append(rules, rule)
	}

	slices.SortStableFunc(rules, func(a, b Rule) int {
		return a.Reason().Priority() - b.Reason().Priority()
	})

	return &RuleSet{rules: rules, params: params, names: names}, nil
}

func newRule(name RuleName, params Params, names SignalNames) (Rule, error) {
	switch name {
	case RuleTakeProfit:
		return &takeProfit{source: params.PriceSource}, nil
	case RuleStopLoss:
		return &stopLoss{source: params.PriceSource}, nil
	case RuleTrailingStop:
		return &trailingStop{}, nil
	case RuleTimeExpiry:
		return &timeExpiry{}, nil
	case RuleZScoreBand:
		return &zscoreBand{signal: names.ZScore, zexit: params.ZExit}, nil
	case RuleMACross:
		return &maCross{fast: names.FastMA, slow: names.SlowMA}, nil
	case RuleMACDFlip:
		return &macdFlip{macd: names.MACD, signal: names.MACDSignal}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidExitRule, "unknown exit rule %q", name)
	}
}

func validate(enabled []RuleName, params Params, names SignalNames) error {
	if params.PriceSource != PriceSourceClose && params.PriceSource != PriceSourceIntrabar {
		return errors.Newf(errors.ErrCodeInvalidExitRule, "unknown price source %q", params.PriceSource)
	}

	for _, name := range enabled {
		switch name {
		case RuleTakeProfit:
			if !(params.TakeProfit > 0) || math.IsInf(params.TakeProfit, 0) {
				return errors.Newf(errors.ErrCodeInvalidTakeProfit, "tp must be positive, got %v", params.TakeProfit)
			}
		case RuleStopLoss:
			if params.ATRStopMultiplier > 0 {
				if names.Volatility == "" {
					return errors.New(errors.ErrCodeInvalidStopLoss, "atr stop requires a volatility signal")
				}

				continue
			}

			if !(params.StopLoss > 0 && params.StopLoss < 1) {
				return errors.Newf(errors.ErrCodeInvalidStopLoss, "sl must be in (0, 1), got %v", params.StopLoss)
			}
		case RuleTrailingStop:
			if !(params.TrailPct > 0 && params.TrailPct < 1) {
				return errors.Newf(errors.ErrCodeInvalidTrailingStop, "trail must be in (0, 1), got %v", params.TrailPct)
			}
		case RuleTimeExpiry:
			if params.MaxHold <= 0 {
				return errors.Newf(errors.ErrCodeInvalidMaxHold, "max_hold must be positive, got %d", params.MaxHold)
			}
		case RuleZScoreBand:
			if names.ZScore == "" || !(params.ZExit >= 0) {
				return errors.Newf(errors.ErrCodeInvalidExitRule, "zscore_band needs a zscore signal and zexit >= 0, got %q %v", names.ZScore, params.ZExit)
			}
		case RuleMACross:
			if names.FastMA == "" || names.SlowMA == "" {
				return errors.New(errors.ErrCodeInvalidExitRule, "ma_cross needs fast_ma and slow_ma signals")
			}
		case RuleMACDFlip:
			if names.MACD == "" || names.MACDSignal == "" {
				return errors.New(errors.ErrCodeInvalidExitRule, "macd_flip needs macd and macd_signal signals")
			}
		default:
			return errors.Newf(errors.ErrCodeInvalidExitRule, "unknown exit rule %q", name)
		}
	}

	return nil
}

// Rules returns the enabled rules in evaluation order.
func (s *RuleSet) Rules() []Rule {
	return slices.Clone(s.rules)
}

// Has reports whether the named rule is enabled.
func (s *RuleSet) Has(name RuleName) bool {
	return slices.ContainsFunc(s.rules, func(r Rule) bool { return r.Name() == name })
}

// Evaluate returns the reason of the first firing rule, or None.
func (s *RuleSet) Evaluate(pos *position.Position, bar types.Bar) optional.Option[types.ExitReason] {
	if pos.IsFlat() {
		return optional.None[types.ExitReason]()
	}

	for _, rule := range s.rules {
		if rule.Evaluate(pos, bar) {
			return optional.Some(rule.Reason())
		}
	}

	return optional.None[types.ExitReason]()
}

// Thresholds fixes the exit levels for a position opened at entryPrice on bar.
// It returns false when a level depends on a signal that is absent on bar.
func (s *RuleSet) Thresholds(side types.Side, entryPrice float64, bar types.Bar) (position.Thresholds, bool) {
	thresholds := position.Thresholds{
		TakeProfitPrice: optional.None[float64](),
		StopLossPrice:   optional.None[float64](),
	}

	if s.Has(RuleTakeProfit) {
		thresholds.TakeProfitPrice = optional.Some(offset(entryPrice, side.Sign()*s.params.TakeProfit))
	}

	if s.Has(RuleStopLoss) {
		if s.params.ATRStopMultiplier > 0 {
			atr, ok := bar.Signals.Get(s.names.Volatility)
			if !ok {
				return position.Thresholds{}, false
			}

			distance := decimal.NewFromFloat(atr).Mul(decimal.NewFromFloat(s.params.ATRStopMultiplier))
			level := decimal.NewFromFloat(entryPrice).Sub(distance.Mul(decimal.NewFromFloat(side.Sign())))
			price, _ := level.Float64()
			thresholds.StopLossPrice = optional.Some(price)
		} else {
			thresholds.StopLossPrice = optional.Some(offset(entryPrice, -side.Sign()*s.params.StopLoss))
		}
	}

	if s.Has(RuleTrailingStop) {
		thresholds.TrailPct = s.params.TrailPct
	}

	if s.Has(RuleTimeExpiry) {
		thresholds.MaxHoldBars = s.params.MaxHold
	}

	return thresholds, true
}

// offset returns price*(1+fraction) in decimal arithmetic so 100*(1+0.1) is exactly 110.
func offset(price float64, fraction float64) float64 {
	v, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(fraction))).Float64()

	return v
}
