// Package risk converts equity and the current quote into an order size.
// Everything here is a pure function of its inputs.
package risk

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// Method selects how the order size is derived.
type Method string

const (
	// MethodFixedFraction spends a fixed fraction of equity at the current price.
	MethodFixedFraction Method = "fixed_fraction"
	// MethodRiskNormalized scales size inversely to a volatility signal.
	MethodRiskNormalized Method = "risk_normalized"
)

// VolatilityFloor keeps risk normalized sizing finite when volatility is zero.
const VolatilityFloor = 1e-8

// DefaultMinUnit trades in whole units.
const DefaultMinUnit = 1.0

// Params configures the sizer.
type Params struct {
	Method         Method  `yaml:"sizer" mapstructure:"sizer"`
	SizeFraction   float64 `yaml:"size_fraction" mapstructure:"size_fraction"`
	RiskPerTrade   float64 `yaml:"risk_per_trade" mapstructure:"risk_per_trade"`
	RiskMultiplier float64 `yaml:"risk_multiplier" mapstructure:"risk_multiplier"`
	// MinUnit is the smallest tradable quantity. Sizes are floored to a multiple of it.
	MinUnit float64 `yaml:"min_unit" mapstructure:"min_unit"`
}

// Quote is the market input to the sizer at the entry bar.
type Quote struct {
	Price float64
	// Volatility is required by MethodRiskNormalized, typically ATR or a rolling std.
	Volatility optional.Option[float64]
}

// Validate checks the parameters for the selected method.
func (p Params) Validate() error {
	if p.MinUnit <= 0 || math.IsNaN(p.MinUnit) {
		return errors.Newf(errors.ErrCodeInvalidSizer, "min_unit must be positive, got %v", p.MinUnit)
	}

	switch p.Method {
	case MethodFixedFraction:
		if !(p.SizeFraction > 0 && p.SizeFraction <= 1) {
			return errors.Newf(errors.ErrCodeInvalidSizer, "size_fraction must be in (0, 1], got %v", p.SizeFraction)
		}
	case MethodRiskNormalized:
		if !(p.RiskPerTrade > 0 && p.RiskPerTrade <= 1) {
			return errors.Newf(errors.ErrCodeInvalidSizer, "risk_per_trade must be in (0, 1], got %v", p.RiskPerTrade)
		}

		if !(p.RiskMultiplier > 0) {
			return errors.Newf(errors.ErrCodeInvalidSizer, "risk_multiplier must be positive, got %v", p.RiskMultiplier)
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidSizer, "unknown sizer %q", p.Method)
	}

	return nil
}

// Size returns the quantity to open. Zero means the entry must be skipped:
// invalid inputs and sizes below one MinUnit both round to zero.
func Size(equity float64, quote Quote, p Params) float64 {
	if !finitePositive(equity) || !finitePositive(quote.Price) {
		return 0
	}

	var raw float64

	switch p.Method {
	case MethodFixedFraction:
		raw = equity * p.SizeFraction / quote.Price
	case MethodRiskNormalized:
		if quote.Volatility.IsNone() {
			return 0
		}

		vol := quote.Volatility.Unwrap()
		if math.IsNaN(vol) || math.IsInf(vol, 0) {
			return 0
		}

		raw = (equity * p.RiskPerTrade) / (math.Max(vol, VolatilityFloor) * p.RiskMultiplier)
	default:
		return 0
	}

	return RoundToUnit(raw, p.MinUnit)
}

// Degenerate returns the informational error logged when Size yields zero.
func Degenerate(equity float64, price float64) error {
	return errors.Newf(errors.ErrCodeSizingDegenerate, "size rounds to zero at equity %v and price %v", equity, price)
}

// RoundToUnit floors quantity to a whole multiple of unit.
func RoundToUnit(quantity float64, unit float64) float64 {
	if !(quantity > 0) || math.IsInf(quantity, 0) || !(unit > 0) {
		return 0
	}

	units := math.Floor(quantity/unit + 1e-9)

	return units * unit
}

// CapToBalance reduces quantity until quantity*price plus its commission fits in
// balance, keeping the MinUnit granularity.
func CapToBalance(quantity float64, balance float64, price float64, fee commission_fee.CommissionFee, unit float64) float64 {
	if price <= 0 || balance <= 0 {
		return 0
	}

	maxQty := quantity
	// Usually converges quickly, limit iterations
	for range 10 {
		totalCost := maxQty*price + fee.Calculate(maxQty, price)
		if totalCost <= balance {
			break
		}

		maxQty = maxQty * balance / totalCost
	}

	capped := RoundToUnit(maxQty, unit)
	for capped > 0 && capped*price+fee.Calculate(capped, price) > balance {
		capped = RoundToUnit(capped-unit, unit)
	}

	return capped
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
