package engine

import (
	"math"
	"reflect"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/entry"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/exit"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/risk"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// StrategyParams are the sweepable values of one run. Names match the keys
// of a ParameterSet.
type StrategyParams struct {
	TakeProfit        float64         `mapstructure:"tp"`
	StopLoss          float64         `mapstructure:"sl"`
	ATRStopMultiplier float64         `mapstructure:"atr_stop_multiplier"`
	TrailPct          float64         `mapstructure:"trail"`
	MaxHold           int             `mapstructure:"max_hold"`
	ZEntry            float64         `mapstructure:"zentry"`
	ZExit             float64         `mapstructure:"zexit"`
	EntryPeriod       int             `mapstructure:"entry_period"`
	EntryProbability  float64         `mapstructure:"entry_probability"`
	Sizer             risk.Method     `mapstructure:"sizer"`
	SizeFraction      float64         `mapstructure:"size_fraction"`
	RiskPerTrade      float64         `mapstructure:"risk_per_trade"`
	RiskMultiplier    float64         `mapstructure:"risk_multiplier"`
	MinUnit           float64         `mapstructure:"min_unit"`
	VolumeRatioMin    float64         `mapstructure:"volume_ratio_min"`
	VolThreshold      float64         `mapstructure:"vol_threshold"`
	RSIThreshold      float64         `mapstructure:"rsi_threshold"`
	TradeType         types.TradeType `mapstructure:"trade_type"`
}

// DefaultStrategyParams returns the values used for names a run leaves unset.
func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		TakeProfit:        0.01,
		StopLoss:          0.01,
		ATRStopMultiplier: 0,
		TrailPct:          0,
		MaxHold:           3000,
		ZEntry:            2,
		ZExit:             0.5,
		EntryPeriod:       10,
		EntryProbability:  1,
		Sizer:             risk.MethodFixedFraction,
		SizeFraction:      0.1,
		RiskPerTrade:      0.01,
		RiskMultiplier:    2,
		MinUnit:           risk.DefaultMinUnit,
		VolumeRatioMin:    0.5,
		VolThreshold:      0,
		RSIThreshold:      30,
		TradeType:         types.TradeTypeLong,
	}
}

// ParameterNames lists every name a ParameterSet may carry, sorted.
func ParameterNames() []string {
	t := reflect.TypeOf(StrategyParams{})
	names := make([]string, 0, t.NumField())

	for i := range t.NumField() {
		names = append(names, t.Field(i).Tag.Get("mapstructure"))
	}

	slices.Sort(names)

	return names
}

// checkParameterNames returns a ConfigError naming the first unknown parameter.
func checkParameterNames(params types.ParameterSet) error {
	known := ParameterNames()

	for _, name := range params.Names() {
		if _, found := slices.BinarySearch(known, name); !found {
			return errors.Newf(errors.ErrCodeUnknownParameter, "unknown parameter %q", name)
		}
	}

	return nil
}

// decodeParameters overlays params on the strategy defaults.
func decodeParameters(defaults StrategyParams, params types.ParameterSet) (StrategyParams, error) {
	if err := checkParameterNames(params); err != nil {
		return StrategyParams{}, err
	}

	result := defaults

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  integralFloatHook,
		ErrorUnused: true,
		Result:      &result,
		TagName:     "mapstructure",
	})
	if err != nil {
		return StrategyParams{}, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to create parameter decoder", err)
	}

	if err := decoder.Decode(params.Map()); err != nil {
		return StrategyParams{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid parameter value", err)
	}

	return result, nil
}

// integralFloatHook rejects fractional values for integer parameters such as
// max_hold, which a plain decode would truncate.
func integralFloatHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Int || from.Kind() != reflect.Float64 {
		return data, nil
	}

	v, _ := data.(float64)
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.IsNaN(v) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "expected an integer, got %v", v)
	}

	return int(v), nil
}

// strategy is the per-run rule state built from one parameter set.
type strategy struct {
	params StrategyParams
	entry  *entry.RuleSet
	exits  *exit.RuleSet
	sizer  risk.Params
}

func (p StrategyParams) exitParams(source exit.PriceSource) exit.Params {
	return exit.Params{
		TakeProfit:        p.TakeProfit,
		StopLoss:          p.StopLoss,
		ATRStopMultiplier: p.ATRStopMultiplier,
		TrailPct:          p.TrailPct,
		MaxHold:           p.MaxHold,
		ZExit:             p.ZExit,
		PriceSource:       source,
	}
}

func (p StrategyParams) entryParams() entry.Params {
	return entry.Params{
		EntryPeriod:      p.EntryPeriod,
		EntryProbability: p.EntryProbability,
		ZEntry:           p.ZEntry,
		VolumeRatioMin:   p.VolumeRatioMin,
		VolThreshold:     p.VolThreshold,
		RSIThreshold:     p.RSIThreshold,
		TradeType:        p.TradeType,
	}
}

func (p StrategyParams) sizerParams() risk.Params {
	return risk.Params{
		Method:         p.Sizer,
		SizeFraction:   p.SizeFraction,
		RiskPerTrade:   p.RiskPerTrade,
		RiskMultiplier: p.RiskMultiplier,
		MinUnit:        p.MinUnit,
	}
}

// buildStrategy decodes params and assembles fresh rule sets. Any error is a
// ConfigError.
func buildStrategy(config StrategyConfig, defaults StrategyParams, params types.ParameterSet) (*strategy, error) {
	decoded, err := decodeParameters(defaults, params)
	if err != nil {
		return nil, err
	}

	// checked even when time_expiry is not enabled
	if decoded.MaxHold <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidMaxHold, "max_hold must be positive, got %d", decoded.MaxHold)
	}

	exits, err := exit.NewRuleSet(config.Exits, decoded.exitParams(config.PriceSource), config.Signals.exitNames())
	if err != nil {
		return nil, err
	}

	entries, err := entry.NewRuleSet(config.Entry.Trigger, config.Entry.Filters, decoded.entryParams(), config.Signals.entryNames())
	if err != nil {
		return nil, err
	}

	sizer := decoded.sizerParams()
	if err := sizer.Validate(); err != nil {
		return nil, err
	}

	if sizer.Method == risk.MethodRiskNormalized && config.Signals.Volatility == "" {
		return nil, errors.New(errors.ErrCodeInvalidSizer, "risk_normalized sizing needs a volatility signal")
	}

	return &strategy{
		params: decoded,
		entry:  entries,
		exits:  exits,
		sizer:  sizer,
	}, nil
}
