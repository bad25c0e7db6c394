// Package entry decides whether a flat run opens a position on the current bar
// and on which side.
package entry

import (
	"math/rand"
	"slices"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// Trigger names the condition that proposes an entry.
type Trigger string

const (
	// TriggerOnce enters at the first opportunity and never again.
	TriggerOnce Trigger = "once"
	// TriggerPeriodic enters when at least entry_period bars passed since the last entry.
	TriggerPeriodic Trigger = "periodic"
	// TriggerZScore enters against a stretched z-score.
	TriggerZScore Trigger = "zscore"
	// TriggerMACross enters when the fast average crosses the slow one.
	TriggerMACross Trigger = "ma_cross"
	// TriggerBreakout enters when the close leaves the bands.
	TriggerBreakout Trigger = "breakout"
)

var AllTriggers = []any{TriggerOnce, TriggerPeriodic, TriggerZScore, TriggerMACross, TriggerBreakout}

// Filter names an extra condition every proposed entry must pass.
type Filter string

const (
	FilterVolume     Filter = "volume"
	FilterVolatility Filter = "volatility"
	FilterTrend      Filter = "trend"
	FilterRSI        Filter = "rsi"
	FilterMACD       Filter = "macd"
)

var AllFilters = []any{FilterVolume, FilterVolatility, FilterTrend, FilterRSI, FilterMACD}

// SignalNames maps entry roles to bar signal keys.
type SignalNames struct {
	ZScore      string `yaml:"zscore" json:"zscore"`
	FastMA      string `yaml:"fast_ma" json:"fast_ma"`
	SlowMA      string `yaml:"slow_ma" json:"slow_ma"`
	Trend       string `yaml:"trend" json:"trend"`
	RSI         string `yaml:"rsi" json:"rsi"`
	MACD        string `yaml:"macd" json:"macd"`
	MACDSignal  string `yaml:"macd_signal" json:"macd_signal"`
	VolumeRatio string `yaml:"volume_ratio" json:"volume_ratio"`
	VolRatio    string `yaml:"vol_ratio" json:"vol_ratio"`
	UpperBand   string `yaml:"upper_band" json:"upper_band"`
	LowerBand   string `yaml:"lower_band" json:"lower_band"`
}

// Params are the sweepable entry parameters.
type Params struct {
	EntryPeriod      int
	EntryProbability float64
	ZEntry           float64
	VolumeRatioMin   float64
	VolThreshold     float64
	RSIThreshold     float64
	TradeType        types.TradeType
}

// RuleSet is the per-run entry state. It is not safe for concurrent use.
type RuleSet struct {
	trigger Trigger
	filters []Filter
	params  Params
	names   SignalNames

	fired      bool
	lastEntry  int
	prevSpread optional.Option[float64]
}

// NewRuleSet validates the configuration and returns a fresh rule set.
func NewRuleSet(trigger Trigger, filters []Filter, params Params, names SignalNames) (*RuleSet, error) {
	if err := validate(trigger, filters, params, names); err != nil {
		return nil, err
	}

	return &RuleSet{
		trigger:    trigger,
		filters:    slices.Clone(filters),
		params:     params,
		names:      names,
		lastEntry:  -params.EntryPeriod,
		prevSpread: optional.None[float64](),
	}, nil
}

func validate(trigger Trigger, filters []Filter, params Params, names SignalNames) error {
	if !params.TradeType.Valid() {
		return errors.Newf(errors.ErrCodeInvalidTradeType, "trade_type must be LONG, SHORT or BOTH, got %q", params.TradeType)
	}

	switch trigger {
	case TriggerOnce:
	case TriggerPeriodic:
		if params.EntryPeriod <= 0 {
			return errors.Newf(errors.ErrCodeInvalidEntryRule, "entry_period must be positive, got %d", params.EntryPeriod)
		}

		if !(params.EntryProbability > 0 && params.EntryProbability <= 1) {
			return errors.Newf(errors.ErrCodeInvalidEntryRule, "entry_probability must be in (0, 1], got %v", params.EntryProbability)
		}
	case TriggerZScore:
		if names.ZScore == "" || !(params.ZEntry > 0) {
			return errors.Newf(errors.ErrCodeInvalidEntryRule, "zscore trigger needs a zscore signal and zentry > 0, got %q %v", names.ZScore, params.ZEntry)
		}
	case TriggerMACross:
		if names.FastMA == "" || names.SlowMA == "" {
			return errors.New(errors.ErrCodeInvalidEntryRule, "ma_cross trigger needs fast_ma and slow_ma signals")
		}
	case TriggerBreakout:
		if names.UpperBand == "" || names.LowerBand == "" {
			return errors.New(errors.ErrCodeInvalidEntryRule, "breakout trigger needs upper_band and lower_band signals")
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidEntryRule, "unknown entry trigger %q", trigger)
	}

	for _, filter := range filters {
		var missing bool

		switch filter {
		case FilterVolume:
			missing = names.VolumeRatio == ""
		case FilterVolatility:
			missing = names.VolRatio == "" || !(params.VolThreshold > 0)
		case FilterTrend:
			missing = names.Trend == ""
		case FilterRSI:
			missing = names.RSI == "" || !(params.RSIThreshold > 0 && params.RSIThreshold < 100)
		case FilterMACD:
			missing = names.MACD == "" || names.MACDSignal == ""
		default:
			return errors.Newf(errors.ErrCodeInvalidEntryRule, "unknown entry filter %q", filter)
		}

		if missing {
			return errors.Newf(errors.ErrCodeInvalidEntryRule, "entry filter %q is missing its signal or threshold", filter)
		}
	}

	return nil
}

// Decide proposes a side to open on bar, or None. rng drives the BOTH
// direction coin flip and entry_probability.
func (s *RuleSet) Decide(bar types.Bar, rng *rand.Rand) optional.Option[types.Side] {
	side, ok := s.propose(bar, rng)
	if !ok || !s.params.TradeType.Allows(side) {
		return optional.None[types.Side]()
	}

	for _, filter := range s.filters {
		if !s.pass(filter, side, bar) {
			return optional.None[types.Side]()
		}
	}

	return optional.Some(side)
}

// Commit records that a position was actually opened on bar.
func (s *RuleSet) Commit(bar types.Bar) {
	s.fired = true
	s.lastEntry = bar.Index
}

// Observe feeds every processed bar to stateful triggers, open or flat.
func (s *RuleSet) Observe(bar types.Bar) {
	if s.trigger != TriggerMACross {
		return
	}

	fast, okFast := bar.Signals.Get(s.names.FastMA)
	slow, okSlow := bar.Signals.Get(s.names.SlowMA)

	if okFast && okSlow {
		s.prevSpread = optional.Some(fast - slow)
	} else {
		s.prevSpread = optional.None[float64]()
	}
}

func (s *RuleSet) propose(bar types.Bar, rng *rand.Rand) (types.Side, bool) {
	switch s.trigger {
	case TriggerOnce:
		if s.fired {
			return types.SideFlat, false
		}

		return s.direction(rng), true
	case TriggerPeriodic:
		if bar.Index-s.lastEntry < s.params.EntryPeriod {
			return types.SideFlat, false
		}

		if s.params.EntryProbability < 1 && rng.Float64() >= s.params.EntryProbability {
			return types.SideFlat, false
		}

		return s.direction(rng), true
	case TriggerZScore:
		z, ok := bar.Signals.Get(s.names.ZScore)

		switch {
		case !ok:
			return types.SideFlat, false
		case z < -s.params.ZEntry:
			return types.SideLong, true
		case z > s.params.ZEntry:
			return types.SideShort, true
		default:
			return types.SideFlat, false
		}
	case TriggerMACross:
		fast, okFast := bar.Signals.Get(s.names.FastMA)
		slow, okSlow := bar.Signals.Get(s.names.SlowMA)

		if !okFast || !okSlow || s.prevSpread.IsNone() {
			return types.SideFlat, false
		}

		prev, spread := s.prevSpread.Unwrap(), fast-slow

		switch {
		case prev <= 0 && spread > 0:
			return types.SideLong, true
		case prev >= 0 && spread < 0:
			return types.SideShort, true
		default:
			return types.SideFlat, false
		}
	case TriggerBreakout:
		upper, okUpper := bar.Signals.Get(s.names.UpperBand)
		lower, okLower := bar.Signals.Get(s.names.LowerBand)

		switch {
		case !okUpper || !okLower:
			return types.SideFlat, false
		case bar.Close > upper:
			return types.SideLong, true
		case bar.Close < lower:
			return types.SideShort, true
		default:
			return types.SideFlat, false
		}
	default:
		return types.SideFlat, false
	}
}

// direction picks the side for triggers that carry no direction of their own.
func (s *RuleSet) direction(rng *rand.Rand) types.Side {
	switch s.params.TradeType {
	case types.TradeTypeShort:
		return types.SideShort
	case types.TradeTypeBoth:
		if rng.Intn(2) == 0 {
			return types.SideLong
		}

		return types.SideShort
	default:
		return types.SideLong
	}
}

func (s *RuleSet) pass(filter Filter, side types.Side, bar types.Bar) bool {
	switch filter {
	case FilterVolume:
		ratio, ok := bar.Signals.Get(s.names.VolumeRatio)

		return ok && ratio >= s.params.VolumeRatioMin
	case FilterVolatility:
		ratio, ok := bar.Signals.Get(s.names.VolRatio)

		return ok && ratio < s.params.VolThreshold
	case FilterTrend:
		trend, ok := bar.Signals.Get(s.names.Trend)
		if !ok {
			return false
		}

		if side == types.SideLong {
			return bar.Close > trend
		}

		return bar.Close < trend
	case FilterRSI:
		rsi, ok := bar.Signals.Get(s.names.RSI)
		if !ok {
			return false
		}

		if side == types.SideLong {
			return rsi < s.params.RSIThreshold
		}

		return rsi > 100-s.params.RSIThreshold
	case FilterMACD:
		line, okLine := bar.Signals.Get(s.names.MACD)
		signal, okSignal := bar.Signals.Get(s.names.MACDSignal)

		if !okLine || !okSignal {
			return false
		}

		if side == types.SideLong {
			return line > signal
		}

		return line < signal
	default:
		return false
	}
}
