package indicator

import (
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

// Spec configures one indicator instance. Name is the signal key written to
// each bar; multi-output indicators use it as a prefix.
type Spec struct {
	Type   types.IndicatorType `yaml:"type" json:"type" mapstructure:"type" validate:"required" jsonschema:"title=Type,description=Indicator type,enum=sma,enum=ema,enum=stddev,enum=zscore,enum=rsi,enum=macd,enum=atr,enum=bbands,enum=volume_ratio,enum=vol_ratio"`
	Name   string              `yaml:"name" json:"name" mapstructure:"name" validate:"required" jsonschema:"title=Name,description=Signal key the values are stored under"`
	Period int                 `yaml:"period" json:"period,omitempty" mapstructure:"period" validate:"gte=0" jsonschema:"title=Period,description=Lookback period in bars"`
	Fast   int                 `yaml:"fast" json:"fast,omitempty" mapstructure:"fast" validate:"gte=0" jsonschema:"title=Fast,description=MACD fast period"`
	Slow   int                 `yaml:"slow" json:"slow,omitempty" mapstructure:"slow" validate:"gte=0" jsonschema:"title=Slow,description=MACD slow period"`
	Signal int                 `yaml:"signal" json:"signal,omitempty" mapstructure:"signal" validate:"gte=0" jsonschema:"title=Signal,description=MACD signal period"`
	// StdDev is the band width in standard deviations for bbands.
	StdDev float64 `yaml:"stddev" json:"stddev,omitempty" mapstructure:"stddev" validate:"gte=0" jsonschema:"title=Standard deviations,description=Bollinger band width"`
}

// Indicator computes one or more per-bar series from a bar history.
// Implementations are stateless and safe for concurrent use.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Validate checks the spec for this indicator type and fills defaults.
	Validate(spec Spec) (Spec, error)
	// Warmup returns the number of leading bars without a value.
	Warmup(spec Spec) int
	// Compute returns the series keyed by signal name, each aligned with bars.
	// Positions inside the warm-up hold NaN.
	Compute(spec Spec, bars []types.Bar) map[string][]float64
}
