package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/entry"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/exit"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/risk"
	"github.com/rxtech-lab/argo-sweep/internal/indicator"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

const (
	DefaultInitialCapital = 100000.0
	DefaultCommission     = 0.0005
)

type BacktestEngineV1Config struct {
	Version        string                     `yaml:"version" json:"version,omitempty" mapstructure:"version" validate:"omitempty,semver" jsonschema:"title=Version,description=Config version; must match the engine major.minor"`
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" mapstructure:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital of every run,minimum=0"`
	Broker         commission_fee.Broker      `yaml:"broker" json:"broker" mapstructure:"broker" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	Commission     float64                    `yaml:"commission" json:"commission" mapstructure:"commission" validate:"gte=0" jsonschema:"title=Commission,description=Commission rate of notional for the percentage broker,minimum=0"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" mapstructure:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" mapstructure:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
	Indicators     []indicator.Spec           `yaml:"indicators" json:"indicators" mapstructure:"indicators" validate:"dive" jsonschema:"title=Indicators,description=Signals computed over the bar series before any run"`
	Strategy       StrategyConfig             `yaml:"strategy" json:"strategy" mapstructure:"strategy" jsonschema:"title=Strategy,description=Entry exit and sizing rules"`
}

// StrategyConfig selects the rules every run uses. Params are the base values
// each sweep cell overrides.
type StrategyConfig struct {
	Name        string           `yaml:"name" json:"name" mapstructure:"name" jsonschema:"title=Name"`
	Entry       EntryConfig      `yaml:"entry" json:"entry" mapstructure:"entry" jsonschema:"title=Entry"`
	Exits       []exit.RuleName  `yaml:"exits" json:"exits" mapstructure:"exits" validate:"min=1,dive,oneof=take_profit stop_loss trailing_stop time_expiry zscore_band ma_cross macd_flip" jsonschema:"title=Exits,description=Enabled exit rules; evaluation order is fixed by priority"`
	Sizer       risk.Method      `yaml:"sizer" json:"sizer" mapstructure:"sizer" validate:"omitempty,oneof=fixed_fraction risk_normalized" jsonschema:"title=Sizer"`
	PriceSource exit.PriceSource `yaml:"price_source" json:"price_source" mapstructure:"price_source" validate:"omitempty,oneof=close intrabar" jsonschema:"title=Price Source,enum=close,enum=intrabar"`
	Signals     SignalConfig     `yaml:"signals" json:"signals" mapstructure:"signals" jsonschema:"title=Signals,description=Signal keys each rule role reads"`
	Params      map[string]any   `yaml:"params" json:"params" mapstructure:"params" jsonschema:"title=Params,description=Base strategy parameters"`
}

type EntryConfig struct {
	Trigger entry.Trigger  `yaml:"trigger" json:"trigger" mapstructure:"trigger" validate:"required,oneof=once periodic zscore ma_cross breakout" jsonschema:"title=Trigger"`
	Filters []entry.Filter `yaml:"filters" json:"filters" mapstructure:"filters" validate:"dive,oneof=volume volatility trend rsi macd" jsonschema:"title=Filters"`
}

// SignalConfig maps rule roles to signal keys produced by the indicators.
type SignalConfig struct {
	ZScore      string `yaml:"zscore" json:"zscore,omitempty" mapstructure:"zscore"`
	Volatility  string `yaml:"volatility" json:"volatility,omitempty" mapstructure:"volatility"`
	FastMA      string `yaml:"fast_ma" json:"fast_ma,omitempty" mapstructure:"fast_ma"`
	SlowMA      string `yaml:"slow_ma" json:"slow_ma,omitempty" mapstructure:"slow_ma"`
	Trend       string `yaml:"trend" json:"trend,omitempty" mapstructure:"trend"`
	RSI         string `yaml:"rsi" json:"rsi,omitempty" mapstructure:"rsi"`
	MACD        string `yaml:"macd" json:"macd,omitempty" mapstructure:"macd"`
	MACDSignal  string `yaml:"macd_signal" json:"macd_signal,omitempty" mapstructure:"macd_signal"`
	VolumeRatio string `yaml:"volume_ratio" json:"volume_ratio,omitempty" mapstructure:"volume_ratio"`
	VolRatio    string `yaml:"vol_ratio" json:"vol_ratio,omitempty" mapstructure:"vol_ratio"`
	UpperBand   string `yaml:"upper_band" json:"upper_band,omitempty" mapstructure:"upper_band"`
	LowerBand   string `yaml:"lower_band" json:"lower_band,omitempty" mapstructure:"lower_band"`
}

func (s SignalConfig) exitNames() exit.SignalNames {
	return exit.SignalNames{
		ZScore:     s.ZScore,
		Volatility: s.Volatility,
		FastMA:     s.FastMA,
		SlowMA:     s.SlowMA,
		MACD:       s.MACD,
		MACDSignal: s.MACDSignal,
	}
}

func (s SignalConfig) entryNames() entry.SignalNames {
	return entry.SignalNames{
		ZScore:      s.ZScore,
		FastMA:      s.FastMA,
		SlowMA:      s.SlowMA,
		Trend:       s.Trend,
		RSI:         s.RSI,
		MACD:        s.MACD,
		MACDSignal:  s.MACDSignal,
		VolumeRatio: s.VolumeRatio,
		VolRatio:    s.VolRatio,
		UpperBand:   s.UpperBand,
		LowerBand:   s.LowerBand,
	}
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config
func (c *BacktestEngineV1Config) UnmarshalYAML(unmarshal func(any) error) error {
	type Config struct {
		Version        string                `yaml:"version"`
		InitialCapital float64               `yaml:"initial_capital"`
		Broker         commission_fee.Broker `yaml:"broker"`
		Commission     *float64              `yaml:"commission"`
		StartTime      *time.Time            `yaml:"start_time"`
		EndTime        *time.Time            `yaml:"end_time"`
		Indicators     []indicator.Spec      `yaml:"indicators"`
		Strategy       StrategyConfig        `yaml:"strategy"`
	}

	var config Config
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Version = config.Version
	c.InitialCapital = config.InitialCapital
	c.Broker = config.Broker
	c.Commission = DefaultCommission
	if config.Commission != nil {
		c.Commission = *config.Commission
	}
	c.StartTime = optional.None[time.Time]()
	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}
	c.EndTime = optional.None[time.Time]()
	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}
	c.Indicators = config.Indicators
	c.Strategy = config.Strategy

	return nil
}

// Validate checks the struct tags and the time window. Parameter values are
// checked per run since every sweep cell may override them.
func (c *BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && !c.StartTime.Unwrap().Before(c.EndTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "start_time %s must be before end_time %s",
			c.StartTime.Unwrap().Format(time.RFC3339), c.EndTime.Unwrap().Format(time.RFC3339))
	}

	if _, err := commission_fee.GetCommissionFeeHandler(c.Broker, c.Commission); err != nil {
		return err
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper:                     SchemaMapper,
	}

	// Generate schema from BacktestEngineV1Config struct
	schema := reflector.Reflect(c)

	// Set schema metadata
	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// SchemaMapper maps the config enum and optional types to their JSON schema.
func SchemaMapper(t reflect.Type) *jsonschema.Schema {
	name := t.String()

	switch {
	case name == "optional.Option[time.Time]":
		return &jsonschema.Schema{
			Type:   "string",
			Format: "date-time",
		}
	case strings.Contains(name, "commission_fee.Broker"):
		return &jsonschema.Schema{
			Type: "string",
			Enum: commission_fee.AllBrokers,
		}
	case strings.Contains(name, "exit.RuleName"):
		return &jsonschema.Schema{
			Type: "string",
			Enum: exit.AllRules,
		}
	case strings.Contains(name, "entry.Trigger"):
		return &jsonschema.Schema{
			Type: "string",
			Enum: entry.AllTriggers,
		}
	case strings.Contains(name, "entry.Filter"):
		return &jsonschema.Schema{
			Type: "string",
			Enum: entry.AllFilters,
		}
	case strings.Contains(name, "risk.Method"):
		return &jsonschema.Schema{
			Type: "string",
			Enum: []any{risk.MethodFixedFraction, risk.MethodRiskNormalized},
		}
	}

	return nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Version:        "",
		InitialCapital: DefaultInitialCapital,
		Broker:         commission_fee.BrokerPercentage,
		Commission:     DefaultCommission,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
		Indicators:     nil,
		Strategy: StrategyConfig{
			Name:        "",
			Entry:       EntryConfig{Trigger: entry.TriggerPeriodic, Filters: nil},
			Exits:       []exit.RuleName{exit.RuleTakeProfit, exit.RuleStopLoss, exit.RuleTimeExpiry},
			Sizer:       risk.MethodFixedFraction,
			PriceSource: exit.PriceSourceClose,
			Signals:     SignalConfig{},
			Params:      nil,
		},
	}
}
