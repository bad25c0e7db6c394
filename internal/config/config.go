// Package config loads a sweep file: the engine configuration plus the sweep
// section, with ARGO_SWEEP_* environment overrides.
package config

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
	"github.com/moznion/go-optional"
	engine "github.com/rxtech-lab/argo-sweep/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/sweep"
	"github.com/rxtech-lab/argo-sweep/internal/version"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. ARGO_SWEEP_INITIAL_CAPITAL
// or ARGO_SWEEP_SWEEP_WORKERS.
const EnvPrefix = "ARGO_SWEEP"

// Config is a complete sweep file.
type Config struct {
	engine.BacktestEngineV1Config `mapstructure:",squash"`
	Sweep                         sweep.Config `yaml:"sweep" json:"sweep" mapstructure:"sweep" jsonschema:"title=Sweep,description=Grid and orchestration settings"`
}

// Default returns the configuration used for keys a sweep file omits.
func Default() Config {
	return Config{
		BacktestEngineV1Config: engine.EmptyConfig(),
		Sweep: sweep.Config{
			Metric: metrics.FinalEquity,
		},
	}
}

// Load reads path, applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "config path cannot be empty")
	}

	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "reading config file failed (%s)", path)
	}

	return decode(v)
}

// Parse reads a YAML document instead of a file.
func Parse(data string) (*Config, error) {
	v := newViper()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(data)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "parsing config failed", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	defaults := Default()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// scalar keys need a default to be overridable from the environment
	v.SetDefault("version", defaults.Version)
	v.SetDefault("initial_capital", defaults.InitialCapital)
	v.SetDefault("broker", string(defaults.Broker))
	v.SetDefault("commission", defaults.Commission)
	v.SetDefault("sweep.workers", defaults.Sweep.Workers)
	v.SetDefault("sweep.seed", defaults.Sweep.Seed)
	v.SetDefault("sweep.metric", defaults.Sweep.Metric)

	return v
}

func decode(v *viper.Viper) (*Config, error) {
	cfg := Default()

	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
		dc.ZeroFields = true
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			optionalTimeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "parsing config failed", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var (
	timeType         = reflect.TypeOf(time.Time{})
	optionalTimeType = reflect.TypeOf(optional.Option[time.Time]{})
)

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// optionalTimeHook decodes strings and times into time.Time or
// optional.Option[time.Time]. An empty string is None.
func optionalTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType && to != optionalTimeType {
		return data, nil
	}

	var (
		t   time.Time
		err error
	)

	switch value := data.(type) {
	case time.Time:
		t = value
	case string:
		if value == "" && to == optionalTimeType {
			return optional.None[time.Time](), nil
		}

		t, err = parseTime(value)
		if err != nil {
			return nil, err
		}
	default:
		return data, nil
	}

	if to == optionalTimeType {
		return optional.Some(t), nil
	}

	return t, nil
}

func parseTime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid time %q", value)
}

// Validate checks the engine section, the sweep section and the version.
func (c *Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.Version, c.Version); err != nil {
		return err
	}

	if err := c.BacktestEngineV1Config.Validate(); err != nil {
		return err
	}

	return c.Sweep.Validate()
}

// GenerateSchemaJSON returns the JSON schema of a sweep file.
func GenerateSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper:                     engine.SchemaMapper,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "argo-sweep-config"
	schema.Description = "Configuration schema for a parameter sweep"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
