package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/entry"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/exit"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/risk"
	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

const sampleConfig = `
version: "1.0.0"
initial_capital: 50000
broker: zero_commission
start_time: 2024-01-01T00:00:00Z
end_time: "2024-06-30"
indicators:
  - {type: ema, period: 50, name: ma}
  - {type: atr, period: 14, name: atr}
strategy:
  name: random_entry
  entry: {trigger: once, filters: []}
  exits: [take_profit, stop_loss]
  sizer: risk_normalized
  price_source: intrabar
  signals: {volatility: atr}
  params: {tp: 0.02, sl: 0.01, trade_type: SHORT}
sweep:
  workers: 3
  seed: 11
  metric: sharpe
  grid:
    - {name: tp, values: [0.01, 0.02]}
    - {name: sl, min: 0.01, max: 0.03, step: 0.01}
`

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestParse() {
	cfg, err := Parse(sampleConfig)
	suite.Require().NoError(err)

	suite.Equal("1.0.0", cfg.Version)
	suite.Equal(50000.0, cfg.InitialCapital)
	suite.Equal(commission_fee.BrokerZero, cfg.Broker)
	suite.Equal(0.0005, cfg.Commission)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime.Unwrap())
	suite.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), cfg.EndTime.Unwrap())

	suite.Require().Len(cfg.Indicators, 2)
	suite.Equal("atr", cfg.Indicators[1].Name)
	suite.Equal(14, cfg.Indicators[1].Period)

	suite.Equal(entry.TriggerOnce, cfg.Strategy.Entry.Trigger)
	suite.Equal([]exit.RuleName{exit.RuleTakeProfit, exit.RuleStopLoss}, cfg.Strategy.Exits)
	suite.Equal(risk.MethodRiskNormalized, cfg.Strategy.Sizer)
	suite.Equal(exit.PriceSourceIntrabar, cfg.Strategy.PriceSource)
	suite.Equal("atr", cfg.Strategy.Signals.Volatility)
	suite.Equal("SHORT", cfg.Strategy.Params["trade_type"])

	suite.Equal(3, cfg.Sweep.Workers)
	suite.Equal(int64(11), cfg.Sweep.Seed)
	suite.Equal(metrics.SharpeRatio, cfg.Sweep.Metric)

	cells, err := cfg.Sweep.Cells()
	suite.Require().NoError(err)
	suite.Len(cells, 6)
	suite.Equal("sl=0.01,tp=0.01", cells[0].Key())
}

func (suite *ConfigTestSuite) TestDefaults() {
	cfg, err := Parse(`
strategy:
  entry: {trigger: periodic}
  exits: [time_expiry]
`)
	suite.Require().NoError(err)

	suite.Equal(100000.0, cfg.InitialCapital)
	suite.Equal(commission_fee.BrokerPercentage, cfg.Broker)
	suite.True(cfg.StartTime.IsNone())
	suite.Equal(metrics.FinalEquity, cfg.Sweep.Metric)
	// the file's exits replace the default list
	suite.Equal([]exit.RuleName{exit.RuleTimeExpiry}, cfg.Strategy.Exits)

	cells, err := cfg.Sweep.Cells()
	suite.Require().NoError(err)
	suite.Len(cells, 1)
}

func (suite *ConfigTestSuite) TestEnvironmentOverrides() {
	suite.T().Setenv("ARGO_SWEEP_INITIAL_CAPITAL", "2500")
	suite.T().Setenv("ARGO_SWEEP_SWEEP_WORKERS", "7")

	cfg, err := Parse(sampleConfig)
	suite.Require().NoError(err)

	suite.Equal(2500.0, cfg.InitialCapital)
	suite.Equal(7, cfg.Sweep.Workers)
}

func (suite *ConfigTestSuite) TestLoadFile() {
	path := filepath.Join(suite.T().TempDir(), "sweep.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(sampleConfig), 0644))

	cfg, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal(50000.0, cfg.InitialCapital)
}

func (suite *ConfigTestSuite) TestErrors() {
	tests := []struct {
		name string
		yaml string
		code errors.ErrorCode
	}{
		{"version mismatch", `version: "9.0.0"`, errors.ErrCodeInvalidVersion},
		{"negative capital", "initial_capital: -1", errors.ErrCodeInvalidConfiguration},
		{"bad time", "start_time: yesterday", errors.ErrCodeInvalidConfiguration},
		{"unknown exit", "strategy: {entry: {trigger: once}, exits: [moon]}", errors.ErrCodeInvalidConfiguration},
		{"unknown metric", "sweep: {metric: alpha}", errors.ErrCodeInvalidMetric},
		{"not yaml", "initial_capital: [", errors.ErrCodeInvalidConfiguration},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := Parse(tc.yaml)
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *ConfigTestSuite) TestLoadMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "missing.yaml"))
	suite.True(errors.IsConfigError(err))

	_, err = Load("")
	suite.True(errors.IsConfigError(err))
}

func (suite *ConfigTestSuite) TestSchema() {
	schema, err := GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schema, `"initial_capital"`)
	suite.Contains(schema, `"sweep"`)
	suite.Contains(schema, `"date-time"`)
	suite.Contains(schema, `"take_profit"`)
}
