package engine

import (
	"testing"

	"github.com/rxtech-lab/argo-sweep/internal/backtest/entry"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/exit"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/risk"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type StrategyTestSuite struct {
	suite.Suite
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) TestParameterNames() {
	names := ParameterNames()

	suite.Contains(names, "tp")
	suite.Contains(names, "max_hold")
	suite.Contains(names, "trade_type")
	suite.IsIncreasing(names)
}

func (suite *StrategyTestSuite) TestDecodeOverlaysDefaults() {
	params := types.MustParameterSet(map[string]any{
		"tp":         0.05,
		"max_hold":   12,
		"sizer":      "risk_normalized",
		"trade_type": "SHORT",
	})

	decoded, err := decodeParameters(DefaultStrategyParams(), params)
	suite.Require().NoError(err)
	suite.Equal(0.05, decoded.TakeProfit)
	suite.Equal(12, decoded.MaxHold)
	suite.Equal(risk.MethodRiskNormalized, decoded.Sizer)
	suite.Equal(types.TradeTypeShort, decoded.TradeType)

	// untouched names keep their defaults
	suite.Equal(0.01, decoded.StopLoss)
	suite.Equal(10, decoded.EntryPeriod)
	suite.Equal(1.0, decoded.MinUnit)
}

func (suite *StrategyTestSuite) TestDecodeErrors() {
	tests := []struct {
		name   string
		params map[string]any
		code   errors.ErrorCode
	}{
		{"unknown", map[string]any{"stop": 0.1}, errors.ErrCodeUnknownParameter},
		{"fraction for int", map[string]any{"entry_period": 1.5}, errors.ErrCodeInvalidParameter},
		{"text for float", map[string]any{"sl": "tight"}, errors.ErrCodeInvalidParameter},
		{"number for text", map[string]any{"trade_type": 1}, errors.ErrCodeInvalidParameter},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			_, err := decodeParameters(DefaultStrategyParams(), types.MustParameterSet(tc.params))
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *StrategyTestSuite) TestBuildStrategy() {
	config := EmptyConfig().Strategy
	config.Exits = []exit.RuleName{exit.RuleTimeExpiry, exit.RuleTakeProfit}

	strat, err := buildStrategy(config, DefaultStrategyParams(), types.MustParameterSet(map[string]any{"max_hold": 4}))
	suite.Require().NoError(err)
	suite.True(strat.exits.Has(exit.RuleTakeProfit))
	suite.Equal(exit.RuleTakeProfit, strat.exits.Rules()[0].Name())
	suite.Equal(4, strat.params.MaxHold)
	suite.Equal(risk.MethodFixedFraction, strat.sizer.Method)
}

func (suite *StrategyTestSuite) TestBuildStrategyErrors() {
	tests := []struct {
		name   string
		mutate func(c *StrategyConfig)
		params map[string]any
		code   errors.ErrorCode
	}{
		{"zero max hold", func(c *StrategyConfig) {}, map[string]any{"max_hold": 0}, errors.ErrCodeInvalidMaxHold},
		{
			"negative max hold without time expiry",
			func(c *StrategyConfig) { c.Exits = []exit.RuleName{exit.RuleTakeProfit} },
			map[string]any{"max_hold": -1},
			errors.ErrCodeInvalidMaxHold,
		},
		{"stop loss of one", func(c *StrategyConfig) {}, map[string]any{"sl": 1}, errors.ErrCodeInvalidStopLoss},
		{
			"zscore trigger without signal",
			func(c *StrategyConfig) { c.Entry.Trigger = entry.TriggerZScore },
			nil,
			errors.ErrCodeInvalidEntryRule,
		},
		{
			"risk sizing without volatility",
			func(c *StrategyConfig) {},
			map[string]any{"sizer": "risk_normalized"},
			errors.ErrCodeInvalidSizer,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := EmptyConfig().Strategy
			tc.mutate(&config)

			_, err := buildStrategy(config, DefaultStrategyParams(), types.MustParameterSet(tc.params))
			suite.Require().Error(err)
			suite.True(errors.IsConfigError(err))
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}
