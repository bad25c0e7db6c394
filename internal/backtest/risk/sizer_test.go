package risk

import (
	"math"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SizerTestSuite struct {
	suite.Suite
}

func TestSizerSuite(t *testing.T) {
	suite.Run(t, new(SizerTestSuite))
}

func fixedFraction(fraction float64) Params {
	return Params{Method: MethodFixedFraction, SizeFraction: fraction, MinUnit: DefaultMinUnit}
}

func (suite *SizerTestSuite) TestFixedFraction() {
	tests := []struct {
		name     string
		equity   float64
		price    float64
		params   Params
		expected float64
	}{
		{name: "exactly one unit", equity: 1000, price: 100, params: fixedFraction(0.1), expected: 1},
		{name: "below one unit", equity: 1000, price: 1000, params: fixedFraction(0.1), expected: 0},
		{name: "floors to whole units", equity: 100000, price: 33, params: fixedFraction(0.1), expected: 303},
		{name: "fractional venue", equity: 1000, price: 1000, params: Params{Method: MethodFixedFraction, SizeFraction: 0.1, MinUnit: 0.001}, expected: 0.1},
		{name: "zero equity", equity: 0, price: 100, params: fixedFraction(0.1), expected: 0},
		{name: "negative price", equity: 1000, price: -1, params: fixedFraction(0.1), expected: 0},
		{name: "nan price", equity: 1000, price: math.NaN(), params: fixedFraction(0.1), expected: 0},
		{name: "inf equity", equity: math.Inf(1), price: 100, params: fixedFraction(0.1), expected: 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			size := Size(tc.equity, Quote{Price: tc.price}, tc.params)
			suite.InDelta(tc.expected, size, 1e-12)
		})
	}
}

func (suite *SizerTestSuite) TestRiskNormalized() {
	params := Params{Method: MethodRiskNormalized, RiskPerTrade: 0.01, RiskMultiplier: 2, MinUnit: 1}

	tests := []struct {
		name       string
		volatility optional.Option[float64]
		expected   float64
	}{
		{name: "atr of 5", volatility: optional.Some(5.0), expected: 100}, // 100000*0.01/(5*2)
		{name: "atr of 3", volatility: optional.Some(3.0), expected: 166},
		{name: "zero volatility is floored", volatility: optional.Some(0.0), expected: math.Floor(1000 / (VolatilityFloor * 2))},
		{name: "missing volatility", volatility: optional.None[float64](), expected: 0},
		{name: "nan volatility", volatility: optional.Some(math.NaN()), expected: 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			size := Size(100000, Quote{Price: 50, Volatility: tc.volatility}, params)
			suite.Equal(tc.expected, size)
		})
	}
}

func (suite *SizerTestSuite) TestValidate() {
	tests := []struct {
		name    string
		params  Params
		wantErr bool
	}{
		{name: "valid fixed fraction", params: fixedFraction(0.1)},
		{name: "full equity", params: fixedFraction(1)},
		{name: "zero fraction", params: fixedFraction(0), wantErr: true},
		{name: "above one", params: fixedFraction(1.5), wantErr: true},
		{name: "zero min unit", params: Params{Method: MethodFixedFraction, SizeFraction: 0.1}, wantErr: true},
		{name: "valid risk normalized", params: Params{Method: MethodRiskNormalized, RiskPerTrade: 0.02, RiskMultiplier: 2, MinUnit: 1}},
		{name: "risk without multiplier", params: Params{Method: MethodRiskNormalized, RiskPerTrade: 0.02, MinUnit: 1}, wantErr: true},
		{name: "unknown method", params: Params{Method: "kelly", MinUnit: 1}, wantErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			err := tc.params.Validate()
			if !tc.wantErr {
				suite.NoError(err)

				return
			}

			suite.Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidSizer))
			suite.True(errors.IsConfigError(err))
		})
	}
}

func (suite *SizerTestSuite) TestRoundToUnit() {
	suite.Equal(3.0, RoundToUnit(0.3/0.1, 1))
	suite.InDelta(0.123, RoundToUnit(0.12345, 0.001), 1e-12)
	suite.Equal(0.0, RoundToUnit(-5, 1))
	suite.Equal(0.0, RoundToUnit(5, 0))
}

func (suite *SizerTestSuite) TestCapToBalance() {
	tests := []struct {
		name     string
		quantity float64
		balance  float64
		price    float64
		fee      commission_fee.CommissionFee
		expected float64
	}{
		{"fits without commission", 5, 1000, 100, commission_fee.NewZeroCommissionFee(), 5},
		{"capped without commission", 50, 1000, 100, commission_fee.NewZeroCommissionFee(), 10},
		{"capped with commission", 50, 1000, 100, commission_fee.NewInteractiveBrokerCommissionFee(), 9},
		{"zero balance", 5, 0, 100, commission_fee.NewZeroCommissionFee(), 0},
		{"zero price", 5, 1000, 0, commission_fee.NewZeroCommissionFee(), 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, CapToBalance(tc.quantity, tc.balance, tc.price, tc.fee, 1))
		})
	}
}

func (suite *SizerTestSuite) TestDegenerateIsSizingError() {
	err := Degenerate(1000, 1000)
	suite.True(errors.HasCode(err, errors.ErrCodeSizingDegenerate))
	suite.False(errors.IsRunFailed(err))
}
