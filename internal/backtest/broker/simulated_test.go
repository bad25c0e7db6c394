package broker

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-sweep/internal/backtest/commission_fee"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SimulatedBrokerTestSuite struct {
	suite.Suite
}

func TestSimulatedBrokerSuite(t *testing.T) {
	suite.Run(t, new(SimulatedBrokerTestSuite))
}

func closeBar(index int, price float64) types.Bar {
	return types.Bar{
		Index: index,
		Time:  time.Date(2024, 1, 1, 0, index, 0, 0, time.UTC),
		Open:  price,
		High:  price,
		Low:   price,
		Close: price,
	}
}

func (suite *SimulatedBrokerTestSuite) TestLongRoundTrip() {
	b := NewSimulatedBroker(10000, commission_fee.NewPercentageCommissionFee(0.001))

	suite.Require().NoError(b.OnBar(closeBar(0, 100)))
	buy, err := b.Buy(10, "entry")
	suite.Require().NoError(err)
	suite.Equal(100.0, buy.Price)
	suite.Equal(1.0, buy.Fee)
	suite.Equal(0.0, buy.PnL)
	suite.NotEmpty(buy.OrderID)

	account := b.Account()
	suite.Equal(8999.0, account.Cash)
	suite.Equal(9999.0, account.Equity)
	suite.Equal(10.0, account.Quantity)

	suite.Require().NoError(b.OnBar(closeBar(1, 110)))
	suite.Equal(10099.0, b.Account().Equity)

	sell, err := b.Close(string(types.ExitReasonTakeProfit))
	suite.Require().NoError(err)
	suite.Equal(OrderSideSell, sell.Side)
	suite.Equal(100.0, sell.PnL)
	suite.Equal(1.1, sell.Fee)

	account = b.Account()
	suite.Equal(0.0, account.Quantity)
	suite.InDelta(10097.9, account.Cash, 1e-9)
	suite.InDelta(10097.9, account.Equity, 1e-9)
	suite.Equal(100.0, account.RealizedPnL)
	suite.InDelta(2.1, account.TotalFees, 1e-12)
}

func (suite *SimulatedBrokerTestSuite) TestShortRoundTrip() {
	b := NewSimulatedBroker(10000, commission_fee.NewZeroCommissionFee())

	suite.Require().NoError(b.OnBar(closeBar(0, 100)))
	_, err := b.Sell(5, "entry")
	suite.Require().NoError(err)
	suite.Equal(10500.0, b.Account().Cash)
	suite.Equal(10000.0, b.Account().Equity)

	suite.Require().NoError(b.OnBar(closeBar(1, 90)))
	suite.Equal(10050.0, b.Account().Equity)

	fill, err := b.Close("stop_loss")
	suite.Require().NoError(err)
	suite.Equal(OrderSideBuy, fill.Side)
	suite.Equal(50.0, fill.PnL)
	suite.Equal(10050.0, b.Account().Cash)
}

func (suite *SimulatedBrokerTestSuite) TestRejections() {
	tests := []struct {
		name  string
		setup func(b *SimulatedBroker)
		order func(b *SimulatedBroker) error
		code  errors.ErrorCode
	}{
		{
			name: "order before any bar",
			order: func(b *SimulatedBroker) error {
				_, err := b.Buy(1, "entry")

				return err
			},
			code: errors.ErrCodeMarketDataMissing,
		},
		{
			name:  "zero quantity",
			setup: func(b *SimulatedBroker) { suite.Require().NoError(b.OnBar(closeBar(0, 100))) },
			order: func(b *SimulatedBroker) error {
				_, err := b.Buy(0, "entry")

				return err
			},
			code: errors.ErrCodeOrderFailed,
		},
		{
			name:  "nan quantity",
			setup: func(b *SimulatedBroker) { suite.Require().NoError(b.OnBar(closeBar(0, 100))) },
			order: func(b *SimulatedBroker) error {
				_, err := b.Sell(math.NaN(), "entry")

				return err
			},
			code: errors.ErrCodeOrderFailed,
		},
		{
			name:  "insufficient cash",
			setup: func(b *SimulatedBroker) { suite.Require().NoError(b.OnBar(closeBar(0, 100))) },
			order: func(b *SimulatedBroker) error {
				_, err := b.Buy(1000, "entry")

				return err
			},
			code: errors.ErrCodeOrderFailed,
		},
		{
			name:  "close without position",
			setup: func(b *SimulatedBroker) { suite.Require().NoError(b.OnBar(closeBar(0, 100))) },
			order: func(b *SimulatedBroker) error {
				_, err := b.Close("time_expiry")

				return err
			},
			code: errors.ErrCodePositionNotFound,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			b := NewSimulatedBroker(1000, commission_fee.NewZeroCommissionFee())
			if tc.setup != nil {
				tc.setup(b)
			}

			err := tc.order(b)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), err.Error())
			suite.Equal(1000.0, b.Account().Cash)
		})
	}
}

func (suite *SimulatedBrokerTestSuite) TestOnBarRejectsBadClose() {
	b := NewSimulatedBroker(1000, commission_fee.NewZeroCommissionFee())
	err := b.OnBar(closeBar(0, 0))
	suite.True(errors.IsDataError(err))
	suite.Equal(1000.0, b.Account().Equity)
}

func (suite *SimulatedBrokerTestSuite) TestFeeQuote() {
	b := NewSimulatedBroker(1000, commission_fee.NewInteractiveBrokerCommissionFee())
	suite.Equal(1.0, b.Fee(10, 100))
	suite.Equal(5.0, b.Fee(1000, 100))
}
