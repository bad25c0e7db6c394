package position

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PositionTestSuite struct {
	suite.Suite
	start time.Time
}

func TestPositionSuite(t *testing.T) {
	suite.Run(t, new(PositionTestSuite))
}

func (suite *PositionTestSuite) SetupTest() {
	suite.start = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
}

func (suite *PositionTestSuite) bar(index int, close float64) types.Bar {
	return types.Bar{
		Index: index,
		Time:  suite.start.Add(time.Duration(index) * time.Minute),
		Open:  close,
		High:  close,
		Low:   close,
		Close: close,
	}
}

func (suite *PositionTestSuite) TestNewIsFlat() {
	p := New()
	suite.True(p.IsFlat())
	suite.Equal(0.0, p.Size())
	suite.True(p.EntryPrice().IsNone())
	suite.NoError(p.Check())

	_, ok := p.OpenRecord()
	suite.False(ok)
}

func (suite *PositionTestSuite) TestOpenRecordsEntry() {
	p := New()
	thresholds := Thresholds{TakeProfitPrice: optional.Some(110.0), MaxHoldBars: 5}

	suite.Require().NoError(p.Open(types.SideLong, 2, suite.bar(3, 100), 100, 0.1, thresholds))

	suite.Equal(types.SideLong, p.Side())
	suite.Equal(2.0, p.Size())
	suite.Equal(100.0, p.EntryPrice().Unwrap())
	suite.Equal(100.0, p.TrailingReference().Unwrap())
	suite.Equal(3, p.EntryIndex())
	suite.Equal(0, p.BarsHeld())
	suite.Equal(thresholds, p.Thresholds())
	suite.NoError(p.Check())
}

func (suite *PositionTestSuite) TestOpenRejectsInvalidTransitions() {
	tests := []struct {
		name  string
		setup func(p *Position)
		side  types.Side
		size  float64
		price float64
		code  errors.ErrorCode
	}{
		{name: "already open", setup: func(p *Position) {
			suite.Require().NoError(p.Open(types.SideLong, 1, suite.bar(0, 100), 100, 0, Thresholds{}))
		}, side: types.SideShort, size: 1, price: 100, code: errors.ErrCodePositionExists},
		{name: "flat side", side: types.SideFlat, size: 1, price: 100, code: errors.ErrCodeRunStateInvalid},
		{name: "zero size", side: types.SideLong, size: 0, price: 100, code: errors.ErrCodeRunStateInvalid},
		{name: "zero price", side: types.SideLong, size: 1, price: 0, code: errors.ErrCodeRunStateInvalid},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			p := New()
			if tc.setup != nil {
				tc.setup(p)
			}

			err := p.Open(tc.side, tc.size, suite.bar(1, 100), tc.price, 0, Thresholds{})
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code))
			suite.NoError(p.Check())
		})
	}
}

func (suite *PositionTestSuite) TestTrailingReferenceIsMonotonicForLong() {
	p := New()
	suite.Require().NoError(p.Open(types.SideLong, 1, suite.bar(0, 100), 100, 0, Thresholds{}))

	closes := []float64{105, 103, 110, 90, 111, 50}
	previous := p.TrailingReference().Unwrap()

	for i, c := range closes {
		suite.Require().NoError(p.Update(suite.bar(i+1, c)))

		ref := p.TrailingReference().Unwrap()
		suite.GreaterOrEqual(ref, previous)
		suite.Equal(i+1, p.BarsHeld())
		previous = ref
	}

	suite.Equal(111.0, previous)
}

func (suite *PositionTestSuite) TestTrailingReferenceIsMonotonicForShort() {
	p := New()
	suite.Require().NoError(p.Open(types.SideShort, 1, suite.bar(0, 100), 100, 0, Thresholds{}))

	for i, c := range []float64{95, 97, 80, 120} {
		suite.Require().NoError(p.Update(suite.bar(i+1, c)))
	}

	suite.Equal(80.0, p.TrailingReference().Unwrap())
}

func (suite *PositionTestSuite) TestUpdateRequiresOpenPosition() {
	p := New()
	err := p.Update(suite.bar(0, 100))
	suite.True(errors.HasCode(err, errors.ErrCodePositionNotFound))

	suite.Require().NoError(p.Open(types.SideLong, 1, suite.bar(5, 100), 100, 0, Thresholds{}))
	err = p.Update(suite.bar(4, 100))
	suite.True(errors.HasCode(err, errors.ErrCodeRunStateInvalid))
}

func (suite *PositionTestSuite) TestCloseProducesTradeAndResets() {
	p := New()
	suite.Require().NoError(p.Open(types.SideLong, 10, suite.bar(0, 100), 100, 0.5, Thresholds{}))
	suite.Require().NoError(p.Update(suite.bar(1, 110)))

	record, err := p.Close(suite.bar(1, 110), 110, types.ExitReasonTakeProfit, 0.55, 100)
	suite.Require().NoError(err)

	suite.Equal(0, record.OpenBar)
	suite.Equal(1, record.CloseBar.Unwrap())
	suite.Equal(types.ExitReasonTakeProfit, record.ExitReason.Unwrap())
	suite.Equal(110.0, record.ExitPrice.Unwrap())
	suite.Equal(suite.start.Add(time.Minute), record.CloseTime.Unwrap())
	suite.InDelta(1.05, record.Fees, 1e-12)
	suite.InDelta(98.95, record.PnL, 1e-9)
	suite.False(record.IsOpen())

	suite.True(p.IsFlat())
	suite.NoError(p.Check())
	suite.True(p.TrailingReference().IsNone())

	_, err = p.Close(suite.bar(2, 110), 110, types.ExitReasonStopLoss, 0, 0)
	suite.True(errors.HasCode(err, errors.ErrCodePositionNotFound))
}

func (suite *PositionTestSuite) TestOpenRecordLeavesPositionOpen() {
	p := New()
	suite.Require().NoError(p.Open(types.SideShort, 3, suite.bar(2, 50), 50, 0.2, Thresholds{}))

	record, ok := p.OpenRecord()
	suite.True(ok)
	suite.True(record.IsOpen())
	suite.True(record.ExitReason.IsNone())
	suite.Equal(types.SideShort, record.Side)
	suite.Equal(0.2, record.Fees)
	suite.False(p.IsFlat())
}
