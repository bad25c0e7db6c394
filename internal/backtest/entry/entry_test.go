package entry

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type EntryTestSuite struct {
	suite.Suite
	names SignalNames
	rng   *rand.Rand
}

func TestEntrySuite(t *testing.T) {
	suite.Run(t, new(EntryTestSuite))
}

func (suite *EntryTestSuite) SetupTest() {
	suite.rng = rand.New(rand.NewSource(7))
	suite.names = SignalNames{
		ZScore:      "zscore",
		FastMA:      "fast",
		SlowMA:      "slow",
		Trend:       "ma",
		RSI:         "rsi",
		MACD:        "macd",
		MACDSignal:  "macd_signal",
		VolumeRatio: "volume_ratio",
		VolRatio:    "vol_ratio",
		UpperBand:   "bb_upper",
		LowerBand:   "bb_lower",
	}
}

func bar(index int, close float64, signals map[string]float64) types.Bar {
	return types.Bar{
		Index:   index,
		Time:    time.Date(2024, 1, 1, 0, index, 0, 0, time.UTC),
		Open:    close,
		High:    close,
		Low:     close,
		Close:   close,
		Volume:  100,
		Signals: types.NewSignals(signals),
	}
}

func longOnly() Params {
	return Params{EntryPeriod: 10, EntryProbability: 1, ZEntry: 2, VolumeRatioMin: 0.5, VolThreshold: 0.02, RSIThreshold: 30, TradeType: types.TradeTypeLong}
}

func (suite *EntryTestSuite) TestOnceFiresUntilCommitted() {
	rs, err := NewRuleSet(TriggerOnce, nil, longOnly(), suite.names)
	suite.Require().NoError(err)

	// a skipped entry (e.g. size rounded to zero) keeps the trigger armed
	suite.Equal(types.SideLong, rs.Decide(bar(0, 100, nil), suite.rng).Unwrap())
	suite.Equal(types.SideLong, rs.Decide(bar(1, 100, nil), suite.rng).Unwrap())

	rs.Commit(bar(1, 100, nil))
	suite.True(rs.Decide(bar(5, 100, nil), suite.rng).IsNone())
}

func (suite *EntryTestSuite) TestPeriodicSpacing() {
	params := longOnly()
	params.EntryPeriod = 3

	rs, err := NewRuleSet(TriggerPeriodic, nil, params, suite.names)
	suite.Require().NoError(err)

	var entries []int
	for i := range 10 {
		b := bar(i, 100, nil)
		if rs.Decide(b, suite.rng).IsSome() {
			rs.Commit(b)
			entries = append(entries, i)
		}
	}

	suite.Equal([]int{0, 3, 6, 9}, entries)
}

func (suite *EntryTestSuite) TestPeriodicProbabilityIsSeeded() {
	params := longOnly()
	params.EntryPeriod = 1
	params.EntryProbability = 0.5

	run := func(seed int64) []int {
		rs, err := NewRuleSet(TriggerPeriodic, nil, params, suite.names)
		suite.Require().NoError(err)

		rng := rand.New(rand.NewSource(seed))

		var entries []int
		for i := range 50 {
			b := bar(i, 100, nil)
			if rs.Decide(b, rng).IsSome() {
				rs.Commit(b)
				entries = append(entries, i)
			}
		}

		return entries
	}

	first := run(42)
	suite.Equal(first, run(42))
	suite.NotEmpty(first)
	suite.Less(len(first), 50)
}

func (suite *EntryTestSuite) TestBothChoosesBothSides() {
	params := longOnly()
	params.TradeType = types.TradeTypeBoth

	seen := map[types.Side]int{}

	for i := range 100 {
		rs, err := NewRuleSet(TriggerOnce, nil, params, suite.names)
		suite.Require().NoError(err)

		seen[rs.Decide(bar(i, 100, nil), suite.rng).Unwrap()]++
	}

	suite.Positive(seen[types.SideLong])
	suite.Positive(seen[types.SideShort])
	suite.Equal(100, seen[types.SideLong]+seen[types.SideShort])
}

func (suite *EntryTestSuite) TestZScoreTrigger() {
	tests := []struct {
		name      string
		tradeType types.TradeType
		z         map[string]float64
		expected  types.Side
	}{
		{name: "stretched down goes long", tradeType: types.TradeTypeBoth, z: map[string]float64{"zscore": -2.5}, expected: types.SideLong},
		{name: "stretched up goes short", tradeType: types.TradeTypeBoth, z: map[string]float64{"zscore": 2.5}, expected: types.SideShort},
		{name: "inside band", tradeType: types.TradeTypeBoth, z: map[string]float64{"zscore": 1.9}, expected: types.SideFlat},
		{name: "short not permitted", tradeType: types.TradeTypeLong, z: map[string]float64{"zscore": 2.5}, expected: types.SideFlat},
		{name: "warm-up", tradeType: types.TradeTypeBoth, expected: types.SideFlat},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			params := longOnly()
			params.TradeType = tc.tradeType

			rs, err := NewRuleSet(TriggerZScore, nil, params, suite.names)
			suite.Require().NoError(err)

			got := rs.Decide(bar(20, 100, tc.z), suite.rng)
			if tc.expected == types.SideFlat {
				suite.True(got.IsNone())

				return
			}

			suite.Equal(tc.expected, got.Unwrap())
		})
	}
}

func (suite *EntryTestSuite) TestMACrossNeedsPreviousBar() {
	params := longOnly()
	params.TradeType = types.TradeTypeBoth

	rs, err := NewRuleSet(TriggerMACross, nil, params, suite.names)
	suite.Require().NoError(err)

	below := bar(0, 100, map[string]float64{"fast": 99, "slow": 100})
	suite.True(rs.Decide(below, suite.rng).IsNone())
	rs.Observe(below)

	above := bar(1, 100, map[string]float64{"fast": 101, "slow": 100})
	suite.Equal(types.SideLong, rs.Decide(above, suite.rng).Unwrap())
	rs.Observe(above)

	stillAbove := bar(2, 100, map[string]float64{"fast": 102, "slow": 100})
	suite.True(rs.Decide(stillAbove, suite.rng).IsNone())
	rs.Observe(stillAbove)

	crossDown := bar(3, 100, map[string]float64{"fast": 98, "slow": 100})
	suite.Equal(types.SideShort, rs.Decide(crossDown, suite.rng).Unwrap())
}

func (suite *EntryTestSuite) TestBreakoutTrigger() {
	params := longOnly()
	params.TradeType = types.TradeTypeBoth

	rs, err := NewRuleSet(TriggerBreakout, nil, params, suite.names)
	suite.Require().NoError(err)

	bands := map[string]float64{"bb_upper": 105, "bb_lower": 95}
	suite.Equal(types.SideLong, rs.Decide(bar(0, 106, bands), suite.rng).Unwrap())
	suite.Equal(types.SideShort, rs.Decide(bar(1, 94, bands), suite.rng).Unwrap())
	suite.True(rs.Decide(bar(2, 100, bands), suite.rng).IsNone())
}

func (suite *EntryTestSuite) TestFilters() {
	tests := []struct {
		name    string
		filter  Filter
		side    types.Side
		close   float64
		signals map[string]float64
		pass    bool
	}{
		{name: "volume ok", filter: FilterVolume, side: types.SideLong, signals: map[string]float64{"volume_ratio": 0.8}, pass: true},
		{name: "volume thin", filter: FilterVolume, side: types.SideLong, signals: map[string]float64{"volume_ratio": 0.3}},
		{name: "volatility calm", filter: FilterVolatility, side: types.SideLong, signals: map[string]float64{"vol_ratio": 0.01}, pass: true},
		{name: "volatility wild", filter: FilterVolatility, side: types.SideLong, signals: map[string]float64{"vol_ratio": 0.05}},
		{name: "trend agrees with long", filter: FilterTrend, side: types.SideLong, close: 101, signals: map[string]float64{"ma": 100}, pass: true},
		{name: "trend against long", filter: FilterTrend, side: types.SideLong, close: 99, signals: map[string]float64{"ma": 100}},
		{name: "trend agrees with short", filter: FilterTrend, side: types.SideShort, close: 99, signals: map[string]float64{"ma": 100}, pass: true},
		{name: "rsi oversold long", filter: FilterRSI, side: types.SideLong, signals: map[string]float64{"rsi": 25}, pass: true},
		{name: "rsi neutral long", filter: FilterRSI, side: types.SideLong, signals: map[string]float64{"rsi": 50}},
		{name: "rsi overbought short", filter: FilterRSI, side: types.SideShort, signals: map[string]float64{"rsi": 75}, pass: true},
		{name: "macd agrees with long", filter: FilterMACD, side: types.SideLong, signals: map[string]float64{"macd": 1, "macd_signal": 0.5}, pass: true},
		{name: "macd against short", filter: FilterMACD, side: types.SideShort, signals: map[string]float64{"macd": 1, "macd_signal": 0.5}},
		{name: "missing signal blocks", filter: FilterMACD, side: types.SideLong},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			params := longOnly()
			if tc.side == types.SideShort {
				params.TradeType = types.TradeTypeShort
			}

			rs, err := NewRuleSet(TriggerOnce, []Filter{tc.filter}, params, suite.names)
			suite.Require().NoError(err)

			price := tc.close
			if price == 0 {
				price = 100
			}

			got := rs.Decide(bar(30, price, tc.signals), suite.rng)
			suite.Equal(tc.pass, got.IsSome())
		})
	}
}

func (suite *EntryTestSuite) TestInvalidConfiguration() {
	tests := []struct {
		name      string
		trigger   Trigger
		filters   []Filter
		mutate    func(p *Params)
		noSignals bool
		code      errors.ErrorCode
	}{
		{name: "bad trade type", trigger: TriggerOnce, mutate: func(p *Params) { p.TradeType = "UP" }, code: errors.ErrCodeInvalidTradeType},
		{name: "zero entry period", trigger: TriggerPeriodic, mutate: func(p *Params) { p.EntryPeriod = 0 }, code: errors.ErrCodeInvalidEntryRule},
		{name: "probability above one", trigger: TriggerPeriodic, mutate: func(p *Params) { p.EntryProbability = 1.5 }, code: errors.ErrCodeInvalidEntryRule},
		{name: "zscore without signal", trigger: TriggerZScore, noSignals: true, code: errors.ErrCodeInvalidEntryRule},
		{name: "unknown trigger", trigger: "astrology", code: errors.ErrCodeInvalidEntryRule},
		{name: "unknown filter", trigger: TriggerOnce, filters: []Filter{"weather"}, code: errors.ErrCodeInvalidEntryRule},
		{name: "rsi threshold out of range", trigger: TriggerOnce, filters: []Filter{FilterRSI}, mutate: func(p *Params) { p.RSIThreshold = 120 }, code: errors.ErrCodeInvalidEntryRule},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			params := longOnly()
			if tc.mutate != nil {
				tc.mutate(&params)
			}

			names := suite.names
			if tc.noSignals {
				names = SignalNames{}
			}

			_, err := NewRuleSet(tc.trigger, tc.filters, params, names)
			suite.Error(err)
			suite.True(errors.HasCode(err, tc.code), err.Error())
			suite.True(errors.IsConfigError(err))
		})
	}
}
