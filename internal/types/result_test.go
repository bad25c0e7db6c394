package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ResultTestSuite struct {
	suite.Suite
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultTestSuite))
}

func (suite *ResultTestSuite) TestTradeRecordOpenState() {
	open := TradeRecord{OpenBar: 3, Side: SideLong, EntryPrice: 100, Size: 1}
	suite.True(open.IsOpen())
	suite.Equal(-1, open.BarsHeld())

	closed := open
	closed.CloseBar = optional.Some(7)
	closed.ExitReason = optional.Some(ExitReasonTimeExpiry)
	suite.False(closed.IsOpen())
	suite.Equal(4, closed.BarsHeld())
}

func (suite *ResultTestSuite) TestExitReasonPriority() {
	suite.Less(ExitReasonTakeProfit.Priority(), ExitReasonStopLoss.Priority())
	suite.Less(ExitReasonStopLoss.Priority(), ExitReasonTrailingStop.Priority())
	suite.Less(ExitReasonTrailingStop.Priority(), ExitReasonTimeExpiry.Priority())
	suite.Less(ExitReasonTimeExpiry.Priority(), ExitReasonSignalExit.Priority())
}

func (suite *ResultTestSuite) TestReportTop() {
	report := SweepReport{
		Results:  []SweepResult{{RunID: "a", Rank: 1}, {RunID: "b", Rank: 2}, {RunID: "c", Rank: 3}},
		Failures: []RunFailure{{RunID: "d"}},
	}

	suite.Equal(4, report.Total())
	suite.Len(report.Top(2), 2)
	suite.Len(report.Top(0), 3)
	suite.Len(report.Top(10), 3)

	best, ok := report.Best()
	suite.True(ok)
	suite.Equal("a", best.RunID)

	_, ok = SweepReport{}.Best()
	suite.False(ok)
}

func (suite *ResultTestSuite) TestWriteSweepSummary() {
	report := SweepReport{
		ID:     "sweep-1",
		Metric: "final_equity",
		Results: []SweepResult{
			{
				RunID:       "run-1",
				Rank:        1,
				Parameters:  MustParameterSet(map[string]any{"tp": 0.02}),
				FinalEquity: 101000,
				Metrics:     map[string]float64{"final_equity": 101000},
			},
		},
		Failures: []RunFailure{
			{
				RunID:      "run-2",
				Parameters: MustParameterSet(map[string]any{"max_hold": 0}),
				Cause:      errors.New(errors.ErrCodeInvalidMaxHold, "max_hold must be positive"),
			},
		},
	}

	path := filepath.Join(suite.T().TempDir(), "summary.yaml")
	suite.Require().NoError(WriteSweepSummary(path, NewSweepSummary(report, 5)))

	data, err := os.ReadFile(path)
	suite.Require().NoError(err)

	var decoded SweepSummary
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal("sweep-1", decoded.ID)
	suite.Equal(2, decoded.Runs.Total)
	suite.Equal(1, decoded.Runs.Failed)
	suite.Require().Len(decoded.Best, 1)
	suite.Equal("0.02", decoded.Best[0].Parameters["tp"])
	suite.Require().Len(decoded.Failures, 1)
	suite.Contains(decoded.Failures[0].Error, "[107]")
}
