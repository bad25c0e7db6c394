package engine

import (
	"testing"

	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/stretchr/testify/suite"
)

type EngineTestSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (suite *EngineTestSuite) TestRunStateConstants() {
	suite.Equal(RunState("IDLE"), RunStateIdle)
	suite.Equal("FAILED", string(RunStateFailed))
}

func (suite *EngineTestSuite) TestOnProcessDataCallbackWithProgress() {
	var progress []int
	callback := OnProcessDataCallback(func(current int, total int) error {
		progress = append(progress, current)
		return nil
	})

	for i := 1; i <= 5; i++ {
		err := callback(i, 5)
		suite.NoError(err)
	}

	suite.Equal([]int{1, 2, 3, 4, 5}, progress)
}

func (suite *EngineTestSuite) TestOnTradeCallback() {
	var seen []string
	callback := OnTradeCallback(func(runID string, trade types.TradeRecord) {
		seen = append(seen, runID)
	})

	callbacks := LifecycleCallbacks{OnTrade: &callback}
	(*callbacks.OnTrade)("run-1", types.TradeRecord{})

	suite.Equal([]string{"run-1"}, seen)
	suite.Nil(callbacks.OnProcessData)
}
