package engine

import (
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

//go:generate mockgen -destination=../../../mocks/mock_engine.go -package=mocks github.com/rxtech-lab/argo-sweep/internal/backtest/engine Engine

// RunState is the lifecycle of a single simulation.
type RunState string

const (
	RunStateIdle     RunState = "IDLE"
	RunStateRunning  RunState = "RUNNING"
	RunStateFinished RunState = "FINISHED"
	RunStateFailed   RunState = "FAILED"
)

// Lifecycle callback types for a single simulation run.
// Callbacks must not retain the arguments beyond the call.

// OnTradeCallback is called every time a position closes.
type OnTradeCallback func(runID string, trade types.TradeRecord)

// OnProcessDataCallback is called after each bar is processed.
// Returning an error aborts the run with RunFailed.
type OnProcessDataCallback func(current int, total int) error

// LifecycleCallbacks holds all lifecycle callback functions for a simulation run.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnTrade       *OnTradeCallback
	OnProcessData *OnProcessDataCallback
}

// RunResult is everything a finished or failed run produced.
type RunResult struct {
	RunID string
	State RunState
	// Trades in close order. A position still open at the end of the stream is
	// the last record and reports IsOpen.
	Trades []types.TradeRecord
	// Equity holds one sample per processed bar.
	Equity []types.EquitySample
	// Account is the broker snapshot after the last processed bar.
	Account types.Account
	// BarsProcessed counts bars consumed before the run finished or failed.
	BarsProcessed int
}

// Engine simulates one parameter set over a bar feed.
type Engine interface {
	// Run executes a single simulation. It never shares state between calls and
	// is safe to call concurrently. Failures are returned as RunFailed wrapping
	// the ConfigError or DataError cause; the partial result is still returned.
	Run(runID string, feed *types.Feed, params types.ParameterSet, seed int64, callbacks LifecycleCallbacks) (RunResult, error)
	// PrepareFeed computes the configured indicators over bars and returns the
	// feed every run of a sweep shares.
	PrepareFeed(bars []types.Bar) (*types.Feed, error)
	// CheckParameters returns a ConfigError if params holds names the engine does not understand.
	CheckParameters(params types.ParameterSet) error
	// InitialCapital is the equity every run starts with.
	InitialCapital() float64
	// GetConfigSchema returns the schema of the engine configuration
	GetConfigSchema() (string, error)
}
