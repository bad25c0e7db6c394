package types

import (
	"time"
)

// SweepResult is the outcome of one successful simulation in a sweep.
type SweepResult struct {
	RunID       string             `yaml:"run_id" json:"run_id"`
	Index       int                `yaml:"index" json:"index"`
	Parameters  ParameterSet       `yaml:"-" json:"-"`
	FinalEquity float64            `yaml:"final_equity" json:"final_equity"`
	Metrics     map[string]float64 `yaml:"metrics" json:"metrics"`
	Trades      []TradeRecord      `yaml:"-" json:"-"`
	Equity      []EquitySample     `yaml:"-" json:"-"`
	Elapsed     time.Duration      `yaml:"elapsed" json:"elapsed"`
	// Rank is the 1-based position after ranking. Zero before ranking.
	Rank int `yaml:"rank" json:"rank"`
}

// Metric returns a named scalar from the result.
func (r SweepResult) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]

	return v, ok
}

// RunFailure records a cell whose simulation could not complete.
type RunFailure struct {
	RunID      string       `yaml:"run_id" json:"run_id"`
	Index      int          `yaml:"index" json:"index"`
	Parameters ParameterSet `yaml:"-" json:"-"`
	Cause      error        `yaml:"-" json:"-"`
}

// SweepReport is the complete output of one sweep.
type SweepReport struct {
	ID     string `yaml:"id" json:"id"`
	Metric string `yaml:"metric" json:"metric"`
	// Results are ranked by Metric, best first.
	Results  []SweepResult `yaml:"results" json:"results"`
	Failures []RunFailure  `yaml:"failures" json:"failures"`
	// Cancelled holds cells that never started because the sweep was cancelled.
	Cancelled []ParameterSet `yaml:"-" json:"-"`
	Elapsed   time.Duration  `yaml:"elapsed" json:"elapsed"`
}

// Total returns the number of cells the sweep was asked to run.
func (r SweepReport) Total() int {
	return len(r.Results) + len(r.Failures) + len(r.Cancelled)
}

// Top returns at most k best results.
func (r SweepReport) Top(k int) []SweepResult {
	if k <= 0 || k >= len(r.Results) {
		return r.Results
	}

	return r.Results[:k]
}

// Best returns the highest ranked result, if any.
func (r SweepReport) Best() (SweepResult, bool) {
	if len(r.Results) == 0 {
		return SweepResult{}, false
	}

	return r.Results[0], true
}
