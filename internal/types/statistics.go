package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RunCounts struct {
	// Number of cells the sweep was asked to run.
	Total int `yaml:"total"`
	// Runs that finished and were ranked.
	Succeeded int `yaml:"succeeded"`
	// Runs that aborted with an error.
	Failed int `yaml:"failed"`
	// Cells skipped because the sweep was cancelled.
	Cancelled int `yaml:"cancelled"`
}

type RankedRun struct {
	Rank        int                `yaml:"rank"`
	RunID       string             `yaml:"run_id"`
	Parameters  map[string]string  `yaml:"parameters"`
	FinalEquity float64            `yaml:"final_equity"`
	Metrics     map[string]float64 `yaml:"metrics"`
}

type FailedRun struct {
	RunID      string            `yaml:"run_id"`
	Parameters map[string]string `yaml:"parameters"`
	Error      string            `yaml:"error"`
}

type SweepSummary struct {
	// ID is the unique identifier for this sweep.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when the summary was written.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Metric the runs were ranked by.
	Metric string `yaml:"metric"`
	// Elapsed wall clock time of the sweep.
	Elapsed time.Duration `yaml:"elapsed"`
	Runs    RunCounts     `yaml:"runs"`
	// Best runs, best first.
	Best     []RankedRun `yaml:"best"`
	Failures []FailedRun `yaml:"failures,omitempty"`
	// DataPath is the path to the market data file used for this sweep.
	DataPath string `yaml:"data_path" json:"data_path"`
	// ResultsFilePath is the path to the results table.
	ResultsFilePath string `yaml:"results_file_path" json:"results_file_path"`
}

// NewSweepSummary condenses a report into a summary holding at most top ranked runs.
func NewSweepSummary(report SweepReport, top int) SweepSummary {
	summary := SweepSummary{
		ID:        report.ID,
		Timestamp: time.Now(),
		Metric:    report.Metric,
		Elapsed:   report.Elapsed,
		Runs: RunCounts{
			Total:     report.Total(),
			Succeeded: len(report.Results),
			Failed:    len(report.Failures),
			Cancelled: len(report.Cancelled),
		},
	}

	for _, result := range report.Top(top) {
		summary.Best = append(summary.Best, RankedRun{
			Rank:        result.Rank,
			RunID:       result.RunID,
			Parameters:  parameterStrings(result.Parameters),
			FinalEquity: result.FinalEquity,
			Metrics:     result.Metrics,
		})
	}

	for _, failure := range report.Failures {
		msg := ""
		if failure.Cause != nil {
			msg = failure.Cause.Error()
		}

		summary.Failures = append(summary.Failures, FailedRun{
			RunID:      failure.RunID,
			Parameters: parameterStrings(failure.Parameters),
			Error:      msg,
		})
	}

	return summary
}

func parameterStrings(p ParameterSet) map[string]string {
	out := make(map[string]string, p.Len())
	for _, name := range p.Names() {
		v, _ := p.Get(name)
		out[name] = FormatParameter(v)
	}

	return out
}

func WriteSweepSummary(path string, summary SweepSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal sweep summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sweep summary to file: %w", err)
	}

	return nil
}
