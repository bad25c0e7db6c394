package writer

import (
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// SummaryWriter writes summary.yaml.
type SummaryWriter struct {
	path        string
	top         int
	dataPath    string
	resultsPath string
}

func NewSummaryWriter(path string, top int, dataPath string, resultsPath string) *SummaryWriter {
	return &SummaryWriter{path: path, top: top, dataPath: dataPath, resultsPath: resultsPath}
}

func (w *SummaryWriter) Write(report types.SweepReport) error {
	summary := types.NewSweepSummary(report, w.top)
	summary.DataPath = w.dataPath
	summary.ResultsFilePath = w.resultsPath

	if err := types.WriteSweepSummary(w.path, summary); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write summary", err)
	}

	return nil
}

func (w *SummaryWriter) Close() error {
	return nil
}
