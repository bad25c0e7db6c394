// Package writer persists a sweep report.
package writer

import (
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"go.uber.org/zap"
)

const (
	ResultsFile   = "results.csv"
	FailuresFile  = "failures.csv"
	SummaryFile   = "summary.yaml"
	DatabaseFile  = "sweep.duckdb"
	ResultsTable  = "results"
	TradesTable   = "trades"
	parquetSuffix = ".parquet"
)

// ResultWriter writes a finished sweep report somewhere.
type ResultWriter interface {
	Write(report types.SweepReport) error
	Close() error
}

// Options controls WriteAll.
type Options struct {
	// Top limits the runs listed in the summary. Zero lists all.
	Top int
	// DataPath is recorded in the summary.
	DataPath string
	// SkipDatabase disables the DuckDB store and Parquet export.
	SkipDatabase bool
}

// WriteAll writes every output format into dir, creating it if needed.
func WriteAll(dir string, report types.SweepReport, opts Options, log *logger.Logger) error {
	if log == nil {
		log = logger.NewNopLogger()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create results directory %s", dir)
	}

	writers := []ResultWriter{
		NewCSVWriter(dir),
		NewSummaryWriter(filepath.Join(dir, SummaryFile), opts.Top, opts.DataPath, filepath.Join(dir, ResultsFile)),
	}

	if !opts.SkipDatabase {
		store, err := NewDuckDBStore(filepath.Join(dir, DatabaseFile), log)
		if err != nil {
			return err
		}

		writers = append(writers, &exportingStore{store: store, dir: dir})
	}

	var firstErr error

	for _, w := range writers {
		if err := w.Write(report); err != nil && firstErr == nil {
			firstErr = err
		}

		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if firstErr != nil {
		return firstErr
	}

	log.Info("Sweep results written",
		zap.String("sweep_id", report.ID),
		zap.String("dir", dir),
		zap.Int("results", len(report.Results)),
		zap.Int("failures", len(report.Failures)),
	)

	return nil
}

// exportingStore also exports the tables to Parquet after writing.
type exportingStore struct {
	store *DuckDBStore
	dir   string
}

func (e *exportingStore) Write(report types.SweepReport) error {
	if err := e.store.Write(report); err != nil {
		return err
	}

	return e.store.Export(e.dir)
}

func (e *exportingStore) Close() error {
	return e.store.Close()
}
