package writer

import (
	"encoding/csv"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
)

// CSVWriter writes results.csv and failures.csv into a directory.
type CSVWriter struct {
	dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write writes one row per ranked result and one row per failed or cancelled cell.
func (w *CSVWriter) Write(report types.SweepReport) error {
	if err := w.writeResults(report); err != nil {
		return err
	}

	return w.writeFailures(report)
}

func (w *CSVWriter) Close() error {
	return nil
}

func (w *CSVWriter) writeResults(report types.SweepReport) error {
	paramNames := parameterColumns(report)
	metricNames := metricColumns(report)

	header := []string{"rank", "run_id", "index"}
	header = append(header, paramNames...)
	header = append(header, metricNames...)
	header = append(header, "elapsed_ms")

	rows := make([][]string, 0, len(report.Results))

	for _, result := range report.Results {
		row := []string{
			strconv.Itoa(result.Rank),
			result.RunID,
			strconv.Itoa(result.Index),
		}

		for _, name := range paramNames {
			v, _ := result.Parameters.Get(name)
			row = append(row, types.FormatParameter(v))
		}

		for _, name := range metricNames {
			v, ok := result.Metric(name)
			if !ok {
				row = append(row, "")

				continue
			}

			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}

		row = append(row, strconv.FormatInt(result.Elapsed.Milliseconds(), 10))
		rows = append(rows, row)
	}

	return writeCSV(filepath.Join(w.dir, ResultsFile), header, rows)
}

func (w *CSVWriter) writeFailures(report types.SweepReport) error {
	header := []string{"run_id", "index", "parameters", "status", "error_code", "error"}
	rows := make([][]string, 0, len(report.Failures)+len(report.Cancelled))

	for _, failure := range report.Failures {
		msg := ""
		if failure.Cause != nil {
			msg = failure.Cause.Error()
		}

		rows = append(rows, []string{
			failure.RunID,
			strconv.Itoa(failure.Index),
			failure.Parameters.Key(),
			"failed",
			strconv.Itoa(int(rootCode(failure.Cause))),
			msg,
		})
	}

	for _, cell := range report.Cancelled {
		rows = append(rows, []string{"", "", cell.Key(), "cancelled", "", ""})
	}

	return writeCSV(filepath.Join(w.dir, FailuresFile), header, rows)
}

// rootCode returns the innermost structured error code, which names the
// actual cause rather than the RunFailed wrapper.
func rootCode(err error) errors.ErrorCode {
	code := errors.ErrCodeUnknown

	for err != nil {
		var e *errors.Error
		if !errors.As(err, &e) {
			break
		}

		code = e.Code
		err = e.Cause
	}

	return code
}

func parameterColumns(report types.SweepReport) []string {
	names := make(map[string]struct{})

	for _, result := range report.Results {
		for _, name := range result.Parameters.Names() {
			names[name] = struct{}{}
		}
	}

	return slices.Sorted(maps.Keys(names))
}

// metricColumns keeps the well-known metrics first, then any extra keys sorted.
func metricColumns(report types.SweepReport) []string {
	seen := make(map[string]struct{})

	for _, result := range report.Results {
		for name := range result.Metrics {
			seen[name] = struct{}{}
		}
	}

	columns := make([]string, 0, len(seen))

	for _, name := range metrics.Names {
		if _, ok := seen[name]; ok {
			columns = append(columns, name)
			delete(seen, name)
		}
	}

	return append(columns, slices.Sorted(maps.Keys(seen))...)
}

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	if err := w.Write(header); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write header to %s", path)
	}

	if err := w.WriteAll(rows); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write rows to %s", path)
	}

	return nil
}
