// Package sweep runs one simulation per parameter cell on a bounded worker
// pool and ranks the outcomes.
package sweep

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-sweep/internal/backtest/engine"
	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options configures an Orchestrator.
type Options struct {
	// Workers bounds concurrent runs. Zero means runtime.NumCPU; one is sequential.
	Workers int
	// Seed is xor-ed with each cell's hash.
	Seed int64
	// Metric ranks results, best first. Defaults to final_equity.
	Metric string
}

// Lifecycle callbacks for a sweep. They may be called from several workers at once.

// OnSweepStartCallback is called once before any run starts.
type OnSweepStartCallback func(sweepID string, total int)

// OnRunStartCallback is called when a worker picks up a cell.
type OnRunStartCallback func(runID string, index int, params types.ParameterSet)

// OnRunEndCallback is called when a run finishes; err is nil on success.
type OnRunEndCallback func(runID string, index int, err error)

// OnSweepEndCallback is called with the ranked report.
type OnSweepEndCallback func(report types.SweepReport)

// Callbacks holds all sweep callbacks. Nil fields are skipped.
type Callbacks struct {
	OnSweepStart *OnSweepStartCallback
	OnRunStart   *OnRunStartCallback
	OnRunEnd     *OnRunEndCallback
	OnSweepEnd   *OnSweepEndCallback
}

// Orchestrator runs sweeps against one engine.
type Orchestrator struct {
	engine  engine.Engine
	options Options
	log     *logger.Logger
}

// New validates opts and returns an orchestrator.
func New(eng engine.Engine, opts Options, log *logger.Logger) (*Orchestrator, error) {
	if eng == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "engine must not be nil")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	if opts.Workers < 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "workers must not be negative, got %d", opts.Workers)
	}

	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}

	if opts.Metric == "" {
		opts.Metric = metrics.FinalEquity
	}

	if err := metrics.Validate(opts.Metric); err != nil {
		return nil, err
	}

	return &Orchestrator{
		engine:  eng,
		options: opts,
		log:     log.Named("sweep"),
	}, nil
}

// Options returns the effective options.
func (o *Orchestrator) Options() Options {
	return o.options
}

type cellStatus int

const (
	cellPending cellStatus = iota
	cellSucceeded
	cellFailed
	cellCancelled
)

// outcome is the per-cell slot a single worker writes.
type outcome struct {
	status  cellStatus
	result  types.SweepResult
	failure types.RunFailure
}

// Run simulates every cell over feed. A failing run is recorded and never
// fails the sweep. If ctx is cancelled, cells that have not started are
// reported as cancelled, in-flight runs complete and ctx.Err() is returned
// together with the partial report.
func (o *Orchestrator) Run(ctx context.Context, feed *types.Feed, cells []types.ParameterSet, callbacks Callbacks) (types.SweepReport, error) {
	if len(cells) == 0 {
		return types.SweepReport{}, errors.New(errors.ErrCodeSweepNoParameterSets, "sweep has no parameter sets")
	}

	if feed == nil {
		return types.SweepReport{}, errors.New(errors.ErrCodeEmptyFeed, "feed must not be nil")
	}

	for i, cell := range cells {
		if err := o.engine.CheckParameters(cell); err != nil {
			return types.SweepReport{}, errors.Wrapf(errors.ErrCodeInvalidGrid, err, "cell %d (%s)", i, cell.Key())
		}
	}

	sweepID := uuid.New()
	started := time.Now()
	log := o.log.WithFields(zap.String("sweep_id", sweepID.String()))

	log.Info("Starting sweep",
		zap.Int("cells", len(cells)),
		zap.Int("workers", o.options.Workers),
		zap.Int("bars", feed.Len()),
		zap.String("metric", o.options.Metric),
	)

	if callbacks.OnSweepStart != nil {
		(*callbacks.OnSweepStart)(sweepID.String(), len(cells))
	}

	outcomes := make([]outcome, len(cells))

	var g errgroup.Group
	g.SetLimit(o.options.Workers)

	for i, cell := range cells {
		if ctx.Err() != nil {
			break
		}

		runID := uuid.NewSHA1(sweepID, []byte(fmt.Sprintf("%d:%s", i, cell.Key()))).String()

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			outcomes[i] = o.runCell(log, runID, i, cell, feed, callbacks)

			return nil
		})
	}

	_ = g.Wait()

	report := o.collect(sweepID.String(), cells, outcomes)
	report.Elapsed = time.Since(started)

	log.Info("Sweep finished",
		zap.Int("succeeded", len(report.Results)),
		zap.Int("failed", len(report.Failures)),
		zap.Int("cancelled", len(report.Cancelled)),
		zap.Duration("elapsed", report.Elapsed),
	)

	if callbacks.OnSweepEnd != nil {
		(*callbacks.OnSweepEnd)(report)
	}

	return report, ctx.Err()
}

func (o *Orchestrator) runCell(
	log *logger.Logger,
	runID string,
	index int,
	cell types.ParameterSet,
	feed *types.Feed,
	callbacks Callbacks,
) (out outcome) {
	if callbacks.OnRunStart != nil {
		(*callbacks.OnRunStart)(runID, index, cell)
	}

	started := time.Now()
	seed := o.options.Seed ^ int64(cell.Hash())

	var runErr error

	defer func() {
		if r := recover(); r != nil {
			runErr = errors.RunFailed(runID, errors.Newf(errors.ErrCodeRunStateInvalid, "panic: %v", r))
			out = failed(runID, index, cell, runErr)
		}

		if runErr != nil {
			log.Warn("Run failed",
				zap.String("run_id", runID),
				zap.Int("index", index),
				zap.String("parameters", cell.Key()),
				zap.Error(runErr),
			)
		}

		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(runID, index, runErr)
		}
	}()

	res, err := o.engine.Run(runID, feed, cell, seed, engine.LifecycleCallbacks{})
	if err != nil {
		if !errors.IsRunFailed(err) {
			err = errors.RunFailed(runID, err)
		}

		runErr = err

		return failed(runID, index, cell, err)
	}

	m := metrics.Compute(o.engine.InitialCapital(), res.Trades, res.Equity)

	return outcome{
		status: cellSucceeded,
		result: types.SweepResult{
			RunID:       runID,
			Index:       index,
			Parameters:  cell,
			FinalEquity: m.FinalEquity,
			Metrics:     m.Map(),
			Trades:      res.Trades,
			Equity:      res.Equity,
			Elapsed:     time.Since(started),
		},
	}
}

func failed(runID string, index int, cell types.ParameterSet, cause error) outcome {
	return outcome{
		status: cellFailed,
		failure: types.RunFailure{
			RunID:      runID,
			Index:      index,
			Parameters: cell,
			Cause:      cause,
		},
	}
}

// collect walks the slots in input order, so ties keep their input order
// after the stable sort.
func (o *Orchestrator) collect(sweepID string, cells []types.ParameterSet, outcomes []outcome) types.SweepReport {
	report := types.SweepReport{
		ID:     sweepID,
		Metric: o.options.Metric,
	}

	for i, out := range outcomes {
		switch out.status {
		case cellSucceeded:
			report.Results = append(report.Results, out.result)
		case cellFailed:
			report.Failures = append(report.Failures, out.failure)
		default:
			report.Cancelled = append(report.Cancelled, cells[i])
		}
	}

	Rank(report.Results, o.options.Metric)

	return report
}

// Rank sorts results best first by metric, keeping input order for ties, and
// assigns ranks 1..n. A missing metric ranks last.
func Rank(results []types.SweepResult, metric string) {
	value := func(r types.SweepResult) float64 {
		v, ok := r.Metric(metric)
		if !ok {
			return math.NaN()
		}

		return v
	}

	slices.SortStableFunc(results, func(a, b types.SweepResult) int {
		va, vb := value(a), value(b)

		switch {
		case metrics.Better(metric, va, vb):
			return -1
		case metrics.Better(metric, vb, va):
			return 1
		default:
			return 0
		}
	})

	for i := range results {
		results[i].Rank = i + 1
	}
}
