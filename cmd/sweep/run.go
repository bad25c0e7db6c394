package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	engine "github.com/rxtech-lab/argo-sweep/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-sweep/internal/config"
	"github.com/rxtech-lab/argo-sweep/internal/datasource"
	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/sweep"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/internal/writer"
	"github.com/rxtech-lab/argo-sweep/mocks"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runOptions is the parsed form of the run command flags.
type runOptions struct {
	ConfigPath   string
	DataPath     string
	ResultsDir   string
	Workers      int
	Seed         int64
	SeedSet      bool
	Metric       string
	Top          int
	SkipDB       bool
	HideProgress bool
	LogLevel     string
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	opts := runOptions{
		ConfigPath:   cmd.String("config"),
		DataPath:     cmd.String("data"),
		ResultsDir:   cmd.String("results"),
		Workers:      int(cmd.Int("workers")),
		Seed:         int64(cmd.Int("seed")),
		SeedSet:      cmd.IsSet("seed"),
		Metric:       cmd.String("metric"),
		Top:          int(cmd.Int("top")),
		SkipDB:       cmd.Bool("no-db"),
		HideProgress: cmd.Bool("no-progress"),
		LogLevel:     cmd.String("log-level"),
	}

	return runSweep(ctx, opts, os.Stdout)
}

func runSweep(ctx context.Context, opts runOptions, out io.Writer) error {
	log, err := logger.NewLoggerWithLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	sweepOpts := cfg.Sweep.Options()
	if opts.Workers > 0 {
		sweepOpts.Workers = opts.Workers
	}

	if opts.SeedSet {
		sweepOpts.Seed = opts.Seed
	}

	if opts.Metric != "" {
		sweepOpts.Metric = opts.Metric
	}

	eng, err := engine.NewBacktestEngineV1(cfg.BacktestEngineV1Config, log)
	if err != nil {
		return err
	}

	orchestrator, err := sweep.New(eng, sweepOpts, log)
	if err != nil {
		return err
	}

	cells, err := cfg.Sweep.Cells()
	if err != nil {
		return err
	}

	bars, err := loadBars(opts.DataPath, cfg, log)
	if err != nil {
		return err
	}

	feed, err := eng.PrepareFeed(bars)
	if err != nil {
		return err
	}

	var callbacks sweep.Callbacks

	if !opts.HideProgress {
		bar := progressbar.NewOptions(len(cells),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("sweeping"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		onRunEnd := sweep.OnRunEndCallback(func(string, int, error) {
			_ = bar.Add(1)
		})
		callbacks.OnRunEnd = &onRunEnd

		defer bar.Finish()
	}

	report, runErr := orchestrator.Run(ctx, feed, cells, callbacks)
	if runErr != nil && !stderrors.Is(runErr, context.Canceled) {
		return runErr
	}

	if err := writer.WriteAll(opts.ResultsDir, report, writer.Options{
		Top:          opts.Top,
		DataPath:     opts.DataPath,
		SkipDatabase: opts.SkipDB,
	}, log); err != nil {
		return err
	}

	printReport(out, report, opts.Top)

	if runErr != nil {
		fmt.Fprintf(out, "sweep interrupted: %d cells cancelled\n", len(report.Cancelled))
	}

	return nil
}

func loadBars(path string, cfg *config.Config, log *logger.Logger) ([]types.Bar, error) {
	ds, err := datasource.NewDataSource("", log)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	if err := ds.Initialize(path); err != nil {
		return nil, err
	}

	bars, err := datasource.Load(ds, cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, err
	}

	log.Info("Loaded bars", zap.String("path", path), zap.Int("bars", len(bars)))

	return bars, nil
}

// printReport writes the top ranked runs as an aligned table.
func printReport(out io.Writer, report types.SweepReport, top int) {
	fmt.Fprintf(out, "sweep %s: %d runs, %d failed, %d cancelled in %s\n",
		report.ID, len(report.Results), len(report.Failures), len(report.Cancelled), report.Elapsed.Round(time.Millisecond))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RANK\t%s\tFINAL EQUITY\tTRADES\tWIN RATE\tMAX DD %%\tPARAMETERS\n", report.Metric)

	for _, result := range report.Top(top) {
		fmt.Fprintf(tw, "%d\t%.4f\t%.2f\t%.0f\t%.2f\t%.2f\t%s\n",
			result.Rank,
			result.Metrics[report.Metric],
			result.FinalEquity,
			result.Metrics[metrics.TotalTrades],
			result.Metrics[metrics.WinRate],
			result.Metrics[metrics.MaxDrawdownPercent],
			result.Parameters.Key(),
		)
	}

	_ = tw.Flush()

	for _, failure := range report.Failures {
		fmt.Fprintf(out, "failed %s: %v\n", failure.Parameters.Key(), failure.Cause)
	}
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	path := cmd.String("out")
	if path == "" {
		fmt.Println(schema)

		return nil
	}

	if err := os.WriteFile(path, []byte(schema), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

func generateAction(_ context.Context, cmd *cli.Command) error {
	gen := mocks.NewDataGenerator(int64(cmd.Int("seed")))

	genConfig := mocks.DefaultConfig()
	genConfig.Count = int(cmd.Int("count"))
	genConfig.Volatility = cmd.Float("volatility")

	if genConfig.Count <= 0 {
		return fmt.Errorf("count must be positive, got %d", genConfig.Count)
	}

	path := cmd.String("out")
	if err := mocks.WriteCSV(path, gen.Generate(genConfig)); err != nil {
		return err
	}

	fmt.Printf("wrote %d bars to %s\n", genConfig.Count, path)

	return nil
}
