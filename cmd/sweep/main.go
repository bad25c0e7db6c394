package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/version"
	"github.com/urfave/cli/v3"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "sweep",
		Usage:   "Run parameter sweeps over historical bars",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run every cell of a sweep file and rank the results",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the sweep `FILE`",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to a CSV or Parquet bar file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "results",
						Aliases: []string{"o"},
						Usage:   "Directory the results are written to",
						Value:   "results",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   fmt.Sprintf("Concurrent runs (default from config, else %d)", runtime.NumCPU()),
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Base seed, overrides the config",
					},
					&cli.StringFlag{
						Name:  "metric",
						Usage: fmt.Sprintf("Ranking metric, overrides the config (default %s)", metrics.FinalEquity),
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of ranked runs to print and summarise",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "no-db",
						Usage: "Skip the DuckDB store and Parquet export",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Hide the progress bar",
					},
					&cli.StringFlag{
						Name:  "log-level",
						Usage: "Log level: debug, info, warn, error",
						Value: "warn",
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of a sweep file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write the schema to a file instead of stdout",
					},
				},
				Action: schemaAction,
			},
			{
				Name:  "generate",
				Usage: "Write synthetic bars to a CSV file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Path of the CSV file",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "count",
						Aliases: []string{"n"},
						Usage:   "Number of bars",
						Value:   10000,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Generator seed",
						Value: 42,
					},
					&cli.FloatFlag{
						Name:  "volatility",
						Usage: "Per bar volatility",
						Value: 0.002,
					},
				},
				Action: generateAction,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
