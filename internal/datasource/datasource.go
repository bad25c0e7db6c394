// Package datasource loads historical bars from CSV or Parquet files through DuckDB.
package datasource

import (
	"iter"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/types"
)

//go:generate mockgen -destination=../../mocks/mock_datasource.go -package=mocks github.com/rxtech-lab/argo-sweep/internal/datasource DataSource

// Columns every bar file must provide. Any other numeric column is carried
// into the bar as a signal of the same name.
var RequiredColumns = []string{"time", "open", "high", "low", "close", "volume"}

type DataSource interface {
	// Initialize points the data source at a CSV or Parquet file.
	Initialize(path string) error
	// ReadAll yields bars in time order, indexed from zero within the window.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.Bar, error]
	// Count returns the number of bars in the window.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources
	Close() error
}

// Load collects every bar in the window.
func Load(ds DataSource, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	count, err := ds.Count(start, end)
	if err != nil {
		return nil, err
	}

	bars := make([]types.Bar, 0, count)

	for bar, err := range ds.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
