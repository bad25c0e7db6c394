package datasource

import (
	"database/sql"
	"fmt"
	"iter"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"go.uber.org/zap"
)

type DuckDBDataSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDataSource creates a DuckDB data source. path is the DuckDB database
// file; an empty path keeps the database in memory.
func NewDataSource(path string, logger *logger.Logger) (DataSource, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	return &DuckDBDataSource{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize implements DataSource.
func (d *DuckDBDataSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB data source", zap.String("path", path))

	var reader string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		reader = "read_csv_auto"
	case ".parquet":
		reader = "read_parquet"
	default:
		return errors.Newf(errors.ErrCodeDataSourceUnavailable, "unsupported bar file %q: expected .csv or .parquet", path)
	}

	// First drop the view if it exists
	if _, err := d.db.Exec(`DROP VIEW IF EXISTS market_data;`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop existing view", err)
	}

	// Squirrel has no CREATE VIEW, and table functions take no bind parameters
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM %s('%s');`,
		reader, strings.ReplaceAll(path, "'", "''"))

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to read bars from %s", path)
	}

	return nil
}

func (d *DuckDBDataSource) window(builder squirrel.SelectBuilder, start optional.Option[time.Time], end optional.Option[time.Time]) squirrel.SelectBuilder {
	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	return builder
}

// Count implements DataSource.
func (d *DuckDBDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query, args, err := d.window(d.sq.Select("COUNT(*)").From("market_data"), start, end).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements DataSource.
func (d *DuckDBDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) iter.Seq2[types.Bar, error] {
	return func(yield func(types.Bar, error) bool) {
		d.logger.Debug("Reading bars from DuckDB")

		query, args, err := d.window(d.sq.Select("*").From("market_data"), start, end).OrderBy("time ASC").ToSql()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build bar query", err))

			return
		}

		rows, err := d.db.Query(query, args...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err))

			return
		}
		defer rows.Close()

		columns, err := rows.Columns()
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read columns", err))

			return
		}

		for _, required := range RequiredColumns {
			if !slices.Contains(columns, required) {
				yield(types.Bar{}, errors.Newf(errors.ErrCodeMalformedBar, "bar file has no %q column", required))

				return
			}
		}

		values := make([]any, len(columns))
		pointers := make([]any, len(columns))

		for i := range values {
			pointers[i] = &values[i]
		}

		index := 0

		for rows.Next() {
			if err := rows.Scan(pointers...); err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err))

				return
			}

			bar, err := toBar(index, columns, values)
			if err != nil {
				yield(types.Bar{}, err)

				return
			}

			if !yield(bar, nil) {
				return
			}

			index++
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err))
		}
	}
}

// Close implements DataSource.
func (d *DuckDBDataSource) Close() error {
	return d.db.Close()
}

// toBar maps one scanned row onto a bar. NULL signal cells are left absent;
// a NaN or infinite signal is a data error.
func toBar(index int, columns []string, values []any) (types.Bar, error) {
	bar := types.Bar{Index: index}
	signals := make(map[string]float64)

	for i, column := range columns {
		value := values[i]

		switch column {
		case "time":
			t, ok := value.(time.Time)
			if !ok {
				return types.Bar{}, errors.Newf(errors.ErrCodeMalformedBar, "row %d: time is %T, not a timestamp", index, value)
			}

			bar.Time = t

			continue
		case "open", "high", "low", "close", "volume":
			f, ok := toFloat(value)
			if !ok {
				return types.Bar{}, errors.Newf(errors.ErrCodeMalformedBar, "row %d: %s is %v", index, column, value)
			}

			switch column {
			case "open":
				bar.Open = f
			case "high":
				bar.High = f
			case "low":
				bar.Low = f
			case "close":
				bar.Close = f
			case "volume":
				bar.Volume = f
			}

			continue
		}

		f, ok := toFloat(value)
		if !ok {
			continue
		}

		if math.IsNaN(f) || math.IsInf(f, 0) {
			return types.Bar{}, errors.Newf(errors.ErrCodeNaNValue, "row %d: signal %s is %v", index, column, f)
		}

		signals[column] = f
	}

	bar.Signals = types.NewSignals(signals)

	return bar, nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint8:
		return float64(v), true
	default:
		return 0, false
	}
}
