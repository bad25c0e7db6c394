package writer

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-sweep/internal/logger"
	"github.com/rxtech-lab/argo-sweep/internal/metrics"
	"github.com/rxtech-lab/argo-sweep/internal/types"
	"github.com/rxtech-lab/argo-sweep/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBStore keeps ranked results and their trade logs in a DuckDB database.
type DuckDBStore struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBStore opens (or creates) the database at path and its tables.
// Use ":memory:" for an in-memory store.
func NewDuckDBStore(path string, log *logger.Logger) (*DuckDBStore, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	dsn := path
	if path == ":memory:" {
		dsn = ""
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to open database %s", path)
	}

	store := &DuckDBStore{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := store.Initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return store, nil
}

// Initialize creates the results and trades tables.
func (s *DuckDBStore) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			sweep_id TEXT,
			run_id TEXT,
			rank INTEGER,
			cell INTEGER,
			parameters TEXT,
			final_equity DOUBLE,
			pnl DOUBLE,
			pnl_pct DOUBLE,
			total_trades INTEGER,
			open_trades INTEGER,
			win_rate DOUBLE,
			profit_factor DOUBLE,
			max_drawdown DOUBLE,
			max_drawdown_pct DOUBLE,
			sharpe DOUBLE,
			sortino DOUBLE,
			total_fees DOUBLE,
			elapsed_ms BIGINT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create results table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			sweep_id TEXT,
			run_id TEXT,
			open_bar INTEGER,
			close_bar INTEGER,
			open_time TIMESTAMP,
			close_time TIMESTAMP,
			side TEXT,
			entry_price DOUBLE,
			exit_price DOUBLE,
			size DOUBLE,
			exit_reason TEXT,
			pnl DOUBLE,
			fees DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to create trades table", err)
	}

	return nil
}

// Write inserts every result and its trades in a single transaction.
func (s *DuckDBStore) Write(report types.SweepReport) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to begin transaction", err)
	}

	for _, result := range report.Results {
		if err := s.insertResult(tx, report.ID, result); err != nil {
			_ = tx.Rollback()

			return err
		}

		for _, trade := range result.Trades {
			if err := s.insertTrade(tx, report.ID, trade); err != nil {
				_ = tx.Rollback()

				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to commit results", err)
	}

	s.logger.Debug("Stored sweep results",
		zap.String("sweep_id", report.ID),
		zap.Int("results", len(report.Results)),
	)

	return nil
}

func (s *DuckDBStore) insertResult(tx *sql.Tx, sweepID string, result types.SweepResult) error {
	metric := func(name string) float64 {
		v, _ := result.Metric(name)

		return v
	}

	_, err := s.sq.
		Insert(ResultsTable).
		Columns(
			"sweep_id", "run_id", "rank", "cell", "parameters", "final_equity", "pnl", "pnl_pct",
			"total_trades", "open_trades", "win_rate", "profit_factor", "max_drawdown",
			"max_drawdown_pct", "sharpe", "sortino", "total_fees", "elapsed_ms",
		).
		Values(
			sweepID, result.RunID, result.Rank, result.Index, result.Parameters.Key(),
			result.FinalEquity, metric(metrics.PnL), metric(metrics.PnLPercent),
			int(metric(metrics.TotalTrades)), int(metric(metrics.OpenTrades)),
			metric(metrics.WinRate), metric(metrics.ProfitFactor), metric(metrics.MaxDrawdown),
			metric(metrics.MaxDrawdownPercent), metric(metrics.SharpeRatio), metric(metrics.SortinoRatio),
			metric(metrics.TotalFees), result.Elapsed.Milliseconds(),
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to insert result %s", result.RunID)
	}

	return nil
}

func (s *DuckDBStore) insertTrade(tx *sql.Tx, sweepID string, trade types.TradeRecord) error {
	_, err := s.sq.
		Insert(TradesTable).
		Columns(
			"sweep_id", "run_id", "open_bar", "close_bar", "open_time", "close_time", "side",
			"entry_price", "exit_price", "size", "exit_reason", "pnl", "fees",
		).
		Values(
			sweepID, trade.RunID, trade.OpenBar, nullable(trade.CloseBar), trade.OpenTime,
			nullable(trade.CloseTime), string(trade.Side), trade.EntryPrice, nullable(trade.ExitPrice),
			trade.Size, exitReason(trade.ExitReason),
			trade.PnL, trade.Fees,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to insert trade for %s", trade.RunID)
	}

	return nil
}

func nullable[T any](o optional.Option[T]) any {
	if o.IsNone() {
		return nil
	}

	return o.Unwrap()
}

func exitReason(o optional.Option[types.ExitReason]) any {
	if o.IsNone() {
		return nil
	}

	return string(o.Unwrap())
}

// Count returns the number of rows in a table.
func (s *DuckDBStore) Count(table string) (int, error) {
	query, args, err := s.sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to count %s", table)
	}

	return count, nil
}

// Export copies both tables to Parquet files in dir.
func (s *DuckDBStore) Export(dir string) error {
	for _, table := range []string{ResultsTable, TradesTable} {
		path := filepath.Join(dir, table+parquetSuffix)

		_, err := s.db.Exec(fmt.Sprintf("COPY %s TO '%s' (FORMAT PARQUET)", table, strings.ReplaceAll(path, "'", "''")))
		if err != nil {
			return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to export %s", table)
		}

		s.logger.Info("Exported table", zap.String("table", table), zap.String("path", path))
	}

	return nil
}

func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
