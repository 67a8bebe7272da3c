package backtest

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// Ledger persists simulated trades to an in-memory DuckDB database so a
// run's trades can be queried and aggregated with SQL after the replay.
type Ledger struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewLedger opens an in-memory trade ledger.
func NewLedger(log *logger.Logger) (*Ledger, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerFailure, "failed to open ledger database", err)
	}

	return &Ledger{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the trades table.
func (l *Ledger) Initialize() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			trade_id TEXT PRIMARY KEY,
			symbol TEXT,
			direction TEXT,
			entry_index INTEGER,
			exit_index INTEGER,
			entry_time TIMESTAMP,
			exit_time TIMESTAMP,
			entry_price DOUBLE,
			exit_price DOUBLE,
			quantity DOUBLE,
			pnl DOUBLE,
			bars_held INTEGER,
			exit_reason TEXT
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerFailure, "failed to create trades table", err)
	}

	return nil
}

// Record computes the realized P&L of a closed trade with decimal
// arithmetic, assigns it an id and inserts it. The completed record is
// returned for the caller's trade list.
func (l *Ledger) Record(trade types.TradeRecord) (types.TradeRecord, error) {
	trade.ID = uuid.New().String()
	trade.PnL = RealizedPnL(trade.Direction, trade.EntryPrice, trade.ExitPrice, trade.Quantity)

	insert := l.sq.
		Insert("trades").
		Columns(
			"trade_id", "symbol", "direction", "entry_index", "exit_index",
			"entry_time", "exit_time", "entry_price", "exit_price",
			"quantity", "pnl", "bars_held", "exit_reason",
		).
		Values(
			trade.ID, trade.Symbol, string(trade.Direction), trade.EntryIndex, trade.ExitIndex,
			trade.EntryTime, trade.ExitTime, trade.EntryPrice, trade.ExitPrice,
			trade.Quantity, trade.PnL, trade.BarsHeld, string(trade.ExitReason),
		).
		RunWith(l.db)

	if _, err := insert.Exec(); err != nil {
		return types.TradeRecord{}, errors.Wrap(errors.ErrCodeLedgerFailure, "failed to insert trade", err)
	}

	l.logger.Debug("trade recorded",
		zap.String("trade_id", trade.ID),
		zap.String("symbol", trade.Symbol),
		zap.Float64("pnl", trade.PnL),
	)

	return trade, nil
}

// Trades returns every recorded trade in entry order.
func (l *Ledger) Trades() ([]types.TradeRecord, error) {
	query := l.sq.
		Select(
			"trade_id", "symbol", "direction", "entry_index", "exit_index",
			"entry_time", "exit_time", "entry_price", "exit_price",
			"quantity", "pnl", "bars_held", "exit_reason",
		).
		From("trades").
		OrderBy("entry_index").
		RunWith(l.db)

	rows, err := query.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerFailure, "failed to query trades", err)
	}
	defer rows.Close()

	var trades []types.TradeRecord

	for rows.Next() {
		var (
			trade                 types.TradeRecord
			direction, exitReason string
			entryTime, exitTime   time.Time
		)

		err := rows.Scan(
			&trade.ID, &trade.Symbol, &direction, &trade.EntryIndex, &trade.ExitIndex,
			&entryTime, &exitTime, &trade.EntryPrice, &trade.ExitPrice,
			&trade.Quantity, &trade.PnL, &trade.BarsHeld, &exitReason,
		)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeLedgerFailure, "failed to scan trade", err)
		}

		trade.Direction = types.Direction(direction)
		trade.ExitReason = types.ExitReason(exitReason)
		trade.EntryTime = entryTime
		trade.ExitTime = exitTime
		trades = append(trades, trade)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerFailure, "failed to iterate trades", err)
	}

	return trades, nil
}

// Count returns the number of recorded trades.
func (l *Ledger) Count() (int, error) {
	var count int

	err := l.sq.
		Select("COUNT(*)").
		From("trades").
		RunWith(l.db).
		QueryRow().
		Scan(&count)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeLedgerFailure, "failed to count trades", err)
	}

	return count, nil
}

// Close releases the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RealizedPnL computes the round-trip profit with decimal arithmetic to
// keep repeated float subtraction out of the equity math.
func RealizedPnL(direction types.Direction, entryPrice, exitPrice, quantity float64) float64 {
	entry := decimal.NewFromFloat(entryPrice).Mul(decimal.NewFromFloat(quantity))
	exit := decimal.NewFromFloat(exitPrice).Mul(decimal.NewFromFloat(quantity))

	var pnl decimal.Decimal
	if direction == types.DirectionSell {
		pnl = entry.Sub(exit)
	} else {
		pnl = exit.Sub(entry)
	}

	out, _ := pnl.Float64()

	return out
}
