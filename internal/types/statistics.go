package types

import (
	"math"
	"time"
)

// ExitReason records why a simulated trade was closed.
type ExitReason string

const (
	ExitReasonStopLoss   ExitReason = "stop_loss"
	ExitReasonTakeProfit ExitReason = "take_profit"
	ExitReasonEndOfData  ExitReason = "end_of_data"
)

// TradeRecord is one simulated round-trip trade.
type TradeRecord struct {
	ID         string     `yaml:"id"`
	Symbol     string     `yaml:"symbol"`
	Direction  Direction  `yaml:"direction"`
	EntryIndex int        `yaml:"entry_index"`
	ExitIndex  int        `yaml:"exit_index"`
	EntryTime  time.Time  `yaml:"entry_time"`
	ExitTime   time.Time  `yaml:"exit_time"`
	EntryPrice float64    `yaml:"entry_price"`
	ExitPrice  float64    `yaml:"exit_price"`
	Quantity   float64    `yaml:"quantity"`
	PnL        float64    `yaml:"pnl"`
	BarsHeld   int        `yaml:"bars_held"`
	ExitReason ExitReason `yaml:"exit_reason"`
}

// BacktestStats summarizes the simulated trades.
type BacktestStats struct {
	TotalTrades   int     `yaml:"total_trades"`
	WinningTrades int     `yaml:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades"`
	// WinRate is winning trades over total, as a fraction in [0,1].
	WinRate     float64 `yaml:"win_rate"`
	GrossProfit float64 `yaml:"gross_profit"`
	GrossLoss   float64 `yaml:"gross_loss"`
	// ProfitFactor is gross profit over gross loss. +Inf when gross loss
	// is zero and gross profit is positive; zero when there are no trades.
	ProfitFactor float64 `yaml:"profit_factor"`
	TotalPnL     float64 `yaml:"total_pnl"`
	// MaxDrawdown is the largest fractional peak-to-trough decline of the
	// equity curve, in [0,1].
	MaxDrawdown          float64 `yaml:"max_drawdown"`
	MaxConsecutiveLosses int     `yaml:"max_consecutive_losses"`
	AvgBarsHeld          float64 `yaml:"avg_bars_held"`
	FinalEquity          float64 `yaml:"final_equity"`
	PeakEquity           float64 `yaml:"peak_equity"`
}

// BacktestResult is the complete outcome of one simulator run.
type BacktestResult struct {
	Symbol      string        `yaml:"symbol"`
	Stats       BacktestStats `yaml:"stats"`
	Trades      []TradeRecord `yaml:"trades"`
	EquityCurve []float64     `yaml:"equity_curve"`
	// Approved reports whether the stats cleared the validation gate
	// (minimum trades, win rate, profit factor). A rejected backtest
	// never invalidates the SignalResult; it is advisory for the caller.
	Approved bool     `yaml:"approved"`
	Reasons  []string `yaml:"reasons"`
}

// HasProfitFactor reports whether the profit factor is defined and finite.
func (s BacktestStats) HasProfitFactor() bool {
	return s.TotalTrades > 0 && !math.IsInf(s.ProfitFactor, 1)
}
