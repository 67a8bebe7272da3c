// Package backtest replays the signal rule-set bar-by-bar over a
// historical series, simulates the resulting trades and gates the rule
// on the aggregate outcome. The replay is a pure function of the series
// and the engine configuration: no randomness, and the signal at bar t
// only ever sees bars up to and including t.
package backtest

import (
	"context"

	"github.com/creasty/defaults"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/engine"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// Config holds the approval gate thresholds and replay options.
type Config struct {
	// MinTrades, MinWinRate and MinProfitFactor form the approval gate.
	MinTrades       int     `yaml:"min_trades" default:"5"`
	MinWinRate      float64 `yaml:"min_win_rate" default:"0.45"`
	MinProfitFactor float64 `yaml:"min_profit_factor" default:"1.2"`
	// ShowProgress renders a progress bar during the replay.
	ShowProgress bool `yaml:"show_progress"`
}

// DefaultConfig returns the simulator configuration with defaults applied.
func DefaultConfig() Config {
	var cfg Config
	_ = defaults.Set(&cfg)

	return cfg
}

// Validate rejects meaningless gate thresholds.
func (c Config) Validate() error {
	if c.MinTrades < 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold, "min_trades must be at least 1, got %d", c.MinTrades)
	}

	if c.MinWinRate < 0 || c.MinWinRate > 1 {
		return errors.Newf(errors.ErrCodeInvalidRatio, "min_win_rate must be in [0,1], got %g", c.MinWinRate)
	}

	if c.MinProfitFactor <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRatio, "min_profit_factor must be positive, got %g", c.MinProfitFactor)
	}

	return nil
}

// Simulator replays an engine's rule-set over historical data.
type Simulator struct {
	engine *engine.Engine
	cfg    Config
	logger *logger.Logger
}

// New builds a Simulator around an already-validated engine.
func New(eng *engine.Engine, cfg Config, log *logger.Logger) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Simulator{
		engine: eng,
		cfg:    cfg,
		logger: log,
	}, nil
}

// position is an open simulated trade during the replay.
type position struct {
	direction  types.Direction
	entryIndex int
	entryPrice float64
	stopLoss   float64
	takeProfit float64
	quantity   float64
}

// Run replays the series. When an account is supplied, positions are
// sized by its risk fraction and equity compounds across trades;
// otherwise every trade is one unit and the equity curve starts at zero.
func (s *Simulator) Run(ctx context.Context, series types.PriceSeries, account optional.Option[types.AccountState]) (types.BacktestResult, error) {
	if err := series.Validate(1); err != nil {
		return types.BacktestResult{}, err
	}

	ledger, err := NewLedger(s.logger)
	if err != nil {
		return types.BacktestResult{}, err
	}
	defer ledger.Close()

	if err := ledger.Initialize(); err != nil {
		return types.BacktestResult{}, err
	}

	var (
		equity       float64
		riskFraction float64
	)

	if acct, err := account.Take(); err == nil {
		equity = acct.Balance
		riskFraction = acct.RiskFraction
	}

	equityCurve := []float64{equity}

	start := s.engine.MinBars() - 1
	if start < 0 {
		start = 0
	}

	n := series.Len()

	var bar *progressbar.ProgressBar
	if s.cfg.ShowProgress && n > start {
		bar = progressbar.Default(int64(n-start), "replaying "+series.Symbol)
	}

	var open *position

	closeTrade := func(exitIndex int, exitPrice float64, reason types.ExitReason) error {
		record := types.TradeRecord{
			Symbol:     series.Symbol,
			Direction:  open.direction,
			EntryIndex: open.entryIndex,
			ExitIndex:  exitIndex,
			EntryTime:  series.Bars[open.entryIndex].Time,
			ExitTime:   series.Bars[exitIndex].Time,
			EntryPrice: open.entryPrice,
			ExitPrice:  exitPrice,
			Quantity:   open.quantity,
			BarsHeld:   exitIndex - open.entryIndex,
			ExitReason: reason,
		}

		record, err := ledger.Record(record)
		if err != nil {
			return err
		}

		equity += record.PnL
		equityCurve = append(equityCurve, equity)
		open = nil

		return nil
	}

	for i := start; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return types.BacktestResult{}, errors.Wrap(errors.ErrCodeBacktestFailed, "replay cancelled", err)
		}

		if bar != nil {
			_ = bar.Add(1)
		}

		// Exit handling first: a position opened at bar i is only
		// exposed to bars after i. The stop is checked before the
		// target within the same bar.
		if open != nil && i > open.entryIndex {
			current := series.Bars[i]
			exitPrice, reason, hit := exitLevel(*open, current)

			switch {
			case hit:
				if err := closeTrade(i, exitPrice, reason); err != nil {
					return types.BacktestResult{}, err
				}
			case i == n-1:
				if err := closeTrade(i, current.Close, types.ExitReasonEndOfData); err != nil {
					return types.BacktestResult{}, err
				}
			}
		}

		if open != nil || i == n-1 {
			continue
		}

		window := series.Truncate(i)
		signal, err := s.engine.Evaluate(ctx, *window)
		if err != nil {
			return types.BacktestResult{}, err
		}

		if signal.Direction == types.DirectionNeutral || signal.Setup == nil {
			continue
		}

		open = &position{
			direction:  signal.Direction,
			entryIndex: i,
			entryPrice: signal.Setup.Entry,
			stopLoss:   signal.Setup.StopLoss,
			takeProfit: signal.Setup.TakeProfit,
			quantity:   positionQuantity(equity, riskFraction, signal.Setup),
		}
	}

	trades, err := ledger.Trades()
	if err != nil {
		return types.BacktestResult{}, err
	}

	stats := computeStats(trades, equityCurve)
	approved, reasons := applyGate(stats, s.cfg)

	s.logger.Info("backtest finished",
		zap.String("symbol", series.Symbol),
		zap.Int("trades", stats.TotalTrades),
		zap.Float64("win_rate", stats.WinRate),
		zap.Float64("total_pnl", stats.TotalPnL),
		zap.Bool("approved", approved),
	)

	return types.BacktestResult{
		Symbol:      series.Symbol,
		Stats:       stats,
		Trades:      trades,
		EquityCurve: equityCurve,
		Approved:    approved,
		Reasons:     reasons,
	}, nil
}

// exitLevel reports whether the bar crosses the position's stop or
// target. The stop is checked first, so a bar that sweeps both exits
// conservatively at the stop.
func exitLevel(p position, bar types.PriceBar) (float64, types.ExitReason, bool) {
	if p.direction == types.DirectionBuy {
		if bar.Low <= p.stopLoss {
			return p.stopLoss, types.ExitReasonStopLoss, true
		}

		if bar.High >= p.takeProfit {
			return p.takeProfit, types.ExitReasonTakeProfit, true
		}
	} else {
		if bar.High >= p.stopLoss {
			return p.stopLoss, types.ExitReasonStopLoss, true
		}

		if bar.Low <= p.takeProfit {
			return p.takeProfit, types.ExitReasonTakeProfit, true
		}
	}

	return 0, "", false
}

// positionQuantity sizes a trade by the account risk fraction, or one
// unit when no account is in play.
func positionQuantity(equity, riskFraction float64, setup *types.Setup) float64 {
	if equity <= 0 || riskFraction <= 0 {
		return 1
	}

	stopDist := setup.Entry - setup.StopLoss
	if stopDist < 0 {
		stopDist = -stopDist
	}

	if stopDist == 0 {
		return 1
	}

	return equity * riskFraction / stopDist
}
