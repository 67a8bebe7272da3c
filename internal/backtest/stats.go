package backtest

import (
	"fmt"
	"math"

	"github.com/marketgrid/signalcore/internal/types"
)

// computeStats aggregates closed trades and the equity curve into
// summary statistics. trades must be in entry order; equityCurve starts
// at the initial equity and gains one point per closed trade.
func computeStats(trades []types.TradeRecord, equityCurve []float64) types.BacktestStats {
	stats := types.BacktestStats{
		TotalTrades: len(trades),
	}

	var (
		barsHeld   int
		lossStreak int
	)

	for _, trade := range trades {
		barsHeld += trade.BarsHeld

		if trade.PnL > 0 {
			stats.WinningTrades++
			stats.GrossProfit += trade.PnL
			lossStreak = 0
		} else {
			stats.LosingTrades++
			stats.GrossLoss += -trade.PnL
			lossStreak++

			if lossStreak > stats.MaxConsecutiveLosses {
				stats.MaxConsecutiveLosses = lossStreak
			}
		}

		stats.TotalPnL += trade.PnL
	}

	if stats.TotalTrades > 0 {
		stats.WinRate = float64(stats.WinningTrades) / float64(stats.TotalTrades)
		stats.AvgBarsHeld = float64(barsHeld) / float64(stats.TotalTrades)
		stats.ProfitFactor = profitFactor(stats.GrossProfit, stats.GrossLoss)
	}

	if len(equityCurve) > 0 {
		stats.FinalEquity = equityCurve[len(equityCurve)-1]
		stats.PeakEquity, stats.MaxDrawdown = drawdown(equityCurve)
	}

	return stats
}

// profitFactor is gross profit over gross loss, with +Inf as the
// sentinel for a run that never lost.
func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}

		return 0
	}

	return grossProfit / grossLoss
}

// drawdown returns the peak equity and the largest fractional
// peak-to-trough decline of the curve.
func drawdown(curve []float64) (peak, maxDD float64) {
	peak = curve[0]

	for _, equity := range curve {
		if equity > peak {
			peak = equity
		}

		if peak > 0 {
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	return peak, maxDD
}

// applyGate evaluates the approval thresholds against the stats,
// returning the approval flag and the reasons for any shortfall.
func applyGate(stats types.BacktestStats, cfg Config) (bool, []string) {
	var reasons []string

	if stats.TotalTrades < cfg.MinTrades {
		reasons = append(reasons,
			fmt.Sprintf("%d trades below minimum %d", stats.TotalTrades, cfg.MinTrades))
	}

	if stats.WinRate < cfg.MinWinRate {
		reasons = append(reasons,
			fmt.Sprintf("win rate %.1f%% below minimum %.1f%%", stats.WinRate*100, cfg.MinWinRate*100))
	}

	if stats.ProfitFactor < cfg.MinProfitFactor {
		reasons = append(reasons,
			fmt.Sprintf("profit factor %.2f below minimum %.2f", stats.ProfitFactor, cfg.MinProfitFactor))
	}

	return len(reasons) == 0, reasons
}
