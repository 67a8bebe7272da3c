package backtest

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/marketgrid/signalcore/internal/engine"
	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/types"
)

type BacktestTestSuite struct {
	suite.Suite

	ctx context.Context
}

func TestBacktestSuite(t *testing.T) {
	suite.Run(t, new(BacktestTestSuite))
}

func (s *BacktestTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *BacktestTestSuite) newSimulator(cfg Config) *Simulator {
	eng, err := engine.New(engine.DefaultConfig(), indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().NoError(err)

	sim, err := New(eng, cfg, logger.NewNopLogger())
	s.Require().NoError(err)

	return sim
}

func risingSeries(n int) types.PriceSeries {
	bars := make([]types.PriceBar, n)
	base := time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)
	price := 100.0

	for i := range bars {
		open := price
		price *= 1.005
		bars[i] = types.PriceBar{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   price * 1.001,
			Low:    open * 0.999,
			Close:  price,
			Volume: 1000 + float64(i),
		}
	}

	return types.PriceSeries{Symbol: "RISE", Bars: bars}
}

func tradeWithPnL(pnl float64, barsHeld int) types.TradeRecord {
	entry := 100.0

	return types.TradeRecord{
		Symbol:     "TEST",
		Direction:  types.DirectionBuy,
		EntryPrice: entry,
		ExitPrice:  entry + pnl,
		Quantity:   1,
		PnL:        pnl,
		BarsHeld:   barsHeld,
	}
}

func (s *BacktestTestSuite) TestStatsTwoWinsOneLoss() {
	trades := []types.TradeRecord{
		tradeWithPnL(100, 3),
		tradeWithPnL(-50, 2),
		tradeWithPnL(100, 4),
	}
	curve := []float64{0, 100, 50, 150}

	stats := computeStats(trades, curve)

	s.Equal(3, stats.TotalTrades)
	s.Equal(2, stats.WinningTrades)
	s.Equal(1, stats.LosingTrades)
	s.InDelta(0.667, stats.WinRate, 0.001)
	s.InDelta(4.0, stats.ProfitFactor, 1e-12)
	s.InDelta(150.0, stats.TotalPnL, 1e-12)
	s.Equal(1, stats.MaxConsecutiveLosses)
	s.InDelta(3.0, stats.AvgBarsHeld, 1e-12)
	s.True(stats.HasProfitFactor())
}

func (s *BacktestTestSuite) TestProfitFactorSentinel() {
	trades := []types.TradeRecord{tradeWithPnL(100, 1), tradeWithPnL(40, 1)}
	stats := computeStats(trades, []float64{0, 100, 140})

	s.True(math.IsInf(stats.ProfitFactor, 1))
	s.False(stats.HasProfitFactor())
}

func (s *BacktestTestSuite) TestStatsNoTrades() {
	stats := computeStats(nil, []float64{0})

	s.Zero(stats.TotalTrades)
	s.Zero(stats.WinRate)
	s.Zero(stats.ProfitFactor)
}

func (s *BacktestTestSuite) TestDrawdownComputation() {
	curve := []float64{1000, 1200, 900, 1100, 800}
	peak, dd := drawdown(curve)

	s.InDelta(1200.0, peak, 1e-12)
	// Trough 800 against peak 1200.
	s.InDelta(1.0/3.0, dd, 1e-12)
}

func (s *BacktestTestSuite) TestConsecutiveLossStreak() {
	trades := []types.TradeRecord{
		tradeWithPnL(-10, 1),
		tradeWithPnL(-10, 1),
		tradeWithPnL(50, 1),
		tradeWithPnL(-10, 1),
		tradeWithPnL(-10, 1),
		tradeWithPnL(-10, 1),
	}

	stats := computeStats(trades, []float64{0})
	s.Equal(3, stats.MaxConsecutiveLosses)
}

func (s *BacktestTestSuite) TestLedgerRoundTrip() {
	ledger, err := NewLedger(logger.NewNopLogger())
	s.Require().NoError(err)
	defer ledger.Close()
	s.Require().NoError(ledger.Initialize())

	base := time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC)
	recorded, err := ledger.Record(types.TradeRecord{
		Symbol:     "TEST",
		Direction:  types.DirectionBuy,
		EntryIndex: 10,
		ExitIndex:  14,
		EntryTime:  base,
		ExitTime:   base.Add(4 * time.Minute),
		EntryPrice: 100,
		ExitPrice:  108,
		Quantity:   5,
		BarsHeld:   4,
		ExitReason: types.ExitReasonTakeProfit,
	})
	s.Require().NoError(err)
	s.NotEmpty(recorded.ID)
	s.InDelta(40.0, recorded.PnL, 1e-9)

	trades, err := ledger.Trades()
	s.Require().NoError(err)
	s.Require().Len(trades, 1)
	s.Equal(recorded.ID, trades[0].ID)
	s.Equal(types.DirectionBuy, trades[0].Direction)
	s.Equal(types.ExitReasonTakeProfit, trades[0].ExitReason)
	s.InDelta(40.0, trades[0].PnL, 1e-9)

	count, err := ledger.Count()
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *BacktestTestSuite) TestRealizedPnLShortSide() {
	s.InDelta(20.0, RealizedPnL(types.DirectionSell, 100, 96, 5), 1e-9)
	s.InDelta(-20.0, RealizedPnL(types.DirectionSell, 100, 104, 5), 1e-9)
	s.InDelta(20.0, RealizedPnL(types.DirectionBuy, 100, 104, 5), 1e-9)
}

func (s *BacktestTestSuite) TestRunOnTrendingSeries() {
	sim := s.newSimulator(DefaultConfig())

	result, err := sim.Run(s.ctx, risingSeries(320), nil)
	s.Require().NoError(err)

	s.Equal("RISE", result.Symbol)
	s.NotEmpty(result.Trades)
	s.Equal(result.Stats.TotalTrades, len(result.Trades))

	// A monotonic rise never touches a stop two ATRs below.
	for _, trade := range result.Trades {
		s.Equal(types.DirectionBuy, trade.Direction)
		s.NotEqual(types.ExitReasonStopLoss, trade.ExitReason)
		s.Greater(trade.ExitIndex, trade.EntryIndex)
	}

	s.Equal(1.0, result.Stats.WinRate)
	s.Positive(result.Stats.TotalPnL)
}

func (s *BacktestTestSuite) TestRunIsDeterministic() {
	sim := s.newSimulator(DefaultConfig())
	series := risingSeries(320)

	a, err := sim.Run(s.ctx, series, nil)
	s.Require().NoError(err)
	b, err := sim.Run(s.ctx, series, nil)
	s.Require().NoError(err)

	s.Equal(len(a.Trades), len(b.Trades))
	s.Equal(a.Stats, b.Stats)
	s.Equal(a.EquityCurve, b.EquityCurve)

	for i := range a.Trades {
		// Ledger ids are fresh per run; everything else must match.
		a.Trades[i].ID = ""
		b.Trades[i].ID = ""
	}

	s.Equal(a.Trades, b.Trades)
}

func (s *BacktestTestSuite) TestNoLookahead() {
	sim := s.newSimulator(DefaultConfig())
	series := risingSeries(320)

	result, err := sim.Run(s.ctx, series, nil)
	s.Require().NoError(err)
	s.Require().NotEmpty(result.Trades)

	// Re-running the engine on the prefix ending at the entry bar must
	// reproduce the signal the simulator acted on.
	eng, err := engine.New(engine.DefaultConfig(), indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().NoError(err)

	first := result.Trades[0]
	window := series.Truncate(first.EntryIndex)

	signal, err := eng.Evaluate(s.ctx, *window)
	s.Require().NoError(err)
	s.Equal(first.Direction, signal.Direction)
	s.Require().NotNil(signal.Setup)
	s.InDelta(first.EntryPrice, signal.Setup.Entry, 1e-9)
}

func (s *BacktestTestSuite) TestAccountSizingCompounds() {
	sim := s.newSimulator(DefaultConfig())
	account := optional.Some(types.AccountState{
		Balance:      10000,
		PeakEquity:   10000,
		RiskFraction: 0.002,
	})

	result, err := sim.Run(s.ctx, risingSeries(320), account)
	s.Require().NoError(err)
	s.Require().NotEmpty(result.Trades)

	// Risk-fraction sizing, not unit sizing.
	s.NotEqual(1.0, result.Trades[0].Quantity)
	s.InDelta(10000.0, result.EquityCurve[0], 1e-9)
	s.Greater(result.Stats.FinalEquity, 10000.0)
}

func (s *BacktestTestSuite) TestApprovalGate() {
	stats := types.BacktestStats{
		TotalTrades:  10,
		WinRate:      0.6,
		ProfitFactor: 2.0,
	}

	approved, reasons := applyGate(stats, DefaultConfig())
	s.True(approved)
	s.Empty(reasons)

	stats.TotalTrades = 3
	approved, reasons = applyGate(stats, DefaultConfig())
	s.False(approved)
	s.Len(reasons, 1)

	stats.WinRate = 0.2
	stats.ProfitFactor = 0.8
	approved, reasons = applyGate(stats, DefaultConfig())
	s.False(approved)
	s.Len(reasons, 3)
}

func (s *BacktestTestSuite) TestGateFailureKeepsResultIntact() {
	cfg := DefaultConfig()
	cfg.MinTrades = 10000 // unreachable

	sim := s.newSimulator(cfg)

	result, err := sim.Run(s.ctx, risingSeries(320), nil)
	s.Require().NoError(err)

	s.False(result.Approved)
	s.NotEmpty(result.Reasons)
	s.NotEmpty(result.Trades)
	s.Positive(result.Stats.TotalPnL)
}

func (s *BacktestTestSuite) TestCancelledContext() {
	sim := s.newSimulator(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, risingSeries(320), nil)
	s.Require().Error(err)
}
