package analyzer

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/marketgrid/signalcore/internal/backtest"
	"github.com/marketgrid/signalcore/internal/engine"
	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/risk"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

type AnalyzerTestSuite struct {
	suite.Suite

	ctx      context.Context
	analyzer *Analyzer
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerTestSuite))
}

func (s *AnalyzerTestSuite) SetupTest() {
	s.ctx = context.Background()

	log := logger.NewNopLogger()

	eng, err := engine.New(engine.DefaultConfig(), indicator.DefaultConfig(), nil, log)
	s.Require().NoError(err)

	validator, err := risk.New(risk.DefaultConfig(), log)
	s.Require().NoError(err)

	sim, err := backtest.New(eng, backtest.DefaultConfig(), log)
	s.Require().NoError(err)

	s.analyzer = New(eng, validator, sim, log)
}

func buildSeries(symbol string, n int, step float64) types.PriceSeries {
	bars := make([]types.PriceBar, n)
	base := time.Date(2024, 7, 8, 14, 30, 0, 0, time.UTC)
	price := 100.0

	for i := range bars {
		open := price
		price *= 1 + step
		high := price
		low := open

		if high < low {
			high, low = low, high
		}

		bars[i] = types.PriceBar{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   open,
			High:   high * 1.001,
			Low:    low * 0.999,
			Close:  price,
			Volume: 1000 + float64(i),
		}
	}

	return types.PriceSeries{Symbol: symbol, Bars: bars}
}

func (s *AnalyzerTestSuite) TestAnalyzeTrendingSymbol() {
	decision, err := s.analyzer.Analyze(s.ctx, Request{
		Symbol: "UP",
		Series: buildSeries("UP", 250, 0.005),
	})
	s.Require().NoError(err)

	s.Equal("UP", decision.Symbol)
	s.Equal(types.DirectionBuy, decision.Signal.Direction)
	s.Require().NotNil(decision.Risk)
	s.Len(decision.Risk.Checks, 6)
	s.Nil(decision.Backtest)
}

func (s *AnalyzerTestSuite) TestNeutralSignalSkipsRiskValidation() {
	decision, err := s.analyzer.Analyze(s.ctx, Request{
		Symbol: "FLAT",
		Series: buildSeries("FLAT", 250, 0),
	})
	s.Require().NoError(err)

	s.Equal(types.DirectionNeutral, decision.Signal.Direction)
	s.Nil(decision.Risk)
	s.False(decision.Actionable())
}

func (s *AnalyzerTestSuite) TestMalformedSeriesIsDataError() {
	series := buildSeries("BAD", 250, 0.005)
	series.Bars[10].Time = series.Bars[9].Time // duplicate timestamp

	_, err := s.analyzer.Analyze(s.ctx, Request{Symbol: "BAD", Series: series})
	s.Require().Error(err)
	s.True(errors.IsDataError(err))
	s.True(errors.HasCode(err, errors.ErrCodeNonMonotonicSeries))
}

func (s *AnalyzerTestSuite) TestEmptySeriesIsDataError() {
	_, err := s.analyzer.Analyze(s.ctx, Request{Symbol: "EMPTY"})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeEmptySeries))
}

func (s *AnalyzerTestSuite) TestWarmupSeriesIsNeutralNotError() {
	decision, err := s.analyzer.Analyze(s.ctx, Request{
		Symbol: "SHORT",
		Series: buildSeries("SHORT", 40, 0.005),
	})
	s.Require().NoError(err)
	s.Equal(types.DirectionNeutral, decision.Signal.Direction)
}

func (s *AnalyzerTestSuite) TestAnalyzeWithBacktest() {
	decision, err := s.analyzer.Analyze(s.ctx, Request{
		Symbol:      "UP",
		Series:      buildSeries("UP", 320, 0.005),
		RunBacktest: true,
	})
	s.Require().NoError(err)

	s.Require().NotNil(decision.Backtest)
	s.NotEmpty(decision.Backtest.Trades)
}

func (s *AnalyzerTestSuite) TestAnalyzeWithAccount() {
	account := optional.Some(types.AccountState{
		Balance:      10000,
		PeakEquity:   10000,
		RiskFraction: 0.002,
	})

	decision, err := s.analyzer.Analyze(s.ctx, Request{
		Symbol:  "UP",
		Series:  buildSeries("UP", 250, 0.005),
		Account: account,
	})
	s.Require().NoError(err)

	s.Require().NotNil(decision.Risk)
	s.Positive(decision.Risk.PositionSize)
}

func (s *AnalyzerTestSuite) TestPortfolioFanout() {
	reqs := []Request{
		{Symbol: "UP", Series: buildSeries("UP", 250, 0.005)},
		{Symbol: "DOWN", Series: buildSeries("DOWN", 250, -0.005)},
		{Symbol: "FLAT", Series: buildSeries("FLAT", 250, 0)},
	}

	decisions := s.analyzer.AnalyzePortfolio(s.ctx, reqs)
	s.Len(decisions, 3)
	s.Equal([]string{"DOWN", "FLAT", "UP"}, Symbols(decisions))

	s.Require().NoError(decisions["UP"].Err)
	s.Equal(types.DirectionBuy, decisions["UP"].Decision.Signal.Direction)

	s.Require().NoError(decisions["DOWN"].Err)
	s.Equal(types.DirectionSell, decisions["DOWN"].Decision.Signal.Direction)

	s.Require().NoError(decisions["FLAT"].Err)
	s.Equal(types.DirectionNeutral, decisions["FLAT"].Decision.Signal.Direction)
}

func (s *AnalyzerTestSuite) TestPortfolioIsolatesFailures() {
	bad := buildSeries("BAD", 250, 0.005)
	bad.Bars[5].Close = -1
	bad.Bars[5].Low = -1

	decisions := s.analyzer.AnalyzePortfolio(s.ctx, []Request{
		{Symbol: "UP", Series: buildSeries("UP", 250, 0.005)},
		{Symbol: "BAD", Series: bad},
	})

	s.Require().NoError(decisions["UP"].Err)
	s.Require().Error(decisions["BAD"].Err)
	s.True(errors.IsDataError(decisions["BAD"].Err))
}
