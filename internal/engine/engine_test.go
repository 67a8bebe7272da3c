package engine

import (
	"context"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/sentiment"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/mocks"
	"github.com/marketgrid/signalcore/pkg/errors"
)

type EngineTestSuite struct {
	suite.Suite

	ctx context.Context
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *EngineTestSuite) newEngine(provider optional.Option[sentiment.Provider]) *Engine {
	eng, err := New(DefaultConfig(), indicator.DefaultConfig(), provider, logger.NewNopLogger())
	s.Require().NoError(err)

	return eng
}

// series builders

func seriesOf(symbol string, bars []types.PriceBar) types.PriceSeries {
	return types.PriceSeries{Symbol: symbol, Bars: bars}
}

func trendingSeries(n int, step float64) types.PriceSeries {
	bars := make([]types.PriceBar, n)
	base := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
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

	return seriesOf("TREND", bars)
}

func flatSeries(n int) types.PriceSeries {
	bars := make([]types.PriceBar, n)
	base := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)

	for i := range bars {
		bars[i] = types.PriceBar{
			Time:   base.Add(time.Duration(i) * time.Minute),
			Open:   100,
			High:   100,
			Low:    100,
			Close:  100,
			Volume: 1000,
		}
	}

	return seriesOf("FLAT", bars)
}

func (s *EngineTestSuite) TestMonotonicRiseClassifiesBuy() {
	eng := s.newEngine(nil)

	result, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	s.Equal(types.DirectionBuy, result.Direction)
	s.Equal(string(types.TrendBullish), result.Trend.Label)
	s.True(result.Momentum.Confirmed)
	s.GreaterOrEqual(result.Confidence, 50.0)

	s.Require().NotNil(result.Setup)
	s.Greater(result.Setup.TakeProfit, result.Setup.Entry)
	s.Less(result.Setup.StopLoss, result.Setup.Entry)
	s.InDelta(2.0, result.Setup.RewardRisk, 1e-9)
}

func (s *EngineTestSuite) TestMonotonicFallClassifiesSell() {
	eng := s.newEngine(nil)

	result, err := eng.Evaluate(s.ctx, trendingSeries(250, -0.005))
	s.Require().NoError(err)

	s.Equal(types.DirectionSell, result.Direction)
	s.Equal(string(types.TrendBearish), result.Trend.Label)

	s.Require().NotNil(result.Setup)
	s.Less(result.Setup.TakeProfit, result.Setup.Entry)
	s.Greater(result.Setup.StopLoss, result.Setup.Entry)
}

func (s *EngineTestSuite) TestFlatSeriesIsNeutral() {
	eng := s.newEngine(nil)

	result, err := eng.Evaluate(s.ctx, flatSeries(250))
	s.Require().NoError(err)

	s.Equal(types.DirectionNeutral, result.Direction)
	s.Equal(types.GradeNeutral, result.Grade)
	s.Equal(string(types.TrendNeutral), result.Trend.Label)
	s.Nil(result.Setup)

	// A featureless series has no directional movement at all.
	s.Zero(result.Trend.Bullish)
	s.Zero(result.Trend.Bearish)
}

func (s *EngineTestSuite) TestWarmupSeriesIsNeutralNotError() {
	eng := s.newEngine(nil)

	result, err := eng.Evaluate(s.ctx, trendingSeries(50, 0.005))
	s.Require().NoError(err)

	s.Equal(types.DirectionNeutral, result.Direction)
	s.Equal(types.GradeNeutral, result.Grade)
	s.Nil(result.Setup)
	s.Require().NotEmpty(result.Reasons)
	s.Contains(result.Reasons[0], "insufficient indicator history")
}

func (s *EngineTestSuite) TestDeterminism() {
	eng := s.newEngine(nil)
	series := trendingSeries(250, 0.005)

	a, err := eng.Evaluate(s.ctx, series)
	s.Require().NoError(err)
	b, err := eng.Evaluate(s.ctx, series)
	s.Require().NoError(err)

	s.Equal(a, b)
}

func (s *EngineTestSuite) TestNeutralResultHasNilSetup() {
	eng := s.newEngine(nil)

	for _, series := range []types.PriceSeries{flatSeries(250), trendingSeries(50, 0.005)} {
		result, err := eng.Evaluate(s.ctx, series)
		s.Require().NoError(err)

		if result.Direction == types.DirectionNeutral {
			s.Nil(result.Setup)
		}
	}
}

func (s *EngineTestSuite) TestRewardRiskBelowMinimumDowngrades() {
	cfg := DefaultConfig()
	cfg.MinRewardRisk = 2.1

	eng, err := New(cfg, indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().NoError(err)

	result, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	s.Equal(types.DirectionNeutral, result.Direction)
	s.Nil(result.Setup)
	s.Contains(result.Reasons, "reward:risk 2.00 below minimum 2.10")
}

func (s *EngineTestSuite) TestConfidenceFloorForcesNeutral() {
	cfg := DefaultConfig()
	cfg.ConfidenceFloor = 99

	eng, err := New(cfg, indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().NoError(err)

	result, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)
	s.Equal(types.DirectionNeutral, result.Direction)
}

func (s *EngineTestSuite) TestSentimentReinforces() {
	provider := optional.Some[sentiment.Provider](sentiment.NewStatic(10, "upbeat coverage"))
	eng := s.newEngine(provider)

	base, err := s.newEngine(nil).Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	boosted, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	s.Equal(types.DirectionBuy, boosted.Direction)
	s.InDelta(base.Confidence+10, boosted.Confidence, 1e-9)
}

func (s *EngineTestSuite) TestSentimentClampsLargeAdjustment() {
	provider := optional.Some[sentiment.Provider](sentiment.NewStatic(500, "meme frenzy"))
	eng := s.newEngine(provider)

	base, err := s.newEngine(nil).Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	boosted, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	// Clamped to the +15 ceiling, not the raw value.
	s.InDelta(base.Confidence+15, boosted.Confidence, 1e-9)
}

func (s *EngineTestSuite) TestSentimentCanDowngradeButNotFlip() {
	provider := optional.Some[sentiment.Provider](sentiment.NewStatic(-30, "bad press"))
	eng := s.newEngine(provider)

	result, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)

	// 72.5 - 30 lands under the floor: downgrade to NEUTRAL.
	s.Equal(types.DirectionNeutral, result.Direction)
	s.Nil(result.Setup)
}

func (s *EngineTestSuite) TestSentimentNeverTouchesNeutral() {
	ctrl := gomock.NewController(s.T())
	provider := mocks.NewMockProvider(ctrl)
	// No expectations set: a call would fail the test.

	eng := s.newEngine(optional.Some[sentiment.Provider](provider))

	result, err := eng.Evaluate(s.ctx, flatSeries(250))
	s.Require().NoError(err)
	s.Equal(types.DirectionNeutral, result.Direction)
}

func (s *EngineTestSuite) TestSentimentFailureDegradesGracefully() {
	ctrl := gomock.NewController(s.T())
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().
		Adjustment(gomock.Any(), "TREND").
		Return(0.0, "", errors.New(errors.ErrCodeDataSourceNotFound, "feed offline"))

	eng := s.newEngine(optional.Some[sentiment.Provider](provider))

	result, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)
	s.Equal(types.DirectionBuy, result.Direction)
	s.Contains(result.Reasons, "sentiment unavailable, no adjustment applied")
}

func (s *EngineTestSuite) TestConfigValidation() {
	cfg := DefaultConfig()
	cfg.TrendWeight = 0.5 // weights now sum to 1.15
	_, err := New(cfg, indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().Error(err)
	s.True(errors.IsConfigError(err))
	s.True(errors.HasCode(err, errors.ErrCodeInvalidWeights))

	cfg = DefaultConfig()
	cfg.ConfirmationRatio = 1.5
	_, err = New(cfg, indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidRatio))

	cfg = DefaultConfig()
	cfg.MinNATR = 5
	cfg.MaxNATR = 3
	_, err = New(cfg, indicator.DefaultConfig(), nil, logger.NewNopLogger())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidThreshold))
}

func (s *EngineTestSuite) TestRegimeClassification() {
	eng := s.newEngine(nil)

	trending, err := eng.Evaluate(s.ctx, trendingSeries(250, 0.005))
	s.Require().NoError(err)
	s.Equal(types.RegimeStrongTrend, trending.Regime)

	flat, err := eng.Evaluate(s.ctx, flatSeries(250))
	s.Require().NoError(err)
	s.Equal(types.RegimeCompression, flat.Regime)
}

func (s *EngineTestSuite) TestRewardRiskHelper() {
	s.InDelta(2.0, RewardRisk(100, 96, 108), 1e-12)
	s.True(RewardRisk(100, 100, 108) > 1e18) // zero risk distance
}
