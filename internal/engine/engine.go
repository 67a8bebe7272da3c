// Package engine scores a price series across four dimensions (trend,
// momentum, volume, volatility), combines them into a weighted composite
// confidence and classifies the result as BUY, SELL or NEUTRAL with a
// risk-managed setup attached. The same series and configuration always
// produce the same result.
package engine

import (
	"context"
	"fmt"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/sentiment"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// Engine evaluates price series into signals. Construct with New; the
// configuration is fixed for the engine's lifetime, so evaluations are
// safe to run concurrently.
type Engine struct {
	cfg      Config
	battery  indicator.Config
	provider optional.Option[sentiment.Provider]
	logger   *logger.Logger
}

// New builds an Engine after validating both configurations.
func New(cfg Config, battery indicator.Config, provider optional.Option[sentiment.Provider], log *logger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := battery.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Engine{
		cfg:      cfg,
		battery:  battery,
		provider: provider,
		logger:   log,
	}, nil
}

// BatteryConfig returns the indicator configuration the engine computes with.
func (e *Engine) BatteryConfig() indicator.Config {
	return e.battery
}

// MinBars returns the shortest series the engine can evaluate without
// reporting a warm-up NEUTRAL.
func (e *Engine) MinBars() int {
	min := e.battery.MinBars()
	if structural := 2 * e.cfg.StructureLookback; structural > min {
		min = structural
	}

	return min
}

// Evaluate scores the latest bar of the series. Indicator warm-up is
// not an error: a series too short for the battery yields a NEUTRAL
// result whose reasons say so.
func (e *Engine) Evaluate(ctx context.Context, series types.PriceSeries) (types.SignalResult, error) {
	set, err := indicator.Compute(series, e.battery)
	if err != nil {
		if !errors.IsInsufficientDataError(err) {
			return types.SignalResult{}, err
		}

		return e.warmupResult(series), nil
	}

	return e.evaluateSet(ctx, series, set), nil
}

// EvaluateSet scores the latest bar using an already-computed battery.
// The set must have been computed from the same series.
func (e *Engine) EvaluateSet(ctx context.Context, series types.PriceSeries, set *indicator.IndicatorSet) types.SignalResult {
	return e.evaluateSet(ctx, series, set)
}

func (e *Engine) evaluateSet(ctx context.Context, series types.PriceSeries, set *indicator.IndicatorSet) types.SignalResult {
	snap := set.Last()

	result := types.SignalResult{
		Symbol: series.Symbol,
		Time:   series.Bars[snap.Index].Time,
	}

	result.Trend = e.scoreTrend(set, snap)
	trendLabel := types.TrendLabel(result.Trend.Label)

	result.Momentum = e.scoreMomentum(snap, trendLabel)
	result.Volume = e.scoreVolume(snap, trendLabel)
	result.Volatility = e.scoreVolatility(snap)
	result.Regime = e.classifyRegime(set, snap)

	composite := 100 * (e.cfg.TrendWeight*result.Trend.Confidence +
		e.cfg.MomentumWeight*result.Momentum.Confidence +
		e.cfg.VolumeWeight*result.Volume.Confidence +
		e.cfg.VolatilityWeight*result.Volatility.Confidence)

	// Classification requires trend and momentum to agree; volume and
	// volatility only modulate the confidence.
	direction := types.DirectionNeutral

	switch {
	case trendLabel == types.TrendBullish && result.Momentum.Confirmed:
		direction = types.DirectionBuy
	case trendLabel == types.TrendBearish && result.Momentum.Confirmed:
		direction = types.DirectionSell
	default:
		result.Reasons = append(result.Reasons, "trend and momentum do not agree on a direction")
	}

	if direction != types.DirectionNeutral && composite < e.cfg.ConfidenceFloor {
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("composite confidence %.1f below floor %.1f", composite, e.cfg.ConfidenceFloor))
		direction = types.DirectionNeutral
	}

	if direction != types.DirectionNeutral {
		setup := e.buildSetup(snap, direction)

		switch {
		case setup == nil:
			result.Reasons = append(result.Reasons, "no usable ATR for a setup")
			direction = types.DirectionNeutral
		case setup.RewardRisk < e.cfg.MinRewardRisk:
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("reward:risk %.2f below minimum %.2f", setup.RewardRisk, e.cfg.MinRewardRisk))
			direction = types.DirectionNeutral
		default:
			result.Setup = setup
		}
	}

	// Sentiment tempers or reinforces an existing classification; it
	// never creates one, so NEUTRAL results skip the provider entirely.
	if direction != types.DirectionNeutral {
		composite = e.applySentiment(ctx, series.Symbol, composite, &result)

		if composite < e.cfg.ConfidenceFloor {
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("sentiment-adjusted confidence %.1f below floor %.1f", composite, e.cfg.ConfidenceFloor))
			direction = types.DirectionNeutral
			result.Setup = nil
		}
	}

	if direction == types.DirectionNeutral {
		result.Setup = nil
	}

	result.Direction = direction
	result.Confidence = clampConfidence(composite)
	result.Grade = gradeFor(direction, result.Confidence)

	e.logger.Debug("signal evaluated",
		zap.String("symbol", result.Symbol),
		zap.String("direction", string(result.Direction)),
		zap.Float64("confidence", result.Confidence),
		zap.String("regime", string(result.Regime)),
	)

	return result
}

// applySentiment fetches, clamps and applies the provider adjustment.
// Provider failures degrade to no adjustment with a reason, never an error.
func (e *Engine) applySentiment(ctx context.Context, symbol string, composite float64, result *types.SignalResult) float64 {
	provider, err := e.provider.Take()
	if err != nil {
		return composite
	}

	adj, note, err := provider.Adjustment(ctx, symbol)
	if err != nil {
		e.logger.Warn("sentiment provider failed", zap.String("symbol", symbol), zap.Error(err))
		result.Reasons = append(result.Reasons, "sentiment unavailable, no adjustment applied")

		return composite
	}

	clamped := sentiment.Clamp(adj, e.cfg.SentimentMin, e.cfg.SentimentMax)
	result.Reasons = append(result.Reasons,
		fmt.Sprintf("sentiment adjustment %+.1f (%s)", clamped, note))

	return clampConfidence(composite + clamped)
}

// warmupResult is the NEUTRAL emitted when the battery cannot warm up.
func (e *Engine) warmupResult(series types.PriceSeries) types.SignalResult {
	result := types.SignalResult{
		Symbol:    series.Symbol,
		Direction: types.DirectionNeutral,
		Grade:     types.GradeNeutral,
		Reasons: []string{
			fmt.Sprintf("insufficient indicator history: %d bars, need %d", series.Len(), e.MinBars()),
		},
	}

	if series.Len() > 0 {
		result.Time = series.Bars[series.Len()-1].Time
	}

	return result
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 100 {
		return 100
	}

	return v
}

// gradeFor bands the final confidence. A NEUTRAL direction always
// carries the NEUTRAL grade regardless of the composite value.
func gradeFor(direction types.Direction, confidence float64) types.Grade {
	if direction == types.DirectionNeutral {
		return types.GradeNeutral
	}

	switch {
	case confidence >= 90:
		return types.GradeAPlus
	case confidence >= 70:
		return types.GradeB
	default:
		return types.GradeC
	}
}
