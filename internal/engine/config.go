package engine

import (
	"math"

	"github.com/creasty/defaults"

	"github.com/marketgrid/signalcore/pkg/errors"
)

// Config holds the scoring weights, confirmation thresholds and setup
// parameters of the signal engine. An Engine takes its Config by value
// at construction and never mutates it afterward.
type Config struct {
	// Dimension weights for the composite confidence. Must sum to 1.0.
	TrendWeight      float64 `yaml:"trend_weight" default:"0.35"`
	MomentumWeight   float64 `yaml:"momentum_weight" default:"0.25"`
	VolumeWeight     float64 `yaml:"volume_weight" default:"0.20"`
	VolatilityWeight float64 `yaml:"volatility_weight" default:"0.20"`

	// TrendThreshold is the fraction of trend voters that must agree on
	// a direction before the trend is labelled BULLISH or BEARISH.
	TrendThreshold float64 `yaml:"trend_threshold" default:"0.5"`
	// MinTrendStrength is the ADX floor below which the ADX voter abstains.
	MinTrendStrength float64 `yaml:"min_trend_strength" default:"25"`
	// StructureLookback is the window for the higher-highs/lower-lows voter.
	StructureLookback int `yaml:"structure_lookback" default:"10"`

	// ConfirmationRatio is the fraction of momentum voters that must
	// agree with the trend direction for momentum to confirm it.
	ConfirmationRatio float64 `yaml:"confirmation_ratio" default:"0.6"`

	// VolumeFloorRatio is the minimum volume relative to its moving
	// average for the participation voter.
	VolumeFloorRatio float64 `yaml:"volume_floor_ratio" default:"1.0"`

	// NATR band for acceptable volatility, in percent of price.
	MinNATR float64 `yaml:"min_natr" default:"1.0"`
	MaxNATR float64 `yaml:"max_natr" default:"8.0"`

	// ConfidenceFloor forces NEUTRAL below this composite confidence.
	ConfidenceFloor float64 `yaml:"confidence_floor" default:"50"`

	// ATR multiples for the stop and target of a proposed setup.
	StopATRMultiple   float64 `yaml:"stop_atr_multiple" default:"2.0"`
	TargetATRMultiple float64 `yaml:"target_atr_multiple" default:"4.0"`
	// MinRewardRisk downgrades a setup whose reward:risk falls below it.
	MinRewardRisk float64 `yaml:"min_reward_risk" default:"2.0"`

	// Sentiment adjustment clamp, in confidence percentage points.
	SentimentMin float64 `yaml:"sentiment_min" default:"-30"`
	SentimentMax float64 `yaml:"sentiment_max" default:"15"`
}

// DefaultConfig returns the engine configuration with all defaults applied.
func DefaultConfig() Config {
	var cfg Config
	_ = defaults.Set(&cfg)

	return cfg
}

// Validate rejects configurations that would make scoring meaningless.
// All violations are configuration errors raised at load time; Evaluate
// never re-checks them.
func (c Config) Validate() error {
	weightSum := c.TrendWeight + c.MomentumWeight + c.VolumeWeight + c.VolatilityWeight
	if math.Abs(weightSum-1.0) > 1e-9 {
		return errors.Newf(errors.ErrCodeInvalidWeights,
			"dimension weights must sum to 1.0, got %g", weightSum)
	}

	for name, w := range map[string]float64{
		"trend_weight":      c.TrendWeight,
		"momentum_weight":   c.MomentumWeight,
		"volume_weight":     c.VolumeWeight,
		"volatility_weight": c.VolatilityWeight,
	} {
		if w < 0 {
			return errors.Newf(errors.ErrCodeInvalidWeights, "%s must be non-negative, got %g", name, w)
		}
	}

	if c.TrendThreshold <= 0 || c.TrendThreshold >= 1 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"trend_threshold must be in (0,1), got %g", c.TrendThreshold)
	}

	if c.ConfirmationRatio <= 0 || c.ConfirmationRatio > 1 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"confirmation_ratio must be in (0,1], got %g", c.ConfirmationRatio)
	}

	if c.VolumeFloorRatio <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"volume_floor_ratio must be positive, got %g", c.VolumeFloorRatio)
	}

	if c.MinNATR < 0 || c.MaxNATR <= c.MinNATR {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"NATR band [%g,%g] is invalid", c.MinNATR, c.MaxNATR)
	}

	if c.ConfidenceFloor < 0 || c.ConfidenceFloor > 100 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"confidence_floor must be in [0,100], got %g", c.ConfidenceFloor)
	}

	if c.StopATRMultiple <= 0 || c.TargetATRMultiple <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier,
			"setup ATR multiples must be positive, got stop %g target %g",
			c.StopATRMultiple, c.TargetATRMultiple)
	}

	if c.MinRewardRisk <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"min_reward_risk must be positive, got %g", c.MinRewardRisk)
	}

	if c.StructureLookback < 2 {
		return errors.Newf(errors.ErrCodeInvalidPeriod,
			"structure_lookback must be at least 2, got %d", c.StructureLookback)
	}

	if c.SentimentMin > 0 || c.SentimentMax < 0 {
		return errors.Newf(errors.ErrCodeInvalidThreshold,
			"sentiment clamp [%g,%g] must contain 0", c.SentimentMin, c.SentimentMax)
	}

	return nil
}
