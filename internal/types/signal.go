package types

import "time"

// Direction is the classified trading signal.
type Direction string

const (
	DirectionBuy     Direction = "BUY"
	DirectionSell    Direction = "SELL"
	DirectionNeutral Direction = "NEUTRAL"
)

// Grade is the qualitative banding of composite confidence.
type Grade string

const (
	GradeAPlus   Grade = "A+"
	GradeB       Grade = "B"
	GradeC       Grade = "C"
	GradeNeutral Grade = "NEUTRAL"
)

// TrendLabel is the categorical trend classification.
type TrendLabel string

const (
	TrendBullish TrendLabel = "BULLISH"
	TrendBearish TrendLabel = "BEARISH"
	TrendNeutral TrendLabel = "NEUTRAL"
)

// Regime classifies the broad market condition the series is in.
// It is advisory context attached to a SignalResult, never a gate.
type Regime string

const (
	RegimeStrongTrend    Regime = "STRONG_TREND"
	RegimeModerateTrend  Regime = "MODERATE_TREND"
	RegimeRangeBound     Regime = "RANGE_BOUND"
	RegimeHighVolatility Regime = "HIGH_VOLATILITY"
	RegimeCompression    Regime = "COMPRESSION"
	RegimeChoppy         Regime = "CHOPPY"
)

// ConfirmationScore is the outcome of scoring one dimension
// (trend, momentum, volume or volatility).
type ConfirmationScore struct {
	// Dimension names the scored dimension (e.g. "trend").
	Dimension string `yaml:"dimension"`
	// Bullish is the weight of indicators voting bullish. Votes may be
	// fractional: an overbought oscillator counts as half a vote.
	Bullish float64 `yaml:"bullish"`
	// Bearish is the weight of indicators voting bearish.
	Bearish float64 `yaml:"bearish"`
	// Total is the number of indicators polled for this dimension.
	Total int `yaml:"total"`
	// Confidence is the normalized score in [0,1].
	Confidence float64 `yaml:"confidence"`
	// Label is the categorical outcome (BULLISH/BEARISH/NEUTRAL, or
	// ACCEPTABLE/UNSUITABLE for volatility).
	Label string `yaml:"label"`
	// Confirmed reports whether the dimension confirms the classification.
	Confirmed bool `yaml:"confirmed"`
	// Reasons lists the per-indicator findings behind the score.
	Reasons []string `yaml:"reasons"`
}

// Setup is the risk-managed trade proposal derived from volatility.
type Setup struct {
	Entry      float64 `yaml:"entry"`
	StopLoss   float64 `yaml:"stop_loss"`
	TakeProfit float64 `yaml:"take_profit"`
	// RewardRisk is |take_profit-entry| / |entry-stop_loss|.
	RewardRisk float64 `yaml:"reward_risk"`
	// ATR is the average true range used to size the setup.
	ATR float64 `yaml:"atr"`
}

// SignalResult is the complete outcome of one signal evaluation.
// It is created once per (symbol, timestamp) analysis and read-only
// once returned.
type SignalResult struct {
	Symbol     string    `yaml:"symbol"`
	Time       time.Time `yaml:"time"`
	Direction  Direction `yaml:"direction"`
	Confidence float64   `yaml:"confidence"`
	Grade      Grade     `yaml:"grade"`
	// Setup is nil when the direction is NEUTRAL.
	Setup      *Setup            `yaml:"setup,omitempty"`
	Trend      ConfirmationScore `yaml:"trend"`
	Momentum   ConfirmationScore `yaml:"momentum"`
	Volume     ConfirmationScore `yaml:"volume"`
	Volatility ConfirmationScore `yaml:"volatility"`
	Regime     Regime            `yaml:"regime"`
	// Reasons is the human-readable trail of why this classification was
	// reached. A NEUTRAL produced by indicator warm-up is distinguishable
	// from one produced by disagreeing confirmations.
	Reasons []string `yaml:"reasons"`
}
