package engine

import (
	"fmt"
	"math"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/types"
)

// trendVote is one voter's verdict: +1 bullish, -1 bearish, 0 abstain.
type trendVote int

const (
	voteBullish trendVote = 1
	voteBearish trendVote = -1
	voteAbstain trendVote = 0
)

// scoreTrend polls six structural voters. Each voter requires a strict
// inequality to cast a vote; equality, a flat reading or an undefined
// input abstains, so a featureless series scores NEUTRAL instead of
// defaulting to either side.
func (e *Engine) scoreTrend(set *indicator.IndicatorSet, snap indicator.Snapshot) types.ConfirmationScore {
	score := types.ConfirmationScore{
		Dimension: "trend",
		Total:     6,
	}

	vote := func(v trendVote, bullMsg, bearMsg string) {
		switch v {
		case voteBullish:
			score.Bullish++
			score.Reasons = append(score.Reasons, bullMsg)
		case voteBearish:
			score.Bearish++
			score.Reasons = append(score.Reasons, bearMsg)
		}
	}

	vote(compareVote(snap.EMAFast, snap.EMAMid),
		"fast EMA above mid EMA", "fast EMA below mid EMA")
	vote(compareVote(snap.EMAMid, snap.EMASlow),
		"mid EMA above slow EMA", "mid EMA below slow EMA")
	vote(compareVote(snap.Close, snap.SMALong),
		"close above long SMA", "close below long SMA")

	adxVote := voteAbstain
	if indicator.Defined(snap.ADX) && snap.ADX > e.cfg.MinTrendStrength {
		adxVote = compareVote(snap.PlusDI, snap.MinusDI)
	}
	vote(adxVote,
		fmt.Sprintf("ADX %.1f confirms bullish pressure", snap.ADX),
		fmt.Sprintf("ADX %.1f confirms bearish pressure", snap.ADX))

	stVote := voteAbstain
	switch snap.SupertrendDir {
	case 1:
		stVote = voteBullish
	case -1:
		stVote = voteBearish
	}
	vote(stVote, "supertrend bullish", "supertrend bearish")

	vote(e.structureVote(set, snap.Index),
		"higher highs and higher lows", "lower highs and lower lows")

	threshold := e.cfg.TrendThreshold * float64(score.Total)

	switch {
	case score.Bullish > threshold:
		score.Label = string(types.TrendBullish)
		score.Confidence = score.Bullish / float64(score.Total)
		score.Confirmed = true
	case score.Bearish > threshold:
		score.Label = string(types.TrendBearish)
		score.Confidence = score.Bearish / float64(score.Total)
		score.Confirmed = true
	default:
		score.Label = string(types.TrendNeutral)
		score.Confidence = math.Max(score.Bullish, score.Bearish) / float64(score.Total)
		score.Reasons = append(score.Reasons, "no directional majority among trend voters")
	}

	return score
}

// compareVote maps a strict comparison of two values to a vote.
// NaN on either side abstains.
func compareVote(a, b float64) trendVote {
	if math.IsNaN(a) || math.IsNaN(b) {
		return voteAbstain
	}

	switch {
	case a > b:
		return voteBullish
	case a < b:
		return voteBearish
	default:
		return voteAbstain
	}
}

// structureVote compares the swing extremes of the two most recent
// lookback windows. Both highs and lows must agree for a vote.
func (e *Engine) structureVote(set *indicator.IndicatorSet, idx int) trendVote {
	lb := e.cfg.StructureLookback
	if idx+1 < 2*lb {
		return voteAbstain
	}

	recentHigh, recentLow := windowExtremes(set.Bars, idx-lb+1, idx)
	priorHigh, priorLow := windowExtremes(set.Bars, idx-2*lb+1, idx-lb)

	switch {
	case recentHigh > priorHigh && recentLow > priorLow:
		return voteBullish
	case recentHigh < priorHigh && recentLow < priorLow:
		return voteBearish
	default:
		return voteAbstain
	}
}

func windowExtremes(bars []types.PriceBar, from, to int) (high, low float64) {
	high = bars[from].High
	low = bars[from].Low

	for i := from + 1; i <= to; i++ {
		if bars[i].High > high {
			high = bars[i].High
		}

		if bars[i].Low < low {
			low = bars[i].Low
		}
	}

	return high, low
}
