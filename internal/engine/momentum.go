package engine

import (
	"fmt"
	"math"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/types"
)

// Momentum oscillator zones. An oscillator inside its healthy zone for
// the trend direction casts a full vote; stretched past the zone into
// overbought/oversold territory it still agrees with the trend but only
// half-heartedly, so it casts half a vote.
const (
	rsiBullLow   = 40.0
	rsiBullHigh  = 70.0
	rsiBearLow   = 30.0
	rsiBearHigh  = 60.0
	wrHealthyLow = -80.0
	wrHealthyTop = -20.0
	mfiBullLow   = 40.0
	mfiBullHigh  = 80.0
	mfiBearLow   = 20.0
	mfiBearHigh  = 60.0
)

// scoreMomentum polls five oscillators for agreement with the trend
// direction. Momentum is only meaningful relative to a directional
// trend; with a NEUTRAL trend the score reports the oscillator state
// but can never confirm.
func (e *Engine) scoreMomentum(snap indicator.Snapshot, trend types.TrendLabel) types.ConfirmationScore {
	score := types.ConfirmationScore{
		Dimension: "momentum",
		Total:     5,
	}

	if trend == types.TrendNeutral {
		score.Label = string(types.TrendNeutral)
		score.Reasons = append(score.Reasons, "no trend direction to confirm")

		return score
	}

	bullish := trend == types.TrendBullish

	add := func(weight float64, reason string) {
		if weight == 0 {
			return
		}

		if bullish {
			score.Bullish += weight
		} else {
			score.Bearish += weight
		}

		score.Reasons = append(score.Reasons, reason)
	}

	// RSI
	if !math.IsNaN(snap.RSI) {
		switch {
		case bullish && snap.RSI >= rsiBullLow && snap.RSI <= rsiBullHigh:
			add(1, fmt.Sprintf("RSI %.1f in healthy bullish zone", snap.RSI))
		case bullish && snap.RSI > rsiBullHigh:
			add(0.5, fmt.Sprintf("RSI %.1f overbought but trending", snap.RSI))
		case !bullish && snap.RSI >= rsiBearLow && snap.RSI <= rsiBearHigh:
			add(1, fmt.Sprintf("RSI %.1f in healthy bearish zone", snap.RSI))
		case !bullish && snap.RSI < rsiBearLow:
			add(0.5, fmt.Sprintf("RSI %.1f oversold but trending", snap.RSI))
		}
	}

	// MACD histogram sign
	if !math.IsNaN(snap.MACDHist) {
		if bullish && snap.MACDHist > 0 {
			add(1, "MACD histogram positive")
		} else if !bullish && snap.MACDHist < 0 {
			add(1, "MACD histogram negative")
		}
	}

	// ROC sign
	if !math.IsNaN(snap.ROC) {
		if bullish && snap.ROC > 0 {
			add(1, fmt.Sprintf("ROC %.2f%% positive", snap.ROC))
		} else if !bullish && snap.ROC < 0 {
			add(1, fmt.Sprintf("ROC %.2f%% negative", snap.ROC))
		}
	}

	// Williams %R
	if !math.IsNaN(snap.WilliamsR) {
		switch {
		case snap.WilliamsR >= wrHealthyLow && snap.WilliamsR <= wrHealthyTop:
			add(1, fmt.Sprintf("Williams %%R %.1f in healthy zone", snap.WilliamsR))
		case bullish && snap.WilliamsR > wrHealthyTop:
			add(0.5, fmt.Sprintf("Williams %%R %.1f overbought but trending", snap.WilliamsR))
		case !bullish && snap.WilliamsR < wrHealthyLow:
			add(0.5, fmt.Sprintf("Williams %%R %.1f oversold but trending", snap.WilliamsR))
		}
	}

	// MFI
	if !math.IsNaN(snap.MFI) {
		switch {
		case bullish && snap.MFI >= mfiBullLow && snap.MFI <= mfiBullHigh:
			add(1, fmt.Sprintf("MFI %.1f in healthy bullish zone", snap.MFI))
		case bullish && snap.MFI > mfiBullHigh:
			add(0.5, fmt.Sprintf("MFI %.1f overbought but trending", snap.MFI))
		case !bullish && snap.MFI >= mfiBearLow && snap.MFI <= mfiBearHigh:
			add(1, fmt.Sprintf("MFI %.1f in healthy bearish zone", snap.MFI))
		case !bullish && snap.MFI < mfiBearLow:
			add(0.5, fmt.Sprintf("MFI %.1f oversold but trending", snap.MFI))
		}
	}

	agreeing := score.Bullish
	if !bullish {
		agreeing = score.Bearish
	}

	score.Confidence = agreeing / float64(score.Total)
	score.Confirmed = score.Confidence >= e.cfg.ConfirmationRatio

	if bullish {
		score.Label = string(types.TrendBullish)
	} else {
		score.Label = string(types.TrendBearish)
	}

	if !score.Confirmed {
		score.Reasons = append(score.Reasons,
			fmt.Sprintf("momentum agreement %.2f below confirmation ratio %.2f",
				score.Confidence, e.cfg.ConfirmationRatio))
	}

	return score
}
