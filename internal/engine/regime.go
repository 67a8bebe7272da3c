package engine

import (
	"math"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/types"
)

// Regime classification cutoffs.
const (
	regimeStrongADX      = 40.0
	regimeModerateADX    = 25.0
	regimeQuietADX       = 20.0
	regimeReturnWindow   = 20
	regimeHighReturnStd  = 0.03
	regimeCompressionBBW = 0.04
)

// classifyRegime labels the broad market condition from trend strength,
// realized return volatility and Bollinger band width. The regime is
// context attached to the result, never a gate.
func (e *Engine) classifyRegime(set *indicator.IndicatorSet, snap indicator.Snapshot) types.Regime {
	returnStd := returnStddev(set.Closes, snap.Index, regimeReturnWindow)

	if snap.NATR > e.cfg.MaxNATR || returnStd > regimeHighReturnStd {
		return types.RegimeHighVolatility
	}

	if indicator.Defined(snap.ADX) {
		if snap.ADX >= regimeStrongADX {
			return types.RegimeStrongTrend
		}

		if snap.ADX >= regimeModerateADX {
			return types.RegimeModerateTrend
		}
	}

	bbw := bollingerWidth(snap)
	if !math.IsNaN(bbw) && bbw < regimeCompressionBBW {
		return types.RegimeCompression
	}

	if indicator.Defined(snap.ADX) && snap.ADX < regimeQuietADX {
		return types.RegimeRangeBound
	}

	return types.RegimeChoppy
}

// bollingerWidth is the band spread relative to the middle band.
func bollingerWidth(snap indicator.Snapshot) float64 {
	if math.IsNaN(snap.BollingerUpper) || math.IsNaN(snap.BollingerMiddle) || snap.BollingerMiddle == 0 {
		return math.NaN()
	}

	return (snap.BollingerUpper - snap.BollingerLower) / snap.BollingerMiddle
}

// returnStddev is the population standard deviation of single-bar
// returns over the window ending at idx. NaN when the window does not fit.
func returnStddev(closes []float64, idx, window int) float64 {
	if idx+1 < window+1 {
		return math.NaN()
	}

	returns := make([]float64, 0, window)
	for i := idx - window + 1; i <= idx; i++ {
		if closes[i-1] == 0 {
			return math.NaN()
		}

		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}

	return math.Sqrt(sq / float64(len(returns)))
}
