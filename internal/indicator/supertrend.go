package indicator

import (
	"math"

	"github.com/marketgrid/signalcore/internal/types"
)

// SupertrendResult carries the ratcheted band levels and the trend
// direction per bar: +1 bullish, -1 bearish, 0 undetermined.
type SupertrendResult struct {
	Upper     []float64
	Lower     []float64
	Direction []int
}

// Supertrend computes the ATR-band trend filter. The basic bands are
// mid ± multiplier*ATR around the bar midpoint; the final bands ratchet
// so the upper band only moves down while price stays below it and the
// lower band only moves up while price stays above it. Direction flips
// when the close crosses the opposing final band; until a cross occurs
// on a degenerate series (zero ATR, equal bands) the direction stays 0.
func Supertrend(bars []types.PriceBar, period int, multiplier float64) (SupertrendResult, error) {
	if err := checkPeriod(len(bars), period, "Supertrend"); err != nil {
		return SupertrendResult{}, err
	}

	if multiplier <= 0 {
		return SupertrendResult{}, errInvalidMultiplier("Supertrend", multiplier)
	}

	n := len(bars)
	atr, err := ATR(bars, period)
	if err != nil {
		return SupertrendResult{}, err
	}

	res := SupertrendResult{
		Upper:     nanSlice(n),
		Lower:     nanSlice(n),
		Direction: make([]int, n),
	}

	for i := period - 1; i < n; i++ {
		mid := (bars[i].High + bars[i].Low) / 2
		basicUpper := mid + multiplier*atr[i]
		basicLower := mid - multiplier*atr[i]

		if i == period-1 || math.IsNaN(res.Upper[i-1]) {
			res.Upper[i] = basicUpper
			res.Lower[i] = basicLower
		} else {
			if basicUpper < res.Upper[i-1] || bars[i-1].Close > res.Upper[i-1] {
				res.Upper[i] = basicUpper
			} else {
				res.Upper[i] = res.Upper[i-1]
			}

			if basicLower > res.Lower[i-1] || bars[i-1].Close < res.Lower[i-1] {
				res.Lower[i] = basicLower
			} else {
				res.Lower[i] = res.Lower[i-1]
			}
		}

		if i == period-1 {
			continue
		}

		switch {
		case bars[i].Close > res.Upper[i-1]:
			res.Direction[i] = 1
		case bars[i].Close < res.Lower[i-1]:
			res.Direction[i] = -1
		default:
			res.Direction[i] = res.Direction[i-1]
		}
	}

	return res, nil
}
