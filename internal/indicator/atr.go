package indicator

import (
	"math"

	"github.com/marketgrid/signalcore/internal/types"
)

// TrueRange computes the per-bar true range: the largest of high-low,
// |high-prevClose| and |low-prevClose|. The first bar uses high-low.
func TrueRange(bars []types.PriceBar) []float64 {
	out := make([]float64, len(bars))

	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}

		prevClose := bars[i-1].Close
		out[i] = math.Max(b.High-b.Low,
			math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
	}

	return out
}

// ATR computes the Wilder-smoothed average true range over the given
// period. The first period-1 entries are NaN.
func ATR(bars []types.PriceBar, period int) ([]float64, error) {
	if err := checkPeriod(len(bars), period, "ATR"); err != nil {
		return nil, err
	}

	tr := TrueRange(bars)
	out := nanSlice(len(bars))

	var seed float64
	for i := 0; i < period; i++ {
		seed += tr[i]
	}

	out[period-1] = seed / float64(period)

	for i := period; i < len(bars); i++ {
		out[i] = out[i-1] + (tr[i]-out[i-1])/float64(period)
	}

	return out, nil
}

// NATR computes the normalized ATR: the ATR expressed as a percentage of
// the close price, enabling volatility comparison across price levels.
func NATR(bars []types.PriceBar, period int) ([]float64, error) {
	atr, err := ATR(bars, period)
	if err != nil {
		return nil, err
	}

	out := nanSlice(len(bars))

	for i, v := range atr {
		if math.IsNaN(v) || bars[i].Close == 0 {
			continue
		}

		out[i] = v / bars[i].Close * 100
	}

	return out, nil
}
