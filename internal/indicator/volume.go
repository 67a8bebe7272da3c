package indicator

import "github.com/marketgrid/signalcore/internal/types"

// OBV computes on-balance volume: a running total that adds the bar
// volume on up-closes and subtracts it on down-closes. The series is
// defined from the first bar (seed 0), so it carries no NaN warm-up.
func OBV(bars []types.PriceBar) ([]float64, error) {
	if err := checkPeriod(len(bars), 1, "OBV"); err != nil {
		return nil, err
	}

	out := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + bars[i].Volume
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - bars[i].Volume
		default:
			out[i] = out[i-1]
		}
	}

	return out, nil
}

// CMF computes the Chaikin money flow over the given period: the sum of
// money flow volume divided by the sum of volume. The close location
// value of a bar with zero high-low range is 0 so degenerate bars
// contribute no flow. Bounded to [-1, 1]; a window without any traded
// volume yields 0.
func CMF(bars []types.PriceBar, period int) ([]float64, error) {
	if err := checkPeriod(len(bars), period, "CMF"); err != nil {
		return nil, err
	}

	n := len(bars)
	mfv := make([]float64, n)

	for i, b := range bars {
		rng := b.High - b.Low
		if rng == 0 {
			continue
		}

		clv := ((b.Close - b.Low) - (b.High - b.Close)) / rng
		mfv[i] = clv * b.Volume
	}

	out := nanSlice(n)
	for i := period - 1; i < n; i++ {
		var flowSum, volSum float64
		for j := i - period + 1; j <= i; j++ {
			flowSum += mfv[j]
			volSum += bars[j].Volume
		}

		if volSum == 0 {
			out[i] = 0

			continue
		}

		out[i] = flowSum / volSum
	}

	return out, nil
}

// VolumeRatio divides each bar's volume by the simple moving average of
// volume over the given period. A zero average yields NaN for that bar.
func VolumeRatio(volumes []float64, period int) ([]float64, error) {
	avg, err := SMA(volumes, period)
	if err != nil {
		return nil, err
	}

	out := nanSlice(len(volumes))
	for i := period - 1; i < len(volumes); i++ {
		if avg[i] == 0 {
			continue
		}

		out[i] = volumes[i] / avg[i]
	}

	return out, nil
}
