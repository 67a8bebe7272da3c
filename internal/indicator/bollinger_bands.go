package indicator

import "math"

// BollingerBandsResult holds the three band series aligned with the input.
type BollingerBandsResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// BollingerBands computes a simple moving average middle band with
// upper and lower bands offset by multiplier standard deviations. The
// standard deviation is the sample deviation of the lookback window.
func BollingerBands(closes []float64, period int, multiplier float64) (BollingerBandsResult, error) {
	if err := checkPeriod(len(closes), period, "Bollinger Bands"); err != nil {
		return BollingerBandsResult{}, err
	}

	if multiplier <= 0 {
		return BollingerBandsResult{}, errInvalidMultiplier("Bollinger Bands", multiplier)
	}

	middle, err := SMA(closes, period)
	if err != nil {
		return BollingerBandsResult{}, err
	}

	n := len(closes)
	res := BollingerBandsResult{
		Upper:  nanSlice(n),
		Middle: middle,
		Lower:  nanSlice(n),
	}

	for i := period - 1; i < n; i++ {
		var sq float64
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - middle[i]
			sq += d * d
		}

		var sd float64
		if period > 1 {
			sd = math.Sqrt(sq / float64(period-1))
		}

		res.Upper[i] = middle[i] + multiplier*sd
		res.Lower[i] = middle[i] - multiplier*sd
	}

	return res, nil
}
