package indicator

import "github.com/marketgrid/signalcore/internal/types"

// MFI computes the money flow index over the given period. Raw money
// flow is typical price times volume, classified positive or negative
// by the typical-price change from the previous bar. Bounded to
// [0, 100]; all-positive flow yields 100, no flow at all yields the
// midpoint 50. The first period entries are NaN.
func MFI(bars []types.PriceBar, period int) ([]float64, error) {
	if err := checkPeriod(len(bars), period+1, "MFI"); err != nil {
		return nil, err
	}

	n := len(bars)
	typical := make([]float64, n)
	for i, b := range bars {
		typical[i] = (b.High + b.Low + b.Close) / 3
	}

	posFlow := make([]float64, n)
	negFlow := make([]float64, n)

	for i := 1; i < n; i++ {
		flow := typical[i] * bars[i].Volume

		switch {
		case typical[i] > typical[i-1]:
			posFlow[i] = flow
		case typical[i] < typical[i-1]:
			negFlow[i] = flow
		}
	}

	out := nanSlice(n)
	for i := period; i < n; i++ {
		var posSum, negSum float64
		for j := i - period + 1; j <= i; j++ {
			posSum += posFlow[j]
			negSum += negFlow[j]
		}

		switch {
		case posSum == 0 && negSum == 0:
			out[i] = 50
		case negSum == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+posSum/negSum)
		}
	}

	return out, nil
}
