package indicator

import "github.com/marketgrid/signalcore/internal/types"

// WilliamsR computes Williams %R over the given period, bounded to
// [-100, 0] where 0 means the close sits at the period high. A bar
// window with zero high-low range yields the midpoint value -50.
func WilliamsR(bars []types.PriceBar, period int) ([]float64, error) {
	if err := checkPeriod(len(bars), period, "Williams %R"); err != nil {
		return nil, err
	}

	out := nanSlice(len(bars))
	for i := period - 1; i < len(bars); i++ {
		highest := bars[i-period+1].High
		lowest := bars[i-period+1].Low

		for j := i - period + 2; j <= i; j++ {
			if bars[j].High > highest {
				highest = bars[j].High
			}

			if bars[j].Low < lowest {
				lowest = bars[j].Low
			}
		}

		rng := highest - lowest
		if rng == 0 {
			out[i] = -50

			continue
		}

		out[i] = -100 * (highest - bars[i].Close) / rng
	}

	return out, nil
}
