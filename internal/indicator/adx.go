package indicator

import (
	"math"

	"github.com/marketgrid/signalcore/internal/types"
)

// ADXResult holds the trend-strength oscillator and its directional
// components, all aligned with the input bars.
type ADXResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX computes the average directional index over the given period using
// Wilder's smoothing for the true range and the directional movements.
// ADX is bounded to [0,100]; a series with no directional movement (flat
// prices) yields 0 rather than a division-by-zero failure. The DI lines
// are defined from index period, ADX itself from index 2*period-1.
func ADX(bars []types.PriceBar, period int) (ADXResult, error) {
	if err := checkPeriod(len(bars), 2*period, "ADX"); err != nil {
		return ADXResult{}, err
	}

	n := len(bars)
	tr := TrueRange(bars)

	plusDM := make([]float64, n)
	minusDM := make([]float64, n)

	for i := 1; i < n; i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low

		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}

		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}

	res := ADXResult{
		ADX:     nanSlice(n),
		PlusDI:  nanSlice(n),
		MinusDI: nanSlice(n),
	}

	// Seed the Wilder sums over the first period of movements.
	var smTR, smPlus, smMinus float64
	for i := 1; i <= period; i++ {
		smTR += tr[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	dx := nanSlice(n)
	dx[period] = dxValue(&res, period, smTR, smPlus, smMinus)

	for i := period + 1; i < n; i++ {
		smTR = smTR - smTR/float64(period) + tr[i]
		smPlus = smPlus - smPlus/float64(period) + plusDM[i]
		smMinus = smMinus - smMinus/float64(period) + minusDM[i]

		dx[i] = dxValue(&res, i, smTR, smPlus, smMinus)
	}

	// ADX is the Wilder-smoothed DX, seeded with the mean of the first
	// period of DX values.
	var seed float64
	for i := period; i < 2*period; i++ {
		seed += dx[i]
	}

	res.ADX[2*period-1] = seed / float64(period)

	for i := 2 * period; i < n; i++ {
		res.ADX[i] = (res.ADX[i-1]*float64(period-1) + dx[i]) / float64(period)
	}

	return res, nil
}

// dxValue fills the DI lines at index i and returns the DX value.
func dxValue(res *ADXResult, i int, smTR, smPlus, smMinus float64) float64 {
	if smTR == 0 {
		res.PlusDI[i] = 0
		res.MinusDI[i] = 0

		return 0
	}

	plusDI := 100 * smPlus / smTR
	minusDI := 100 * smMinus / smTR
	res.PlusDI[i] = plusDI
	res.MinusDI[i] = minusDI

	diSum := plusDI + minusDI
	if diSum == 0 {
		return 0
	}

	return 100 * math.Abs(plusDI-minusDI) / diSum
}
