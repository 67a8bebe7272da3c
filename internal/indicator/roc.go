package indicator

// ROC computes the rate of change as a percentage: 100 * (close[i] -
// close[i-period]) / close[i-period]. The first period entries are NaN.
func ROC(closes []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(closes), period+1, "ROC"); err != nil {
		return nil, err
	}

	out := nanSlice(len(closes))
	for i := period; i < len(closes); i++ {
		base := closes[i-period]
		if base == 0 {
			continue
		}

		out[i] = 100 * (closes[i] - base) / base
	}

	return out, nil
}
