package indicator

// SMA computes the simple moving average of values over the given period.
// The first period-1 entries of the result are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period, "SMA"); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))

	var sum float64

	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}

	return out, nil
}

// EMA computes the exponential moving average of values over the given
// period. The average is seeded with the simple mean of the first period
// values; the first period-1 entries are NaN.
func EMA(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period, "EMA"); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))
	k := 2.0 / (float64(period) + 1.0)

	var seed float64
	for i := 0; i < period; i++ {
		seed += values[i]
	}

	out[period-1] = seed / float64(period)

	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*k + out[i-1]
	}

	return out, nil
}
