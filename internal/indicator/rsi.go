package indicator

// RSI computes the Relative Strength Index of values over the given period
// using Wilder's smoothing. Output is bounded to [0,100]; when the average
// loss is zero the value resolves to the bounded extreme 100 rather than
// dividing by zero. The first period entries are NaN (the first close
// change only exists at index 1).
func RSI(values []float64, period int) ([]float64, error) {
	if err := checkPeriod(len(values), period+1, "RSI"); err != nil {
		return nil, err
	}

	out := nanSlice(len(values))

	var avgGain, avgLoss float64

	// First averages over the initial period of changes.
	for i := 1; i <= period; i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}

	avgGain /= float64(period)
	avgLoss /= float64(period)

	out[period] = rsiValue(avgGain, avgLoss)

	// Subsequent averages using Wilder's smoothing method.
	for i := period + 1; i < len(values); i++ {
		change := values[i] - values[i-1]

		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)

		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss

	return 100 - (100 / (1 + rs))
}
