package indicator

// MACDResult holds the three aligned series produced by MACD.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the moving average convergence/divergence oscillator with
// the given fast/slow EMA periods and signal-line period. Line values are
// defined once the slow EMA is warm; signal and histogram need a further
// signalPeriod-1 bars.
func MACD(values []float64, fastPeriod, slowPeriod, signalPeriod int) (MACDResult, error) {
	if fastPeriod >= slowPeriod {
		fastPeriod, slowPeriod = slowPeriod, fastPeriod
	}

	if err := checkPeriod(len(values), slowPeriod+signalPeriod-1, "MACD"); err != nil {
		return MACDResult{}, err
	}

	fast, err := EMA(values, fastPeriod)
	if err != nil {
		return MACDResult{}, err
	}

	slow, err := EMA(values, slowPeriod)
	if err != nil {
		return MACDResult{}, err
	}

	n := len(values)
	line := nanSlice(n)

	for i := slowPeriod - 1; i < n; i++ {
		line[i] = fast[i] - slow[i]
	}

	// Signal line: EMA over the defined portion of the MACD line.
	signal := nanSlice(n)
	first := slowPeriod - 1
	seedEnd := first + signalPeriod - 1

	var seed float64
	for i := first; i <= seedEnd; i++ {
		seed += line[i]
	}

	signal[seedEnd] = seed / float64(signalPeriod)
	k := 2.0 / (float64(signalPeriod) + 1.0)

	for i := seedEnd + 1; i < n; i++ {
		signal[i] = (line[i]-signal[i-1])*k + signal[i-1]
	}

	hist := nanSlice(n)

	for i := seedEnd; i < n; i++ {
		hist[i] = line[i] - signal[i]
	}

	return MACDResult{Line: line, Signal: signal, Histogram: hist}, nil
}
