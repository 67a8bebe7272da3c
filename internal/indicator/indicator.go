// Package indicator implements the technical indicator battery consumed by
// the signal engine. Every indicator is a pure function over a price series
// (or a single column) that returns a slice aligned with its input: one value
// per bar, with math.NaN() for the warm-up entries whose lookback window is
// not yet full. Wilder's smoothing is used for RSI, ATR and ADX throughout.
package indicator

import (
	"math"

	"github.com/marketgrid/signalcore/pkg/errors"
)

// nanSlice returns a slice of n NaN values.
func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// checkPeriod validates a lookback period against the input length.
func checkPeriod(n, period int, name string) error {
	if period <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s period must be positive, got %d", name, period)
	}

	if n < period {
		return errors.NewInsufficientDataErrorf(period, n, "",
			"%s requires at least %d values, got %d", name, period, n)
	}

	return nil
}

// errInvalidMultiplier builds the shared error for non-positive band multipliers.
func errInvalidMultiplier(name string, multiplier float64) error {
	return errors.Newf(errors.ErrCodeInvalidMultiplier,
		"%s multiplier must be positive, got %g", name, multiplier)
}

// Defined reports whether v is a usable indicator value (not NaN, not Inf).
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
