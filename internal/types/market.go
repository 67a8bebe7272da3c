package types

import (
	"math"
	"time"

	"github.com/marketgrid/signalcore/pkg/errors"
)

// PriceBar is a single OHLCV sample.
type PriceBar struct {
	Time   time.Time `csv:"time" yaml:"time"`
	Open   float64   `csv:"open" yaml:"open"`
	High   float64   `csv:"high" yaml:"high"`
	Low    float64   `csv:"low" yaml:"low"`
	Close  float64   `csv:"close" yaml:"close"`
	Volume float64   `csv:"volume" yaml:"volume"`
}

// PriceSeries is an ordered sequence of price bars for one symbol,
// strictly increasing in timestamp. It is built once per analysis and
// treated as read-only by every component that consumes it.
type PriceSeries struct {
	Symbol string
	Bars   []PriceBar
}

// Len returns the number of bars in the series.
func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Last returns the most recent bar. The series must be non-empty.
func (s *PriceSeries) Last() PriceBar {
	return s.Bars[len(s.Bars)-1]
}

// Truncate returns a view of the series ending at bar index end (inclusive).
// The returned series shares the underlying array; callers must not mutate bars.
func (s *PriceSeries) Truncate(end int) *PriceSeries {
	return &PriceSeries{
		Symbol: s.Symbol,
		Bars:   s.Bars[:end+1],
	}
}

// Closes returns the close column as a slice aligned with the bars.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}

	return out
}

// Volumes returns the volume column as a slice aligned with the bars.
func (s *PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Volume
	}

	return out
}

// Validate checks the series against the data contract: at least minBars
// entries, strictly increasing timestamps, finite positive prices, a
// high/low envelope containing open and close, and non-negative volume.
// Violations are data errors, never panics.
func (s *PriceSeries) Validate(minBars int) error {
	if len(s.Bars) == 0 {
		return errors.Newf(errors.ErrCodeEmptySeries, "price series for %s is empty", s.Symbol)
	}

	if len(s.Bars) < minBars {
		return errors.NewInsufficientDataErrorf(minBars, len(s.Bars), s.Symbol,
			"price series for %s has %d bars, need at least %d", s.Symbol, len(s.Bars), minBars)
	}

	for i, b := range s.Bars {
		for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.Newf(errors.ErrCodeNonFiniteValue,
					"bar %d of %s contains a non-finite value", i, s.Symbol)
			}
		}

		if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
			return errors.Newf(errors.ErrCodeMalformedBar,
				"bar %d of %s has a non-positive price", i, s.Symbol)
		}

		if b.Volume < 0 {
			return errors.Newf(errors.ErrCodeMalformedBar,
				"bar %d of %s has negative volume", i, s.Symbol)
		}

		if b.High < math.Max(b.Open, b.Close) || b.Low > math.Min(b.Open, b.Close) {
			return errors.Newf(errors.ErrCodeMalformedBar,
				"bar %d of %s violates the high/low envelope", i, s.Symbol)
		}

		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"bar %d of %s is not strictly after its predecessor", i, s.Symbol)
		}
	}

	return nil
}
