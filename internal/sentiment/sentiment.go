// Package sentiment defines the optional confidence-adjustment hook.
// A provider contributes a bounded additive adjustment to the composite
// confidence of a signal; it can temper or reinforce a classification
// but never create one.
package sentiment

import "context"

//go:generate mockgen -source=sentiment.go -destination=../../mocks/mock_sentiment.go -package=mocks

// Provider supplies a sentiment adjustment for a symbol. The returned
// value is an additive confidence delta (percentage points) and a short
// human-readable note explaining it. Implementations may reach external
// services, so the call takes a context.
type Provider interface {
	Adjustment(ctx context.Context, symbol string) (float64, string, error)
}

// Static is a Provider returning a fixed adjustment for every symbol.
type Static struct {
	Value float64
	Note  string
}

func NewStatic(value float64, note string) *Static {
	return &Static{
		Value: value,
		Note:  note,
	}
}

// Adjustment implements Provider.
func (s *Static) Adjustment(_ context.Context, _ string) (float64, string, error) {
	return s.Value, s.Note, nil
}

// Clamp bounds an adjustment to [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}
