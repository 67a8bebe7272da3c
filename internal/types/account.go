package types

// AccountState is the caller-supplied account snapshot consumed by the
// risk validator and backtest simulator. The engine never mutates it;
// callers running a portfolio sweep must hand each analysis its own copy.
type AccountState struct {
	// Balance is the current account equity.
	Balance float64 `yaml:"balance" validate:"gt=0"`
	// PeakEquity is the historical equity high used for drawdown checks.
	PeakEquity float64 `yaml:"peak_equity" validate:"gt=0"`
	// RiskFraction is the fraction of the balance risked per trade
	// (e.g. 0.01 for 1%).
	RiskFraction float64 `yaml:"risk_fraction" validate:"gt=0,lte=0.1"`
}

// Drawdown returns the fractional decline from peak equity to the
// current balance, zero when the account is at or above its peak.
func (a AccountState) Drawdown() float64 {
	if a.PeakEquity <= 0 || a.Balance >= a.PeakEquity {
		return 0
	}

	return (a.PeakEquity - a.Balance) / a.PeakEquity
}
