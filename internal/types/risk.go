package types

// RiskPolicy selects how individual check failures aggregate into the
// final allow/reject decision.
type RiskPolicy string

const (
	// RiskPolicyStrict rejects the trade unless every check passes.
	RiskPolicyStrict RiskPolicy = "strict"
	// RiskPolicyPermissive rejects only when a critical check fails;
	// non-critical failures degrade to warnings.
	RiskPolicyPermissive RiskPolicy = "permissive"
)

// CheckName identifies one of the independent risk checks.
type CheckName string

const (
	CheckPositionSize    CheckName = "position_size"
	CheckRewardRisk      CheckName = "reward_risk"
	CheckMarketCondition CheckName = "market_condition"
	CheckStopDistance    CheckName = "stop_distance"
	CheckTargetDistance  CheckName = "target_distance"
	CheckDrawdown        CheckName = "drawdown"
)

// CheckResult is the outcome of a single risk check. A failed check is
// data in the result, never an error.
type CheckResult struct {
	Name     CheckName `yaml:"name"`
	Passed   bool      `yaml:"passed"`
	Critical bool      `yaml:"critical"`
	Message  string    `yaml:"message"`
}

// RiskValidation aggregates all check outcomes for one Setup.
type RiskValidation struct {
	Allowed bool          `yaml:"allowed"`
	Policy  RiskPolicy    `yaml:"policy"`
	Checks  []CheckResult `yaml:"checks"`
	// PositionSize is the computed size for the proposed trade, in units
	// of the instrument.
	PositionSize float64 `yaml:"position_size"`
}

// Failed returns the checks that did not pass, in evaluation order.
func (v RiskValidation) Failed() []CheckResult {
	var out []CheckResult

	for _, c := range v.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}

	return out
}
