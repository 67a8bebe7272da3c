// Package risk validates proposed trade setups against account state and
// market conditions. Every check always runs; a failed check is data in
// the result, never an error.
package risk

import (
	"fmt"
	"math"

	"github.com/creasty/defaults"
	"go.uber.org/zap"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/logger"
	"github.com/marketgrid/signalcore/internal/types"
	"github.com/marketgrid/signalcore/pkg/errors"
)

// Config holds the thresholds and the aggregation policy of the validator.
type Config struct {
	// RiskFraction is the account fraction risked per trade when the
	// account state does not carry its own.
	RiskFraction float64 `yaml:"risk_fraction" default:"0.01"`
	// MaxPositionNotionalFrac caps the position notional relative to the
	// account balance.
	MaxPositionNotionalFrac float64 `yaml:"max_position_notional_frac" default:"0.05"`
	// MinRewardRisk is the reward:risk floor.
	MinRewardRisk float64 `yaml:"min_reward_risk" default:"2.0"`
	// VolumeFloorRatio and MinADX form the conjunctive "market too quiet"
	// check: both must be under their floors for the check to fail.
	VolumeFloorRatio float64 `yaml:"volume_floor_ratio" default:"0.5"`
	MinADX           float64 `yaml:"min_adx" default:"20"`
	// StopATRMin rejects stops tighter than this many ATRs.
	StopATRMin float64 `yaml:"stop_atr_min" default:"1.0"`
	// TargetATRMax rejects targets further than this many ATRs.
	TargetATRMax float64 `yaml:"target_atr_max" default:"10.0"`
	// MaxDrawdownFrac rejects new trades past this equity drawdown.
	MaxDrawdownFrac float64 `yaml:"max_drawdown_frac" default:"0.10"`

	// Policy selects strict or permissive aggregation. CriticalChecks
	// names the checks that reject even under the permissive policy.
	Policy         types.RiskPolicy  `yaml:"policy" default:"strict"`
	CriticalChecks []types.CheckName `yaml:"critical_checks" default:"[\"drawdown\",\"position_size\"]"`
}

// DefaultConfig returns the validator configuration with defaults applied.
func DefaultConfig() Config {
	var cfg Config
	_ = defaults.Set(&cfg)

	return cfg
}

// Validate rejects malformed validator configurations at load time.
func (c Config) Validate() error {
	if c.Policy != types.RiskPolicyStrict && c.Policy != types.RiskPolicyPermissive {
		return errors.Newf(errors.ErrCodeInvalidRiskPolicy, "unknown risk policy %q", c.Policy)
	}

	known := map[types.CheckName]bool{
		types.CheckPositionSize:    true,
		types.CheckRewardRisk:      true,
		types.CheckMarketCondition: true,
		types.CheckStopDistance:    true,
		types.CheckTargetDistance:  true,
		types.CheckDrawdown:        true,
	}

	for _, name := range c.CriticalChecks {
		if !known[name] {
			return errors.Newf(errors.ErrCodeInvalidRiskPolicy, "unknown critical check %q", name)
		}
	}

	if c.RiskFraction <= 0 || c.RiskFraction >= 1 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"risk_fraction must be in (0,1), got %g", c.RiskFraction)
	}

	if c.MaxPositionNotionalFrac <= 0 || c.MaxPositionNotionalFrac > 1 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"max_position_notional_frac must be in (0,1], got %g", c.MaxPositionNotionalFrac)
	}

	if c.MinRewardRisk <= 0 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"min_reward_risk must be positive, got %g", c.MinRewardRisk)
	}

	if c.StopATRMin <= 0 || c.TargetATRMax <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier,
			"stop/target ATR bounds must be positive, got %g and %g", c.StopATRMin, c.TargetATRMax)
	}

	if c.MaxDrawdownFrac <= 0 || c.MaxDrawdownFrac >= 1 {
		return errors.Newf(errors.ErrCodeInvalidRatio,
			"max_drawdown_frac must be in (0,1), got %g", c.MaxDrawdownFrac)
	}

	return nil
}

// Validator applies the full check battery to proposed setups.
type Validator struct {
	cfg    Config
	logger *logger.Logger
}

// New builds a Validator after validating its configuration.
func New(cfg Config, log *logger.Logger) (*Validator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Validator{cfg: cfg, logger: log}, nil
}

// Validate runs all six checks against the setup, in a fixed order,
// without short-circuiting, then aggregates per the configured policy.
func (v *Validator) Validate(setup types.Setup, snap indicator.Snapshot, account types.AccountState) types.RiskValidation {
	validation := types.RiskValidation{
		Policy: v.cfg.Policy,
	}

	size := v.positionSize(setup, account)
	validation.PositionSize = size

	validation.Checks = []types.CheckResult{
		v.checkPositionSize(setup, account, size),
		v.checkRewardRisk(setup),
		v.checkMarketCondition(snap),
		v.checkStopDistance(setup, snap),
		v.checkTargetDistance(setup, snap),
		v.checkDrawdown(account),
	}

	for i := range validation.Checks {
		validation.Checks[i].Critical = v.isCritical(validation.Checks[i].Name)
	}

	validation.Allowed = v.aggregate(validation.Checks)

	if !validation.Allowed {
		v.logger.Debug("setup rejected",
			zap.String("policy", string(v.cfg.Policy)),
			zap.Int("failed_checks", len(validation.Failed())),
		)
	}

	return validation
}

// positionSize computes the risk-fraction position size in instrument units.
func (v *Validator) positionSize(setup types.Setup, account types.AccountState) float64 {
	riskFraction := account.RiskFraction
	if riskFraction <= 0 {
		riskFraction = v.cfg.RiskFraction
	}

	stopDist := math.Abs(setup.Entry - setup.StopLoss)
	if stopDist == 0 || account.Balance <= 0 {
		return 0
	}

	return account.Balance * riskFraction / stopDist
}

func (v *Validator) checkPositionSize(setup types.Setup, account types.AccountState, size float64) types.CheckResult {
	result := types.CheckResult{Name: types.CheckPositionSize}

	if size <= 0 {
		result.Message = "no computable position size (zero stop distance or empty account)"

		return result
	}

	notional := size * setup.Entry
	limit := account.Balance * v.cfg.MaxPositionNotionalFrac

	if notional > limit {
		result.Message = fmt.Sprintf("notional %.2f exceeds %.0f%% of balance (%.2f)",
			notional, v.cfg.MaxPositionNotionalFrac*100, limit)

		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("notional %.2f within %.0f%% of balance", notional, v.cfg.MaxPositionNotionalFrac*100)

	return result
}

func (v *Validator) checkRewardRisk(setup types.Setup) types.CheckResult {
	result := types.CheckResult{Name: types.CheckRewardRisk}

	if setup.RewardRisk >= v.cfg.MinRewardRisk {
		result.Passed = true
		result.Message = fmt.Sprintf("reward:risk %.2f meets minimum %.2f", setup.RewardRisk, v.cfg.MinRewardRisk)
	} else {
		result.Message = fmt.Sprintf("reward:risk %.2f below minimum %.2f", setup.RewardRisk, v.cfg.MinRewardRisk)
	}

	return result
}

// checkMarketCondition fails only when volume AND trend strength are
// both under their floors: the market is too quiet to trust the setup.
func (v *Validator) checkMarketCondition(snap indicator.Snapshot) types.CheckResult {
	result := types.CheckResult{Name: types.CheckMarketCondition}

	quietVolume := !math.IsNaN(snap.VolumeRatio) && snap.VolumeRatio < v.cfg.VolumeFloorRatio
	weakTrend := !math.IsNaN(snap.ADX) && snap.ADX < v.cfg.MinADX

	if quietVolume && weakTrend {
		result.Message = fmt.Sprintf("market too quiet: volume %.2fx below %.2fx floor and ADX %.1f below %.1f",
			snap.VolumeRatio, v.cfg.VolumeFloorRatio, snap.ADX, v.cfg.MinADX)

		return result
	}

	result.Passed = true
	result.Message = "market condition acceptable"

	return result
}

func (v *Validator) checkStopDistance(setup types.Setup, snap indicator.Snapshot) types.CheckResult {
	result := types.CheckResult{Name: types.CheckStopDistance}

	atr := setupATR(setup, snap)
	stopDist := math.Abs(setup.Entry - setup.StopLoss)

	if atr > 0 && stopDist < v.cfg.StopATRMin*atr {
		result.Message = fmt.Sprintf("stop %.2f away is tighter than %.1fx ATR (%.2f)",
			stopDist, v.cfg.StopATRMin, atr)

		return result
	}

	result.Passed = true
	result.Message = "stop distance acceptable"

	return result
}

func (v *Validator) checkTargetDistance(setup types.Setup, snap indicator.Snapshot) types.CheckResult {
	result := types.CheckResult{Name: types.CheckTargetDistance}

	atr := setupATR(setup, snap)
	targetDist := math.Abs(setup.TakeProfit - setup.Entry)

	if atr > 0 && targetDist > v.cfg.TargetATRMax*atr {
		result.Message = fmt.Sprintf("target %.2f away exceeds %.1fx ATR (%.2f)",
			targetDist, v.cfg.TargetATRMax, atr)

		return result
	}

	result.Passed = true
	result.Message = "target distance acceptable"

	return result
}

func (v *Validator) checkDrawdown(account types.AccountState) types.CheckResult {
	result := types.CheckResult{Name: types.CheckDrawdown}

	dd := account.Drawdown()
	if dd >= v.cfg.MaxDrawdownFrac {
		result.Message = fmt.Sprintf("drawdown %.1f%% at or past ceiling %.1f%%", dd*100, v.cfg.MaxDrawdownFrac*100)

		return result
	}

	result.Passed = true
	result.Message = fmt.Sprintf("drawdown %.1f%% within ceiling", dd*100)

	return result
}

// setupATR prefers the ATR the setup was sized with, falling back to the
// snapshot's current ATR.
func setupATR(setup types.Setup, snap indicator.Snapshot) float64 {
	if setup.ATR > 0 {
		return setup.ATR
	}

	if indicator.Defined(snap.ATR) && snap.ATR > 0 {
		return snap.ATR
	}

	return 0
}

func (v *Validator) isCritical(name types.CheckName) bool {
	for _, critical := range v.cfg.CriticalChecks {
		if name == critical {
			return true
		}
	}

	return false
}

// aggregate applies the policy: strict requires every check to pass,
// permissive rejects only on critical failures.
func (v *Validator) aggregate(checks []types.CheckResult) bool {
	for _, c := range checks {
		if c.Passed {
			continue
		}

		if v.cfg.Policy == types.RiskPolicyStrict || c.Critical {
			return false
		}
	}

	return true
}
