package engine

import (
	"fmt"
	"math"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/types"
)

// Volatility labels.
const (
	volatilityAcceptable = "ACCEPTABLE"
	volatilityUnsuitable = "UNSUITABLE"
)

// scoreVolatility accepts the setup environment when NATR sits inside
// the configured band: too quiet and the stop distance is noise, too
// wild and the stop gets swept. Advisory only.
func (e *Engine) scoreVolatility(snap indicator.Snapshot) types.ConfirmationScore {
	score := types.ConfirmationScore{
		Dimension: "volatility",
		Total:     1,
	}

	if math.IsNaN(snap.NATR) {
		score.Label = volatilityUnsuitable
		score.Reasons = append(score.Reasons, "volatility history still warming up")

		return score
	}

	if snap.NATR >= e.cfg.MinNATR && snap.NATR <= e.cfg.MaxNATR {
		score.Confidence = 1
		score.Confirmed = true
		score.Label = volatilityAcceptable
		score.Reasons = append(score.Reasons,
			fmt.Sprintf("NATR %.2f%% within [%.1f%%, %.1f%%]", snap.NATR, e.cfg.MinNATR, e.cfg.MaxNATR))

		return score
	}

	score.Label = volatilityUnsuitable

	if snap.NATR < e.cfg.MinNATR {
		score.Reasons = append(score.Reasons,
			fmt.Sprintf("NATR %.2f%% below floor %.1f%%", snap.NATR, e.cfg.MinNATR))
	} else {
		score.Reasons = append(score.Reasons,
			fmt.Sprintf("NATR %.2f%% above ceiling %.1f%%", snap.NATR, e.cfg.MaxNATR))
	}

	return score
}
