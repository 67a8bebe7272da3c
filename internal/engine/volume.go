package engine

import (
	"fmt"
	"math"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/types"
)

// scoreVolume checks participation behind a move: current volume against
// its moving-average floor, OBV direction, and CMF sign. Two of three
// confirm. The score is advisory; it feeds the composite confidence but
// never blocks a classification that trend and momentum agree on.
func (e *Engine) scoreVolume(snap indicator.Snapshot, trend types.TrendLabel) types.ConfirmationScore {
	score := types.ConfirmationScore{
		Dimension: "volume",
		Total:     3,
	}

	bearish := trend == types.TrendBearish

	agree := func(reason string) {
		if bearish {
			score.Bearish++
		} else {
			score.Bullish++
		}

		score.Reasons = append(score.Reasons, reason)
	}

	if !math.IsNaN(snap.VolumeRatio) && snap.VolumeRatio >= e.cfg.VolumeFloorRatio {
		agree(fmt.Sprintf("volume %.2fx its moving average", snap.VolumeRatio))
	}

	if !math.IsNaN(snap.OBV) && !math.IsNaN(snap.OBVPrev) {
		if bearish && snap.OBV < snap.OBVPrev {
			agree("OBV falling")
		} else if !bearish && snap.OBV > snap.OBVPrev {
			agree("OBV rising")
		}
	}

	if !math.IsNaN(snap.CMF) {
		if bearish && snap.CMF < 0 {
			agree(fmt.Sprintf("CMF %.3f negative", snap.CMF))
		} else if !bearish && snap.CMF > 0 {
			agree(fmt.Sprintf("CMF %.3f positive", snap.CMF))
		}
	}

	agreeing := score.Bullish
	if bearish {
		agreeing = score.Bearish
	}

	score.Confidence = agreeing / float64(score.Total)
	score.Confirmed = agreeing >= 2

	if score.Confirmed {
		score.Label = "CONFIRMED"
	} else {
		score.Label = "WEAK"
		score.Reasons = append(score.Reasons, "volume participation weak")
	}

	return score
}
