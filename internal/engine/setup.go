package engine

import (
	"math"

	"github.com/marketgrid/signalcore/internal/indicator"
	"github.com/marketgrid/signalcore/internal/types"
)

// buildSetup derives the trade levels from the latest close and ATR:
// stop at StopATRMultiple ATRs against the direction, target at
// TargetATRMultiple ATRs with it. Returns nil when ATR is undefined or
// zero, since no meaningful stop distance exists.
func (e *Engine) buildSetup(snap indicator.Snapshot, direction types.Direction) *types.Setup {
	if !indicator.Defined(snap.ATR) || snap.ATR <= 0 {
		return nil
	}

	entry := snap.Close
	stopDist := e.cfg.StopATRMultiple * snap.ATR
	targetDist := e.cfg.TargetATRMultiple * snap.ATR

	setup := &types.Setup{
		Entry: entry,
		ATR:   snap.ATR,
	}

	if direction == types.DirectionBuy {
		setup.StopLoss = entry - stopDist
		setup.TakeProfit = entry + targetDist
	} else {
		setup.StopLoss = entry + stopDist
		setup.TakeProfit = entry - targetDist
	}

	setup.RewardRisk = RewardRisk(setup.Entry, setup.StopLoss, setup.TakeProfit)

	return setup
}

// RewardRisk computes |take_profit-entry| / |entry-stop_loss|.
// A zero stop distance yields +Inf.
func RewardRisk(entry, stopLoss, takeProfit float64) float64 {
	risk := math.Abs(entry - stopLoss)
	reward := math.Abs(takeProfit - entry)

	if risk == 0 {
		return math.Inf(1)
	}

	return reward / risk
}
