/*
Package ramp moves supply and battery ramp positions toward the targets
the solver computes each tick. Actual output lags the target by a bounded
rate, which smooths generator response instead of letting it snap to every
per-tick swing.
*/
package ramp

import (
	"math"

	"github.com/hartland/gridflow/internal/pkg/powerflow"
)

// Integrator is a rate-limited ramp-position integrator. A RampRate of
// zero or less on an entity means the position snaps straight to the
// target.
type Integrator struct{}

// Advance steps every enabled, unpaused supply and every unpaused
// discharging battery toward its ramp target by at most RampRate*frameTime
// without overshooting.
func (Integrator) Advance(state *powerflow.PowerState, frameTime float64) {
	for _, sp := range state.Supplies {
		if !sp.Enabled || sp.Paused {
			continue
		}
		sp.SupplyRampPosition = step(sp.SupplyRampPosition, sp.SupplyRampTarget, sp.SupplyRampRate*frameTime)
	}
	for _, bt := range state.Batteries {
		if bt.Paused || !bt.CanDischarge {
			continue
		}
		bt.SupplyRampPosition = step(bt.SupplyRampPosition, bt.SupplyRampTarget, bt.SupplyRampRate*frameTime)
	}
}

func step(position, target, maxStep float64) float64 {
	if maxStep <= 0 {
		return target
	}
	diff := target - position
	if math.Abs(diff) <= maxStep {
		return target
	}
	if diff > 0 {
		return position + maxStep
	}
	return position - maxStep
}
