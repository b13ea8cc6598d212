package powerflow

import "math"

// rampAlpha scales the per-second ratio feedback applied to ramp targets
// and battery charge demand.
const rampAlpha = 0.1

// updateNetwork balances one network for one tick. It is a pure function
// of the network's member ids and their current fields; it touches no other
// network's state, which is what makes per-layer fan-out safe without
// locks.
//
// The supply ratio comes from the previous tick's finalized totals, and
// battery discharge consumes the previous tick's AvailableSupply. Those
// lags are deliberate: they turn a global per-tick solve into a local
// recurrence that converges over a few ticks.
func updateNetwork(n *Network, state *PowerState, frameTime float64) {
	supplyRatio := 1.0
	if n.LastCombinedDemand > 0 {
		supplyRatio = n.LastCombinedSupply / n.LastCombinedDemand
	}

	var demand float64
	for _, pid := range n.Loads {
		ld := state.Loads[pid]
		if ld == nil || !ld.Enabled || ld.Paused {
			continue
		}
		assertf(ld.DesiredPower >= 0, "powerflow: load %v desired power %v < 0", pid, ld.DesiredPower)
		demand += ld.DesiredPower
		// Uniform curtailment: every load gets the same fraction of its
		// request. Loads are not prioritized against each other.
		ld.ReceivingPower = ld.DesiredPower * supplyRatio
	}

	var totalSupply, totalMaxSupply float64
	for _, pid := range n.Supplies {
		sp := state.Supplies[pid]
		if sp == nil || !sp.Enabled || sp.Paused {
			continue
		}
		effective := math.Min(sp.SupplyRampPosition+sp.SupplyRampTolerance, sp.MaxSupply)
		assertf(effective >= 0, "powerflow: supply %v effective output %v < 0", pid, effective)
		sp.AvailableSupply = effective
		sp.CurrentSupply = effective
		totalSupply += effective
		totalMaxSupply += sp.MaxSupply
		sp.SupplyRampTarget = rampFeedback(effective, sp.MaxSupply, supplyRatio, frameTime)
	}

	var totalBatterySupply, totalMaxBatterySupply float64
	for _, pid := range n.Batteries {
		bt := state.Batteries[pid]
		if bt == nil || bt.Paused {
			continue
		}

		if bt.CanCharge {
			bt.LoadingMarked = true
			// Charge demand follows the inverse feedback: surplus grows it,
			// shortage sheds it.
			desired := clamp(bt.LoadingNetworkDemand+(supplyRatio-1)*rampAlpha*frameTime*bt.MaxChargeRate, 0, bt.MaxChargeRate)
			bt.LoadingNetworkDemand = desired
			demand += desired

			received := desired * supplyRatio
			bt.CurrentReceiving = received
			bt.CurrentStorage = math.Min(bt.Capacity, bt.CurrentStorage+frameTime*received*bt.Efficiency)
		}

		if bt.CanDischarge {
			bt.SupplyingMarked = true
			bt.CurrentSupply = bt.AvailableSupply
			bt.CurrentStorage = math.Max(0, bt.CurrentStorage-frameTime*bt.CurrentSupply)
			bt.SupplyRampTarget = rampFeedback(bt.CurrentSupply, bt.MaxSupply, supplyRatio, frameTime)

			// Next tick's availability: ramp-bounded discharge plus
			// pass-through of charge received this tick, capped at what
			// storage can actually sustain for one tick.
			passthrough := bt.CurrentReceiving * bt.Efficiency
			sustainable := passthrough
			if frameTime > 0 {
				sustainable += bt.CurrentStorage / frameTime
			}
			ramped := math.Min(bt.MaxSupply, bt.SupplyRampPosition+bt.SupplyRampTolerance)
			bt.AvailableSupply = math.Min(ramped+passthrough, sustainable)
			bt.MaxEffectiveSupply = math.Min(bt.MaxSupply+passthrough, sustainable)

			totalBatterySupply += bt.CurrentSupply
			totalMaxBatterySupply += bt.MaxEffectiveSupply
		}

		assertf(bt.CurrentStorage >= 0 && bt.CurrentStorage <= bt.Capacity,
			"powerflow: battery %v storage %v outside [0, %v]", pid, bt.CurrentStorage, bt.Capacity)
	}

	n.LastCombinedSupply = totalSupply + totalBatterySupply
	n.LastCombinedMaxSupply = totalMaxSupply + totalMaxBatterySupply
	n.LastCombinedDemand = demand
}

// rampFeedback nudges a ramp target away from the current output in
// proportion to the supply/demand imbalance: shortage (ratio < 1) raises
// the target, surplus lowers it. Anchoring on current output keeps the
// target responsive even after the per-tick reset zeroes it.
func rampFeedback(current, max, supplyRatio, frameTime float64) float64 {
	return clamp(current+(1-supplyRatio)*rampAlpha*frameTime*max, 0, max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
