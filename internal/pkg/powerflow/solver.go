/*
Package powerflow approximates per-tick power flow over a graph of
networks, supplies, loads, and batteries. It does no true circuit solve:
each network balances itself against the previous tick's supply/demand
ratio, and battery discharge links order networks into height layers so
that every layer can be evaluated in parallel.
*/
package powerflow

import "sync"

// RampIntegrator advances ramp positions toward the targets computed
// during a tick. The contract is only that positions eventually move
// toward targets, bounded by some rate.
type RampIntegrator interface {
	Advance(state *PowerState, frameTime float64)
}

// Solver runs the fixed-step balance pass. The zero value is usable; Ramp
// is optional.
type Solver struct {
	Ramp RampIntegrator
}

// NewSolver returns a solver with the given ramp integrator.
func NewSolver(ramp RampIntegrator) *Solver {
	return &Solver{Ramp: ramp}
}

// Tick runs one solver pass. frameTime is elapsed seconds (> 0),
// parallelism the worker bound per layer (>= 1). Phases are strict
// barriers: reset, layering, per-layer evaluation lowest height first,
// battery cleanup, ramp integration.
func (s *Solver) Tick(frameTime float64, state *PowerState, parallelism int) {
	resetOutputs(state)

	grouped := state.GroupedNetworks()
	if grouped == nil {
		grouped = groupByNetworkDepth(state)
		state.setGrouped(grouped)
	}

	total := 0
	for _, layer := range grouped {
		total += len(layer)
	}
	assertf(total == len(state.Networks),
		"powerflow: layering holds %d networks, state holds %d (stale cache?)", total, len(state.Networks))

	for _, layer := range grouped {
		evaluateLayer(layer, state, frameTime, parallelism)
	}

	cleanupBatteries(state)

	if s.Ramp != nil {
		s.Ramp.Advance(state, frameTime)
	}
}

func resetOutputs(state *PowerState) {
	for _, ld := range state.Loads {
		if !ld.Paused {
			ld.ReceivingPower = 0
		}
	}
	for _, sp := range state.Supplies {
		if !sp.Paused {
			sp.CurrentSupply = 0
			sp.SupplyRampTarget = 0
		}
	}
}

// evaluateLayer fans updateNetwork out over a bounded worker set and joins
// before returning. Networks in one layer never share member ids, so the
// workers need no locks.
func evaluateLayer(layer []*Network, state *PowerState, frameTime float64, parallelism int) {
	if parallelism > len(layer) {
		parallelism = len(layer)
	}
	if parallelism <= 1 || len(layer) < 2 {
		for _, n := range layer {
			updateNetwork(n, state, frameTime)
		}
		return
	}

	work := make(chan *Network)
	var wg sync.WaitGroup
	wg.Add(parallelism)
	for i := 0; i < parallelism; i++ {
		go func() {
			defer wg.Done()
			for n := range work {
				updateNetwork(n, state, frameTime)
			}
		}()
	}
	for _, n := range layer {
		work <- n
	}
	close(work)
	wg.Wait()
}

// cleanupBatteries finalizes batteries whose charge or discharge path was
// not visited this tick (paused or disconnected since marking), so stale
// values cannot leak into the next tick. Marks are per-tick flags and are
// cleared unconditionally.
func cleanupBatteries(state *PowerState) {
	for _, bt := range state.Batteries {
		if !bt.Paused && !bt.SupplyingMarked {
			bt.CurrentSupply = 0
			bt.SupplyRampTarget = 0
			bt.LoadingNetworkDemand = 0
		}
		if !bt.LoadingMarked {
			bt.CurrentReceiving = 0
		}
		bt.LoadingMarked = false
		bt.SupplyingMarked = false
	}
}
