package powerflow

import "github.com/google/uuid"

// PowerState is the mutable aggregate the solver runs over. The topology
// layer creates and destroys entities through the mutators below; the
// solver only reads ids and mutates numeric fields.
//
// PowerState is not internally synchronized. The owner must not mutate
// topology while a tick is in flight.
type PowerState struct {
	Loads     map[uuid.UUID]*Load
	Supplies  map[uuid.UUID]*Supply
	Batteries map[uuid.UUID]*Battery
	Networks  map[uuid.UUID]*Network

	// netOrder preserves network insertion order so that layering discovery
	// order, and with it the cycle tie-break, is deterministic.
	netOrder []uuid.UUID

	// grouped is the cached height layering. nil means unknown; it is
	// rebuilt on the next tick. Stale layerings silently misgroup dependent
	// networks, so every structural mutation below invalidates it.
	grouped [][]*Network
}

// NewPowerState returns an empty PowerState.
func NewPowerState() *PowerState {
	return &PowerState{
		Loads:     make(map[uuid.UUID]*Load),
		Supplies:  make(map[uuid.UUID]*Supply),
		Batteries: make(map[uuid.UUID]*Battery),
		Networks:  make(map[uuid.UUID]*Network),
	}
}

// InvalidateLayering discards the cached height layering. The topology
// owner must call this whenever a network or battery is added or removed or
// a discharge link is rewired outside the PowerState mutators.
func (s *PowerState) InvalidateLayering() {
	s.grouped = nil
}

// GroupedNetworks returns the cached layering, or nil when it must be
// recomputed.
func (s *PowerState) GroupedNetworks() [][]*Network {
	return s.grouped
}

func (s *PowerState) setGrouped(g [][]*Network) {
	s.grouped = g
}

// AddNetwork creates an empty network and registers it.
func (s *PowerState) AddNetwork() *Network {
	pid, _ := uuid.NewUUID()
	n := &Network{PID: pid}
	s.Networks[pid] = n
	s.netOrder = append(s.netOrder, pid)
	s.InvalidateLayering()
	return n
}

// RemoveNetwork unregisters a network. Member entities remain in the state
// maps until removed individually.
func (s *PowerState) RemoveNetwork(pid uuid.UUID) {
	delete(s.Networks, pid)
	for i, id := range s.netOrder {
		if id == pid {
			s.netOrder = append(s.netOrder[:i], s.netOrder[i+1:]...)
			break
		}
	}
	s.InvalidateLayering()
}

// AddLoad creates an enabled load as a member of the given network.
func (s *PowerState) AddLoad(n *Network) (uuid.UUID, *Load) {
	pid, _ := uuid.NewUUID()
	ld := &Load{Enabled: true}
	s.Loads[pid] = ld
	n.Loads = append(n.Loads, pid)
	return pid, ld
}

// RemoveLoad drops a load from its network and the state.
func (s *PowerState) RemoveLoad(n *Network, pid uuid.UUID) {
	delete(s.Loads, pid)
	n.Loads = removeID(n.Loads, pid)
}

// AddSupply creates an enabled supply as a member of the given network.
func (s *PowerState) AddSupply(n *Network) (uuid.UUID, *Supply) {
	pid, _ := uuid.NewUUID()
	sp := &Supply{Enabled: true}
	s.Supplies[pid] = sp
	n.Supplies = append(n.Supplies, pid)
	return pid, sp
}

// RemoveSupply drops a supply from its network and the state.
func (s *PowerState) RemoveSupply(n *Network, pid uuid.UUID) {
	delete(s.Supplies, pid)
	n.Supplies = removeID(n.Supplies, pid)
}

// AddBattery creates a battery as a member of the given network. The
// battery charges from this network; it discharges nowhere until linked.
func (s *PowerState) AddBattery(n *Network) (uuid.UUID, *Battery) {
	pid, _ := uuid.NewUUID()
	bt := &Battery{Efficiency: 1}
	s.Batteries[pid] = bt
	n.Batteries = append(n.Batteries, pid)
	s.InvalidateLayering()
	return pid, bt
}

// RemoveBattery drops a battery from its network and the state.
func (s *PowerState) RemoveBattery(n *Network, pid uuid.UUID) {
	delete(s.Batteries, pid)
	n.Batteries = removeID(n.Batteries, pid)
	s.InvalidateLayering()
}

// LinkBatteryDischarge points a battery's discharge path at a network.
// Pass uuid.Nil to sever the link.
func (s *PowerState) LinkBatteryDischarge(batteryPID, networkPID uuid.UUID) {
	if bt, ok := s.Batteries[batteryPID]; ok {
		bt.LinkedNetworkDischarging = networkPID
	}
	s.InvalidateLayering()
}

func removeID(ids []uuid.UUID, pid uuid.UUID) []uuid.UUID {
	for i, id := range ids {
		if id == pid {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
