package grid

import (
	"github.com/google/uuid"

	"github.com/hartland/gridflow/internal/pkg/msg"
)

// NetworkStatus is the per-tick snapshot published for each network.
type NetworkStatus struct {
	PID       uuid.UUID `json:"PID"`
	Name      string    `json:"Name"`
	Supply    float64   `json:"Supply"`
	MaxSupply float64   `json:"MaxSupply"`
	Demand    float64   `json:"Demand"`
}

// BatteryStatus is the per-tick snapshot published for each battery.
type BatteryStatus struct {
	PID              uuid.UUID `json:"PID"`
	Name             string    `json:"Name"`
	Storage          float64   `json:"Storage"`
	Capacity         float64   `json:"Capacity"`
	CurrentSupply    float64   `json:"CurrentSupply"`
	CurrentReceiving float64   `json:"CurrentReceiving"`
}

func (s *System) publishStatus() {
	s.mux.Lock()
	networks := s.networkStatusesLocked()
	batteries := s.batteryStatusesLocked()
	s.mux.Unlock()

	for _, status := range networks {
		s.publisher.Publish(msg.Status, status)
	}
	for _, status := range batteries {
		s.publisher.Publish(msg.Status, status)
	}
}

// NetworkStatuses returns a snapshot of every network's aggregates.
func (s *System) NetworkStatuses() []NetworkStatus {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.networkStatusesLocked()
}

func (s *System) networkStatusesLocked() []NetworkStatus {
	statuses := make([]NetworkStatus, 0, len(s.state.Networks))
	for pid, n := range s.state.Networks {
		statuses = append(statuses, NetworkStatus{
			PID:       pid,
			Name:      s.revNames[pid],
			Supply:    n.LastCombinedSupply,
			MaxSupply: n.LastCombinedMaxSupply,
			Demand:    n.LastCombinedDemand,
		})
	}
	return statuses
}

// NetworkStatus returns the snapshot for one network.
func (s *System) NetworkStatus(pid uuid.UUID) (NetworkStatus, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	n, ok := s.state.Networks[pid]
	if !ok {
		return NetworkStatus{}, false
	}
	return NetworkStatus{
		PID:       pid,
		Name:      s.revNames[pid],
		Supply:    n.LastCombinedSupply,
		MaxSupply: n.LastCombinedMaxSupply,
		Demand:    n.LastCombinedDemand,
	}, true
}

// BatteryStatuses returns a snapshot of every battery.
func (s *System) BatteryStatuses() []BatteryStatus {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.batteryStatusesLocked()
}

func (s *System) batteryStatusesLocked() []BatteryStatus {
	statuses := make([]BatteryStatus, 0, len(s.state.Batteries))
	for pid, bt := range s.state.Batteries {
		statuses = append(statuses, BatteryStatus{
			PID:              pid,
			Name:             s.revNames[pid],
			Storage:          bt.CurrentStorage,
			Capacity:         bt.Capacity,
			CurrentSupply:    bt.CurrentSupply,
			CurrentReceiving: bt.CurrentReceiving,
		})
	}
	return statuses
}

// BatteryStatus returns the snapshot for one battery.
func (s *System) BatteryStatus(pid uuid.UUID) (BatteryStatus, bool) {
	s.mux.Lock()
	defer s.mux.Unlock()
	bt, ok := s.state.Batteries[pid]
	if !ok {
		return BatteryStatus{}, false
	}
	return BatteryStatus{
		PID:              pid,
		Name:             s.revNames[pid],
		Storage:          bt.CurrentStorage,
		Capacity:         bt.Capacity,
		CurrentSupply:    bt.CurrentSupply,
		CurrentReceiving: bt.CurrentReceiving,
	}, true
}
