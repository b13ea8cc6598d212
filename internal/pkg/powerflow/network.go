package powerflow

import "github.com/google/uuid"

// Network is a connected electrical bus. It holds member ids into the
// PowerState maps rather than the members themselves; a battery references
// a network id and vice versa without either owning the other.
type Network struct {
	PID uuid.UUID `json:"PID"`

	Loads     []uuid.UUID `json:"Loads"`
	Supplies  []uuid.UUID `json:"Supplies"`
	Batteries []uuid.UUID `json:"Batteries"`

	// Aggregates finalized at the end of each tick. The next tick's supply
	// ratio is LastCombinedSupply / LastCombinedDemand; the one-tick lag is
	// what lets every network in a layer evaluate independently.
	LastCombinedSupply    float64 `json:"LastCombinedSupply"`
	LastCombinedMaxSupply float64 `json:"LastCombinedMaxSupply"`
	LastCombinedDemand    float64 `json:"LastCombinedDemand"`
}
