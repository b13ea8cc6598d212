package powerflow

import "github.com/google/uuid"

// Battery is storage that can act as a load (charging) on the network that
// owns it and as a supply (discharging) into the network named by
// LinkedNetworkDischarging. The discharge link is what orders networks into
// height layers.
type Battery struct {
	Capacity       float64 `json:"Capacity"`
	CurrentStorage float64 `json:"CurrentStorage"`

	// Efficiency scales energy stored per unit of received charging power.
	Efficiency    float64 `json:"Efficiency"`
	MaxChargeRate float64 `json:"MaxChargeRate"`
	MaxSupply     float64 `json:"MaxSupply"`

	// Discharge ramp, mirroring the Supply ramp model.
	SupplyRampPosition  float64 `json:"SupplyRampPosition"`
	SupplyRampTolerance float64 `json:"SupplyRampTolerance"`
	SupplyRampRate      float64 `json:"SupplyRampRate"`

	CanCharge    bool `json:"CanCharge"`
	CanDischarge bool `json:"CanDischarge"`
	Paused       bool `json:"Paused"`

	// LinkedNetworkDischarging names the network this battery discharges
	// into. uuid.Nil or the owning network means no dependency edge.
	LinkedNetworkDischarging uuid.UUID `json:"LinkedNetworkDischarging"`

	// Outputs. AvailableSupply is computed one tick ahead of its use as
	// CurrentSupply, so discharge can pass through concurrently received
	// charging power without an in-tick fixed-point solve.
	CurrentSupply        float64 `json:"CurrentSupply"`
	AvailableSupply      float64 `json:"AvailableSupply"`
	MaxEffectiveSupply   float64 `json:"MaxEffectiveSupply"`
	CurrentReceiving     float64 `json:"CurrentReceiving"`
	LoadingNetworkDemand float64 `json:"LoadingNetworkDemand"`
	SupplyRampTarget     float64 `json:"SupplyRampTarget"`

	// Per-tick marks recording whether the charge/discharge path of this
	// battery was visited. Cleared unconditionally by the cleanup pass.
	LoadingMarked   bool `json:"-"`
	SupplyingMarked bool `json:"-"`
}
