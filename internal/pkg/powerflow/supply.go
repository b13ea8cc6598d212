package powerflow

// Supply is a generator attached to a single network. Output follows a
// ramp: the instantaneous capability is the ramp position plus a tolerance
// band, never exceeding MaxSupply.
type Supply struct {
	MaxSupply float64 `json:"MaxSupply"`

	// SupplyRampPosition is advanced toward SupplyRampTarget by the ramp
	// integrator between ticks, at most SupplyRampRate units per second.
	SupplyRampPosition  float64 `json:"SupplyRampPosition"`
	SupplyRampTolerance float64 `json:"SupplyRampTolerance"`
	SupplyRampRate      float64 `json:"SupplyRampRate"`

	Enabled bool `json:"Enabled"`
	Paused  bool `json:"Paused"`

	// Outputs, recomputed every tick.
	CurrentSupply    float64 `json:"CurrentSupply"`
	AvailableSupply  float64 `json:"AvailableSupply"`
	SupplyRampTarget float64 `json:"SupplyRampTarget"`
}
