package grid

// Config is the static system configuration, read from a JSON file in the
// same shape the asset configs use.
type Config struct {
	Name string `json:"Name"`
	// TickRate is the interval between solver ticks in milliseconds.
	TickRate int `json:"TickRate"`
	// Parallelism bounds the solver's per-layer worker fan-out.
	Parallelism int            `json:"Parallelism"`
	Topology    TopologyConfig `json:"Topology"`
}

// TopologyConfig describes the networks and their members.
type TopologyConfig struct {
	Networks []NetworkConfig `json:"Networks"`
}

// NetworkConfig describes one bus and its members. Names must be unique
// across the whole topology; battery discharge links refer to networks by
// name.
type NetworkConfig struct {
	Name      string          `json:"Name"`
	Loads     []LoadConfig    `json:"Loads"`
	Supplies  []SupplyConfig  `json:"Supplies"`
	Batteries []BatteryConfig `json:"Batteries"`
}

// LoadConfig describes a power consumer.
type LoadConfig struct {
	Name         string  `json:"Name"`
	DesiredPower float64 `json:"DesiredPower"`
	Enabled      bool    `json:"Enabled"`
}

// SupplyConfig describes a generator.
type SupplyConfig struct {
	Name          string  `json:"Name"`
	MaxSupply     float64 `json:"MaxSupply"`
	RampTolerance float64 `json:"RampTolerance"`
	RampRate      float64 `json:"RampRate"`
	Enabled       bool    `json:"Enabled"`
}

// BatteryConfig describes storage. DischargesInto names the network the
// battery supplies; empty or the owning network's name means the battery
// only charges.
type BatteryConfig struct {
	Name           string  `json:"Name"`
	Capacity       float64 `json:"Capacity"`
	InitialStorage float64 `json:"InitialStorage"`
	Efficiency     float64 `json:"Efficiency"`
	MaxChargeRate  float64 `json:"MaxChargeRate"`
	MaxSupply      float64 `json:"MaxSupply"`
	RampTolerance  float64 `json:"RampTolerance"`
	RampRate       float64 `json:"RampRate"`
	CanCharge      bool    `json:"CanCharge"`
	CanDischarge   bool    `json:"CanDischarge"`
	DischargesInto string  `json:"DischargesInto"`
}
