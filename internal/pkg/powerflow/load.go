package powerflow

// Load is a power consumer attached to a single network.
// Loads are owned by the topology layer; the solver only writes
// ReceivingPower.
type Load struct {
	DesiredPower float64 `json:"DesiredPower"`
	Enabled      bool    `json:"Enabled"`
	Paused       bool    `json:"Paused"`

	// ReceivingPower is the power actually delivered this tick. It is the
	// desired power scaled by the network supply ratio, so it can exceed
	// DesiredPower on a network running a surplus.
	ReceivingPower float64 `json:"ReceivingPower"`
}
