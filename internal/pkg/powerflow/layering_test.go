package powerflow

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func layerOf(grouped [][]*Network, pid uuid.UUID) int {
	for h, layer := range grouped {
		for _, n := range layer {
			if n.PID == pid {
				return h
			}
		}
	}
	return -1
}

func countNetworks(grouped [][]*Network) int {
	total := 0
	for _, layer := range grouped {
		total += len(layer)
	}
	return total
}

func TestChainOrdersDischargeTargetFirst(t *testing.T) {
	state := NewPowerState()
	netY := state.AddNetwork()
	netX := state.AddNetwork()

	pidB, _ := state.AddBattery(netX)
	state.LinkBatteryDischarge(pidB, netY.PID)

	grouped := groupByNetworkDepth(state)

	assert.Equal(t, countNetworks(grouped), 2)
	assert.Assert(t, layerOf(grouped, netX.PID) > layerOf(grouped, netY.PID),
		"discharging network must land on a higher layer than its target")
}

func TestThreeLinkChain(t *testing.T) {
	state := NewPowerState()
	netC := state.AddNetwork()
	netB := state.AddNetwork()
	netA := state.AddNetwork()

	pidAB, _ := state.AddBattery(netA)
	state.LinkBatteryDischarge(pidAB, netB.PID)
	pidBC, _ := state.AddBattery(netB)
	state.LinkBatteryDischarge(pidBC, netC.PID)

	grouped := groupByNetworkDepth(state)

	assert.Equal(t, layerOf(grouped, netC.PID), 0)
	assert.Equal(t, layerOf(grouped, netB.PID), 1)
	assert.Equal(t, layerOf(grouped, netA.PID), 2)
}

func TestSelfLinkIsNotAnEdge(t *testing.T) {
	state := NewPowerState()
	n := state.AddNetwork()
	pidB, _ := state.AddBattery(n)
	state.LinkBatteryDischarge(pidB, n.PID)

	grouped := groupByNetworkDepth(state)

	assert.Equal(t, countNetworks(grouped), 1)
	assert.Equal(t, layerOf(grouped, n.PID), 0)
}

func TestUnknownTargetIsNotAnEdge(t *testing.T) {
	state := NewPowerState()
	n := state.AddNetwork()
	pidB, _ := state.AddBattery(n)
	ghost, _ := uuid.NewUUID()
	state.LinkBatteryDischarge(pidB, ghost)

	grouped := groupByNetworkDepth(state)

	assert.Equal(t, layerOf(grouped, n.PID), 0)
}

func TestCycleTerminatesWithEveryNetworkPlaced(t *testing.T) {
	state := NewPowerState()
	netA := state.AddNetwork()
	netB := state.AddNetwork()

	pidAB, _ := state.AddBattery(netA)
	state.LinkBatteryDischarge(pidAB, netB.PID)
	pidBA, _ := state.AddBattery(netB)
	state.LinkBatteryDischarge(pidBA, netA.PID)

	grouped := groupByNetworkDepth(state)

	assert.Equal(t, countNetworks(grouped), 2)
	assert.Assert(t, layerOf(grouped, netA.PID) >= 0)
	assert.Assert(t, layerOf(grouped, netB.PID) >= 0)
}

func TestIndependentNetworksShareLayerZero(t *testing.T) {
	state := NewPowerState()
	for i := 0; i < 5; i++ {
		state.AddNetwork()
	}

	grouped := groupByNetworkDepth(state)

	assert.Equal(t, len(grouped), 1)
	assert.Equal(t, len(grouped[0]), 5)
}
