/*
Package grid owns the power topology and drives the solver. It builds a
powerflow.PowerState from a JSON config, runs the tick loop, publishes
status after every tick, and is the only place topology is mutated, so the
layering cache is invalidated exactly where structure changes.
*/
package grid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hartland/gridflow/internal/pkg/msg"
	"github.com/hartland/gridflow/internal/pkg/powerflow"
	"github.com/hartland/gridflow/internal/pkg/ramp"
)

// System is the root of the power system: topology owner, tick driver,
// and status publisher.
type System struct {
	mux       *sync.Mutex
	pid       uuid.UUID
	state     *powerflow.PowerState
	solver    *powerflow.Solver
	publisher *msg.PubSub
	config    Config
	names     map[string]uuid.UUID
	revNames  map[uuid.UUID]string
	stop      chan bool
}

// New reads a JSON config file and assembles the system.
func New(configPath string) (*System, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return NewFromJSON(jsonConfig)
}

// NewFromJSON assembles the system from raw config bytes.
func NewFromJSON(jsonConfig []byte) (*System, error) {
	config := Config{}
	if err := json.Unmarshal(jsonConfig, &config); err != nil {
		return nil, err
	}

	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}

	sys := &System{
		mux:       &sync.Mutex{},
		pid:       pid,
		state:     powerflow.NewPowerState(),
		solver:    powerflow.NewSolver(ramp.Integrator{}),
		publisher: msg.NewPublisher(pid),
		config:    config,
		names:     make(map[string]uuid.UUID),
		revNames:  make(map[uuid.UUID]string),
		stop:      make(chan bool),
	}

	if err := sys.buildTopology(config.Topology); err != nil {
		return nil, err
	}
	return sys, nil
}

// buildTopology creates all networks and members first, then resolves
// battery discharge links by name in a second pass, since a battery may
// discharge into a network defined later in the config.
func (s *System) buildTopology(topology TopologyConfig) error {
	nets := make(map[string]*powerflow.Network)

	for _, netCfg := range topology.Networks {
		if _, exists := nets[netCfg.Name]; exists {
			return fmt.Errorf("grid: duplicate network name %q", netCfg.Name)
		}
		n := s.state.AddNetwork()
		nets[netCfg.Name] = n
		if err := s.registerName(netCfg.Name, n.PID); err != nil {
			return err
		}

		for _, ldCfg := range netCfg.Loads {
			pid, ld := s.state.AddLoad(n)
			ld.DesiredPower = ldCfg.DesiredPower
			ld.Enabled = ldCfg.Enabled
			if err := s.registerName(ldCfg.Name, pid); err != nil {
				return err
			}
		}

		for _, spCfg := range netCfg.Supplies {
			pid, sp := s.state.AddSupply(n)
			sp.MaxSupply = spCfg.MaxSupply
			sp.SupplyRampTolerance = spCfg.RampTolerance
			sp.SupplyRampRate = spCfg.RampRate
			sp.Enabled = spCfg.Enabled
			if err := s.registerName(spCfg.Name, pid); err != nil {
				return err
			}
		}

		for _, btCfg := range netCfg.Batteries {
			pid, bt := s.state.AddBattery(n)
			bt.Capacity = btCfg.Capacity
			bt.CurrentStorage = btCfg.InitialStorage
			bt.Efficiency = btCfg.Efficiency
			bt.MaxChargeRate = btCfg.MaxChargeRate
			bt.MaxSupply = btCfg.MaxSupply
			bt.SupplyRampTolerance = btCfg.RampTolerance
			bt.SupplyRampRate = btCfg.RampRate
			bt.CanCharge = btCfg.CanCharge
			bt.CanDischarge = btCfg.CanDischarge
			if err := s.registerName(btCfg.Name, pid); err != nil {
				return err
			}
		}
	}

	for _, netCfg := range topology.Networks {
		for _, btCfg := range netCfg.Batteries {
			if btCfg.DischargesInto == "" {
				continue
			}
			target, ok := nets[btCfg.DischargesInto]
			if !ok {
				return fmt.Errorf("grid: battery %q discharges into unknown network %q",
					btCfg.Name, btCfg.DischargesInto)
			}
			s.state.LinkBatteryDischarge(s.names[btCfg.Name], target.PID)
		}
	}
	return nil
}

func (s *System) registerName(name string, pid uuid.UUID) error {
	if name == "" {
		return errors.New("grid: config entry missing Name")
	}
	if _, exists := s.names[name]; exists {
		return fmt.Errorf("grid: duplicate name %q", name)
	}
	s.names[name] = pid
	s.revNames[pid] = name
	return nil
}

// PID is an accessor for the system's process id.
func (s *System) PID() uuid.UUID {
	return s.pid
}

// Name is an accessor for the system's configured name.
func (s *System) Name() string {
	return s.config.Name
}

// State exposes the underlying PowerState. Callers must not mutate
// topology through it while the tick loop runs; use the System mutators.
func (s *System) State() *powerflow.PowerState {
	return s.state
}

// Lookup resolves a configured entity name to its PID.
func (s *System) Lookup(name string) (uuid.UUID, bool) {
	pid, ok := s.names[name]
	return pid, ok
}

// Subscribe returns a read-only channel of system messages on a topic.
func (s *System) Subscribe(pid uuid.UUID, topic msg.Topic) (<-chan msg.Msg, error) {
	return s.publisher.Subscribe(pid, topic)
}

// Unsubscribe closes the channels associated with the pid.
func (s *System) Unsubscribe(pid uuid.UUID) {
	s.publisher.Unsubscribe(pid)
}

// Step runs a single solver tick with the given elapsed seconds and
// publishes status. Exposed for tests and for callers driving their own
// clock.
func (s *System) Step(frameTime float64) {
	s.mux.Lock()
	s.solver.Tick(frameTime, s.state, s.parallelism())
	s.mux.Unlock()
	s.publishStatus()
}

func (s *System) parallelism() int {
	if s.config.Parallelism < 1 {
		return 1
	}
	return s.config.Parallelism
}

// Process runs the tick loop until Stop is called. frameTime is measured
// wall time between ticks, so a stalled scheduler stretches a tick rather
// than dropping energy.
func (s *System) Process() {
	log.Println("[Grid] Process: Loop Started")
	interval := time.Duration(s.config.TickRate) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
loop:
	for {
		select {
		case now := <-ticker.C:
			s.Step(now.Sub(last).Seconds())
			last = now
		case <-s.stop:
			break loop
		}
	}
	log.Println("[Grid] Process: Loop Stopped")
}

// Stop terminates the tick loop.
func (s *System) Stop() {
	s.stop <- true
}

// SetLoadDemand updates a load's desired power. Used by the webservice and
// the metered demand poller.
func (s *System) SetLoadDemand(pid uuid.UUID, desired float64) error {
	if desired < 0 {
		return fmt.Errorf("grid: negative demand %v for load %v", desired, pid)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	ld, ok := s.state.Loads[pid]
	if !ok {
		return fmt.Errorf("grid: unknown load %v", pid)
	}
	ld.DesiredPower = desired
	return nil
}

// EnableSupply sets a supply's enable state.
func (s *System) EnableSupply(pid uuid.UUID, enable bool) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	sp, ok := s.state.Supplies[pid]
	if !ok {
		return fmt.Errorf("grid: unknown supply %v", pid)
	}
	sp.Enabled = enable
	return nil
}

// PauseBattery sets a battery's pause state.
func (s *System) PauseBattery(pid uuid.UUID, pause bool) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	bt, ok := s.state.Batteries[pid]
	if !ok {
		return fmt.Errorf("grid: unknown battery %v", pid)
	}
	bt.Paused = pause
	return nil
}

// RelinkBatteryDischarge rewires a battery's discharge path to another
// network (or severs it with uuid.Nil). The layering cache is invalidated
// by the state mutator.
func (s *System) RelinkBatteryDischarge(batteryPID, networkPID uuid.UUID) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	if _, ok := s.state.Batteries[batteryPID]; !ok {
		return fmt.Errorf("grid: unknown battery %v", batteryPID)
	}
	if networkPID != uuid.Nil {
		if _, ok := s.state.Networks[networkPID]; !ok {
			return fmt.Errorf("grid: unknown network %v", networkPID)
		}
	}
	s.state.LinkBatteryDischarge(batteryPID, networkPID)
	return nil
}
