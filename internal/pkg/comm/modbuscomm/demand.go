package modbuscomm

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// DemandSetter is the slice of the system the poller needs: name
// resolution and load demand updates.
type DemandSetter interface {
	Lookup(name string) (uuid.UUID, bool)
	SetLoadDemand(pid uuid.UUID, desired float64) error
}

// DemandPoller periodically reads meter registers and applies each value
// as the desired power of the load sharing the register's name.
type DemandPoller struct {
	comm      ModbusComm
	registers []Register
	system    DemandSetter
	pollRate  int
	stop      chan bool
}

type demandConfig struct {
	Poller    PollerConfig `json:"Poller"`
	PollRate  int          `json:"PollRate"`
	Registers []Register   `json:"Registers"`
}

// New reads a JSON config file and builds a DemandPoller against the system.
func New(configPath string, system DemandSetter) (*DemandPoller, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := demandConfig{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return nil, err
	}

	return &DemandPoller{
		comm:      NewPoller(cfg.Poller),
		registers: FilterRegisters(cfg.Registers, ro),
		system:    system,
		pollRate:  cfg.PollRate,
		stop:      make(chan bool),
	}, nil
}

// Stop terminates the poll loop.
func (p *DemandPoller) Stop() {
	p.stop <- true
}

// Process polls until stopped. Read errors skip the cycle, they do not
// terminate the loop; the meter may come back.
func (p *DemandPoller) Process() {
	interval := time.Duration(p.pollRate) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Println("[DemandPoller] Process Started")
loop:
	for {
		select {
		case <-ticker.C:
			values, err := p.comm.Read(p.registers)
			if err != nil {
				log.Printf("[DemandPoller] read: %v", err)
				continue
			}
			p.apply(values)

		case <-p.stop:
			break loop
		}
	}
	log.Println("[DemandPoller] Process Shutdown")
}

func (p *DemandPoller) apply(values map[string]float64) {
	for name, val := range values {
		if val < 0 || math.IsNaN(val) {
			log.Printf("[DemandPoller] bad reading %v for %q", val, name)
			continue
		}
		pid, ok := p.system.Lookup(name)
		if !ok {
			log.Printf("[DemandPoller] no load named %q", name)
			continue
		}
		if err := p.system.SetLoadDemand(pid, val); err != nil {
			log.Printf("[DemandPoller] set demand: %v", err)
		}
	}
}
