package natshandler

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/hartland/gridflow/internal/pkg/grid"
	"github.com/hartland/gridflow/internal/pkg/msg"

	nats "github.com/nats-io/nats.go"
)

// Handler relays per-tick status snapshots to a NATS server. Network
// snapshots go to gridflow.network.<pid>, battery snapshots to
// gridflow.battery.<pid>.
type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server string `json:"Server"`
}

func (h Handler) PID() uuid.UUID {
	return h.pid
}

func redirectMsg(chIn <-chan msg.Msg, chOut chan<- msg.Msg) {
	for m := range chIn {
		chOut <- m
	}
}

// New returns a Handler subscribed to the system's status stream.
func New(configPath string, system msg.Publisher) (Handler, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return Handler{}, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return Handler{}, err
	}

	pid, _ := uuid.NewUUID()

	inbox := make(chan msg.Msg, 50)

	chStatus, err := system.Subscribe(pid, msg.Status)
	if err != nil {
		return Handler{}, err
	}
	go redirectMsg(chStatus, inbox)

	stop := make(chan bool)

	return Handler{
		mux:    &sync.Mutex{},
		inbox:  inbox,
		pid:    pid,
		config: cfg,
		stop:   stop,
	}, nil
}

// Stop terminates the process loop.
func (h *Handler) Stop() {
	h.stop <- true
}

// Process forwards status messages until stopped.
func (h Handler) Process() {
	log.Println("[NATS client] Process Started")
	server := h.config.Server
	if server == "" {
		server = nats.DefaultURL
	}
	nc, err := nats.Connect(server)
	if err != nil {
		log.Printf("[NATS client] connect: %v", err)
		return
	}
	defer nc.Close()

loop:
	for {
		select {
		case m := <-h.inbox:
			subject, ok := subjectFor(m.Payload())
			if !ok {
				continue
			}
			data, err := json.Marshal(m.Payload())
			if err != nil {
				continue
			}
			if err = nc.Publish(subject, data); err != nil {
				log.Printf("[NATS client] unable to publish: %v", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[NATS client] Process Shutdown")
}

func subjectFor(payload interface{}) (string, bool) {
	switch p := payload.(type) {
	case grid.NetworkStatus:
		return "gridflow.network." + p.PID.String(), true
	case grid.BatteryStatus:
		return "gridflow.battery." + p.PID.String(), true
	}
	return "", false
}
