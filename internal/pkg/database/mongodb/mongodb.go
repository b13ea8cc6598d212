package mongodb

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hartland/gridflow/internal/pkg/grid"
	"github.com/hartland/gridflow/internal/pkg/msg"
)

// Handler upserts the latest network and battery snapshots into MongoDB,
// one document per entity keyed by pid.
type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	URI      string `json:"URI"`
	Port     string `json:"Port"`
	Database string `json:"Database"`
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

// StopProcess terminates the process loop.
func (h *Handler) StopProcess() {
	h.stop <- true
}

// Process upserts status documents until stopped.
func (h Handler) Process() {
	client, err := mongo.NewClient(options.Client().ApplyURI(h.config.URI + ":" + h.config.Port))
	if err != nil {
		log.Printf("[Mongo] client: %v", err)
		return
	}

	ctx := context.TODO()
	if err = client.Connect(ctx); err != nil {
		log.Printf("[Mongo] connect: %v", err)
		return
	}
	defer client.Disconnect(ctx)

	log.Println("[Mongo] Process Started")
loop:
	for {
		select {
		case m := <-h.inbox:
			collection, pid, ok := destinationFor(m.Payload())
			if !ok {
				continue
			}
			opts := options.Update().SetUpsert(true)
			_, err = client.Database(h.config.Database).Collection(collection).UpdateOne(
				ctx,
				bson.M{"pid": pid},
				statusToBSON(pid, m.Payload()),
				opts,
			)
			if err != nil {
				log.Printf("[Mongo] upsert: %v", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[Mongo] Process Shutdown")
}

func destinationFor(payload interface{}) (string, string, bool) {
	switch p := payload.(type) {
	case grid.NetworkStatus:
		return "networkStatus", p.PID.String(), true
	case grid.BatteryStatus:
		return "batteryStatus", p.PID.String(), true
	}
	return "", "", false
}

func statusToBSON(pid string, payload interface{}) bson.D {
	// PID is written as a string rather than binary subtype 0x04.
	return bson.D{
		{Key: "$set", Value: bson.M{
			"pid":  pid,
			"data": payload,
		}},
	}
}
