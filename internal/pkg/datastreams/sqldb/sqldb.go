package sqldb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hartland/gridflow/internal/pkg/grid"
	"github.com/hartland/gridflow/internal/pkg/msg"

	_ "github.com/go-sql-driver/mysql"
)

// Handler appends per-tick network and battery snapshots to a MySQL
// history table.
type Handler struct {
	mux    *sync.Mutex
	inbox  <-chan msg.Msg
	pid    uuid.UUID
	config config
	stop   chan bool
}

type config struct {
	Server   string `json:"Server"`
	Port     int    `json:"Port"`
	Username string `json:"Username"`
	Password string `json:"Password"`
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

// Stop terminates the process loop.
func (h *Handler) Stop() {
	h.stop <- true
}

// DB opens a connection to the configured MySQL database.
func (h Handler) DB() (*sql.DB, error) {
	uri := fmt.Sprintf("%v:%v@tcp(%v:%v)/%v",
		h.config.Username, h.config.Password, h.config.Server, h.config.Port, h.config.Database)
	db, err := sql.Open("mysql", uri)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Process appends status rows until stopped.
func (h Handler) Process() {
	db, err := h.DB()
	if err != nil {
		log.Printf("[SQL] open: %v", err)
		return
	}
	defer db.Close()

	if err := initDBTables(db); err != nil {
		log.Printf("[SQL] init tables: %v", err)
		return
	}

	log.Println("[SQL] Process Started")
loop:
	for {
		select {
		case m := <-h.inbox:
			if err := insertStatus(db, m.Payload()); err != nil {
				log.Printf("[SQL] insert: %v", err)
			}

		case <-h.stop:
			break loop
		}
	}
	log.Println("[SQL] Process Shutdown")
}

func initDBTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS network_history(
			pid VARCHAR(36) NOT NULL,
			at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			supply DOUBLE NOT NULL,
			max_supply DOUBLE NOT NULL,
			demand DOUBLE NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS battery_history(
			pid VARCHAR(36) NOT NULL,
			at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			storage DOUBLE NOT NULL,
			capacity DOUBLE NOT NULL,
			supplying DOUBLE NOT NULL,
			receiving DOUBLE NOT NULL)`,
	}
	for _, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

func insertStatus(db *sql.DB, payload interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	switch p := payload.(type) {
	case grid.NetworkStatus:
		_, err := db.ExecContext(ctx,
			`INSERT INTO network_history (pid, supply, max_supply, demand) VALUES (?, ?, ?, ?)`,
			p.PID.String(), p.Supply, p.MaxSupply, p.Demand)
		return err
	case grid.BatteryStatus:
		_, err := db.ExecContext(ctx,
			`INSERT INTO battery_history (pid, storage, capacity, supplying, receiving) VALUES (?, ?, ?, ?, ?)`,
			p.PID.String(), p.Storage, p.Capacity, p.CurrentSupply, p.CurrentReceiving)
		return err
	}
	return nil
}
