// Package webservice exposes the running system over HTTP. Read endpoints
// return the latest tick snapshots, the demand endpoint adjusts a load, and
// /stream relays the status topic over a websocket.
package webservice

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hartland/gridflow/internal/pkg/grid"
	"github.com/hartland/gridflow/internal/pkg/msg"
)

// Server routes HTTP requests to a grid.System.
type Server struct {
	config   config
	system   *grid.System
	router   *mux.Router
	upgrader websocket.Upgrader
}

type config struct {
	Addr string `json:"Addr"`
}

// DemandRequest is the body of POST /loads/{pid}/demand.
type DemandRequest struct {
	DesiredPower float64 `json:"DesiredPower"`
}

// New reads a JSON config file and builds a Server around the system.
func New(configPath string, system *grid.System) (*Server, error) {
	jsonConfig, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := config{}
	if err := json.Unmarshal(jsonConfig, &cfg); err != nil {
		return nil, err
	}

	s := &Server{
		config: cfg,
		system: system,
		router: mux.NewRouter(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/networks", s.handleNetworks()).Methods("GET")
	s.router.HandleFunc("/networks/{pid}", s.handleNetwork()).Methods("GET")
	s.router.HandleFunc("/batteries", s.handleBatteries()).Methods("GET")
	s.router.HandleFunc("/batteries/{pid}", s.handleBattery()).Methods("GET")
	s.router.HandleFunc("/loads/{pid}/demand", s.handleSetDemand()).Methods("POST")
	s.router.HandleFunc("/stream", s.handleStream())
}

// Router exposes the handler for tests and for embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Process serves HTTP until the listener fails.
func (s *Server) Process() {
	log.Println("[Webservice] Process Started on", s.config.Addr)
	if err := http.ListenAndServe(s.config.Addr, s.router); err != nil {
		log.Printf("[Webservice] serve: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println("[Webservice] encode:", err)
	}
}

func (s *Server) handleNetworks() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.system.NetworkStatuses())
	}
}

func (s *Server) handleNetwork() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := uuid.Parse(mux.Vars(r)["pid"])
		if err != nil {
			writeJSON(w, http.StatusBadRequest, nil)
			return
		}
		status, ok := s.system.NetworkStatus(pid)
		if !ok {
			writeJSON(w, http.StatusNotFound, nil)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func (s *Server) handleBatteries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.system.BatteryStatuses())
	}
}

func (s *Server) handleBattery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := uuid.Parse(mux.Vars(r)["pid"])
		if err != nil {
			writeJSON(w, http.StatusBadRequest, nil)
			return
		}
		status, ok := s.system.BatteryStatus(pid)
		if !ok {
			writeJSON(w, http.StatusNotFound, nil)
			return
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func (s *Server) handleSetDemand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := uuid.Parse(mux.Vars(r)["pid"])
		if err != nil {
			writeJSON(w, http.StatusBadRequest, nil)
			return
		}
		req := DemandRequest{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, nil)
			return
		}
		if err := s.system.SetLoadDemand(pid, req.DesiredPower); err != nil {
			writeJSON(w, http.StatusNotFound, nil)
			return
		}
		writeJSON(w, http.StatusOK, nil)
	}
}

// handleStream upgrades to a websocket and relays every status message
// published after the subscription. A slow client that backs up the write
// is disconnected rather than stalling the publisher.
func (s *Server) handleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("[Webservice] upgrade:", err)
			return
		}

		pid, _ := uuid.NewUUID()
		ch, err := s.system.Subscribe(pid, msg.Status)
		if err != nil {
			conn.Close()
			return
		}
		defer s.system.Unsubscribe(pid)
		defer conn.Close()

		for m := range ch {
			if err := conn.WriteJSON(m.Payload()); err != nil {
				return
			}
		}
	}
}
