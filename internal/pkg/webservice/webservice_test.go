package webservice

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gotest.tools/v3/assert"

	"github.com/hartland/gridflow/internal/pkg/grid"
)

const testTopology = `{
	"Name": "TestGrid",
	"TickRate": 100,
	"Parallelism": 1,
	"Topology": {
		"Networks": [
			{
				"Name": "Main",
				"Loads": [
					{"Name": "House", "DesiredPower": 10, "Enabled": true}
				],
				"Supplies": [
					{"Name": "Diesel", "MaxSupply": 20, "RampTolerance": 1, "RampRate": 5, "Enabled": true}
				],
				"Batteries": [
					{"Name": "Bank", "Capacity": 100, "InitialStorage": 50,
					 "Efficiency": 0.9, "MaxChargeRate": 5, "MaxSupply": 10,
					 "RampRate": 5, "CanCharge": true, "CanDischarge": true,
					 "DischargesInto": "Main"}
				]
			}
		]
	}
}`

func newTestServer(t *testing.T) (*Server, *grid.System) {
	sys, err := grid.NewFromJSON([]byte(testTopology))
	assert.NilError(t, err)

	s := &Server{
		system: sys,
		router: mux.NewRouter(),
	}
	s.routes()
	return s, sys
}

func TestNetworksGet(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/networks", nil)
	s.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "get returned 200")
	assert.Equal(t, "application/json; charset=UTF-8", w.Header().Get("Content-Type"))

	statuses := []grid.NetworkStatus{}
	err := json.Unmarshal(w.Body.Bytes(), &statuses)
	assert.NilError(t, err)
	assert.Equal(t, 1, len(statuses))
	assert.Equal(t, "Main", statuses[0].Name)
}

func TestNetworkGet(t *testing.T) {
	s, sys := newTestServer(t)

	pid, ok := sys.Lookup("Main")
	assert.Assert(t, ok)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/networks/"+pid.String(), nil)
	s.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "get returned 200")

	status := grid.NetworkStatus{}
	err := json.Unmarshal(w.Body.Bytes(), &status)
	assert.NilError(t, err)
	assert.Equal(t, pid, status.PID)
}

func TestNetworkGetUnknown(t *testing.T) {
	s, _ := newTestServer(t)

	pid, _ := uuid.NewUUID()
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/networks/"+pid.String(), nil)
	s.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code, "unknown pid returned 404")
}

func TestBatteryGet(t *testing.T) {
	s, sys := newTestServer(t)

	pid, ok := sys.Lookup("Bank")
	assert.Assert(t, ok)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "http://example.com/batteries/"+pid.String(), nil)
	s.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "get returned 200")

	status := grid.BatteryStatus{}
	err := json.Unmarshal(w.Body.Bytes(), &status)
	assert.NilError(t, err)
	assert.Equal(t, 50.0, status.Storage)
	assert.Equal(t, 100.0, status.Capacity)
}

func TestSetDemandPost(t *testing.T) {
	s, sys := newTestServer(t)

	pid, ok := sys.Lookup("House")
	assert.Assert(t, ok)

	reqBody, err := json.Marshal(DemandRequest{DesiredPower: 42})
	assert.NilError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/loads/"+pid.String()+"/demand", bytes.NewBuffer(reqBody))
	s.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code, "post returned 200")
	assert.Equal(t, 42.0, sys.State().Loads[pid].DesiredPower)
}

func TestSetDemandPostBadBody(t *testing.T) {
	s, sys := newTestServer(t)

	pid, ok := sys.Lookup("House")
	assert.Assert(t, ok)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "http://example.com/loads/"+pid.String()+"/demand", bytes.NewBufferString("not json"))
	s.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed body returned 400")
}
