package mongodb

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"

	"github.com/hartland/gridflow/internal/pkg/grid"
	"github.com/hartland/gridflow/internal/pkg/msg"
)

func TestReadConfig(t *testing.T) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)

	h, err := New("./mongo_config_test.json", pub)
	assert.NilError(t, err)

	assert.Equal(t, h.config.URI, "mongodb://localhost")
	assert.Equal(t, h.config.Port, "27017")
	assert.Equal(t, h.config.Database, "gridflow")
}

func TestDestinationFor(t *testing.T) {
	pid, _ := uuid.NewUUID()

	collection, key, ok := destinationFor(grid.NetworkStatus{PID: pid})
	assert.Assert(t, ok)
	assert.Equal(t, collection, "networkStatus")
	assert.Equal(t, key, pid.String())

	collection, key, ok = destinationFor(grid.BatteryStatus{PID: pid})
	assert.Assert(t, ok)
	assert.Equal(t, collection, "batteryStatus")
	assert.Equal(t, key, pid.String())

	_, _, ok = destinationFor("not a status")
	assert.Assert(t, !ok)
}
