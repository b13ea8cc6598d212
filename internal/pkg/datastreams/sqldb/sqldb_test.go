package sqldb

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"

	"github.com/hartland/gridflow/internal/pkg/msg"
)

func newHandler() (Handler, error) {
	pid, _ := uuid.NewUUID()
	pub := msg.NewPublisher(pid)
	return New("./db_config_test.json", pub)
}

func TestGetConfig(t *testing.T) {
	h, err := newHandler()
	assert.NilError(t, err)

	assert.Equal(t, h.config.Port, 3306)
	assert.Equal(t, h.config.Server, "localhost")
	assert.Equal(t, h.config.Database, "gridflow")
}

func TestDatabaseConnection(t *testing.T) {
	h, err := newHandler()
	assert.NilError(t, err)

	// sql.Open validates arguments without dialing.
	db, err := h.DB()
	assert.NilError(t, err)
	db.Close()
}
