package msg

import (
	"testing"

	"github.com/google/uuid"
	"gotest.tools/v3/assert"
)

func TestSubscribe(t *testing.T) {
	pidPub, err := uuid.NewUUID()
	assert.NilError(t, err)

	pidSub1, err := uuid.NewUUID()
	assert.NilError(t, err)

	pidSub2, err := uuid.NewUUID()
	assert.NilError(t, err)

	pubsub := NewPublisher(pidPub)
	ch1, err := pubsub.Subscribe(pidSub1, Status)
	assert.NilError(t, err)
	ch2, err := pubsub.Subscribe(pidSub2, Status)
	assert.NilError(t, err)

	pubsub.Publish(Status, 42.0)

	incoming := <-ch1
	assert.Equal(t, incoming.Payload(), 42.0)
	assert.Equal(t, incoming.PID(), pidPub)
	assert.Equal(t, incoming.Topic(), Status)

	incoming = <-ch2
	assert.Equal(t, incoming.Payload(), 42.0)
}

func TestSubscribeTwiceFails(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	_, err := pubsub.Subscribe(pidSub, Status)
	assert.NilError(t, err)

	_, err = pubsub.Subscribe(pidSub, Status)
	assert.Assert(t, err != nil)
}

func TestUnsubscribe(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	ch, err := pubsub.Subscribe(pidSub, Status)
	assert.NilError(t, err)

	pubsub.Unsubscribe(pidSub)

	_, open := <-ch
	assert.Assert(t, !open)
}

func TestPublishTopicIsolation(t *testing.T) {
	pidPub, _ := uuid.NewUUID()
	pidSub, _ := uuid.NewUUID()

	pubsub := NewPublisher(pidPub)
	ch, err := pubsub.Subscribe(pidSub, Config)
	assert.NilError(t, err)

	pubsub.Publish(Status, 1.0)

	select {
	case m := <-ch:
		t.Fatalf("config subscriber saw status payload %v", m.Payload())
	default:
	}
}
