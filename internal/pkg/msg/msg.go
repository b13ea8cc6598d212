package msg

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Topic partitions a publisher's message stream.
type Topic int

const (
	// Status messages carry per-tick state snapshots.
	Status Topic = iota
	// Config messages carry static configuration.
	Config
)

// Publisher is an interface for objects that allow subscription to their events
type Publisher interface {
	Subscribe(uuid.UUID, Topic) (<-chan Msg, error)
	Unsubscribe(uuid.UUID)
}

// Msg couples a payload with its sender and topic.
type Msg struct {
	sender  uuid.UUID
	topic   Topic
	payload interface{}
}

// New is the Msg factory function
func New(sender uuid.UUID, topic Topic, payload interface{}) Msg {
	return Msg{sender, topic, payload}
}

// PID returns the sender's PID
func (v Msg) PID() uuid.UUID {
	return v.sender
}

// Topic returns the message topic
func (v Msg) Topic() Topic {
	return v.topic
}

// Payload returns the message data
func (v Msg) Payload() interface{} {
	return v.payload
}

// PubSub fans messages out to topic subscribers. Publish never blocks; a
// subscriber that falls behind drops messages.
type PubSub struct {
	mux    *sync.Mutex
	sender uuid.UUID
	subs   map[Topic]map[uuid.UUID]chan Msg
}

// NewPublisher returns a PubSub broadcasting on behalf of sender.
func NewPublisher(sender uuid.UUID) *PubSub {
	return &PubSub{
		mux:    &sync.Mutex{},
		sender: sender,
		subs:   make(map[Topic]map[uuid.UUID]chan Msg),
	}
}

// Subscribe returns a read-only channel of messages on the given topic.
// A second subscription by the same pid to the same topic is an error.
func (p *PubSub) Subscribe(pid uuid.UUID, topic Topic) (<-chan Msg, error) {
	p.mux.Lock()
	defer p.mux.Unlock()

	if p.subs[topic] == nil {
		p.subs[topic] = make(map[uuid.UUID]chan Msg)
	}
	if _, ok := p.subs[topic][pid]; ok {
		return nil, errors.New("msg: pid already subscribed to topic")
	}

	ch := make(chan Msg, 50)
	p.subs[topic][pid] = ch
	return ch, nil
}

// Unsubscribe closes and removes the pid's channels on every topic.
func (p *PubSub) Unsubscribe(pid uuid.UUID) {
	p.mux.Lock()
	defer p.mux.Unlock()

	for _, topicSubs := range p.subs {
		if ch, ok := topicSubs[pid]; ok {
			delete(topicSubs, pid)
			close(ch)
		}
	}
}

// Publish forwards a Msg built from the payload to every subscriber on the
// topic.
func (p *PubSub) Publish(topic Topic, payload interface{}) {
	p.mux.Lock()
	defer p.mux.Unlock()

	m := New(p.sender, topic, payload)
	for _, ch := range p.subs[topic] {
		select {
		case ch <- m:
		default:
		}
	}
}
