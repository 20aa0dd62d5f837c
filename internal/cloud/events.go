package cloud

import (
	"sync"
	"time"
)

// EventKind identifies what happened for a real-time event subscriber.
type EventKind string

const (
	EventCommandDispatched EventKind = "command_dispatched"
	EventCommandAck        EventKind = "command_ack"
	EventCommandCompleted  EventKind = "command_completed"
	EventHeartbeat         EventKind = "heartbeat"
	EventTelemetry         EventKind = "telemetry"
)

// Event is a single real-time notification the cloud loop broadcasts as
// it processes inbound device traffic.
type Event struct {
	Kind      EventKind
	DeviceID  string
	Payload   any
	Timestamp time.Time
}

// Broadcaster fans a stream of Events out to any number of subscribers.
// A slow or absent subscriber never blocks ingestion: each subscriber
// gets its own buffered channel, and a full channel drops the event
// rather than stalling the cloud loop.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[int]chan Event
	nextID      int
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subscribers: map[int]chan Event{}}
}

// Subscribe registers a new listener and returns its event channel plus
// an unsubscribe function. The channel is buffered; callers that can't
// keep up silently miss events rather than backing up the broadcaster.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subscribers[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if existing, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(existing)
		}
	}
}

// Publish fans out ev to every current subscriber, dropping it for any
// subscriber whose buffer is full.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
