// Package events is a lightweight in-process pub-sub bus. The creation
// workflow publishes on successful save; the map viewer subscribes to know
// when to reload its markers.
package events

// Kind is the type of domain event.
type Kind string

const (
	SouvenirCreated Kind = "souvenir_created"
	SouvenirDeleted Kind = "souvenir_deleted"
)

// Event carries only the souvenir id; consumers fetch the full record.
type Event struct {
	Kind       Kind
	SouvenirID string
}

// Bus is backed by a buffered channel.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns the read side of the bus.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}
