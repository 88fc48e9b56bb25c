package events

import "sync"

// Kind identifies which observable holder changed.
type Kind string

const (
	KindUser     Kind = "user"
	KindAmbito   Kind = "ambito"
	KindFolder   Kind = "folder"
	KindNote     Kind = "note"
	KindStatus   Kind = "status"
	KindHydrated Kind = "hydrated"
)

// Event tells subscribers to refresh. It carries IDs only; readers query
// the session for the current value.
type Event struct {
	Kind    Kind
	ID      string // container ID (user, ambito, note) or folder name
	Message string // human-readable notice for KindStatus
}

// Bus is an in-process pub-sub. Each subscriber owns a buffered channel;
// Publish never blocks and drops the event for subscribers whose buffer is full.
type Bus struct {
	mu     sync.RWMutex
	buffer int
	subs   []chan Event
	closed bool
}

// NewBus creates a bus whose subscriber channels hold buffer events.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{buffer: buffer}
}

// Subscribe returns a read-only channel that receives every later event.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs = append(b.subs, ch)
	return ch
}

// Publish fans evt out to all subscribers.
// Returns true if every subscriber received it.
func (b *Bus) Publish(evt Event) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	all := true
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
			all = false
		}
	}
	return all
}

// NotifyChanged publishes a refresh signal for the container id of kind.
func (b *Bus) NotifyChanged(kind Kind, id string) bool {
	return b.Publish(Event{Kind: kind, ID: id})
}

// Close closes every subscriber channel. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
