package transceiver

import (
	"sync"
	"time"
)

// Endpoint is a responder attached to the simulated bus.
// model.Registry satisfies it.
type Endpoint interface {
	HandleFrame(frame []byte) ([]byte, bool)
	Tasks(now time.Time)
}

// Bus is a simulated DMX/RDM line shared by a set of responders.
type Bus struct {
	mu        sync.Mutex
	endpoints []Endpoint
	dmx       []byte
}

// NewBus creates a bus with the given responders attached.
func NewBus(endpoints ...Endpoint) *Bus {
	return &Bus{endpoints: endpoints}
}

// Attach adds a responder to the line.
func (b *Bus) Attach(e Endpoint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.endpoints = append(b.endpoints, e)
}

// Len returns the number of attached responders.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.endpoints)
}

// SendDMX records the last transmitted DMX frame.
func (b *Bus) SendDMX(slots []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dmx = append(b.dmx[:0], slots...)
}

// LastDMX returns a copy of the last transmitted DMX frame.
func (b *Bus) LastDMX() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.dmx...)
}

// Tasks runs periodic work on every responder.
func (b *Bus) Tasks(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.endpoints {
		e.Tasks(now)
	}
}

// Transact puts frame on the line and returns every reply, in attach order.
func (b *Bus) Transact(frame []byte) [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	var replies [][]byte
	for _, e := range b.endpoints {
		if reply, ok := e.HandleFrame(frame); ok {
			replies = append(replies, reply)
		}
	}
	return replies
}

// Collide merges simultaneous replies the way overlapping drivers corrupt
// each other: bytes are OR-ed and the longest reply sets the length.
func Collide(replies [][]byte) []byte {
	var out []byte
	for _, r := range replies {
		if len(r) > len(out) {
			out = append(out, make([]byte, len(r)-len(out))...)
		}
		for i, b := range r {
			out[i] |= b
		}
	}
	return out
}
