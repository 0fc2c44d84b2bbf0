package transceiver

import "sync/atomic"

// DefaultCompletionDepth is the default CompletionQueue capacity.
const DefaultCompletionDepth = 8

// CompletionQueue hands events from the transceiver to the foreground
// loop. Producers never block; the loop is the only consumer.
type CompletionQueue struct {
	events  chan Event
	dropped atomic.Uint64
}

// NewCompletionQueue creates a queue holding up to depth events.
func NewCompletionQueue(depth int) *CompletionQueue {
	if depth <= 0 {
		depth = DefaultCompletionDepth
	}
	return &CompletionQueue{events: make(chan Event, depth)}
}

// Post records ev. It never blocks; when the queue is full the event is
// dropped and counted.
func (q *CompletionQueue) Post(ev Event) bool {
	select {
	case q.events <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Events exposes the queue for use in a select.
func (q *CompletionQueue) Events() <-chan Event {
	return q.events
}

// Drain calls fn for every queued event without blocking and returns the
// number handled.
func (q *CompletionQueue) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case ev := <-q.events:
			fn(ev)
			n++
		default:
			return n
		}
	}
}

// Len returns the number of queued events.
func (q *CompletionQueue) Len() int { return len(q.events) }

// Dropped returns how many events were lost to a full queue.
func (q *CompletionQueue) Dropped() uint64 { return q.dropped.Load() }
