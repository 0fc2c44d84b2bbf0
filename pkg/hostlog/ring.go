package hostlog

import "sync"

// DefaultLogSize is the ring capacity used when zero is requested.
const DefaultLogSize = 2048

// RingLog is a bounded FIFO of log bytes. It is safe for concurrent use.
type RingLog struct {
	mu    sync.Mutex
	buf   []byte
	start int
	size  int
	flags *Flags
}

// NewRingLog creates a log holding at most capacity bytes. When flags is
// non-nil, FlagLogOverflow is raised whenever bytes are dropped.
func NewRingLog(capacity int, flags *Flags) *RingLog {
	if capacity <= 0 {
		capacity = DefaultLogSize
	}
	return &RingLog{buf: make([]byte, capacity), flags: flags}
}

// WriteLog appends b, overwriting the oldest bytes when full.
func (l *RingLog) WriteLog(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := len(l.buf)
	if len(b) > capacity {
		b = b[len(b)-capacity:]
		l.overflow()
	}
	for _, c := range b {
		if l.size == capacity {
			l.start = (l.start + 1) % capacity
			l.size--
			l.overflow()
		}
		l.buf[(l.start+l.size)%capacity] = c
		l.size++
	}
}

// Write implements io.Writer.
func (l *RingLog) Write(p []byte) (int, error) {
	l.WriteLog(p)
	return len(p), nil
}

// ReadLog removes and returns up to max bytes, oldest first.
func (l *RingLog) ReadLog(max int) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := min(max, l.size)
	if n <= 0 {
		return nil
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = l.buf[(l.start+i)%len(l.buf)]
	}
	l.start = (l.start + n) % len(l.buf)
	l.size -= n
	return out
}

// Len returns the number of buffered bytes.
func (l *RingLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Reset discards all buffered bytes.
func (l *RingLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start, l.size = 0, 0
}

func (l *RingLog) overflow() {
	if l.flags != nil {
		l.flags.Raise(FlagLogOverflow)
	}
}
