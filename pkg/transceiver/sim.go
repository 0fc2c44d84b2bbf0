package transceiver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Simulator is a Queue backed by a Bus. Jobs run on the goroutine started
// by Run, which plays the part of the transceiver interrupt handler.
type Simulator struct {
	bus         *Bus
	timing      *Timing
	completions *CompletionQueue

	busy atomic.Bool
	jobs chan job

	// realTime makes jobs take as long as their line timing.
	realTime     bool
	now          func() time.Time
	taskInterval time.Duration

	mu      sync.Mutex
	replies [][]byte

	logger *slog.Logger
}

type job struct {
	token     Token
	op        Op
	data      []byte
	broadcast bool
}

// SimulatorOption configures a Simulator.
type SimulatorOption func(*Simulator)

// WithRealTime makes the simulator sleep for the break, MAB, frame and wait
// times of each job.
func WithRealTime() SimulatorOption {
	return func(s *Simulator) { s.realTime = true }
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) SimulatorOption {
	return func(s *Simulator) { s.logger = logger }
}

// WithClock replaces the clock passed to bus responders' Tasks.
func WithClock(now func() time.Time) SimulatorOption {
	return func(s *Simulator) { s.now = now }
}

// WithTaskInterval sets how often bus responders' Tasks run between jobs.
func WithTaskInterval(d time.Duration) SimulatorOption {
	return func(s *Simulator) {
		if d > 0 {
			s.taskInterval = d
		}
	}
}

// DefaultTaskInterval is the bus task period when none is configured.
const DefaultTaskInterval = 100 * time.Millisecond

// NewSimulator creates a simulator posting to completions.
func NewSimulator(bus *Bus, timing *Timing, completions *CompletionQueue, opts ...SimulatorOption) *Simulator {
	s := &Simulator{
		bus:          bus,
		timing:       timing,
		completions:  completions,
		jobs:         make(chan job, 1),
		now:          time.Now,
		taskInterval: DefaultTaskInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run processes jobs until ctx is cancelled. Bus responders are only
// touched from this goroutine.
func (s *Simulator) Run(ctx context.Context) {
	ticker := time.NewTicker(s.taskInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.bus.Tasks(s.now())
		case j := <-s.jobs:
			ev := s.execute(ctx, j)
			s.busy.Store(false)
			s.completions.Post(ev)
		}
	}
}

// Busy reports whether a job is in flight.
func (s *Simulator) Busy() bool { return s.busy.Load() }

// QueueDMX implements Queue.
func (s *Simulator) QueueDMX(token Token, slots []byte) bool {
	if len(slots) > MaxDMXSlots {
		return false
	}
	return s.submit(job{token: token, op: OpTxOnly, data: slots})
}

// QueueRDMDUB implements Queue.
func (s *Simulator) QueueRDMDUB(token Token, frame []byte) bool {
	return s.submit(job{token: token, op: OpRDMDUB, data: frame})
}

// QueueRDMRequest implements Queue.
func (s *Simulator) QueueRDMRequest(token Token, frame []byte, broadcast bool) bool {
	op := OpRDMWithResponse
	if broadcast {
		op = OpRDMBroadcast
	}
	return s.submit(job{token: token, op: op, data: frame, broadcast: broadcast})
}

// SetTiming implements Queue.
func (s *Simulator) SetTiming(p Param, value uint16) bool {
	if err := s.timing.Set(p, value); err != nil {
		s.debugLog("timing rejected", "error", err)
		return false
	}
	return true
}

// Timing implements Queue.
func (s *Simulator) Timing(p Param) uint16 {
	return s.timing.Get(p)
}

// Inject delivers a frame received from a remote controller, as happens
// when the device itself acts as a responder. It reports false if the
// completion queue is full.
func (s *Simulator) Inject(frame []byte) bool {
	return s.completions.Post(Event{
		Op:     OpRX,
		Result: ResultRxFrame,
		Data:   append([]byte(nil), frame...),
	})
}

// Reply records a frame the local responder transmitted in answer to an
// injected request.
func (s *Simulator) Reply(frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, append([]byte(nil), frame...))
}

// Replies returns and clears the recorded responder replies.
func (s *Simulator) Replies() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.replies
	s.replies = nil
	return out
}

func (s *Simulator) submit(j job) bool {
	if !s.busy.CompareAndSwap(false, true) {
		return false
	}
	j.data = append([]byte(nil), j.data...)
	s.jobs <- j
	return true
}

func (s *Simulator) execute(ctx context.Context, j job) Event {
	t := s.timing.Snapshot()
	ev := Event{Token: j.token, Op: j.op}

	s.bus.Tasks(s.now())
	s.wait(ctx, t.Break+t.MAB+frameTime(len(j.data)))

	switch j.op {
	case OpTxOnly:
		s.bus.SendDMX(j.data)
		ev.Result = ResultTxOK

	case OpRDMDUB:
		replies := s.bus.Transact(j.data)
		s.wait(ctx, t.Wait)
		if len(replies) == 0 {
			ev.Result = ResultRxTimeout
			break
		}
		ev.Result = ResultRxData
		ev.Data = Collide(replies)

	case OpRDMBroadcast:
		replies := s.bus.Transact(j.data)
		s.wait(ctx, t.BroadcastListen)
		ev.Result = ResultTxOK
		if len(replies) > 0 {
			ev.Result = ResultRxData
			ev.Data = Collide(replies)
		}

	case OpRDMWithResponse:
		replies := s.bus.Transact(j.data)
		s.wait(ctx, t.Wait)
		switch len(replies) {
		case 0:
			ev.Result = ResultRxTimeout
		case 1:
			ev.Result = ResultRxData
			ev.Data = replies[0]
		default:
			ev.Result = ResultRxInvalid
			ev.Data = Collide(replies)
		}
	}

	s.debugLog("job complete", "token", j.token, "op", j.op, "result", ev.Result, "bytes", len(ev.Data))
	return ev
}

// frameTime is the line time of n bytes at 250 kbit/s, 11 bits per byte.
func frameTime(n int) time.Duration {
	return time.Duration(n) * 44 * time.Microsecond
}

func (s *Simulator) wait(ctx context.Context, d time.Duration) {
	if !s.realTime || d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (s *Simulator) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

var _ Queue = (*Simulator)(nil)
