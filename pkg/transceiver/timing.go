package transceiver

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrTimingOutOfRange is returned for a timing value outside its limits.
var ErrTimingOutOfRange = errors.New("timing value out of range")

// Param identifies a timing parameter.
type Param uint8

const (
	// ParamBreakTime is the break length in microseconds.
	ParamBreakTime Param = iota
	// ParamMABTime is the mark-after-break length in microseconds.
	ParamMABTime
	// ParamBroadcastListen is how long to listen after an RDM broadcast,
	// in tenths of a millisecond.
	ParamBroadcastListen
	// ParamWaitTime is how long to wait for an RDM reply, in tenths of a
	// millisecond.
	ParamWaitTime

	numParams
)

type paramLimits struct {
	name     string
	min, max uint16
	def      uint16
}

var limits = [numParams]paramLimits{
	ParamBreakTime:       {name: "break time", min: 44, max: 800, def: 176},
	ParamMABTime:         {name: "MAB time", min: 4, max: 800, def: 12},
	ParamBroadcastListen: {name: "broadcast listen", min: 0, max: 50, def: 28},
	ParamWaitTime:        {name: "RDM wait time", min: 10, max: 50, def: 28},
}

// String returns the parameter name.
func (p Param) String() string {
	if p < numParams {
		return limits[p].name
	}
	return "unknown"
}

// Limits returns the valid range and default of p.
func (p Param) Limits() (min, max, def uint16) {
	if p >= numParams {
		return 0, 0, 0
	}
	l := limits[p]
	return l.min, l.max, l.def
}

// Timing holds the process-wide timing parameters. It is safe for
// concurrent use: the foreground loop writes, the transceiver reads.
type Timing struct {
	values [numParams]atomic.Uint32
}

// NewTiming returns parameters at their defaults.
func NewTiming() *Timing {
	t := &Timing{}
	for p := range numParams {
		t.values[p].Store(uint32(limits[p].def))
	}
	return t
}

// Set validates and stores value.
func (t *Timing) Set(p Param, value uint16) error {
	if p >= numParams {
		return fmt.Errorf("%w: unknown parameter %d", ErrTimingOutOfRange, p)
	}
	l := limits[p]
	if value < l.min || value > l.max {
		return fmt.Errorf("%w: %s %d not in [%d, %d]", ErrTimingOutOfRange, l.name, value, l.min, l.max)
	}
	t.values[p].Store(uint32(value))
	return nil
}

// Get returns the current value of p.
func (t *Timing) Get(p Param) uint16 {
	if p >= numParams {
		return 0
	}
	return uint16(t.values[p].Load())
}

// Snapshot is a copy of all parameters taken at job start.
type Snapshot struct {
	Break           time.Duration
	MAB             time.Duration
	BroadcastListen time.Duration
	Wait            time.Duration
}

// Snapshot reads every parameter once.
func (t *Timing) Snapshot() Snapshot {
	tenths := func(v uint16) time.Duration { return time.Duration(v) * 100 * time.Microsecond }
	return Snapshot{
		Break:           time.Duration(t.Get(ParamBreakTime)) * time.Microsecond,
		MAB:             time.Duration(t.Get(ParamMABTime)) * time.Microsecond,
		BroadcastListen: tenths(t.Get(ParamBroadcastListen)),
		Wait:            tenths(t.Get(ParamWaitTime)),
	}
}
