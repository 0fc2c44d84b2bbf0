package hostlog

import (
	"encoding/binary"
	"strings"
	"sync/atomic"
)

// Flag is a runtime condition reported by GET_FLAGS.
type Flag uint16

const (
	// FlagLogOverflow means log bytes were dropped.
	FlagLogOverflow Flag = 1 << iota
	// FlagCompletionOverflow means a transceiver completion was dropped.
	FlagCompletionOverflow
	// FlagTxError means the transceiver reported a transmit error.
	FlagTxError
	// FlagFrameError means an inbound RDM frame failed validation.
	FlagFrameError
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{FlagLogOverflow, "log-overflow"},
	{FlagCompletionOverflow, "completion-overflow"},
	{FlagTxError, "tx-error"},
	{FlagFrameError, "frame-error"},
}

// String lists the set flags.
func (f Flag) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range flagNames {
		if f&n.f != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// Flags is a set of sticky runtime flags. Flags are cleared when read.
type Flags struct {
	bits atomic.Uint32
}

// Raise sets f.
func (fl *Flags) Raise(f Flag) {
	for {
		old := fl.bits.Load()
		if fl.bits.CompareAndSwap(old, old|uint32(f)) {
			return
		}
	}
}

// Peek returns the current flags without clearing them.
func (fl *Flags) Peek() Flag {
	return Flag(fl.bits.Load())
}

// Flags returns the set flags as a little-endian u16 and clears them.
func (fl *Flags) Flags() []byte {
	return binary.LittleEndian.AppendUint16(nil, uint16(fl.bits.Swap(0)))
}
