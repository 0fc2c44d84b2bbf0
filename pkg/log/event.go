package log

import (
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// Event is one captured protocol event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the service run or host connection (UUID).
	SessionID string `cbor:"2,keyasint"`

	Direction Direction `cbor:"3,keyasint"`
	Layer     Layer     `cbor:"4,keyasint"`
	Category  Category  `cbor:"5,keyasint"`

	// Source is the responder UID or the host peer address.
	Source string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	RDM         *RDMEvent         `cbor:"11,keyasint,omitempty"`
	Host        *HostEvent        `cbor:"12,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"13,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"`
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	DirectionIn  Direction = 0
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates where the event was captured.
type Layer uint8

const (
	// LayerBus is the DMX/RDM line.
	LayerBus Layer = 0
	// LayerHost is the host message link.
	LayerHost Layer = 1
	// LayerResponder is the responder state machine.
	LayerResponder Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerBus:
		return "BUS"
	case LayerHost:
		return "HOST"
	case LayerResponder:
		return "RESPONDER"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	CategoryMessage Category = 0
	CategoryState   Category = 1
	CategoryError   Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// MaxFrameCapture is the number of raw bytes kept in a FrameEvent.
const MaxFrameCapture = 600

// FrameEvent captures raw bytes on the bus or host link.
type FrameEvent struct {
	Size      int    `cbor:"1,keyasint"`
	Data      []byte `cbor:"2,keyasint,omitempty"`
	Truncated bool   `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent copies up to MaxFrameCapture bytes of b.
func NewFrameEvent(b []byte) *FrameEvent {
	ev := &FrameEvent{Size: len(b)}
	if len(b) > MaxFrameCapture {
		b = b[:MaxFrameCapture]
		ev.Truncated = true
	}
	ev.Data = append([]byte(nil), b...)
	return ev
}

// RDMEvent captures a decoded RDM request or the outcome of handling one.
type RDMEvent struct {
	Dest              string           `cbor:"1,keyasint"`
	Src               string           `cbor:"2,keyasint"`
	TransactionNumber uint8            `cbor:"3,keyasint"`
	CommandClass      rdm.CommandClass `cbor:"4,keyasint"`
	PID               rdm.PID          `cbor:"5,keyasint"`
	SubDevice         uint16           `cbor:"6,keyasint,omitempty"`
	ParamDataLength   uint8            `cbor:"7,keyasint,omitempty"`

	// Result is set on outbound events.
	Result *rdm.ResultKind `cbor:"8,keyasint,omitempty"`
	// NackReason is set when Result is a NACK.
	NackReason *rdm.NackReason `cbor:"9,keyasint,omitempty"`
}

// NewRDMEvent describes req, and result when non-nil.
func NewRDMEvent(req *rdm.Request, result *rdm.Result) *RDMEvent {
	ev := &RDMEvent{
		Dest:              req.Dest.String(),
		Src:               req.Src.String(),
		TransactionNumber: req.TransactionNumber,
		CommandClass:      req.CommandClass,
		PID:               req.PID,
		SubDevice:         req.SubDevice,
		ParamDataLength:   req.ParamDataLength,
	}
	if result != nil {
		kind := result.Kind
		ev.Result = &kind
		if kind == rdm.Nack {
			reason := result.Reason
			ev.NackReason = &reason
		}
	}
	return ev
}

// HostEvent captures a host command or response.
type HostEvent struct {
	Command     uint16 `cbor:"1,keyasint"`
	PayloadSize int    `cbor:"2,keyasint"`
	// Result is set on responses.
	Result *uint8 `cbor:"3,keyasint,omitempty"`
	// Token is the transceiver token for queued jobs.
	Token *uint32 `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures responder and link lifecycle changes.
type StateChangeEvent struct {
	Entity   StateEntity `cbor:"1,keyasint"`
	OldState string      `cbor:"2,keyasint,omitempty"`
	NewState string      `cbor:"3,keyasint"`
	Reason   string      `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what changed state.
type StateEntity uint8

const (
	StateEntityModel      StateEntity = 0
	StateEntityMute       StateEntity = 1
	StateEntityIdentify   StateEntity = 2
	StateEntityConnection StateEntity = 3
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityModel:
		return "MODEL"
	case StateEntityMute:
		return "MUTE"
	case StateEntityIdentify:
		return "IDENTIFY"
	case StateEntityConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	Layer   Layer  `cbor:"1,keyasint"`
	Message string `cbor:"2,keyasint"`
	Context string `cbor:"3,keyasint,omitempty"`
}
