package rdm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Encoder errors.
var (
	ErrNotRequest  = errors.New("command class is not a request")
	ErrUnknownKind = errors.New("unknown result kind")
)

// Encoder builds response frames on behalf of one responder UID.
// It holds no mutable state; equal inputs give equal frames.
type Encoder struct {
	self UID
}

// NewEncoder returns an encoder that stamps self as the source UID.
func NewEncoder(self UID) *Encoder {
	return &Encoder{self: self}
}

// UID returns the source UID stamped on responses.
func (e *Encoder) UID() UID { return e.self }

// BuildAck builds an ACK carrying payload.
func (e *Encoder) BuildAck(req *Request, payload []byte) ([]byte, error) {
	return e.build(req, ResponseTypeAck, payload)
}

// BuildSetAck builds an ACK with no parameter data.
func (e *Encoder) BuildSetAck(req *Request) ([]byte, error) {
	return e.build(req, ResponseTypeAck, nil)
}

// BuildNack builds a NACK_REASON response.
func (e *Encoder) BuildNack(req *Request, reason NackReason) ([]byte, error) {
	var data [2]byte
	binary.BigEndian.PutUint16(data[:], reason.Wire())
	return e.build(req, ResponseTypeNackReason, data[:])
}

// BuildAckTimer builds an ACK_TIMER response. delay is in 100 ms units.
func (e *Encoder) BuildAckTimer(req *Request, delay uint16) ([]byte, error) {
	var data [2]byte
	binary.BigEndian.PutUint16(data[:], delay)
	return e.build(req, ResponseTypeAckTimer, data[:])
}

// BuildAckOverflow builds an ACK_OVERFLOW carrying one chunk of payload.
func (e *Encoder) BuildAckOverflow(req *Request, payload []byte) ([]byte, error) {
	return e.build(req, ResponseTypeAckOverflow, payload)
}

// Encode turns a Result into bytes for transmission. NoResponse yields a
// nil frame and no error.
func (e *Encoder) Encode(req *Request, r Result) ([]byte, error) {
	switch r.Kind {
	case NoResponse:
		return nil, nil
	case Ack:
		return e.BuildAck(req, r.Payload)
	case AckTimer:
		return e.BuildAckTimer(req, r.Delay)
	case AckOverflow:
		return e.BuildAckOverflow(req, r.Payload)
	case Nack:
		return e.BuildNack(req, r.Reason)
	case DUBResponse:
		return append([]byte(nil), r.Payload...), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, r.Kind)
	}
}

func (e *Encoder) build(req *Request, rt ResponseType, data []byte) ([]byte, error) {
	if !req.CommandClass.IsRequest() {
		return nil, fmt.Errorf("%w: %s", ErrNotRequest, req.CommandClass)
	}
	h := Header{
		Dest:              req.Src,
		Src:               e.self,
		TransactionNumber: req.TransactionNumber,
		PortID:            rt.Wire(),
		MessageCount:      0,
		SubDevice:         req.SubDevice,
		CommandClass:      req.CommandClass.Response(),
		PID:               req.PID,
	}
	return EncodeFrame(h, data)
}
