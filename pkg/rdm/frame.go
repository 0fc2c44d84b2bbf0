package rdm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame constants.
const (
	StartCode    uint8 = 0xcc
	SubStartCode uint8 = 0x01

	HeaderSize       = 24
	ChecksumSize     = 2
	MaxParamDataSize = 231
	MinFrameSize     = HeaderSize + ChecksumSize
	MaxFrameSize     = HeaderSize + MaxParamDataSize + ChecksumSize
)

// Sub-device addressing.
const (
	SubDeviceRoot uint16 = 0x0000
	SubDeviceAll  uint16 = 0xffff
	SubDeviceMax  uint16 = 0x0200
)

// Header field offsets.
const (
	offStartCode     = 0
	offSubStartCode  = 1
	offMessageLength = 2
	offDest          = 3
	offSrc           = 9
	offTransaction   = 15
	offPortID        = 16
	offMessageCount  = 17
	offSubDevice     = 18
	offCommandClass  = 20
	offPID           = 21
	offPDL           = 23
)

// Frame decoding errors.
var (
	ErrFrameTooShort      = errors.New("frame too short")
	ErrFrameTooLong       = errors.New("frame too long")
	ErrBadStartCode       = errors.New("bad start code")
	ErrBadSubStartCode    = errors.New("bad sub start code")
	ErrBadMessageLength   = errors.New("bad message length")
	ErrBadParamDataLength = errors.New("bad parameter data length")
	ErrBadChecksum        = errors.New("checksum mismatch")
	ErrParamDataTooLong   = errors.New("parameter data too long")
)

// Header is the fixed-position portion of an RDM frame.
type Header struct {
	Dest              UID
	Src               UID
	TransactionNumber uint8
	// PortID is the port ID on requests and the response type on responses.
	PortID          uint8
	MessageCount    uint8
	SubDevice       uint16
	CommandClass    CommandClass
	PID             PID
	ParamDataLength uint8
}

// ResponseType interprets PortID as the response type of a response frame.
func (h Header) ResponseType() ResponseType {
	return ResponseTypeFromWire(h.PortID)
}

// Request is a decoded frame: header plus parameter data.
type Request struct {
	Header
	Data []byte
}

// String returns a short human-readable summary.
func (r *Request) String() string {
	return fmt.Sprintf("%s %s -> %s sub=%d pid=%s pdl=%d tn=%d",
		r.CommandClass, r.Src, r.Dest, r.SubDevice, r.PID, r.ParamDataLength, r.TransactionNumber)
}

// Checksum returns the 16-bit additive checksum of b.
func Checksum(b []byte) uint16 {
	var sum uint16
	for _, v := range b {
		sum += uint16(v)
	}
	return sum
}

// Decode validates a raw frame and returns the request it carries.
// The returned Request owns a copy of the parameter data.
func Decode(frame []byte) (*Request, error) {
	if len(frame) < MinFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(frame))
	}
	if len(frame) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLong, len(frame))
	}
	if frame[offStartCode] != StartCode {
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadStartCode, frame[offStartCode])
	}
	if frame[offSubStartCode] != SubStartCode {
		return nil, fmt.Errorf("%w: 0x%02x", ErrBadSubStartCode, frame[offSubStartCode])
	}

	msgLen := int(frame[offMessageLength])
	if msgLen < HeaderSize {
		return nil, fmt.Errorf("%w: %d", ErrBadMessageLength, msgLen)
	}
	pdl := int(frame[offPDL])
	if pdl > MaxParamDataSize || msgLen != HeaderSize+pdl {
		return nil, fmt.Errorf("%w: pdl %d, message length %d", ErrBadParamDataLength, pdl, msgLen)
	}
	if len(frame) != msgLen+ChecksumSize {
		return nil, fmt.Errorf("%w: message length %d, frame %d bytes", ErrBadMessageLength, msgLen, len(frame))
	}

	want := binary.BigEndian.Uint16(frame[msgLen:])
	if got := Checksum(frame[:msgLen]); got != want {
		return nil, fmt.Errorf("%w: computed 0x%04x, frame 0x%04x", ErrBadChecksum, got, want)
	}

	req := &Request{
		Header: Header{
			TransactionNumber: frame[offTransaction],
			PortID:            frame[offPortID],
			MessageCount:      frame[offMessageCount],
			SubDevice:         binary.BigEndian.Uint16(frame[offSubDevice:]),
			CommandClass:      CommandClassFromWire(frame[offCommandClass]),
			PID:               PID(binary.BigEndian.Uint16(frame[offPID:])),
			ParamDataLength:   uint8(pdl),
		},
		Data: append([]byte(nil), frame[HeaderSize:HeaderSize+pdl]...),
	}
	copy(req.Dest[:], frame[offDest:offDest+UIDLength])
	copy(req.Src[:], frame[offSrc:offSrc+UIDLength])
	return req, nil
}

// EncodeFrame serializes a header and parameter data. The header's
// ParamDataLength is ignored and taken from len(data).
func EncodeFrame(h Header, data []byte) ([]byte, error) {
	if len(data) > MaxParamDataSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrParamDataTooLong, len(data))
	}
	msgLen := HeaderSize + len(data)
	frame := make([]byte, msgLen+ChecksumSize)
	frame[offStartCode] = StartCode
	frame[offSubStartCode] = SubStartCode
	frame[offMessageLength] = uint8(msgLen)
	copy(frame[offDest:], h.Dest[:])
	copy(frame[offSrc:], h.Src[:])
	frame[offTransaction] = h.TransactionNumber
	frame[offPortID] = h.PortID
	frame[offMessageCount] = h.MessageCount
	binary.BigEndian.PutUint16(frame[offSubDevice:], h.SubDevice)
	frame[offCommandClass] = h.CommandClass.Wire()
	binary.BigEndian.PutUint16(frame[offPID:], uint16(h.PID))
	frame[offPDL] = uint8(len(data))
	copy(frame[HeaderSize:], data)
	binary.BigEndian.PutUint16(frame[msgLen:], Checksum(frame[:msgLen]))
	return frame, nil
}

// Encode serializes the request.
func (r *Request) Encode() ([]byte, error) {
	return EncodeFrame(r.Header, r.Data)
}

// NewRequest builds a request with PDL set from data and port ID 1.
func NewRequest(src, dest UID, tn uint8, cc CommandClass, subDevice uint16, pid PID, data []byte) *Request {
	return &Request{
		Header: Header{
			Dest:              dest,
			Src:               src,
			TransactionNumber: tn,
			PortID:            1,
			SubDevice:         subDevice,
			CommandClass:      cc,
			PID:               pid,
			ParamDataLength:   uint8(len(data)),
		},
		Data: data,
	}
}

// DestinationOf returns the destination UID of an undecoded frame, used
// when a caller only needs addressing (for example to spot broadcasts).
func DestinationOf(frame []byte) (UID, bool) {
	if len(frame) < offDest+UIDLength {
		return UID{}, false
	}
	var u UID
	copy(u[:], frame[offDest:])
	return u, true
}
