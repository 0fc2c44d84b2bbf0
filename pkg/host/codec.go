package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Header sizes.
const (
	MessageHeaderSize  = 4
	ResponseHeaderSize = 5
)

// Codec errors.
var (
	ErrShortMessage    = errors.New("message shorter than header")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrLengthMismatch  = errors.New("length field does not match payload")
)

// EncodeMessage serializes m.
func EncodeMessage(m Message) ([]byte, error) {
	if len(m.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(m.Payload))
	}
	b := make([]byte, MessageHeaderSize, MessageHeaderSize+len(m.Payload))
	binary.LittleEndian.PutUint16(b[0:], uint16(m.Command))
	binary.LittleEndian.PutUint16(b[2:], uint16(len(m.Payload)))
	return append(b, m.Payload...), nil
}

// DecodeMessage parses one complete message.
func DecodeMessage(b []byte) (Message, error) {
	if len(b) < MessageHeaderSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrShortMessage, len(b))
	}
	n := int(binary.LittleEndian.Uint16(b[2:]))
	if n > MaxPayloadSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	if len(b)-MessageHeaderSize != n {
		return Message{}, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, n, len(b)-MessageHeaderSize)
	}
	return Message{
		Command: Command(binary.LittleEndian.Uint16(b[0:])),
		Payload: append([]byte(nil), b[MessageHeaderSize:]...),
	}, nil
}

// EncodeResponse serializes r.
func EncodeResponse(r Response) ([]byte, error) {
	if len(r.Payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(r.Payload))
	}
	b := make([]byte, ResponseHeaderSize, ResponseHeaderSize+len(r.Payload))
	binary.LittleEndian.PutUint16(b[0:], uint16(r.Command))
	b[2] = uint8(r.Result)
	binary.LittleEndian.PutUint16(b[3:], uint16(len(r.Payload)))
	return append(b, r.Payload...), nil
}

// DecodeResponse parses one complete response.
func DecodeResponse(b []byte) (Response, error) {
	if len(b) < ResponseHeaderSize {
		return Response{}, fmt.Errorf("%w: %d bytes", ErrShortMessage, len(b))
	}
	n := int(binary.LittleEndian.Uint16(b[3:]))
	if n > MaxPayloadSize {
		return Response{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	if len(b)-ResponseHeaderSize != n {
		return Response{}, fmt.Errorf("%w: header says %d, have %d", ErrLengthMismatch, n, len(b)-ResponseHeaderSize)
	}
	return Response{
		Command: Command(binary.LittleEndian.Uint16(b[0:])),
		Result:  ResultCode(b[2]),
		Payload: append([]byte(nil), b[ResponseHeaderSize:]...),
	}, nil
}

// ReadMessage reads one message from a stream.
func ReadMessage(r io.Reader) (Message, error) {
	var hdr [MessageHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Message{}, err
	}
	n := int(binary.LittleEndian.Uint16(hdr[2:]))
	if n > MaxPayloadSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Message{}, fmt.Errorf("reading payload: %w", err)
	}
	return Message{Command: Command(binary.LittleEndian.Uint16(hdr[0:])), Payload: payload}, nil
}

// ReadResponse reads one response from a stream.
func ReadResponse(r io.Reader) (Response, error) {
	var hdr [ResponseHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return Response{}, err
	}
	n := int(binary.LittleEndian.Uint16(hdr[3:]))
	if n > MaxPayloadSize {
		return Response{}, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Response{}, fmt.Errorf("reading payload: %w", err)
	}
	return Response{
		Command: Command(binary.LittleEndian.Uint16(hdr[0:])),
		Result:  ResultCode(hdr[2]),
		Payload: payload,
	}, nil
}
