package rdm

import (
	"bytes"
	"errors"
	"testing"
)

var (
	testController = NewUID(0x4f4c, 0x00000001)
	testResponder  = NewUID(0x7a70, 0xfffffe00)
)

func mustEncode(t *testing.T, r *Request) []byte {
	t.Helper()
	b, err := r.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return b
}

func TestDecodeRoundTrip(t *testing.T) {
	req := NewRequest(testController, testResponder, 7, CommandClassSet, SubDeviceRoot, PIDDisplayLevel, []byte{0xff})
	frame := mustEncode(t, req)

	if len(frame) != HeaderSize+1+ChecksumSize {
		t.Fatalf("frame length = %d", len(frame))
	}
	if frame[0] != StartCode || frame[1] != SubStartCode || frame[2] != 25 {
		t.Fatalf("bad preamble % x", frame[:3])
	}

	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Dest != testResponder || got.Src != testController {
		t.Errorf("addresses = %s -> %s", got.Src, got.Dest)
	}
	if got.TransactionNumber != 7 || got.CommandClass != CommandClassSet || got.PID != PIDDisplayLevel {
		t.Errorf("header = %+v", got.Header)
	}
	if got.ParamDataLength != 1 || !bytes.Equal(got.Data, []byte{0xff}) {
		t.Errorf("data = % x (pdl %d)", got.Data, got.ParamDataLength)
	}
}

func TestDecodeErrors(t *testing.T) {
	good := mustEncode(t, NewRequest(testController, testResponder, 1, CommandClassGet, SubDeviceRoot, PIDDeviceInfo, nil))

	mutate := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), good...)
		return f(b)
	}

	tests := []struct {
		name  string
		frame []byte
		want  error
	}{
		{"too short", good[:10], ErrFrameTooShort},
		{"too long", make([]byte, MaxFrameSize+1), ErrFrameTooLong},
		{"start code", mutate(func(b []byte) []byte { b[0] = 0xcd; return b }), ErrBadStartCode},
		{"sub start code", mutate(func(b []byte) []byte { b[1] = 0x02; return b }), ErrBadSubStartCode},
		{"message length below header", mutate(func(b []byte) []byte { b[2] = 20; return b }), ErrBadMessageLength},
		{"pdl disagrees", mutate(func(b []byte) []byte { b[23] = 4; return b }), ErrBadParamDataLength},
		{"trailing bytes", mutate(func(b []byte) []byte { return append(b, 0) }), ErrBadMessageLength},
		{"checksum", mutate(func(b []byte) []byte { b[len(b)-1]++; return b }), ErrBadChecksum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.frame)
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeUnrecognizedCommandClass(t *testing.T) {
	frame := mustEncode(t, NewRequest(testController, testResponder, 1, CommandClassGet, SubDeviceRoot, PIDDeviceInfo, nil))
	frame[20] = 0x42
	sum := Checksum(frame[:24])
	frame[24], frame[25] = byte(sum>>8), byte(sum)

	got, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.CommandClass != CommandClassUnrecognized {
		t.Errorf("CommandClass = %s, want UNRECOGNIZED", got.CommandClass)
	}
}

func TestEncodeFrameRejectsLongData(t *testing.T) {
	_, err := EncodeFrame(Header{}, make([]byte, MaxParamDataSize+1))
	if !errors.Is(err, ErrParamDataTooLong) {
		t.Errorf("error = %v, want ErrParamDataTooLong", err)
	}
}

func TestWireConversionsAreTotal(t *testing.T) {
	for b := 0; b < 256; b++ {
		cc := CommandClassFromWire(uint8(b))
		if cc != CommandClassUnrecognized && cc.Wire() != uint8(b) {
			t.Errorf("command class 0x%02x round trips to 0x%02x", b, cc.Wire())
		}
		if ls := LampStateFromWire(uint8(b)); ls != LampStateUnrecognized && ls.Wire() != uint8(b) {
			t.Errorf("lamp state 0x%02x round trips to 0x%02x", b, ls.Wire())
		}
		if ps := PowerStateFromWire(uint8(b)); ps != PowerStateUnrecognized && ps.Wire() != uint8(b) {
			t.Errorf("power state 0x%02x round trips to 0x%02x", b, ps.Wire())
		}
	}
	if NackReasonFromWire(0x0011) != NackEndpointNumberInvalid {
		t.Error("endpoint-invalid code not recognised")
	}
	if NackReasonFromWire(0x0042) != NackUnrecognized {
		t.Error("unknown NACK code should be unrecognized")
	}
}
