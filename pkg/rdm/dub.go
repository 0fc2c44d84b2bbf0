package rdm

import (
	"errors"
	"fmt"
)

// Discovery unique branch response layout.
const (
	DUBPreambleByte  uint8 = 0xfe
	DUBSeparatorByte uint8 = 0xaa
	DUBPreambleSize        = 7
	DUBResponseSize        = 24
)

// ErrBadDUBResponse is returned when a DUB response cannot be decoded.
var ErrBadDUBResponse = errors.New("bad DUB response")

// BuildDUBResponse encodes the discovery reply for uid: seven 0xFE bytes,
// the 0xAA separator, each UID byte split into (b|0xAA, b|0x55), then the
// checksum of the encoded UID split the same way.
func BuildDUBResponse(uid UID) []byte {
	out := make([]byte, 0, DUBResponseSize)
	for range DUBPreambleSize {
		out = append(out, DUBPreambleByte)
	}
	out = append(out, DUBSeparatorByte)

	var sum uint16
	for _, b := range uid {
		hi, lo := b|0xaa, b|0x55
		sum += uint16(hi) + uint16(lo)
		out = append(out, hi, lo)
	}
	csHi, csLo := uint8(sum>>8), uint8(sum)
	out = append(out, csHi|0xaa, csHi|0x55, csLo|0xaa, csLo|0x55)
	return out
}

// DecodeDUBResponse recovers the UID from a DUB response. Up to seven
// leading preamble bytes are accepted, as a controller may lose some.
func DecodeDUBResponse(b []byte) (UID, error) {
	i := 0
	for i < len(b) && i < DUBPreambleSize && b[i] == DUBPreambleByte {
		i++
	}
	if i >= len(b) || b[i] != DUBSeparatorByte {
		return UID{}, fmt.Errorf("%w: missing separator", ErrBadDUBResponse)
	}
	body := b[i+1:]
	if len(body) != 2*UIDLength+4 {
		return UID{}, fmt.Errorf("%w: body is %d bytes", ErrBadDUBResponse, len(body))
	}

	var uid UID
	var sum uint16
	for j := range UIDLength {
		hi, lo := body[2*j], body[2*j+1]
		sum += uint16(hi) + uint16(lo)
		uid[j] = hi & lo
	}
	cs := body[2*UIDLength:]
	got := uint16(cs[0]&cs[1])<<8 | uint16(cs[2]&cs[3])
	if got != sum {
		return UID{}, fmt.Errorf("%w: checksum 0x%04x, computed 0x%04x", ErrBadDUBResponse, got, sum)
	}
	return uid, nil
}
