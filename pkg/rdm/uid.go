package rdm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UIDLength is the size of a UID in bytes.
const UIDLength = 6

// UID errors.
var (
	ErrInvalidUID = errors.New("invalid UID")
)

// UID is a 6-byte RDM unique identifier: a 16-bit manufacturer ID followed
// by a 32-bit device ID, both big endian.
type UID [UIDLength]byte

// Well-known UIDs.
var (
	// BroadcastUID addresses every responder on the line.
	BroadcastUID = UID{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
)

// NewUID builds a UID from its manufacturer and device parts.
func NewUID(manufacturer uint16, device uint32) UID {
	var u UID
	binary.BigEndian.PutUint16(u[0:2], manufacturer)
	binary.BigEndian.PutUint32(u[2:6], device)
	return u
}

// VendorcastUID returns the UID addressing all devices of a manufacturer.
func VendorcastUID(manufacturer uint16) UID {
	return NewUID(manufacturer, 0xffffffff)
}

// UIDFromBytes copies a UID out of a byte slice.
func UIDFromBytes(b []byte) (UID, error) {
	var u UID
	if len(b) < UIDLength {
		return u, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidUID, UIDLength, len(b))
	}
	copy(u[:], b[:UIDLength])
	return u, nil
}

// ParseUID parses the conventional "mmmm:dddddddd" hex form.
func ParseUID(s string) (UID, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) == 0 || len(parts[1]) == 0 {
		return UID{}, fmt.Errorf("%w: %q", ErrInvalidUID, s)
	}
	m, err := strconv.ParseUint(parts[0], 16, 16)
	if err != nil {
		return UID{}, fmt.Errorf("%w: manufacturer %q: %v", ErrInvalidUID, parts[0], err)
	}
	d, err := strconv.ParseUint(parts[1], 16, 32)
	if err != nil {
		return UID{}, fmt.Errorf("%w: device %q: %v", ErrInvalidUID, parts[1], err)
	}
	return NewUID(uint16(m), uint32(d)), nil
}

// ManufacturerID returns the manufacturer part of the UID.
func (u UID) ManufacturerID() uint16 {
	return binary.BigEndian.Uint16(u[0:2])
}

// DeviceID returns the device part of the UID.
func (u UID) DeviceID() uint32 {
	return binary.BigEndian.Uint32(u[2:6])
}

// String returns the UID as "mmmm:dddddddd".
func (u UID) String() string {
	return fmt.Sprintf("%04x:%08x", u.ManufacturerID(), u.DeviceID())
}

// Compare orders UIDs as 48-bit unsigned integers.
func (u UID) Compare(other UID) int {
	return bytes.Compare(u[:], other[:])
}

// IsBroadcast reports whether the UID is the all-devices broadcast or a
// manufacturer vendorcast.
func (u UID) IsBroadcast() bool {
	return u.DeviceID() == 0xffffffff
}

// RequiresAction reports whether a frame sent to u must be acted on by the
// responder whose UID is self.
func (u UID) RequiresAction(self UID) bool {
	if u == self || u == BroadcastUID {
		return true
	}
	return u.IsBroadcast() && u.ManufacturerID() == self.ManufacturerID()
}

// InRange reports whether lower <= u <= upper.
func (u UID) InRange(lower, upper UID) bool {
	return lower.Compare(u) <= 0 && u.Compare(upper) <= 0
}

// MarshalText implements encoding.TextMarshaler.
func (u UID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *UID) UnmarshalText(text []byte) error {
	parsed, err := ParseUID(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
