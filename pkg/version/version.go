// Package version holds the host link protocol version and compatibility
// checks used by mDNS advertising and the console.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Current is the host link protocol version spoken by this module.
const Current = "1.0"

// ErrIncompatible is returned when a peer speaks a different major version.
var ErrIncompatible = errors.New("incompatible host protocol version")

// HostVersion represents a parsed "major.minor" protocol version.
type HostVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (HostVersion, error) {
	majorStr, minorStr, ok := strings.Cut(s, ".")
	if !ok || strings.Contains(minorStr, ".") {
		return HostVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(majorStr, 10, 16)
	if err != nil {
		return HostVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}
	minor, err := strconv.ParseUint(minorStr, 10, 16)
	if err != nil {
		return HostVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return HostVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v HostVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether other has the same major version.
func (v HostVersion) Compatible(other HostVersion) bool {
	return v.Major == other.Major
}

// CheckPeer validates a version string advertised by a peer against Current.
func CheckPeer(peer string) error {
	theirs, err := Parse(peer)
	if err != nil {
		return err
	}
	ours, _ := Parse(Current)
	if !ours.Compatible(theirs) {
		return fmt.Errorf("%w: peer %s, local %s", ErrIncompatible, theirs, ours)
	}
	return nil
}
