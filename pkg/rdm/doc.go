// Package rdm defines the on-wire model of ANSI E1.20 Remote Device
// Management frames.
//
// The package is pure data plumbing shared by every other part of the
// engine: UIDs, the fixed-position frame header, command classes, response
// types, NACK reasons and parameter IDs, plus the Response Encoder that turns
// a request header and a Result into a transmittable frame.
//
// # Frame Layout
//
// Offsets are relative to the start code:
//
//	0      start code (0xCC)
//	1      sub start code (0x01)
//	2      message length (24 + parameter data length)
//	3-8    destination UID
//	9-14   source UID
//	15     transaction number
//	16     port ID (requests) / response type (responses)
//	17     message count
//	18-19  sub-device
//	20     command class
//	21-22  parameter ID
//	23     parameter data length (0-231)
//	24..   parameter data
//	n-2..n 16-bit additive checksum of all preceding bytes
//
// # Wire and Semantic Values
//
// Enumerations that arrive off the wire have a semantic Go type and a total
// FromWire conversion. Unknown wire values map to an explicit Unrecognized
// case.
package rdm
