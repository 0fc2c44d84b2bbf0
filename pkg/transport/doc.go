// Package transport carries host messages over TCP.
//
// The wire format is the host codec from package host: a little-endian
// command and length header followed by the payload, with no further
// framing. The Server accepts one host at a time; a new connection
// replaces the previous one, as when a USB host re-enumerates.
//
//	┌────────────────────────────────┐
//	│  host message / host response  │
//	├────────────────────────────────┤
//	│              TCP               │
//	└────────────────────────────────┘
package transport
