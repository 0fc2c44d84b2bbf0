// Package discovery advertises and locates RDM host links over mDNS/DNS-SD.
//
// A responder publishes one `_rdm-host._tcp` instance per process. The
// instance name is the configured instance name, or "RDM-<uid>" when unset.
// TXT records carry:
//
//	uid   responder UID, "mmmm:dddddddd"
//	model active model ID, 4 hex digits
//	name  model name (optional)
//	ver   host protocol version, "major.minor"
//
// The console browses the same service type to find a responder when no
// address is given.
package discovery
