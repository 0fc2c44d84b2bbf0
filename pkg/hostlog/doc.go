// Package hostlog provides the device log and runtime flag collaborators
// read by the GET_LOG, WRITE_LOG and GET_FLAGS host commands.
//
// RingLog is a bounded byte log that drops its oldest bytes when full. It
// also implements io.Writer, so a slog.TextHandler can write operational
// records into it and the host sees them with GET_LOG.
package hostlog
