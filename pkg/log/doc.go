// Package log provides protocol capture for the RDM engine.
//
// It is separate from operational logging (slog): capture records a
// machine-readable trace of every RDM frame, host message and responder
// state change so a session can be replayed and filtered afterwards.
//
// # Basic Usage
//
//	// Console during development
//	capture := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	capture, _ := log.NewFileLogger("/var/log/rdm/responder.rlog")
//
//	// Both
//	capture := log.NewMultiLogger(console, file)
//
// # Event Types
//
//   - Bus and host link: raw bytes (FrameEvent)
//   - Bus: decoded RDM requests and their results (RDMEvent)
//   - Host link: command and result codes (HostEvent)
//   - Responder: model switches, mute and identify (StateChangeEvent)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .rlog
// extension. The rdm-log command views and filters them.
package log
