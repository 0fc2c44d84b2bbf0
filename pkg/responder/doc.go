// Package responder implements the responder side of RDM: request
// classification, the declarative PID dispatch table, discovery and mute
// handling, and the standard E1.20 parameters shared by every device model.
//
// A Responder is owned by a single goroutine. Device models describe
// themselves with a Definition (labels, personalities and a Table) and load
// it into the responder on activation.
package responder
