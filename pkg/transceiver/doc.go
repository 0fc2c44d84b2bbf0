// Package transceiver defines the contract between the message dispatcher
// and the DMX/RDM line transceiver, and provides a simulated transceiver.
//
// A Queue accepts at most one job at a time. Completion is reported by
// posting an Event to a CompletionQueue from the transceiver's own context;
// the foreground loop drains the queue and hands events to the dispatcher.
//
// The Simulator implements Queue on a worker goroutine that stands in for
// the interrupt handler. It drives a Bus of in-process responders.
package transceiver
