// Package host implements the host-facing command channel: the command and
// result codes, the binary message codec, and the Dispatcher that answers
// commands synchronously or queues them on the transceiver and answers on
// completion.
//
// # Wire Format
//
// Every value is little endian.
//
//	message:  command u16 | length u16 | payload
//	response: command u16 | result u8 | length u16 | payload
//
// Payloads are at most MaxPayloadSize bytes.
package host
