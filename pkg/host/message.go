package host

import "fmt"

// MaxPayloadSize is the largest message or response payload.
const MaxPayloadSize = 513

// Message is a command from the host.
type Message struct {
	Command Command
	Payload []byte
}

// String returns a short description.
func (m Message) String() string {
	return fmt.Sprintf("%s (%d bytes)", m.Command, len(m.Payload))
}

// Response is the device's answer to a Message.
type Response struct {
	Command Command
	Result  ResultCode
	Payload []byte
}

// String returns a short description.
func (r Response) String() string {
	return fmt.Sprintf("%s %s (%d bytes)", r.Command, r.Result, len(r.Payload))
}
