package rdm

// ResultKind classifies what a handler wants sent back.
type ResultKind uint8

const (
	// NoResponse means nothing is transmitted.
	NoResponse ResultKind = iota
	Ack
	AckTimer
	AckOverflow
	Nack
	// DUBResponse carries a raw discovery response without RDM framing.
	DUBResponse
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case NoResponse:
		return "NO_RESPONSE"
	case Ack:
		return "ACK"
	case AckTimer:
		return "ACK_TIMER"
	case AckOverflow:
		return "ACK_OVERFLOW"
	case Nack:
		return "NACK"
	case DUBResponse:
		return "DUB_RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of handling a request.
type Result struct {
	Kind ResultKind
	// Payload is the parameter data for Ack/AckOverflow, or the raw bytes
	// for DUBResponse.
	Payload []byte
	// Delay is the ACK_TIMER estimate in 100 ms units.
	Delay  uint16
	Reason NackReason
}

// None is the empty result.
func None() Result { return Result{Kind: NoResponse} }

// AckWith returns an ACK carrying payload.
func AckWith(payload []byte) Result { return Result{Kind: Ack, Payload: payload} }

// NackWith returns a NACK with the given reason.
func NackWith(reason NackReason) Result { return Result{Kind: Nack, Reason: reason} }

// AckTimerWith returns an ACK_TIMER with the given delay in 100 ms units.
func AckTimerWith(delay uint16) Result { return Result{Kind: AckTimer, Delay: delay} }

// Responds reports whether the result produces a transmission.
func (r Result) Responds() bool { return r.Kind != NoResponse }
