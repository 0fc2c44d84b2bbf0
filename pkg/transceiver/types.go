package transceiver

// Token correlates a queued job with its completion.
type Token uint32

// Op is the kind of bus transaction.
type Op uint8

const (
	OpTxOnly Op = iota
	OpRDMDUB
	OpRDMBroadcast
	OpRDMWithResponse
	// OpRX is a frame received while acting as a responder.
	OpRX
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpTxOnly:
		return "TX_ONLY"
	case OpRDMDUB:
		return "RDM_DUB"
	case OpRDMBroadcast:
		return "RDM_BROADCAST"
	case OpRDMWithResponse:
		return "RDM_WITH_RESPONSE"
	case OpRX:
		return "RX"
	default:
		return "UNKNOWN"
	}
}

// Result is the hardware outcome of a transaction.
type Result uint8

const (
	ResultTxOK Result = iota
	ResultTxError
	ResultRxData
	ResultRxTimeout
	ResultRxInvalid
	ResultRxFrame
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case ResultTxOK:
		return "TX_OK"
	case ResultTxError:
		return "TX_ERROR"
	case ResultRxData:
		return "RX_DATA"
	case ResultRxTimeout:
		return "RX_TIMEOUT"
	case ResultRxInvalid:
		return "RX_INVALID"
	case ResultRxFrame:
		return "RX_FRAME"
	default:
		return "UNKNOWN"
	}
}

// Success reports whether the transaction completed normally.
func (r Result) Success() bool {
	return r == ResultTxOK || r == ResultRxData || r == ResultRxFrame
}

// Event is a completed transaction.
type Event struct {
	Token  Token
	Op     Op
	Result Result
	// Data is the bus response, if any.
	Data []byte
}

// MaxDMXSlots is the largest DMX512 payload, excluding the start code.
const MaxDMXSlots = 512

// Queue is the transceiver job interface. Each Queue method returns false
// without side effects when a job is already in flight.
type Queue interface {
	// QueueDMX transmits slots with the NULL start code.
	QueueDMX(token Token, slots []byte) bool
	QueueRDMDUB(token Token, frame []byte) bool
	// QueueRDMRequest sends an RDM request. Broadcast requests wait the
	// broadcast listen time instead of expecting a reply.
	QueueRDMRequest(token Token, frame []byte, broadcast bool) bool

	// SetTiming applies a timing parameter, reporting false when value is
	// out of range. It takes effect from the next accepted job.
	SetTiming(p Param, value uint16) bool
	Timing(p Param) uint16
}
