package host

import "fmt"

// Command is a host command code.
type Command uint16

const (
	CmdEcho          Command = 0x80
	CmdTxDMX         Command = 0x81
	CmdGetLog        Command = 0x82
	CmdGetFlags      Command = 0x83
	CmdWriteLog      Command = 0x84
	CmdResetDevice   Command = 0x85
	CmdRDMDUBRequest Command = 0x86
	CmdRDMRequest    Command = 0x87

	CmdSetBreakTime          Command = 0x90
	CmdGetBreakTime          Command = 0x91
	CmdSetMABTime            Command = 0x92
	CmdGetMABTime            Command = 0x93
	CmdSetRDMBroadcastListen Command = 0x94
	CmdGetRDMBroadcastListen Command = 0x95
	CmdSetRDMWaitTime        Command = 0x96
	CmdGetRDMWaitTime        Command = 0x97
)

var commandNames = map[Command]string{
	CmdEcho:                  "ECHO",
	CmdTxDMX:                 "TX_DMX",
	CmdGetLog:                "GET_LOG",
	CmdGetFlags:              "GET_FLAGS",
	CmdWriteLog:              "WRITE_LOG",
	CmdResetDevice:           "RESET_DEVICE",
	CmdRDMDUBRequest:         "RDM_DUB_REQUEST",
	CmdRDMRequest:            "RDM_REQUEST",
	CmdSetBreakTime:          "SET_BREAK_TIME",
	CmdGetBreakTime:          "GET_BREAK_TIME",
	CmdSetMABTime:            "SET_MAB_TIME",
	CmdGetMABTime:            "GET_MAB_TIME",
	CmdSetRDMBroadcastListen: "SET_RDM_BROADCAST_LISTEN",
	CmdGetRDMBroadcastListen: "GET_RDM_BROADCAST_LISTEN",
	CmdSetRDMWaitTime:        "SET_RDM_WAIT_TIME",
	CmdGetRDMWaitTime:        "GET_RDM_WAIT_TIME",
}

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%04x", uint16(c))
}

// Known reports whether c is a defined command.
func (c Command) Known() bool {
	_, ok := commandNames[c]
	return ok
}

// ParseCommand looks a command up by name.
func ParseCommand(name string) (Command, bool) {
	for c, n := range commandNames {
		if n == name {
			return c, true
		}
	}
	return 0, false
}

// ResultCode is the result byte of a host response.
type ResultCode uint8

const (
	RCOK         ResultCode = 0
	RCUnknown    ResultCode = 1
	RCBufferFull ResultCode = 2
	RCBadParam   ResultCode = 3
	RCRxTimeout  ResultCode = 5
)

// String returns the result code name.
func (rc ResultCode) String() string {
	switch rc {
	case RCOK:
		return "OK"
	case RCUnknown:
		return "UNKNOWN"
	case RCBufferFull:
		return "BUFFER_FULL"
	case RCBadParam:
		return "BAD_PARAM"
	case RCRxTimeout:
		return "RX_TIMEOUT"
	default:
		return fmt.Sprintf("RC(%d)", uint8(rc))
	}
}
