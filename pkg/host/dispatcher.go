package host

import (
	"encoding/binary"
	"log/slog"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

// Sender delivers responses to the host.
type Sender interface {
	Send(resp Response) error
}

// LogStore is the device log collaborator.
type LogStore interface {
	// ReadLog removes and returns up to max bytes of log text.
	ReadLog(max int) []byte
	WriteLog(b []byte)
}

// FlagSource is the runtime flag collaborator.
type FlagSource interface {
	Flags() []byte
}

// Observer is notified of dispatcher activity. Used for metrics.
type Observer interface {
	CommandHandled(cmd Command, rc ResultCode)
	JobRejected(cmd Command)
	JobCompleted(cmd Command, result transceiver.Result, latency time.Duration)
}

// DispatcherConfig holds the dispatcher's collaborators. Queue and Sender
// are required.
type DispatcherConfig struct {
	Queue  transceiver.Queue
	Sender Sender
	Log    LogStore
	Flags  FlagSource
	// Reset is invoked by RESET_DEVICE.
	Reset func()

	Observer       Observer
	Logger         *slog.Logger
	ProtocolLogger log.Logger
	SessionID      string
}

type pendingJob struct {
	cmd    Command
	queued time.Time
}

// Dispatcher routes host messages. It is driven by a single goroutine.
type Dispatcher struct {
	cfg       DispatcherConfig
	pending   map[transceiver.Token]pendingJob
	nextToken transceiver.Token
}

var timingCommands = map[Command]transceiver.Param{
	CmdSetBreakTime:          transceiver.ParamBreakTime,
	CmdGetBreakTime:          transceiver.ParamBreakTime,
	CmdSetMABTime:            transceiver.ParamMABTime,
	CmdGetMABTime:            transceiver.ParamMABTime,
	CmdSetRDMBroadcastListen: transceiver.ParamBroadcastListen,
	CmdGetRDMBroadcastListen: transceiver.ParamBroadcastListen,
	CmdSetRDMWaitTime:        transceiver.ParamWaitTime,
	CmdGetRDMWaitTime:        transceiver.ParamWaitTime,
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		cfg:       cfg,
		pending:   make(map[transceiver.Token]pendingJob),
		nextToken: 1,
	}
}

// Pending returns the number of jobs awaiting completion.
func (d *Dispatcher) Pending() int { return len(d.pending) }

// HandleMessage answers msg, either now or when its job completes.
func (d *Dispatcher) HandleMessage(msg Message) {
	d.capture(log.DirectionIn, msg.Command, len(msg.Payload), nil, nil)

	switch msg.Command {
	case CmdEcho:
		d.reply(msg.Command, RCOK, msg.Payload)

	case CmdTxDMX:
		token := d.token()
		d.enqueue(msg.Command, token, d.cfg.Queue.QueueDMX(token, msg.Payload))

	case CmdRDMDUBRequest:
		token := d.token()
		d.enqueue(msg.Command, token, d.cfg.Queue.QueueRDMDUB(token, msg.Payload))

	case CmdRDMRequest:
		token := d.token()
		dest, _ := rdm.DestinationOf(msg.Payload)
		broadcast := dest.IsBroadcast()
		d.enqueue(msg.Command, token, d.cfg.Queue.QueueRDMRequest(token, msg.Payload, broadcast))

	case CmdGetLog:
		var payload []byte
		if d.cfg.Log != nil {
			payload = d.cfg.Log.ReadLog(MaxPayloadSize)
		}
		d.reply(msg.Command, RCOK, payload)

	case CmdGetFlags:
		var payload []byte
		if d.cfg.Flags != nil {
			payload = d.cfg.Flags.Flags()
		}
		d.reply(msg.Command, RCOK, payload)

	case CmdWriteLog:
		d.writeLog(msg.Payload)
		d.reply(msg.Command, RCOK, nil)

	case CmdResetDevice:
		if d.cfg.Reset != nil {
			d.cfg.Reset()
		}
		d.reply(msg.Command, RCOK, nil)

	case CmdSetBreakTime, CmdSetMABTime, CmdSetRDMBroadcastListen, CmdSetRDMWaitTime:
		d.setTiming(msg)

	case CmdGetBreakTime, CmdGetMABTime, CmdGetRDMBroadcastListen, CmdGetRDMWaitTime:
		value := d.cfg.Queue.Timing(timingCommands[msg.Command])
		d.reply(msg.Command, RCOK, binary.LittleEndian.AppendUint16(nil, value))

	default:
		d.debugLog("unknown command", "command", msg.Command)
		d.reply(msg.Command, RCUnknown, nil)
	}
}

// HandleTransceiverEvent answers the host command whose job completed.
func (d *Dispatcher) HandleTransceiverEvent(ev transceiver.Event) {
	var cmd Command
	switch ev.Op {
	case transceiver.OpTxOnly:
		cmd = CmdTxDMX
	case transceiver.OpRDMDUB:
		cmd = CmdRDMDUBRequest
	case transceiver.OpRDMBroadcast, transceiver.OpRDMWithResponse:
		cmd = CmdRDMRequest
	default:
		d.debugLog("ignoring transceiver event", "op", ev.Op)
		return
	}

	job, ok := d.pending[ev.Token]
	if !ok {
		d.debugLog("completion for unknown token", "token", ev.Token, "op", ev.Op)
		return
	}
	delete(d.pending, ev.Token)
	if d.cfg.Observer != nil {
		d.cfg.Observer.JobCompleted(cmd, ev.Result, time.Since(job.queued))
	}

	rc := completionResult(ev)
	token := uint32(ev.Token)
	d.capture(log.DirectionOut, cmd, len(ev.Data), &rc, &token)
	d.send(Response{Command: cmd, Result: rc, Payload: ev.Data})
}

// completionResult maps a hardware result to a host result code. Only an
// RDM request reports RX_TIMEOUT; a silent DUB is UNKNOWN like any other
// failure.
func completionResult(ev transceiver.Event) ResultCode {
	if ev.Result.Success() {
		return RCOK
	}
	if ev.Result == transceiver.ResultRxTimeout {
		switch ev.Op {
		case transceiver.OpRDMWithResponse, transceiver.OpRDMBroadcast:
			return RCRxTimeout
		}
	}
	return RCUnknown
}

func (d *Dispatcher) enqueue(cmd Command, token transceiver.Token, accepted bool) {
	if !accepted {
		if d.cfg.Observer != nil {
			d.cfg.Observer.JobRejected(cmd)
		}
		d.reply(cmd, RCBufferFull, nil)
		return
	}
	d.pending[token] = pendingJob{cmd: cmd, queued: time.Now()}
}

func (d *Dispatcher) setTiming(msg Message) {
	if len(msg.Payload) != 2 {
		d.reply(msg.Command, RCBadParam, nil)
		return
	}
	value := binary.LittleEndian.Uint16(msg.Payload)
	if !d.cfg.Queue.SetTiming(timingCommands[msg.Command], value) {
		d.reply(msg.Command, RCBadParam, nil)
		return
	}
	d.reply(msg.Command, RCOK, nil)
}

func (d *Dispatcher) writeLog(payload []byte) {
	if d.cfg.Log == nil || len(payload) == 0 {
		return
	}
	if payload[len(payload)-1] != 0 {
		payload = append(append([]byte(nil), payload...), 0)
	}
	d.cfg.Log.WriteLog(payload)
}

func (d *Dispatcher) token() transceiver.Token {
	t := d.nextToken
	d.nextToken++
	if d.nextToken == 0 {
		d.nextToken = 1
	}
	return t
}

func (d *Dispatcher) reply(cmd Command, rc ResultCode, payload []byte) {
	d.capture(log.DirectionOut, cmd, len(payload), &rc, nil)
	d.send(Response{Command: cmd, Result: rc, Payload: payload})
}

func (d *Dispatcher) send(resp Response) {
	if d.cfg.Observer != nil {
		d.cfg.Observer.CommandHandled(resp.Command, resp.Result)
	}
	if err := d.cfg.Sender.Send(resp); err != nil {
		d.debugLog("send failed", "command", resp.Command, "error", err)
		log.Error(d.cfg.ProtocolLogger, d.cfg.SessionID, log.LayerHost, err, "send "+resp.Command.String())
	}
}

func (d *Dispatcher) capture(dir log.Direction, cmd Command, size int, rc *ResultCode, token *uint32) {
	if d.cfg.ProtocolLogger == nil {
		return
	}
	ev := &log.HostEvent{Command: uint16(cmd), PayloadSize: size, Token: token}
	if rc != nil {
		code := uint8(*rc)
		ev.Result = &code
	}
	d.cfg.ProtocolLogger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.cfg.SessionID,
		Direction: dir,
		Layer:     log.LayerHost,
		Category:  log.CategoryMessage,
		Host:      ev,
	})
}

func (d *Dispatcher) debugLog(msg string, args ...any) {
	if d.cfg.Logger != nil {
		d.cfg.Logger.Debug(msg, args...)
	}
}
