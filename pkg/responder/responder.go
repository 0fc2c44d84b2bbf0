package responder

import (
	"encoding/binary"
	"errors"
	"log/slog"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// ErrPersonalityOutOfRange is returned for a personality outside 1..N.
var ErrPersonalityOutOfRange = errors.New("personality out of range")

// mandatoryPIDs are omitted from SUPPORTED_PARAMETERS; controllers assume
// every responder implements them.
var mandatoryPIDs = map[rdm.PID]bool{
	rdm.PIDSupportedParameters:  true,
	rdm.PIDParameterDescription: true,
	rdm.PIDDeviceInfo:           true,
	rdm.PIDSoftwareVersionLabel: true,
	rdm.PIDDMXStartAddress:      true,
	rdm.PIDIdentifyDevice:       true,
}

// Responder is the RDM state machine for a single UID.
type Responder struct {
	uid     rdm.UID
	encoder *rdm.Encoder
	def     *Definition

	discovery DiscoveryState

	label            string
	startAddress     uint16
	personality      uint8
	identify         bool
	onMuteChange     func(muted bool)
	onIdentifyChange func(on bool)

	logger *slog.Logger
}

// New creates a responder for uid with no definition loaded. Until Load is
// called every request yields no response.
func New(uid rdm.UID) *Responder {
	return &Responder{
		uid:     uid,
		encoder: rdm.NewEncoder(uid),
	}
}

// SetLogger sets the logger for debug output.
func (r *Responder) SetLogger(logger *slog.Logger) {
	r.logger = logger
}

// OnMuteChange registers fn to be called when the mute state changes.
func (r *Responder) OnMuteChange(fn func(muted bool)) {
	r.onMuteChange = fn
}

// OnIdentifyChange registers fn to be called when identify mode changes.
func (r *Responder) OnIdentifyChange(fn func(on bool)) {
	r.onIdentifyChange = fn
}

// UID returns the responder's UID.
func (r *Responder) UID() rdm.UID { return r.uid }

// Definition returns the loaded definition, or nil.
func (r *Responder) Definition() *Definition { return r.def }

// Load installs def and resets all runtime state to factory defaults.
func (r *Responder) Load(def *Definition) {
	r.def = def
	r.ResetToFactoryDefaults()
}

// Unload removes the definition. The responder goes silent.
func (r *Responder) Unload() {
	r.def = nil
	r.discovery.Reset()
	r.identify = false
}

// ResetToFactoryDefaults restores the label, start address, personality and
// identify state, and unmutes.
func (r *Responder) ResetToFactoryDefaults() {
	r.discovery.Reset()
	r.identify = false
	r.startAddress = 1
	r.label = ""
	r.personality = 0
	if r.def == nil {
		return
	}
	r.label = r.def.DefaultDeviceLabel
	if len(r.def.Personalities) > 0 {
		r.personality = 1
	}
}

// Muted reports whether discovery is muted.
func (r *Responder) Muted() bool { return r.discovery.Muted() }

// Identify reports whether identify mode is on.
func (r *Responder) Identify() bool { return r.identify }

// DeviceLabel returns the current device label.
func (r *Responder) DeviceLabel() string { return r.label }

// HandleRequest classifies and answers one decoded request.
func (r *Responder) HandleRequest(req *rdm.Request) rdm.Result {
	if r.def == nil {
		return rdm.None()
	}

	switch req.CommandClass {
	case rdm.CommandClassDiscovery:
		return r.handleDiscovery(req)
	case rdm.CommandClassGet, rdm.CommandClassSet:
	default:
		r.debugLog("ignoring command class", "cc", req.CommandClass)
		return rdm.None()
	}

	if !req.Dest.RequiresAction(r.uid) {
		return rdm.None()
	}

	switch req.SubDevice {
	case rdm.SubDeviceRoot:
	case rdm.SubDeviceAll:
		if req.CommandClass == rdm.CommandClassGet {
			return rdm.NackWith(rdm.NackSubDeviceOutOfRange)
		}
	default:
		return rdm.NackWith(rdm.NackSubDeviceOutOfRange)
	}

	if req.PID == rdm.PIDSupportedParameters {
		if req.CommandClass != rdm.CommandClassGet {
			return rdm.NackWith(rdm.NackUnsupportedCommandClass)
		}
		if len(req.Data) != 0 {
			return rdm.NackWith(rdm.NackFormatError)
		}
		return rdm.AckWith(r.supportedParameters())
	}

	if r.def.Table == nil {
		return rdm.NackWith(rdm.NackUnknownPID)
	}
	return r.def.Table.Dispatch(r, req)
}

// Reply encodes result as the answer to req. It reports false when nothing
// is to be transmitted: NoResponse results, and any non-DUB reply to a
// broadcast or vendorcast request.
func (r *Responder) Reply(req *rdm.Request, result rdm.Result) ([]byte, bool) {
	if !result.Responds() {
		return nil, false
	}
	if result.Kind != rdm.DUBResponse && req.Dest.IsBroadcast() {
		return nil, false
	}
	frame, err := r.encoder.Encode(req, result)
	if err != nil {
		r.debugLog("encode failed", "pid", req.PID, "error", err)
		return nil, false
	}
	return frame, true
}

// HandleFrame decodes a raw frame, handles it and encodes the reply.
func (r *Responder) HandleFrame(frame []byte) ([]byte, bool) {
	req, err := rdm.Decode(frame)
	if err != nil {
		r.debugLog("dropping frame", "error", err)
		return nil, false
	}
	return r.Reply(req, r.HandleRequest(req))
}

func (r *Responder) supportedParameters() []byte {
	var out []byte
	for _, pid := range r.def.Table.PIDs() {
		if mandatoryPIDs[pid] {
			continue
		}
		out = binary.BigEndian.AppendUint16(out, uint16(pid))
	}
	return out
}

func (r *Responder) currentPersonality() (Personality, bool) {
	if r.def == nil || r.personality == 0 || int(r.personality) > len(r.def.Personalities) {
		return Personality{}, false
	}
	return r.def.Personalities[r.personality-1], true
}

// Footprint returns the DMX footprint of the current personality.
func (r *Responder) Footprint() uint16 {
	p, ok := r.currentPersonality()
	if !ok {
		return 0
	}
	return p.Footprint()
}

// StartAddress returns the DMX start address, or InvalidDMXAddress when the
// footprint is zero.
func (r *Responder) StartAddress() uint16 {
	if r.Footprint() == 0 {
		return InvalidDMXAddress
	}
	return r.startAddress
}

// Personality returns the 1-based current personality, 0 if the model has
// none.
func (r *Responder) Personality() uint8 { return r.personality }

func (r *Responder) notifyMute(muted bool) {
	r.debugLog("mute state changed", "muted", muted)
	if r.onMuteChange != nil {
		r.onMuteChange(muted)
	}
}

func (r *Responder) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, append([]any{"uid", r.uid.String()}, args...)...)
	}
}
