package responder

import (
	"encoding/binary"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// dubParamDataSize is the lower+upper UID bound pair carried by a DUB.
const dubParamDataSize = 2 * rdm.UIDLength

// DiscoveryState is the per-responder mute flag.
type DiscoveryState struct {
	muted bool
}

// Muted reports whether the responder is muted.
func (d *DiscoveryState) Muted() bool { return d.muted }

// Reset returns to the unmuted state.
func (d *DiscoveryState) Reset() { d.muted = false }

func (r *Responder) handleDiscovery(req *rdm.Request) rdm.Result {
	if req.SubDevice != rdm.SubDeviceRoot {
		return rdm.None()
	}

	switch req.PID {
	case rdm.PIDDiscUniqueBranch:
		return r.handleDUB(req)
	case rdm.PIDDiscMute:
		return r.handleMute(req, true)
	case rdm.PIDDiscUnMute:
		return r.handleMute(req, false)
	default:
		return rdm.None()
	}
}

func (r *Responder) handleDUB(req *rdm.Request) rdm.Result {
	if !req.Dest.RequiresAction(r.uid) || r.discovery.muted {
		return rdm.None()
	}
	if len(req.Data) != dubParamDataSize {
		return rdm.None()
	}
	lower, _ := rdm.UIDFromBytes(req.Data[:rdm.UIDLength])
	upper, _ := rdm.UIDFromBytes(req.Data[rdm.UIDLength:])
	if !r.uid.InRange(lower, upper) {
		return rdm.None()
	}
	return rdm.Result{Kind: rdm.DUBResponse, Payload: rdm.BuildDUBResponse(r.uid)}
}

func (r *Responder) handleMute(req *rdm.Request, mute bool) rdm.Result {
	if !req.Dest.RequiresAction(r.uid) {
		return rdm.None()
	}
	if len(req.Data) != 0 {
		return rdm.NackWith(rdm.NackFormatError)
	}
	if r.discovery.muted != mute {
		r.discovery.muted = mute
		r.notifyMute(mute)
	}
	var flags uint16
	if r.def != nil {
		flags = r.def.MuteFlags
	}
	return rdm.AckWith(binary.BigEndian.AppendUint16(nil, flags))
}
