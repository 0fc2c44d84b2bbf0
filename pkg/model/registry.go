package model

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

// Registry holds the registered models and the active one. It is driven by
// a single goroutine and is not safe for concurrent use.
type Registry struct {
	r      *responder.Responder
	models map[uint16]Model
	active Model

	logger         *slog.Logger
	protocolLogger log.Logger
	sessionID      string
}

// NewRegistry creates an empty registry around the shared responder.
func NewRegistry(r *responder.Responder) *Registry {
	reg := &Registry{
		r:      r,
		models: make(map[uint16]Model),
	}
	r.OnMuteChange(func(muted bool) {
		state := "unmuted"
		if muted {
			state = "muted"
		}
		log.StateChange(reg.protocolLogger, reg.sessionID, r.UID().String(), log.StateEntityMute, "", state, "")
	})
	r.OnIdentifyChange(func(on bool) {
		state := "off"
		if on {
			state = "on"
		}
		log.StateChange(reg.protocolLogger, reg.sessionID, r.UID().String(), log.StateEntityIdentify, "", state, "")
	})
	return reg
}

// SetLogger sets the logger for debug output.
func (reg *Registry) SetLogger(logger *slog.Logger) {
	reg.logger = logger
}

// SetProtocolLogger sets the capture logger and the session it tags.
func (reg *Registry) SetProtocolLogger(l log.Logger, sessionID string) {
	reg.protocolLogger = l
	reg.sessionID = sessionID
}

// Responder returns the shared responder.
func (reg *Registry) Responder() *responder.Responder { return reg.r }

// Register adds m. It does not activate it.
func (reg *Registry) Register(m Model) error {
	if _, ok := reg.models[m.ID()]; ok {
		return fmt.Errorf("%w: 0x%04x", ErrDuplicateModel, m.ID())
	}
	reg.models[m.ID()] = m
	return nil
}

// Models returns the registered models ordered by ID.
func (reg *Registry) Models() []Model {
	out := make([]Model, 0, len(reg.models))
	for _, m := range reg.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Active returns the active model, or nil.
func (reg *Registry) Active() Model { return reg.active }

// Activate switches to the model with the given ID. The old model is fully
// deactivated before the new one is activated. Activating the current model
// reloads it.
func (reg *Registry) Activate(id uint16) error {
	next, ok := reg.models[id]
	if !ok {
		return fmt.Errorf("%w: 0x%04x", ErrUnknownModel, id)
	}

	oldName := ""
	if reg.active != nil {
		oldName = reg.active.Name()
		reg.active.Deactivate()
		reg.active = nil
	}
	next.Activate(reg.r)
	reg.active = next

	reg.debugLog("model activated", "id", fmt.Sprintf("0x%04x", id), "name", next.Name())
	log.StateChange(reg.protocolLogger, reg.sessionID, reg.r.UID().String(), log.StateEntityModel, oldName, next.Name(), "activate")
	return nil
}

// Deactivate deactivates the active model, leaving none.
func (reg *Registry) Deactivate() {
	if reg.active == nil {
		return
	}
	name := reg.active.Name()
	reg.active.Deactivate()
	reg.active = nil
	log.StateChange(reg.protocolLogger, reg.sessionID, reg.r.UID().String(), log.StateEntityModel, name, "", "deactivate")
}

// Tasks forwards periodic work to the active model.
func (reg *Registry) Tasks(now time.Time) {
	if reg.active != nil {
		reg.active.Tasks(now)
	}
}

// Ioctl forwards cmd to the active model.
func (reg *Registry) Ioctl(cmd Ioctl, buf []byte) error {
	if reg.active == nil {
		return fmt.Errorf("%w: no active model", ErrIoctlUnsupported)
	}
	return reg.active.Ioctl(cmd, buf)
}

// HandleRequest forwards req to the active model. With no active model
// nothing is answered.
func (reg *Registry) HandleRequest(req *rdm.Request) rdm.Result {
	if reg.active == nil {
		return rdm.None()
	}
	return reg.active.HandleRequest(req)
}

// HandleFrame decodes frame, hands it to the active model and encodes the
// reply. It reports false when nothing is to be transmitted.
func (reg *Registry) HandleFrame(frame []byte) ([]byte, bool) {
	req, err := rdm.Decode(frame)
	if err != nil {
		reg.debugLog("dropping frame", "error", err)
		log.Error(reg.protocolLogger, reg.sessionID, log.LayerBus, err, "decode")
		return nil, false
	}

	result := reg.HandleRequest(req)
	reply, ok := reg.r.Reply(req, result)
	if reg.protocolLogger != nil {
		now := time.Now()
		source := reg.r.UID().String()
		reg.protocolLogger.Log(log.Event{
			Timestamp: now,
			SessionID: reg.sessionID,
			Direction: log.DirectionIn,
			Layer:     log.LayerBus,
			Category:  log.CategoryMessage,
			Source:    source,
			RDM:       log.NewRDMEvent(req, nil),
		})
		if ok {
			reg.protocolLogger.Log(log.Event{
				Timestamp: now,
				SessionID: reg.sessionID,
				Direction: log.DirectionOut,
				Layer:     log.LayerBus,
				Category:  log.CategoryMessage,
				Source:    source,
				RDM:       log.NewRDMEvent(req, &result),
			})
		}
	}
	return reply, ok
}

func (reg *Registry) debugLog(msg string, args ...any) {
	if reg.logger != nil {
		reg.logger.Debug(msg, args...)
	}
}
