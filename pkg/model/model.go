package model

import (
	"errors"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

// Model errors.
var (
	ErrUnknownModel     = errors.New("unknown model")
	ErrDuplicateModel   = errors.New("duplicate model ID")
	ErrIoctlBufferSize  = errors.New("ioctl buffer has the wrong size")
	ErrIoctlUnsupported = errors.New("ioctl not supported")
)

// Ioctl is an out-of-band query or command to the active model.
type Ioctl uint8

const (
	// IoctlGetUID copies the responder UID into a 6-byte buffer.
	IoctlGetUID Ioctl = iota + 1
)

// String returns the ioctl name.
func (c Ioctl) String() string {
	switch c {
	case IoctlGetUID:
		return "GET_UID"
	default:
		return "UNKNOWN"
	}
}

// Model is one device personality of the responder.
type Model interface {
	ID() uint16
	Name() string

	// Activate takes over r. Called with all previous model state torn down.
	Activate(r *responder.Responder)
	// Deactivate releases the responder.
	Deactivate()
	// Tasks runs periodic work such as timers. now is monotonic.
	Tasks(now time.Time)
	Ioctl(cmd Ioctl, buf []byte) error
	HandleRequest(req *rdm.Request) rdm.Result
}

// GetUID implements IoctlGetUID for models backed by r.
func GetUID(r *responder.Responder, buf []byte) error {
	if len(buf) != rdm.UIDLength {
		return ErrIoctlBufferSize
	}
	uid := r.UID()
	copy(buf, uid[:])
	return nil
}
