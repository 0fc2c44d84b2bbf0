package responder

import (
	"errors"
	"fmt"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// Table construction errors.
var (
	ErrDuplicatePID = errors.New("duplicate PID")
	ErrReservedPID  = errors.New("PID is handled by the responder core")
	ErrInvalidOp    = errors.New("invalid operation")
)

// Handler processes one request. The responder passed in is the one the
// table is loaded into.
type Handler func(r *Responder, req *rdm.Request) rdm.Result

// OpKind selects how an Op is executed.
type OpKind uint8

const (
	// OpAbsent marks a direction the PID does not support.
	OpAbsent OpKind = iota
	OpHandler
	OpBool
	OpUint8
	OpUint32
	OpEnum8
)

// String returns the kind name.
func (k OpKind) String() string {
	switch k {
	case OpAbsent:
		return "absent"
	case OpHandler:
		return "handler"
	case OpBool:
		return "bool"
	case OpUint8:
		return "uint8"
	case OpUint32:
		return "uint32"
	case OpEnum8:
		return "enum8"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Op is one direction (GET or SET) of a PID.
type Op struct {
	Kind    OpKind
	Handler Handler
	// ArgSize is the exact parameter data length a GET must carry.
	ArgSize uint8

	Bool   *bool
	Uint8  *uint8
	Uint32 *uint32
	// Valid reports whether a wire value is acceptable for OpEnum8.
	Valid func(uint8) bool
}

// Absent is the explicit marker for an unsupported direction.
var Absent = Op{Kind: OpAbsent}

// HandlerOp wraps a handler that takes no GET argument.
func HandlerOp(h Handler) Op {
	return Op{Kind: OpHandler, Handler: h}
}

// HandlerOpWithArg wraps a GET handler that takes an argSize-byte argument.
func HandlerOpWithArg(h Handler, argSize uint8) Op {
	return Op{Kind: OpHandler, Handler: h, ArgSize: argSize}
}

// Descriptor binds a PID to its GET and SET operations.
type Descriptor struct {
	PID rdm.PID
	Get Op
	Set Op
}

// Table is an ordered, validated set of descriptors. The order is the order
// PIDs are reported in SUPPORTED_PARAMETERS.
type Table struct {
	descs []Descriptor
}

// NewTable validates descs and builds a Table.
func NewTable(descs ...Descriptor) (*Table, error) {
	seen := make(map[rdm.PID]bool, len(descs))
	for _, d := range descs {
		if d.PID.IsDiscovery() || d.PID == rdm.PIDSupportedParameters {
			return nil, fmt.Errorf("%w: %s", ErrReservedPID, d.PID)
		}
		if seen[d.PID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePID, d.PID)
		}
		seen[d.PID] = true
		if err := d.Get.validate(); err != nil {
			return nil, fmt.Errorf("%s get: %w", d.PID, err)
		}
		if err := d.Set.validate(); err != nil {
			return nil, fmt.Errorf("%s set: %w", d.PID, err)
		}
		if d.Get.Kind == OpAbsent && d.Set.Kind == OpAbsent {
			return nil, fmt.Errorf("%w: %s supports neither GET nor SET", ErrInvalidOp, d.PID)
		}
	}
	return &Table{descs: append([]Descriptor(nil), descs...)}, nil
}

// MustTable is NewTable for static tables; it panics on error.
func MustTable(descs ...Descriptor) *Table {
	t, err := NewTable(descs...)
	if err != nil {
		panic(err)
	}
	return t
}

// PIDs returns the table's PIDs in insertion order.
func (t *Table) PIDs() []rdm.PID {
	pids := make([]rdm.PID, len(t.descs))
	for i, d := range t.descs {
		pids[i] = d.PID
	}
	return pids
}

// Lookup returns the descriptor for pid.
func (t *Table) Lookup(pid rdm.PID) (Descriptor, bool) {
	for _, d := range t.descs {
		if d.PID == pid {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Dispatch routes a GET or SET to its operation.
func (t *Table) Dispatch(r *Responder, req *rdm.Request) rdm.Result {
	d, ok := t.Lookup(req.PID)
	if !ok {
		return rdm.NackWith(rdm.NackUnknownPID)
	}

	switch req.CommandClass {
	case rdm.CommandClassGet:
		if d.Get.Kind == OpAbsent {
			return rdm.NackWith(rdm.NackUnsupportedCommandClass)
		}
		if len(req.Data) != int(d.Get.ArgSize) {
			return rdm.NackWith(rdm.NackFormatError)
		}
		return d.Get.get(r, req)
	case rdm.CommandClassSet:
		if d.Set.Kind == OpAbsent {
			return rdm.NackWith(rdm.NackUnsupportedCommandClass)
		}
		return d.Set.set(r, req)
	default:
		return rdm.NackWith(rdm.NackUnsupportedCommandClass)
	}
}

func (o Op) validate() error {
	bound := 0
	if o.Handler != nil {
		bound++
	}
	if o.Bool != nil {
		bound++
	}
	if o.Uint8 != nil {
		bound++
	}
	if o.Uint32 != nil {
		bound++
	}

	var ok bool
	switch o.Kind {
	case OpAbsent:
		ok = bound == 0 && o.Valid == nil
	case OpHandler:
		ok = o.Handler != nil && bound == 1
	case OpBool:
		ok = o.Bool != nil && bound == 1
	case OpUint8:
		ok = o.Uint8 != nil && bound == 1
	case OpUint32:
		ok = o.Uint32 != nil && bound == 1
	case OpEnum8:
		ok = o.Uint8 != nil && o.Valid != nil && bound == 1
	}
	if !ok {
		return fmt.Errorf("%w: %s op with inconsistent bindings", ErrInvalidOp, o.Kind)
	}
	if o.Kind != OpHandler && o.ArgSize != 0 {
		return fmt.Errorf("%w: %s op cannot take a GET argument", ErrInvalidOp, o.Kind)
	}
	return nil
}
