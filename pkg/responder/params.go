package responder

import (
	"encoding/binary"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

// BoolOp binds a PID direction to a boolean stored at v. SET accepts 0 or 1.
func BoolOp(v *bool) Op { return Op{Kind: OpBool, Bool: v} }

// Uint8Op binds a PID direction to a byte stored at v. Every value is valid.
func Uint8Op(v *uint8) Op { return Op{Kind: OpUint8, Uint8: v} }

// Uint32Op binds a PID direction to a big-endian uint32 stored at v.
func Uint32Op(v *uint32) Op { return Op{Kind: OpUint32, Uint32: v} }

// Enum8Op binds a PID direction to a byte stored at v that SET checks
// against valid.
func Enum8Op(v *uint8, valid func(uint8) bool) Op {
	return Op{Kind: OpEnum8, Uint8: v, Valid: valid}
}

// MaxValue returns a validator accepting 0..max.
func MaxValue(max uint8) func(uint8) bool {
	return func(b uint8) bool { return b <= max }
}

// OneOf returns a validator accepting exactly the listed values.
func OneOf(values ...uint8) func(uint8) bool {
	return func(b uint8) bool {
		for _, v := range values {
			if b == v {
				return true
			}
		}
		return false
	}
}

// width is the wire size of a numeric op.
func (o Op) width() int {
	if o.Kind == OpUint32 {
		return 4
	}
	return 1
}

func (o Op) get(r *Responder, req *rdm.Request) rdm.Result {
	switch o.Kind {
	case OpHandler:
		return o.Handler(r, req)
	case OpBool:
		if *o.Bool {
			return rdm.AckWith([]byte{1})
		}
		return rdm.AckWith([]byte{0})
	case OpUint8, OpEnum8:
		return rdm.AckWith([]byte{*o.Uint8})
	case OpUint32:
		return rdm.AckWith(binary.BigEndian.AppendUint32(nil, *o.Uint32))
	default:
		return rdm.NackWith(rdm.NackUnsupportedCommandClass)
	}
}

func (o Op) set(r *Responder, req *rdm.Request) rdm.Result {
	if o.Kind == OpHandler {
		return o.Handler(r, req)
	}
	if o.Kind == OpAbsent {
		return rdm.NackWith(rdm.NackUnsupportedCommandClass)
	}
	if len(req.Data) != o.width() {
		return rdm.NackWith(rdm.NackFormatError)
	}

	switch o.Kind {
	case OpBool:
		if req.Data[0] > 1 {
			return rdm.NackWith(rdm.NackDataOutOfRange)
		}
		*o.Bool = req.Data[0] == 1
	case OpUint8:
		*o.Uint8 = req.Data[0]
	case OpEnum8:
		if !o.Valid(req.Data[0]) {
			return rdm.NackWith(rdm.NackDataOutOfRange)
		}
		*o.Uint8 = req.Data[0]
	case OpUint32:
		*o.Uint32 = binary.BigEndian.Uint32(req.Data)
	}
	return rdm.AckWith(nil)
}
