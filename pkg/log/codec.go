package log

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Capture records are flat: an Event map holding at most one payload map.
// The decoder limits are sized to that shape so a corrupt or foreign file
// fails fast instead of allocating.
const (
	maxRecordNesting = 4
	maxRecordPairs   = 16
	maxRecordArray   = 16
)

var captureEnc, captureDec = captureModes()

func captureModes() (cbor.EncMode, cbor.DecMode) {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic("log: capture encoder: " + err.Error())
	}
	dec, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		MaxNestedLevels:  maxRecordNesting,
		MaxMapPairs:      maxRecordPairs,
		MaxArrayElements: maxRecordArray,
	}.DecMode()
	if err != nil {
		panic("log: capture decoder: " + err.Error())
	}
	return enc, dec
}

// EncodeEvent encodes one capture record.
func EncodeEvent(event Event) ([]byte, error) {
	return captureEnc.Marshal(event)
}

// DecodeEvent decodes one capture record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := captureDec.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns a record stream encoder writing to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return captureEnc.NewEncoder(w)
}

// NewDecoder returns a record stream decoder reading from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return captureDec.NewDecoder(r)
}
