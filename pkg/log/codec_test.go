package log

import (
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

func TestEncodeDecodeRDMEvent(t *testing.T) {
	req := rdm.NewRequest(rdm.NewUID(0x4f4c, 1), rdm.NewUID(0x7a70, 2), 9, rdm.CommandClassSet, rdm.SubDeviceRoot, rdm.PIDLampState, []byte{9})
	result := rdm.NackWith(rdm.NackDataOutOfRange)

	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	ev := Event{
		Timestamp: ts,
		SessionID: "session-1",
		Direction: DirectionOut,
		Layer:     LayerBus,
		Category:  CategoryMessage,
		Source:    "7a70:00000002",
		RDM:       NewRDMEvent(req, &result),
	}

	data, err := EncodeEvent(ev)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	got, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}
	if got.RDM == nil {
		t.Fatal("RDM payload missing")
	}
	if got.RDM.PID != rdm.PIDLampState || got.RDM.CommandClass != rdm.CommandClassSet {
		t.Errorf("RDM = %+v", got.RDM)
	}
	if got.RDM.Result == nil || *got.RDM.Result != rdm.Nack {
		t.Errorf("result = %v", got.RDM.Result)
	}
	if got.RDM.NackReason == nil || *got.RDM.NackReason != rdm.NackDataOutOfRange {
		t.Errorf("nack reason = %v", got.RDM.NackReason)
	}
	if got.Frame != nil || got.Host != nil || got.StateChange != nil {
		t.Error("unexpected payloads decoded")
	}
}

func TestNewFrameEventTruncates(t *testing.T) {
	ev := NewFrameEvent(make([]byte, MaxFrameCapture+10))
	if !ev.Truncated || len(ev.Data) != MaxFrameCapture || ev.Size != MaxFrameCapture+10 {
		t.Errorf("frame event = size %d, data %d, truncated %v", ev.Size, len(ev.Data), ev.Truncated)
	}

	small := []byte{1, 2, 3}
	ev = NewFrameEvent(small)
	small[0] = 9
	if ev.Truncated || ev.Data[0] != 1 {
		t.Error("small frame should be copied untruncated")
	}
}

func TestDecodeEventRejectsDuplicateKeys(t *testing.T) {
	// {2: "a", 2: "b"}
	data := []byte{0xa2, 0x02, 0x61, 'a', 0x02, 0x61, 'b'}

	_, err := DecodeEvent(data)
	var dup *cbor.DupMapKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("DecodeEvent error = %v, want DupMapKeyError", err)
	}
}

func TestDecodeEventRejectsOversizedRecord(t *testing.T) {
	fields := make(map[int]int, maxRecordPairs+1)
	for i := range maxRecordPairs + 1 {
		fields[i+100] = i
	}
	data, err := cbor.Marshal(fields)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	_, err = DecodeEvent(data)
	var tooMany *cbor.MaxMapPairsError
	if !errors.As(err, &tooMany) {
		t.Fatalf("DecodeEvent error = %v, want MaxMapPairsError", err)
	}
}

func TestEncodeEventAllPayloadsFitLimits(t *testing.T) {
	rc := uint8(0)
	token := uint32(7)
	for _, ev := range []Event{
		{Frame: NewFrameEvent(make([]byte, MaxFrameCapture+1))},
		{Host: &HostEvent{Command: 0x87, PayloadSize: 26, Result: &rc, Token: &token}},
		{StateChange: &StateChangeEvent{Entity: StateEntityMute, OldState: "unmuted", NewState: "muted", Reason: "DISC_MUTE"}},
		{Error: &ErrorEventData{Layer: LayerHost, Message: "short message", Context: "decode"}},
	} {
		ev.Timestamp = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		ev.SessionID = "session-1"
		ev.Source = "7a70:00000002"
		data, err := EncodeEvent(ev)
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		if _, err := DecodeEvent(data); err != nil {
			t.Errorf("DecodeEvent(%+v) failed: %v", ev, err)
		}
	}
}
