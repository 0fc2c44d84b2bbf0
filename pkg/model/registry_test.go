package model

import (
	"errors"
	"testing"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
)

var (
	testUID    = rdm.NewUID(0x7a70, 0x20)
	controller = rdm.NewUID(0x4f4c, 0x01)
)

// fakeModel records lifecycle calls into a shared journal.
type fakeModel struct {
	id      uint16
	name    string
	journal *[]string
	def     *responder.Definition
	r       *responder.Responder
	ticks   int
}

func newFakeModel(id uint16, name string, journal *[]string) *fakeModel {
	return &fakeModel{
		id:      id,
		name:    name,
		journal: journal,
		def: &responder.Definition{
			ModelID:            id,
			DefaultDeviceLabel: name,
			Table:              responder.MustTable(responder.DeviceInfo, responder.DeviceLabel, responder.IdentifyDevice),
		},
	}
}

func (m *fakeModel) ID() uint16   { return m.id }
func (m *fakeModel) Name() string { return m.name }

func (m *fakeModel) Activate(r *responder.Responder) {
	*m.journal = append(*m.journal, "activate "+m.name)
	m.r = r
	r.Load(m.def)
}

func (m *fakeModel) Deactivate() {
	*m.journal = append(*m.journal, "deactivate "+m.name)
	m.r.Unload()
	m.r = nil
}

func (m *fakeModel) Tasks(time.Time) { m.ticks++ }

func (m *fakeModel) Ioctl(cmd Ioctl, buf []byte) error {
	if cmd == IoctlGetUID {
		return GetUID(m.r, buf)
	}
	return ErrIoctlUnsupported
}

func (m *fakeModel) HandleRequest(req *rdm.Request) rdm.Result {
	return m.r.HandleRequest(req)
}

type recordingLogger struct {
	events []log.Event
}

func (l *recordingLogger) Log(ev log.Event) { l.events = append(l.events, ev) }

func newTestRegistry(t *testing.T) (*Registry, *fakeModel, *fakeModel, *[]string) {
	t.Helper()
	journal := &[]string{}
	reg := NewRegistry(responder.New(testUID))
	a := newFakeModel(0x0101, "alpha", journal)
	b := newFakeModel(0x0102, "beta", journal)
	for _, m := range []Model{b, a} {
		if err := reg.Register(m); err != nil {
			t.Fatalf("Register failed: %v", err)
		}
	}
	return reg, a, b, journal
}

func labelRequest() *rdm.Request {
	return rdm.NewRequest(controller, testUID, 1, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDDeviceLabel, nil)
}

func TestRegistryNoActiveModel(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	if res := reg.HandleRequest(labelRequest()); res.Kind != rdm.NoResponse {
		t.Errorf("result = %s, want NO_RESPONSE", res.Kind)
	}
	if err := reg.Ioctl(IoctlGetUID, make([]byte, 6)); !errors.Is(err, ErrIoctlUnsupported) {
		t.Errorf("Ioctl error = %v", err)
	}
	reg.Tasks(time.Now())
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	reg, a, _, _ := newTestRegistry(t)
	if err := reg.Register(a); !errors.Is(err, ErrDuplicateModel) {
		t.Errorf("error = %v, want ErrDuplicateModel", err)
	}
	models := reg.Models()
	if len(models) != 2 || models[0].ID() != 0x0101 {
		t.Errorf("Models() not ordered by ID")
	}
}

func TestRegistrySwitchOrder(t *testing.T) {
	reg, _, b, journal := newTestRegistry(t)
	capture := &recordingLogger{}
	reg.SetProtocolLogger(capture, "sess")

	if err := reg.Activate(0x0101); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := reg.Activate(0x0102); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	want := []string{"activate alpha", "deactivate alpha", "activate beta"}
	if len(*journal) != len(want) {
		t.Fatalf("journal = %v, want %v", *journal, want)
	}
	for i := range want {
		if (*journal)[i] != want[i] {
			t.Errorf("journal[%d] = %q, want %q", i, (*journal)[i], want[i])
		}
	}
	if reg.Active() != Model(b) {
		t.Error("beta should be active")
	}

	res := reg.HandleRequest(labelRequest())
	if res.Kind != rdm.Ack || string(res.Payload) != "beta" {
		t.Errorf("label = %s %q", res.Kind, res.Payload)
	}

	if len(capture.events) != 2 || capture.events[1].StateChange.OldState != "alpha" || capture.events[1].StateChange.NewState != "beta" {
		t.Errorf("state events = %+v", capture.events)
	}
}

func TestRegistryActivateUnknown(t *testing.T) {
	reg, _, _, journal := newTestRegistry(t)
	if err := reg.Activate(0x0101); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := reg.Activate(0x9999); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("error = %v, want ErrUnknownModel", err)
	}
	if reg.Active() == nil || reg.Active().ID() != 0x0101 {
		t.Error("failed switch must keep the current model")
	}
	if len(*journal) != 1 {
		t.Errorf("journal = %v", *journal)
	}
}

func TestRegistryActivationUnmutes(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	if err := reg.Activate(0x0101); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	mute := rdm.NewRequest(controller, testUID, 1, rdm.CommandClassDiscovery, rdm.SubDeviceRoot, rdm.PIDDiscMute, nil)
	reg.HandleRequest(mute)
	if !reg.Responder().Muted() {
		t.Fatal("expected muted")
	}
	if err := reg.Activate(0x0102); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if reg.Responder().Muted() {
		t.Error("activation must unmute")
	}
}

func TestRegistryIoctl(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	if err := reg.Activate(0x0101); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	buf := make([]byte, 6)
	if err := reg.Ioctl(IoctlGetUID, buf); err != nil {
		t.Fatalf("Ioctl failed: %v", err)
	}
	if got, _ := rdm.UIDFromBytes(buf); got != testUID {
		t.Errorf("uid = %s", got)
	}
	if err := reg.Ioctl(IoctlGetUID, make([]byte, 4)); !errors.Is(err, ErrIoctlBufferSize) {
		t.Errorf("short buffer error = %v", err)
	}
	if err := reg.Ioctl(Ioctl(99), buf); !errors.Is(err, ErrIoctlUnsupported) {
		t.Errorf("unknown ioctl error = %v", err)
	}
}

func TestRegistryHandleFrameCapture(t *testing.T) {
	reg, _, _, _ := newTestRegistry(t)
	capture := &recordingLogger{}
	reg.SetProtocolLogger(capture, "sess")
	if err := reg.Activate(0x0101); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	capture.events = nil

	frame, err := labelRequest().Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	reply, ok := reg.HandleFrame(frame)
	if !ok {
		t.Fatal("expected a reply")
	}
	resp, err := rdm.Decode(reply)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if string(resp.Data) != "alpha" {
		t.Errorf("reply data = %q", resp.Data)
	}
	if len(capture.events) != 2 || capture.events[1].Direction != log.DirectionOut {
		t.Errorf("capture = %+v", capture.events)
	}

	_, ok = reg.HandleFrame(frame[:10])
	if ok {
		t.Error("truncated frame must not be answered")
	}
}
