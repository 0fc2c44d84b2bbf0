package service

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/pkg/devices"
	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/hostlog"
	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

var (
	controllerUID = rdm.NewUID(0x4744, 0x00000001)
	localUID      = rdm.NewUID(0x7a70, 0x00000001)
	remoteUID     = rdm.NewUID(0x7a70, 0x00000002)
)

// chanSender delivers responses to a channel.
type chanSender chan host.Response

func (c chanSender) Send(r host.Response) error {
	c <- r
	return nil
}

type testRig struct {
	svc     *Service
	sim     *transceiver.Simulator
	flags   *hostlog.Flags
	replies chanSender
	cancel  context.CancelFunc
	errc    chan error
	once    sync.Once
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	reg := model.NewRegistry(responder.New(localUID))
	require.NoError(t, devices.RegisterAll(reg))
	remote, err := devices.NewBusResponder(remoteUID, devices.DimmerID)
	require.NoError(t, err)

	bus := transceiver.NewBus(remote)
	completions := transceiver.NewCompletionQueue(transceiver.DefaultCompletionDepth)
	sim := transceiver.NewSimulator(bus, transceiver.NewTiming(), completions, transceiver.WithTaskInterval(time.Hour))
	flags := &hostlog.Flags{}

	svc, err := New(Config{
		Registry:     reg,
		Simulator:    sim,
		Completions:  completions,
		Log:          hostlog.NewRingLog(256, flags),
		Flags:        flags,
		StartModel:   devices.MovingLightID,
		TaskInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	bus.Attach(svc.LocalEndpoint())

	ctx, cancel := context.WithCancel(context.Background())
	rig := &testRig{
		svc:     svc,
		sim:     sim,
		flags:   flags,
		replies: make(chanSender, 8),
		cancel:  cancel,
		errc:    make(chan error, 1),
	}
	go sim.Run(ctx)
	go func() { rig.errc <- svc.Run(ctx) }()
	t.Cleanup(rig.stop)
	return rig
}

func (r *testRig) stop() {
	r.once.Do(func() {
		r.cancel()
		<-r.errc
	})
}

func (r *testRig) call(t *testing.T, cmd host.Command, payload []byte) host.Response {
	t.Helper()
	require.NoError(t, r.svc.Submit(context.Background(), host.Message{Command: cmd, Payload: payload}, r.replies))
	select {
	case resp := <-r.replies:
		require.Equal(t, cmd, resp.Command)
		return resp
	case <-time.After(2 * time.Second):
		t.Fatalf("no response to %s", cmd)
		return host.Response{}
	}
}

func (r *testRig) rdmCall(t *testing.T, req *rdm.Request) host.Response {
	t.Helper()
	frame, err := req.Encode()
	require.NoError(t, err)
	return r.call(t, host.CmdRDMRequest, frame)
}

func TestEcho(t *testing.T) {
	rig := newTestRig(t)
	resp := rig.call(t, host.CmdEcho, []byte("ping"))
	assert.Equal(t, host.RCOK, resp.Result)
	assert.Equal(t, []byte("ping"), resp.Payload)
}

func TestRDMRequestToLocalResponder(t *testing.T) {
	rig := newTestRig(t)

	resp := rig.rdmCall(t, rdm.NewRequest(controllerUID, localUID, 3, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDDeviceInfo, nil))
	require.Equal(t, host.RCOK, resp.Result)

	reply, err := rdm.Decode(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, localUID, reply.Src)
	assert.Equal(t, controllerUID, reply.Dest)
	assert.Equal(t, uint8(3), reply.TransactionNumber)
	assert.Equal(t, rdm.CommandClassGetResponse, reply.CommandClass)
	assert.Equal(t, rdm.ResponseTypeAck, reply.ResponseType())
	require.Len(t, reply.Data, 19)
	assert.Equal(t, devices.MovingLightID, binary.BigEndian.Uint16(reply.Data[2:4]))
}

func TestRDMRequestToRemoteResponder(t *testing.T) {
	rig := newTestRig(t)

	resp := rig.rdmCall(t, rdm.NewRequest(controllerUID, remoteUID, 0, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDDeviceInfo, nil))
	require.Equal(t, host.RCOK, resp.Result)
	reply, err := rdm.Decode(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, devices.DimmerID, binary.BigEndian.Uint16(reply.Data[2:4]))

	missing := rdm.NewUID(0x7a70, 0x99)
	resp = rig.rdmCall(t, rdm.NewRequest(controllerUID, missing, 1, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDDeviceInfo, nil))
	assert.Equal(t, host.RCRxTimeout, resp.Result)
	assert.Empty(t, resp.Payload)
}

func TestBroadcastIdentify(t *testing.T) {
	rig := newTestRig(t)

	resp := rig.rdmCall(t, rdm.NewRequest(controllerUID, rdm.BroadcastUID, 0, rdm.CommandClassSet, rdm.SubDeviceRoot, rdm.PIDIdentifyDevice, []byte{1}))
	assert.Equal(t, host.RCOK, resp.Result)
	assert.Empty(t, resp.Payload)

	resp = rig.rdmCall(t, rdm.NewRequest(controllerUID, localUID, 1, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDIdentifyDevice, nil))
	reply, err := rdm.Decode(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, reply.Data)
}

func TestDiscoveryThroughHost(t *testing.T) {
	rig := newTestRig(t)

	dub := func(lower, upper rdm.UID) host.Response {
		req := rdm.NewRequest(controllerUID, rdm.BroadcastUID, 0, rdm.CommandClassDiscovery, rdm.SubDeviceRoot, rdm.PIDDiscUniqueBranch, append(lower[:], upper[:]...))
		frame, err := req.Encode()
		require.NoError(t, err)
		return rig.call(t, host.CmdRDMDUBRequest, frame)
	}

	resp := dub(localUID, localUID)
	require.Equal(t, host.RCOK, resp.Result)
	uid, err := rdm.DecodeDUBResponse(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, localUID, uid)

	resp = dub(rdm.NewUID(0x0001, 0), rdm.NewUID(0x0002, 0))
	assert.Equal(t, host.RCUnknown, resp.Result, "a silent DUB reports UNKNOWN")
	assert.Empty(t, resp.Payload)

	mute := rdm.NewRequest(controllerUID, localUID, 2, rdm.CommandClassDiscovery, rdm.SubDeviceRoot, rdm.PIDDiscMute, nil)
	resp = rig.rdmCall(t, mute)
	require.Equal(t, host.RCOK, resp.Result)

	resp = dub(rdm.NewUID(0, 0), rdm.NewUID(0xfffe, 0xffffffff))
	require.Equal(t, host.RCOK, resp.Result)
	uid, err = rdm.DecodeDUBResponse(resp.Payload)
	require.NoError(t, err)
	assert.Equal(t, remoteUID, uid, "only the unmuted remote answers")
}

func TestResetRestoresDefaults(t *testing.T) {
	rig := newTestRig(t)

	assert.Equal(t, host.RCOK, rig.call(t, host.CmdSetBreakTime, []byte{0x64, 0x00}).Result)
	assert.Equal(t, []byte{0x64, 0x00}, rig.call(t, host.CmdGetBreakTime, nil).Payload)

	label := append([]byte(nil), "stage left"...)
	rig.rdmCall(t, rdm.NewRequest(controllerUID, localUID, 0, rdm.CommandClassSet, rdm.SubDeviceRoot, rdm.PIDDeviceLabel, label))
	rig.call(t, host.CmdWriteLog, []byte("x"))

	assert.Equal(t, host.RCOK, rig.call(t, host.CmdResetDevice, nil).Result)
	assert.Equal(t, []byte{176, 0}, rig.call(t, host.CmdGetBreakTime, nil).Payload)
	assert.Empty(t, rig.call(t, host.CmdGetLog, nil).Payload)

	resp := rig.rdmCall(t, rdm.NewRequest(controllerUID, localUID, 1, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDDeviceLabel, nil))
	reply, err := rdm.Decode(resp.Payload)
	require.NoError(t, err)
	assert.NotEqual(t, label, reply.Data)
}

func TestInjectedFrames(t *testing.T) {
	rig := newTestRig(t)

	req := rdm.NewRequest(controllerUID, localUID, 9, rdm.CommandClassGet, rdm.SubDeviceRoot, rdm.PIDSoftwareVersionLabel, nil)
	frame, err := req.Encode()
	require.NoError(t, err)
	require.True(t, rig.svc.Inject(frame))

	var replies [][]byte
	require.Eventually(t, func() bool {
		replies = append(replies, rig.sim.Replies()...)
		return len(replies) == 1
	}, 2*time.Second, 5*time.Millisecond)
	reply, err := rdm.Decode(replies[0])
	require.NoError(t, err)
	assert.Equal(t, uint8(9), reply.TransactionNumber)

	frame[len(frame)-1] ^= 0xff
	require.True(t, rig.svc.Inject(frame))
	assert.Eventually(t, func() bool {
		return rig.flags.Peek()&hostlog.FlagFrameError != 0
	}, 2*time.Second, 5*time.Millisecond)
	flags := rig.call(t, host.CmdGetFlags, nil)
	assert.Equal(t, host.RCOK, flags.Result)
	assert.NotZero(t, binary.LittleEndian.Uint16(flags.Payload)&uint16(hostlog.FlagFrameError))
}

func TestTxDMX(t *testing.T) {
	rig := newTestRig(t)
	resp := rig.call(t, host.CmdTxDMX, []byte{0, 10, 20})
	assert.Equal(t, host.RCOK, resp.Result)
}

func TestLifecycleErrors(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	rig := newTestRig(t)
	assert.Eventually(t, func() bool { return rig.svc.State() == StateRunning }, time.Second, time.Millisecond)
	assert.ErrorIs(t, rig.svc.Run(context.Background()), ErrAlreadyStarted)

	rig.stop()
	assert.Equal(t, StateStopped, rig.svc.State())
	err = rig.svc.Submit(context.Background(), host.Message{Command: host.CmdEcho}, rig.replies)
	assert.ErrorIs(t, err, ErrNotRunning)
}
