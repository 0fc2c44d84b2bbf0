package discovery

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

type mockRegistration struct {
	mock.Mock
}

func (m *mockRegistration) SetText(txt []string) { m.Called(txt) }
func (m *mockRegistration) Shutdown()            { m.Called() }

type registerCall struct {
	instance, service, domain string
	port                      int
	txt                       []string
}

func newTestAdvertiser(regs ...*mockRegistration) (*MDNSAdvertiser, *[]registerCall) {
	a := NewMDNSAdvertiser(AdvertiserConfig{})
	var calls []registerCall
	a.register = func(instance, service, domain string, port int, txt []string, _ []net.Interface, _ ...zeroconf.ServerOption) (registration, error) {
		calls = append(calls, registerCall{instance, service, domain, port, txt})
		if len(calls) > len(regs) {
			return nil, errors.New("no registration")
		}
		return regs[len(calls)-1], nil
	}
	return a, &calls
}

func testHostInfo() *HostInfo {
	return &HostInfo{
		Port:      7770,
		UID:       rdm.NewUID(0x7a70, 1),
		ModelID:   0x0101,
		ModelName: "moving-light",
		Version:   "1.0",
	}
}

func TestMDNSAdvertiser_Advertise(t *testing.T) {
	reg := &mockRegistration{}
	a, calls := newTestAdvertiser(reg)

	require.NoError(t, a.Advertise(context.Background(), testHostInfo()))
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Equal(t, "RDM-7a70:00000001", call.instance)
	assert.Equal(t, ServiceType, call.service)
	assert.Equal(t, Domain, call.domain)
	assert.Equal(t, 7770, call.port)
	assert.Equal(t, []string{"model=0101", "name=moving-light", "uid=7a70:00000001", "ver=1.0"}, call.txt)
	assert.Equal(t, DefaultTTL, a.config.TTL)
}

func TestMDNSAdvertiser_ReadvertiseShutsDownPrevious(t *testing.T) {
	first := &mockRegistration{}
	first.On("Shutdown").Once()
	second := &mockRegistration{}
	second.On("Shutdown").Once()
	a, calls := newTestAdvertiser(first, second)

	require.NoError(t, a.Advertise(context.Background(), testHostInfo()))
	require.NoError(t, a.Advertise(context.Background(), testHostInfo()))
	assert.Len(t, *calls, 2)
	first.AssertExpectations(t)

	require.NoError(t, a.Stop())
	require.NoError(t, a.Stop())
	second.AssertExpectations(t)
}

func TestMDNSAdvertiser_Update(t *testing.T) {
	reg := &mockRegistration{}
	a, _ := newTestAdvertiser(reg)

	info := testHostInfo()
	assert.ErrorIs(t, a.Update(info), ErrNotAdvertising)

	require.NoError(t, a.Advertise(context.Background(), info))
	info.ModelID = 0x0102
	info.ModelName = "dimmer"
	reg.On("SetText", []string{"model=0102", "name=dimmer", "uid=7a70:00000001", "ver=1.0"}).Once()
	require.NoError(t, a.Update(info))
	reg.AssertExpectations(t)
}

func TestMDNSAdvertiser_RegisterError(t *testing.T) {
	a, _ := newTestAdvertiser()
	err := a.Advertise(context.Background(), testHostInfo())
	require.Error(t, err)
	assert.ErrorIs(t, a.Update(testHostInfo()), ErrNotAdvertising)
}

func TestMDNSAdvertiser_CancelledContext(t *testing.T) {
	a, calls := newTestAdvertiser(&mockRegistration{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, a.Advertise(ctx, testHostInfo()), context.Canceled)
	assert.Empty(t, *calls)
}

func TestHostFromRecord(t *testing.T) {
	svc := hostFromRecord("RDM-7a70:00000001", "rig.local.", 7770,
		[]string{"uid=7a70:00000001", "model=0102", "ver=1.0"},
		[]string{"192.168.1.20"})
	require.NotNil(t, svc)
	assert.Equal(t, rdm.NewUID(0x7a70, 1), svc.UID)
	assert.Equal(t, uint16(0x0102), svc.ModelID)
	assert.Equal(t, "192.168.1.20:7770", svc.Dial())

	assert.Nil(t, hostFromRecord("x", "h", 1, []string{"model=0102"}, nil))
}

func TestHostServiceDial_FallsBackToHost(t *testing.T) {
	svc := &HostService{Host: "rig.local.", Port: 7770}
	assert.Equal(t, "rig.local.:7770", svc.Dial())
}

func TestAggregator(t *testing.T) {
	agg := newAggregator()

	first := &HostService{InstanceName: "a", Addresses: []string{"10.0.0.1"}}
	assert.True(t, agg.add(first))
	assert.False(t, agg.add(&HostService{InstanceName: "a", Addresses: []string{"10.0.0.1", "fe80::1"}}))
	assert.Equal(t, []string{"10.0.0.1", "fe80::1"}, first.Addresses)

	agg.remove("a", []string{"10.0.0.1"})
	assert.Equal(t, []string{"fe80::1"}, first.Addresses)

	agg.remove("a", []string{"fe80::1"})
	assert.True(t, agg.add(&HostService{InstanceName: "a", Addresses: []string{"10.0.0.2"}}))

	agg.remove("unknown", []string{"10.0.0.2"})
}
