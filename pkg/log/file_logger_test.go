package log

import (
	"errors"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdm-protocol/rdm-go/pkg/rdm"
)

func stateEvent(session string, entity StateEntity, newState string) Event {
	return Event{
		Timestamp:   time.Now(),
		SessionID:   session,
		Layer:       LayerResponder,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{Entity: entity, NewState: newState},
	}
}

func TestFileLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captures", "session"+CaptureExt)

	l, err := NewFileLogger(path)
	require.NoError(t, err)
	l.Log(stateEvent("a", StateEntityModel, "moving light"))
	l.Log(Event{Timestamp: time.Now(), SessionID: "a", Layer: LayerHost, Host: &HostEvent{Command: 0x80, PayloadSize: 3}})
	l.Log(stateEvent("b", StateEntityMute, "muted"))
	require.NoError(t, l.Close())
	require.NoError(t, l.Close(), "second close is a no-op")

	written, failed := l.Stats()
	assert.Equal(t, 3, written)
	assert.Equal(t, 0, failed)

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	var sessions []string
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		sessions = append(sessions, ev.SessionID)
	}
	assert.Equal(t, []string{"a", "a", "b"}, sessions)
}

func TestFileLoggerIgnoresAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed"+CaptureExt)
	l, err := NewFileLogger(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l.Log(stateEvent("x", StateEntityModel, "dimmer"))
	written, _ := l.Stats()
	assert.Zero(t, written)
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent"+CaptureExt)
	l, err := NewFileLogger(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				l.Log(stateEvent("s", StateEntity(i%4), "x"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Close())

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	n := 0
	for {
		if _, err := r.Next(); err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		n++
	}
	assert.Equal(t, 200, n)
}

func TestReaderFilter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter"+CaptureExt)
	l, err := NewFileLogger(path)
	require.NoError(t, err)

	req := rdm.NewRequest(rdm.NewUID(1, 1), rdm.NewUID(2, 2), 1, rdm.CommandClassGet, 0, rdm.PIDDeviceInfo, nil)
	other := rdm.NewRequest(rdm.NewUID(1, 1), rdm.NewUID(2, 2), 2, rdm.CommandClassGet, 0, rdm.PIDLampHours, nil)
	l.Log(Event{Timestamp: time.Now(), SessionID: "s", Layer: LayerBus, RDM: NewRDMEvent(req, nil)})
	l.Log(Event{Timestamp: time.Now(), SessionID: "s", Layer: LayerBus, RDM: NewRDMEvent(other, nil)})
	l.Log(stateEvent("s", StateEntityIdentify, "on"))
	require.NoError(t, l.Close())

	pid := rdm.PIDLampHours
	r, err := NewFilteredReader(path, Filter{PID: &pid})
	require.NoError(t, err)
	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), ev.RDM.TransactionNumber)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, r.Close())

	cat := CategoryState
	r, err = NewFilteredReader(path, Filter{Category: &cat})
	require.NoError(t, err)
	defer r.Close()
	ev, err = r.Next()
	require.NoError(t, err)
	assert.Equal(t, StateEntityIdentify, ev.StateChange.Entity)
}
