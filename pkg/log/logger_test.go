package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should be NoopLogger")
	}
	c := &captureLogger{}
	if OrNoop(c) != c {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}

func TestHelpers(t *testing.T) {
	c := &captureLogger{}
	StateChange(c, "s1", "7a70:00000001", StateEntityModel, "", "moving light", "activate")
	Error(c, "s1", LayerHost, errors.New("short read"), "decode")
	Error(c, "s1", LayerHost, nil, "ignored")
	StateChange(nil, "s1", "", StateEntityMute, "", "muted", "")

	if len(c.events) != 2 {
		t.Fatalf("got %d events, want 2", len(c.events))
	}
	if c.events[0].Category != CategoryState || c.events[0].StateChange.NewState != "moving light" {
		t.Errorf("state event = %+v", c.events[0])
	}
	if c.events[1].Category != CategoryError || c.events[1].Error.Message != "short read" {
		t.Errorf("error event = %+v", c.events[1])
	}
}

func TestMultiLogger(t *testing.T) {
	a, b := &captureLogger{}, &captureLogger{}
	m := NewMultiLogger(a, nil, b)
	m.Log(Event{SessionID: "x"})
	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("fan out = %d, %d", len(a.events), len(b.events))
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)

	result := uint8(5)
	a.Log(Event{SessionID: "abc", Layer: LayerHost, Host: &HostEvent{Command: 0x87, PayloadSize: 26, Result: &result}})

	out := buf.String()
	for _, want := range []string{"session=abc", "layer=HOST", "command=135", "rc=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
