package hostlog

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingLogFIFO(t *testing.T) {
	l := NewRingLog(8, nil)
	l.WriteLog([]byte("abc"))
	l.WriteLog([]byte("de"))

	assert.Equal(t, 5, l.Len())
	assert.Equal(t, []byte("abc"), l.ReadLog(3))
	assert.Equal(t, []byte("de"), l.ReadLog(100))
	assert.Nil(t, l.ReadLog(10))
}

func TestRingLogOverwritesOldest(t *testing.T) {
	flags := &Flags{}
	l := NewRingLog(4, flags)

	l.WriteLog([]byte("abcdef"))
	assert.Equal(t, []byte("cdef"), l.ReadLog(10))
	assert.Equal(t, FlagLogOverflow, flags.Peek())

	l.WriteLog([]byte("wxyz"))
	assert.Equal(t, Flag(FlagLogOverflow), flags.Peek())
	l.WriteLog([]byte("1"))
	assert.Equal(t, []byte("xyz1"), l.ReadLog(4))
}

func TestRingLogNoOverflowFlagWhenRoom(t *testing.T) {
	flags := &Flags{}
	l := NewRingLog(16, flags)
	l.WriteLog([]byte("hello"))
	assert.Equal(t, Flag(0), flags.Peek())
}

func TestRingLogDefaultSize(t *testing.T) {
	l := NewRingLog(0, nil)
	l.WriteLog(make([]byte, DefaultLogSize+10))
	assert.Equal(t, DefaultLogSize, l.Len())

	l.Reset()
	assert.Equal(t, 0, l.Len())
}

func TestRingLogAsSlogSink(t *testing.T) {
	l := NewRingLog(512, nil)
	logger := slog.New(slog.NewTextHandler(l, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("model activated", "id", 0x0101)

	out := string(l.ReadLog(512))
	assert.True(t, strings.Contains(out, "model activated"), out)
	assert.True(t, strings.Contains(out, "id=257"), out)
}

func TestFlagsReadClears(t *testing.T) {
	var fl Flags
	fl.Raise(FlagTxError)
	fl.Raise(FlagFrameError)

	assert.Equal(t, "tx-error|frame-error", fl.Peek().String())
	require.Equal(t, []byte{0x0c, 0x00}, fl.Flags())
	assert.Equal(t, []byte{0x00, 0x00}, fl.Flags())
	assert.Equal(t, "none", fmt.Sprint(fl.Peek()))
}
