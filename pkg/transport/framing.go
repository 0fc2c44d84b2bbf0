package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// DefaultPort is the host link TCP port.
const DefaultPort = 7770

// ErrFrameTruncated indicates the stream ended inside a message.
var ErrFrameTruncated = errors.New("frame truncated")

// Framer reads and writes host codec units on a stream. Writes are safe
// for concurrent use; reads are not.
type Framer struct {
	r  io.Reader
	w  io.Writer
	mu sync.Mutex

	// Logging support (optional)
	logger log.Logger
	connID string
	peer   string
}

// NewFramer creates a framer on rw.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{r: rw, w: rw}
}

// SetLogger configures raw frame capture. Pass nil to disable it.
func (f *Framer) SetLogger(logger log.Logger, connID, peer string) {
	f.logger = logger
	f.connID = connID
	f.peer = peer
}

// ReadMessage reads one host message.
func (f *Framer) ReadMessage() (host.Message, error) {
	msg, err := host.ReadMessage(f.r)
	if err != nil {
		return host.Message{}, readError(err)
	}
	if f.logger != nil {
		if b, err := host.EncodeMessage(msg); err == nil {
			f.capture(b, log.DirectionIn)
		}
	}
	return msg, nil
}

// ReadResponse reads one host response.
func (f *Framer) ReadResponse() (host.Response, error) {
	resp, err := host.ReadResponse(f.r)
	if err != nil {
		return host.Response{}, readError(err)
	}
	if f.logger != nil {
		if b, err := host.EncodeResponse(resp); err == nil {
			f.capture(b, log.DirectionIn)
		}
	}
	return resp, nil
}

// WriteMessage writes one host message.
func (f *Framer) WriteMessage(msg host.Message) error {
	b, err := host.EncodeMessage(msg)
	if err != nil {
		return err
	}
	return f.write(b)
}

// WriteResponse writes one host response.
func (f *Framer) WriteResponse(resp host.Response) error {
	b, err := host.EncodeResponse(resp)
	if err != nil {
		return err
	}
	return f.write(b)
}

func (f *Framer) write(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.w.Write(b); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if f.logger != nil {
		f.capture(b, log.DirectionOut)
	}
	return nil
}

func (f *Framer) capture(b []byte, dir log.Direction) {
	f.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: f.connID,
		Direction: dir,
		Layer:     log.LayerHost,
		Category:  log.CategoryMessage,
		Source:    f.peer,
		Frame:     log.NewFrameEvent(b),
	})
}

func readError(err error) error {
	switch {
	case err == io.EOF:
		return err
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ErrFrameTruncated
	default:
		return err
	}
}
