package service

import (
	"context"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

// DefaultResponderTimeout bounds how long the bus waits for the loop to
// answer a frame addressed to the local responder.
const DefaultResponderTimeout = 50 * time.Millisecond

// LocalEndpoint puts the local responder on the simulated bus. Frames are
// handed to the service loop, so the responder is still touched only by
// the loop goroutine.
type LocalEndpoint struct {
	svc     *Service
	timeout time.Duration
}

// LocalEndpoint returns the bus endpoint for the local responder.
func (s *Service) LocalEndpoint() *LocalEndpoint {
	return &LocalEndpoint{svc: s, timeout: DefaultResponderTimeout}
}

// HandleFrame implements transceiver.Endpoint.
func (e *LocalEndpoint) HandleFrame(frame []byte) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	req := rxRequest{frame: frame, reply: make(chan []byte, 1)}
	select {
	case e.svc.rx <- req:
	case <-e.svc.done:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}

	select {
	case reply := <-req.reply:
		return reply, reply != nil
	case <-ctx.Done():
		return nil, false
	}
}

// Tasks implements transceiver.Endpoint. The loop runs the local model
// tasks on its own ticker.
func (e *LocalEndpoint) Tasks(time.Time) {}

var _ transceiver.Endpoint = (*LocalEndpoint)(nil)
