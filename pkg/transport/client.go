package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/host"
)

// DefaultConnectTimeout bounds Dial when ctx has no deadline.
const DefaultConnectTimeout = 5 * time.Second

// Client is a host-side connection to a responder.
type Client struct {
	conn   net.Conn
	framer *Framer

	// Serializes Transact.
	mu sync.Mutex
}

// Dial connects to a responder's host link.
func Dial(ctx context.Context, address string) (*Client, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, framer: NewFramer(conn)}
}

// Framer exposes the client's framer, e.g. to enable capture.
func (c *Client) Framer() *Framer { return c.framer }

// RemoteAddr returns the responder's address.
func (c *Client) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

// Send writes one message.
func (c *Client) Send(msg host.Message) error {
	return c.framer.WriteMessage(msg)
}

// Receive reads one response. A zero timeout waits forever.
func (c *Client) Receive(timeout time.Duration) (host.Response, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return host.Response{}, err
	}
	return c.framer.ReadResponse()
}

// Transact sends msg and waits for the response to the same command.
// Responses to other commands are skipped.
func (c *Client) Transact(msg host.Message, timeout time.Duration) (host.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.Send(msg); err != nil {
		return host.Response{}, err
	}
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if timeout > 0 && remaining <= 0 {
			return host.Response{}, fmt.Errorf("no %s response: %w", msg.Command, context.DeadlineExceeded)
		}
		if timeout <= 0 {
			remaining = 0
		}
		resp, err := c.Receive(remaining)
		if err != nil {
			return host.Response{}, err
		}
		if resp.Command == msg.Command {
			return resp, nil
		}
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
