package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
)

// Server errors.
var (
	ErrServerRunning = errors.New("server already running")
	ErrConnClosed    = errors.New("connection closed")
)

// ServerConfig configures a host link server.
type ServerConfig struct {
	// Address to listen on (e.g., ":7770" or "127.0.0.1:0").
	Address string

	// Logger for protocol capture (optional).
	Logger log.Logger

	// OnConnect is called when a host connects.
	OnConnect func(conn *ServerConn)

	// OnDisconnect is called after a host connection closed.
	OnDisconnect func(conn *ServerConn)

	// OnMessage is called for each message, on the connection's goroutine.
	OnMessage func(conn *ServerConn, msg host.Message)

	// OnError is called when an error occurs. conn may be nil.
	OnError func(conn *ServerConn, err error)
}

// Server accepts host connections. Only one is active at a time.
type Server struct {
	config   ServerConfig
	listener net.Listener

	mu     sync.Mutex
	active *ServerConn

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a server.
func NewServer(config ServerConfig) *Server {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	return &Server{config: config}
}

// Start listens and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return ErrServerRunning
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and the active connection and waits for the
// server goroutines.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}
	s.cancel()
	s.listener.Close()

	s.mu.Lock()
	if s.active != nil {
		s.active.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// Active returns the connected host, or nil.
func (s *Server) Active() *ServerConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			if s.config.OnError != nil {
				s.config.OnError(nil, fmt.Errorf("accept error: %w", err))
			}
			continue
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	connID := uuid.New().String()
	framer := NewFramer(conn)
	framer.SetLogger(s.config.Logger, connID, conn.RemoteAddr().String())

	sconn := &ServerConn{
		conn:       conn,
		framer:     framer,
		closeCh:    make(chan struct{}),
		remoteAddr: conn.RemoteAddr(),
		connID:     connID,
	}

	s.mu.Lock()
	previous := s.active
	s.active = sconn
	s.mu.Unlock()
	if previous != nil {
		previous.Close()
	}

	s.logState(connID, sconn.remoteAddr.String(), "", "CONNECTED")
	if s.config.OnConnect != nil {
		s.config.OnConnect(sconn)
	}

	s.readLoop(sconn)
	sconn.Close()

	s.mu.Lock()
	if s.active == sconn {
		s.active = nil
	}
	s.mu.Unlock()

	s.logState(connID, sconn.remoteAddr.String(), "CONNECTED", "DISCONNECTED")
	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(sconn)
	}
}

func (s *Server) readLoop(c *ServerConn) {
	for {
		msg, err := c.framer.ReadMessage()
		if err != nil {
			select {
			case <-c.closeCh:
			default:
				if s.config.OnError != nil && s.running.Load() && !errors.Is(err, net.ErrClosed) {
					s.config.OnError(c, err)
				}
			}
			return
		}
		if s.config.OnMessage != nil {
			s.config.OnMessage(c, msg)
		}
	}
}

func (s *Server) logState(connID, peer, oldState, newState string) {
	log.StateChange(s.config.Logger, connID, peer, log.StateEntityConnection, oldState, newState, "")
}

// ServerConn is a connected host.
type ServerConn struct {
	conn       net.Conn
	framer     *Framer
	closeCh    chan struct{}
	closeOnce  sync.Once
	remoteAddr net.Addr
	connID     string
}

// RemoteAddr returns the host's address.
func (c *ServerConn) RemoteAddr() net.Addr { return c.remoteAddr }

// ConnID returns the unique connection identifier.
func (c *ServerConn) ConnID() string { return c.connID }

// Send implements host.Sender.
func (c *ServerConn) Send(resp host.Response) error {
	select {
	case <-c.closeCh:
		return ErrConnClosed
	default:
	}
	return c.framer.WriteResponse(resp)
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.conn.Close()
	})
	return err
}

var _ host.Sender = (*ServerConn)(nil)
