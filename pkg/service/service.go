package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/hostlog"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

// Service is the foreground scheduler.
type Service struct {
	cfg        Config
	sessionID  string
	dispatcher *host.Dispatcher
	link       *replyRouter

	inbox chan inbound
	rx    chan rxRequest
	done  chan struct{}

	state       atomic.Uint32
	lastDropped uint64
}

type inbound struct {
	msg   host.Message
	reply host.Sender
}

type rxRequest struct {
	frame []byte
	reply chan []byte
}

// New creates a service. It does not start it.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.TaskInterval == 0 {
		cfg.TaskInterval = DefaultTaskInterval
	}

	s := &Service{
		cfg:       cfg,
		sessionID: uuid.New().String(),
		link:      &replyRouter{},
		inbox:     make(chan inbound),
		rx:        make(chan rxRequest),
		done:      make(chan struct{}),
	}
	s.link.onError = s.sendFailed

	dcfg := host.DispatcherConfig{
		Queue:          cfg.Simulator,
		Sender:         s.link,
		Reset:          s.reset,
		Observer:       cfg.Observer,
		Logger:         cfg.Logger,
		ProtocolLogger: cfg.ProtocolLogger,
		SessionID:      s.sessionID,
	}
	// Typed nil pointers must not reach the dispatcher's interfaces.
	if cfg.Log != nil {
		dcfg.Log = cfg.Log
	}
	if cfg.Flags != nil {
		dcfg.Flags = cfg.Flags
	}
	s.dispatcher = host.NewDispatcher(dcfg)

	cfg.Registry.SetLogger(cfg.Logger)
	cfg.Registry.SetProtocolLogger(cfg.ProtocolLogger, s.sessionID)
	return s, nil
}

// SessionID identifies this run in protocol captures.
func (s *Service) SessionID() string { return s.sessionID }

// State returns the service state.
func (s *Service) State() ServiceState { return ServiceState(s.state.Load()) }

// Run activates the start model and runs the loop until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(uint32(StateIdle), uint32(StateRunning)) {
		return ErrAlreadyStarted
	}
	defer func() {
		s.state.Store(uint32(StateStopped))
		close(s.done)
	}()

	if err := s.activateStartModel(); err != nil {
		return err
	}
	s.debugLog("service running", "session", s.sessionID, "model", s.cfg.StartModel)

	ticker := time.NewTicker(s.cfg.TaskInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.debugLog("service stopping", "reason", ctx.Err())
			return nil

		case in := <-s.inbox:
			s.link.set(in.reply)
			s.dispatcher.HandleMessage(in.msg)

		case ev := <-s.cfg.Completions.Events():
			s.handleEvent(ev)

		case req := <-s.rx:
			reply, ok := s.handleRX(req.frame)
			if !ok {
				reply = nil
			}
			req.reply <- reply

		case now := <-ticker.C:
			s.tasks(now)
		}
	}
}

// Submit hands a host message to the loop. Responses, including the
// deferred ones for queued jobs, go to reply. It blocks until the loop
// accepts the message.
func (s *Service) Submit(ctx context.Context, msg host.Message, reply host.Sender) error {
	select {
	case s.inbox <- inbound{msg: msg, reply: reply}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrNotRunning
	}
}

// Detach stops routing responses to reply, e.g. after its connection
// closed. Later completions are dropped until another sender submits.
func (s *Service) Detach(reply host.Sender) {
	s.link.clear(reply)
}

// Inject delivers a frame from a remote controller to the local responder.
// The reply, if any, is recorded by the simulator.
func (s *Service) Inject(frame []byte) bool {
	return s.cfg.Simulator.Inject(frame)
}

func (s *Service) handleEvent(ev transceiver.Event) {
	switch {
	case ev.Op == transceiver.OpRX:
		if reply, ok := s.handleRX(ev.Data); ok {
			s.cfg.Simulator.Reply(reply)
		}
		return
	case ev.Result == transceiver.ResultTxError:
		s.raise(hostlog.FlagTxError)
	}
	s.dispatcher.HandleTransceiverEvent(ev)
}

// handleRX runs one frame through the local responder.
func (s *Service) handleRX(frame []byte) ([]byte, bool) {
	if _, err := rdm.Decode(frame); err != nil && !errors.Is(err, rdm.ErrBadStartCode) {
		s.raise(hostlog.FlagFrameError)
	}
	return s.cfg.Registry.HandleFrame(frame)
}

func (s *Service) tasks(now time.Time) {
	s.cfg.Registry.Tasks(now)
	if dropped := s.cfg.Completions.Dropped(); dropped != s.lastDropped {
		s.lastDropped = dropped
		s.raise(hostlog.FlagCompletionOverflow)
		s.debugLog("completions dropped", "total", dropped)
	}
}

// reset is the RESET_DEVICE hook: timing returns to defaults, the device
// log is cleared and the start model is reloaded.
func (s *Service) reset() {
	for _, p := range []transceiver.Param{
		transceiver.ParamBreakTime,
		transceiver.ParamMABTime,
		transceiver.ParamBroadcastListen,
		transceiver.ParamWaitTime,
	} {
		_, _, def := p.Limits()
		s.cfg.Simulator.SetTiming(p, def)
	}
	if s.cfg.Log != nil {
		s.cfg.Log.Reset()
	}
	if err := s.activateStartModel(); err != nil {
		s.debugLog("reset: model activation failed", "error", err)
		log.Error(s.cfg.ProtocolLogger, s.sessionID, log.LayerResponder, err, "reset")
	}
}

func (s *Service) activateStartModel() error {
	if s.cfg.StartModel == 0 {
		s.cfg.Registry.Deactivate()
		return nil
	}
	return s.cfg.Registry.Activate(s.cfg.StartModel)
}

func (s *Service) sendFailed(resp host.Response, err error) {
	s.debugLog("host send failed", "command", resp.Command, "error", err)
}

func (s *Service) raise(f hostlog.Flag) {
	if s.cfg.Flags != nil {
		s.cfg.Flags.Raise(f)
	}
}

func (s *Service) debugLog(msg string, args ...any) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Debug(msg, args...)
	}
}

// replyRouter is the dispatcher's Sender. It forwards to the link that
// submitted the most recent message.
type replyRouter struct {
	mu      sync.Mutex
	target  host.Sender
	onError func(host.Response, error)
}

func (r *replyRouter) set(s host.Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = s
}

func (r *replyRouter) clear(s host.Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == s {
		r.target = nil
	}
}

// Send implements host.Sender. Without a link the response is dropped.
func (r *replyRouter) Send(resp host.Response) error {
	r.mu.Lock()
	target := r.target
	r.mu.Unlock()
	if target == nil {
		return nil
	}
	err := target.Send(resp)
	if err != nil && r.onError != nil {
		r.onError(resp, err)
	}
	return err
}

var _ host.Sender = (*replyRouter)(nil)
