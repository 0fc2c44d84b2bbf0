package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/hostlog"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

// Service errors.
var (
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrAlreadyStarted = errors.New("service already started")
	ErrNotRunning     = errors.New("service not running")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	StateIdle ServiceState = iota
	StateRunning
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// DefaultTaskInterval is used when Config.TaskInterval is zero.
const DefaultTaskInterval = 100 * time.Millisecond

// Config configures a Service.
type Config struct {
	// Registry holds the local responder's models. Required.
	Registry *model.Registry

	// Simulator is the transceiver. Required.
	Simulator *transceiver.Simulator

	// Completions is the queue the simulator posts to. Required.
	Completions *transceiver.CompletionQueue

	// Log and Flags back GET_LOG, WRITE_LOG and GET_FLAGS. Optional.
	Log   *hostlog.RingLog
	Flags *hostlog.Flags

	// StartModel is activated by Run and again by RESET_DEVICE.
	// Zero leaves no model active.
	StartModel uint16

	TaskInterval time.Duration

	// Observer receives dispatcher activity, e.g. metrics. Optional.
	Observer host.Observer

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger captures host and bus traffic. Optional.
	ProtocolLogger log.Logger
}

func (c *Config) validate() error {
	switch {
	case c.Registry == nil:
		return fmt.Errorf("%w: registry is required", ErrInvalidConfig)
	case c.Simulator == nil:
		return fmt.Errorf("%w: simulator is required", ErrInvalidConfig)
	case c.Completions == nil:
		return fmt.Errorf("%w: completion queue is required", ErrInvalidConfig)
	case c.TaskInterval < 0:
		return fmt.Errorf("%w: task interval must not be negative", ErrInvalidConfig)
	}
	return nil
}
