// Package config loads the rdm-responder configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rdm-protocol/rdm-go/pkg/devices"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the responder configuration.
type Config struct {
	// UID of the local responder, "mmmm:dddddddd".
	UID string `yaml:"uid"`
	// Model is the model activated at startup: a name, a numeric ID, or "none".
	Model string `yaml:"model"`

	// Listen is the host link TCP address. Empty disables the listener.
	Listen string `yaml:"listen"`
	// Advertise announces the host link over mDNS.
	Advertise    bool   `yaml:"advertise"`
	InstanceName string `yaml:"instance_name"`

	// MetricsListen is the Prometheus HTTP address. Empty disables it.
	MetricsListen string `yaml:"metrics_listen"`
	// CaptureFile is the protocol capture path. Empty disables capture.
	CaptureFile string `yaml:"capture_file"`
	LogLevel    string `yaml:"log_level"`
	LogSize     int    `yaml:"log_size"`

	TaskInterval time.Duration `yaml:"task_interval"`
	// RealTime makes the simulated bus sleep for frame and timing durations.
	RealTime bool `yaml:"real_time"`

	Timing Timing          `yaml:"timing"`
	Bus    []BusResponder `yaml:"bus"`
}

// Timing holds the initial transceiver timing parameters.
type Timing struct {
	BreakUS         uint16 `yaml:"break_us"`
	MABUS           uint16 `yaml:"mab_us"`
	BroadcastListen uint16 `yaml:"broadcast_listen"`
	WaitTime        uint16 `yaml:"wait_time"`
}

// BusResponder is a simulated remote responder on the bus.
type BusResponder struct {
	UID   string `yaml:"uid"`
	Model string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() *Config {
	_, _, brk := transceiver.ParamBreakTime.Limits()
	_, _, mab := transceiver.ParamMABTime.Limits()
	_, _, listen := transceiver.ParamBroadcastListen.Limits()
	_, _, wait := transceiver.ParamWaitTime.Limits()
	return &Config{
		UID:          "7a70:00000001",
		Model:        "moving-light",
		Listen:       ":7770",
		InstanceName: "rdm-responder",
		LogLevel:     "info",
		TaskInterval: 100 * time.Millisecond,
		Timing: Timing{
			BreakUS:         brk,
			MABUS:           mab,
			BroadcastListen: listen,
			WaitTime:        wait,
		},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	self, err := rdm.ParseUID(c.UID)
	if err != nil {
		return fmt.Errorf("%w: uid: %v", ErrInvalid, err)
	}
	if self.IsBroadcast() {
		return fmt.Errorf("%w: uid %s is a broadcast address", ErrInvalid, self)
	}
	if _, err := devices.LookupModel(c.Model); err != nil {
		return fmt.Errorf("%w: model: %v", ErrInvalid, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.TaskInterval <= 0 {
		return fmt.Errorf("%w: task_interval must be positive", ErrInvalid)
	}
	if c.LogSize < 0 {
		return fmt.Errorf("%w: log_size must not be negative", ErrInvalid)
	}

	timing := transceiver.NewTiming()
	for p, v := range c.Timing.values() {
		if err := timing.Set(p, v); err != nil {
			return fmt.Errorf("%w: timing: %v", ErrInvalid, err)
		}
	}

	seen := map[rdm.UID]bool{self: true}
	for i, b := range c.Bus {
		uid, err := rdm.ParseUID(b.UID)
		if err != nil {
			return fmt.Errorf("%w: bus[%d].uid: %v", ErrInvalid, i, err)
		}
		if seen[uid] {
			return fmt.Errorf("%w: bus[%d]: duplicate uid %s", ErrInvalid, i, uid)
		}
		seen[uid] = true
		if _, err := devices.LookupModel(b.Model); err != nil {
			return fmt.Errorf("%w: bus[%d].model: %v", ErrInvalid, i, err)
		}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
}

// ApplyTiming programs the timing parameters into t.
func (c *Config) ApplyTiming(t *transceiver.Timing) error {
	for p, v := range c.Timing.values() {
		if err := t.Set(p, v); err != nil {
			return err
		}
	}
	return nil
}

func (t Timing) values() map[transceiver.Param]uint16 {
	return map[transceiver.Param]uint16{
		transceiver.ParamBreakTime:       t.BreakUS,
		transceiver.ParamMABTime:         t.MABUS,
		transceiver.ParamBroadcastListen: t.BroadcastListen,
		transceiver.ParamWaitTime:        t.WaitTime,
	}
}
