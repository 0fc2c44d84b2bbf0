// Command rdm-responder runs an RDM responder on a simulated DMX512 bus and
// serves the host command link over TCP.
//
// Usage:
//
//	rdm-responder [flags]
//
// Flags:
//
//	-config string      Configuration file path (YAML)
//	-uid string         Responder UID, mmmm:dddddddd
//	-model string       Start model: moving-light, dimmer, numeric ID, or none
//	-listen string      Host link address (default ":7770")
//	-advertise          Announce the host link over mDNS
//	-interface string   Network interface for mDNS (default all)
//	-metrics string     Prometheus listen address, e.g. ":9770"
//	-capture string     Protocol capture file (.rlog)
//	-log-level string   Log level: debug, info, warn, error
//	-real-time          Sleep for simulated frame and timing durations
//
// Flags override values from the configuration file.
//
// Examples:
//
//	# Moving light with two simulated dimmers on the bus
//	rdm-responder -config /etc/rdm/rig.yaml
//
//	# Dimmer, advertised, with protocol capture
//	rdm-responder -model dimmer -advertise -capture rdm.rlog -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rdm-protocol/rdm-go/pkg/config"
)

type flags struct {
	configFile string
	uid        string
	model      string
	listen     string
	advertise  bool
	iface      string
	metrics    string
	capture    string
	logLevel   string
	realTime   bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*flags, error) {
	f := &flags{}
	fs.StringVar(&f.configFile, "config", "", "Configuration file path")
	fs.StringVar(&f.uid, "uid", "", "Responder UID, mmmm:dddddddd")
	fs.StringVar(&f.model, "model", "", "Start model: moving-light, dimmer, numeric ID, or none")
	fs.StringVar(&f.listen, "listen", "", "Host link address")
	fs.BoolVar(&f.advertise, "advertise", false, "Announce the host link over mDNS")
	fs.StringVar(&f.iface, "interface", "", "Network interface for mDNS")
	fs.StringVar(&f.metrics, "metrics", "", "Prometheus listen address")
	fs.StringVar(&f.capture, "capture", "", "Protocol capture file")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&f.realTime, "real-time", false, "Sleep for simulated frame and timing durations")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// loadConfig reads the configuration file, if any, and applies the flags
// that were set explicitly.
func loadConfig(fs *flag.FlagSet, f *flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "uid":
			cfg.UID = f.uid
		case "model":
			cfg.Model = f.model
		case "listen":
			cfg.Listen = f.listen
		case "advertise":
			cfg.Advertise = f.advertise
		case "metrics":
			cfg.MetricsListen = f.metrics
		case "capture":
			cfg.CaptureFile = f.capture
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "real-time":
			cfg.RealTime = f.realTime
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	fs := flag.NewFlagSet("rdm-responder", flag.ExitOnError)
	f, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := loadConfig(fs, f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, f.iface); err != nil {
		slog.Error("rdm-responder failed", "error", err)
		os.Exit(1)
	}
}
