package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rdm-protocol/rdm-go/pkg/config"
	"github.com/rdm-protocol/rdm-go/pkg/devices"
	"github.com/rdm-protocol/rdm-go/pkg/discovery"
	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/hostlog"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/metrics"
	"github.com/rdm-protocol/rdm-go/pkg/model"
	"github.com/rdm-protocol/rdm-go/pkg/rdm"
	"github.com/rdm-protocol/rdm-go/pkg/responder"
	"github.com/rdm-protocol/rdm-go/pkg/service"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
	"github.com/rdm-protocol/rdm-go/pkg/transport"
	"github.com/rdm-protocol/rdm-go/pkg/version"
)

// stack is everything run wires together.
type stack struct {
	logger    *slog.Logger
	flags     *hostlog.Flags
	ring      *hostlog.RingLog
	metrics   *metrics.Metrics
	registry  *prometheus.Registry
	capture   *log.FileLogger
	protocol  log.Logger
	watcher   *modelWatcher
	localUID  rdm.UID
	startID   uint16
	bus       *transceiver.Bus
	sim       *transceiver.Simulator
	svc       *service.Service
	completed *transceiver.CompletionQueue
}

func buildStack(cfg *config.Config, stderr io.Writer) (*stack, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	st := &stack{flags: &hostlog.Flags{}}
	st.ring = hostlog.NewRingLog(cfg.LogSize, st.flags)
	st.logger = slog.New(slog.NewTextHandler(io.MultiWriter(stderr, st.ring), &slog.HandlerOptions{Level: level}))

	st.registry = prometheus.NewRegistry()
	st.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	st.metrics = metrics.New(st.registry)
	st.watcher = &modelWatcher{}

	loggers := []log.Logger{st.metrics, st.watcher}
	if cfg.CaptureFile != "" {
		st.capture, err = log.NewFileLogger(cfg.CaptureFile)
		if err != nil {
			return nil, fmt.Errorf("opening capture file: %w", err)
		}
		loggers = append(loggers, st.capture)
	}
	if level <= slog.LevelDebug {
		loggers = append(loggers, log.NewSlogAdapter(st.logger))
	}
	st.protocol = log.NewMultiLogger(loggers...)

	st.localUID, _ = rdm.ParseUID(cfg.UID)
	st.startID, _ = devices.LookupModel(cfg.Model)

	reg := model.NewRegistry(responder.New(st.localUID))
	if err := devices.RegisterAll(reg); err != nil {
		return nil, err
	}

	st.bus = transceiver.NewBus()
	for _, b := range cfg.Bus {
		uid, _ := rdm.ParseUID(b.UID)
		id, _ := devices.LookupModel(b.Model)
		remote, err := devices.NewBusResponder(uid, id)
		if err != nil {
			return nil, fmt.Errorf("bus responder %s: %w", uid, err)
		}
		remote.SetLogger(st.logger.With("uid", uid.String()))
		st.bus.Attach(remote)
	}

	timing := transceiver.NewTiming()
	if err := cfg.ApplyTiming(timing); err != nil {
		return nil, err
	}
	st.completed = transceiver.NewCompletionQueue(transceiver.DefaultCompletionDepth)
	metrics.RegisterCompletionQueue(st.registry, st.completed)

	opts := []transceiver.SimulatorOption{
		transceiver.WithLogger(st.logger),
		transceiver.WithTaskInterval(cfg.TaskInterval),
	}
	if cfg.RealTime {
		opts = append(opts, transceiver.WithRealTime())
	}
	st.sim = transceiver.NewSimulator(st.bus, timing, st.completed, opts...)

	st.svc, err = service.New(service.Config{
		Registry:       reg,
		Simulator:      st.sim,
		Completions:    st.completed,
		Log:            st.ring,
		Flags:          st.flags,
		StartModel:     st.startID,
		TaskInterval:   cfg.TaskInterval,
		Observer:       st.metrics,
		Logger:         st.logger,
		ProtocolLogger: st.protocol,
	})
	if err != nil {
		return nil, err
	}
	st.bus.Attach(st.svc.LocalEndpoint())
	return st, nil
}

func run(ctx context.Context, cfg *config.Config, iface string) error {
	st, err := buildStack(cfg, os.Stderr)
	if err != nil {
		return err
	}
	if st.capture != nil {
		defer st.capture.Close()
	}
	logger := st.logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		st.sim.Run(ctx)
	}()

	svcErr := make(chan error, 1)
	go func() { svcErr <- st.svc.Run(ctx) }()

	logger.Info("responder started",
		"uid", st.localUID.String(),
		"model", cfg.Model,
		"bus", st.bus.Len(),
		"session", st.svc.SessionID())

	if cfg.Listen != "" {
		server := transport.NewServer(transport.ServerConfig{
			Address: cfg.Listen,
			Logger:  st.protocol,
			OnConnect: func(conn *transport.ServerConn) {
				logger.Info("host connected", "remote", conn.RemoteAddr().String(), "conn", conn.ConnID())
			},
			OnDisconnect: func(conn *transport.ServerConn) {
				st.svc.Detach(conn)
				logger.Info("host disconnected", "conn", conn.ConnID())
			},
			OnMessage: func(conn *transport.ServerConn, msg host.Message) {
				if err := st.svc.Submit(ctx, msg, conn); err != nil {
					logger.Warn("dropping host message", "command", msg.Command.String(), "error", err)
				}
			},
			OnError: func(_ *transport.ServerConn, err error) {
				logger.Warn("host link error", "error", err)
			},
		})
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer server.Stop()
		logger.Info("host link listening", "addr", server.Addr().String())

		if cfg.Advertise {
			adv := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{Interface: iface})
			info := &discovery.HostInfo{
				InstanceName: cfg.InstanceName,
				Port:         uint16(server.Addr().(*net.TCPAddr).Port),
				UID:          st.localUID,
				ModelID:      st.startID,
				ModelName:    modelName(st.startID),
				Version:      version.Current,
			}
			if err := adv.Advertise(ctx, info); err != nil {
				logger.Warn("mDNS advertising failed", "error", err)
			} else {
				st.watcher.attach(adv, info)
				defer adv.Stop()
				logger.Info("advertising", "service", discovery.ServiceType, "instance", info.Instance())
			}
		}
	}

	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(st.registry, promhttp.HandlerOpts{}))
		httpServer := &http.Server{Addr: cfg.MetricsListen, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		defer httpServer.Close()
		logger.Info("metrics listening", "addr", cfg.MetricsListen)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		runErr = <-svcErr
	case runErr = <-svcErr:
		cancel()
	}
	<-simDone

	if st.capture != nil {
		written, failed := st.capture.Stats()
		logger.Info("capture closed", "file", cfg.CaptureFile, "events", written, "failed", failed)
	}
	return runErr
}

func modelName(id uint16) string {
	for name, mid := range devices.ModelNames {
		if mid == id {
			return name
		}
	}
	return ""
}
