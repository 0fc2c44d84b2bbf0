// Package metrics exports Prometheus metrics for the host dispatcher, the
// transceiver and RDM request handling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rdm-protocol/rdm-go/pkg/host"
	"github.com/rdm-protocol/rdm-go/pkg/log"
	"github.com/rdm-protocol/rdm-go/pkg/transceiver"
)

const namespace = "rdm"

// Metrics holds the collectors. It implements host.Observer, and
// log.Logger so it can sit in the protocol capture fan-out.
type Metrics struct {
	hostCommands *prometheus.CounterVec
	jobsRejected *prometheus.CounterVec
	jobResults   *prometheus.CounterVec
	jobLatency   *prometheus.HistogramVec
	rdmRequests  *prometheus.CounterVec
	rdmNacks     *prometheus.CounterVec
	modelSwitch  prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hostCommands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "host",
				Name:      "responses_total",
				Help:      "Host responses sent, by command and result code.",
			},
			[]string{"command", "result"},
		),
		jobsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transceiver",
				Name:      "jobs_rejected_total",
				Help:      "Jobs refused because the transceiver was busy.",
			},
			[]string{"command"},
		),
		jobResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transceiver",
				Name:      "jobs_completed_total",
				Help:      "Completed transceiver jobs, by command and hardware result.",
			},
			[]string{"command", "result"},
		),
		jobLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "transceiver",
				Name:      "job_duration_seconds",
				Help:      "Time from queueing a job to handling its completion.",
				Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
			[]string{"command"},
		),
		rdmRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "responder",
				Name:      "requests_total",
				Help:      "RDM requests handled, by command class and outcome.",
			},
			[]string{"command_class", "result"},
		),
		rdmNacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "responder",
				Name:      "nacks_total",
				Help:      "NACKs sent, by reason.",
			},
			[]string{"reason"},
		),
		modelSwitch: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "responder",
			Name:      "model_changes_total",
			Help:      "Active model changes.",
		}),
	}
	reg.MustRegister(m.hostCommands, m.jobsRejected, m.jobResults, m.jobLatency,
		m.rdmRequests, m.rdmNacks, m.modelSwitch)
	return m
}

// RegisterCompletionQueue exports the queue's drop counter.
func RegisterCompletionQueue(reg prometheus.Registerer, q *transceiver.CompletionQueue) {
	reg.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "transceiver",
		Name:      "completions_dropped_total",
		Help:      "Completion events lost to a full queue.",
	}, func() float64 { return float64(q.Dropped()) }))
}

// CommandHandled implements host.Observer.
func (m *Metrics) CommandHandled(cmd host.Command, rc host.ResultCode) {
	m.hostCommands.WithLabelValues(cmd.String(), rc.String()).Inc()
}

// JobRejected implements host.Observer.
func (m *Metrics) JobRejected(cmd host.Command) {
	m.jobsRejected.WithLabelValues(cmd.String()).Inc()
}

// JobCompleted implements host.Observer.
func (m *Metrics) JobCompleted(cmd host.Command, result transceiver.Result, latency time.Duration) {
	m.jobResults.WithLabelValues(cmd.String(), result.String()).Inc()
	m.jobLatency.WithLabelValues(cmd.String()).Observe(latency.Seconds())
}

// Log implements log.Logger. Only outbound RDM events and model changes
// are counted.
func (m *Metrics) Log(ev log.Event) {
	switch {
	case ev.RDM != nil && ev.Direction == log.DirectionOut && ev.RDM.Result != nil:
		m.rdmRequests.WithLabelValues(ev.RDM.CommandClass.String(), ev.RDM.Result.String()).Inc()
		if ev.RDM.NackReason != nil {
			m.rdmNacks.WithLabelValues(ev.RDM.NackReason.String()).Inc()
		}
	case ev.StateChange != nil && ev.StateChange.Entity == log.StateEntityModel:
		m.modelSwitch.Inc()
	}
}

var (
	_ host.Observer = (*Metrics)(nil)
	_ log.Logger    = (*Metrics)(nil)
)
