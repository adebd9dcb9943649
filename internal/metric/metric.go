// Package metric exposes Prometheus counters for configuration loading and
// synchronization.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "modsync"

// Metrics holds the configuration engine's collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Loads             *prometheus.CounterVec
	LoadDuration      *prometheus.HistogramVec
	RemoteSyncs       *prometheus.CounterVec
	FingerprintChecks *prometheus.CounterVec
	AutoUpdates       *prometheus.CounterVec
	Generation        prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "loads_total",
				Help:      "Configuration loads by source and status",
			},
			[]string{"source", "status"},
		),

		LoadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "load_duration_seconds",
				Help:      "Time spent loading a configuration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),

		RemoteSyncs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sync",
				Name:      "remote_total",
				Help:      "Configurations received from a server by outcome",
			},
			[]string{"outcome"},
		),

		FingerprintChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "sync",
				Name:      "fingerprint_checks_total",
				Help:      "Peer fingerprint comparisons by result",
			},
			[]string{"result"},
		),

		AutoUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "auto_updates_total",
				Help:      "Configuration file auto-updates by status",
			},
			[]string{"status"},
		),

		Generation: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "generation",
				Help:      "Number of configurations published since start",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Loads, m.LoadDuration, m.RemoteSyncs, m.FingerprintChecks, m.AutoUpdates, m.Generation)
	}
	return m
}

// RecordLoad records a load from source.
func (m *Metrics) RecordLoad(source string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.Loads.WithLabelValues(source, status(err)).Inc()
	m.LoadDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordRemoteSync records the outcome of applying a server configuration:
// "applied", "ignored" or "failed".
func (m *Metrics) RecordRemoteSync(outcome string) {
	if m == nil {
		return
	}
	m.RemoteSyncs.WithLabelValues(outcome).Inc()
}

// RecordFingerprintCheck records a peer comparison.
func (m *Metrics) RecordFingerprintCheck(match bool) {
	if m == nil {
		return
	}
	result := "match"
	if !match {
		result = "mismatch"
	}
	m.FingerprintChecks.WithLabelValues(result).Inc()
}

// RecordAutoUpdate records a configuration file auto-update.
func (m *Metrics) RecordAutoUpdate(err error) {
	if m == nil {
		return
	}
	m.AutoUpdates.WithLabelValues(status(err)).Inc()
}

// RecordPublish bumps the generation gauge.
func (m *Metrics) RecordPublish() {
	if m == nil {
		return
	}
	m.Generation.Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
