// Package metrics provides Prometheus metrics for the download gate.
package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Hot-path metrics sit behind atomic pointers so Record* helpers are
	// lock-free no-ops until Init runs (tests never need a registry).
	verificationsTotal atomic.Pointer[prometheus.CounterVec]
	consumesTotal      atomic.Pointer[prometheus.CounterVec]
	reissuanceTotal    atomic.Pointer[prometheus.CounterVec]
	auditFailuresTotal atomic.Pointer[prometheus.Counter]
	requestDuration    atomic.Pointer[prometheus.HistogramVec]
)

// Init registers all metrics with the provided registry.
// Call once at application startup.
func Init(reg prometheus.Registerer) error {
	verificationsVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "download",
			Subsystem: "gate",
			Name:      "verifications_total",
			Help:      "Total token verification attempts by outcome",
		},
		[]string{"outcome"},
	)
	if err := reg.Register(verificationsVec); err != nil {
		return fmt.Errorf("failed to register verificationsTotal: %w", err)
	}

	consumesVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "download",
			Subsystem: "gate",
			Name:      "consumes_total",
			Help:      "Total quota consumption attempts by result",
		},
		[]string{"result"},
	)
	if err := reg.Register(consumesVec); err != nil {
		return fmt.Errorf("failed to register consumesTotal: %w", err)
	}

	reissuanceVec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "download",
			Subsystem: "gate",
			Name:      "reissuance_requests_total",
			Help:      "Total reissuance requests by acceptance",
		},
		[]string{"accepted"},
	)
	if err := reg.Register(reissuanceVec); err != nil {
		return fmt.Errorf("failed to register reissuanceTotal: %w", err)
	}

	auditFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "download",
			Subsystem: "gate",
			Name:      "audit_write_failures_total",
			Help:      "Audit log writes that failed and were only reported, never surfaced",
		},
	)
	if err := reg.Register(auditFailures); err != nil {
		return fmt.Errorf("failed to register auditFailuresTotal: %w", err)
	}

	durationVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "download",
			Subsystem: "gate",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	if err := reg.Register(durationVec); err != nil {
		return fmt.Errorf("failed to register requestDuration: %w", err)
	}

	verificationsTotal.Store(verificationsVec)
	consumesTotal.Store(consumesVec)
	reissuanceTotal.Store(reissuanceVec)
	auditFailuresTotal.Store(&auditFailures)
	requestDuration.Store(durationVec)

	return nil
}

// RecordVerification increments the verification counter for an outcome label
// ("valid" or a denial reason).
func RecordVerification(outcome string) {
	if counter := verificationsTotal.Load(); counter != nil {
		counter.WithLabelValues(outcome).Inc()
	}
}

// RecordConsume increments the consume counter for a result label
// ("consumed" or a denial reason).
func RecordConsume(result string) {
	if counter := consumesTotal.Load(); counter != nil {
		counter.WithLabelValues(result).Inc()
	}
}

// RecordReissuance increments the reissuance counter.
func RecordReissuance(accepted bool) {
	if counter := reissuanceTotal.Load(); counter != nil {
		counter.WithLabelValues(fmt.Sprintf("%t", accepted)).Inc()
	}
}

// RecordAuditWriteFailure increments the audit failure counter. Audit write
// failures never reach the caller, so this counter is the operator's only
// signal that the trail has gaps.
func RecordAuditWriteFailure() {
	if counter := auditFailuresTotal.Load(); counter != nil {
		(*counter).Inc()
	}
}

// RecordRequestDuration records HTTP latency for a normalized path.
func RecordRequestDuration(method, path, status string, durationSeconds float64) {
	if histogram := requestDuration.Load(); histogram != nil {
		histogram.WithLabelValues(method, path, status).Observe(durationSeconds)
	}
}

// Handler returns the HTTP handler serving /metrics for a registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
