package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "competition_engine"

type operationCollectors struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

func newOperationCollectors(reg prometheus.Registerer, subsystem string) *operationCollectors {
	labels := []string{"operation", "service"}
	c := &operationCollectors{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_attempts_total",
			Help:      "Number of attempted operations.",
		}, labels),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_successes_total",
			Help:      "Number of operations that completed without an infrastructure error.",
		}, labels),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_failures_total",
			Help:      "Number of operations that returned an infrastructure error or panicked.",
		}, labels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operation_duration_seconds",
			Help:      "Operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
	}
	reg.MustRegister(c.attempts, c.successes, c.failures, c.duration)
	return c
}

func (c *operationCollectors) RecordOperationAttempt(_ context.Context, operation, service string) {
	c.attempts.WithLabelValues(operation, service).Inc()
}

func (c *operationCollectors) RecordOperationSuccess(_ context.Context, operation, service string) {
	c.successes.WithLabelValues(operation, service).Inc()
}

func (c *operationCollectors) RecordOperationFailure(_ context.Context, operation, service string) {
	c.failures.WithLabelValues(operation, service).Inc()
}

func (c *operationCollectors) RecordOperationDuration(_ context.Context, operation, service string, d time.Duration) {
	c.duration.WithLabelValues(operation, service).Observe(d.Seconds())
}

// NewPrometheusOperationMetrics registers operation collectors under subsystem.
func NewPrometheusOperationMetrics(reg prometheus.Registerer, subsystem string) OperationMetrics {
	return newOperationCollectors(reg, subsystem)
}

type prometheusStatsMetrics struct {
	*operationCollectors
	applied    *prometheus.CounterVec
	dropped    *prometheus.CounterVec
	duplicates *prometheus.CounterVec
}

// NewPrometheusStatsMetrics registers the stats aggregator collectors.
func NewPrometheusStatsMetrics(reg prometheus.Registerer) StatsMetrics {
	m := &prometheusStatsMetrics{
		operationCollectors: newOperationCollectors(reg, "stats"),
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "match_events_applied_total",
			Help:      "Match events applied to team or player statistics.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "match_events_dropped_total",
			Help:      "Match events dropped without mutating statistics.",
		}, []string{"kind", "reason"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "match_events_duplicate_total",
			Help:      "Re-delivered match events skipped by the applied-event ledger.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.applied, m.dropped, m.duplicates)
	return m
}

func (m *prometheusStatsMetrics) RecordEventApplied(_ context.Context, kind string) {
	m.applied.WithLabelValues(kind).Inc()
}

func (m *prometheusStatsMetrics) RecordEventDropped(_ context.Context, kind, reason string) {
	m.dropped.WithLabelValues(kind, reason).Inc()
}

func (m *prometheusStatsMetrics) RecordEventDuplicate(_ context.Context, kind string) {
	m.duplicates.WithLabelValues(kind).Inc()
}

type prometheusEventBusMetrics struct {
	published *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	delivered *prometheus.CounterVec
}

// NewPrometheusEventBusMetrics registers the event bus collectors.
func NewPrometheusEventBusMetrics(reg prometheus.Registerer) EventBusMetrics {
	m := &prometheusEventBusMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "published_total",
			Help:      "Messages published per topic and outcome.",
		}, []string{"topic", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "publish_duration_seconds",
			Help:      "Publish latency per topic.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"topic"}),
		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventbus",
			Name:      "delivered_total",
			Help:      "Messages delivered to handlers per topic and acknowledgement.",
		}, []string{"topic", "ack"}),
	}
	reg.MustRegister(m.published, m.latency, m.delivered)
	return m
}

func (m *prometheusEventBusMetrics) RecordPublish(_ context.Context, topic string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.published.WithLabelValues(topic, outcome).Inc()
	m.latency.WithLabelValues(topic).Observe(d.Seconds())
}

func (m *prometheusEventBusMetrics) RecordDelivery(_ context.Context, topic string, acked bool) {
	ack := "ack"
	if !acked {
		ack = "nack"
	}
	m.delivered.WithLabelValues(topic, ack).Inc()
}
