package observe

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lguimbarda/anyfn/fn/stream"
)

const (
	metricsNamespace = "anyfn"
	streamSubsystem  = "stream"
)

// PrometheusMetrics holds the collectors behind Prometheus hooks.
// All collectors are labelled by stream name.
type PrometheusMetrics struct {
	// ChunksTotal counts chunks delivered.
	ChunksTotal *prometheus.CounterVec

	// ErrorsTotal counts failed streams.
	ErrorsTotal *prometheus.CounterVec

	// SubscriptionsTotal counts subscriptions.
	SubscriptionsTotal *prometheus.CounterVec

	// ActiveStreams tracks streams that have neither ended nor failed.
	ActiveStreams *prometheus.GaugeVec

	// DurationSeconds measures time from subscription to end or failure.
	// Labels: stream, status (ok, error)
	DurationSeconds *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// Collectors already registered by an earlier call are reused, so several
// streams can share one registry.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	m := &PrometheusMetrics{
		ChunksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: streamSubsystem,
			Name:      "chunks_total",
			Help:      "Total number of chunks delivered by stream",
		}, []string{"stream"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: streamSubsystem,
			Name:      "errors_total",
			Help:      "Total number of failed streams",
		}, []string{"stream"}),
		SubscriptionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: streamSubsystem,
			Name:      "subscriptions_total",
			Help:      "Total number of stream subscriptions",
		}, []string{"stream"}),
		ActiveStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: streamSubsystem,
			Name:      "active",
			Help:      "Number of streams currently running",
		}, []string{"stream"}),
		DurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: streamSubsystem,
			Name:      "duration_seconds",
			Help:      "Stream duration from subscription to end or failure",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stream", "status"}),
	}

	var err error
	if m.ChunksTotal, err = register(reg, m.ChunksTotal); err != nil {
		return nil, err
	}
	if m.ErrorsTotal, err = register(reg, m.ErrorsTotal); err != nil {
		return nil, err
	}
	if m.SubscriptionsTotal, err = register(reg, m.SubscriptionsTotal); err != nil {
		return nil, err
	}
	if m.ActiveStreams, err = register(reg, m.ActiveStreams); err != nil {
		return nil, err
	}
	if m.DurationSeconds, err = register(reg, m.DurationSeconds); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register stream metrics: %w", err)
	}
	return c, nil
}

// Hooks returns hooks that record the stream named name.
func (m *PrometheusMetrics) Hooks(name string) stream.Hooks {
	chunks := m.ChunksTotal.WithLabelValues(name)
	active := m.ActiveStreams.WithLabelValues(name)
	var start time.Time

	return stream.Hooks{
		OnSubscribe: func() {
			start = time.Now()
			m.SubscriptionsTotal.WithLabelValues(name).Inc()
			active.Inc()
		},
		OnChunk: func(any) {
			chunks.Inc()
		},
		OnError: func(error) {
			m.ErrorsTotal.WithLabelValues(name).Inc()
			active.Dec()
			m.DurationSeconds.WithLabelValues(name, "error").Observe(time.Since(start).Seconds())
		},
		OnEnd: func() {
			active.Dec()
			m.DurationSeconds.WithLabelValues(name, "ok").Observe(time.Since(start).Seconds())
		},
	}
}

// Prometheus registers stream collectors with reg and returns hooks that
// record the stream named name.
func Prometheus(reg prometheus.Registerer, name string) (stream.Hooks, error) {
	m, err := NewPrometheusMetrics(reg)
	if err != nil {
		return stream.Hooks{}, err
	}
	return m.Hooks(name), nil
}
