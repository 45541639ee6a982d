// Package metrics provides Prometheus metrics for the residual pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns all Prometheus collectors for a pipeline process.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         *prometheus.Registry

	// Producer
	samplesPublished prometheus.Counter
	publishErrors    prometheus.Counter

	// Correlator
	messagesConsumed  *prometheus.CounterVec
	malformedMessages prometheus.Counter
	pairsMatched      prometheus.Counter
	pendingEntries    prometheus.Gauge
	pendingEvictions  *prometheus.CounterVec
	recordsAppended   prometheus.Counter
	appendErrors      prometheus.Counter

	// Merge queue
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueEnqueueErrs *prometheus.CounterVec
	queueDequeues    prometheus.Counter

	// Visualizer
	renders        prometheus.Counter
	renderErrors   prometheus.Counter
	renderDuration prometheus.Histogram
}

// Global manager on a custom registry so default Go collectors stay out.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager()
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "residual",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initCollectors()
	return m
}

func (m *Manager) initCollectors() {
	factory := promauto.With(m.registry)

	m.samplesPublished = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "samples_published_total",
		Help: "Ground-truth/feature message pairs published to the broker.",
	})
	m.publishErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "publish_errors_total",
		Help: "Failed broker publishes.",
	})

	m.messagesConsumed = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "messages_consumed_total",
		Help: "Messages received from the broker, by topic.",
	}, []string{"topic"})
	m.malformedMessages = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "malformed_messages_total",
		Help: "Messages dropped because the payload could not be decoded.",
	})
	m.pairsMatched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pairs_matched_total",
		Help: "Ground-truth/prediction pairs completed by the correlator.",
	})
	m.pendingEntries = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pending_entries",
		Help: "Incomplete correlation entries currently held in memory.",
	})
	m.pendingEvictions = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "pending_evictions_total",
		Help: "Pending entries dropped before completion, by reason.",
	}, []string{"reason"})
	m.recordsAppended = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "records_appended_total",
		Help: "Error records appended to the log file.",
	})
	m.appendErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "append_errors_total",
		Help: "Failed error-record appends.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_size",
		Help: "Deliveries buffered in the merge queue.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_capacity",
		Help: "Configured merge queue capacity.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_utilization",
		Help: "Merge queue fill ratio, 0 to 1.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueues_total",
		Help: "Successful merge queue enqueues.",
	})
	m.queueEnqueueErrs = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_enqueue_errors_total",
		Help: "Rejected merge queue enqueues, by reason.",
	}, []string{"reason"})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "queue_dequeues_total",
		Help: "Deliveries handed to the correlator handler.",
	})

	m.renders = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "renders_total",
		Help: "Successful plot renders.",
	})
	m.renderErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "render_errors_total",
		Help: "Plot render attempts that failed.",
	})
	m.renderDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "render_duration_seconds",
		Help:    "Wall time of a full read-and-render cycle.",
		Buckets: m.histogramBuckets,
	})
}

// Handler returns an HTTP handler exposing this manager's registry.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Package-level helpers against the global manager.

// RecordSamplePublished counts one published ground-truth/feature pair.
func RecordSamplePublished() {
	if globalManager.enabled {
		globalManager.samplesPublished.Inc()
	}
}

// RecordPublishError counts one failed publish.
func RecordPublishError() {
	if globalManager.enabled {
		globalManager.publishErrors.Inc()
	}
}

// RecordMessageConsumed counts one delivery from topic.
func RecordMessageConsumed(topic string) {
	if globalManager.enabled {
		globalManager.messagesConsumed.WithLabelValues(topic).Inc()
	}
}

// RecordMalformedMessage counts one undecodable payload.
func RecordMalformedMessage() {
	if globalManager.enabled {
		globalManager.malformedMessages.Inc()
	}
}

// RecordPairMatched counts one completed correlation.
func RecordPairMatched() {
	if globalManager.enabled {
		globalManager.pairsMatched.Inc()
	}
}

// UpdatePendingEntries sets the pending-store size gauge.
func UpdatePendingEntries(n int) {
	if globalManager.enabled {
		globalManager.pendingEntries.Set(float64(n))
	}
}

// RecordPendingEviction counts one dropped pending entry. Reason is
// "capacity" or "expired".
func RecordPendingEviction(reason string) {
	if globalManager.enabled {
		globalManager.pendingEvictions.WithLabelValues(reason).Inc()
	}
}

// RecordRecordAppended counts one log append.
func RecordRecordAppended() {
	if globalManager.enabled {
		globalManager.recordsAppended.Inc()
	}
}

// RecordAppendError counts one failed log append.
func RecordAppendError() {
	if globalManager.enabled {
		globalManager.appendErrors.Inc()
	}
}

// UpdateQueueSize sets the merge queue size gauge.
func UpdateQueueSize(n int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(n))
	}
}

// UpdateQueueCapacity sets the merge queue capacity gauge.
func UpdateQueueCapacity(n int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(n))
	}
}

// UpdateQueueUtilization sets the merge queue fill ratio gauge.
func UpdateQueueUtilization(ratio float64) {
	if globalManager.enabled {
		globalManager.queueUtilization.Set(ratio)
	}
}

// RecordQueueEnqueue counts one accepted enqueue.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueues.Inc()
	}
}

// RecordQueueEnqueueError counts one rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrs.WithLabelValues(reason).Inc()
	}
}

// RecordQueueDequeue counts one delivery handed to the handler.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeues.Inc()
	}
}

// RecordRender counts one successful render.
func RecordRender() {
	if globalManager.enabled {
		globalManager.renders.Inc()
	}
}

// RecordRenderError counts one failed render.
func RecordRenderError() {
	if globalManager.enabled {
		globalManager.renderErrors.Inc()
	}
}

// ObserveRenderDuration records the wall time of one render cycle in seconds.
func ObserveRenderDuration(seconds float64) {
	if globalManager.enabled {
		globalManager.renderDuration.Observe(seconds)
	}
}

// Handler exposes the global manager's registry for the optional metrics listener.
func Handler() http.Handler {
	return globalManager.Handler()
}
