// Package metrics exposes Prometheus collectors for attendance sessions and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// Manager owns every collector. It implements session.Observer.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	framesProcessed prometheus.Counter
	facesEncoded    prometheus.Counter
	unknownFaces    prometheus.Counter
	encodeFailures  prometheus.Counter
	identities      *prometheus.CounterVec

	sessions        *prometheus.CounterVec
	sessionDuration prometheus.Histogram
	sessionPresent  prometheus.Histogram
	activeSessions  prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "chamada",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "capture",
		Name:      "frames_processed_total",
		Help:      "Frames read from capture devices and sent to the encoder",
	})

	m.facesEncoded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "capture",
		Name:      "faces_encoded_total",
		Help:      "Faces located and encoded in captured frames",
	})

	m.unknownFaces = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matcher",
		Name:      "unknown_faces_total",
		Help:      "Encoded faces with no identity within tolerance",
	})

	m.encodeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "capture",
		Name:      "encode_failures_total",
		Help:      "Frames skipped because the encoder failed",
	})

	m.identities = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "matcher",
		Name:      "identities_marked_total",
		Help:      "First sightings marked present, by subject",
	}, []string{"subject"})

	m.sessions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "finished_total",
		Help:      "Finished attendance sessions by stop reason",
	}, []string{"stop_reason"})

	m.sessionDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "duration_seconds",
		Help:      "Wall time of attendance sessions",
		Buckets:   []float64{5, 15, 30, 60, 120, 300, 600},
	})

	m.sessionPresent = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "present_ratio",
		Help:      "Share of the roster marked present per session",
		Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
	})

	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Attendance sessions currently running",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status code",
	}, []string{"route", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and method",
		Buckets:   m.histogramBuckets,
	}, []string{"route", "method"})
}

func (m *Manager) FrameProcessed() { m.framesProcessed.Inc() }

func (m *Manager) FacesEncoded(n int) { m.facesEncoded.Add(float64(n)) }

func (m *Manager) UnknownFace() { m.unknownFaces.Inc() }

func (m *Manager) IdentityMarked(subject string) { m.identities.WithLabelValues(subject).Inc() }

func (m *Manager) EncodeFailed() { m.encodeFailures.Inc() }

func (m *Manager) SessionStarted() { m.activeSessions.Inc() }

// SessionFinished records a finished session. present and rosterSize feed the
// present ratio; a zero roster is not observed.
func (m *Manager) SessionFinished(reason domain.StopReason, elapsed time.Duration, present, rosterSize int) {
	m.activeSessions.Dec()
	m.sessions.WithLabelValues(string(reason)).Inc()
	m.sessionDuration.Observe(elapsed.Seconds())
	if rosterSize > 0 {
		m.sessionPresent.Observe(float64(present) / float64(rosterSize))
	}
}

func (m *Manager) HTTPRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
