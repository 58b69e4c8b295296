// Package metrics provides Prometheus metrics for the check-in service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus collectors for the service.
type Manager struct {
	registry prometheus.Registerer

	signIns          prometheus.Counter
	signOuts         prometheus.Counter
	eventSignIns     prometheus.Counter
	eventSignOuts    prometheus.Counter
	scansRecorded    prometheus.Counter
	attendeesCreated prometheus.Counter
	seedFailures     prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Custom registry to avoid default Go runtime metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton metrics registry

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(customRegistry)
}

// NewManager registers the service collectors on the provided registry.
func NewManager(registry prometheus.Registerer) *Manager {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	auto := promauto.With(registry)
	m := &Manager{registry: registry}

	m.signIns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "sign_ins_total",
		Help:      "Total number of attendee sign-ins recorded",
	})
	m.signOuts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "sign_outs_total",
		Help:      "Total number of attendee sign-outs recorded",
	})
	m.eventSignIns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "event_sign_ins_total",
		Help:      "Total number of per-event sign-ins recorded",
	})
	m.eventSignOuts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "event_sign_outs_total",
		Help:      "Total number of per-event sign-outs recorded",
	})
	m.scansRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "scans_recorded_total",
		Help:      "Total number of activity scans recorded",
	})
	m.attendeesCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "attendees_created_total",
		Help:      "Total number of attendees created",
	})
	m.seedFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "checkin",
		Name:      "seed_failures_total",
		Help:      "Total number of records the bulk loader failed to create",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkin",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method, and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkin",
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	return m
}

// RecordSignIn increments the sign-in counter.
func RecordSignIn() { globalManager.signIns.Inc() }

// RecordSignOut increments the sign-out counter.
func RecordSignOut() { globalManager.signOuts.Inc() }

// RecordEventSignIn increments the per-event sign-in counter.
func RecordEventSignIn() { globalManager.eventSignIns.Inc() }

// RecordEventSignOut increments the per-event sign-out counter.
func RecordEventSignOut() { globalManager.eventSignOuts.Inc() }

// RecordScan increments the scan counter.
func RecordScan() { globalManager.scansRecorded.Inc() }

// RecordAttendeeCreated increments the attendee creation counter.
func RecordAttendeeCreated() { globalManager.attendeesCreated.Inc() }

// RecordSeedFailure increments the bulk-loader failure counter.
func RecordSeedFailure() { globalManager.seedFailures.Inc() }

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// Registry returns the custom Prometheus registry used by the service.
func Registry() *prometheus.Registry {
	return customRegistry
}
