package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
	bugsAdded        *prometheus.CounterVec
	addsRejected     prometheus.Counter
	filterSelections *prometheus.CounterVec
}

// New creates and registers all collectors.
// sessions, when non-nil, is exported as the active session gauge.
func New(sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bugboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bugboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		),
		requestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bugboard_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		bugsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bugboard_bugs_added_total",
				Help: "Bugs added through the dashboard",
			},
			[]string{"severity"},
		),
		addsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bugboard_bug_adds_rejected_total",
			Help: "Add-bug submissions rejected by validation",
		}),
		filterSelections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bugboard_filter_selections_total",
				Help: "Severity filter selections",
			},
			[]string{"filter"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.requestsInFlight,
		m.bugsAdded,
		m.addsRejected,
		m.filterSelections,
	)

	if sessions != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "bugboard_active_sessions",
				Help: "Number of live dashboard sessions",
			},
			func() float64 { return float64(sessions()) },
		))
	}
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) BugAdded(severity string) {
	m.bugsAdded.WithLabelValues(severity).Inc()
}

func (m *Metrics) AddRejected() {
	m.addsRejected.Inc()
}

func (m *Metrics) FilterSelected(filter string) {
	m.filterSelections.WithLabelValues(filter).Inc()
}

// Middleware records request count, latency and in-flight requests.
// route labels the handler so path values do not explode cardinality.
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
