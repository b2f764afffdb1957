package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Optimization metrics
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	runIterations   prometheus.Histogram
	degenerateDraws prometheus.Counter
	jobsActive      prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Optimization metrics
	r.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantfolio_runs_total",
			Help: "Total number of optimization runs",
		},
		[]string{"status"},
	)
	r.runDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantfolio_run_duration_seconds",
			Help:    "Optimization run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
	)
	r.runIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantfolio_run_iterations",
			Help:    "Monte Carlo iterations per run",
			Buckets: []float64{100, 500, 1000, 2000, 5000, 10000},
		},
	)
	r.degenerateDraws = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quantfolio_degenerate_draws_total",
			Help: "Total number of discarded degenerate weight draws",
		},
	)
	r.jobsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quantfolio_jobs_active",
			Help: "Number of active optimization jobs",
		},
	)

	reg.MustRegister(r.runsTotal)
	reg.MustRegister(r.runDuration)
	reg.MustRegister(r.runIterations)
	reg.MustRegister(r.degenerateDraws)
	reg.MustRegister(r.jobsActive)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordRun records a completed (or failed) optimization run.
func (r *Registry) RecordRun(status string, duration float64, iterations, degenerate int) {
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Observe(duration)
	r.runIterations.Observe(float64(iterations))
	r.degenerateDraws.Add(float64(degenerate))
}

// SetJobsActive sets the number of active optimization jobs.
func (r *Registry) SetJobsActive(count int) {
	r.jobsActive.Set(float64(count))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
