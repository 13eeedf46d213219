// Package metrics holds the Prometheus collectors of the site service.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-sitecms/internal/commands"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CommandsTotal       *prometheus.CounterVec
	CommandDuration     *prometheus.HistogramVec
	DownloadSteps       *prometheus.CounterVec
	SearchRequests      *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecms_commands_total",
				Help: "Editor commands by outcome.",
			},
			[]string{"command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitecms_command_duration_seconds",
				Help:    "Duration of editor commands.",
				Buckets: []float64{.005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"command"},
		),
		DownloadSteps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecms_download_steps_total",
				Help: "Download form steps by outcome.",
			},
			[]string{"step", "status"},
		),
		SearchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitecms_search_requests_total",
				Help: "Search requests by language and outcome.",
			},
			[]string{"language", "status"},
		),
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and durations. Paths are labelled with
// the matched mux pattern to keep label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)
		duration := time.Since(start)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rw.statusCode)
		m.HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration.Seconds())
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
	})
}

// CommandTelemetry feeds command outcomes into the command collectors and
// then hands the outcome to next, when set.
func CommandTelemetry[T command.Message](m *Metrics, next commands.Telemetry[T]) commands.Telemetry[T] {
	return func(ctx context.Context, msg T, info commands.TelemetryInfo) {
		m.CommandsTotal.WithLabelValues(info.Command, string(info.Status)).Inc()
		m.CommandDuration.WithLabelValues(info.Command).Observe(info.Duration.Seconds())
		if next != nil {
			next(ctx, msg, info)
		}
	}
}

// ObserveDownloadStep counts one download step outcome.
func (m *Metrics) ObserveDownloadStep(step, status string) {
	m.DownloadSteps.WithLabelValues(step, status).Inc()
}

// ObserveSearch counts one search request.
func (m *Metrics) ObserveSearch(language string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SearchRequests.WithLabelValues(language, status).Inc()
}
