// Package metrics holds the Prometheus collectors of lumitemp.
package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lumitemp/pkg/model"
)

const namespace = "lumitemp"

// Fetch outcomes.
const (
	OutcomeOK         = "ok"
	OutcomeEmpty      = "empty"
	OutcomeStatus     = "status"
	OutcomeMissingKey = "missing_key"
	OutcomeMalformed  = "malformed"
	OutcomeTimeout    = "timeout"
	OutcomeError      = "error"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	fetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sth",
			Name:      "fetches_total",
			Help:      "Total number of STH queries by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	samplesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "samples_appended_total",
			Help:      "Total number of samples appended per kind, duplicates included.",
		},
		[]string{"kind"},
	)

	seriesLength = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "series_length",
			Help:      "Current number of samples held per kind.",
		},
		[]string{"kind"},
	)

	tickDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scrape",
			Name:      "tick_duration_seconds",
			Help:      "Duration of one fetch cycle over all kinds.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
	)

	streamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "stream_clients",
			Help:      "Current number of connected websocket clients.",
		},
	)

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(
		fetches,
		samplesAppended,
		seriesLength,
		tickDuration,
		streamClients,
		httpInFlight,
		httpRequests,
		httpDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordFetch(kind model.Kind, outcome string) {
	fetches.WithLabelValues(kind.String(), outcome).Inc()
}

// RecordAppend counts n new samples for kind, whose series now holds length
// samples.
func RecordAppend(kind model.Kind, n, length int) {
	if n > 0 {
		samplesAppended.WithLabelValues(kind.String()).Add(float64(n))
	}
	seriesLength.WithLabelValues(kind.String()).Set(float64(length))
}

func ObserveTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

func StreamClientConnected() {
	streamClients.Inc()
}

func StreamClientDisconnected() {
	streamClients.Dec()
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// Used as mux middleware the path label is the matched route template.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := routePath(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
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

// Hijack passes through to the wrapped writer so websocket upgrades work
// behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func routePath(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "other"
}
