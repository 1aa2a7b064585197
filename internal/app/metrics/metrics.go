package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wareledger",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wareledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wareledger",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	loginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wareledger",
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"result"},
	)

	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wareledger",
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Sessions created by successful logins.",
		},
	)

	sessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "wareledger",
			Subsystem: "sessions",
			Name:      "purged_total",
			Help:      "Expired sessions removed by the purge schedule.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		loginAttempts,
		sessionsCreated,
		sessionsPurged,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
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

		path := CanonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)
		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordLogin counts a login attempt. result is "success", "failure" or
// "throttled".
func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// RecordSessionCreated counts a new session.
func RecordSessionCreated() {
	sessionsCreated.Inc()
}

// RecordSessionsPurged counts sessions removed by a purge run.
func RecordSessionsPurged(n int) {
	if n > 0 {
		sessionsPurged.Add(float64(n))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// CanonicalPath collapses request paths into a bounded label set: file
// downloads lose their kind and id, static assets share one label and
// anything outside /api is a page.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "api":
		if len(parts) == 1 {
			return "/api"
		}
		if parts[1] == "file" {
			return "/api/file/:kind/:id"
		}
		if parts[1] == "auth" && len(parts) > 2 {
			return "/api/auth/" + parts[2]
		}
		return "/api/" + parts[1]
	case "static":
		return "/static"
	case "favicon.ico":
		return "/favicon.ico"
	default:
		return "/page"
	}
}
