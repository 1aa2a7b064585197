package runtime

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wareledger/wareledger/internal/app/metrics"
	"github.com/wareledger/wareledger/internal/logging"
	"github.com/wareledger/wareledger/internal/middleware"
)

// newRouter mounts /metrics and the throttled login route in front of the
// dispatcher, which owns every other path.
func newRouter(dispatcher http.Handler, limiter *middleware.RateLimiter, origins []string, log *logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(
		middleware.NewTracingMiddleware(log).Handler,
		middleware.MetricsMiddleware(),
		middleware.NewCORSMiddleware(origins).Handler,
	)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.Handle("/api/auth/login", limiter.Handler(dispatcher)).Methods(http.MethodPost)
	r.PathPrefix("/").Handler(dispatcher)
	return r
}
