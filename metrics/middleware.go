package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Public routes are served without a session (health, metrics).
	Public = "public"

	// Session routes are served in the context of a browser session.
	Session = "session"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sheets_search",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds, by route group and route",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"group", "method", "route", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sheets_search",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests, by route group and route",
		},
		[]string{"group", "method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal)
}

// Middleware records the duration and count of the requests for a group of routes. Requests
// are labelled with the chi route pattern (so /rows/7 is counted as /rows/{row}), or
// 'unmatched' for requests that did not match a route.
func Middleware(group string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			labels := prometheus.Labels{
				"group":  group,
				"method": r.Method,
				"route":  route,
				"status": strconv.Itoa(status),
			}

			httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
			httpRequestsTotal.With(labels).Inc()
		})
	}
}

