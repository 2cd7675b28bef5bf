package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segrd_http_requests_total",
		Help: "HTTP requests by method and path template.",
	}, []string{"method", "path"})

	GraphBuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segrd_graph_builds_total",
		Help: "Attack graph builds served.",
	})

	GraphParseErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segrd_graph_parse_errors_total",
		Help: "Malformed evidence rows skipped during graph builds.",
	})

	ReportsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "segrd_reports_generated_total",
		Help: "Reports rendered and stored.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// CountRequests wraps a router and bumps the request counter per call.
func CountRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPRequests.WithLabelValues(r.Method, r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}
