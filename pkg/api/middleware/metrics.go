package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// MetricsRecorder records HTTP metrics. *metrics.Registry implements it.
type MetricsRecorder interface {
	RecordHTTPRequest(method, route, status string, duration time.Duration)
	RecordResponseSize(method, route string, size float64)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()
}

// RouteOther labels requests for paths outside the route table.
const RouteOther = "other"

// Routes maps request paths to the route names used as metric labels.
type Routes map[string]string

// Name returns the route name for path, or RouteOther.
func (rt Routes) Name(path string) string {
	if name, ok := rt[path]; ok {
		return name
	}
	return RouteOther
}

// Metrics tracks request count, latency, size and in-flight requests per
// named route. Unknown paths share the RouteOther label so scanners cannot
// grow the label set.
func Metrics(recorder MetricsRecorder, routes Routes) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			recorder.IncHTTPRequestsInFlight()
			defer recorder.DecHTTPRequestsInFlight()

			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			route := routes.Name(r.URL.Path)
			recorder.RecordHTTPRequest(r.Method, route, strconv.Itoa(sw.statusCode), time.Since(start))
			recorder.RecordResponseSize(r.Method, route, float64(sw.bytesWritten))
		})
	}
}
