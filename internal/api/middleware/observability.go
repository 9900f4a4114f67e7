package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/reelspot/backend/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// knownRoutes bounds the http.route label. Paths outside it are reported as
// "unmatched".
var knownRoutes = map[string]struct{}{
	"/api/health":         {},
	"/api/ingest":         {},
	"/api/markers":        {},
	"/api/markers/export": {},
	"/api/markers/stream": {},
	"/api/places":         {},
	"/api/place-details":  {},
	"/auth/register":      {},
	"/auth/login":         {},
}

// ObservabilityMiddleware opens a span per request and records the request
// duration metric under a bounded route label.
func ObservabilityMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeLabel(r.URL.Path)
			ctx, span := observability.StartSpan(r.Context(), r.Method+" "+route)
			defer span.End()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			started := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))
			elapsed := time.Since(started)

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", r.UserAgent()),
				attribute.Int("http.status_code", rec.status),
				attribute.Int64("http.response_size", rec.written),
			)
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, rec.status, elapsed)
		})
	}
}

func routeLabel(path string) string {
	if trimmed := strings.TrimSuffix(path, "/"); trimmed != "" {
		path = trimmed
	}
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return "unmatched"
}

// statusRecorder keeps the status and body size of a response. Flush is
// forwarded so event streams keep working behind it.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(p []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(p)
	rec.written += int64(n)
	return n, err
}

func (rec *statusRecorder) Flush() {
	if flusher, ok := rec.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
