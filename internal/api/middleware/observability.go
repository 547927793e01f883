package middleware

import (
	"net/http"
	"time"

	"github.com/localdeck/directory-backend/internal/infrastructure/observability"
	"go.opentelemetry.io/otel/attribute"
)

// Observability adds OpenTelemetry tracing and metrics to HTTP requests.
func Observability(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Use route pattern instead of raw path to avoid high cardinality
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}

			ctx, span := observability.StartSpan(r.Context(), route)
			defer span.End()

			observability.SetSpanAttributes(span,
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.user_agent", r.UserAgent()),
			)

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(recorder, r.WithContext(ctx))

			duration := time.Since(start)
			observability.RecordRequestMetric(ctx, metrics, r.Method, route, recorder.statusCode, duration)
			observability.SetSpanAttributes(span, attribute.Int("http.status_code", recorder.statusCode))
		})
	}
}
