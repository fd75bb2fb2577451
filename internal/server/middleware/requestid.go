package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"postflow/internal/logger"
)

// RequestID assigns each request a correlation id, echoes it in the
// X-Request-ID header and writes one access log line per request.
func RequestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", reqID)

			ctx := logger.WithRequestID(r.Context(), reqID)

			start := time.Now()
			next.ServeHTTP(w, r.WithContext(ctx))

			logger.FromContext(ctx, base).Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
