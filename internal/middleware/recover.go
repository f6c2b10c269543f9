package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.ErrorContext(r.Context(), "panic",
						"panic", rec,
						"path", r.URL.Path,
						"correlation_id", GetCorrelationID(r.Context()),
						"stack", string(debug.Stack()))
					writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
