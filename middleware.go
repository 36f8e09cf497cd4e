package graceful

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	json "github.com/goccy/go-json"
)

// Middleware is the standard middleware signature, compatible with the
// entire Go middleware ecosystem.
type Middleware func(next http.Handler) http.Handler

// Recovery returns middleware that recovers from panics and responds with a
// structured 500 error envelope.
func Recovery() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"panic", rec,
						"stack", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
					json.NewEncoder(w).Encode(ErrorEnvelope{
						Title:       http.StatusText(http.StatusInternalServerError),
						Description: "internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
