package graceful

import (
	"net"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// ThrottleConfig configures the Throttle middleware.
type ThrottleConfig struct {
	// Rate is the sustained requests-per-second budget per key.
	Rate float64
	// Burst is the maximum burst size per key.
	Burst int
	// KeyFunc derives the throttling key from a request. Defaults to the
	// remote IP.
	KeyFunc func(r *http.Request) string
	// MaxIdle removes limiters idle longer than this (default 5m).
	MaxIdle time.Duration
}

// Throttle returns middleware applying per-key rate limiting. Requests over
// budget receive a structured 429 error envelope with a Retry-After header.
func Throttle(cfg ThrottleConfig) Middleware {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(r *http.Request) string {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				return r.RemoteAddr
			}
			return host
		}
	}
	if cfg.MaxIdle <= 0 {
		cfg.MaxIdle = 5 * time.Minute
	}

	var (
		mu       sync.Mutex
		limiters = make(map[string]*throttleEntry)
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.KeyFunc(r)
			now := time.Now()

			mu.Lock()
			entry, ok := limiters[key]
			if !ok {
				// Prune idle entries when adding a new key so the map
				// cannot grow without bound.
				for k, e := range limiters {
					if now.Sub(e.lastSeen) > cfg.MaxIdle {
						delete(limiters, k)
					}
				}
				entry = &throttleEntry{
					limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
				}
				limiters[key] = entry
			}
			entry.lastSeen = now
			mu.Unlock()

			if !entry.limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
				json.NewEncoder(w).Encode(ErrorEnvelope{
					Title:       http.StatusText(http.StatusTooManyRequests),
					Description: "request rate over budget",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}
