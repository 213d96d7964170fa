package serve

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type LimitConfig struct {
	Burst int        `json:"b"`
	Rate  rate.Limit `json:"r"`
}

func buildLimiter(lc *LimitConfig) *rate.Limiter {
	if lc == nil {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := lc.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(lc.Rate, burst)
}

// withLimit rejects requests over the configured rate with 429 and a Retry-After hint.
func withLimit(lc *LimitConfig) func(http.Handler) http.Handler {
	limiter := buildLimiter(lc)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reservation := limiter.Reserve()
			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				// prevent caching of rate limit responses
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter(delay)))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(delay time.Duration) int {
	return int(math.Ceil(delay.Seconds()))
}
