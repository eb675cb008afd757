package server

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limiters  map[string]*rate.Limiter
	mu        sync.Mutex
	rateLimit rate.Limit
	burstSize int
}

// NewRateLimiter creates a limiter allowing rateLimit requests per
// second with the given burst.
func NewRateLimiter(rateLimit rate.Limit, burstSize int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		rateLimit: rateLimit,
		burstSize: burstSize,
	}
}

// GetLimiter returns the bucket for an IP, creating it on first use.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.rateLimit, rl.burstSize)
		rl.limiters[ip] = limiter
	}
	return limiter
}

// NewRateLimitMiddleware limits each client IP to minuteLimit requests
// per minute.
func NewRateLimitMiddleware(minuteLimit int, logger *slog.Logger) func(http.Handler) http.Handler {
	rps := rate.Limit(float64(minuteLimit) / 60.0)
	limiter := NewRateLimiter(rps, minuteLimit)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr

			if !limiter.GetLimiter(ip).Allow() {
				logger.Warn("Rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
