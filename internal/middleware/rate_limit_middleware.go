package middleware

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware provides an HTTP middleware for rate limiting.
type RateLimitMiddleware struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

// NewRateLimitMiddleware creates a new per-client-IP rate limiter.
func NewRateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	result := &RateLimitMiddleware{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
	return result.Handler
}

// Handler wraps next with the rate limit check.
func (i *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Use the IP address as the key.
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		i.mu.Lock()
		limiter, exists := i.limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(i.rps, i.burst)
			i.limiters[ip] = limiter
		}
		i.mu.Unlock()

		if !limiter.Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
