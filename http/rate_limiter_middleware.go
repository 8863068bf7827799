package http

import (
	"net"
	"net/http"
)

// RateLimitMiddleware keys the limiter by the authenticated user when the
// auth middleware ran first, falling back to the remote IP otherwise.
func RateLimitMiddleware(limiter *RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := UserID(r)
		if key == "" {
			key, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		if !limiter.Allow(key) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
