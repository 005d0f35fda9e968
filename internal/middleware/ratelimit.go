package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/SagarCoder007/modern-banking-system/internal/httputil"
)

// RateLimit is a fixed-window per-client limiter, keyed by remote IP.
// It protects the login and mutation endpoints from hammering; it is
// not meant to survive restarts or multiple processes.
func RateLimit(window time.Duration, maxRequests int) func(http.Handler) http.Handler {
	type bucket struct {
		start time.Time
		count int
	}

	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
	)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			now := time.Now()

			mu.Lock()
			b, ok := buckets[host]
			if !ok || now.Sub(b.start) >= window {
				b = &bucket{start: now}
				buckets[host] = b
			}
			b.count++
			over := b.count > maxRequests

			// Drop stale buckets so the map does not grow forever.
			if len(buckets) > 10000 {
				for k, v := range buckets {
					if now.Sub(v.start) >= window {
						delete(buckets, k)
					}
				}
			}
			mu.Unlock()

			if over {
				httputil.WriteError(w, http.StatusTooManyRequests, "too many requests, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
