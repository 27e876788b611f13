package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"category-coupons/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// CleanupInterval is the interval for cleaning up stale limiters.
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters.
	LimiterTTL = 10 * time.Minute
)

// RateLimiter manages per-client token buckets.
type RateLimiter struct {
	limiters          map[string]*limiterEntry
	mu                sync.Mutex
	requestsPerMinute int
	burst             int
	stopCh            chan struct{}
	stopOnce          sync.Once
	logger            zerolog.Logger
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing requestsPerMinute with the
// given burst per client and starts its cleanup goroutine.
func NewRateLimiter(requestsPerMinute, burst int, logger zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		limiters:          make(map[string]*limiterEntry),
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		stopCh:            make(chan struct{}),
		logger:            logger.With().Str("component", "rate-limiter").Logger(),
	}

	go rl.cleanup()

	return rl
}

// Allow reports whether a request from client may proceed.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[client]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.requestsPerMinute)/60.0), rl.burst),
		}
		rl.limiters[client] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// Len returns the number of tracked clients.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.sweep(now)
		case <-rl.stopCh:
			return
		}
	}
}

// sweep drops limiters idle for longer than LimiterTTL.
func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for client, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > LimiterTTL {
			delete(rl.limiters, client)
			rl.logger.Debug().Str("client", client).Msg("cleaned up stale rate limiter")
		}
	}
}

// retryAfter is the number of seconds until one request is allowed again.
func (rl *RateLimiter) retryAfter() int {
	if rl.requestsPerMinute <= 0 {
		return 60
	}
	return max(1, 60/rl.requestsPerMinute)
}

// RateLimit rejects requests beyond the client's allowance with 429. A nil
// limiter disables rate limiting. The health check is never limited.
func RateLimit(rl *RateLimiter, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			client := clientKey(r)
			if !rl.Allow(client) {
				retry := rl.retryAfter()
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requestsPerMinute))
				w.Header().Set("X-RateLimit-Remaining", "0")

				logger.Warn().
					Str("path", r.URL.Path).
					Int("retry_after", retry).
					Str("request_id", RequestIDFromContext(r.Context())).
					Msg("rate limit exceeded")

				writeError(w, r, http.StatusTooManyRequests, model.ErrCodeRateLimited, "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by API key, falling back to the remote
// host.
func clientKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return "key:" + key
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}
