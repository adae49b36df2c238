package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "carrental/pkg/errors"
	"carrental/pkg/logger"

	"golang.org/x/time/rate"
)

const CustomerIDHeader = "X-Customer-ID"

// ClientKeyFunc identifies who a request is rate limited as.
type ClientKeyFunc func(r *http.Request) string

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter keeps one token bucket per client key.
type ClientRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	interval time.Duration
	burst    int
	idleTTL  time.Duration
	keyFunc  ClientKeyFunc
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewClientRateLimiter allows requests per window on average with the given burst.
func NewClientRateLimiter(requests int, window time.Duration, burst int, keyFunc ClientKeyFunc, log *logger.Logger) *ClientRateLimiter {
	if keyFunc == nil {
		keyFunc = DefaultClientKey
	}
	requests = max(requests, 1)
	burst = max(burst, 1)
	interval := window / time.Duration(requests)
	rl := &ClientRateLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Every(interval),
		interval: interval,
		burst:    burst,
		idleTTL:  max(window, time.Minute) * 10,
		keyFunc:  keyFunc,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

func (rl *ClientRateLimiter) limiterFor(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *ClientRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}
	return rl.limiterFor(key).Allow()
}

// retryAfter is how long an exhausted bucket takes to earn one token back.
func (rl *ClientRateLimiter) retryAfter() time.Duration {
	return rl.interval
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, entry := range rl.limiters {
				if time.Since(entry.lastSeen) > rl.idleTTL {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ClientRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func RateLimit(limiter *ClientRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.keyFunc(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"client", key,
					"path", r.URL.Path,
				)
				_ = apperrors.WriteError(w, apperrors.TooManyRequests("Rate limit exceeded").WithRetryAfter(limiter.retryAfter()))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultClientKey prefers the customer header and falls back to the remote IP.
func DefaultClientKey(r *http.Request) string {
	if customer := strings.TrimSpace(r.Header.Get(CustomerIDHeader)); customer != "" {
		return "customer:" + customer
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
