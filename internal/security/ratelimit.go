package security

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateDecision is the outcome of one rate limit check
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// RateLimiter counts requests per key in fixed windows
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}

// LocalRateLimiter keeps its windows in process memory
type LocalRateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*rateWindow
}

type rateWindow struct {
	start time.Time
	count int
}

// NewLocalRateLimiter allows limit requests per key in each window
func NewLocalRateLimiter(limit int, window time.Duration) *LocalRateLimiter {
	return &LocalRateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
}

func (l *LocalRateLimiter) Allow(_ context.Context, key string) (RateDecision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		w = &rateWindow{start: now}
		l.windows[key] = w
	}
	if w.count >= l.limit {
		return RateDecision{RetryAfter: w.start.Add(l.window).Sub(now)}, nil
	}
	w.count++
	return RateDecision{Allowed: true, Remaining: l.limit - w.count}, nil
}

// Run drops expired windows every interval until ctx is done
func (l *LocalRateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *LocalRateLimiter) sweep() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}

// fixedWindowScript increments the key, starts its expiry on the first hit
// and returns {count, remaining ttl in ms}.
var fixedWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// RedisRateLimiter shares windows between server instances
type RedisRateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

// NewRedisRateLimiter allows limit requests per key in each window
func NewRedisRateLimiter(client *redis.Client, keyPrefix string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, keyPrefix: keyPrefix, limit: limit, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (RateDecision, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.keyPrefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return RateDecision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return RateDecision{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}

	count, ttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if count > l.limit {
		return RateDecision{RetryAfter: ttl}, nil
	}
	return RateDecision{Allowed: true, Remaining: l.limit - count}, nil
}

// GetClientIP extracts the client IP from the request
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (when behind proxy); the first hop is the client
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
