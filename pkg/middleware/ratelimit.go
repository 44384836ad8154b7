package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/platinummonkey/poolguide/pkg/httputil"
	"github.com/platinummonkey/poolguide/pkg/observability"
)

// Default limiter settings
const (
	DefaultWindow       = 15 * time.Minute
	DefaultGeneralLimit = 100
	DefaultAuthLimit    = 10

	ClassGeneral = "general"
	ClassAuth    = "auth"

	GeneralLimitMessage = "Too many requests, please try again later."
	AuthLimitMessage    = "Too many login attempts, please try again later."
)

// Decision is the outcome of counting one request
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Limiter counts requests per key in fixed windows
type Limiter interface {
	Take(ctx context.Context, key string) (Decision, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a process-local fixed-window limiter
type MemoryLimiter struct {
	limit  int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// NewMemoryLimiter allows limit requests per key in each period
func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:   limit,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// WithClock replaces the time source
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

// Take counts one request for key. Rejected requests are counted too.
func (l *MemoryLimiter) Take(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}
	w.count++
	count, resetAt := w.count, w.resetAt
	l.mu.Unlock()

	return l.decide(count, resetAt), nil
}

func (l *MemoryLimiter) decide(count int, resetAt time.Time) Decision {
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
}

// Cleanup removes elapsed windows and returns how many were removed
func (l *MemoryLimiter) Cleanup() int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// RateLimitOptions configures one rate limit class
type RateLimitOptions struct {
	// Class separates the counters of independent limiters sharing a backend
	Class string
	// Message is returned in the 429 body
	Message string
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP
	TrustProxy bool
	// Now is used for the reset headers; defaults to time.Now
	Now func() time.Time
}

type rateLimitBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// RateLimit returns middleware that rejects clients over the limiter's quota.
// Limiter errors are logged and the request is let through.
func RateLimit(limiter Limiter, opts RateLimitOptions, metrics *observability.Metrics) func(http.Handler) http.Handler {
	if opts.Class == "" {
		opts.Class = ClassGeneral
	}
	if opts.Message == "" {
		opts.Message = GeneralLimitMessage
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.Class + ":" + ClientIP(r, opts.TrustProxy)

			decision, err := limiter.Take(r.Context(), key)
			if err != nil {
				observability.FromContext(r.Context()).
					WithError(err).
					WithField("class", opts.Class).
					Warn("Rate limiter unavailable, allowing request")
				if metrics != nil {
					metrics.RateLimitErrorsTotal.WithLabelValues(opts.Class).Inc()
				}
				next.ServeHTTP(w, r)
				return
			}

			resetIn := decision.ResetAt.Sub(opts.Now())
			if resetIn < 0 {
				resetIn = 0
			}
			resetSeconds := strconv.Itoa(int((resetIn + time.Second - 1) / time.Second))

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(decision.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			h.Set("RateLimit-Reset", resetSeconds)

			if !decision.Allowed {
				if metrics != nil {
					metrics.RateLimitRejectionsTotal.WithLabelValues(opts.Class).Inc()
				}
				h.Set("Retry-After", resetSeconds)
				httputil.WriteJSON(w, http.StatusTooManyRequests, rateLimitBody{
					Status: http.StatusTooManyRequests,
					Error:  opts.Message,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
