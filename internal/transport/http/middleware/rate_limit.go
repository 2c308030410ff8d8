package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	rateLimitProblemType  = "https://agro.serasa-test.example.com/errors/rate-limit-exceeded"
	rateLimitProblemTitle = "Rate Limit Exceeded"
)

// RateLimitStore is the sliding-window persistence the middleware needs.
// The Redis-backed attempt store satisfies it.
type RateLimitStore interface {
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}

// IdentifierFunc extracts the value a rule scopes its limit by, typically
// the client IP. Returning false skips the rule for this request.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule is one sliding-window limit. Rules with a missing
// identifier, non-positive limit, or non-positive window are ignored.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter evaluates rules against a shared attempt store. Store
// failures fail open so a cache outage never takes the API down.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
	now    func() time.Time
}

// decision is the outcome of evaluating one rule for one request.
type decision struct {
	allowed    bool
	limit      int
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// ProblemDetails is the RFC 9457 payload returned on 429 responses.
type ProblemDetails struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail"`
	Instance   string         `json:"instance"`
	RetryAfter int            `json:"retry_after"`
	TraceID    string         `json:"trace_id,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// NewRateLimiter builds a limiter shared across route groups.
func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{store: store, logger: logger, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule to the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

// RateLimit returns a middleware enforcing every valid rule. The response
// carries X-RateLimit headers from the tightest rule that was evaluated.
func (rl *RateLimiter) RateLimit(rules ...RateLimitRule) gin.HandlerFunc {
	valid := make([]RateLimitRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
			continue
		}
		if rule.Name == "" {
			rule.Name = "default"
		}
		valid = append(valid, rule)
	}

	return func(c *gin.Context) {
		if len(valid) == 0 || rl.store == nil {
			c.Next()
			return
		}

		now := rl.now()
		var tightest *decision

		for _, rule := range valid {
			identifier, ok := rule.Identifier(c)
			if !ok || identifier == "" {
				continue
			}

			key := fmt.Sprintf("%s:%s", rule.Name, identifier)
			dec, err := rl.evaluate(c.Request.Context(), rule, key, now)
			if err != nil {
				rl.logger.Warn("rate limit check failed",
					zap.String("rule", rule.Name),
					zap.String("identifier", identifier),
					zap.Error(err),
				)
				continue
			}

			if tightest == nil || dec.tighterThan(*tightest) {
				snapshot := dec
				tightest = &snapshot
			}

			if !dec.allowed {
				rl.writeHeaders(c, dec)
				rl.reject(c, dec)
				return
			}
		}

		if tightest != nil {
			rl.writeHeaders(c, *tightest)
		}
		c.Next()
	}
}

// evaluate trims the window, counts prior attempts, and records this one
// unless the rule is already saturated.
func (rl *RateLimiter) evaluate(ctx context.Context, rule RateLimitRule, key string, now time.Time) (decision, error) {
	if err := rl.store.TrimWindow(ctx, key, rule.Window, now); err != nil {
		return decision{}, err
	}
	count, err := rl.store.CountAttempts(ctx, key, rule.Window, now)
	if err != nil {
		return decision{}, err
	}
	oldest, hasAttempts, err := rl.store.OldestAttempt(ctx, key, rule.Window, now)
	if err != nil {
		return decision{}, err
	}

	reset := now.Add(rule.Window)
	if hasAttempts {
		reset = oldest.Add(rule.Window)
	}
	retryAfter := reset.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}

	if count >= rule.Limit {
		return decision{
			allowed:    false,
			limit:      rule.Limit,
			remaining:  0,
			reset:      reset,
			retryAfter: retryAfter,
		}, nil
	}

	if err := rl.store.RecordAttempt(ctx, key, now); err != nil {
		return decision{}, err
	}

	return decision{
		allowed:    true,
		limit:      rule.Limit,
		remaining:  max(rule.Limit-count-1, 0),
		reset:      reset,
		retryAfter: retryAfter,
	}, nil
}

// tighterThan reports whether d should supply the rate-limit headers in
// place of current. Blocked beats allowed, then fewest remaining, then
// earliest reset.
func (d decision) tighterThan(current decision) bool {
	if !d.allowed && current.allowed {
		return true
	}
	if d.allowed != current.allowed {
		return false
	}
	if d.remaining != current.remaining {
		return d.remaining < current.remaining
	}
	return d.reset.Before(current.reset)
}

func (rl *RateLimiter) writeHeaders(c *gin.Context, dec decision) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(dec.limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(max(dec.remaining, 0)))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(dec.reset.Unix(), 10))

	if !dec.allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(dec.retryAfter)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, dec decision) {
	seconds := retrySeconds(dec.retryAfter)
	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       rateLimitProblemType,
		Title:      rateLimitProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds),
		Instance:   instance,
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}

func retrySeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}
