package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"
)

type stubAttemptStore struct {
	trimErr   error
	count     int
	countErr  error
	oldest    time.Time
	hasOldest bool
	oldestErr error
	recordErr error

	recordedKeys []string
}

func (s *stubAttemptStore) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	return s.trimErr
}

func (s *stubAttemptStore) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	return s.count, s.countErr
}

func (s *stubAttemptStore) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	s.recordedKeys = append(s.recordedKeys, identifier)
	return s.recordErr
}

func (s *stubAttemptStore) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	return s.oldest, s.hasOldest, s.oldestErr
}

func rateLimitedRouter(t *testing.T, store *stubAttemptStore, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	limiter := NewRateLimiter(store, zaptest.NewLogger(t)).WithClock(func() time.Time { return now })

	router := gin.New()
	router.Use(limiter.RateLimit(RateLimitRule{
		Name:   "login",
		Limit:  5,
		Window: time.Minute,
		Identifier: func(c *gin.Context) (string, bool) {
			return "192.0.2.1", true
		},
	}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRateLimiterAllowsAndReportsHeaders(t *testing.T) {
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	oldest := now.Add(-30 * time.Second)
	store := &stubAttemptStore{count: 2, oldest: oldest, hasOldest: true}

	router := rateLimitedRouter(t, store, now)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if len(store.recordedKeys) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(store.recordedKeys))
	}
	if got := store.recordedKeys[0]; got != "login:192.0.2.1" {
		t.Fatalf("unexpected storage key %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "5" {
		t.Fatalf("expected limit header 5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Remaining"); got != "2" {
		t.Fatalf("expected remaining header 2, got %q", got)
	}
	wantReset := strconv.FormatInt(oldest.Add(time.Minute).Unix(), 10)
	if got := rr.Header().Get("X-RateLimit-Reset"); got != wantReset {
		t.Fatalf("expected reset header %s, got %q", wantReset, got)
	}
	if got := rr.Header().Get("Retry-After"); got != "" {
		t.Fatalf("expected no retry-after header, got %q", got)
	}
}

func TestRateLimiterBlocksSaturatedWindow(t *testing.T) {
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := &stubAttemptStore{count: 5, oldest: now.Add(-30 * time.Second), hasOldest: true}

	router := rateLimitedRouter(t, store, now)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if len(store.recordedKeys) != 0 {
		t.Fatalf("expected no recorded attempt when blocked, got %d", len(store.recordedKeys))
	}
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected retry-after 30, got %q", got)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if problem.Status != http.StatusTooManyRequests {
		t.Fatalf("unexpected problem status %d", problem.Status)
	}
	if problem.RetryAfter != 30 {
		t.Fatalf("expected problem retry_after 30, got %d", problem.RetryAfter)
	}
	if problem.Instance != "/" {
		t.Fatalf("expected instance /, got %q", problem.Instance)
	}
}

func TestRateLimiterFailsOpenWhenStoreIsDown(t *testing.T) {
	now := time.Date(2025, 10, 12, 10, 0, 0, 0, time.UTC)
	store := &stubAttemptStore{trimErr: errors.New("redis down")}

	router := rateLimitedRouter(t, store, now)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 when failing open, got %d", rr.Code)
	}
	if len(store.recordedKeys) != 0 {
		t.Fatalf("expected no recorded attempt on store failure, got %d", len(store.recordedKeys))
	}
}

func TestRateLimiterSkipsInvalidRules(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &stubAttemptStore{count: 100}
	limiter := NewRateLimiter(store, zaptest.NewLogger(t))

	router := gin.New()
	router.Use(limiter.RateLimit(RateLimitRule{Name: "broken", Limit: 0, Window: time.Minute, Identifier: ClientIPIdentifier()}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for rule with zero limit, got %d", rr.Code)
	}
}
