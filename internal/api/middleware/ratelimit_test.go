package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	redisstore "github.com/taskflow/task-api/internal/infrastructure/db/redis"
)

type stubLimiter struct {
	res *redisstore.LimitResult
	err error
	key string
}

func (s *stubLimiter) Allow(_ context.Context, key string) (*redisstore.LimitResult, error) {
	s.key = key
	return s.res, s.err
}

func runRateLimit(limiter RateLimiter) (*httptest.ResponseRecorder, bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := RateLimit(limiter, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, called, err
}

func TestRateLimit_Allowed(t *testing.T) {
	stub := &stubLimiter{res: &redisstore.LimitResult{
		Allowed: true, Limit: 100, Remaining: 99, ResetAt: time.Now().Add(10 * time.Minute),
	}}

	rec, called, err := runRateLimit(stub)
	if err != nil || !called {
		t.Fatalf("expected pass-through, got called=%v err=%v", called, err)
	}
	if stub.key != "203.0.113.7" {
		t.Fatalf("limiter key = %q", stub.key)
	}
	if rec.Header().Get("RateLimit-Limit") != "100" || rec.Header().Get("RateLimit-Remaining") != "99" {
		t.Fatalf("unexpected headers: %v", rec.Header())
	}
	if rec.Header().Get(echo.HeaderRetryAfter) != "" {
		t.Fatalf("Retry-After should only be set on rejection")
	}
}

func TestRateLimit_Rejected(t *testing.T) {
	stub := &stubLimiter{res: &redisstore.LimitResult{
		Allowed: false, Limit: 100, Remaining: 0, ResetAt: time.Now().Add(30 * time.Second),
	}}

	rec, called, err := runRateLimit(stub)
	if called {
		t.Fatalf("next should not be called")
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if he.Message != rateLimitMessage {
		t.Fatalf("message = %v", he.Message)
	}
	if rec.Header().Get(echo.HeaderRetryAfter) == "" || rec.Header().Get("RateLimit-Remaining") != "0" {
		t.Fatalf("unexpected headers: %v", rec.Header())
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	stub := &stubLimiter{err: errors.New("redis: connection refused")}

	_, called, err := runRateLimit(stub)
	if err != nil || !called {
		t.Fatalf("expected request to pass, got called=%v err=%v", called, err)
	}
}

func TestSecondsUntil(t *testing.T) {
	if got := secondsUntil(time.Now().Add(-time.Minute)); got != 1 {
		t.Fatalf("past reset = %d, want 1", got)
	}
	if got := secondsUntil(time.Now().Add(90 * time.Second)); got < 89 || got > 90 {
		t.Fatalf("90s reset = %d", got)
	}
}
