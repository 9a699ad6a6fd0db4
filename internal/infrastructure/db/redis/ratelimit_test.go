package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("request %d: unexpected error: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
		if res.Remaining != 3-i-1 {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, res.Remaining, 3-i-1)
		}
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Allowed {
		t.Fatal("expected fourth request to be rejected")
	}
	if res.RetryAfter <= 0 || res.RetryAfter > time.Minute {
		t.Fatalf("retry after out of range: %s", res.RetryAfter)
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	_, client := newTestClient(t)
	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	if res, _ := limiter.Allow(ctx, "a"); !res.Allowed {
		t.Fatal("expected first request for a to pass")
	}
	if res, _ := limiter.Allow(ctx, "b"); !res.Allowed {
		t.Fatal("expected first request for b to pass")
	}
	if res, _ := limiter.Allow(ctx, "a"); res.Allowed {
		t.Fatal("expected second request for a to be rejected")
	}
}

func TestRateLimiter_RedisDown(t *testing.T) {
	s, client := newTestClient(t)
	limiter := NewRateLimiter(client, 1, time.Minute)
	s.Close()

	if _, err := limiter.Allow(context.Background(), "a"); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}
