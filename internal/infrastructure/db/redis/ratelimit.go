package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitResult is the outcome of one rate limit check.
type LimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// slidingWindow trims expired entries, counts the rest and records the
// current request when there is room. Returns {allowed, remaining, retry_ms}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local seq_key = KEYS[2]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count < limit then
	local seq = redis.call('INCR', seq_key)
	redis.call('ZADD', key, now, now .. ':' .. seq)
	redis.call('PEXPIRE', key, window)
	redis.call('PEXPIRE', seq_key, window)
	return {1, limit - count - 1, 0}
end

local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local retry = window
if #oldest >= 2 then
	retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)

// RateLimiter is a sliding-window limiter keyed by an arbitrary client key
// (the client IP for the API).
// Key format: ratelimit:<key>
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, limit: limit, window: window}
}

// Allow records one request for key and reports whether it fits the window.
func (l *RateLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	now := time.Now()
	redisKey := "ratelimit:" + key

	res, err := slidingWindow.Run(ctx, l.client, []string{redisKey, redisKey + ":seq"},
		now.UnixMilli(),
		l.window.Milliseconds(),
		l.limit,
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) < 3 {
		return nil, fmt.Errorf("rate limit script: unexpected result length %d", len(res))
	}

	out := &LimitResult{
		Allowed:   res[0] == 1,
		Limit:     l.limit,
		Remaining: int(res[1]),
		ResetAt:   now.Add(l.window),
	}
	if !out.Allowed {
		out.RetryAfter = time.Duration(res[2]) * time.Millisecond
		out.ResetAt = now.Add(out.RetryAfter)
	}
	return out, nil
}
