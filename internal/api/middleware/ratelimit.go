package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskflow/task-api/internal/api/metrics"
	redisstore "github.com/taskflow/task-api/internal/infrastructure/db/redis"
)

// RateLimiter records a request for key and reports whether it is allowed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (*redisstore.LimitResult, error)
}

const rateLimitMessage = "Too many requests, please try again later."

// RateLimit limits requests per client IP. When the limiter itself fails the
// request is let through and the failure logged.
func RateLimit(limiter RateLimiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res, err := limiter.Allow(c.Request().Context(), c.RealIP())
			if err != nil {
				log.Warn().Err(err).Str("ip", c.RealIP()).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			h := c.Response().Header()
			h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(secondsUntil(res.ResetAt)))

			if !res.Allowed {
				metrics.RateLimitedTotal.Inc()
				h.Set(echo.HeaderRetryAfter, strconv.Itoa(secondsUntil(res.ResetAt)))
				return echo.NewHTTPError(http.StatusTooManyRequests, rateLimitMessage)
			}
			return next(c)
		}
	}
}

func secondsUntil(t time.Time) int {
	s := int(time.Until(t).Round(time.Second) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
