package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ollivarila/wsk2/internal/core/auth"
	redisdb "github.com/ollivarila/wsk2/internal/infrastructure/db/redis"
	"github.com/ollivarila/wsk2/internal/pkg/metrics"
)

// Limiter counts requests per identity.
type Limiter interface {
	Allow(ctx context.Context, identity string) (redisdb.Decision, error)
}

// RateLimit rejects requests over the limiter's budget with 429. The identity
// is the principal id, or the client IP for anonymous callers. If the limiter
// itself fails the request is let through.
func RateLimit(limiter Limiter, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity := "ip:" + c.RealIP()
			if p := auth.PrincipalFrom(c.Request().Context()); !p.Anonymous() {
				identity = "user:" + p.ID
			}

			d, err := limiter.Allow(c.Request().Context(), identity)
			if err != nil {
				log.Warn().Err(err).Str("identity", identity).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}
			if !d.Allowed {
				metrics.RateLimitedTotal.Inc()
				secs := int(math.Ceil(d.RetryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, try again later")
			}
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
			return next(c)
		}
	}
}
