package api

import (
	"math"
	"net/http"
	"strconv"

	"github.com/kovalyov-valentin/cryptoflow/internal/metrics"
	"github.com/kovalyov-valentin/cryptoflow/internal/notifier"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// rateLimit общий лимит на ручки, которые дергают соцсеть. Сверх лимита отвечает onLimited
func rateLimit(limiter *rate.Limiter, onLimited echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				retryAfter := 1
				if limit := float64(limiter.Limit()); limit > 0 {
					retryAfter = max(int(math.Ceil(1/limit)), 1)
				}

				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return onLimited(c)
			}

			return next(c)
		}
	}
}

// Триггер публикации при лимите отвечает 200 со skip, как и при лимите соцсети, чтобы планировщик не ретраил
func skipLimited(c echo.Context) error {
	metrics.Post("skipped")

	return c.JSON(http.StatusOK, postNewsResponse{
		Result: notifier.Result{Skipped: true, Message: "rate limited, skipped, will retry later"},
	})
}

func tooManyRequests(c echo.Context) error {
	return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}
