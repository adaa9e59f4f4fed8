package middleware

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"devboma/internal/caching"
	"devboma/internal/common"
)

// RateLimit caps requests per caller over a fixed window, counted in
// Redis so the limit holds across replicas. Redis being down fails open.
func RateLimit(cache caching.CacheService, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if userID, ok := common.GetUserIDFromContext(c.Request().Context()); ok {
				key = userID.String()
			}
			key = fmt.Sprintf("%s:%s", c.Path(), key)

			limited, err := cache.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				log.Printf("WARN: rate limit check failed: %v", err)
				return next(c)
			}
			if limited {
				return c.JSON(http.StatusTooManyRequests,
					common.CreateErrorResponse("RATE_LIMITED", "too many requests, slow down", nil))
			}
			return next(c)
		}
	}
}
