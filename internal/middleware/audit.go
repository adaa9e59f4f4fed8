package middleware

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// ActivityLogger records successful mutating requests. Logging is best
// effort and never fails the request.
func ActivityLogger(logRepo *repositories.ActivityLogRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				return err
			}

			method := c.Request().Method
			if method == "GET" || method == "HEAD" || method == "OPTIONS" {
				return nil
			}
			if c.Response().Status >= 400 {
				return nil
			}

			ctx := c.Request().Context()
			entry := &models.ActivityLog{
				ID:         uuid.New(),
				Action:     method,
				EntityType: c.Path(),
			}
			if userID, ok := common.GetUserIDFromContext(ctx); ok {
				entry.UserID = &userID
			}
			if tenantID, ok := common.GetTenantIDFromContext(ctx); ok {
				entry.TenantID = &tenantID
			}
			if id := c.Param("id"); id != "" {
				entry.EntityID = &id
			}

			go func() {
				logCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := logRepo.Create(logCtx, entry); err != nil {
					log.Printf("WARN: failed to record activity: %v", err)
				}
			}()
			return nil
		}
	}
}
