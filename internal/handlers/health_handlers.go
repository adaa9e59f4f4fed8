package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"devboma/internal/caching"
)

type HealthHandlers struct {
	pool  *pgxpool.Pool
	cache caching.CacheService
}

func NewHealthHandlers(pool *pgxpool.Pool, cache caching.CacheService) *HealthHandlers {
	return &HealthHandlers{pool: pool, cache: cache}
}

// Health reports process liveness.
func (h *HealthHandlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the backing stores answer. Redis being down
// degrades caching but does not fail readiness.
func (h *HealthHandlers) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	checks := map[string]string{}
	status := http.StatusOK

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "up"
	}

	probe := "ready-" + time.Now().UTC().Format(time.RFC3339Nano)
	if err := h.cache.SetString(ctx, "devboma:readyz", probe, time.Minute); err != nil {
		checks["redis"] = "down"
	} else {
		checks["redis"] = "up"
	}

	return c.JSON(status, checks)
}
