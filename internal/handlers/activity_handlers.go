package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

type ActivityHandlers struct {
	logRepo *repositories.ActivityLogRepository
}

func NewActivityHandlers(logRepo *repositories.ActivityLogRepository) *ActivityHandlers {
	return &ActivityHandlers{logRepo: logRepo}
}

// ListActivity returns the tenant's recent audit entries, newest first.
func (h *ActivityHandlers) ListActivity(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	entries, err := h.logRepo.List(c.Request().Context(), tenantID,
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return handleServiceError(c, err)
	}
	if entries == nil {
		entries = []*models.ActivityLog{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"activity": entries})
}
