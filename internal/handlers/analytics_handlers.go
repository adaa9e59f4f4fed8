package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"devboma/internal/analytics"
	"devboma/internal/common"
)

type AnalyticsHandlers struct {
	analyticsService *analytics.AnalyticsService
}

func NewAnalyticsHandlers(analyticsService *analytics.AnalyticsService) *AnalyticsHandlers {
	return &AnalyticsHandlers{analyticsService: analyticsService}
}

func (h *AnalyticsHandlers) Dashboard(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	// ?period=30d (a bare day count also works)
	periodDays := analytics.DefaultPeriodDays
	if raw := c.QueryParam("period"); raw != "" {
		parsed, err := strconv.Atoi(strings.TrimSuffix(raw, "d"))
		if err != nil || parsed < 1 || parsed > 365 {
			return common.SendValidationError(c, "period", "must be a day count between 1 and 365, e.g. 30d")
		}
		periodDays = parsed
	}

	data, err := h.analyticsService.Dashboard(c.Request().Context(), tenantID, periodDays)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandlers) parseRange(c echo.Context) (time.Time, time.Time, error) {
	to := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	from := to.AddDate(0, 0, -30)

	if raw := c.QueryParam("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewValidationError("from", "must be in YYYY-MM-DD format")
		}
		from = parsed
	}
	if raw := c.QueryParam("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, common.NewValidationError("to", "must be in YYYY-MM-DD format")
		}
		to = parsed.Add(24 * time.Hour)
	}
	if err := common.ValidateDateRange(from, to); err != nil {
		return time.Time{}, time.Time{}, common.NewValidationError("to", err.Error())
	}
	return from, to, nil
}

func (h *AnalyticsHandlers) SalesTrends(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	trends, err := h.analyticsService.SalesTrends(c.Request().Context(), tenantID, from, to)
	if err != nil {
		return handleServiceError(c, err)
	}
	if trends == nil {
		trends = []analytics.SalesTrend{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"trends": trends})
}

// PlatformStats reports cross-tenant totals. The route sits behind the
// admin guard.
func (h *AnalyticsHandlers) PlatformStats(c echo.Context) error {
	stats, err := h.analyticsService.Platform(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// SalesReport returns the daily figures for download, as CSV by default or
// JSON with ?format=json.
func (h *AnalyticsHandlers) SalesReport(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	from, to, err := h.parseRange(c)
	if err != nil {
		return handleServiceError(c, err)
	}

	trends, err := h.analyticsService.SalesTrends(c.Request().Context(), tenantID, from, to)
	if err != nil {
		return handleServiceError(c, err)
	}

	if c.QueryParam("format") == "json" {
		if trends == nil {
			trends = []analytics.SalesTrend{}
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
			"report": trends,
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="sales-report-%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{"date", "orders", "revenue_minor_units"}); err != nil {
		return err
	}
	for _, t := range trends {
		record := []string{
			t.Date.Format("2006-01-02"),
			strconv.Itoa(t.OrderCount),
			strconv.FormatInt(t.Revenue, 10),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
