package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

type DomainHandlers struct {
	domainRepo *repositories.DomainRepository
	shopRepo   *repositories.ShopRepository
}

func NewDomainHandlers(domainRepo *repositories.DomainRepository, shopRepo *repositories.ShopRepository) *DomainHandlers {
	return &DomainHandlers{domainRepo: domainRepo, shopRepo: shopRepo}
}

type createDomainRequest struct {
	ShopID   string `json:"shop_id"`
	Hostname string `json:"hostname"`
}

func (h *DomainHandlers) CreateDomain(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var req createDomainRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	shopID, err := common.ValidateUUID(req.ShopID, "shop_id")
	if err != nil {
		return common.SendValidationError(c, "shop_id", err.Error())
	}

	hostname := strings.ToLower(strings.TrimSpace(req.Hostname))
	if hostname == "" || strings.ContainsAny(hostname, " /") || !strings.Contains(hostname, ".") {
		return common.SendValidationError(c, "hostname", "a valid hostname is required")
	}

	ctx := c.Request().Context()
	if _, err := h.shopRepo.GetByID(ctx, tenantID, shopID); err != nil {
		return handleServiceError(c, err)
	}

	domain := &models.Domain{
		ID:       uuid.New(),
		TenantID: tenantID,
		ShopID:   shopID,
		Hostname: hostname,
		Verified: false,
	}
	if err := h.domainRepo.Create(ctx, domain); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, domain)
}

func (h *DomainHandlers) ListDomains(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	domains, err := h.domainRepo.List(c.Request().Context(), tenantID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if domains == nil {
		domains = []*models.Domain{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"domains": domains})
}

// VerifyDomain marks a domain verified. DNS ownership checks happen out of
// band; this records the outcome.
func (h *DomainHandlers) VerifyDomain(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	domainID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.domainRepo.SetVerified(c.Request().Context(), tenantID, domainID, true); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": domainID, "verified": true})
}

func (h *DomainHandlers) DeleteDomain(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	domainID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.domainRepo.Delete(c.Request().Context(), tenantID, domainID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
