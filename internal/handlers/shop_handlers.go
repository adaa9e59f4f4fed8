package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/services"
)

type ShopHandlers struct {
	shopService services.ShopService
}

func NewShopHandlers(shopService services.ShopService) *ShopHandlers {
	return &ShopHandlers{shopService: shopService}
}

func (h *ShopHandlers) CreateShop(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var input services.CreateShopInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	shop, err := h.shopService.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, shop)
}

func (h *ShopHandlers) GetShop(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	shopID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	shop, err := h.shopService.GetByID(c.Request().Context(), tenantID, shopID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandlers) ListShops(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	shops, err := h.shopService.List(c.Request().Context(), tenantID,
		queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return handleServiceError(c, err)
	}
	if shops == nil {
		shops = []*models.Shop{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"shops": shops})
}

func (h *ShopHandlers) UpdateShop(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	shopID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var input services.CreateShopInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	shop, err := h.shopService.Update(c.Request().Context(), tenantID, shopID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHandlers) DeleteShop(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	shopID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.shopService.Delete(c.Request().Context(), tenantID, shopID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
