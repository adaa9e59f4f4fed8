package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/repositories"
)

// handleServiceError maps service-layer failures onto the error envelope.
// Insufficient inventory is a conflict: the request was well formed but the
// stock it asked for no longer exists.
func handleServiceError(c echo.Context, err error) error {
	var validationErr *common.ValidationError
	var inventoryErr *common.InsufficientInventoryError

	switch {
	case errors.As(err, &validationErr):
		return common.SendValidationError(c, validationErr.Field, validationErr.Message)

	case errors.As(err, &inventoryErr):
		details := map[string]string{
			"product_id":   inventoryErr.ProductID.String(),
			"product_name": inventoryErr.ProductName,
			"available":    strconv.Itoa(inventoryErr.Available),
			"requested":    strconv.Itoa(inventoryErr.Requested),
		}
		return c.JSON(http.StatusConflict,
			common.CreateErrorResponse("INSUFFICIENT_INVENTORY", inventoryErr.Error(), details))

	case errors.Is(err, common.ErrProductNotFound):
		return common.SendNotFoundError(c, "product")
	case errors.Is(err, common.ErrOrderNotFound):
		return common.SendNotFoundError(c, "order")
	case errors.Is(err, repositories.ErrShopNotFound):
		return common.SendNotFoundError(c, "shop")
	case errors.Is(err, repositories.ErrCustomerNotFound):
		return common.SendNotFoundError(c, "customer")
	case errors.Is(err, repositories.ErrPaymentNotFound):
		return common.SendNotFoundError(c, "payment")
	case errors.Is(err, repositories.ErrDomainNotFound):
		return common.SendNotFoundError(c, "domain")

	case errors.Is(err, common.ErrTenantMismatch):
		return common.SendForbiddenError(c, "TENANT_MISMATCH", "you do not have access to this client")

	case errors.Is(err, common.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable,
			common.CreateErrorResponse("STORE_UNAVAILABLE", "store temporarily unavailable, retry the request", nil))
	}

	return common.SendServerError(c, "internal error")
}

// tenantFromRequest reads the tenant the guard middleware resolved.
func tenantFromRequest(c echo.Context) (uuid.UUID, error) {
	tenantID, ok := common.GetTenantIDFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, fmt.Errorf("no tenant in request context")
	}
	return tenantID, nil
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
