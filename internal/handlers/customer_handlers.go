package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/services"
)

type CustomerHandlers struct {
	customerService services.CustomerService
}

func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var input services.CreateCustomerInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	customer, err := h.customerService.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	customer, err := h.customerService.GetByID(c.Request().Context(), tenantID, customerID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	customers, err := h.customerService.List(c.Request().Context(), tenantID,
		c.QueryParam("q"), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		return handleServiceError(c, err)
	}
	if customers == nil {
		customers = []*models.Customer{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"customers": customers})
}

func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var input services.CreateCustomerInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	customer, err := h.customerService.Update(c.Request().Context(), tenantID, customerID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	customerID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	if err := h.customerService.Delete(c.Request().Context(), tenantID, customerID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
