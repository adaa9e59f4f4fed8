package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/services"
)

type OrderHandlers struct {
	orderService services.OrderService
}

func NewOrderHandlers(orderService services.OrderService) *OrderHandlers {
	return &OrderHandlers{orderService: orderService}
}

// CreateOrder is the order-intake endpoint. The whole cart either commits
// with its inventory decrements or nothing is written.
func (h *OrderHandlers) CreateOrder(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var input services.CreateOrderInput
	if err := c.Bind(&input); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	order, err := h.orderService.Create(c.Request().Context(), tenantID, input)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandlers) GetOrder(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	order, err := h.orderService.GetByID(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandlers) ListOrders(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	filter := models.OrderSearchFilter{
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}
	if status := c.QueryParam("status"); status != "" {
		filter.Status = &status
	}
	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := common.ValidateUUID(raw, "customer_id")
		if err != nil {
			return common.SendValidationError(c, "customer_id", err.Error())
		}
		filter.CustomerID = &customerID
	}
	if raw := c.QueryParam("shop_id"); raw != "" {
		shopID, err := common.ValidateUUID(raw, "shop_id")
		if err != nil {
			return common.SendValidationError(c, "shop_id", err.Error())
		}
		filter.ShopID = &shopID
	}
	if raw := c.QueryParam("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return common.SendValidationError(c, "from", "must be in YYYY-MM-DD format")
		}
		filter.From = &from
	}
	if raw := c.QueryParam("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return common.SendValidationError(c, "to", "must be in YYYY-MM-DD format")
		}
		end := to.Add(24 * time.Hour)
		filter.To = &end
	}

	orders, total, err := h.orderService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return handleServiceError(c, err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

type updateOrderStatusRequest struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"tracking_number"`
}

func (h *OrderHandlers) UpdateOrderStatus(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), tenantID, orderID, req.Status, req.TrackingNumber)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// CancelOrder cancels a pending or processing order and returns its stock.
func (h *OrderHandlers) CancelOrder(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	order, err := h.orderService.Cancel(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}
