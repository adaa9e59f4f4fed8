package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/services"
)

type PaymentHandlers struct {
	paymentService services.PaymentService
}

func NewPaymentHandlers(paymentService services.PaymentService) *PaymentHandlers {
	return &PaymentHandlers{paymentService: paymentService}
}

type initializePaymentRequest struct {
	OrderID string `json:"order_id"`
	Phone   string `json:"phone"`
}

// InitializePaystack opens a Paystack payment attempt for an order.
func (h *PaymentHandlers) InitializePaystack(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var req initializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	orderID, err := common.ValidateUUID(req.OrderID, "order_id")
	if err != nil {
		return common.SendValidationError(c, "order_id", err.Error())
	}

	result, err := h.paymentService.InitializePaystack(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// VerifyPaystack confirms a payment attempt by reference.
func (h *PaymentHandlers) VerifyPaystack(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	reference := c.Param("reference")
	if reference == "" {
		return common.SendValidationError(c, "reference", "reference is required")
	}

	payment, err := h.paymentService.VerifyPaystack(c.Request().Context(), tenantID, reference)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, payment)
}

// PaystackWebhook receives gateway callbacks. The route is unauthenticated;
// the HMAC signature over the raw body is the authentication.
func (h *PaymentHandlers) PaystackWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return common.SendValidationError(c, "body", "unable to read body")
	}
	signature := c.Request().Header.Get("x-paystack-signature")

	err = h.paymentService.HandlePaystackWebhook(c.Request().Context(), signature, body)
	if errors.Is(err, services.ErrInvalidWebhookSignature) {
		return common.SendUnauthorizedError(c)
	}
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// InitiateMpesa starts an M-Pesa STK push for an order.
func (h *PaymentHandlers) InitiateMpesa(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}

	var req initializePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendValidationError(c, "body", "invalid request body")
	}
	orderID, err := common.ValidateUUID(req.OrderID, "order_id")
	if err != nil {
		return common.SendValidationError(c, "order_id", err.Error())
	}

	result, err := h.paymentService.InitiateMpesaSTK(c.Request().Context(), tenantID, orderID, req.Phone)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// MpesaCallback receives the STK push result. M-Pesa does not sign its
// callbacks; settlement is keyed on a reference we issued ourselves.
func (h *PaymentHandlers) MpesaCallback(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return common.SendValidationError(c, "body", "unable to read body")
	}

	if err := h.paymentService.HandleMpesaCallback(c.Request().Context(), body); err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// ListOrderPayments returns the payment attempts recorded for an order.
func (h *PaymentHandlers) ListOrderPayments(c echo.Context) error {
	tenantID, err := tenantFromRequest(c)
	if err != nil {
		return common.SendUnauthorizedError(c)
	}
	orderID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	payments, err := h.paymentService.ListByOrder(c.Request().Context(), tenantID, orderID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"payments": payments})
}
