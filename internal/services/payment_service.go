package services

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// PaymentInitResult is returned to the storefront so it can hand the
// shopper to the gateway.
type PaymentInitResult struct {
	Payment          *models.Payment `json:"payment"`
	AuthorizationURL string          `json:"authorization_url,omitempty"`
	AccessCode       string          `json:"access_code,omitempty"`
}

// paystackWebhookEvent is the subset of the gateway's webhook payload we
// act on.
type paystackWebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string `json:"reference"`
		ID        int64  `json:"id"`
		Status    string `json:"status"`
	} `json:"data"`
}

// mpesaCallbackEvent mirrors the STK push result Safaricom posts back. The
// CheckoutRequestID carries our payment reference in demo mode.
type mpesaCallbackEvent struct {
	Body struct {
		StkCallback struct {
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ErrInvalidWebhookSignature rejects webhook deliveries whose HMAC does not
// match the shared secret.
var ErrInvalidWebhookSignature = errors.New("invalid webhook signature")

type PaymentService interface {
	InitializePaystack(ctx context.Context, tenantID, orderID uuid.UUID) (*PaymentInitResult, error)
	VerifyPaystack(ctx context.Context, tenantID uuid.UUID, reference string) (*models.Payment, error)
	HandlePaystackWebhook(ctx context.Context, signature string, body []byte) error
	InitiateMpesaSTK(ctx context.Context, tenantID, orderID uuid.UUID, phone string) (*PaymentInitResult, error)
	HandleMpesaCallback(ctx context.Context, body []byte) error
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error)
}

type paymentService struct {
	paymentRepo *repositories.PaymentRepository
	orderRepo   *repositories.OrderRepository
	shopRepo    *repositories.ShopRepository
	secret      string
}

func NewPaymentService(
	paymentRepo *repositories.PaymentRepository,
	orderRepo *repositories.OrderRepository,
	shopRepo *repositories.ShopRepository,
	secret string,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		shopRepo:    shopRepo,
		secret:      secret,
	}
}

func referencePrefix(provider string) string {
	if provider == models.PaymentProviderMpesa {
		return "devboma_mpesa"
	}
	return "devboma"
}

// newReference builds a reference unique across concurrent attempts; the
// payments table enforces uniqueness, so a timestamp alone is not enough.
func newReference(provider string) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return fmt.Sprintf("%s_%d_%x", referencePrefix(provider), time.Now().Unix(), time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%d_%s", referencePrefix(provider), time.Now().Unix(), hex.EncodeToString(suffix))
}

// InitializePaystack opens a payment attempt for the order. Demo mode: no
// live gateway call is made, the authorization URL points at the sandbox
// checkout for the generated reference.
func (s *paymentService) InitializePaystack(ctx context.Context, tenantID, orderID uuid.UUID) (*PaymentInitResult, error) {
	order, err := s.orderRepo.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, common.NewValidationError("order_id",
			fmt.Sprintf("cannot collect payment for an order in status %q", order.Status))
	}

	shop, err := s.shopRepo.GetByID(ctx, tenantID, order.ShopID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:        uuid.New(),
		TenantID:  tenantID,
		OrderID:   orderID,
		Amount:    order.TotalAmount,
		Currency:  shop.Currency,
		Status:    models.PaymentStatusPending,
		Provider:  models.PaymentProviderPaystack,
		Reference: newReference(models.PaymentProviderPaystack),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &PaymentInitResult{
		Payment:          payment,
		AuthorizationURL: fmt.Sprintf("https://checkout.paystack.com/%s", payment.Reference),
		AccessCode:       payment.Reference,
	}, nil
}

// VerifyPaystack confirms a payment attempt. Demo mode treats every known
// pending reference as paid; the order moves from pending to processing and
// no other status is touched.
func (s *paymentService) VerifyPaystack(ctx context.Context, tenantID uuid.UUID, reference string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.TenantID != tenantID {
		return nil, common.ErrTenantMismatch
	}
	if payment.Status == models.PaymentStatusCompleted {
		return payment, nil
	}

	verification, _ := json.Marshal(map[string]string{
		"status":      "success",
		"reference":   reference,
		"verified_by": "demo",
	})
	if err := s.paymentRepo.MarkCompleted(ctx, reference, nil, verification); err != nil {
		return nil, err
	}
	s.settleOrder(ctx, payment.TenantID, payment.OrderID)

	return s.paymentRepo.GetByReference(ctx, reference)
}

// HandlePaystackWebhook authenticates the delivery with HMAC-SHA512 over
// the raw body and settles the referenced payment on charge.success.
func (s *paymentService) HandlePaystackWebhook(ctx context.Context, signature string, body []byte) error {
	mac := hmac.New(sha512.New, []byte(s.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidWebhookSignature
	}

	var event paystackWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return common.NewValidationError("body", "malformed webhook payload")
	}
	if event.Event != "charge.success" {
		return nil // ignore everything else
	}

	payment, err := s.paymentRepo.GetByReference(ctx, event.Data.Reference)
	if err != nil {
		return err
	}
	if payment.Status == models.PaymentStatusCompleted {
		return nil // duplicate delivery
	}

	providerRef := fmt.Sprintf("%d", event.Data.ID)
	if err := s.paymentRepo.MarkCompleted(ctx, event.Data.Reference, &providerRef, body); err != nil {
		return err
	}
	s.settleOrder(ctx, payment.TenantID, payment.OrderID)
	return nil
}

// InitiateMpesaSTK starts a simulated M-Pesa STK push for the order total.
func (s *paymentService) InitiateMpesaSTK(ctx context.Context, tenantID, orderID uuid.UUID, phone string) (*PaymentInitResult, error) {
	if err := common.ValidateRequiredString(phone, "phone"); err != nil {
		return nil, common.NewValidationError("phone", err.Error())
	}

	order, err := s.orderRepo.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, common.NewValidationError("order_id",
			fmt.Sprintf("cannot collect payment for an order in status %q", order.Status))
	}

	shop, err := s.shopRepo.GetByID(ctx, tenantID, order.ShopID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:        uuid.New(),
		TenantID:  tenantID,
		OrderID:   orderID,
		Amount:    order.TotalAmount,
		Currency:  shop.Currency,
		Status:    models.PaymentStatusPending,
		Provider:  models.PaymentProviderMpesa,
		Reference: newReference(models.PaymentProviderMpesa),
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	// The reference doubles as the CheckoutRequestID the callback echoes.
	return &PaymentInitResult{Payment: payment, AccessCode: payment.Reference}, nil
}

// HandleMpesaCallback settles an STK push result. There is no signature on
// this callback; an unknown reference is simply rejected.
func (s *paymentService) HandleMpesaCallback(ctx context.Context, body []byte) error {
	var event mpesaCallbackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return common.NewValidationError("body", "malformed callback payload")
	}
	reference := event.Body.StkCallback.CheckoutRequestID
	if reference == "" {
		return common.NewValidationError("CheckoutRequestID", "CheckoutRequestID is required")
	}

	payment, err := s.paymentRepo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	if payment.Status == models.PaymentStatusCompleted {
		return nil // duplicate delivery
	}

	if event.Body.StkCallback.ResultCode != 0 {
		return s.paymentRepo.MarkFailed(ctx, reference, body)
	}
	if err := s.paymentRepo.MarkCompleted(ctx, reference, nil, body); err != nil {
		return err
	}
	s.settleOrder(ctx, payment.TenantID, payment.OrderID)
	return nil
}

func (s *paymentService) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error) {
	if _, err := s.orderRepo.GetByID(ctx, tenantID, orderID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByOrder(ctx, tenantID, orderID)
}

// settleOrder moves a paid order from pending to processing. Orders in any
// other state are left alone; a cancelled order stays cancelled even if a
// stale verification arrives.
func (s *paymentService) settleOrder(ctx context.Context, tenantID, orderID uuid.UUID) {
	order, err := s.orderRepo.GetByID(ctx, tenantID, orderID)
	if err != nil {
		log.Printf("WARN: could not load order %s after payment completion: %v", orderID, err)
		return
	}
	if order.Status != models.OrderStatusPending {
		return
	}
	if err := s.orderRepo.UpdateStatus(ctx, tenantID, orderID, models.OrderStatusProcessing, nil); err != nil {
		log.Printf("WARN: could not move order %s to processing after payment completion: %v", orderID, err)
	}
}
