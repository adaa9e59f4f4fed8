package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"devboma/internal/common"
	"devboma/internal/models"
	"devboma/internal/repositories"
)

// OrderItemInput is one cart line in an order request. The caller never
// supplies prices; unit prices are captured from the catalog at intake.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderInput is the order-intake request body.
type CreateOrderInput struct {
	ShopID          uuid.UUID        `json:"shop_id"`
	CustomerID      *uuid.UUID       `json:"customer_id"`
	Items           []OrderItemInput `json:"items"`
	ShippingAddress *string          `json:"shipping_address"`
	BillingAddress  *string          `json:"billing_address"`
	PaymentMethod   *string          `json:"payment_method"`
	Notes           *string          `json:"notes"`
}

// Pricing carries the tenant-independent pricing knobs: a flat shipping
// fee in minor units and a tax rate in basis points.
type Pricing struct {
	ShippingFlatFee int64
	TaxRateBasisPts int64
}

type OrderService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.OrderSearchFilter) ([]*models.Order, int, error)
	UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, status string, trackingNumber *string) (*models.Order, error)
	Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
}

type orderService struct {
	orderRepo    *repositories.OrderRepository
	productRepo  *repositories.ProductRepository
	shopRepo     *repositories.ShopRepository
	customerRepo *repositories.CustomerRepository
	pricing      Pricing
	writeTimeout time.Duration
}

func NewOrderService(
	orderRepo *repositories.OrderRepository,
	productRepo *repositories.ProductRepository,
	shopRepo *repositories.ShopRepository,
	customerRepo *repositories.CustomerRepository,
	pricing Pricing,
	writeTimeout time.Duration,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		shopRepo:     shopRepo,
		customerRepo: customerRepo,
		pricing:      pricing,
		writeTimeout: writeTimeout,
	}
}

const maxOrderQuantity = 10000

// Create validates the cart, captures current unit prices, computes totals
// in integer minor units, and hands the whole order to the repository as a
// single atomic write. Inventory is only decremented inside that write; the
// validation reads here never reserve stock.
func (s *orderService) Create(ctx context.Context, tenantID uuid.UUID, input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, common.NewValidationError("items", "order must contain at least one item")
	}
	seen := make(map[uuid.UUID]bool, len(input.Items))
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, common.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "product_id is required")
		}
		if err := common.ValidatePositiveInteger(item.Quantity, fmt.Sprintf("items[%d].quantity", i), maxOrderQuantity); err != nil {
			return nil, common.NewValidationError(fmt.Sprintf("items[%d].quantity", i), err.Error())
		}
		if seen[item.ProductID] {
			return nil, common.NewValidationError(fmt.Sprintf("items[%d].product_id", i), "duplicate product in order")
		}
		seen[item.ProductID] = true
	}

	shop, err := s.shopRepo.GetByID(ctx, tenantID, input.ShopID)
	if errors.Is(err, repositories.ErrShopNotFound) {
		return nil, common.NewValidationError("shop_id", "shop not found")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	if shop.Status != "active" {
		return nil, common.NewValidationError("shop_id", "shop is not active")
	}

	if input.CustomerID != nil {
		if _, err := s.customerRepo.GetByID(ctx, tenantID, *input.CustomerID); err != nil {
			if errors.Is(err, repositories.ErrCustomerNotFound) {
				return nil, common.NewValidationError("customer_id", "customer not found")
			}
			return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}
	}

	order := &models.Order{
		ID:              uuid.New(),
		TenantID:        tenantID,
		ShopID:          input.ShopID,
		CustomerID:      input.CustomerID,
		Status:          models.OrderStatusPending,
		ShippingAddress: input.ShippingAddress,
		BillingAddress:  input.BillingAddress,
		PaymentMethod:   input.PaymentMethod,
		Notes:           input.Notes,
	}

	// Price capture: the unit price on each line is the catalog price at
	// intake time, so later catalog edits never change an existing order.
	var subtotal int64
	for _, item := range input.Items {
		product, err := s.productRepo.GetByID(ctx, tenantID, item.ProductID)
		if err != nil {
			if errors.Is(err, common.ErrProductNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
		}
		if product.ShopID != input.ShopID {
			return nil, common.ErrProductNotFound
		}
		// Early shortfall check so the failure is reported for the first
		// offending line. The conditional decrement at write time stays
		// authoritative; stock can still move between here and the commit.
		if item.Quantity > product.Inventory {
			return nil, &common.InsufficientInventoryError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Inventory,
				Requested:   item.Quantity,
			}
		}
		lineTotal := product.Price * int64(item.Quantity)
		subtotal += lineTotal
		order.Items = append(order.Items, &models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: lineTotal,
		})
	}

	order.Subtotal = subtotal
	order.ShippingCost = s.pricing.ShippingFlatFee
	order.TaxAmount = subtotal * s.pricing.TaxRateBasisPts / 10000
	order.TotalAmount = order.Subtotal + order.ShippingCost + order.TaxAmount

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err := s.orderRepo.CreateWithItems(writeCtx, order); err != nil {
		var insufficientErr *common.InsufficientInventoryError
		if errors.Is(err, common.ErrProductNotFound) || errors.As(err, &insufficientErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return order, nil
}

func (s *orderService) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, tenantID, orderID)
}

func (s *orderService) List(ctx context.Context, tenantID uuid.UUID, filter models.OrderSearchFilter) ([]*models.Order, int, error) {
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewValidationError("offset", err.Error())
	}
	filter.Limit = limit
	filter.Offset = offset

	if filter.Status != nil && !models.ValidOrderStatus(*filter.Status) {
		return nil, 0, common.NewValidationError("status", "unknown order status")
	}

	orders, err := s.orderRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Allowed forward transitions. Cancellation goes through Cancel so stock is
// returned in the same transaction.
var orderTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusProcessing},
	models.OrderStatusProcessing: {models.OrderStatusShipped},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
	models.OrderStatusDelivered:  {models.OrderStatusRefunded},
}

func (s *orderService) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, status string, trackingNumber *string) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, common.NewValidationError("status", "unknown order status")
	}
	if status == models.OrderStatusCancelled {
		return nil, common.NewValidationError("status", "use the cancel operation to cancel an order")
	}

	order, err := s.orderRepo.GetByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range orderTransitions[order.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, common.NewValidationError("status",
			fmt.Sprintf("cannot move order from %q to %q", order.Status, status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, tenantID, orderID, status, trackingNumber); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, tenantID, orderID)
}

func (s *orderService) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	if err := s.orderRepo.Cancel(writeCtx, tenantID, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, tenantID, orderID)
}
