package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderSearchFilter holds filter criteria for order listings
type OrderSearchFilter struct {
	Status     *string    `json:"status,omitempty"`      // Status filter
	CustomerID *uuid.UUID `json:"customer_id,omitempty"` // Customer filter
	ShopID     *uuid.UUID `json:"shop_id,omitempty"`     // Shop filter
	From       *time.Time `json:"from,omitempty"`        // Created-at lower bound
	To         *time.Time `json:"to,omitempty"`          // Created-at upper bound
	Limit      int        `json:"limit,omitempty"`       // Page size (default: 10)
	Offset     int        `json:"offset,omitempty"`      // Page offset
}

// Order is created atomically with its items; money fields are minor units.
// Invariant: TotalAmount = Subtotal + ShippingCost + TaxAmount.
type Order struct {
	ID              uuid.UUID    `json:"id" db:"id"`
	TenantID        uuid.UUID    `json:"tenant_id" db:"tenant_id"`
	ShopID          uuid.UUID    `json:"shop_id" db:"shop_id"`
	CustomerID      *uuid.UUID   `json:"customer_id" db:"customer_id"`
	Subtotal        int64        `json:"subtotal" db:"subtotal"`
	ShippingCost    int64        `json:"shipping_cost" db:"shipping_cost"`
	TaxAmount       int64        `json:"tax_amount" db:"tax_amount"`
	TotalAmount     int64        `json:"total_amount" db:"total_amount"`
	Status          string       `json:"status" db:"status"`
	ShippingAddress *string      `json:"shipping_address" db:"shipping_address"`
	BillingAddress  *string      `json:"billing_address" db:"billing_address"`
	PaymentMethod   *string      `json:"payment_method" db:"payment_method"`
	TrackingNumber  *string      `json:"tracking_number" db:"tracking_number"`
	Notes           *string      `json:"notes" db:"notes"`
	Items           []*OrderItem `json:"items,omitempty" db:"-"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}
