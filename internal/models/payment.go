package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment statuses and providers.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"

	PaymentProviderPaystack = "paystack"
	PaymentProviderMpesa    = "mpesa"
	PaymentProviderManual   = "manual"
)

// Payment records one gateway attempt against an order. An order may have
// several attempts; Reference is unique across all of them.
type Payment struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	TenantID          uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	OrderID           uuid.UUID  `json:"order_id" db:"order_id"`
	Amount            int64      `json:"amount" db:"amount"`
	Currency          string     `json:"currency" db:"currency"`
	Status            string     `json:"status" db:"status"`
	Provider          string     `json:"provider" db:"provider"`
	Reference         string     `json:"reference" db:"reference"`
	ProviderReference *string    `json:"provider_reference" db:"provider_reference"`
	VerificationData  []byte     `json:"-" db:"verification_data"`
	VerifiedAt        *time.Time `json:"verified_at" db:"verified_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
