package models

import (
	"time"

	"github.com/google/uuid"
)

// Domain is a custom hostname mapped to a tenant's shop.
type Domain struct {
	ID        uuid.UUID `json:"id" db:"id"`
	TenantID  uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ShopID    uuid.UUID `json:"shop_id" db:"shop_id"`
	Hostname  string    `json:"hostname" db:"hostname"`
	Verified  bool      `json:"verified" db:"verified"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
