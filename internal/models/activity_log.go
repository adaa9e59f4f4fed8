package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLog records a mutating API action for audit purposes.
type ActivityLog struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	TenantID   *uuid.UUID `json:"tenant_id" db:"tenant_id"`
	UserID     *uuid.UUID `json:"user_id" db:"user_id"`
	Action     string     `json:"action" db:"action"`
	EntityType string     `json:"entity_type" db:"entity_type"`
	EntityID   *string    `json:"entity_id" db:"entity_id"`
	Detail     *string    `json:"detail" db:"detail"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}
