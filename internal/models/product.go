package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductSearchFilter holds search and filter criteria for product queries
type ProductSearchFilter struct {
	Query     string     `json:"query,omitempty"`      // Full-text search across name, description, sku
	ShopID    *uuid.UUID `json:"shop_id,omitempty"`    // Filter by shop
	Category  *string    `json:"category,omitempty"`   // Category filter
	Status    *string    `json:"status,omitempty"`     // Status filter (active, draft, archived)
	MinPrice  *int64     `json:"min_price,omitempty"`  // Minimum unit price (minor units)
	MaxPrice  *int64     `json:"max_price,omitempty"`  // Maximum unit price (minor units)
	SortBy    string     `json:"sort_by,omitempty"`    // Sort field: name, created_at, price, inventory
	SortOrder string     `json:"sort_order,omitempty"` // Sort order: asc, desc
	Limit     int        `json:"limit,omitempty"`      // Page size (default: 50)
	Offset    int        `json:"offset,omitempty"`     // Page offset
}

// Product belongs to a tenant's shop. All money fields are integer minor
// units (cents); Inventory is the sellable quantity and never goes negative
// through order creation.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ShopID       uuid.UUID `json:"shop_id" db:"shop_id"`
	Name         string    `json:"name" db:"name"`
	Description  *string   `json:"description" db:"description"`
	Price        int64     `json:"price" db:"price"`
	ComparePrice *int64    `json:"compare_price" db:"compare_price"`
	Cost         *int64    `json:"cost" db:"cost"`
	SKU          *string   `json:"sku" db:"sku"`
	Inventory    int       `json:"inventory" db:"inventory"`
	Images       []string  `json:"images" db:"images"`
	Category     *string   `json:"category" db:"category"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
