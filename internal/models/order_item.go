package models

import "github.com/google/uuid"

// OrderItem captures the unit price at order time; later product price
// changes never affect an existing order. Immutable after creation and
// cascade-owned by its order.
type OrderItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	LineTotal int64     `json:"line_total" db:"line_total"`
}
