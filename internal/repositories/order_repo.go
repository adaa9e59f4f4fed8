package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboma/internal/common"
	"devboma/internal/models"
)

type OrderRepository struct {
	db TxDatabase
}

func NewOrderRepository(db TxDatabase) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateWithItems persists the order, its items, and the inventory
// decrements for every line as one transaction. Each decrement is
// conditional on sufficient stock, so concurrent orders for the same
// product cannot drive inventory negative: the losing transaction sees
// zero affected rows and the whole order rolls back.
func (r *OrderRepository) CreateWithItems(ctx context.Context, order *models.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range order.Items {
		tag, err := tx.Exec(ctx, `
			UPDATE products
			SET inventory = inventory - $3, updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2 AND inventory >= $3`,
			order.TenantID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to decrement inventory: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var name string
			var available int
			err := tx.QueryRow(ctx,
				`SELECT name, inventory FROM products WHERE tenant_id = $1 AND id = $2`,
				order.TenantID, item.ProductID).Scan(&name, &available)
			if errors.Is(err, pgx.ErrNoRows) {
				return common.ErrProductNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to inspect product %s: %w", item.ProductID, err)
			}
			return &common.InsufficientInventoryError{
				ProductID:   item.ProductID,
				ProductName: name,
				Available:   available,
				Requested:   item.Quantity,
			}
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (id, tenant_id, shop_id, customer_id, subtotal, shipping_cost,
			tax_amount, total_amount, status, shipping_address, billing_address,
			payment_method, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at`,
		order.ID, order.TenantID, order.ShopID, order.CustomerID,
		order.Subtotal, order.ShippingCost, order.TaxAmount, order.TotalAmount,
		order.Status, order.ShippingAddress, order.BillingAddress,
		order.PaymentMethod, order.Notes).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range order.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.LineTotal)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order transaction: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, shop_id, customer_id, subtotal, shipping_cost, tax_amount,
			total_amount, status, shipping_address, billing_address, payment_method,
			tracking_number, notes, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, orderID).Scan(
		&order.ID, &order.TenantID, &order.ShopID, &order.CustomerID,
		&order.Subtotal, &order.ShippingCost, &order.TaxAmount, &order.TotalAmount,
		&order.Status, &order.ShippingAddress, &order.BillingAddress,
		&order.PaymentMethod, &order.TrackingNumber, &order.Notes,
		&order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.GetItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) GetItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, line_total
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// List returns orders for a tenant matching the filter, newest first.
// Items are not loaded; use GetByID for the full order.
func (r *OrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.OrderSearchFilter) ([]*models.Order, error) {
	query := `
		SELECT id, tenant_id, shop_id, customer_id, subtotal, shipping_cost, tax_amount,
			total_amount, status, shipping_address, billing_address, payment_method,
			tracking_number, notes, created_at, updated_at
		FROM orders
		WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argPos)
		args = append(args, *filter.CustomerID)
		argPos++
	}
	if filter.ShopID != nil {
		query += fmt.Sprintf(" AND shop_id = $%d", argPos)
		args = append(args, *filter.ShopID)
		argPos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argPos)
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argPos)
		args = append(args, *filter.To)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(
			&order.ID, &order.TenantID, &order.ShopID, &order.CustomerID,
			&order.Subtotal, &order.ShippingCost, &order.TaxAmount, &order.TotalAmount,
			&order.Status, &order.ShippingAddress, &order.BillingAddress,
			&order.PaymentMethod, &order.TrackingNumber, &order.Notes,
			&order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Count(ctx context.Context, tenantID uuid.UUID, filter models.OrderSearchFilter) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.CustomerID != nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argPos)
		args = append(args, *filter.CustomerID)
		argPos++
	}
	if filter.ShopID != nil {
		query += fmt.Sprintf(" AND shop_id = $%d", argPos)
		args = append(args, *filter.ShopID)
		argPos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argPos)
		args = append(args, *filter.From)
		argPos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argPos)
		args = append(args, *filter.To)
		argPos++
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, tenantID, orderID uuid.UUID, status string, trackingNumber *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3, tracking_number = COALESCE($4, tracking_number), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, orderID, status, trackingNumber)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrOrderNotFound
	}
	return nil
}

// Cancel marks the order cancelled and returns its items' quantities to
// inventory, in one transaction. Only pending and processing orders can
// be cancelled; later stages have already left the warehouse.
func (r *OrderRepository) Cancel(ctx context.Context, tenantID, orderID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin cancel transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE tenant_id = $1 AND id = $2 FOR UPDATE`,
		tenantID, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return common.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock order: %w", err)
	}
	if status != models.OrderStatusPending && status != models.OrderStatusProcessing {
		return common.NewValidationError("status",
			fmt.Sprintf("cannot cancel an order in status %q", status))
	}

	rows, err := tx.Query(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id = $1`,
		orderID)
	if err != nil {
		return fmt.Errorf("failed to load items for restock: %w", err)
	}
	type restock struct {
		productID uuid.UUID
		quantity  int
	}
	var restocks []restock
	for rows.Next() {
		var rs restock
		if err := rows.Scan(&rs.productID, &rs.quantity); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan restock item: %w", err)
		}
		restocks = append(restocks, rs)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load items for restock: %w", err)
	}

	for _, rs := range restocks {
		// Deleted products simply skip the restock; zero affected rows is fine.
		_, err := tx.Exec(ctx, `
			UPDATE products
			SET inventory = inventory + $3, updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2`,
			tenantID, rs.productID, rs.quantity)
		if err != nil {
			return fmt.Errorf("failed to restock product %s: %w", rs.productID, err)
		}
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`,
		tenantID, orderID, models.OrderStatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cancel transaction: %w", err)
	}
	return nil
}
