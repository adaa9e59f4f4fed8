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

type ProductRepository struct {
	db Database
}

func NewProductRepository(db Database) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, tenant_id, shop_id, name, description, price, compare_price,
	cost, sku, inventory, images, category, status, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.TenantID, &p.ShopID, &p.Name, &p.Description,
		&p.Price, &p.ComparePrice, &p.Cost, &p.SKU, &p.Inventory,
		&p.Images, &p.Category, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, tenant_id, shop_id, name, description, price,
			compare_price, cost, sku, inventory, images, category, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at`,
		product.ID, product.TenantID, product.ShopID, product.Name,
		product.Description, product.Price, product.ComparePrice, product.Cost,
		product.SKU, product.Inventory, product.Images, product.Category,
		product.Status).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, tenantID, productID uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`,
		tenantID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $3, description = $4, price = $5, compare_price = $6, cost = $7,
			sku = $8, images = $9, category = $10, status = $11, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		product.TenantID, product.ID, product.Name, product.Description,
		product.Price, product.ComparePrice, product.Cost, product.SKU,
		product.Images, product.Category, product.Status)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM products WHERE tenant_id = $1 AND id = $2`,
		tenantID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrProductNotFound
	}
	return nil
}

// List returns products for a tenant matching the filter.
func (r *ProductRepository) List(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) ([]*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)",
			argPos, argPos, argPos)
		args = append(args, "%"+filter.Query+"%")
		argPos++
	}
	if filter.ShopID != nil {
		query += fmt.Sprintf(" AND shop_id = $%d", argPos)
		args = append(args, *filter.ShopID)
		argPos++
	}
	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, *filter.Category)
		argPos++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}
	if filter.MinPrice != nil {
		query += fmt.Sprintf(" AND price >= $%d", argPos)
		args = append(args, *filter.MinPrice)
		argPos++
	}
	if filter.MaxPrice != nil {
		query += fmt.Sprintf(" AND price <= $%d", argPos)
		args = append(args, *filter.MaxPrice)
		argPos++
	}

	sortBy := "created_at"
	switch filter.SortBy {
	case "name", "price", "inventory", "created_at":
		sortBy = filter.SortBy
	}
	sortOrder := "DESC"
	if filter.SortOrder == "asc" {
		sortOrder = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s LIMIT $%d OFFSET $%d", sortBy, sortOrder, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p := &models.Product{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.ShopID, &p.Name, &p.Description,
			&p.Price, &p.ComparePrice, &p.Cost, &p.SKU, &p.Inventory,
			&p.Images, &p.Category, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Count(ctx context.Context, tenantID uuid.UUID, filter models.ProductSearchFilter) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d OR sku ILIKE $%d)",
			argPos, argPos, argPos)
		args = append(args, "%"+filter.Query+"%")
		argPos++
	}
	if filter.ShopID != nil {
		query += fmt.Sprintf(" AND shop_id = $%d", argPos)
		args = append(args, *filter.ShopID)
		argPos++
	}
	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argPos)
		args = append(args, *filter.Category)
		argPos++
	}
	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filter.Status)
		argPos++
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// SetInventory replaces the product's inventory with an absolute value and
// returns the new level.
func (r *ProductRepository) SetInventory(ctx context.Context, tenantID, productID uuid.UUID, quantity int) (int, error) {
	var inventory int
	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET inventory = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING inventory`,
		tenantID, productID, quantity).Scan(&inventory)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, common.ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to set inventory: %w", err)
	}
	return inventory, nil
}

// AddInventory applies a relative delta and returns the new level. Negative
// deltas are guarded so manual adjustments cannot take inventory below zero
// either.
func (r *ProductRepository) AddInventory(ctx context.Context, tenantID, productID uuid.UUID, delta int) (int, error) {
	var inventory int
	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET inventory = inventory + $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND inventory + $3 >= 0
		RETURNING inventory`,
		tenantID, productID, delta).Scan(&inventory)
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing product from an underflow rejection.
		var name string
		var available int
		probeErr := r.db.QueryRow(ctx,
			`SELECT name, inventory FROM products WHERE tenant_id = $1 AND id = $2`,
			tenantID, productID).Scan(&name, &available)
		if errors.Is(probeErr, pgx.ErrNoRows) {
			return 0, common.ErrProductNotFound
		}
		if probeErr != nil {
			return 0, fmt.Errorf("failed to inspect product: %w", probeErr)
		}
		return 0, &common.InsufficientInventoryError{
			ProductID:   productID,
			ProductName: name,
			Available:   available,
			Requested:   -delta,
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to adjust inventory: %w", err)
	}
	return inventory, nil
}

// AddImage appends an uploaded image URL to the product's gallery.
func (r *ProductRepository) AddImage(ctx context.Context, tenantID, productID uuid.UUID, url string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET images = array_append(images, $3), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, productID, url)
	if err != nil {
		return fmt.Errorf("failed to add product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrProductNotFound
	}
	return nil
}
