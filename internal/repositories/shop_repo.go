package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboma/internal/models"
)

// ErrShopNotFound is returned when a shop does not exist for the tenant.
var ErrShopNotFound = errors.New("shop not found")

type ShopRepository struct {
	db Database
}

func NewShopRepository(db Database) *ShopRepository {
	return &ShopRepository{db: db}
}

func (r *ShopRepository) Create(ctx context.Context, shop *models.Shop) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO shops (id, tenant_id, name, slug, description, currency, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`,
		shop.ID, shop.TenantID, shop.Name, shop.Slug, shop.Description,
		shop.Currency, shop.Status).Scan(&shop.CreatedAt, &shop.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *ShopRepository) GetByID(ctx context.Context, tenantID, shopID uuid.UUID) (*models.Shop, error) {
	shop := &models.Shop{}
	err := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, slug, description, currency, status, created_at, updated_at
		FROM shops WHERE tenant_id = $1 AND id = $2`,
		tenantID, shopID).Scan(&shop.ID, &shop.TenantID, &shop.Name, &shop.Slug,
		&shop.Description, &shop.Currency, &shop.Status, &shop.CreatedAt, &shop.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return shop, nil
}

func (r *ShopRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shop, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, name, slug, description, currency, status, created_at, updated_at
		FROM shops
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	defer rows.Close()

	var shops []*models.Shop
	for rows.Next() {
		s := &models.Shop{}
		if err := rows.Scan(&s.ID, &s.TenantID, &s.Name, &s.Slug, &s.Description,
			&s.Currency, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, s)
	}
	return shops, rows.Err()
}

func (r *ShopRepository) Update(ctx context.Context, shop *models.Shop) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shops
		SET name = $3, slug = $4, description = $5, currency = $6, status = $7, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		shop.TenantID, shop.ID, shop.Name, shop.Slug, shop.Description,
		shop.Currency, shop.Status)
	if err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}

func (r *ShopRepository) Delete(ctx context.Context, tenantID, shopID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM shops WHERE tenant_id = $1 AND id = $2`,
		tenantID, shopID)
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrShopNotFound
	}
	return nil
}
