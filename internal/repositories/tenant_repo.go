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

type TenantRepository struct {
	db Database
}

func NewTenantRepository(db Database) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO tenants (id, name, email, plan, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`,
		tenant.ID, tenant.Name, tenant.Email, tenant.Plan, tenant.Status).
		Scan(&tenant.CreatedAt, &tenant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

func (r *TenantRepository) GetByID(ctx context.Context, tenantID uuid.UUID) (*models.Tenant, error) {
	tenant := &models.Tenant{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email, plan, status, created_at, updated_at
		FROM tenants WHERE id = $1`,
		tenantID).Scan(&tenant.ID, &tenant.Name, &tenant.Email, &tenant.Plan,
		&tenant.Status, &tenant.CreatedAt, &tenant.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrTenantMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, plan, status, created_at, updated_at
		FROM tenants
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []*models.Tenant
	for rows.Next() {
		t := &models.Tenant{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Plan, &t.Status,
			&t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *TenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tenants
		SET name = $2, email = $3, plan = $4, status = $5, updated_at = NOW()
		WHERE id = $1`,
		tenant.ID, tenant.Name, tenant.Email, tenant.Plan, tenant.Status)
	if err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrTenantMismatch
	}
	return nil
}
