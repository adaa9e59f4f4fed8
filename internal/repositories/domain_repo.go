package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboma/internal/models"
)

// ErrDomainNotFound is returned when a domain does not exist for the tenant.
var ErrDomainNotFound = errors.New("domain not found")

type DomainRepository struct {
	db Database
}

func NewDomainRepository(db Database) *DomainRepository {
	return &DomainRepository{db: db}
}

func (r *DomainRepository) Create(ctx context.Context, domain *models.Domain) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO domains (id, tenant_id, shop_id, hostname, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`,
		domain.ID, domain.TenantID, domain.ShopID, domain.Hostname, domain.Verified).
		Scan(&domain.CreatedAt, &domain.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create domain: %w", err)
	}
	return nil
}

func (r *DomainRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Domain, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, shop_id, hostname, verified, created_at, updated_at
		FROM domains
		WHERE tenant_id = $1
		ORDER BY created_at DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []*models.Domain
	for rows.Next() {
		d := &models.Domain{}
		if err := rows.Scan(&d.ID, &d.TenantID, &d.ShopID, &d.Hostname,
			&d.Verified, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

func (r *DomainRepository) GetByHostname(ctx context.Context, hostname string) (*models.Domain, error) {
	d := &models.Domain{}
	err := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, shop_id, hostname, verified, created_at, updated_at
		FROM domains WHERE hostname = $1`,
		hostname).Scan(&d.ID, &d.TenantID, &d.ShopID, &d.Hostname,
		&d.Verified, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDomainNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}
	return d, nil
}

func (r *DomainRepository) SetVerified(ctx context.Context, tenantID, domainID uuid.UUID, verified bool) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE domains SET verified = $3, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, domainID, verified)
	if err != nil {
		return fmt.Errorf("failed to update domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}

func (r *DomainRepository) Delete(ctx context.Context, tenantID, domainID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM domains WHERE tenant_id = $1 AND id = $2`,
		tenantID, domainID)
	if err != nil {
		return fmt.Errorf("failed to delete domain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDomainNotFound
	}
	return nil
}
