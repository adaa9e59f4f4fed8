package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboma/internal/models"
)

// ErrCustomerNotFound is returned when a customer does not exist for the tenant.
var ErrCustomerNotFound = errors.New("customer not found")

type CustomerRepository struct {
	db Database
}

func NewCustomerRepository(db Database) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO customers (id, tenant_id, shop_id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`,
		customer.ID, customer.TenantID, customer.ShopID, customer.Name,
		customer.Email, customer.Phone).Scan(&customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	err := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, shop_id, name, email, phone, created_at, updated_at
		FROM customers WHERE tenant_id = $1 AND id = $2`,
		tenantID, customerID).Scan(&customer.ID, &customer.TenantID, &customer.ShopID,
		&customer.Name, &customer.Email, &customer.Phone,
		&customer.CreatedAt, &customer.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// List returns customers for a tenant, optionally matching a name/email
// search term.
func (r *CustomerRepository) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT id, tenant_id, shop_id, name, email, phone, created_at, updated_at
		FROM customers
		WHERE tenant_id = $1`
	args := []any{tenantID}
	argPos := 2

	if search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+search+"%")
		argPos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c := &models.Customer{}
		if err := rows.Scan(&c.ID, &c.TenantID, &c.ShopID, &c.Name, &c.Email,
			&c.Phone, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET shop_id = $3, name = $4, email = $5, phone = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`,
		customer.TenantID, customer.ID, customer.ShopID, customer.Name,
		customer.Email, customer.Phone)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM customers WHERE tenant_id = $1 AND id = $2`,
		tenantID, customerID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
