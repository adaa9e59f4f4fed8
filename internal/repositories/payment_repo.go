package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboma/internal/models"
)

// ErrPaymentNotFound is returned when no payment matches the reference.
var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db Database
}

func NewPaymentRepository(db Database) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (id, tenant_id, order_id, amount, currency, status,
			provider, reference, provider_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`,
		payment.ID, payment.TenantID, payment.OrderID, payment.Amount,
		payment.Currency, payment.Status, payment.Provider, payment.Reference,
		payment.ProviderReference).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	payment := &models.Payment{}
	err := r.db.QueryRow(ctx, `
		SELECT id, tenant_id, order_id, amount, currency, status, provider, reference,
			provider_reference, verification_data, verified_at, created_at, updated_at
		FROM payments WHERE reference = $1`,
		reference).Scan(&payment.ID, &payment.TenantID, &payment.OrderID,
		&payment.Amount, &payment.Currency, &payment.Status, &payment.Provider,
		&payment.Reference, &payment.ProviderReference, &payment.VerificationData,
		&payment.VerifiedAt, &payment.CreatedAt, &payment.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (r *PaymentRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]*models.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, order_id, amount, currency, status, provider, reference,
			provider_reference, verification_data, verified_at, created_at, updated_at
		FROM payments
		WHERE tenant_id = $1 AND order_id = $2
		ORDER BY created_at DESC`,
		tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.TenantID, &p.OrderID, &p.Amount, &p.Currency,
			&p.Status, &p.Provider, &p.Reference, &p.ProviderReference,
			&p.VerificationData, &p.VerifiedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// MarkCompleted records a successful verification, keeping the raw gateway
// payload for audit.
func (r *PaymentRepository) MarkCompleted(ctx context.Context, reference string, providerReference *string, verificationData []byte) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $2, provider_reference = COALESCE($3, provider_reference),
			verification_data = $4, verified_at = NOW(), updated_at = NOW()
		WHERE reference = $1`,
		reference, models.PaymentStatusCompleted, providerReference, verificationData)
	if err != nil {
		return fmt.Errorf("failed to mark payment completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, reference string, verificationData []byte) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $2, verification_data = $3, updated_at = NOW()
		WHERE reference = $1`,
		reference, models.PaymentStatusFailed, verificationData)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
