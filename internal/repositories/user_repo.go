package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"devboma/internal/models"
)

// ErrUserNotFound is returned when no account matches the identity.
var ErrUserNotFound = errors.New("user not found")

type UserRepository struct {
	db Database
}

func NewUserRepository(db Database) *UserRepository {
	return &UserRepository{db: db}
}

// GetBySubject resolves the identity provider's sub claim to a local account.
func (r *UserRepository) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, subject, email, name, role, tenant_id, created_at, updated_at
		FROM users WHERE subject = $1`,
		subject).Scan(&user.ID, &user.Subject, &user.Email, &user.Name,
		&user.Role, &user.TenantID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by subject: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, subject, email, name, role, tenant_id, created_at, updated_at
		FROM users WHERE id = $1`,
		userID).Scan(&user.ID, &user.Subject, &user.Email, &user.Name,
		&user.Role, &user.TenantID, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (id, subject, email, name, role, tenant_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`,
		user.ID, user.Subject, user.Email, user.Name, user.Role, user.TenantID).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
