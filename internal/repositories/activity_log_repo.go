package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"devboma/internal/models"
)

type ActivityLogRepository struct {
	db Database
}

func NewActivityLogRepository(db Database) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO activity_logs (id, tenant_id, user_id, action, entity_type, entity_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		entry.ID, entry.TenantID, entry.UserID, entry.Action, entry.EntityType,
		entry.EntityID, entry.Detail)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *ActivityLogRepository) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, user_id, action, entity_type, entity_id, detail, created_at
		FROM activity_logs
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityLog
	for rows.Next() {
		e := &models.ActivityLog{}
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.Action,
			&e.EntityType, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
