package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
)

type NotificationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) (int64, error) {
	query := `
        INSERT INTO notifications
            (kind, team_assignment_id, project_id, unit_id, category_id, team_id, days, message)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		n.Kind,
		n.TeamAssignmentID,
		n.ProjectID,
		n.UnitID,
		n.CategoryID,
		n.TeamID,
		n.Days,
		n.Message,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert notification", zap.Error(err))
		return 0, fmt.Errorf("failed to insert notification: %w", err)
	}

	return id, nil
}

func (r *NotificationRepository) ListRecent(ctx context.Context, limit int) ([]model.Notification, error) {
	query := `
        SELECT id, kind, team_assignment_id, project_id, unit_id, category_id,
               team_id, days, message, created_at
        FROM notifications
        ORDER BY created_at DESC
        LIMIT $1
    `
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.Kind,
			&n.TeamAssignmentID,
			&n.ProjectID,
			&n.UnitID,
			&n.CategoryID,
			&n.TeamID,
			&n.Days,
			&n.Message,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// DeleteOlderThan prunes the derived alert cache; rows are re-derivable from a
// fresh scan.
func (r *NotificationRepository) DeleteOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM notifications WHERE created_at < NOW() - ($1 || ' days')::interval`,
		fmt.Sprintf("%d", days),
	)
	if err != nil {
		r.logger.Error("Failed to prune notifications", zap.Error(err))
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
