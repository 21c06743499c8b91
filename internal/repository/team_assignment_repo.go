package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
)

type TeamAssignmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTeamAssignmentRepository(db *pgxpool.Pool, logger *zap.Logger) *TeamAssignmentRepository {
	return &TeamAssignmentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TeamAssignmentRepository) Insert(ctx context.Context, a *model.TeamAssignment) (int64, error) {
	r.logger.Debug("Inserting team assignment",
		zap.Int64("category_id", a.CategoryID),
		zap.Int64("team_id", a.TeamID),
	)

	query := `
        INSERT INTO team_assignments
            (category_id, team_id, status, progress, reception_status, payment_status, notes, tasks)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		a.CategoryID,
		a.TeamID,
		a.Status,
		a.Progress,
		a.ReceptionStatus,
		a.PaymentStatus,
		a.Notes,
		a.Tasks,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert team assignment", zap.Error(err))
		return 0, fmt.Errorf("failed to insert team assignment: %w", err)
	}

	r.logger.Info("Team assignment inserted successfully",
		zap.Int64("id", id),
		zap.Int64("category_id", a.CategoryID),
		zap.Int64("team_id", a.TeamID),
	)
	return id, nil
}

func (r *TeamAssignmentRepository) GetByID(ctx context.Context, id int64) (*model.TeamAssignment, error) {
	query := `
        SELECT id, category_id, team_id, status, progress, reception_status,
               payment_status, notes, tasks, created_at, updated_at
        FROM team_assignments
        WHERE id = $1
    `
	var a model.TeamAssignment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.CategoryID,
		&a.TeamID,
		&a.Status,
		&a.Progress,
		&a.ReceptionStatus,
		&a.PaymentStatus,
		&a.Notes,
		&a.Tasks,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get team assignment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get team assignment: %w", err)
	}
	return &a, nil
}

func (r *TeamAssignmentRepository) ListByCategory(ctx context.Context, categoryID int64) ([]model.TeamAssignment, error) {
	query := `
        SELECT id, category_id, team_id, status, progress, reception_status,
               payment_status, notes, tasks, created_at, updated_at
        FROM team_assignments
        WHERE category_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, categoryID)
	if err != nil {
		r.logger.Error("Failed to list team assignments",
			zap.Int64("category_id", categoryID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to list team assignments: %w", err)
	}
	defer rows.Close()

	var assignments []model.TeamAssignment
	for rows.Next() {
		var a model.TeamAssignment
		if err := rows.Scan(
			&a.ID,
			&a.CategoryID,
			&a.TeamID,
			&a.Status,
			&a.Progress,
			&a.ReceptionStatus,
			&a.PaymentStatus,
			&a.Notes,
			&a.Tasks,
			&a.CreatedAt,
			&a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *TeamAssignmentRepository) Update(ctx context.Context, a *model.TeamAssignment) error {
	query := `
        UPDATE team_assignments
        SET status = $2, progress = $3, reception_status = $4, payment_status = $5,
            notes = $6, tasks = $7, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query,
		a.ID,
		a.Status,
		a.Progress,
		a.ReceptionStatus,
		a.PaymentStatus,
		a.Notes,
		a.Tasks,
	)
	if err != nil {
		r.logger.Error("Failed to update team assignment", zap.Int64("id", a.ID), zap.Error(err))
		return fmt.Errorf("failed to update team assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatusProgress writes the status/progress pair in one statement so a
// cascade that follows reads the committed pair, never half of it.
func (r *TeamAssignmentRepository) UpdateStatusProgress(ctx context.Context, id int64, status string, progress float64) error {
	query := `
        UPDATE team_assignments
        SET status = $2, progress = $3, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, status, progress)
	if err != nil {
		r.logger.Error("Failed to update assignment status/progress",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Float64("progress", progress),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update assignment status/progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeamAssignmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM team_assignments WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete team assignment", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete team assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Team assignment deleted", zap.Int64("id", id))
	return nil
}
