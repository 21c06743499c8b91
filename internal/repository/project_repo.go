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

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int64, error) {
	r.logger.Debug("Inserting project",
		zap.String("name", p.Name),
		zap.String("location", p.Location),
	)

	query := `
        INSERT INTO projects (name, location, start_date, end_date, status, progress)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		p.Name,
		p.Location,
		p.StartDate,
		p.EndDate,
		p.Status,
		p.Progress,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert project", zap.Error(err))
		return 0, fmt.Errorf("failed to insert project: %w", err)
	}

	r.logger.Info("Project inserted successfully",
		zap.Int64("id", id),
		zap.String("name", p.Name),
	)
	return id, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	query := `
        SELECT id, name, location, start_date, end_date, status, progress, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Location,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.Progress,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	query := `
        SELECT id, name, location, start_date, end_date, status, progress, created_at, updated_at
        FROM projects
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Location,
			&p.StartDate,
			&p.EndDate,
			&p.Status,
			&p.Progress,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *model.Project) error {
	query := `
        UPDATE projects
        SET name = $2, location = $3, start_date = $4, end_date = $5, status = $6, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Location, p.StartDate, p.EndDate, p.Status)
	if err != nil {
		r.logger.Error("Failed to update project", zap.Int64("id", p.ID), zap.Error(err))
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateProgress persists the derived (or manually overridden) percentage in
// full float precision.
func (r *ProjectRepository) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	query := `
        UPDATE projects
        SET progress = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, progress)
	if err != nil {
		r.logger.Error("Failed to update project progress",
			zap.Int64("id", id),
			zap.Float64("progress", progress),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update project progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete project", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Project deleted", zap.Int64("id", id))
	return nil
}
