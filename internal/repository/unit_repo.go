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

type UnitRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUnitRepository(db *pgxpool.Pool, logger *zap.Logger) *UnitRepository {
	return &UnitRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UnitRepository) Insert(ctx context.Context, u *model.Unit) (int64, error) {
	r.logger.Debug("Inserting unit",
		zap.Int64("project_id", u.ProjectID),
		zap.String("name", u.Name),
	)

	query := `
        INSERT INTO units (project_id, name, type, floor, area, progress)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		u.ProjectID,
		u.Name,
		u.Type,
		u.Floor,
		u.Area,
		u.Progress,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert unit", zap.Error(err))
		return 0, fmt.Errorf("failed to insert unit: %w", err)
	}

	r.logger.Info("Unit inserted successfully",
		zap.Int64("id", id),
		zap.Int64("project_id", u.ProjectID),
	)
	return id, nil
}

func (r *UnitRepository) GetByID(ctx context.Context, id int64) (*model.Unit, error) {
	query := `
        SELECT id, project_id, name, type, floor, area, progress, created_at, updated_at
        FROM units
        WHERE id = $1
    `
	var u model.Unit
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.ProjectID,
		&u.Name,
		&u.Type,
		&u.Floor,
		&u.Area,
		&u.Progress,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get unit", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	return &u, nil
}

func (r *UnitRepository) ListByProject(ctx context.Context, projectID int64) ([]model.Unit, error) {
	query := `
        SELECT id, project_id, name, type, floor, area, progress, created_at, updated_at
        FROM units
        WHERE project_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to list units", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(
			&u.ID,
			&u.ProjectID,
			&u.Name,
			&u.Type,
			&u.Floor,
			&u.Area,
			&u.Progress,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (r *UnitRepository) Update(ctx context.Context, u *model.Unit) error {
	query := `
        UPDATE units
        SET name = $2, type = $3, floor = $4, area = $5, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, u.ID, u.Name, u.Type, u.Floor, u.Area)
	if err != nil {
		r.logger.Error("Failed to update unit", zap.Int64("id", u.ID), zap.Error(err))
		return fmt.Errorf("failed to update unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UnitRepository) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	query := `
        UPDATE units
        SET progress = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, progress)
	if err != nil {
		r.logger.Error("Failed to update unit progress",
			zap.Int64("id", id),
			zap.Float64("progress", progress),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update unit progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UnitRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete unit", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete unit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Unit deleted", zap.Int64("id", id))
	return nil
}
