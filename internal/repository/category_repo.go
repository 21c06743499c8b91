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

type CategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CategoryRepository) Insert(ctx context.Context, c *model.Category) (int64, error) {
	r.logger.Debug("Inserting category",
		zap.Int64("unit_id", c.UnitID),
		zap.String("name", c.Name),
	)

	query := `
        INSERT INTO categories (unit_id, name, start_date, end_date, sort_order, progress)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		c.UnitID,
		c.Name,
		c.StartDate,
		c.EndDate,
		c.Order,
		c.Progress,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert category", zap.Error(err))
		return 0, fmt.Errorf("failed to insert category: %w", err)
	}

	r.logger.Info("Category inserted successfully",
		zap.Int64("id", id),
		zap.Int64("unit_id", c.UnitID),
	)
	return id, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	query := `
        SELECT id, unit_id, name, start_date, end_date, sort_order, progress, created_at, updated_at
        FROM categories
        WHERE id = $1
    `
	var c model.Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UnitID,
		&c.Name,
		&c.StartDate,
		&c.EndDate,
		&c.Order,
		&c.Progress,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get category", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) ListByUnit(ctx context.Context, unitID int64) ([]model.Category, error) {
	query := `
        SELECT id, unit_id, name, start_date, end_date, sort_order, progress, created_at, updated_at
        FROM categories
        WHERE unit_id = $1
        ORDER BY sort_order, id
    `
	rows, err := r.db.Query(ctx, query, unitID)
	if err != nil {
		r.logger.Error("Failed to list categories", zap.Int64("unit_id", unitID), zap.Error(err))
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(
			&c.ID,
			&c.UnitID,
			&c.Name,
			&c.StartDate,
			&c.EndDate,
			&c.Order,
			&c.Progress,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET name = $2, start_date = $3, end_date = $4, sort_order = $5, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.StartDate, c.EndDate, c.Order)
	if err != nil {
		r.logger.Error("Failed to update category", zap.Int64("id", c.ID), zap.Error(err))
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	query := `
        UPDATE categories
        SET progress = $2, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, progress)
	if err != nil {
		r.logger.Error("Failed to update category progress",
			zap.Int64("id", id),
			zap.Float64("progress", progress),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update category progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete category", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Category deleted", zap.Int64("id", id))
	return nil
}
