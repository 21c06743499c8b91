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

type TeamRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTeamRepository(db *pgxpool.Pool, logger *zap.Logger) *TeamRepository {
	return &TeamRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TeamRepository) Insert(ctx context.Context, t *model.Team) (int64, error) {
	query := `
        INSERT INTO teams (company_id, name, specialty, color, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `
	var id int64
	err := r.db.QueryRow(ctx, query,
		t.CompanyID,
		t.Name,
		t.Specialty,
		t.Color,
		t.Active,
	).Scan(&id)

	if err != nil {
		r.logger.Error("Failed to insert team", zap.Error(err))
		return 0, fmt.Errorf("failed to insert team: %w", err)
	}

	r.logger.Info("Team inserted successfully",
		zap.Int64("id", id),
		zap.String("name", t.Name),
	)
	return id, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	query := `
        SELECT id, company_id, name, specialty, color, active, created_at, updated_at
        FROM teams
        WHERE id = $1
    `
	var t model.Team
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.CompanyID,
		&t.Name,
		&t.Specialty,
		&t.Color,
		&t.Active,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get team", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

func (r *TeamRepository) ListByCompany(ctx context.Context, companyID int64) ([]model.Team, error) {
	query := `
        SELECT id, company_id, name, specialty, color, active, created_at, updated_at
        FROM teams
        WHERE company_id = $1
        ORDER BY name
    `
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		r.logger.Error("Failed to list teams", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(
			&t.ID,
			&t.CompanyID,
			&t.Name,
			&t.Specialty,
			&t.Color,
			&t.Active,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *TeamRepository) Update(ctx context.Context, t *model.Team) error {
	query := `
        UPDATE teams
        SET name = $2, specialty = $3, color = $4, active = $5, updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, t.ID, t.Name, t.Specialty, t.Color, t.Active)
	if err != nil {
		r.logger.Error("Failed to update team", zap.Int64("id", t.ID), zap.Error(err))
		return fmt.Errorf("failed to update team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete team", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
