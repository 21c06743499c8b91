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

type TemplateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTemplateRepository(db *pgxpool.Pool, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

// Insert writes the template and its children in one transaction.
func (r *TemplateRepository) Insert(ctx context.Context, t *model.Template) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
        INSERT INTO templates (name, unit_type)
        VALUES ($1, $2)
        RETURNING id
    `, t.Name, t.UnitType).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert template", zap.Error(err))
		return 0, fmt.Errorf("failed to insert template: %w", err)
	}

	for _, tc := range t.Categories {
		var tcID int64
		err = tx.QueryRow(ctx, `
            INSERT INTO template_categories (template_id, name, sort_order, duration_days)
            VALUES ($1, $2, $3, $4)
            RETURNING id
        `, id, tc.Name, tc.Order, tc.DurationDays).Scan(&tcID)
		if err != nil {
			r.logger.Error("Failed to insert template category", zap.Error(err))
			return 0, fmt.Errorf("failed to insert template category: %w", err)
		}

		for _, ta := range tc.Assignments {
			_, err = tx.Exec(ctx, `
                INSERT INTO template_assignments (template_category_id, team_id, tasks, notes)
                VALUES ($1, $2, $3, $4)
            `, tcID, ta.TeamID, ta.Tasks, ta.Notes)
			if err != nil {
				r.logger.Error("Failed to insert template assignment", zap.Error(err))
				return 0, fmt.Errorf("failed to insert template assignment: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit template insert: %w", err)
	}

	r.logger.Info("Template inserted successfully",
		zap.Int64("id", id),
		zap.String("name", t.Name),
		zap.Int("category_count", len(t.Categories)),
	)
	return id, nil
}

// GetByID loads the template with categories and assignments, categories in
// sort order.
func (r *TemplateRepository) GetByID(ctx context.Context, id int64) (*model.Template, error) {
	var t model.Template
	err := r.db.QueryRow(ctx, `
        SELECT id, name, unit_type, created_at, updated_at
        FROM templates
        WHERE id = $1
    `, id).Scan(&t.ID, &t.Name, &t.UnitType, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get template", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	rows, err := r.db.Query(ctx, `
        SELECT id, template_id, name, sort_order, duration_days
        FROM template_categories
        WHERE template_id = $1
        ORDER BY sort_order, id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list template categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc model.TemplateCategory
		if err := rows.Scan(&tc.ID, &tc.TemplateID, &tc.Name, &tc.Order, &tc.DurationDays); err != nil {
			return nil, fmt.Errorf("failed to scan template category: %w", err)
		}
		t.Categories = append(t.Categories, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range t.Categories {
		aRows, err := r.db.Query(ctx, `
            SELECT id, template_category_id, team_id, tasks, notes
            FROM template_assignments
            WHERE template_category_id = $1
            ORDER BY id
        `, t.Categories[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list template assignments: %w", err)
		}

		for aRows.Next() {
			var ta model.TemplateAssignment
			if err := aRows.Scan(&ta.ID, &ta.TemplateCategoryID, &ta.TeamID, &ta.Tasks, &ta.Notes); err != nil {
				aRows.Close()
				return nil, fmt.Errorf("failed to scan template assignment: %w", err)
			}
			t.Categories[i].Assignments = append(t.Categories[i].Assignments, ta)
		}
		if err := aRows.Err(); err != nil {
			aRows.Close()
			return nil, err
		}
		aRows.Close()
	}

	return &t, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]model.Template, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, unit_type, created_at, updated_at
        FROM templates
        ORDER BY name
    `)
	if err != nil {
		r.logger.Error("Failed to list templates", zap.Error(err))
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		var t model.Template
		if err := rows.Scan(&t.ID, &t.Name, &t.UnitType, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM templates WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete template", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
