package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
)

// ScheduleRepository serves the flat read the scanner runs over: every team
// assignment joined to its ancestry. Left joins keep orphaned assignments in
// the result set with nil parents, so the scanner can skip and log them
// instead of the whole scan failing.
type ScheduleRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewScheduleRepository(db *pgxpool.Pool, logger *zap.Logger) *ScheduleRepository {
	return &ScheduleRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ScheduleRepository) ListScheduleRows(ctx context.Context) ([]model.ScheduleRow, error) {
	query := `
        SELECT ta.id, ta.team_id, ta.status,
               c.id, c.start_date, c.end_date,
               u.id, p.id
        FROM team_assignments ta
        LEFT JOIN categories c ON c.id = ta.category_id
        LEFT JOIN units u ON u.id = c.unit_id
        LEFT JOIN projects p ON p.id = u.project_id
        WHERE ta.status <> 'DONE'
        ORDER BY ta.id
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list schedule rows", zap.Error(err))
		return nil, fmt.Errorf("failed to list schedule rows: %w", err)
	}
	defer rows.Close()

	var result []model.ScheduleRow
	for rows.Next() {
		var sr model.ScheduleRow
		if err := rows.Scan(
			&sr.TeamAssignmentID,
			&sr.TeamID,
			&sr.Status,
			&sr.CategoryID,
			&sr.CategoryStart,
			&sr.CategoryEnd,
			&sr.UnitID,
			&sr.ProjectID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		result = append(result, sr)
	}
	return result, rows.Err()
}
