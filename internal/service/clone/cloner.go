// Package clone deep-copies one unit's category/assignment/task subtree onto
// another unit. Structure is preserved (dates verbatim, not re-anchored)
// while work state resets: a clone is a fresh unit of work, not a copy of
// completion.
package clone

import (
	"context"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/status"
	"github.com/benbakka/imtilak2-sub000/pkg/metrics"
)

type CategoryStore interface {
	ListByUnit(ctx context.Context, unitID int64) ([]model.Category, error)
	Insert(ctx context.Context, c *model.Category) (int64, error)
}

type AssignmentStore interface {
	ListByCategory(ctx context.Context, categoryID int64) ([]model.TeamAssignment, error)
	Insert(ctx context.Context, a *model.TeamAssignment) (int64, error)
}

type UnitStore interface {
	GetByID(ctx context.Context, id int64) (*model.Unit, error)
}

type Cascader interface {
	CascadeFromUnit(ctx context.Context, unitID int64) error
}

// Result reports what the clone created.
type Result struct {
	CategoriesCreated  int `json:"categories_created"`
	AssignmentsCreated int `json:"assignments_created"`
}

type Cloner struct {
	categories  CategoryStore
	assignments AssignmentStore
	units       UnitStore
	cascader    Cascader
	logger      *zap.Logger
}

func NewCloner(
	categories CategoryStore,
	assignments AssignmentStore,
	units UnitStore,
	cascader Cascader,
	logger *zap.Logger,
) *Cloner {
	return &Cloner{
		categories:  categories,
		assignments: assignments,
		units:       units,
		cascader:    cascader,
		logger:      logger,
	}
}

// Clone copies the source unit's subtree onto the target unit. A source with
// zero categories clones to an empty target, which is a success, not an
// error. Payments and notifications tied to the source are never copied.
func (c *Cloner) Clone(ctx context.Context, sourceUnitID, targetUnitID int64) (*Result, error) {
	if _, err := c.units.GetByID(ctx, sourceUnitID); err != nil {
		return nil, err
	}
	target, err := c.units.GetByID(ctx, targetUnitID)
	if err != nil {
		return nil, err
	}

	categories, err := c.categories.ListByUnit(ctx, sourceUnitID)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Cloning unit subtree",
		zap.Int64("source_unit_id", sourceUnitID),
		zap.Int64("target_unit_id", target.ID),
		zap.Int("category_count", len(categories)),
	)

	result := &Result{}
	for _, src := range categories {
		newCategory := &model.Category{
			UnitID:    target.ID,
			Name:      src.Name,
			StartDate: src.StartDate,
			EndDate:   src.EndDate,
			Order:     src.Order,
		}
		newCategoryID, err := c.categories.Insert(ctx, newCategory)
		if err != nil {
			metrics.IncrementTemplateApply("clone", "error")
			return result, err
		}
		result.CategoriesCreated++

		assignments, err := c.assignments.ListByCategory(ctx, src.ID)
		if err != nil {
			metrics.IncrementTemplateApply("clone", "error")
			return result, err
		}

		for _, a := range assignments {
			copied := &model.TeamAssignment{
				CategoryID: newCategoryID,
				TeamID:     a.TeamID,
				Status:     status.Initial,
				Progress:   0,
				Notes:      a.Notes,
				Tasks:      append([]string(nil), a.Tasks...),
			}
			if _, err := c.assignments.Insert(ctx, copied); err != nil {
				metrics.IncrementTemplateApply("clone", "error")
				return result, err
			}
			result.AssignmentsCreated++
		}
	}

	if result.CategoriesCreated > 0 {
		if err := c.cascader.CascadeFromUnit(ctx, target.ID); err != nil {
			metrics.IncrementTemplateApply("clone", "error")
			return result, err
		}
	}

	metrics.IncrementTemplateApply("clone", "ok")
	c.logger.Info("Unit clone completed",
		zap.Int64("target_unit_id", target.ID),
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("assignments_created", result.AssignmentsCreated),
	)
	return result, nil
}
