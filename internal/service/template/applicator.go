// Package template expands a reusable plan onto a concrete unit: real
// categories with computed dates, real team assignments in their initial
// state. Application is additive: re-applying the same template creates a
// second parallel set, never a merge.
package template

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
	"github.com/benbakka/imtilak2-sub000/internal/status"
	"github.com/benbakka/imtilak2-sub000/pkg/metrics"
)

type TemplateStore interface {
	GetByID(ctx context.Context, id int64) (*model.Template, error)
}

type TeamDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.Team, error)
}

type CategoryStore interface {
	Insert(ctx context.Context, c *model.Category) (int64, error)
}

type AssignmentStore interface {
	Insert(ctx context.Context, a *model.TeamAssignment) (int64, error)
}

type UnitStore interface {
	GetByID(ctx context.Context, id int64) (*model.Unit, error)
}

type Cascader interface {
	CascadeFromUnit(ctx context.Context, unitID int64) error
}

// Warning records one skipped item during application. Skips are non-fatal:
// the rest of the template still lands.
type Warning struct {
	Category string `json:"category"`
	TeamID   int64  `json:"team_id"`
	Reason   string `json:"reason"`
}

// Result reports what a template application created, plus per-item warnings
// the caller can use to detect and clean up partial application.
type Result struct {
	CategoriesCreated  int       `json:"categories_created"`
	AssignmentsCreated int       `json:"assignments_created"`
	Warnings           []Warning `json:"warnings"`
}

// ApplyOptions tunes one application.
type ApplyOptions struct {
	// BaseDate anchors the computed dates; zero means the clock's now.
	BaseDate time.Time
	// Sequential chains categories end-to-start in order rank instead of
	// anchoring every category to the base date. Off by default: the
	// historical behavior anchors everything to the base.
	Sequential bool
}

type Applicator struct {
	templates   TemplateStore
	teams       TeamDirectory
	categories  CategoryStore
	assignments AssignmentStore
	units       UnitStore
	cascader    Cascader
	clock       schedule.Clock
	logger      *zap.Logger
}

func NewApplicator(
	templates TemplateStore,
	teams TeamDirectory,
	categories CategoryStore,
	assignments AssignmentStore,
	units UnitStore,
	cascader Cascader,
	clock schedule.Clock,
	logger *zap.Logger,
) *Applicator {
	return &Applicator{
		templates:   templates,
		teams:       teams,
		categories:  categories,
		assignments: assignments,
		units:       units,
		cascader:    cascader,
		clock:       clock,
		logger:      logger,
	}
}

// Apply expands the template under the target unit. An unresolvable team
// skips that one assignment with a warning; a store failure aborts, leaving
// already-created children in place for the caller to clean up.
func (ap *Applicator) Apply(ctx context.Context, unitID, templateID int64, opts ApplyOptions) (*Result, error) {
	unit, err := ap.units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}

	tpl, err := ap.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	base := opts.BaseDate
	if base.IsZero() {
		base = ap.clock.Now()
	}

	ap.logger.Info("Applying template",
		zap.Int64("unit_id", unit.ID),
		zap.Int64("template_id", tpl.ID),
		zap.Time("base_date", base),
		zap.Bool("sequential", opts.Sequential),
	)

	categories := tpl.Categories
	if opts.Sequential {
		categories = append([]model.TemplateCategory(nil), tpl.Categories...)
		sort.SliceStable(categories, func(i, j int) bool {
			return categories[i].Order < categories[j].Order
		})
	}

	result := &Result{}
	cursor := base
	for _, tc := range categories {
		start := base
		if opts.Sequential {
			start = cursor
		}
		end := start.AddDate(0, 0, tc.DurationDays)
		cursor = end

		category := &model.Category{
			UnitID:    unit.ID,
			Name:      tc.Name,
			StartDate: start,
			EndDate:   end,
			Order:     tc.Order,
		}
		categoryID, err := ap.categories.Insert(ctx, category)
		if err != nil {
			ap.failMetric()
			return result, err
		}
		result.CategoriesCreated++

		for _, ta := range tc.Assignments {
			if _, err := ap.teams.GetByID(ctx, ta.TeamID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					ap.logger.Warn("Skipping template assignment: team not found",
						zap.String("category", tc.Name),
						zap.Int64("team_id", ta.TeamID),
					)
					result.Warnings = append(result.Warnings, Warning{
						Category: tc.Name,
						TeamID:   ta.TeamID,
						Reason:   "team not found",
					})
					continue
				}
				ap.failMetric()
				return result, err
			}

			assignment := &model.TeamAssignment{
				CategoryID: categoryID,
				TeamID:     ta.TeamID,
				Status:     status.Initial,
				Progress:   0,
				Notes:      ta.Notes,
				Tasks:      append([]string(nil), ta.Tasks...),
			}
			if _, err := ap.assignments.Insert(ctx, assignment); err != nil {
				ap.failMetric()
				return result, err
			}
			result.AssignmentsCreated++
		}
	}

	// New zero-progress children shift the unit and project means.
	if err := ap.cascader.CascadeFromUnit(ctx, unit.ID); err != nil {
		ap.failMetric()
		return result, err
	}

	statusLabel := "ok"
	if len(result.Warnings) > 0 {
		statusLabel = "warnings"
	}
	metrics.IncrementTemplateApply("template", statusLabel)

	ap.logger.Info("Template applied",
		zap.Int64("unit_id", unit.ID),
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("assignments_created", result.AssignmentsCreated),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, nil
}

func (ap *Applicator) failMetric() {
	metrics.IncrementTemplateApply("template", "error")
}
