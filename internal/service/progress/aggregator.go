// Package progress keeps category, unit and project completion percentages
// consistent with the team assignments below them. The cascade runs
// synchronously so the caller observes a consistent tree the moment the call
// returns.
package progress

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/pkg/metrics"
)

const (
	LevelCategory = "category"
	LevelUnit     = "unit"
	LevelProject  = "project"
)

// CascadeError reports a cascade that failed partway. Completed lists the
// levels already persisted so the caller can retry only the remaining ones.
type CascadeError struct {
	FailedLevel string
	Completed   []string
	Err         error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("progress cascade failed at %s level (completed: %v): %v",
		e.FailedLevel, e.Completed, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}

// InconsistencyError is a diagnostics-only signal: a stored percentage
// differs from a from-scratch recomputation.
type InconsistencyError struct {
	Level    string
	ID       int64
	Stored   float64
	Computed float64
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("%s %d progress inconsistent: stored %.4f, computed %.4f",
		e.Level, e.ID, e.Stored, e.Computed)
}

type AssignmentStore interface {
	ListByCategory(ctx context.Context, categoryID int64) ([]model.TeamAssignment, error)
}

type CategoryStore interface {
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	ListByUnit(ctx context.Context, unitID int64) ([]model.Category, error)
	UpdateProgress(ctx context.Context, id int64, progress float64) error
}

type UnitStore interface {
	GetByID(ctx context.Context, id int64) (*model.Unit, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Unit, error)
	UpdateProgress(ctx context.Context, id int64, progress float64) error
}

type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	UpdateProgress(ctx context.Context, id int64, progress float64) error
}

type Aggregator struct {
	assignments AssignmentStore
	categories  CategoryStore
	units       UnitStore
	projects    ProjectStore
	logger      *zap.Logger
}

func NewAggregator(
	assignments AssignmentStore,
	categories CategoryStore,
	units UnitStore,
	projects ProjectStore,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		assignments: assignments,
		categories:  categories,
		units:       units,
		projects:    projects,
		logger:      logger,
	}
}

// AggregateCategory computes the mean progress of a category's assignments.
// Zero children means zero progress. Pure with respect to store state.
func (a *Aggregator) AggregateCategory(ctx context.Context, categoryID int64) (float64, error) {
	assignments, err := a.assignments.ListByCategory(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	return meanAssignmentProgress(assignments), nil
}

// AggregateUnit computes the mean progress of a unit's categories as stored.
func (a *Aggregator) AggregateUnit(ctx context.Context, unitID int64) (float64, error) {
	categories, err := a.categories.ListByUnit(ctx, unitID)
	if err != nil {
		return 0, err
	}
	return meanCategoryProgress(categories), nil
}

// AggregateProject computes the mean progress of a project's units as stored.
func (a *Aggregator) AggregateProject(ctx context.Context, projectID int64) (float64, error) {
	units, err := a.units.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	return meanUnitProgress(units), nil
}

// CascadeResult carries the percentages persisted by a full cascade.
type CascadeResult struct {
	CategoryID       int64   `json:"category_id"`
	UnitID           int64   `json:"unit_id"`
	ProjectID        int64   `json:"project_id"`
	CategoryProgress float64 `json:"category_progress"`
	UnitProgress     float64 `json:"unit_progress"`
	ProjectProgress  float64 `json:"project_progress"`
}

// CascadeFromCategory recomputes and persists, in order, the category's
// progress, then its unit's, then its project's. Each level reads the value
// the previous level just committed. Any manual override stored at unit or
// project level is overwritten here; overrides are best-effort by contract.
func (a *Aggregator) CascadeFromCategory(ctx context.Context, categoryID int64) (*CascadeResult, error) {
	start := time.Now()
	result, err := a.cascade(ctx, categoryID)
	if err != nil {
		metrics.RecordCascadeDuration("error", time.Since(start))
		return nil, err
	}
	metrics.RecordCascadeDuration("ok", time.Since(start))

	a.logger.Debug("Progress cascade completed",
		zap.Int64("category_id", result.CategoryID),
		zap.Int64("unit_id", result.UnitID),
		zap.Int64("project_id", result.ProjectID),
		zap.Float64("category_progress", result.CategoryProgress),
		zap.Float64("unit_progress", result.UnitProgress),
		zap.Float64("project_progress", result.ProjectProgress),
	)
	return result, nil
}

func (a *Aggregator) cascade(ctx context.Context, categoryID int64) (*CascadeResult, error) {
	var completed []string

	category, err := a.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, &CascadeError{FailedLevel: LevelCategory, Completed: completed, Err: err}
	}

	categoryProgress, err := a.AggregateCategory(ctx, categoryID)
	if err != nil {
		return nil, &CascadeError{FailedLevel: LevelCategory, Completed: completed, Err: err}
	}
	if err := a.categories.UpdateProgress(ctx, categoryID, categoryProgress); err != nil {
		return nil, &CascadeError{FailedLevel: LevelCategory, Completed: completed, Err: err}
	}
	completed = append(completed, LevelCategory)

	unit, err := a.units.GetByID(ctx, category.UnitID)
	if err != nil {
		return nil, &CascadeError{FailedLevel: LevelUnit, Completed: completed, Err: err}
	}
	unitProgress, err := a.AggregateUnit(ctx, unit.ID)
	if err != nil {
		return nil, &CascadeError{FailedLevel: LevelUnit, Completed: completed, Err: err}
	}
	if err := a.units.UpdateProgress(ctx, unit.ID, unitProgress); err != nil {
		return nil, &CascadeError{FailedLevel: LevelUnit, Completed: completed, Err: err}
	}
	completed = append(completed, LevelUnit)

	projectProgress, err := a.AggregateProject(ctx, unit.ProjectID)
	if err != nil {
		return nil, &CascadeError{FailedLevel: LevelProject, Completed: completed, Err: err}
	}
	if err := a.projects.UpdateProgress(ctx, unit.ProjectID, projectProgress); err != nil {
		return nil, &CascadeError{FailedLevel: LevelProject, Completed: completed, Err: err}
	}

	return &CascadeResult{
		CategoryID:       categoryID,
		UnitID:           unit.ID,
		ProjectID:        unit.ProjectID,
		CategoryProgress: categoryProgress,
		UnitProgress:     unitProgress,
		ProjectProgress:  projectProgress,
	}, nil
}

// CascadeFromUnit recomputes unit and project only, for mutations that change
// the category set of a unit (category delete, clone into a live unit).
func (a *Aggregator) CascadeFromUnit(ctx context.Context, unitID int64) error {
	unit, err := a.units.GetByID(ctx, unitID)
	if err != nil {
		return &CascadeError{FailedLevel: LevelUnit, Err: err}
	}

	unitProgress, err := a.AggregateUnit(ctx, unitID)
	if err != nil {
		return &CascadeError{FailedLevel: LevelUnit, Err: err}
	}
	if err := a.units.UpdateProgress(ctx, unitID, unitProgress); err != nil {
		return &CascadeError{FailedLevel: LevelUnit, Err: err}
	}

	projectProgress, err := a.AggregateProject(ctx, unit.ProjectID)
	if err != nil {
		return &CascadeError{FailedLevel: LevelProject, Completed: []string{LevelUnit}, Err: err}
	}
	if err := a.projects.UpdateProgress(ctx, unit.ProjectID, projectProgress); err != nil {
		return &CascadeError{FailedLevel: LevelProject, Completed: []string{LevelUnit}, Err: err}
	}
	return nil
}

// SetUnitProgress stores a manual override. The next cascade through this
// unit silently supersedes it.
func (a *Aggregator) SetUnitProgress(ctx context.Context, unitID int64, progress float64) error {
	if progress < 0 || progress > 100 {
		return model.NewValidationError("progress", "must be within [0,100]")
	}
	a.logger.Info("Manual unit progress override",
		zap.Int64("unit_id", unitID),
		zap.Float64("progress", progress),
	)
	return a.units.UpdateProgress(ctx, unitID, progress)
}

// SetProjectProgress stores a manual override, same contract as SetUnitProgress.
func (a *Aggregator) SetProjectProgress(ctx context.Context, projectID int64, progress float64) error {
	if progress < 0 || progress > 100 {
		return model.NewValidationError("progress", "must be within [0,100]")
	}
	a.logger.Info("Manual project progress override",
		zap.Int64("project_id", projectID),
		zap.Float64("progress", progress),
	)
	return a.projects.UpdateProgress(ctx, projectID, progress)
}

// AuditUnit compares the stored unit percentage against a from-scratch
// recomputation of every category below it. Diagnostics only; it never
// repairs.
func (a *Aggregator) AuditUnit(ctx context.Context, unitID int64) error {
	unit, err := a.units.GetByID(ctx, unitID)
	if err != nil {
		return err
	}

	categories, err := a.categories.ListByUnit(ctx, unitID)
	if err != nil {
		return err
	}

	var sum float64
	for _, c := range categories {
		computed, err := a.AggregateCategory(ctx, c.ID)
		if err != nil {
			return err
		}
		if !closeEnough(c.Progress, computed) {
			return &InconsistencyError{Level: LevelCategory, ID: c.ID, Stored: c.Progress, Computed: computed}
		}
		sum += computed
	}

	var computedUnit float64
	if len(categories) > 0 {
		computedUnit = sum / float64(len(categories))
	}
	if !closeEnough(unit.Progress, computedUnit) {
		return &InconsistencyError{Level: LevelUnit, ID: unitID, Stored: unit.Progress, Computed: computedUnit}
	}
	return nil
}

func closeEnough(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

func meanAssignmentProgress(assignments []model.TeamAssignment) float64 {
	if len(assignments) == 0 {
		return 0
	}
	var sum float64
	for _, a := range assignments {
		sum += a.Progress
	}
	return sum / float64(len(assignments))
}

func meanCategoryProgress(categories []model.Category) float64 {
	if len(categories) == 0 {
		return 0
	}
	var sum float64
	for _, c := range categories {
		sum += c.Progress
	}
	return sum / float64(len(categories))
}

func meanUnitProgress(units []model.Unit) float64 {
	if len(units) == 0 {
		return 0
	}
	var sum float64
	for _, u := range units {
		sum += u.Progress
	}
	return sum / float64(len(units))
}
