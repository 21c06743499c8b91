// Package assignment mutates team-assignment status and progress. Every
// mutation that can change a percentage ends with a synchronous progress
// cascade through the owning category.
package assignment

import (
	"context"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/service/progress"
	"github.com/benbakka/imtilak2-sub000/internal/status"
)

type Store interface {
	GetByID(ctx context.Context, id int64) (*model.TeamAssignment, error)
	Insert(ctx context.Context, a *model.TeamAssignment) (int64, error)
	Update(ctx context.Context, a *model.TeamAssignment) error
	UpdateStatusProgress(ctx context.Context, id int64, status string, progress float64) error
	Delete(ctx context.Context, id int64) error
}

type Cascader interface {
	CascadeFromCategory(ctx context.Context, categoryID int64) (*progress.CascadeResult, error)
}

type Service struct {
	store    Store
	cascader Cascader
	logger   *zap.Logger
}

func NewService(store Store, cascader Cascader, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		cascader: cascader,
		logger:   logger,
	}
}

// Create validates and inserts a new assignment, then cascades. New
// assignments always start NOT_STARTED at zero progress regardless of input.
func (s *Service) Create(ctx context.Context, a *model.TeamAssignment) (int64, *progress.CascadeResult, error) {
	a.Status = status.Initial
	a.Progress = 0
	if err := a.Validate(); err != nil {
		return 0, nil, err
	}

	id, err := s.store.Insert(ctx, a)
	if err != nil {
		return 0, nil, err
	}

	result, err := s.cascader.CascadeFromCategory(ctx, a.CategoryID)
	if err != nil {
		return id, nil, err
	}
	return id, result, nil
}

// Advance applies the one-click status cycle and cascades. Progress is left
// untouched: the status/progress pair is only loosely coupled by convention.
func (s *Service) Advance(ctx context.Context, id int64) (*model.TeamAssignment, *progress.CascadeResult, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	next, err := status.Advance(a.Status)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("Advancing assignment status",
		zap.Int64("id", id),
		zap.String("from", a.Status),
		zap.String("to", next),
	)

	if err := s.store.UpdateStatusProgress(ctx, id, next, a.Progress); err != nil {
		return nil, nil, err
	}
	a.Status = next

	result, err := s.cascader.CascadeFromCategory(ctx, a.CategoryID)
	if err != nil {
		return a, nil, err
	}
	return a, result, nil
}

// SetStatusAndProgress sets status unconditionally; when progressValue is
// non-nil it is clamped to [0,100] and stored. Status never forces progress
// to 0 or 100 here: a manual value takes precedence even when it disagrees
// with the status.
func (s *Service) SetStatusAndProgress(ctx context.Context, id int64, newStatus string, progressValue *float64) (*model.TeamAssignment, *progress.CascadeResult, error) {
	if !model.ValidStatus(newStatus) {
		return nil, nil, model.NewValidationError("status", "unknown assignment status: "+newStatus)
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if !status.CanTransition(a.Status, newStatus) {
		return nil, nil, model.NewValidationError("status", "transition not allowed from "+a.Status)
	}

	p := a.Progress
	if progressValue != nil {
		p = clamp(*progressValue, 0, 100)
	}

	if err := s.store.UpdateStatusProgress(ctx, id, newStatus, p); err != nil {
		return nil, nil, err
	}
	a.Status = newStatus
	a.Progress = p

	result, err := s.cascader.CascadeFromCategory(ctx, a.CategoryID)
	if err != nil {
		return a, nil, err
	}
	return a, result, nil
}

// Delete removes the assignment and cascades so the category mean no longer
// counts it.
func (s *Service) Delete(ctx context.Context, id int64) (*progress.CascadeResult, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, err
	}

	return s.cascader.CascadeFromCategory(ctx, a.CategoryID)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
