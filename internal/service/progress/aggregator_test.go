package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
)

type mockAssignmentStore struct {
	mock.Mock
}

func (m *mockAssignmentStore) ListByCategory(ctx context.Context, categoryID int64) ([]model.TeamAssignment, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.TeamAssignment), args.Error(1)
}

type mockCategoryStore struct {
	mock.Mock
}

func (m *mockCategoryStore) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *mockCategoryStore) ListByUnit(ctx context.Context, unitID int64) ([]model.Category, error) {
	args := m.Called(ctx, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *mockCategoryStore) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

type mockUnitStore struct {
	mock.Mock
}

func (m *mockUnitStore) GetByID(ctx context.Context, id int64) (*model.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Unit), args.Error(1)
}

func (m *mockUnitStore) ListByProject(ctx context.Context, projectID int64) ([]model.Unit, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Unit), args.Error(1)
}

func (m *mockUnitStore) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

type mockProjectStore struct {
	mock.Mock
}

func (m *mockProjectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockProjectStore) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func newTestAggregator() (*Aggregator, *mockAssignmentStore, *mockCategoryStore, *mockUnitStore, *mockProjectStore) {
	assignments := new(mockAssignmentStore)
	categories := new(mockCategoryStore)
	units := new(mockUnitStore)
	projects := new(mockProjectStore)
	agg := NewAggregator(assignments, categories, units, projects, zap.NewNop())
	return agg, assignments, categories, units, projects
}

func TestAggregateCategory(t *testing.T) {
	t.Run("mean of assignment progress", func(t *testing.T) {
		agg, assignments, _, _, _ := newTestAggregator()
		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{
			{ID: 1, Progress: 100},
			{ID: 2, Progress: 50},
			{ID: 3, Progress: 0},
		}, nil)

		got, err := agg.AggregateCategory(context.Background(), 10)
		assert.NoError(t, err)
		assert.InDelta(t, 50.0, got, 1e-9)
	})

	t.Run("childless category is zero", func(t *testing.T) {
		agg, assignments, _, _, _ := newTestAggregator()
		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{}, nil)

		got, err := agg.AggregateCategory(context.Background(), 10)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("store error propagates", func(t *testing.T) {
		agg, assignments, _, _, _ := newTestAggregator()
		assignments.On("ListByCategory", mock.Anything, int64(10)).Return(nil, errors.New("db down"))

		_, err := agg.AggregateCategory(context.Background(), 10)
		assert.Error(t, err)
	})
}

func TestCascadeFromCategory(t *testing.T) {
	t.Run("persists category then unit then project", func(t *testing.T) {
		agg, assignments, categories, units, projects := newTestAggregator()

		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{
			{Progress: 80},
			{Progress: 40},
		}, nil)
		categories.On("GetByID", mock.Anything, int64(10)).Return(&model.Category{ID: 10, UnitID: 20}, nil)
		categories.On("UpdateProgress", mock.Anything, int64(10), 60.0).Return(nil)

		// Unit mean is read back after the category write landed.
		units.On("GetByID", mock.Anything, int64(20)).Return(&model.Unit{ID: 20, ProjectID: 30}, nil)
		categories.On("ListByUnit", mock.Anything, int64(20)).Return([]model.Category{
			{ID: 10, Progress: 60},
			{ID: 11, Progress: 20},
		}, nil)
		units.On("UpdateProgress", mock.Anything, int64(20), 40.0).Return(nil)

		units.On("ListByProject", mock.Anything, int64(30)).Return([]model.Unit{
			{ID: 20, Progress: 40},
			{ID: 21, Progress: 60},
		}, nil)
		projects.On("UpdateProgress", mock.Anything, int64(30), 50.0).Return(nil)

		result, err := agg.CascadeFromCategory(context.Background(), 10)
		assert.NoError(t, err)
		assert.Equal(t, int64(10), result.CategoryID)
		assert.Equal(t, int64(20), result.UnitID)
		assert.Equal(t, int64(30), result.ProjectID)
		assert.InDelta(t, 60.0, result.CategoryProgress, 1e-9)
		assert.InDelta(t, 40.0, result.UnitProgress, 1e-9)
		assert.InDelta(t, 50.0, result.ProjectProgress, 1e-9)

		categories.AssertExpectations(t)
		units.AssertExpectations(t)
		projects.AssertExpectations(t)
	})

	t.Run("failure at unit level reports completed category", func(t *testing.T) {
		agg, assignments, categories, units, _ := newTestAggregator()

		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{{Progress: 50}}, nil)
		categories.On("GetByID", mock.Anything, int64(10)).Return(&model.Category{ID: 10, UnitID: 20}, nil)
		categories.On("UpdateProgress", mock.Anything, int64(10), 50.0).Return(nil)
		units.On("GetByID", mock.Anything, int64(20)).Return(nil, errors.New("db down"))

		_, err := agg.CascadeFromCategory(context.Background(), 10)
		assert.Error(t, err)

		var cascadeErr *CascadeError
		assert.ErrorAs(t, err, &cascadeErr)
		assert.Equal(t, LevelUnit, cascadeErr.FailedLevel)
		assert.Equal(t, []string{LevelCategory}, cascadeErr.Completed)
	})

	t.Run("failure at project level reports completed category and unit", func(t *testing.T) {
		agg, assignments, categories, units, projects := newTestAggregator()

		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{{Progress: 50}}, nil)
		categories.On("GetByID", mock.Anything, int64(10)).Return(&model.Category{ID: 10, UnitID: 20}, nil)
		categories.On("UpdateProgress", mock.Anything, int64(10), 50.0).Return(nil)
		units.On("GetByID", mock.Anything, int64(20)).Return(&model.Unit{ID: 20, ProjectID: 30}, nil)
		categories.On("ListByUnit", mock.Anything, int64(20)).Return([]model.Category{{ID: 10, Progress: 50}}, nil)
		units.On("UpdateProgress", mock.Anything, int64(20), 50.0).Return(nil)
		units.On("ListByProject", mock.Anything, int64(30)).Return([]model.Unit{{ID: 20, Progress: 50}}, nil)
		projects.On("UpdateProgress", mock.Anything, int64(30), 50.0).Return(errors.New("db down"))

		_, err := agg.CascadeFromCategory(context.Background(), 10)
		var cascadeErr *CascadeError
		assert.ErrorAs(t, err, &cascadeErr)
		assert.Equal(t, LevelProject, cascadeErr.FailedLevel)
		assert.Equal(t, []string{LevelCategory, LevelUnit}, cascadeErr.Completed)
	})

	t.Run("category with no assignments cascades zero upward", func(t *testing.T) {
		agg, assignments, categories, units, projects := newTestAggregator()

		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{}, nil)
		categories.On("GetByID", mock.Anything, int64(10)).Return(&model.Category{ID: 10, UnitID: 20}, nil)
		categories.On("UpdateProgress", mock.Anything, int64(10), 0.0).Return(nil)
		units.On("GetByID", mock.Anything, int64(20)).Return(&model.Unit{ID: 20, ProjectID: 30}, nil)
		categories.On("ListByUnit", mock.Anything, int64(20)).Return([]model.Category{{ID: 10, Progress: 0}}, nil)
		units.On("UpdateProgress", mock.Anything, int64(20), 0.0).Return(nil)
		units.On("ListByProject", mock.Anything, int64(30)).Return([]model.Unit{{ID: 20, Progress: 0}}, nil)
		projects.On("UpdateProgress", mock.Anything, int64(30), 0.0).Return(nil)

		result, err := agg.CascadeFromCategory(context.Background(), 10)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, result.CategoryProgress)
	})
}

func TestManualOverrides(t *testing.T) {
	t.Run("unit override persists valid value", func(t *testing.T) {
		agg, _, _, units, _ := newTestAggregator()
		units.On("UpdateProgress", mock.Anything, int64(20), 75.0).Return(nil)

		assert.NoError(t, agg.SetUnitProgress(context.Background(), 20, 75))
		units.AssertExpectations(t)
	})

	t.Run("out of range value is rejected without a write", func(t *testing.T) {
		agg, _, _, units, projects := newTestAggregator()

		err := agg.SetUnitProgress(context.Background(), 20, 120)
		var vErr *model.ValidationError
		assert.ErrorAs(t, err, &vErr)

		err = agg.SetProjectProgress(context.Background(), 30, -1)
		assert.ErrorAs(t, err, &vErr)

		units.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything)
		projects.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAuditUnit(t *testing.T) {
	t.Run("consistent tree passes", func(t *testing.T) {
		agg, assignments, categories, units, _ := newTestAggregator()

		units.On("GetByID", mock.Anything, int64(20)).Return(&model.Unit{ID: 20, Progress: 50}, nil)
		categories.On("ListByUnit", mock.Anything, int64(20)).Return([]model.Category{
			{ID: 10, Progress: 60},
			{ID: 11, Progress: 40},
		}, nil)
		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{{Progress: 60}}, nil)
		assignments.On("ListByCategory", mock.Anything, int64(11)).Return([]model.TeamAssignment{{Progress: 40}}, nil)

		assert.NoError(t, agg.AuditUnit(context.Background(), 20))
	})

	t.Run("stale category progress is reported, not repaired", func(t *testing.T) {
		agg, assignments, categories, units, _ := newTestAggregator()

		units.On("GetByID", mock.Anything, int64(20)).Return(&model.Unit{ID: 20, Progress: 50}, nil)
		categories.On("ListByUnit", mock.Anything, int64(20)).Return([]model.Category{
			{ID: 10, Progress: 80},
		}, nil)
		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{{Progress: 30}}, nil)

		err := agg.AuditUnit(context.Background(), 20)
		var incErr *InconsistencyError
		assert.ErrorAs(t, err, &incErr)
		assert.Equal(t, LevelCategory, incErr.Level)
		assert.Equal(t, int64(10), incErr.ID)
		assert.InDelta(t, 80.0, incErr.Stored, 1e-9)
		assert.InDelta(t, 30.0, incErr.Computed, 1e-9)

		categories.AssertNotCalled(t, "UpdateProgress", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("stale unit progress is reported", func(t *testing.T) {
		agg, assignments, categories, units, _ := newTestAggregator()

		units.On("GetByID", mock.Anything, int64(20)).Return(&model.Unit{ID: 20, Progress: 99}, nil)
		categories.On("ListByUnit", mock.Anything, int64(20)).Return([]model.Category{
			{ID: 10, Progress: 40},
		}, nil)
		assignments.On("ListByCategory", mock.Anything, int64(10)).Return([]model.TeamAssignment{{Progress: 40}}, nil)

		err := agg.AuditUnit(context.Background(), 20)
		var incErr *InconsistencyError
		assert.ErrorAs(t, err, &incErr)
		assert.Equal(t, LevelUnit, incErr.Level)
	})
}
