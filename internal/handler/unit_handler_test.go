package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/service/progress"
)

type mockUnitStore struct {
	mock.Mock
}

func (m *mockUnitStore) Insert(ctx context.Context, u *model.Unit) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
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

func (m *mockUnitStore) Update(ctx context.Context, u *model.Unit) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUnitStore) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *mockUnitStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type stubAssignmentStore struct{}

func (stubAssignmentStore) ListByCategory(ctx context.Context, categoryID int64) ([]model.TeamAssignment, error) {
	return nil, nil
}

type stubCategoryStore struct{}

func (stubCategoryStore) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	return nil, nil
}

func (stubCategoryStore) ListByUnit(ctx context.Context, unitID int64) ([]model.Category, error) {
	return nil, nil
}

func (stubCategoryStore) UpdateProgress(ctx context.Context, id int64, progress float64) error {
	return nil
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

func TestUnitCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("recomputes the project mean after insert", func(t *testing.T) {
		store := new(mockUnitStore)
		projects := new(mockProjectStore)
		agg := progress.NewAggregator(stubAssignmentStore{}, stubCategoryStore{}, store, projects, zap.NewNop())
		h := NewUnitHandler(store, agg, nil, nil, zap.NewNop())

		store.On("Insert", mock.Anything, mock.Anything).Return(int64(2), nil)
		// The fresh unit enters the mean at zero: (80 + 0) / 2.
		store.On("ListByProject", mock.Anything, int64(30)).Return([]model.Unit{
			{ID: 1, ProjectID: 30, Progress: 80},
			{ID: 2, ProjectID: 30, Progress: 0},
		}, nil)
		projects.On("UpdateProgress", mock.Anything, int64(30), 40.0).Return(nil)

		r := gin.New()
		r.POST("/units", h.Create)
		req := httptest.NewRequest(http.MethodPost, "/units",
			strings.NewReader(`{"project_id":30,"name":"B-202","type":"villa"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		projects.AssertExpectations(t)
	})

	t.Run("first unit of a project sets the mean to zero", func(t *testing.T) {
		store := new(mockUnitStore)
		projects := new(mockProjectStore)
		agg := progress.NewAggregator(stubAssignmentStore{}, stubCategoryStore{}, store, projects, zap.NewNop())
		h := NewUnitHandler(store, agg, nil, nil, zap.NewNop())

		store.On("Insert", mock.Anything, mock.Anything).Return(int64(1), nil)
		store.On("ListByProject", mock.Anything, int64(30)).Return([]model.Unit{
			{ID: 1, ProjectID: 30, Progress: 0},
		}, nil)
		projects.On("UpdateProgress", mock.Anything, int64(30), 0.0).Return(nil)

		r := gin.New()
		r.POST("/units", h.Create)
		req := httptest.NewRequest(http.MethodPost, "/units",
			strings.NewReader(`{"project_id":30,"name":"A-101","type":"apartment"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		projects.AssertExpectations(t)
	})

	t.Run("invalid unit never reaches the store", func(t *testing.T) {
		store := new(mockUnitStore)
		projects := new(mockProjectStore)
		agg := progress.NewAggregator(stubAssignmentStore{}, stubCategoryStore{}, store, projects, zap.NewNop())
		h := NewUnitHandler(store, agg, nil, nil, zap.NewNop())

		r := gin.New()
		r.POST("/units", h.Create)
		req := httptest.NewRequest(http.MethodPost, "/units",
			strings.NewReader(`{"project_id":30,"name":"A-101","type":"warehouse"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})
}
