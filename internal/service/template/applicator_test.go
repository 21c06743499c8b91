package template

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
)

type mockTemplateStore struct {
	mock.Mock
}

func (m *mockTemplateStore) GetByID(ctx context.Context, id int64) (*model.Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Template), args.Error(1)
}

type mockTeamDirectory struct {
	mock.Mock
}

func (m *mockTeamDirectory) GetByID(ctx context.Context, id int64) (*model.Team, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Team), args.Error(1)
}

type mockCategoryStore struct {
	mock.Mock
	created []model.Category
}

func (m *mockCategoryStore) Insert(ctx context.Context, c *model.Category) (int64, error) {
	args := m.Called(ctx, c)
	if args.Error(1) == nil {
		m.created = append(m.created, *c)
	}
	return args.Get(0).(int64), args.Error(1)
}

type mockAssignmentStore struct {
	mock.Mock
	created []model.TeamAssignment
}

func (m *mockAssignmentStore) Insert(ctx context.Context, a *model.TeamAssignment) (int64, error) {
	args := m.Called(ctx, a)
	if args.Error(1) == nil {
		m.created = append(m.created, *a)
	}
	return args.Get(0).(int64), args.Error(1)
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

type mockCascader struct {
	mock.Mock
}

func (m *mockCascader) CascadeFromUnit(ctx context.Context, unitID int64) error {
	args := m.Called(ctx, unitID)
	return args.Error(0)
}

type applyFixture struct {
	applicator  *Applicator
	templates   *mockTemplateStore
	teams       *mockTeamDirectory
	categories  *mockCategoryStore
	assignments *mockAssignmentStore
	units       *mockUnitStore
	cascader    *mockCascader
	now         time.Time
}

func newApplyFixture() *applyFixture {
	f := &applyFixture{
		templates:   new(mockTemplateStore),
		teams:       new(mockTeamDirectory),
		categories:  new(mockCategoryStore),
		assignments: new(mockAssignmentStore),
		units:       new(mockUnitStore),
		cascader:    new(mockCascader),
		now:         time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	f.applicator = NewApplicator(
		f.templates, f.teams, f.categories, f.assignments, f.units, f.cascader,
		schedule.FixedClock{T: f.now}, zap.NewNop(),
	)
	return f
}

func villaTemplate() *model.Template {
	return &model.Template{
		ID:       5,
		Name:     "standard villa",
		UnitType: model.UnitTypeVilla,
		Categories: []model.TemplateCategory{
			{
				Name: "foundation", Order: 1, DurationDays: 14,
				Assignments: []model.TemplateAssignment{
					{TeamID: 101, Tasks: []string{"excavate", "pour"}},
					{TeamID: 102},
				},
			},
			{
				Name: "framing", Order: 2, DurationDays: 21,
				Assignments: []model.TemplateAssignment{
					{TeamID: 103, Notes: "check bracing"},
					{TeamID: 101},
				},
			},
			{
				Name: "electrical", Order: 3, DurationDays: 10,
				Assignments: []model.TemplateAssignment{
					{TeamID: 104},
					{TeamID: 105},
				},
			},
		},
	}
}

func TestApply(t *testing.T) {
	base := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	t.Run("creates every category and assignment in initial state", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7, ProjectID: 1}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil)
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)
		f.cascader.On("CascadeFromUnit", mock.Anything, int64(7)).Return(nil)

		result, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base})
		assert.NoError(t, err)
		assert.Equal(t, 3, result.CategoriesCreated)
		assert.Equal(t, 6, result.AssignmentsCreated)
		assert.Empty(t, result.Warnings)

		for _, a := range f.assignments.created {
			assert.Equal(t, model.StatusNotStarted, a.Status)
			assert.Equal(t, 0.0, a.Progress)
		}
		f.cascader.AssertExpectations(t)
	})

	t.Run("default anchoring starts every category at the base date", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil)
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)
		f.cascader.On("CascadeFromUnit", mock.Anything, int64(7)).Return(nil)

		_, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base})
		assert.NoError(t, err)

		assert.Len(t, f.categories.created, 3)
		for _, c := range f.categories.created {
			assert.Equal(t, base, c.StartDate)
		}
		assert.Equal(t, base.AddDate(0, 0, 14), f.categories.created[0].EndDate)
		assert.Equal(t, base.AddDate(0, 0, 21), f.categories.created[1].EndDate)
		assert.Equal(t, base.AddDate(0, 0, 10), f.categories.created[2].EndDate)
	})

	t.Run("sequential chains categories end to start by order", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil)
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)
		f.cascader.On("CascadeFromUnit", mock.Anything, int64(7)).Return(nil)

		_, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base, Sequential: true})
		assert.NoError(t, err)

		created := f.categories.created
		assert.Len(t, created, 3)
		assert.Equal(t, base, created[0].StartDate)
		assert.Equal(t, created[0].EndDate, created[1].StartDate)
		assert.Equal(t, created[1].EndDate, created[2].StartDate)
		assert.Equal(t, base.AddDate(0, 0, 14+21+10), created[2].EndDate)
	})

	t.Run("zero base date falls back to the clock", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil)
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)
		f.cascader.On("CascadeFromUnit", mock.Anything, int64(7)).Return(nil)

		_, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{})
		assert.NoError(t, err)
		assert.Equal(t, f.now, f.categories.created[0].StartDate)
	})

	t.Run("unknown team skips that assignment with a warning", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, int64(103)).Return(nil, repository.ErrNotFound)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil)
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)
		f.cascader.On("CascadeFromUnit", mock.Anything, int64(7)).Return(nil)

		result, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base})
		assert.NoError(t, err)
		assert.Equal(t, 3, result.CategoriesCreated)
		assert.Equal(t, 5, result.AssignmentsCreated)
		assert.Len(t, result.Warnings, 1)
		assert.Equal(t, "framing", result.Warnings[0].Category)
		assert.Equal(t, int64(103), result.Warnings[0].TeamID)
		assert.Equal(t, "team not found", result.Warnings[0].Reason)
	})

	t.Run("missing template aborts before any write", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(nil, repository.ErrNotFound)

		_, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base})
		assert.ErrorIs(t, err, repository.ErrNotFound)
		f.categories.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("store failure aborts with partial counts", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil).Once()
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down"))
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)

		result, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base})
		assert.Error(t, err)
		assert.Equal(t, 1, result.CategoriesCreated)
		assert.Equal(t, 2, result.AssignmentsCreated)
		f.cascader.AssertNotCalled(t, "CascadeFromUnit", mock.Anything, mock.Anything)
	})

	t.Run("re-applying duplicates rather than merging", func(t *testing.T) {
		f := newApplyFixture()
		f.units.On("GetByID", mock.Anything, int64(7)).Return(&model.Unit{ID: 7}, nil)
		f.templates.On("GetByID", mock.Anything, int64(5)).Return(villaTemplate(), nil)
		f.teams.On("GetByID", mock.Anything, mock.Anything).Return(&model.Team{ID: 1}, nil)
		f.categories.On("Insert", mock.Anything, mock.Anything).Return(int64(900), nil)
		f.assignments.On("Insert", mock.Anything, mock.Anything).Return(int64(800), nil)
		f.cascader.On("CascadeFromUnit", mock.Anything, int64(7)).Return(nil)

		for i := 0; i < 2; i++ {
			result, err := f.applicator.Apply(context.Background(), 7, 5, ApplyOptions{BaseDate: base})
			assert.NoError(t, err)
			assert.Equal(t, 3, result.CategoriesCreated)
		}
		assert.Len(t, f.categories.created, 6)
	})
}
