package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/service/clone"
	"github.com/benbakka/imtilak2-sub000/internal/service/progress"
	"github.com/benbakka/imtilak2-sub000/internal/service/template"
)

// UnitStore is the slice of the unit repository the handler needs.
type UnitStore interface {
	Insert(ctx context.Context, u *model.Unit) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Unit, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Unit, error)
	Update(ctx context.Context, u *model.Unit) error
	Delete(ctx context.Context, id int64) error
}

type UnitHandler struct {
	repo       UnitStore
	aggregator *progress.Aggregator
	applicator *template.Applicator
	cloner     *clone.Cloner
	logger     *zap.Logger
}

func NewUnitHandler(
	repo UnitStore,
	aggregator *progress.Aggregator,
	applicator *template.Applicator,
	cloner *clone.Cloner,
	logger *zap.Logger,
) *UnitHandler {
	return &UnitHandler{
		repo:       repo,
		aggregator: aggregator,
		applicator: applicator,
		cloner:     cloner,
		logger:     logger,
	}
}

func (h *UnitHandler) Create(c *gin.Context) {
	var u model.Unit
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u.Progress = 0
	if err := u.Validate(); err != nil {
		writeError(c, err)
		return
	}

	id, err := h.repo.Insert(c.Request.Context(), &u)
	if err != nil {
		h.logger.Error("Create unit failed", zap.Error(err))
		writeError(c, err)
		return
	}
	u.ID = id

	// The new zero-progress unit shifts the project mean immediately.
	projectProgress, err := h.aggregator.AggregateProject(c.Request.Context(), u.ProjectID)
	if err == nil {
		err = h.aggregator.SetProjectProgress(c.Request.Context(), u.ProjectID, projectProgress)
	}
	if err != nil {
		h.logger.Error("Project recompute after unit create failed",
			zap.Int64("project_id", u.ProjectID),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UnitHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UnitHandler) ListByProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	units, err := h.repo.ListByProject(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

func (h *UnitHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var u model.Unit
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	u.ID = id
	if u.ProjectID == 0 {
		// ProjectID is immutable on update; fetch it for validation.
		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		u.ProjectID = existing.ProjectID
	}
	if err := u.Validate(); err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), &u); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes the unit subtree and recomputes the parent project mean.
func (h *UnitHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	projectProgress, err := h.aggregator.AggregateProject(c.Request.Context(), u.ProjectID)
	if err == nil {
		err = h.aggregator.SetProjectProgress(c.Request.Context(), u.ProjectID, projectProgress)
	}
	if err != nil {
		h.logger.Error("Project recompute after unit delete failed",
			zap.Int64("project_id", u.ProjectID),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *UnitHandler) SetProgress(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Progress float64 `json:"progress"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.aggregator.SetUnitProgress(c.Request.Context(), id, body.Progress); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "progress": roundPct(body.Progress)})
}

func (h *UnitHandler) ApplyTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		TemplateID int64      `json:"template_id"`
		BaseDate   *time.Time `json:"base_date"`
		Sequential bool       `json:"sequential"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.TemplateID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template_id required"})
		return
	}

	opts := template.ApplyOptions{Sequential: body.Sequential}
	if body.BaseDate != nil {
		opts.BaseDate = *body.BaseDate
	}

	result, err := h.applicator.Apply(c.Request.Context(), id, body.TemplateID, opts)
	if err != nil {
		h.logger.Error("Template application failed",
			zap.Int64("unit_id", id),
			zap.Int64("template_id", body.TemplateID),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *UnitHandler) Clone(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		SourceUnitID int64 `json:"source_unit_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if body.SourceUnitID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source_unit_id required"})
		return
	}

	result, err := h.cloner.Clone(c.Request.Context(), body.SourceUnitID, id)
	if err != nil {
		h.logger.Error("Unit clone failed",
			zap.Int64("source_unit_id", body.SourceUnitID),
			zap.Int64("target_unit_id", id),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
