package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/progress"
)

type ProjectHandler struct {
	repo       *repository.ProjectRepository
	aggregator *progress.Aggregator
	logger     *zap.Logger
}

func NewProjectHandler(repo *repository.ProjectRepository, aggregator *progress.Aggregator, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{repo: repo, aggregator: aggregator, logger: logger}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var p model.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if p.Status == "" {
		p.Status = model.ProjectStatusPlanning
	}
	p.Progress = 0

	if err := p.Validate(); err != nil {
		writeError(c, err)
		return
	}

	id, err := h.repo.Insert(c.Request.Context(), &p)
	if err != nil {
		h.logger.Error("Create project failed", zap.Error(err))
		writeError(c, err)
		return
	}
	p.ID = id
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("List projects failed", zap.Error(err))
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var p model.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.ID = id
	if err := p.Validate(); err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), &p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// SetProgress stores a manual override; the next cascade through the project
// supersedes it.
func (h *ProjectHandler) SetProgress(c *gin.Context) {
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
	if err := h.aggregator.SetProjectProgress(c.Request.Context(), id, body.Progress); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "progress": roundPct(body.Progress)})
}
