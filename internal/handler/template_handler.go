package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
)

type TemplateHandler struct {
	repo   *repository.TemplateRepository
	logger *zap.Logger
}

func NewTemplateHandler(repo *repository.TemplateRepository, logger *zap.Logger) *TemplateHandler {
	return &TemplateHandler{repo: repo, logger: logger}
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var t model.Template
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := t.Validate(); err != nil {
		writeError(c, err)
		return
	}

	id, err := h.repo.Insert(c.Request.Context(), &t)
	if err != nil {
		h.logger.Error("Create template failed", zap.Error(err))
		writeError(c, err)
		return
	}
	t.ID = id
	c.JSON(http.StatusCreated, t)
}

func (h *TemplateHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplateHandler) List(c *gin.Context) {
	templates, err := h.repo.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (h *TemplateHandler) Delete(c *gin.Context) {
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
