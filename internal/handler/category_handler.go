package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/progress"
)

type CategoryHandler struct {
	repo       *repository.CategoryRepository
	aggregator *progress.Aggregator
	logger     *zap.Logger
}

func NewCategoryHandler(repo *repository.CategoryRepository, aggregator *progress.Aggregator, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{repo: repo, aggregator: aggregator, logger: logger}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var cat model.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat.Progress = 0
	if err := cat.Validate(); err != nil {
		writeError(c, err)
		return
	}

	id, err := h.repo.Insert(c.Request.Context(), &cat)
	if err != nil {
		h.logger.Error("Create category failed", zap.Error(err))
		writeError(c, err)
		return
	}
	cat.ID = id

	// An empty category counts as 0 in the unit mean from now on.
	if err := h.aggregator.CascadeFromUnit(c.Request.Context(), cat.UnitID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cat, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandler) ListByUnit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	categories, err := h.repo.ListByUnit(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cat model.Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat.ID = id
	if cat.UnitID == 0 {
		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		cat.UnitID = existing.UnitID
	}
	if err := cat.Validate(); err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), &cat); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Delete removes the category subtree and recomputes unit and project means.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cat, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if err := h.aggregator.CascadeFromUnit(c.Request.Context(), cat.UnitID); err != nil {
		h.logger.Error("Cascade after category delete failed",
			zap.Int64("unit_id", cat.UnitID),
			zap.Error(err),
		)
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
