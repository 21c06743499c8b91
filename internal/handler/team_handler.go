package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
)

type TeamHandler struct {
	repo   *repository.TeamRepository
	logger *zap.Logger
}

func NewTeamHandler(repo *repository.TeamRepository, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{repo: repo, logger: logger}
}

func (h *TeamHandler) Create(c *gin.Context) {
	var t model.Team
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
		h.logger.Error("Create team failed", zap.Error(err))
		writeError(c, err)
		return
	}
	t.ID = id
	c.JSON(http.StatusCreated, t)
}

func (h *TeamHandler) Get(c *gin.Context) {
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

func (h *TeamHandler) ListByCompany(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	teams, err := h.repo.ListByCompany(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

func (h *TeamHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var t model.Team
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	t.ID = id
	if t.CompanyID == 0 {
		existing, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		t.CompanyID = existing.CompanyID
	}
	if err := t.Validate(); err != nil {
		writeError(c, err)
		return
	}
	if err := h.repo.Update(c.Request.Context(), &t); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TeamHandler) Delete(c *gin.Context) {
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
