package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/assignment"
)

type TeamAssignmentHandler struct {
	repo    *repository.TeamAssignmentRepository
	service *assignment.Service
	logger  *zap.Logger
}

func NewTeamAssignmentHandler(
	repo *repository.TeamAssignmentRepository,
	service *assignment.Service,
	logger *zap.Logger,
) *TeamAssignmentHandler {
	return &TeamAssignmentHandler{repo: repo, service: service, logger: logger}
}

func (h *TeamAssignmentHandler) Create(c *gin.Context) {
	var a model.TeamAssignment
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id, cascade, err := h.service.Create(c.Request.Context(), &a)
	if err != nil {
		h.logger.Error("Create team assignment failed", zap.Error(err))
		writeError(c, err)
		return
	}
	a.ID = id
	c.JSON(http.StatusCreated, gin.H{"assignment": a, "cascade": cascade})
}

func (h *TeamAssignmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *TeamAssignmentHandler) ListByCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	assignments, err := h.repo.ListByCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// Advance is the one-click status cycle.
func (h *TeamAssignmentHandler) Advance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	a, cascade, err := h.service.Advance(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignment": a,
		"progress":   roundPct(a.Progress),
		"cascade":    cascade,
	})
}

func (h *TeamAssignmentHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		Status   string   `json:"status"`
		Progress *float64 `json:"progress"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	a, cascade, err := h.service.SetStatusAndProgress(c.Request.Context(), id, body.Status, body.Progress)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"assignment": a,
		"progress":   roundPct(a.Progress),
		"cascade":    cascade,
	})
}

// UpdateFlags sets the reception/payment pair and notes without touching
// status or progress, so no cascade is needed.
func (h *TeamAssignmentHandler) UpdateFlags(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var body struct {
		ReceptionStatus *bool     `json:"reception_status"`
		PaymentStatus   *bool     `json:"payment_status"`
		Notes           *string   `json:"notes"`
		Tasks           *[]string `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	a, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	if body.ReceptionStatus != nil {
		a.ReceptionStatus = *body.ReceptionStatus
	}
	if body.PaymentStatus != nil {
		a.PaymentStatus = *body.PaymentStatus
	}
	if body.Notes != nil {
		a.Notes = *body.Notes
	}
	if body.Tasks != nil {
		a.Tasks = *body.Tasks
	}
	if err := h.repo.Update(c.Request.Context(), a); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *TeamAssignmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	cascade, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "cascade": cascade})
}
