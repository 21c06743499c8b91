package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
)

type ScheduleHandler struct {
	scanner       *schedule.Scanner
	notifications *repository.NotificationRepository
	logger        *zap.Logger
}

func NewScheduleHandler(
	scanner *schedule.Scanner,
	notifications *repository.NotificationRepository,
	logger *zap.Logger,
) *ScheduleHandler {
	return &ScheduleHandler{
		scanner:       scanner,
		notifications: notifications,
		logger:        logger,
	}
}

// Delayed returns assignments past their category end date, re-derived on
// every call.
func (h *ScheduleHandler) Delayed(c *gin.Context) {
	alerts, err := h.scanner.Scan(c.Request.Context(), schedule.DefaultQueryHorizonDays, "http")
	if err != nil {
		h.logger.Error("Delayed scan failed", zap.Error(err))
		writeError(c, err)
		return
	}

	delayed := make([]schedule.Alert, 0)
	for _, a := range alerts {
		if a.Kind == model.AlertKindDelayed {
			delayed = append(delayed, a)
		}
	}
	c.JSON(http.StatusOK, gin.H{"delayed": delayed})
}

// Imminent returns not-yet-started assignments whose category starts within
// the horizon (query param horizon_days, default 7).
func (h *ScheduleHandler) Imminent(c *gin.Context) {
	horizon := schedule.DefaultQueryHorizonDays
	if raw := c.Query("horizon_days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid horizon_days"})
			return
		}
		horizon = n
	}

	alerts, err := h.scanner.Scan(c.Request.Context(), horizon, "http")
	if err != nil {
		h.logger.Error("Imminent scan failed", zap.Error(err))
		writeError(c, err)
		return
	}

	imminent := make([]schedule.Alert, 0)
	for _, a := range alerts {
		if a.Kind == model.AlertKindImminent {
			imminent = append(imminent, a)
		}
	}
	c.JSON(http.StatusOK, gin.H{"imminent": imminent, "horizon_days": horizon})
}

func (h *ScheduleHandler) Notifications(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	notifications, err := h.notifications.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}
