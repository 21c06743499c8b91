// Package notify turns schedule alerts into persisted notification records
// and outbound messages. Records are a derived cache: a fresh scan can always
// rebuild them.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
	"github.com/benbakka/imtilak2-sub000/pkg/metrics"
)

type Store interface {
	Insert(ctx context.Context, n *model.Notification) (int64, error)
}

type Dispatcher struct {
	store    Store
	rdb      *redis.Client
	clock    schedule.Clock
	logger   *zap.Logger
	dedupTTL time.Duration
}

func NewDispatcher(store Store, rdb *redis.Client, clock schedule.Clock, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		store:    store,
		rdb:      rdb,
		clock:    clock,
		logger:   logger,
		dedupTTL: 24 * time.Hour,
	}
}

// HandleAlert persists and sends one alert. The scheduler re-scans every
// interval, so the same breach arrives repeatedly; a Redis SETNX keyed by
// (kind, assignment, day) collapses it to one notification per day.
func (d *Dispatcher) HandleAlert(ctx context.Context, alert schedule.Alert) error {
	kindLabel := "delayed"
	if alert.Kind == model.AlertKindImminent {
		kindLabel = "imminent"
	}

	dedupKey := fmt.Sprintf("alert:%s:%d:%s",
		alert.Kind,
		alert.TeamAssignmentID,
		d.clock.Now().Format("2006-01-02"),
	)
	fresh, err := d.rdb.SetNX(ctx, dedupKey, "1", d.dedupTTL).Result()
	if err != nil {
		// Redis being down should not silence alerts; fall through and send.
		d.logger.Warn("Alert dedup check failed, sending anyway",
			zap.String("key", dedupKey),
			zap.Error(err),
		)
		fresh = true
	}
	if !fresh {
		d.logger.Debug("Alert already notified today",
			zap.String("key", dedupKey),
		)
		metrics.IncrementNotification(kindLabel, "deduped")
		return nil
	}

	notification := &model.Notification{
		Kind:             alert.Kind,
		TeamAssignmentID: alert.TeamAssignmentID,
		ProjectID:        alert.ProjectID,
		UnitID:           alert.UnitID,
		CategoryID:       alert.CategoryID,
		TeamID:           alert.TeamID,
		Message:          buildMessage(alert),
	}
	switch alert.Kind {
	case model.AlertKindDelayed:
		notification.Days = alert.DaysOverdue
	case model.AlertKindImminent:
		notification.Days = alert.DaysUntilStart
	}

	if _, err := d.store.Insert(ctx, notification); err != nil {
		metrics.IncrementNotification(kindLabel, "failed")
		return err
	}

	if err := d.sendPush(ctx, notification); err != nil {
		d.logger.Error("Failed to send push notification",
			zap.Int64("team_assignment_id", alert.TeamAssignmentID),
			zap.Error(err),
		)
		metrics.IncrementNotification(kindLabel, "failed")
		return err
	}

	metrics.IncrementNotification(kindLabel, "sent")
	d.logger.Info("Notification dispatched",
		zap.String("kind", alert.Kind),
		zap.Int64("team_assignment_id", alert.TeamAssignmentID),
	)
	return nil
}

func buildMessage(alert schedule.Alert) string {
	switch alert.Kind {
	case model.AlertKindDelayed:
		return fmt.Sprintf("Team assignment %d is %d day(s) overdue", alert.TeamAssignmentID, alert.DaysOverdue)
	case model.AlertKindImminent:
		return fmt.Sprintf("Team assignment %d starts in %d day(s)", alert.TeamAssignmentID, alert.DaysUntilStart)
	}
	return fmt.Sprintf("Schedule alert for team assignment %d", alert.TeamAssignmentID)
}

func (d *Dispatcher) sendPush(ctx context.Context, n *model.Notification) error {
	// TODO: wire a real push provider; the delivery transport is external.
	d.logger.Info("Sending push notification",
		zap.Int64("team_id", n.TeamID),
		zap.String("message", n.Message),
	)
	return nil
}
