package mqhandler

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/notify"
	"github.com/benbakka/imtilak2-sub000/internal/service/schedule"
	"github.com/benbakka/imtilak2-sub000/pkg/mq"
)

// ScheduleAlertHandler consumes schedule.delayed / schedule.imminent events
// and hands them to the notification dispatcher. A payload that cannot be
// decoded is parked on the DLQ instead of being requeued forever.
type ScheduleAlertHandler struct {
	dispatcher *notify.Dispatcher
	publisher  *mq.Publisher
	routingKey string
	logger     *zap.Logger
}

func NewScheduleAlertHandler(
	dispatcher *notify.Dispatcher,
	publisher *mq.Publisher,
	routingKey string,
	logger *zap.Logger,
) *ScheduleAlertHandler {
	return &ScheduleAlertHandler{
		dispatcher: dispatcher,
		publisher:  publisher,
		routingKey: routingKey,
		logger:     logger,
	}
}

func (h *ScheduleAlertHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var alert schedule.Alert
	if err := json.Unmarshal(raw, &alert); err != nil {
		h.logger.Error("Failed to unmarshal schedule alert, parking on DLQ",
			zap.String("routing_key", h.routingKey),
			zap.Error(err),
		)
		if dlqErr := h.publisher.PublishToDLQ(h.routingKey, raw, err.Error()); dlqErr != nil {
			h.logger.Error("Failed to publish to DLQ", zap.Error(dlqErr))
			return dlqErr
		}
		// Acked: the message is parked, not lost.
		return nil
	}

	h.logger.Info("Handling schedule alert",
		zap.String("routing_key", h.routingKey),
		zap.String("kind", alert.Kind),
		zap.Int64("team_assignment_id", alert.TeamAssignmentID),
	)

	return h.dispatcher.HandleAlert(ctx, alert)
}
