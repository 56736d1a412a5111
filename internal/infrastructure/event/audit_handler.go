package event

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the log
type AuditLogHandler struct {
	logger     *zap.Logger
	serializer *EventSerializer
}

// NewAuditLogHandler creates an audit handler.
// The event payload is logged as JSON.
func NewAuditLogHandler(logger *zap.Logger, serializer *EventSerializer) *AuditLogHandler {
	return &AuditLogHandler{
		logger:     logger.Named("audit"),
		serializer: serializer,
	}
}

// EventTypes returns nil: the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return err
	}

	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_at", event.OccurredAt()),
		zap.ByteString("payload", payload),
	)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
