package event

import (
	"context"
	"sync"

	"github.com/crm/backend/internal/domain/shared"
)

// DefaultHistoryLimit is the number of events kept per aggregate
const DefaultHistoryLimit = 50

type storedEvent struct {
	eventType string
	payload   []byte
}

// EventHistory keeps the most recent events of each aggregate.
// Events are stored serialized, so readers get fresh copies.
type EventHistory struct {
	mu         sync.Mutex
	serializer *EventSerializer
	limit      int
	events     map[string][]storedEvent // aggregateID -> events, oldest first
}

// NewEventHistory creates a history keeping up to limit events per aggregate.
// A non-positive limit means DefaultHistoryLimit.
func NewEventHistory(serializer *EventSerializer, limit int) *EventHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &EventHistory{
		serializer: serializer,
		limit:      limit,
		events:     make(map[string][]storedEvent),
	}
}

// EventTypes returns nil: the history records all events
func (h *EventHistory) EventTypes() []string {
	return nil
}

// Handle records the event under its aggregate
func (h *EventHistory) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := h.serializer.Serialize(event)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := event.AggregateID()
	list := append(h.events[id], storedEvent{eventType: event.EventType(), payload: payload})
	if len(list) > h.limit {
		list = list[len(list)-h.limit:]
	}
	h.events[id] = list
	return nil
}

// ForAggregate returns the recorded events of an aggregate, oldest first
func (h *EventHistory) ForAggregate(aggregateID string) ([]shared.DomainEvent, error) {
	h.mu.Lock()
	stored := append([]storedEvent(nil), h.events[aggregateID]...)
	h.mu.Unlock()

	result := make([]shared.DomainEvent, 0, len(stored))
	for _, s := range stored {
		event, err := h.serializer.Deserialize(s.eventType, s.payload)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, nil
}

// Forget drops the history of an aggregate
func (h *EventHistory) Forget(aggregateID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.events, aggregateID)
}

var _ shared.EventHandler = (*EventHistory)(nil)
