package event

import (
	"context"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

// mockHandler implements EventHandler for testing
type mockHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
}

func newMockHandler(eventTypes ...string) *mockHandler {
	return &mockHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *mockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.handled = append(h.handled, event)
	return nil
}

func (h *mockHandler) EventTypes() []string {
	return h.eventTypes
}

func TestHandlerRegistry_Register(t *testing.T) {
	t.Run("specific types", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newMockHandler("ContractSigned", "ContractRenewed")

		registry.Register(handler, "ContractSigned", "ContractRenewed")

		assert.Len(t, registry.GetHandlers("ContractSigned"), 1)
		assert.Len(t, registry.GetHandlers("ContractRenewed"), 1)
		assert.Len(t, registry.GetHandlers("ContractTerminated"), 0)
	})

	t.Run("wildcard receives everything", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newMockHandler()

		registry.Register(handler)

		handlers := registry.GetHandlers("AnyEventType")
		assert.Len(t, handlers, 1)
		assert.Equal(t, handler, handlers[0])
	})

	t.Run("specific handlers come before wildcards", func(t *testing.T) {
		registry := NewHandlerRegistry()
		specific := newMockHandler("PurchaseAdded")
		wildcard := newMockHandler()

		registry.Register(wildcard)
		registry.Register(specific, "PurchaseAdded")

		handlers := registry.GetHandlers("PurchaseAdded")
		assert.Len(t, handlers, 2)
		assert.Equal(t, specific, handlers[0])
		assert.Equal(t, wildcard, handlers[1])
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		registry := NewHandlerRegistry()
		handler := newMockHandler()

		registry.Register(handler, "PurchaseAdded")
		registry.Register(handler, "PurchaseAdded")
		registry.Register(handler)
		registry.Register(handler)

		assert.Len(t, registry.GetHandlers("PurchaseAdded"), 2)
		assert.Equal(t, 1, registry.Count())
	})
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	handler1 := newMockHandler("PurchaseAdded")
	handler2 := newMockHandler("PurchaseAdded")
	wildcard := newMockHandler()

	registry.Register(handler1, "PurchaseAdded")
	registry.Register(handler2, "PurchaseAdded")
	registry.Register(wildcard)
	assert.Equal(t, 3, registry.Count())

	registry.Unregister(handler1)
	registry.Unregister(wildcard)

	handlers := registry.GetHandlers("PurchaseAdded")
	assert.Len(t, handlers, 1)
	assert.Equal(t, handler2, handlers[0])
	assert.Equal(t, 1, registry.Count())
}

func TestHandlerRegistry_GetHandlersReturnsCopy(t *testing.T) {
	registry := NewHandlerRegistry()
	registry.Register(newMockHandler("X"), "X")

	handlers := registry.GetHandlers("X")
	handlers[0] = nil

	assert.NotNil(t, registry.GetHandlers("X")[0])
}
