package event

import (
	"context"
	"testing"
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRegisteredSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}

func TestEventHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("records events per aggregate in order", func(t *testing.T) {
		history := NewEventHistory(newRegisteredSerializer(), 0)
		a, b := newTestCustomer(t), newTestCustomer(t)
		require.NoError(t, a.SignContract("A-1", time.Now()))

		for _, e := range append(a.GetDomainEvents(), b.GetDomainEvents()...) {
			require.NoError(t, history.Handle(ctx, e))
		}

		eventsA, err := history.ForAggregate(a.ID)
		require.NoError(t, err)
		require.Len(t, eventsA, 2)
		assert.Equal(t, partner.EventTypeCustomerCreated, eventsA[0].EventType())
		assert.Equal(t, partner.EventTypeContractSigned, eventsA[1].EventType())

		eventsB, err := history.ForAggregate(b.ID)
		require.NoError(t, err)
		assert.Len(t, eventsB, 1)
	})

	t.Run("keeps only the most recent events", func(t *testing.T) {
		history := NewEventHistory(newRegisteredSerializer(), 2)
		c := newTestCustomer(t)
		require.NoError(t, c.SignContract("A-1", time.Now()))
		require.NoError(t, c.TerminateContract())

		for _, e := range c.GetDomainEvents() {
			require.NoError(t, history.Handle(ctx, e))
		}

		events, err := history.ForAggregate(c.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, partner.EventTypeContractSigned, events[0].EventType())
		assert.Equal(t, partner.EventTypeContractTerminated, events[1].EventType())
	})

	t.Run("forget drops an aggregate", func(t *testing.T) {
		history := NewEventHistory(newRegisteredSerializer(), 10)
		c := newTestCustomer(t)
		require.NoError(t, history.Handle(ctx, c.GetDomainEvents()[0]))

		history.Forget(c.ID)

		events, err := history.ForAggregate(c.ID)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := NewAuditLogHandler(zap.New(core), NewEventSerializer())
	c := newTestCustomer(t)

	require.NoError(t, handler.Handle(context.Background(), c.GetDomainEvents()[0]))

	assert.Nil(t, handler.EventTypes())
	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, partner.EventTypeCustomerCreated, fields["event_type"])
	assert.Equal(t, c.ID, fields["aggregate_id"])
	assert.Contains(t, fields["payload"], "Event Tester")
}

func TestBusWithHistoryAndAudit(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)
	serializer := newRegisteredSerializer()
	history := NewEventHistory(serializer, 0)
	bus := NewInMemoryEventBus(logger)
	bus.Subscribe(history)
	bus.Subscribe(NewAuditLogHandler(logger, serializer))

	c := newTestCustomer(t)
	require.NoError(t, bus.Publish(context.Background(), c.GetDomainEvents()...))

	events, err := history.ForAggregate(c.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, logs.FilterMessage("domain event").Len())
}
