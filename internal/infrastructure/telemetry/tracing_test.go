package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer installs a global provider recording ended spans
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})

	return sr
}

func attributeMap(attrs []attribute.KeyValue) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[string(a.Key)] = a.Value.Emit()
	}
	return m
}

func TestStartSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "discount.quote",
		telemetry.WithAttribute(telemetry.SpanAttrStrategy, "Standard"),
		telemetry.WithAttribute(telemetry.SpanAttrAmount, decimal.RequireFromString("12500")),
		telemetry.WithSpanKind(trace.SpanKindServer),
	)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "discount.quote", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())

	attrs := attributeMap(spans[0].Attributes())
	assert.Equal(t, "Standard", attrs[telemetry.SpanAttrStrategy])
	assert.Equal(t, "12500.00", attrs[telemetry.SpanAttrAmount])
}

func TestStartCommandSpan(t *testing.T) {
	sr := setupTestTracer(t)

	ctx, span := telemetry.StartCommandSpan(context.Background(), "buy",
		telemetry.WithAttribute(telemetry.SpanAttrLineCount, 2))
	assert.True(t, trace.SpanContextFromContext(ctx).IsValid())
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "console.buy", spans[0].Name())
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind())

	attrs := attributeMap(spans[0].Attributes())
	assert.Equal(t, "buy", attrs[telemetry.SpanAttrCommand])
	assert.Equal(t, "2", attrs[telemetry.SpanAttrLineCount])
}

func TestSetAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "test")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, "c-1",
		telemetry.SpanAttrTier, "vip",
		42, "non-string key is skipped",
		"active", true,
		"dangling",
	)
	span.End()

	attrs := attributeMap(sr.Ended()[0].Attributes())
	assert.Equal(t, map[string]string{
		telemetry.SpanAttrCustomerID: "c-1",
		telemetry.SpanAttrTier:       "vip",
		"active":                     "true",
	}, attrs)
}

func TestRecordErrorAndSetOK(t *testing.T) {
	sr := setupTestTracer(t)
	ctx := context.Background()

	t.Run("error marks the span failed", func(t *testing.T) {
		_, span := telemetry.StartSpan(ctx, "failing")
		telemetry.RecordError(span, errors.New("customer not found"))
		span.End()

		ended := sr.Ended()
		last := ended[len(ended)-1]
		assert.Equal(t, codes.Error, last.Status().Code)
		assert.Equal(t, "customer not found", last.Status().Description)
		require.Len(t, last.Events(), 1)
		assert.Equal(t, "exception", last.Events()[0].Name)
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		_, span := telemetry.StartSpan(ctx, "fine")
		telemetry.RecordError(span, nil)
		telemetry.SetOK(span)
		span.End()

		ended := sr.Ended()
		assert.Equal(t, codes.Ok, ended[len(ended)-1].Status().Code)
	})

	t.Run("nil span is tolerated", func(t *testing.T) {
		assert.NotPanics(t, func() {
			telemetry.RecordError(nil, errors.New("x"))
			telemetry.SetOK(nil)
			telemetry.SetAttributes(nil, "k", "v")
			telemetry.AddEvent(nil, "e")
		})
	})
}

func TestAddEvent(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "payment")
	telemetry.AddEvent(span, "payment_rejected", telemetry.SpanAttrEventType, "PaymentAccepted", "attempt", 2)
	span.End()

	events := sr.Ended()[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "payment_rejected", events[0].Name)
	assert.Equal(t, map[string]string{
		telemetry.SpanAttrEventType: "PaymentAccepted",
		"attempt":                   "2",
	}, attributeMap(events[0].Attributes))
}
