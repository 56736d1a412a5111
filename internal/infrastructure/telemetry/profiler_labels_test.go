package telemetry_test

import (
	"context"
	"runtime/pprof"
	"strings"
	"sync"
	"testing"

	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
)

func labelsOf(ctx context.Context) map[string]string {
	labels := map[string]string{}
	pprof.ForLabels(ctx, func(key, value string) bool {
		labels[key] = value
		return true
	})
	return labels
}

func TestWithProfilingLabels(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		labels map[string]string
		want   map[string]string
	}{
		{
			name:   "nil labels",
			labels: nil,
			want:   map[string]string{},
		},
		{
			name:   "command and tier",
			labels: telemetry.CommandLabels("buy", map[string]string{telemetry.ProfilingLabelTier: "vip"}),
			want:   map[string]string{"command": "buy", "tier": "vip"},
		},
		{
			name:   "high-cardinality and empty labels are dropped",
			labels: map[string]string{"command": "pay", "customer_id": "c-1", "session_id": "s-1", "tier": ""},
			want:   map[string]string{"command": "pay"},
		},
		{
			name:   "keys are normalized",
			labels: map[string]string{"Event Type": "PurchaseAdded", "batch-size": "2", "amount($)": "10"},
			want:   map[string]string{"event_type": "PurchaseAdded", "batch_size": "2", "amount": "10"},
		},
		{
			name:   "long values are truncated",
			labels: map[string]string{"region": strings.Repeat("x", telemetry.MaxLabelValueLength+10)},
			want:   map[string]string{"region": strings.Repeat("x", telemetry.MaxLabelValueLength)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]string
			called := false
			telemetry.WithProfilingLabels(ctx, tt.labels, func(c context.Context) {
				called = true
				got = labelsOf(c)
			})
			assert.True(t, called)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithPprofLabels(t *testing.T) {
	var got map[string]string
	telemetry.WithPprofLabels(context.Background(), telemetry.RegionLabels("discount", nil), func(c context.Context) {
		got = labelsOf(c)
	})
	assert.Equal(t, map[string]string{"region": "discount"}, got)

	called := false
	telemetry.WithPprofLabels(context.Background(), map[string]string{}, func(context.Context) { called = true })
	assert.True(t, called)
}

func TestProfilingLabels_CallerMapIsCopied(t *testing.T) {
	labels := map[string]string{"command": "list"}
	var got map[string]string

	telemetry.WithProfilingLabels(context.Background(), labels, func(c context.Context) {
		labels["command"] = "changed"
		got = labelsOf(c)
	})

	assert.Equal(t, "list", got["command"])
}

func TestNestedProfilingLabels(t *testing.T) {
	var got map[string]string
	telemetry.WithProfilingLabels(context.Background(), telemetry.CommandLabels("buy", nil), func(outer context.Context) {
		telemetry.WithProfilingLabels(outer, telemetry.RegionLabels("event_dispatch", nil), func(inner context.Context) {
			got = labelsOf(inner)
		})
	})
	assert.Equal(t, map[string]string{"command": "buy", "region": "event_dispatch"}, got)
}

func TestConcurrentProfilingLabels(t *testing.T) {
	var wg sync.WaitGroup
	for _, command := range []string{"list", "show", "buy", "pay", "quote"} {
		wg.Add(1)
		go func(command string) {
			defer wg.Done()
			telemetry.WithProfilingLabels(context.Background(), telemetry.CommandLabels(command, nil), func(c context.Context) {
				assert.Equal(t, command, labelsOf(c)["command"])
			})
		}(command)
	}
	wg.Wait()
}
