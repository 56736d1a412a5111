package telemetry_test

import (
	"context"
	"sync"
	"testing"

	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// recordingProcessor keeps the body of every emitted record
type recordingProcessor struct {
	mu     sync.Mutex
	bodies []string
}

func (p *recordingProcessor) OnEmit(ctx context.Context, record *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, record.Body().AsString())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }
func (p *recordingProcessor) Shutdown(ctx context.Context) error                     { return nil }
func (p *recordingProcessor) ForceFlush(ctx context.Context) error                   { return nil }

var _ sdklog.Processor = (*recordingProcessor)(nil)

func (p *recordingProcessor) Bodies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.bodies...)
}

func newTestLoggerProvider(t *testing.T) (*telemetry.LoggerProvider, *recordingProcessor) {
	t.Helper()

	original := global.GetLoggerProvider()
	t.Cleanup(func() { global.SetLoggerProvider(original) })

	processor := &recordingProcessor{}
	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.LogsConfig{
		Enabled:     true,
		ServiceName: "crm-test",
	}, zaptest.NewLogger(t), telemetry.WithLogProcessor(processor))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	return lp, processor
}

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{ServiceName: "crm-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))

	t.Run("bridge core is a no-op", func(t *testing.T) {
		core := telemetry.NewZapOTELCore(lp, "crm", zapcore.InfoLevel)
		assert.False(t, core.Enabled(zapcore.ErrorLevel))
	})

	t.Run("bridged logger is the base logger", func(t *testing.T) {
		base := zap.NewNop()
		assert.Same(t, base, telemetry.BridgeLogger(base, lp, "crm", zapcore.InfoLevel))
		assert.Same(t, base, telemetry.BridgeLogger(base, nil, "crm", zapcore.InfoLevel))
	})
}

func TestBridgeLogger(t *testing.T) {
	lp, processor := newTestLoggerProvider(t)
	assert.True(t, lp.IsEnabled())

	baseCore, baseLogs := observer.New(zapcore.DebugLevel)
	logger := telemetry.BridgeLogger(zap.New(baseCore), lp, "crm", zapcore.InfoLevel)

	logger.Debug("debug stays local")
	logger.Info("customer created", zap.String("tier", "vip"))
	logger.With(zap.String("session_id", "s-1")).Warn("payment rejected")

	require.NoError(t, lp.ForceFlush(context.Background()))

	assert.Equal(t, 3, baseLogs.Len(), "base core receives every entry")
	assert.Equal(t, []string{"customer created", "payment rejected"}, processor.Bodies())
}

func TestNewZapOTELCore_DebugLevel(t *testing.T) {
	lp, processor := newTestLoggerProvider(t)

	logger := zap.New(telemetry.NewZapOTELCore(lp, "crm", zapcore.DebugLevel))
	logger.Debug("quote requested")

	assert.Equal(t, []string{"quote requested"}, processor.Bodies())
}
