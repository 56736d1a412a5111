package main

import (
	"context"

	partnerapp "github.com/crm/backend/internal/application/partner"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// telemetryStack owns every telemetry provider started for the process
type telemetryStack struct {
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
	metrics  *telemetry.CustomerMetrics
}

// setupTelemetry starts the providers enabled in cfg. Disabled signals get no-op providers.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryStack, error) {
	tc := cfg.Telemetry
	stack := &telemetryStack{}
	var err error

	stack.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.ProfilingServer,
		ApplicationName: cfg.App.Name,
		ProfileTypes:    tc.ProfileTypes,
	}, log)
	if err != nil {
		return nil, err
	}

	stack.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.TracingEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		stack.shutdown(ctx, log)
		return nil, err
	}
	if tc.SpanProfiles && stack.profiler.IsEnabled() {
		if err := stack.tracer.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	stack.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.MetricsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.ExportInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		stack.shutdown(ctx, log)
		return nil, err
	}

	stack.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       cfg.App.Name,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		stack.shutdown(ctx, log)
		return nil, err
	}

	return stack, nil
}

// bridgeLogger tees log to the OTEL logs pipeline when it is enabled
func (s *telemetryStack) bridgeLogger(log *zap.Logger, cfg *config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return telemetry.BridgeLogger(log, s.logs, cfg.App.Name, level)
}

// startCustomerMetrics creates the CRM instruments and samples tier gauges from the service
func (s *telemetryStack) startCustomerMetrics(ctx context.Context, service *partnerapp.CustomerService, cfg *config.Config, log *zap.Logger) error {
	metrics, err := telemetry.NewCustomerMetrics(telemetry.CustomerMetricsConfig{
		Meter:    s.meter.Meter(telemetry.TracerName),
		Logger:   log.Named("metrics"),
		Provider: tierStats{service: service},
	})
	if err != nil {
		return err
	}
	if s.meter.IsEnabled() {
		metrics.StartPeriodicCollection(ctx, cfg.Telemetry.CollectInterval)
	}
	s.metrics = metrics
	return nil
}

// shutdown stops providers in reverse start order
func (s *telemetryStack) shutdown(ctx context.Context, log *zap.Logger) {
	if s.metrics != nil {
		s.metrics.Stop()
	}
	if s.logs != nil {
		if err := s.logs.Shutdown(ctx); err != nil {
			log.Warn("Logs shutdown failed", zap.Error(err))
		}
	}
	if s.meter != nil {
		if err := s.meter.Shutdown(ctx); err != nil {
			log.Warn("Metrics shutdown failed", zap.Error(err))
		}
	}
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			log.Warn("Tracing shutdown failed", zap.Error(err))
		}
	}
	if s.profiler != nil {
		if err := s.profiler.Stop(); err != nil {
			log.Warn("Profiler stop failed", zap.Error(err))
		}
	}
}

// tierStats reads the gauge snapshot through the service so it is taken under the service lock
type tierStats struct {
	service *partnerapp.CustomerService
}

func (t tierStats) TierSnapshots(ctx context.Context) ([]telemetry.TierSnapshot, error) {
	summary, err := t.service.Summary(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]telemetry.TierSnapshot, 0, len(summary.Tiers))
	for _, ts := range summary.Tiers {
		snapshots = append(snapshots, telemetry.TierSnapshot{
			Tier:            ts.Tier,
			Customers:       ts.Customers,
			ActiveContracts: ts.ActiveContracts,
			GrossTotal:      ts.GrossTotal,
			DiscountTotal:   ts.DiscountTotal,
		})
	}
	return snapshots, nil
}
