package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/crm/backend/internal/domain/partner"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DefaultCollectInterval is used when no gauge collection interval is set
const DefaultCollectInterval = time.Minute

// Command outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// TierSnapshot is the state of one customer tier at collection time
type TierSnapshot struct {
	Tier            string
	Customers       int
	ActiveContracts int
	GrossTotal      decimal.Decimal
	DiscountTotal   decimal.Decimal
}

// TierStatsProvider reports the per-tier state sampled into gauges
type TierStatsProvider interface {
	TierSnapshots(ctx context.Context) ([]TierSnapshot, error)
}

// CustomerMetrics turns customer domain events into counters and
// periodically samples per-tier state into gauges.
// It is registered on the event bus as a handler of all events.
type CustomerMetrics struct {
	logger   *zap.Logger
	provider TierStatsProvider

	customersCreated *Counter
	customersDeleted *Counter
	contractEvents   *Counter
	purchases        *Counter
	purchaseAmount   *FloatCounter
	payments         *Counter
	paymentAmount    *FloatCounter
	bonusChanges     *Counter
	commandDuration  *Histogram

	customers       *Gauge
	activeContracts *Gauge
	grossTotal      *FloatGauge
	discountTotal   *FloatGauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// CustomerMetricsConfig holds the dependencies of CustomerMetrics
type CustomerMetricsConfig struct {
	Meter    metric.Meter
	Logger   *zap.Logger
	Provider TierStatsProvider
}

// ErrMeterNil is returned when no meter is configured
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// NewCustomerMetrics creates every CRM instrument on the meter
func NewCustomerMetrics(cfg CustomerMetricsConfig) (*CustomerMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &CustomerMetrics{
		logger:   logger,
		provider: cfg.Provider,
		stopChan: make(chan struct{}),
	}

	counters := []struct {
		target            **Counter
		name, desc, units string
	}{
		{&m.customersCreated, "crm_customers_created_total", "Customers created", "{customers}"},
		{&m.customersDeleted, "crm_customers_deleted_total", "Customers deleted", "{customers}"},
		{&m.contractEvents, "crm_contract_events_total", "Contract signings, terminations and renewals", "{events}"},
		{&m.purchases, "crm_purchases_total", "Purchases recorded", "{purchases}"},
		{&m.payments, "crm_payments_total", "Payments accepted", "{payments}"},
		{&m.bonusChanges, "crm_bonus_point_changes_total", "VIP bonus balance changes", "{changes}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.units)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	if m.purchaseAmount, err = NewFloatCounter(cfg.Meter, "crm_purchase_amount_total", "Gross amount of recorded purchases", "{currency}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewFloatCounter(cfg.Meter, "crm_payment_amount_total", "Amount of accepted payments", "{currency}"); err != nil {
		return nil, err
	}
	if m.commandDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "crm_command_duration_seconds",
		Description: "Console command latency",
		Unit:        "s",
		Boundaries:  CommandDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.customers, err = NewGauge(cfg.Meter, "crm_customers", "Stored customers", "{customers}"); err != nil {
		return nil, err
	}
	if m.activeContracts, err = NewGauge(cfg.Meter, "crm_active_contracts", "Customers with an active contract", "{contracts}"); err != nil {
		return nil, err
	}
	if m.grossTotal, err = NewFloatGauge(cfg.Meter, "crm_purchase_gross_total", "Purchase totals before discount", "{currency}"); err != nil {
		return nil, err
	}
	if m.discountTotal, err = NewFloatGauge(cfg.Meter, "crm_purchase_discount_total", "Discount granted on purchase totals", "{currency}"); err != nil {
		return nil, err
	}

	return m, nil
}

// EventTypes returns nil: the handler receives all events
func (m *CustomerMetrics) EventTypes() []string {
	return nil
}

// Handle records the counters an event contributes to.
// Unknown events are ignored.
func (m *CustomerMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *partner.CustomerCreatedEvent:
		m.customersCreated.Inc(ctx, AttrTier.String(e.Tier.String()))
	case *partner.CustomerDeletedEvent:
		m.customersDeleted.Inc(ctx, AttrTier.String(e.Tier.String()))
	case *partner.ContractEvent:
		m.contractEvents.Inc(ctx, AttrEventType.String(e.EventType()))
	case *partner.PurchaseAddedEvent:
		m.purchases.Inc(ctx)
		m.purchaseAmount.Add(ctx, e.TotalPrice.InexactFloat64())
	case *partner.PaymentAcceptedEvent:
		m.payments.Inc(ctx)
		m.paymentAmount.Add(ctx, e.PaidAmount.InexactFloat64())
	case *partner.BonusPointsChangedEvent:
		m.bonusChanges.Inc(ctx, AttrReason.String(e.Reason))
	}
	return nil
}

// RecordCommand records the latency and outcome of one console command
func (m *CustomerMetrics) RecordCommand(ctx context.Context, command string, d time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.commandDuration.RecordDuration(ctx, d, AttrCommand.String(command), AttrOutcome.String(outcome))
}

// Collect samples the provider into the per-tier gauges
func (m *CustomerMetrics) Collect(ctx context.Context) {
	if m.provider == nil {
		m.logger.Debug("No tier stats provider configured, skipping gauge collection")
		return
	}

	snapshots, err := m.provider.TierSnapshots(ctx)
	if err != nil {
		m.logger.Warn("Failed to collect tier stats", zap.Error(err))
		return
	}

	for _, s := range snapshots {
		attr := AttrTier.String(s.Tier)
		m.customers.Record(ctx, int64(s.Customers), attr)
		m.activeContracts.Record(ctx, int64(s.ActiveContracts), attr)
		m.grossTotal.Record(ctx, s.GrossTotal.InexactFloat64(), attr)
		m.discountTotal.Record(ctx, s.DiscountTotal.InexactFloat64(), attr)
	}
}

// StartPeriodicCollection runs Collect immediately and then every interval
// until Stop is called or ctx is done. It does not block.
func (m *CustomerMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	m.collectOnce.Do(func() {
		if interval <= 0 {
			interval = DefaultCollectInterval
		}
		go m.runPeriodicCollection(ctx, interval)
	})
}

func (m *CustomerMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Collect(ctx)

	for {
		select {
		case <-m.stopChan:
			m.logger.Debug("Stopping periodic customer metrics collection")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Collect(ctx)
		}
	}
}

// Stop stops the periodic collection.
func (m *CustomerMetrics) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

var _ shared.EventHandler = (*CustomerMetrics)(nil)
