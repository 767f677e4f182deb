package telemetry

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Integration outcomes recorded on erp_expense_integration_total
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
	OutcomeReplayed = "replayed"
)

// IntegrationMetrics tracks expense reconciliation activity.
type IntegrationMetrics struct {
	logger *zap.Logger

	integrationTotal    *Counter
	integrationDuration *Histogram
	integratedAmount    *Counter
	stepWarningTotal    *Counter
	lockConflictTotal   *Counter
	classificationTotal *Counter
}

// IntegrationMetricsConfig holds configuration for integration metrics.
type IntegrationMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewIntegrationMetrics registers the reconciliation instruments on the meter.
func NewIntegrationMetrics(cfg IntegrationMetricsConfig) (*IntegrationMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	im := &IntegrationMetrics{logger: logger}

	var err error
	im.integrationTotal, err = NewCounter(
		cfg.Meter,
		"erp_expense_integration_total",
		"Total number of expense integration attempts by entity type and outcome",
		"{integrations}",
	)
	if err != nil {
		return nil, err
	}

	im.integrationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "erp_expense_integration_duration_seconds",
		Description: "Duration of one expense integration call",
		Unit:        "s",
		Boundaries:  IntegrationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	im.integratedAmount, err = NewCounter(
		cfg.Meter,
		"erp_expense_integrated_amount_total",
		"Total amount of integrated expenses in minor units (cents)",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	im.stepWarningTotal, err = NewCounter(
		cfg.Meter,
		"erp_expense_integration_step_warning_total",
		"Secondary ledger writes that failed or were skipped after the primary write succeeded",
		"{steps}",
	)
	if err != nil {
		return nil, err
	}

	im.lockConflictTotal, err = NewCounter(
		cfg.Meter,
		"erp_expense_integration_lock_conflict_total",
		"Integration calls rejected because the expense lock was held",
		"{conflicts}",
	)
	if err != nil {
		return nil, err
	}

	im.classificationTotal, err = NewCounter(
		cfg.Meter,
		"erp_expense_classification_total",
		"Expenses classified by resolved entity type",
		"{expenses}",
	)
	if err != nil {
		return nil, err
	}

	return im, nil
}

// RecordIntegration records the outcome and latency of one Integrate call.
// errorCode is empty on success.
func (im *IntegrationMetrics) RecordIntegration(ctx context.Context, entityType, outcome, errorCode string, d time.Duration) {
	attrs := []attribute.KeyValue{
		AttrEntityType.String(entityType),
		AttrOutcome.String(outcome),
	}
	if errorCode != "" {
		attrs = append(attrs, AttrErrorCode.String(errorCode))
	}
	im.integrationTotal.Inc(ctx, attrs...)
	im.integrationDuration.RecordDuration(ctx, d, AttrEntityType.String(entityType), AttrOutcome.String(outcome))
}

// RecordAmount adds an integrated expense amount, rounded to cents.
// Negative amounts are ignored since counters are monotonic.
func (im *IntegrationMetrics) RecordAmount(ctx context.Context, entityType string, amount decimal.Decimal) {
	cents := amount.Shift(2).Round(0).IntPart()
	if cents <= 0 {
		return
	}
	im.integratedAmount.Add(ctx, cents, AttrEntityType.String(entityType))
}

// RecordStepWarning records a secondary step that did not apply.
func (im *IntegrationMetrics) RecordStepWarning(ctx context.Context, entityType, step, status string) {
	im.stepWarningTotal.Inc(ctx,
		AttrEntityType.String(entityType),
		AttrStep.String(step),
		AttrOutcome.String(status),
	)
}

// RecordLockConflict records a rejected concurrent call on the same expense.
func (im *IntegrationMetrics) RecordLockConflict(ctx context.Context) {
	im.lockConflictTotal.Inc(ctx)
}

// RecordClassification records the ledger an expense category resolved to.
func (im *IntegrationMetrics) RecordClassification(ctx context.Context, entityType, paymentKind string) {
	im.classificationTotal.Inc(ctx,
		AttrEntityType.String(entityType),
		AttrPaymentKind.String(paymentKind),
	)
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewIntegrationMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
