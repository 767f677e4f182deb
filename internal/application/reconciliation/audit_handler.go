package reconciliation

import (
	"context"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// IntegrationAuditHandler writes an audit line for every integrated expense
type IntegrationAuditHandler struct {
	logger *zap.Logger
}

// NewIntegrationAuditHandler creates a new IntegrationAuditHandler
func NewIntegrationAuditHandler(log *zap.Logger) *IntegrationAuditHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &IntegrationAuditHandler{logger: log.Named("audit")}
}

// EventTypes returns the events this handler subscribes to
func (h *IntegrationAuditHandler) EventTypes() []string {
	return []string{reconciliation.EventTypeExpenseIntegrated}
}

// Handle logs the link carried by an ExpenseIntegratedEvent
func (h *IntegrationAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	evt, ok := event.(*reconciliation.ExpenseIntegratedEvent)
	if !ok {
		return nil
	}

	fields := []zap.Field{
		zap.String("event_id", evt.EventID().String()),
		zap.String("expense_id", evt.AggregateID().String()),
		zap.String("entity_type", evt.Link.EntityType.String()),
		zap.String("entity_id", evt.Link.EntityID.String()),
		zap.String("reference_id", evt.Link.ReferenceID.String()),
		zap.String("amount", evt.Amount.StringFixed(2)),
		zap.Time("occurred_at", evt.OccurredAt()),
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}
	if len(evt.Warnings) > 0 {
		fields = append(fields, zap.Strings("warnings", evt.Warnings))
	}

	h.logger.Info("Expense integrated", fields...)
	return nil
}

var _ shared.EventHandler = (*IntegrationAuditHandler)(nil)
