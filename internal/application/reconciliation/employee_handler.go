package reconciliation

import (
	"context"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
)

// EmployeeHandler posts employee payments into payroll records
type EmployeeHandler struct {
	payroll reconciliation.PayrollRecordRepository
	now     func() time.Time
}

// NewEmployeeHandler creates a new EmployeeHandler
func NewEmployeeHandler(payroll reconciliation.PayrollRecordRepository) *EmployeeHandler {
	return &EmployeeHandler{
		payroll: payroll,
		now:     time.Now,
	}
}

// EntityType returns employee
func (h *EmployeeHandler) EntityType() reconciliation.EntityType {
	return reconciliation.EntityTypeEmployee
}

// Handle settles an existing payroll record for salary payments that name one,
// and otherwise synthesizes a paid one-day record. There is no secondary write.
func (h *EmployeeHandler) Handle(ctx context.Context, in HandlerInput) (*HandlerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "employee_handler", "handle")
	defer span.End()

	req := in.Request
	kind := in.PaymentKind
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentKind, kind.String())

	if !kind.IsPayroll() {
		err := shared.NewValidationError("payment kind %q cannot be paid through payroll", kind)
		telemetry.RecordError(span, err)
		return nil, err
	}

	if kind == reconciliation.PaymentKindSalary && req.PayrollRecordID != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrPayrollID, req.PayrollRecordID.String())
		rec, err := h.payroll.MarkPaid(ctx, *req.PayrollRecordID, in.EntityID, req.CreatedBy, h.now())
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		return &HandlerResult{
			ReferenceID: rec.ID,
			Steps:       []StepOutcome{applied(StepPayrollSettlement)},
		}, nil
	}

	rec, err := reconciliation.NewPaidDisbursement(reconciliation.DisbursementInput{
		EmployeeID: in.EntityID,
		ExpenseID:  in.Expense.ID,
		Kind:       kind,
		Amount:     req.Amount,
		PaidOn:     req.Date,
		PaidBy:     req.CreatedBy,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := h.payroll.Create(ctx, rec); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrReferenceID, rec.ID.String())
	return &HandlerResult{
		ReferenceID: rec.ID,
		Steps:       []StepOutcome{applied(StepPayrollRecord)},
	}, nil
}
