package reconciliation

import (
	"context"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// VendorHandler records supplier payments and applies them to accounts-payable bills
type VendorHandler struct {
	payments reconciliation.VendorPaymentRepository
	bills    reconciliation.VendorBillRepository
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(
	payments reconciliation.VendorPaymentRepository,
	bills reconciliation.VendorBillRepository,
) *VendorHandler {
	return &VendorHandler{
		payments: payments,
		bills:    bills,
	}
}

// EntityType returns supplier
func (h *VendorHandler) EntityType() reconciliation.EntityType {
	return reconciliation.EntityTypeSupplier
}

// Handle writes the payment record and, when a bill is named, applies the
// payment to it. The bill is checked before anything is written.
func (h *VendorHandler) Handle(ctx context.Context, in HandlerInput) (*HandlerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "vendor_handler", "handle")
	defer span.End()

	req := in.Request
	supplierID := in.EntityID

	var bill *reconciliation.VendorBill
	if req.VendorBillID != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrVendorBillID, req.VendorBillID.String())
		found, err := h.bills.FindByID(ctx, *req.VendorBillID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if found.SupplierID != supplierID {
			err := shared.NewValidationError("vendor bill %s does not belong to supplier %s", found.ID, supplierID)
			telemetry.RecordError(span, err)
			return nil, err
		}
		bill = found
	}

	record, err := reconciliation.NewVendorPaymentRecord(reconciliation.VendorPaymentInput{
		SupplierID:    supplierID,
		VendorBillID:  req.VendorBillID,
		ExpenseID:     in.Expense.ID,
		Amount:        req.Amount,
		PaymentDate:   req.Date,
		Method:        req.PaymentMethod,
		BankAccountID: req.BankAccountID,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	if err := h.payments.Create(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &HandlerResult{
		ReferenceID: record.ID,
		Steps:       []StepOutcome{applied(StepPaymentRecord)},
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrReferenceID, record.ID.String())

	if bill == nil {
		return result, nil
	}

	updated, err := h.bills.ApplyPayment(ctx, bill.ID, req.Amount)
	if err != nil {
		logger.L(ctx).Warn("Vendor bill not updated",
			zap.String("vendor_bill_id", bill.ID.String()),
			zap.String("payment_id", record.ID.String()),
			zap.Error(err),
		)
		telemetry.AddEvent(span, "bill_payment_failed", "error_code", shared.CodeOf(err))
		result.Steps = append(result.Steps, failed(StepBillPayment, err))
		return result, nil
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrBillStatus, updated.Status.String())
	result.Steps = append(result.Steps, applied(StepBillPayment))
	return result, nil
}
