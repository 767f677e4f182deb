package reconciliation

import (
	"context"
	"fmt"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// VehicleHandler logs fleet costs and moves truck odometer and maintenance state forward
type VehicleHandler struct {
	trucks reconciliation.TruckRepository
	logs   reconciliation.VehicleLogRepository
}

// NewVehicleHandler creates a new VehicleHandler
func NewVehicleHandler(trucks reconciliation.TruckRepository, logs reconciliation.VehicleLogRepository) *VehicleHandler {
	return &VehicleHandler{
		trucks: trucks,
		logs:   logs,
	}
}

// EntityType returns truck
func (h *VehicleHandler) EntityType() reconciliation.EntityType {
	return reconciliation.EntityTypeTruck
}

// Handle writes the cost entry first; it is the durable record that the cost
// happened. Maintenance and odometer updates follow and are reported per step.
func (h *VehicleHandler) Handle(ctx context.Context, in HandlerInput) (*HandlerResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "vehicle_handler", "handle")
	defer span.End()

	req := in.Request
	truck, err := h.trucks.FindByID(ctx, in.EntityID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	entry, err := reconciliation.NewVehicleExpenseLog(reconciliation.VehicleExpenseInput{
		TruckID:       truck.ID,
		ExpenseID:     in.Expense.ID,
		ExpenseType:   in.PaymentKind.VehicleExpenseType(),
		Amount:        req.Amount,
		ExpenseDate:   req.Date,
		Odometer:      req.Odometer,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		Location:      req.Location,
		VendorName:    req.VendorName,
		ReceiptNumber: req.ReceiptNumber,
		CreatedBy:     req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	if err := h.logs.CreateExpenseLog(ctx, entry); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result := &HandlerResult{
		ReferenceID: entry.ID,
		Steps:       []StepOutcome{applied(StepExpenseLog)},
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrReferenceID, entry.ID.String())
	log := logger.L(ctx).With(zap.String("truck_id", truck.ID.String()), zap.String("expense_log_id", entry.ID.String()))

	if entry.ExpenseType.NeedsMaintenanceLog() {
		maintenance := reconciliation.NewCompletedMaintenance(entry, req.Description)
		if err := h.logs.CreateMaintenanceLog(ctx, maintenance); err != nil {
			log.Warn("Maintenance log not written", zap.Error(err))
			result.Steps = append(result.Steps, failed(StepMaintenanceLog, err))
		} else {
			result.Steps = append(result.Steps, applied(StepMaintenanceLog))
		}

		moved, err := h.trucks.AdvanceMaintenanceDate(ctx, truck.ID, req.Date)
		switch {
		case err != nil:
			log.Warn("Truck maintenance date not updated", zap.Error(err))
			result.Steps = append(result.Steps, failed(StepMaintenanceDate, err))
		case moved:
			result.Steps = append(result.Steps, applied(StepMaintenanceDate))
		default:
			result.Steps = append(result.Steps, skipped(StepMaintenanceDate,
				fmt.Sprintf("maintenance date %s is not after the last recorded maintenance", req.Date.Format("2006-01-02"))))
		}
	}

	if req.Odometer != nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrOdometer, req.Odometer.String())
		moved, err := h.trucks.AdvanceOdometer(ctx, truck.ID, *req.Odometer)
		switch {
		case err != nil:
			log.Warn("Truck odometer not updated", zap.Error(err))
			result.Steps = append(result.Steps, failed(StepOdometer, err))
		case moved:
			result.Steps = append(result.Steps, applied(StepOdometer))
		default:
			result.Steps = append(result.Steps, skipped(StepOdometer,
				fmt.Sprintf("reading %s does not advance the truck odometer", req.Odometer.String())))
		}
	}

	return result, nil
}
