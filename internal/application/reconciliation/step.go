package reconciliation

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
)

// StepStatus is the outcome of one write performed for an integration
type StepStatus string

const (
	StepApplied StepStatus = "applied"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// Step names reported in IntegrationRecord.Steps
const (
	StepPaymentRecord     = "payment_record"
	StepBillPayment       = "bill_payment"
	StepPayrollRecord     = "payroll_record"
	StepPayrollSettlement = "payroll_settlement"
	StepExpenseLog        = "expense_log"
	StepMaintenanceLog    = "maintenance_log"
	StepMaintenanceDate   = "maintenance_date"
	StepOdometer          = "odometer"
	StepLinkExpense       = "link_expense"
)

// StepOutcome is the result of a single write. Failed steps carry the error.
type StepOutcome struct {
	Step    string     `json:"step"`
	Status  StepStatus `json:"status"`
	Code    string     `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
	Err     error      `json:"-"`
}

func applied(step string) StepOutcome {
	return StepOutcome{Step: step, Status: StepApplied}
}

func skipped(step, reason string) StepOutcome {
	return StepOutcome{Step: step, Status: StepSkipped, Message: reason}
}

func failed(step string, err error) StepOutcome {
	code := shared.CodeOf(err)
	if code == "" {
		code = shared.CodePersistence
	}
	return StepOutcome{Step: step, Status: StepFailed, Code: code, Message: err.Error(), Err: err}
}

// HandlerResult is what a ledger handler produced once its primary write succeeded
type HandlerResult struct {
	ReferenceID uuid.UUID
	Steps       []StepOutcome
}

// Failed returns the steps that did not apply because of an error
func (r *HandlerResult) Failed() []StepOutcome {
	var out []StepOutcome
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			out = append(out, s)
		}
	}
	return out
}
