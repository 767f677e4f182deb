package reconciliation

import (
	"fmt"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayrollStatus is the lifecycle state of a payroll record. It only moves forward.
type PayrollStatus string

const (
	PayrollStatusDraft     PayrollStatus = "draft"
	PayrollStatusProcessed PayrollStatus = "processed"
	PayrollStatusPaid      PayrollStatus = "paid"
)

// IsValid checks if the status is a valid PayrollStatus
func (s PayrollStatus) IsValid() bool {
	switch s {
	case PayrollStatusDraft, PayrollStatusProcessed, PayrollStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PayrollStatus
func (s PayrollStatus) String() string {
	return string(s)
}

func (s PayrollStatus) rank() int {
	switch s {
	case PayrollStatusDraft:
		return 0
	case PayrollStatusProcessed:
		return 1
	case PayrollStatusPaid:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether moving to next keeps the lifecycle forward-only
func (s PayrollStatus) CanTransitionTo(next PayrollStatus) bool {
	return next.IsValid() && next.rank() > s.rank()
}

// Defaults stamped on disbursements synthesized from an expense
const (
	DefaultSalaryWorkingDays = 30
	DefaultOvertimeHours     = 8
)

// PayrollRecord is an employee's payroll disbursement for a pay period
type PayrollRecord struct {
	shared.BaseAggregateRoot
	EmployeeID          uuid.UUID       `json:"employee_id"`
	ExpenseID           *uuid.UUID      `json:"expense_id,omitempty"`
	PayPeriodStart      time.Time       `json:"pay_period_start"`
	PayPeriodEnd        time.Time       `json:"pay_period_end"`
	BasicSalary         decimal.Decimal `json:"basic_salary"`
	TotalAllowances     decimal.Decimal `json:"total_allowances"`
	TotalDeductions     decimal.Decimal `json:"total_deductions"`
	GrossSalary         decimal.Decimal `json:"gross_salary"`
	NetSalary           decimal.Decimal `json:"net_salary"`
	Bonus               decimal.Decimal `json:"bonus"`
	OvertimeAmount      decimal.Decimal `json:"overtime_amount"`
	OvertimeHours       decimal.Decimal `json:"overtime_hours"`
	ReimbursementAmount decimal.Decimal `json:"reimbursement_amount"`
	WorkingDays         int             `json:"working_days"`
	PresentDays         int             `json:"present_days"`
	LeaveDays           int             `json:"leave_days"`
	Status              PayrollStatus   `json:"status"`
	ProcessedBy         *uuid.UUID      `json:"processed_by,omitempty"`
	ProcessedAt         *time.Time      `json:"processed_at,omitempty"`
}

// DisbursementInput describes a payment already made to an employee
type DisbursementInput struct {
	EmployeeID uuid.UUID
	ExpenseID  uuid.UUID
	Kind       PaymentKind
	Amount     decimal.Decimal
	PaidOn     time.Time
	PaidBy     uuid.UUID
}

// NewPaidDisbursement synthesizes a one-day payroll record for a payment that has
// already happened. The record is created directly in paid state. Salary goes
// to basic salary; every other kind lands in exactly one bucket.
func NewPaidDisbursement(in DisbursementInput) (*PayrollRecord, error) {
	if in.EmployeeID == uuid.Nil {
		return nil, shared.NewValidationError("employee id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if in.PaidOn.IsZero() {
		return nil, shared.NewValidationError("payment date is required")
	}
	if !in.Kind.IsPayroll() {
		return nil, shared.NewValidationError("payment kind %q cannot be paid through payroll", in.Kind)
	}

	day := truncateToDay(in.PaidOn)
	now := time.Now()
	expenseID := in.ExpenseID
	rec := &PayrollRecord{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		EmployeeID:          in.EmployeeID,
		PayPeriodStart:      day,
		PayPeriodEnd:        day,
		BasicSalary:         decimal.Zero,
		TotalAllowances:     decimal.Zero,
		TotalDeductions:     decimal.Zero,
		GrossSalary:         in.Amount,
		NetSalary:           in.Amount,
		Bonus:               decimal.Zero,
		OvertimeAmount:      decimal.Zero,
		OvertimeHours:       decimal.Zero,
		ReimbursementAmount: decimal.Zero,
		Status:              PayrollStatusPaid,
		ProcessedAt:         &now,
	}
	if expenseID != uuid.Nil {
		rec.ExpenseID = &expenseID
	}
	if in.PaidBy != uuid.Nil {
		paidBy := in.PaidBy
		rec.ProcessedBy = &paidBy
	}

	switch in.Kind {
	case PaymentKindSalary:
		rec.BasicSalary = in.Amount
		rec.WorkingDays = DefaultSalaryWorkingDays
		rec.PresentDays = DefaultSalaryWorkingDays
	case PaymentKindAllowance:
		rec.TotalAllowances = in.Amount
	case PaymentKindOvertime:
		rec.OvertimeAmount = in.Amount
		rec.OvertimeHours = decimal.NewFromInt(DefaultOvertimeHours)
	case PaymentKindBonus, PaymentKindIncentive:
		rec.Bonus = in.Amount
	case PaymentKindReimbursement:
		rec.ReimbursementAmount = in.Amount
	}
	return rec, nil
}

// CheckSettlement returns an INVALID_STATE error when the record cannot move to paid
func (p *PayrollRecord) CheckSettlement() error {
	if !p.Status.CanTransitionTo(PayrollStatusPaid) {
		return shared.NewConflictError(shared.CodeInvalidState,
			"payroll record %s cannot move from %s to %s", p.ID, p.Status, PayrollStatusPaid)
	}
	return nil
}

// BucketTotal sums the categorized buckets. For synthesized disbursements it equals GrossSalary.
func (p *PayrollRecord) BucketTotal() decimal.Decimal {
	return p.BasicSalary.
		Add(p.TotalAllowances).
		Add(p.Bonus).
		Add(p.OvertimeAmount).
		Add(p.ReimbursementAmount)
}

// String implements fmt.Stringer for log fields
func (p *PayrollRecord) String() string {
	return fmt.Sprintf("payroll %s (%s, %s)", p.ID, p.EmployeeID, p.Status)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
