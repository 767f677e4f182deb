package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseRepository reads expenses and writes their back-link
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	// LinkEntity stores the back-link and its outcome only while the expense is
	// still unlinked.
	// It returns an ALREADY_INTEGRATED error when another writer linked it first.
	LinkEntity(ctx context.Context, expenseID uuid.UUID, link EntityLink) error
}

// VendorBillRepository persists accounts-payable bills
type VendorBillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VendorBill, error)
	Save(ctx context.Context, bill *VendorBill) error
	// ApplyPayment adds amount to the paid balance and re-derives the status in a
	// single statement, and only when the result stays within the bill total.
	// It returns the bill as stored after the update, an EXCEEDS_OUTSTANDING error
	// when the payment would overpay, or NOT_FOUND when the bill does not exist.
	ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*VendorBill, error)
}

// VendorPaymentRepository appends vendor payment records
type VendorPaymentRepository interface {
	Create(ctx context.Context, record *VendorPaymentRecord) error
	FindByBillID(ctx context.Context, billID uuid.UUID) ([]VendorPaymentRecord, error)
}

// PayrollRecordRepository persists payroll disbursements
type PayrollRecordRepository interface {
	Create(ctx context.Context, record *PayrollRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*PayrollRecord, error)
	// MarkPaid settles the record owned by employeeID unless it is already paid.
	// It returns NOT_FOUND when no record matches (id, employeeID) and
	// INVALID_STATE when the record is already paid.
	MarkPaid(ctx context.Context, id, employeeID, processedBy uuid.UUID, at time.Time) (*PayrollRecord, error)
}

// VehicleLogRepository appends fleet cost and maintenance entries
type VehicleLogRepository interface {
	CreateExpenseLog(ctx context.Context, entry *VehicleExpenseLog) error
	CreateMaintenanceLog(ctx context.Context, entry *VehicleMaintenanceLog) error
}

// TruckRepository persists trucks. Both Advance methods are conditional single
// statements and report whether the stored value moved.
type TruckRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Truck, error)
	Save(ctx context.Context, truck *Truck) error
	AdvanceOdometer(ctx context.Context, id uuid.UUID, reading decimal.Decimal) (bool, error)
	AdvanceMaintenanceDate(ctx context.Context, id uuid.UUID, on time.Time) (bool, error)
}
