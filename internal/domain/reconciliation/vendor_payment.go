package reconciliation

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorPaymentStatus is the settlement state of a vendor payment record
type VendorPaymentStatus string

const (
	VendorPaymentStatusCompleted VendorPaymentStatus = "completed"
)

// VendorPaymentRecord is the append-only audit entry for money paid to a supplier.
// It exists even when no bill is linked.
type VendorPaymentRecord struct {
	shared.BaseEntity
	SupplierID    uuid.UUID           `json:"supplier_id"`
	VendorBillID  *uuid.UUID          `json:"vendor_bill_id,omitempty"`
	ExpenseID     uuid.UUID           `json:"expense_id"`
	Amount        decimal.Decimal     `json:"amount"`
	PaymentDate   time.Time           `json:"payment_date"`
	Method        string              `json:"method"`
	Reference     string              `json:"reference"`
	BankAccountID *uuid.UUID          `json:"bank_account_id,omitempty"`
	Notes         string              `json:"notes"`
	Status        VendorPaymentStatus `json:"status"`
	CreatedBy     uuid.UUID           `json:"created_by"`
}

// VendorPaymentInput carries the fields for a new vendor payment record
type VendorPaymentInput struct {
	SupplierID    uuid.UUID
	VendorBillID  *uuid.UUID
	ExpenseID     uuid.UUID
	Amount        decimal.Decimal
	PaymentDate   time.Time
	Method        string
	BankAccountID *uuid.UUID
	Notes         string
	CreatedBy     uuid.UUID
}

// NewVendorPaymentRecord creates a completed payment record
func NewVendorPaymentRecord(in VendorPaymentInput) (*VendorPaymentRecord, error) {
	if in.SupplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("payment amount must be positive")
	}
	if in.PaymentDate.IsZero() {
		return nil, shared.NewValidationError("payment date is required")
	}
	return &VendorPaymentRecord{
		BaseEntity:    shared.NewBaseEntity(),
		SupplierID:    in.SupplierID,
		VendorBillID:  in.VendorBillID,
		ExpenseID:     in.ExpenseID,
		Amount:        in.Amount,
		PaymentDate:   in.PaymentDate,
		Method:        in.Method,
		Reference:     ExpenseReference(in.ExpenseID),
		BankAccountID: in.BankAccountID,
		Notes:         in.Notes,
		Status:        VendorPaymentStatusCompleted,
		CreatedBy:     in.CreatedBy,
	}, nil
}

// ExpenseReference is the human-readable reference stamped on ledger entries
// produced from an expense.
func ExpenseReference(expenseID uuid.UUID) string {
	return "EXP-" + expenseID.String()
}
