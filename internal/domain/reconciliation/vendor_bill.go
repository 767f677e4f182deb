package reconciliation

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus is derived from the paid and total amounts of a bill
type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPartial BillStatus = "partial"
	BillStatusPaid    BillStatus = "paid"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartial, BillStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// DeriveBillStatus applies the threshold rule:
// nothing paid is pending, less than total is partial, total or more is paid.
func DeriveBillStatus(paid, total decimal.Decimal) BillStatus {
	switch {
	case paid.LessThanOrEqual(decimal.Zero):
		return BillStatusPending
	case paid.LessThan(total):
		return BillStatusPartial
	default:
		return BillStatusPaid
	}
}

// VendorBill is a supplier's accounts-payable bill.
// Invariant: 0 <= PaidAmount <= TotalAmount after every update.
type VendorBill struct {
	shared.BaseAggregateRoot
	SupplierID  uuid.UUID       `json:"supplier_id"`
	BillNumber  string          `json:"bill_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	Status      BillStatus      `json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// NewVendorBill creates an unpaid bill
func NewVendorBill(supplierID uuid.UUID, billNumber string, total decimal.Decimal) (*VendorBill, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewValidationError("supplier id is required")
	}
	if total.IsNegative() {
		return nil, shared.NewValidationError("bill total cannot be negative")
	}
	return &VendorBill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		BillNumber:        billNumber,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		Status:            BillStatusPending,
	}, nil
}

// OutstandingAmount returns what is still owed on the bill
func (b *VendorBill) OutstandingAmount() decimal.Decimal {
	return b.TotalAmount.Sub(b.PaidAmount)
}

// ValidatePaymentAmount rejects payments that are not strictly positive
func ValidatePaymentAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("payment amount must be positive")
	}
	return nil
}

// ValidatePayment checks a payment of amount against the bill as loaded.
// A payment that would take PaidAmount past TotalAmount is EXCEEDS_OUTSTANDING.
func (b *VendorBill) ValidatePayment(amount decimal.Decimal) error {
	if err := ValidatePaymentAmount(amount); err != nil {
		return err
	}
	if b.PaidAmount.Add(amount).GreaterThan(b.TotalAmount) {
		return shared.NewConflictError(shared.CodeExceedsOutstanding,
			"payment %s exceeds outstanding amount %s on bill %s",
			amount.StringFixed(2), b.OutstandingAmount().StringFixed(2), b.ID)
	}
	return nil
}

// CheckStatus reports a stored status that disagrees with DeriveBillStatus
func (b *VendorBill) CheckStatus() error {
	if want := DeriveBillStatus(b.PaidAmount, b.TotalAmount); b.Status != want {
		return shared.NewConflictError(shared.CodeInvalidState,
			"bill %s is stored as %s but paid %s of %s derives %s",
			b.ID, b.Status, b.PaidAmount.StringFixed(2), b.TotalAmount.StringFixed(2), want)
	}
	return nil
}
