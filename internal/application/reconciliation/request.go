package reconciliation

import (
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntegrationRequest asks the engine to post one expense into its subsidiary ledger.
// The ledger-specific fields are read only by the handler that ends up running.
type IntegrationRequest struct {
	ExpenseID     uuid.UUID       `json:"expenseId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Date          time.Time       `json:"date" validate:"required"`
	Category      string          `json:"category" validate:"max=100"`
	Subcategory   string          `json:"subcategory" validate:"max=100"`
	Description   string          `json:"description" validate:"required"`
	PaymentMethod string          `json:"paymentMethod" validate:"max=50"`
	BankAccountID *uuid.UUID      `json:"bankAccountId,omitempty"`
	CreatedBy     uuid.UUID       `json:"createdBy" validate:"required"`

	// Explicit target. When set it wins over classification.
	EntityType reconciliation.EntityType `json:"entityType,omitempty" validate:"omitempty,oneof=supplier employee truck"`
	EntityID   *uuid.UUID                `json:"entityId,omitempty" validate:"required_with=EntityType"`

	// PaymentKind overrides the kind derived from the subcategory.
	PaymentKind reconciliation.PaymentKind `json:"paymentKind,omitempty" validate:"omitempty,oneof=fuel maintenance insurance registration repair salary bonus allowance overtime incentive reimbursement other"`

	// Vendor ledger
	SupplierID   *uuid.UUID `json:"supplierId,omitempty"`
	VendorBillID *uuid.UUID `json:"vendorBillId,omitempty"`
	Notes        string     `json:"notes,omitempty"`

	// Payroll ledger
	EmployeeID      *uuid.UUID `json:"employeeId,omitempty"`
	PayrollRecordID *uuid.UUID `json:"payrollRecordId,omitempty"`

	// Fleet ledger
	TruckID       *uuid.UUID       `json:"truckId,omitempty"`
	Odometer      *decimal.Decimal `json:"odometer,omitempty" validate:"omitempty,gte=0"`
	Quantity      *decimal.Decimal `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	UnitPrice     *decimal.Decimal `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	Location      string           `json:"location,omitempty" validate:"max=200"`
	VendorName    string           `json:"vendorName,omitempty" validate:"max=200"`
	ReceiptNumber string           `json:"receiptNumber,omitempty" validate:"max=100"`
}

// ledgerID returns the id carried for the given entity in the ledger-specific fields
func (r *IntegrationRequest) ledgerID(entity reconciliation.EntityType) *uuid.UUID {
	switch entity {
	case reconciliation.EntityTypeSupplier:
		return r.SupplierID
	case reconciliation.EntityTypeEmployee:
		return r.EmployeeID
	case reconciliation.EntityTypeTruck:
		return r.TruckID
	}
	return nil
}

// ledgerIDField names the request field ledgerID reads for entity
func ledgerIDField(entity reconciliation.EntityType) string {
	switch entity {
	case reconciliation.EntityTypeSupplier:
		return "supplierId"
	case reconciliation.EntityTypeEmployee:
		return "employeeId"
	case reconciliation.EntityTypeTruck:
		return "truckId"
	}
	return ""
}

// IntegrationResponse reports what one Integrate call did.
// Integrations has at most one entry, keyed by entity type.
type IntegrationResponse struct {
	Success      bool                         `json:"success"`
	Integrations map[string]IntegrationRecord `json:"integrations"`
	Error        string                       `json:"error,omitempty"`
	ErrorCode    string                       `json:"errorCode,omitempty"`
	Warnings     []string                     `json:"warnings,omitempty"`
	Replayed     bool                         `json:"replayed,omitempty"`

	// Err is the underlying error when Success is false
	Err error `json:"-"`
}

// IntegrationRecord identifies the ledger entry an expense produced
type IntegrationRecord struct {
	EntityID    uuid.UUID     `json:"entityId"`
	ReferenceID uuid.UUID     `json:"referenceId"`
	Steps       []StepOutcome `json:"steps,omitempty"`
}

// ClassificationResult is the ledger and payment kind an expense would be routed to
type ClassificationResult struct {
	EntityType  reconciliation.EntityType  `json:"entityType"`
	PaymentKind reconciliation.PaymentKind `json:"paymentKind"`
}

func newIntegrationResponse() *IntegrationResponse {
	return &IntegrationResponse{
		Success:      true,
		Integrations: map[string]IntegrationRecord{},
	}
}
