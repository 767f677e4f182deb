package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IntegrateExpenseRequest is the body of POST /finance/expenses/:id/integrations.
// The expense id comes from the path. Dates are YYYY-MM-DD or RFC 3339.
type IntegrateExpenseRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Date          string          `json:"date" binding:"required"`
	Category      string          `json:"category" binding:"max=100"`
	Subcategory   string          `json:"subcategory" binding:"max=100"`
	Description   string          `json:"description" binding:"required"`
	PaymentMethod string          `json:"paymentMethod" binding:"max=50"`
	BankAccountID *uuid.UUID      `json:"bankAccountId"`
	CreatedBy     *uuid.UUID      `json:"createdBy"`

	EntityType  string     `json:"entityType" binding:"omitempty,oneof=supplier employee truck"`
	EntityID    *uuid.UUID `json:"entityId"`
	PaymentKind string     `json:"paymentKind"`

	SupplierID   *uuid.UUID `json:"supplierId"`
	VendorBillID *uuid.UUID `json:"vendorBillId"`
	Notes        string     `json:"notes"`

	EmployeeID      *uuid.UUID `json:"employeeId"`
	PayrollRecordID *uuid.UUID `json:"payrollRecordId"`

	TruckID       *uuid.UUID       `json:"truckId"`
	Odometer      *decimal.Decimal `json:"odometer"`
	Quantity      *decimal.Decimal `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unitPrice"`
	Location      string           `json:"location"`
	VendorName    string           `json:"vendorName"`
	ReceiptNumber string           `json:"receiptNumber"`
}

// ClassificationQuery is the query of GET /finance/expenses/classification
type ClassificationQuery struct {
	Category    string `form:"category" binding:"max=100"`
	Subcategory string `form:"subcategory" binding:"max=100"`
}
