package models

import (
	"strings"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseModel is the persistence model for the Expense aggregate root.
type ExpenseModel struct {
	AggregateModel
	Amount               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date                 time.Time       `gorm:"column:expense_date;type:date;not null;index"`
	Category             string          `gorm:"type:varchar(100);not null"`
	Subcategory          string          `gorm:"type:varchar(100);not null;default:''"`
	Description          string          `gorm:"type:text;not null"`
	PaymentMethod        string          `gorm:"type:varchar(50);not null;default:''"`
	BankAccountID        *uuid.UUID      `gorm:"type:uuid"`
	EntityType           *string         `gorm:"type:varchar(20)"`
	EntityID             *uuid.UUID      `gorm:"type:uuid"`
	EntityReferenceID    *uuid.UUID      `gorm:"type:uuid"`
	IntegrationStatus    *string         `gorm:"type:varchar(20)"`
	IntegrationErrorCode string          `gorm:"type:varchar(50);not null;default:''"`
	IntegrationError     string          `gorm:"type:text;not null;default:''"`
	IntegrationWarnings  string          `gorm:"type:text;not null;default:''"`
	CreatedBy            uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense.
func (m *ExpenseModel) ToDomain() *reconciliation.Expense {
	e := &reconciliation.Expense{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Amount:            m.Amount,
		Date:              m.Date,
		Category:          m.Category,
		Subcategory:       m.Subcategory,
		Description:       m.Description,
		PaymentMethod:     m.PaymentMethod,
		BankAccountID:     m.BankAccountID,
		EntityID:          m.EntityID,
		EntityReferenceID: m.EntityReferenceID,
		CreatedBy:         m.CreatedBy,
	}
	if m.EntityType != nil {
		e.EntityType = reconciliation.EntityType(*m.EntityType)
	}
	if m.IntegrationStatus != nil {
		e.Outcome.Status = reconciliation.IntegrationStatus(*m.IntegrationStatus)
	}
	e.Outcome.ErrorCode = m.IntegrationErrorCode
	e.Outcome.Error = m.IntegrationError
	e.Outcome.Warnings = DecodeWarnings(m.IntegrationWarnings)
	return e
}

// FromDomain populates the persistence model from a domain Expense.
func (m *ExpenseModel) FromDomain(e *reconciliation.Expense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Amount = e.Amount
	m.Date = e.Date
	m.Category = e.Category
	m.Subcategory = e.Subcategory
	m.Description = e.Description
	m.PaymentMethod = e.PaymentMethod
	m.BankAccountID = e.BankAccountID
	m.EntityType = nil
	if e.EntityType != reconciliation.EntityTypeNone {
		t := string(e.EntityType)
		m.EntityType = &t
	}
	m.EntityID = e.EntityID
	m.EntityReferenceID = e.EntityReferenceID
	m.IntegrationStatus = nil
	if e.Outcome.Status != "" {
		status := string(e.Outcome.Status)
		m.IntegrationStatus = &status
	}
	m.IntegrationErrorCode = e.Outcome.ErrorCode
	m.IntegrationError = e.Outcome.Error
	m.IntegrationWarnings = EncodeWarnings(e.Outcome.Warnings)
	m.CreatedBy = e.CreatedBy
}

// EncodeWarnings stores warnings one per line. Line breaks inside a warning
// are flattened to spaces.
func EncodeWarnings(warnings []string) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = strings.ReplaceAll(w, "\n", " ")
	}
	return strings.Join(lines, "\n")
}

// DecodeWarnings reverses EncodeWarnings; an empty column yields nil
func DecodeWarnings(stored string) []string {
	if stored == "" {
		return nil
	}
	return strings.Split(stored, "\n")
}

// ExpenseModelFromDomain creates a new persistence model from domain.
func ExpenseModelFromDomain(e *reconciliation.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}

// VendorBillModel is the persistence model for the VendorBill aggregate root.
type VendorBillModel struct {
	AggregateModel
	SupplierID  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	BillNumber  string                    `gorm:"type:varchar(50);not null"`
	TotalAmount decimal.Decimal           `gorm:"type:decimal(18,4);not null"`
	PaidAmount  decimal.Decimal           `gorm:"type:decimal(18,4);not null;default:0"`
	Status      reconciliation.BillStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	DueDate     *time.Time                `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (VendorBillModel) TableName() string {
	return "vendor_bills"
}

// ToDomain converts the persistence model to a domain VendorBill.
func (m *VendorBillModel) ToDomain() *reconciliation.VendorBill {
	return &reconciliation.VendorBill{
		BaseAggregateRoot: m.ToAggregateRoot(),
		SupplierID:        m.SupplierID,
		BillNumber:        m.BillNumber,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		Status:            m.Status,
		DueDate:           m.DueDate,
	}
}

// FromDomain populates the persistence model from a domain VendorBill.
func (m *VendorBillModel) FromDomain(b *reconciliation.VendorBill) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.SupplierID = b.SupplierID
	m.BillNumber = b.BillNumber
	m.TotalAmount = b.TotalAmount
	m.PaidAmount = b.PaidAmount
	m.Status = b.Status
	m.DueDate = b.DueDate
}

// VendorBillModelFromDomain creates a new persistence model from domain.
func VendorBillModelFromDomain(b *reconciliation.VendorBill) *VendorBillModel {
	m := &VendorBillModel{}
	m.FromDomain(b)
	return m
}

// VendorPaymentRecordModel is the persistence model for an append-only vendor payment.
type VendorPaymentRecordModel struct {
	BaseModel
	SupplierID    uuid.UUID                          `gorm:"type:uuid;not null"`
	VendorBillID  *uuid.UUID                         `gorm:"type:uuid;index"`
	ExpenseID     uuid.UUID                          `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal                    `gorm:"type:decimal(18,4);not null"`
	PaymentDate   time.Time                          `gorm:"type:date;not null"`
	Method        string                             `gorm:"type:varchar(50);not null;default:''"`
	Reference     string                             `gorm:"type:varchar(100);not null"`
	BankAccountID *uuid.UUID                         `gorm:"type:uuid"`
	Notes         string                             `gorm:"type:text;not null;default:''"`
	Status        reconciliation.VendorPaymentStatus `gorm:"type:varchar(20);not null;default:'completed'"`
	CreatedBy     uuid.UUID                          `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (VendorPaymentRecordModel) TableName() string {
	return "vendor_payment_records"
}

// ToDomain converts the persistence model to a domain VendorPaymentRecord.
func (m *VendorPaymentRecordModel) ToDomain() *reconciliation.VendorPaymentRecord {
	return &reconciliation.VendorPaymentRecord{
		BaseEntity:    m.BaseModel.ToDomain(),
		SupplierID:    m.SupplierID,
		VendorBillID:  m.VendorBillID,
		ExpenseID:     m.ExpenseID,
		Amount:        m.Amount,
		PaymentDate:   m.PaymentDate,
		Method:        m.Method,
		Reference:     m.Reference,
		BankAccountID: m.BankAccountID,
		Notes:         m.Notes,
		Status:        m.Status,
		CreatedBy:     m.CreatedBy,
	}
}

// VendorPaymentRecordModelFromDomain creates a new persistence model from domain.
func VendorPaymentRecordModelFromDomain(r *reconciliation.VendorPaymentRecord) *VendorPaymentRecordModel {
	m := &VendorPaymentRecordModel{
		SupplierID:    r.SupplierID,
		VendorBillID:  r.VendorBillID,
		ExpenseID:     r.ExpenseID,
		Amount:        r.Amount,
		PaymentDate:   r.PaymentDate,
		Method:        r.Method,
		Reference:     r.Reference,
		BankAccountID: r.BankAccountID,
		Notes:         r.Notes,
		Status:        r.Status,
		CreatedBy:     r.CreatedBy,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// PayrollRecordModel is the persistence model for the PayrollRecord aggregate root.
type PayrollRecordModel struct {
	AggregateModel
	EmployeeID          uuid.UUID                    `gorm:"type:uuid;not null;index"`
	ExpenseID           *uuid.UUID                   `gorm:"type:uuid;index"`
	PayPeriodStart      time.Time                    `gorm:"type:date;not null"`
	PayPeriodEnd        time.Time                    `gorm:"type:date;not null"`
	BasicSalary         decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAllowances     decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	TotalDeductions     decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	GrossSalary         decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	NetSalary           decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	Bonus               decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	OvertimeAmount      decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	OvertimeHours       decimal.Decimal              `gorm:"type:decimal(8,2);not null;default:0"`
	ReimbursementAmount decimal.Decimal              `gorm:"type:decimal(18,4);not null;default:0"`
	WorkingDays         int                          `gorm:"not null;default:0"`
	PresentDays         int                          `gorm:"not null;default:0"`
	LeaveDays           int                          `gorm:"not null;default:0"`
	Status              reconciliation.PayrollStatus `gorm:"type:varchar(20);not null;default:'draft'"`
	ProcessedBy         *uuid.UUID                   `gorm:"type:uuid"`
	ProcessedAt         *time.Time
}

// TableName returns the table name for GORM
func (PayrollRecordModel) TableName() string {
	return "payroll_records"
}

// ToDomain converts the persistence model to a domain PayrollRecord.
func (m *PayrollRecordModel) ToDomain() *reconciliation.PayrollRecord {
	return &reconciliation.PayrollRecord{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		EmployeeID:          m.EmployeeID,
		ExpenseID:           m.ExpenseID,
		PayPeriodStart:      m.PayPeriodStart,
		PayPeriodEnd:        m.PayPeriodEnd,
		BasicSalary:         m.BasicSalary,
		TotalAllowances:     m.TotalAllowances,
		TotalDeductions:     m.TotalDeductions,
		GrossSalary:         m.GrossSalary,
		NetSalary:           m.NetSalary,
		Bonus:               m.Bonus,
		OvertimeAmount:      m.OvertimeAmount,
		OvertimeHours:       m.OvertimeHours,
		ReimbursementAmount: m.ReimbursementAmount,
		WorkingDays:         m.WorkingDays,
		PresentDays:         m.PresentDays,
		LeaveDays:           m.LeaveDays,
		Status:              m.Status,
		ProcessedBy:         m.ProcessedBy,
		ProcessedAt:         m.ProcessedAt,
	}
}

// FromDomain populates the persistence model from a domain PayrollRecord.
func (m *PayrollRecordModel) FromDomain(p *reconciliation.PayrollRecord) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.EmployeeID = p.EmployeeID
	m.ExpenseID = p.ExpenseID
	m.PayPeriodStart = p.PayPeriodStart
	m.PayPeriodEnd = p.PayPeriodEnd
	m.BasicSalary = p.BasicSalary
	m.TotalAllowances = p.TotalAllowances
	m.TotalDeductions = p.TotalDeductions
	m.GrossSalary = p.GrossSalary
	m.NetSalary = p.NetSalary
	m.Bonus = p.Bonus
	m.OvertimeAmount = p.OvertimeAmount
	m.OvertimeHours = p.OvertimeHours
	m.ReimbursementAmount = p.ReimbursementAmount
	m.WorkingDays = p.WorkingDays
	m.PresentDays = p.PresentDays
	m.LeaveDays = p.LeaveDays
	m.Status = p.Status
	m.ProcessedBy = p.ProcessedBy
	m.ProcessedAt = p.ProcessedAt
}

// PayrollRecordModelFromDomain creates a new persistence model from domain.
func PayrollRecordModelFromDomain(p *reconciliation.PayrollRecord) *PayrollRecordModel {
	m := &PayrollRecordModel{}
	m.FromDomain(p)
	return m
}

// TruckModel is the persistence model for the Truck aggregate root.
type TruckModel struct {
	AggregateModel
	PlateNumber         string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	CurrentOdometer     decimal.Decimal `gorm:"type:decimal(12,1);not null;default:0"`
	LastMaintenanceDate *time.Time      `gorm:"type:date"`
}

// TableName returns the table name for GORM
func (TruckModel) TableName() string {
	return "trucks"
}

// ToDomain converts the persistence model to a domain Truck.
func (m *TruckModel) ToDomain() *reconciliation.Truck {
	return &reconciliation.Truck{
		BaseAggregateRoot:   m.ToAggregateRoot(),
		PlateNumber:         m.PlateNumber,
		CurrentOdometer:     m.CurrentOdometer,
		LastMaintenanceDate: m.LastMaintenanceDate,
	}
}

// FromDomain populates the persistence model from a domain Truck.
func (m *TruckModel) FromDomain(t *reconciliation.Truck) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.PlateNumber = t.PlateNumber
	m.CurrentOdometer = t.CurrentOdometer
	m.LastMaintenanceDate = t.LastMaintenanceDate
}

// TruckModelFromDomain creates a new persistence model from domain.
func TruckModelFromDomain(t *reconciliation.Truck) *TruckModel {
	m := &TruckModel{}
	m.FromDomain(t)
	return m
}

// VehicleExpenseLogModel is the persistence model for an append-only fleet cost entry.
type VehicleExpenseLogModel struct {
	BaseModel
	TruckID         uuid.UUID                         `gorm:"type:uuid;not null;index"`
	ExpenseID       uuid.UUID                         `gorm:"type:uuid;not null"`
	ExpenseType     reconciliation.VehicleExpenseType `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal                   `gorm:"type:decimal(18,4);not null"`
	ExpenseDate     time.Time                         `gorm:"type:date;not null"`
	OdometerReading *decimal.Decimal                  `gorm:"type:decimal(12,1)"`
	Quantity        *decimal.Decimal                  `gorm:"type:decimal(12,3)"`
	UnitPrice       *decimal.Decimal                  `gorm:"type:decimal(18,4)"`
	Location        string                            `gorm:"type:varchar(200);not null;default:''"`
	VendorName      string                            `gorm:"type:varchar(200);not null;default:''"`
	ReceiptNumber   string                            `gorm:"type:varchar(100);not null;default:''"`
	CreatedBy       uuid.UUID                         `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (VehicleExpenseLogModel) TableName() string {
	return "vehicle_expense_logs"
}

// ToDomain converts the persistence model to a domain VehicleExpenseLog.
func (m *VehicleExpenseLogModel) ToDomain() *reconciliation.VehicleExpenseLog {
	return &reconciliation.VehicleExpenseLog{
		BaseEntity:      m.BaseModel.ToDomain(),
		TruckID:         m.TruckID,
		ExpenseID:       m.ExpenseID,
		ExpenseType:     m.ExpenseType,
		Amount:          m.Amount,
		ExpenseDate:     m.ExpenseDate,
		OdometerReading: m.OdometerReading,
		Quantity:        m.Quantity,
		UnitPrice:       m.UnitPrice,
		Location:        m.Location,
		VendorName:      m.VendorName,
		ReceiptNumber:   m.ReceiptNumber,
		CreatedBy:       m.CreatedBy,
	}
}

// VehicleExpenseLogModelFromDomain creates a new persistence model from domain.
func VehicleExpenseLogModelFromDomain(e *reconciliation.VehicleExpenseLog) *VehicleExpenseLogModel {
	m := &VehicleExpenseLogModel{
		TruckID:         e.TruckID,
		ExpenseID:       e.ExpenseID,
		ExpenseType:     e.ExpenseType,
		Amount:          e.Amount,
		ExpenseDate:     e.ExpenseDate,
		OdometerReading: e.OdometerReading,
		Quantity:        e.Quantity,
		UnitPrice:       e.UnitPrice,
		Location:        e.Location,
		VendorName:      e.VendorName,
		ReceiptNumber:   e.ReceiptNumber,
		CreatedBy:       e.CreatedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// VehicleMaintenanceLogModel is the persistence model for a maintenance log entry.
type VehicleMaintenanceLogModel struct {
	BaseModel
	TruckID         uuid.UUID                        `gorm:"type:uuid;not null;index"`
	ExpenseID       *uuid.UUID                       `gorm:"type:uuid"`
	MaintenanceType string                           `gorm:"type:varchar(50);not null"`
	Description     string                           `gorm:"type:text;not null;default:''"`
	Cost            decimal.Decimal                  `gorm:"type:decimal(18,4);not null"`
	MaintenanceDate time.Time                        `gorm:"type:date;not null"`
	OdometerReading *decimal.Decimal                 `gorm:"type:decimal(12,1)"`
	Status          reconciliation.MaintenanceStatus `gorm:"type:varchar(20);not null;default:'scheduled'"`
	CreatedBy       uuid.UUID                        `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (VehicleMaintenanceLogModel) TableName() string {
	return "vehicle_maintenance_logs"
}

// ToDomain converts the persistence model to a domain VehicleMaintenanceLog.
func (m *VehicleMaintenanceLogModel) ToDomain() *reconciliation.VehicleMaintenanceLog {
	return &reconciliation.VehicleMaintenanceLog{
		BaseEntity:      m.BaseModel.ToDomain(),
		TruckID:         m.TruckID,
		ExpenseID:       m.ExpenseID,
		MaintenanceType: m.MaintenanceType,
		Description:     m.Description,
		Cost:            m.Cost,
		MaintenanceDate: m.MaintenanceDate,
		OdometerReading: m.OdometerReading,
		Status:          m.Status,
		CreatedBy:       m.CreatedBy,
	}
}

// VehicleMaintenanceLogModelFromDomain creates a new persistence model from domain.
func VehicleMaintenanceLogModelFromDomain(e *reconciliation.VehicleMaintenanceLog) *VehicleMaintenanceLogModel {
	m := &VehicleMaintenanceLogModel{
		TruckID:         e.TruckID,
		ExpenseID:       e.ExpenseID,
		MaintenanceType: e.MaintenanceType,
		Description:     e.Description,
		Cost:            e.Cost,
		MaintenanceDate: e.MaintenanceDate,
		OdometerReading: e.OdometerReading,
		Status:          e.Status,
		CreatedBy:       e.CreatedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// AllModels lists every model in dependency order, for test schemas built with AutoMigrate
func AllModels() []any {
	return []any{
		&ExpenseModel{},
		&VendorBillModel{},
		&VendorPaymentRecordModel{},
		&PayrollRecordModel{},
		&TruckModel{},
		&VehicleExpenseLogModel{},
		&VehicleMaintenanceLogModel{},
	}
}
