package reconciliation

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleExpenseType is the cost-log vocabulary for fleet expenses
type VehicleExpenseType string

const (
	VehicleExpenseFuel         VehicleExpenseType = "fuel"
	VehicleExpenseMaintenance  VehicleExpenseType = "maintenance"
	VehicleExpenseInsurance    VehicleExpenseType = "insurance"
	VehicleExpenseRegistration VehicleExpenseType = "registration"
	VehicleExpenseRepair       VehicleExpenseType = "repair"
	VehicleExpenseOther        VehicleExpenseType = "other"
)

// IsValid checks if the type is a valid VehicleExpenseType
func (t VehicleExpenseType) IsValid() bool {
	switch t {
	case VehicleExpenseFuel, VehicleExpenseMaintenance, VehicleExpenseInsurance,
		VehicleExpenseRegistration, VehicleExpenseRepair, VehicleExpenseOther:
		return true
	}
	return false
}

// NeedsMaintenanceLog reports whether the cost is also a maintenance event
func (t VehicleExpenseType) NeedsMaintenanceLog() bool {
	return t == VehicleExpenseMaintenance || t == VehicleExpenseRepair
}

// MaintenanceStatus is the lifecycle of a maintenance log entry
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "in_progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "completed"
	MaintenanceStatusCancelled  MaintenanceStatus = "cancelled"
)

// Truck is a fleet vehicle. CurrentOdometer never decreases and
// LastMaintenanceDate never moves backwards.
type Truck struct {
	shared.BaseAggregateRoot
	PlateNumber         string          `json:"plate_number"`
	CurrentOdometer     decimal.Decimal `json:"current_odometer"`
	LastMaintenanceDate *time.Time      `json:"last_maintenance_date,omitempty"`
}

// NewTruck registers a truck with a starting odometer reading
func NewTruck(plateNumber string, odometer decimal.Decimal) (*Truck, error) {
	if odometer.IsNegative() {
		return nil, shared.NewValidationError("odometer cannot be negative")
	}
	return &Truck{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PlateNumber:       plateNumber,
		CurrentOdometer:   odometer,
	}, nil
}

// VehicleExpenseLog is the append-only record that a fleet cost happened
type VehicleExpenseLog struct {
	shared.BaseEntity
	TruckID         uuid.UUID          `json:"truck_id"`
	ExpenseID       uuid.UUID          `json:"expense_id"`
	ExpenseType     VehicleExpenseType `json:"expense_type"`
	Amount          decimal.Decimal    `json:"amount"`
	ExpenseDate     time.Time          `json:"expense_date"`
	OdometerReading *decimal.Decimal   `json:"odometer_reading,omitempty"`
	Quantity        *decimal.Decimal   `json:"quantity,omitempty"`
	UnitPrice       *decimal.Decimal   `json:"unit_price,omitempty"`
	Location        string             `json:"location,omitempty"`
	VendorName      string             `json:"vendor_name,omitempty"`
	ReceiptNumber   string             `json:"receipt_number,omitempty"`
	CreatedBy       uuid.UUID          `json:"created_by"`
}

// VehicleExpenseInput carries the fields for a new vehicle cost entry
type VehicleExpenseInput struct {
	TruckID       uuid.UUID
	ExpenseID     uuid.UUID
	ExpenseType   VehicleExpenseType
	Amount        decimal.Decimal
	ExpenseDate   time.Time
	Odometer      *decimal.Decimal
	Quantity      *decimal.Decimal
	UnitPrice     *decimal.Decimal
	Location      string
	VendorName    string
	ReceiptNumber string
	CreatedBy     uuid.UUID
}

// NewVehicleExpenseLog creates a cost entry for a truck
func NewVehicleExpenseLog(in VehicleExpenseInput) (*VehicleExpenseLog, error) {
	if in.TruckID == uuid.Nil {
		return nil, shared.NewValidationError("truck id is required")
	}
	if !in.Amount.IsPositive() {
		return nil, shared.NewValidationError("expense amount must be positive")
	}
	if !in.ExpenseType.IsValid() {
		return nil, shared.NewValidationError("invalid vehicle expense type %q", in.ExpenseType)
	}
	if in.Odometer != nil && in.Odometer.IsNegative() {
		return nil, shared.NewValidationError("odometer reading cannot be negative")
	}
	return &VehicleExpenseLog{
		BaseEntity:      shared.NewBaseEntity(),
		TruckID:         in.TruckID,
		ExpenseID:       in.ExpenseID,
		ExpenseType:     in.ExpenseType,
		Amount:          in.Amount,
		ExpenseDate:     in.ExpenseDate,
		OdometerReading: in.Odometer,
		Quantity:        in.Quantity,
		UnitPrice:       in.UnitPrice,
		Location:        in.Location,
		VendorName:      in.VendorName,
		ReceiptNumber:   in.ReceiptNumber,
		CreatedBy:       in.CreatedBy,
	}, nil
}

// VehicleMaintenanceLog records a completed service or repair on a truck
type VehicleMaintenanceLog struct {
	shared.BaseEntity
	TruckID         uuid.UUID         `json:"truck_id"`
	ExpenseID       *uuid.UUID        `json:"expense_id,omitempty"`
	MaintenanceType string            `json:"maintenance_type"`
	Description     string            `json:"description"`
	Cost            decimal.Decimal   `json:"cost"`
	MaintenanceDate time.Time         `json:"maintenance_date"`
	OdometerReading *decimal.Decimal  `json:"odometer_reading,omitempty"`
	Status          MaintenanceStatus `json:"status"`
	CreatedBy       uuid.UUID         `json:"created_by"`
}

// NewCompletedMaintenance derives a completed maintenance entry from a cost entry
func NewCompletedMaintenance(entry *VehicleExpenseLog, description string) *VehicleMaintenanceLog {
	expenseID := entry.ExpenseID
	return &VehicleMaintenanceLog{
		BaseEntity:      shared.NewBaseEntity(),
		TruckID:         entry.TruckID,
		ExpenseID:       &expenseID,
		MaintenanceType: string(entry.ExpenseType),
		Description:     description,
		Cost:            entry.Amount,
		MaintenanceDate: entry.ExpenseDate,
		OdometerReading: entry.OdometerReading,
		Status:          MaintenanceStatusCompleted,
		CreatedBy:       entry.CreatedBy,
	}
}
