// Package reconciliation holds the subsidiary-ledger aggregates an expense can be
// reconciled into (vendor bills, payroll records, fleet trucks) and the rules
// that classify an expense onto one of them.
package reconciliation

// EntityType identifies the subsidiary ledger an expense is attributed to
type EntityType string

const (
	EntityTypeNone     EntityType = ""
	EntityTypeTruck    EntityType = "truck"
	EntityTypeEmployee EntityType = "employee"
	EntityTypeSupplier EntityType = "supplier"
)

// IsValid reports whether t names one of the three ledgers
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeTruck, EntityTypeEmployee, EntityTypeSupplier:
		return true
	}
	return false
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	if t == EntityTypeNone {
		return "none"
	}
	return string(t)
}

// PaymentKind is the finer-grained kind of payment or cost derived from the subcategory
type PaymentKind string

const (
	PaymentKindFuel          PaymentKind = "fuel"
	PaymentKindMaintenance   PaymentKind = "maintenance"
	PaymentKindInsurance     PaymentKind = "insurance"
	PaymentKindRegistration  PaymentKind = "registration"
	PaymentKindRepair        PaymentKind = "repair"
	PaymentKindSalary        PaymentKind = "salary"
	PaymentKindBonus         PaymentKind = "bonus"
	PaymentKindAllowance     PaymentKind = "allowance"
	PaymentKindOvertime      PaymentKind = "overtime"
	PaymentKindIncentive     PaymentKind = "incentive"
	PaymentKindReimbursement PaymentKind = "reimbursement"
	PaymentKindOther         PaymentKind = "other"
)

// IsValid checks if the kind is a known PaymentKind
func (k PaymentKind) IsValid() bool {
	switch k {
	case PaymentKindFuel, PaymentKindMaintenance, PaymentKindInsurance, PaymentKindRegistration,
		PaymentKindRepair, PaymentKindSalary, PaymentKindBonus, PaymentKindAllowance,
		PaymentKindOvertime, PaymentKindIncentive, PaymentKindReimbursement, PaymentKindOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentKind
func (k PaymentKind) String() string {
	return string(k)
}

// IsPayroll reports whether the kind can be disbursed through a payroll record
func (k PaymentKind) IsPayroll() bool {
	switch k {
	case PaymentKindSalary, PaymentKindBonus, PaymentKindAllowance,
		PaymentKindOvertime, PaymentKindIncentive, PaymentKindReimbursement:
		return true
	}
	return false
}

// VehicleExpenseType maps the kind onto the vehicle cost-log vocabulary.
// Kinds that are not vehicle costs log as other.
func (k PaymentKind) VehicleExpenseType() VehicleExpenseType {
	switch k {
	case PaymentKindFuel:
		return VehicleExpenseFuel
	case PaymentKindMaintenance:
		return VehicleExpenseMaintenance
	case PaymentKindInsurance:
		return VehicleExpenseInsurance
	case PaymentKindRegistration:
		return VehicleExpenseRegistration
	case PaymentKindRepair:
		return VehicleExpenseRepair
	default:
		return VehicleExpenseOther
	}
}
