package reconciliation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_ResolveEntityType(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name        string
		category    string
		subcategory string
		want        EntityType
	}{
		{"fleet fuel", "Vehicle Fuel - Fleet", "Fuel", EntityTypeTruck},
		{"salary", "Salaries & Benefits", "Salary - Production", EntityTypeEmployee},
		{"vendor raw materials", "Vendor Payment", "Raw Materials", EntityTypeSupplier},
		{"office supplies is unmatched", "Office Supplies", "Stationery", EntityTypeNone},
		{"empty input", "", "", EntityTypeNone},
		{"subcategory alone can match", "Operations", "Overtime - Night Shift", EntityTypeEmployee},
		{"vehicle beats employee", "Fleet Staff", "Driver Allowance", EntityTypeTruck},
		{"vehicle beats vendor", "Fuel Purchase", "Diesel", EntityTypeTruck},
		{"employee beats vendor", "Staff Purchase", "Uniforms", EntityTypeEmployee},
		{"matching is case-sensitive", "vehicle fuel", "fuel", EntityTypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ResolveEntityType(tt.category, tt.subcategory))
		})
	}
}

func TestClassifier_ResolvePaymentKind(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		subcategory string
		want        PaymentKind
	}{
		{"Fuel", PaymentKindFuel},
		{"Diesel Fuel Top-up", PaymentKindFuel},
		{"Scheduled Maintenance", PaymentKindMaintenance},
		{"Insurance Premium", PaymentKindInsurance},
		{"Annual Registration", PaymentKindRegistration},
		{"Brake Repair", PaymentKindRepair},
		{"Salary - Production", PaymentKindSalary},
		{"Festival Bonus", PaymentKindBonus},
		{"Travel Allowance", PaymentKindAllowance},
		{"OVERTIME", PaymentKindOvertime},
		{"Sales Incentive", PaymentKindIncentive},
		{"Travel Reimbursement", PaymentKindReimbursement},
		{"Reimbursed Mileage", PaymentKindReimbursement},
		// incentive is tested before reimbursement
		{"Incentive Reimbursement", PaymentKindIncentive},
		{"Raw Materials", PaymentKindOther},
		{"", PaymentKindOther},
		// fuel is tested before repair
		{"Fuel Pump Repair", PaymentKindFuel},
		// maintenance is tested before repair
		{"Maintenance and Repair", PaymentKindMaintenance},
	}

	for _, tt := range tests {
		t.Run(tt.subcategory, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ResolvePaymentKind(tt.subcategory))
		})
	}
}

func TestClassifier_ResolvePaymentKindFor(t *testing.T) {
	c := DefaultClassifier()

	tests := []struct {
		name        string
		entity      EntityType
		subcategory string
		want        PaymentKind
	}{
		{"wages are salary", EntityTypeEmployee, "Wages - Production", PaymentKindSalary},
		{"empty employee subcategory is salary", EntityTypeEmployee, "", PaymentKindSalary},
		{"employee reimbursement keeps its kind", EntityTypeEmployee, "Travel Reimbursement", PaymentKindReimbursement},
		{"vehicle kind on employee is kept", EntityTypeEmployee, "fuel card", PaymentKindFuel},
		{"supplier other stays other", EntityTypeSupplier, "Steel", PaymentKindOther},
		{"unrouted other stays other", EntityTypeNone, "Paper", PaymentKindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ResolvePaymentKindFor(tt.entity, tt.subcategory))
		})
	}
}

func TestWithKeywords(t *testing.T) {
	rules := WithKeywords(map[EntityType][]string{
		EntityTypeSupplier: {"Office Supplies"},
		EntityTypeEmployee: nil,
	})
	c := NewClassifier(rules, nil)

	t.Run("override replaces the keyword set", func(t *testing.T) {
		assert.Equal(t, EntityTypeSupplier, c.ResolveEntityType("Office Supplies", ""))
		assert.Equal(t, EntityTypeNone, c.ResolveEntityType("Vendor Payment", "Raw Materials"))
	})

	t.Run("empty override keeps defaults", func(t *testing.T) {
		assert.Equal(t, EntityTypeEmployee, c.ResolveEntityType("Payroll", ""))
	})

	t.Run("precedence order is preserved", func(t *testing.T) {
		got := c.EntityRules()
		assert.Equal(t, []EntityType{EntityTypeTruck, EntityTypeEmployee, EntityTypeSupplier},
			[]EntityType{got[0].Entity, got[1].Entity, got[2].Entity})
	})
}

func TestClassifier_EntityRulesReturnsCopy(t *testing.T) {
	c := DefaultClassifier()
	rules := c.EntityRules()
	rules[0].Keywords[0] = "Mutated"

	assert.Equal(t, EntityTypeTruck, c.ResolveEntityType("Vehicle", ""))
}
