package reconciliation

import "strings"

// EntityRule is one row of the entity decision table
type EntityRule struct {
	Entity   EntityType
	Keywords []string
}

// KindRule maps a lowercase subcategory fragment to a payment kind
type KindRule struct {
	Kind     PaymentKind
	Fragment string
}

// DefaultEntityRules is the entity decision table in precedence order.
// A category that matches both a vehicle and an employee keyword is a vehicle cost.
func DefaultEntityRules() []EntityRule {
	return []EntityRule{
		{Entity: EntityTypeTruck, Keywords: []string{"Vehicle", "Fleet", "Truck", "Fuel"}},
		{Entity: EntityTypeEmployee, Keywords: []string{
			"Salary", "Salaries", "Payroll", "Wages", "Bonus", "Allowance",
			"Overtime", "Incentive", "Reimbursement", "Employee", "Staff",
		}},
		{Entity: EntityTypeSupplier, Keywords: []string{"Vendor", "Supplier", "Raw Materials", "Purchase", "Material"}},
	}
}

// DefaultKindRules is the payment kind table in evaluation order
func DefaultKindRules() []KindRule {
	return []KindRule{
		{Kind: PaymentKindFuel, Fragment: "fuel"},
		{Kind: PaymentKindMaintenance, Fragment: "maintenance"},
		{Kind: PaymentKindInsurance, Fragment: "insurance"},
		{Kind: PaymentKindRegistration, Fragment: "registration"},
		{Kind: PaymentKindRepair, Fragment: "repair"},
		{Kind: PaymentKindSalary, Fragment: "salary"},
		{Kind: PaymentKindBonus, Fragment: "bonus"},
		{Kind: PaymentKindAllowance, Fragment: "allowance"},
		{Kind: PaymentKindOvertime, Fragment: "overtime"},
		{Kind: PaymentKindIncentive, Fragment: "incentive"},
		{Kind: PaymentKindReimbursement, Fragment: "reimburse"},
	}
}

// Classifier maps expense category text onto a ledger and a payment kind.
// It performs no I/O and is safe for concurrent use once built.
type Classifier struct {
	entityRules []EntityRule
	kindRules   []KindRule
}

// NewClassifier creates a classifier over the given tables.
// Nil tables fall back to the defaults.
func NewClassifier(entityRules []EntityRule, kindRules []KindRule) *Classifier {
	if entityRules == nil {
		entityRules = DefaultEntityRules()
	}
	if kindRules == nil {
		kindRules = DefaultKindRules()
	}
	return &Classifier{
		entityRules: entityRules,
		kindRules:   kindRules,
	}
}

// DefaultClassifier returns a classifier over the built-in tables
func DefaultClassifier() *Classifier {
	return NewClassifier(nil, nil)
}

// WithKeywords returns the default entity table with the keyword sets of the
// given entities replaced. Precedence order is never changed by an override.
func WithKeywords(overrides map[EntityType][]string) []EntityRule {
	rules := DefaultEntityRules()
	for i := range rules {
		if kw, ok := overrides[rules[i].Entity]; ok && len(kw) > 0 {
			rules[i].Keywords = kw
		}
	}
	return rules
}

// ResolveEntityType returns the first entity whose keyword set has a member
// contained in category or subcategory. Matching is case-sensitive.
func (c *Classifier) ResolveEntityType(category, subcategory string) EntityType {
	for _, rule := range c.entityRules {
		for _, kw := range rule.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(category, kw) || strings.Contains(subcategory, kw) {
				return rule.Entity
			}
		}
	}
	return EntityTypeNone
}

// ResolvePaymentKind derives the payment kind from the subcategory, case-insensitively.
// It always returns a kind; unmatched input is PaymentKindOther.
func (c *Classifier) ResolvePaymentKind(subcategory string) PaymentKind {
	lower := strings.ToLower(subcategory)
	for _, rule := range c.kindRules {
		if strings.Contains(lower, rule.Fragment) {
			return rule.Kind
		}
	}
	return PaymentKindOther
}

// ResolvePaymentKindFor derives the payment kind for an expense already routed
// to entity. Employee costs with no recognised kind, such as wages, are paid as
// salary; every other entity gets ResolvePaymentKind unchanged.
func (c *Classifier) ResolvePaymentKindFor(entity EntityType, subcategory string) PaymentKind {
	kind := c.ResolvePaymentKind(subcategory)
	if entity == EntityTypeEmployee && kind == PaymentKindOther {
		return PaymentKindSalary
	}
	return kind
}

// EntityRules returns a copy of the entity decision table
func (c *Classifier) EntityRules() []EntityRule {
	out := make([]EntityRule, len(c.entityRules))
	for i, r := range c.entityRules {
		out[i] = EntityRule{Entity: r.Entity, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
