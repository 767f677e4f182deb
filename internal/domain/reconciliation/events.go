package reconciliation

import (
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EventTypeExpenseIntegrated is published once an expense is linked to a ledger entry
const EventTypeExpenseIntegrated = "ExpenseIntegrated"

// AggregateTypeExpense is the aggregate type carried on expense events
const AggregateTypeExpense = "Expense"

// ExpenseIntegratedEvent records that an expense produced a ledger entry
type ExpenseIntegratedEvent struct {
	shared.BaseDomainEvent
	Link     EntityLink      `json:"link"`
	Amount   decimal.Decimal `json:"amount"`
	Warnings []string        `json:"warnings,omitempty"`
}

// NewExpenseIntegratedEvent creates the event for a freshly linked expense
func NewExpenseIntegratedEvent(expense *Expense, warnings []string) *ExpenseIntegratedEvent {
	evt := &ExpenseIntegratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeExpenseIntegrated, AggregateTypeExpense, expense.ID),
		Amount:          expense.Amount,
		Warnings:        warnings,
	}
	if link := expense.Link(); link != nil {
		evt.Link = *link
	}
	return evt
}
