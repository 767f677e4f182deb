package reconciliation

import (
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a posted cost transaction. The engine reads it and writes only the
// link fields and the integration outcome; booking the expense itself belongs to the expense workflow.
type Expense struct {
	shared.BaseAggregateRoot
	Amount            decimal.Decimal    `json:"amount"`
	Date              time.Time          `json:"date"`
	Category          string             `json:"category"`
	Subcategory       string             `json:"subcategory"`
	Description       string             `json:"description"`
	PaymentMethod     string             `json:"payment_method"`
	BankAccountID     *uuid.UUID         `json:"bank_account_id,omitempty"`
	EntityType        EntityType         `json:"entity_type,omitempty"`
	EntityID          *uuid.UUID         `json:"entity_id,omitempty"`
	EntityReferenceID *uuid.UUID         `json:"entity_reference_id,omitempty"`
	Outcome           IntegrationOutcome `json:"integration_outcome"`
	CreatedBy         uuid.UUID          `json:"created_by"`
}

// IntegrationStatus is the stored verdict of the integration that linked an expense
type IntegrationStatus string

const (
	IntegrationStatusCompleted IntegrationStatus = "completed"
	IntegrationStatusFailed    IntegrationStatus = "failed"
)

// IntegrationOutcome is what the linking integration reported to its caller.
// A resubmission gets the same verdict back.
type IntegrationOutcome struct {
	Status    IntegrationStatus `json:"status,omitempty"`
	ErrorCode string            `json:"error_code,omitempty"`
	Error     string            `json:"error,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// Succeeded reports whether the integration completed. Links written before
// outcomes were stored carry no status and count as completed.
func (o IntegrationOutcome) Succeeded() bool {
	return o.Status != IntegrationStatusFailed
}

// EntityLink is the back-reference from an expense to the ledger entry it produced
type EntityLink struct {
	EntityType  EntityType         `json:"entity_type"`
	EntityID    uuid.UUID          `json:"entity_id"`
	ReferenceID uuid.UUID          `json:"reference_id"`
	Outcome     IntegrationOutcome `json:"outcome"`
}

// IsLinked reports whether the expense already points at a ledger entry
func (e *Expense) IsLinked() bool {
	return e.EntityReferenceID != nil
}

// Link returns the current back-link, or nil when the expense is unlinked
func (e *Expense) Link() *EntityLink {
	if !e.IsLinked() || e.EntityID == nil {
		return nil
	}
	return &EntityLink{
		EntityType:  e.EntityType,
		EntityID:    *e.EntityID,
		ReferenceID: *e.EntityReferenceID,
		Outcome:     e.Outcome,
	}
}

// LinkTo records the ledger entry produced for this expense.
// An expense is linked at most once.
func (e *Expense) LinkTo(link EntityLink) error {
	if e.IsLinked() {
		return shared.NewConflictError(shared.CodeAlreadyIntegrated,
			"expense %s is already linked to %s %s", e.ID, e.EntityType, *e.EntityReferenceID)
	}
	if !link.EntityType.IsValid() {
		return shared.NewValidationError("invalid entity type %q", link.EntityType)
	}
	if link.EntityID == uuid.Nil || link.ReferenceID == uuid.Nil {
		return shared.NewValidationError("entity id and reference id are required to link an expense")
	}

	entityID := link.EntityID
	refID := link.ReferenceID
	e.EntityType = link.EntityType
	e.EntityID = &entityID
	e.EntityReferenceID = &refID
	e.Outcome = link.Outcome
	e.Touch()
	e.Version++
	return nil
}
