package reconciliation

import (
	"context"
	"sync"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/google/uuid"
)

// HandlerInput is what the orchestrator hands to the ledger handler it picked
type HandlerInput struct {
	Expense     *reconciliation.Expense
	EntityID    uuid.UUID
	PaymentKind reconciliation.PaymentKind
	Request     *IntegrationRequest
}

// EntityHandler posts an expense into one subsidiary ledger.
//
// Handle returns an error only when the primary write (or a pre-check before it)
// failed, in which case nothing was written. Once the primary write succeeded it
// returns a result, and any later write that did not apply is reported as a step.
type EntityHandler interface {
	EntityType() reconciliation.EntityType
	Handle(ctx context.Context, in HandlerInput) (*HandlerResult, error)
}

// HandlerRegistry maps entity types to their ledger handler
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[reconciliation.EntityType]EntityHandler
}

// NewHandlerRegistry creates a registry holding the given handlers
func NewHandlerRegistry(handlers ...EntityHandler) *HandlerRegistry {
	r := &HandlerRegistry{handlers: make(map[reconciliation.EntityType]EntityHandler)}
	for _, h := range handlers {
		r.Register(h)
	}
	return r
}

// Register adds or replaces the handler for its entity type
func (r *HandlerRegistry) Register(h EntityHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.EntityType()] = h
}

// Get returns the handler for entity
func (r *HandlerRegistry) Get(entity reconciliation.EntityType) (EntityHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[entity]
	return h, ok
}
