package reconciliation

import (
	"testing"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpense_LinkTo(t *testing.T) {
	expense := &Expense{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Amount: decimal.NewFromInt(10)}
	link := EntityLink{EntityType: EntityTypeSupplier, EntityID: uuid.New(), ReferenceID: uuid.New()}

	require.False(t, expense.IsLinked())
	assert.Nil(t, expense.Link())

	require.NoError(t, expense.LinkTo(link))
	assert.True(t, expense.IsLinked())
	assert.Equal(t, &link, expense.Link())

	t.Run("second link is rejected", func(t *testing.T) {
		other := EntityLink{EntityType: EntityTypeTruck, EntityID: uuid.New(), ReferenceID: uuid.New()}
		err := expense.LinkTo(other)
		assert.ErrorIs(t, err, shared.ErrAlreadyIntegrated)
		assert.Equal(t, EntityTypeSupplier, expense.EntityType)
	})
}

func TestExpense_LinkToValidation(t *testing.T) {
	expense := &Expense{BaseAggregateRoot: shared.NewBaseAggregateRoot()}

	err := expense.LinkTo(EntityLink{EntityType: EntityTypeNone, EntityID: uuid.New(), ReferenceID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	err = expense.LinkTo(EntityLink{EntityType: EntityTypeEmployee, EntityID: uuid.New()})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.False(t, expense.IsLinked())
}

func TestNewExpenseIntegratedEvent(t *testing.T) {
	expense := &Expense{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Amount: decimal.NewFromInt(250)}
	link := EntityLink{EntityType: EntityTypeEmployee, EntityID: uuid.New(), ReferenceID: uuid.New()}
	require.NoError(t, expense.LinkTo(link))

	evt := NewExpenseIntegratedEvent(expense, []string{"odometer: skipped"})

	assert.Equal(t, EventTypeExpenseIntegrated, evt.EventType())
	assert.Equal(t, expense.ID, evt.AggregateID())
	assert.Equal(t, link, evt.Link)
	assert.True(t, evt.Amount.Equal(decimal.NewFromInt(250)))
	assert.Len(t, evt.Warnings, 1)
}
