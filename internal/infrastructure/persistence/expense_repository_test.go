package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormExpenseRepository_FindByID(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	expense := seedExpense(t, db, "150.25", "Fuel")

	t.Run("found", func(t *testing.T) {
		got, err := repo.FindByID(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, expense.ID, got.ID)
		assert.True(t, expense.Amount.Equal(got.Amount))
		assert.Equal(t, "Fuel", got.Category)
		assert.Equal(t, reconciliation.EntityTypeNone, got.EntityType)
		assert.False(t, got.IsLinked())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormExpenseRepository_LinkEntity(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormExpenseRepository(db)
	ctx := context.Background()

	t.Run("links an unlinked expense once", func(t *testing.T) {
		expense := seedExpense(t, db, "500", "Vendor Payment")
		link := reconciliation.EntityLink{
			EntityType:  reconciliation.EntityTypeSupplier,
			EntityID:    uuid.New(),
			ReferenceID: uuid.New(),
		}

		require.NoError(t, repo.LinkEntity(ctx, expense.ID, link))

		got, err := repo.FindByID(ctx, expense.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Link())
		assert.Equal(t, link, *got.Link())
		assert.Equal(t, expense.Version+1, got.Version)

		err = repo.LinkEntity(ctx, expense.ID, reconciliation.EntityLink{
			EntityType:  reconciliation.EntityTypeSupplier,
			EntityID:    uuid.New(),
			ReferenceID: uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyIntegrated)

		got, err = repo.FindByID(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, link, *got.Link(), "first link must survive")
	})

	t.Run("stores the integration outcome with the link", func(t *testing.T) {
		expense := seedExpense(t, db, "1500", "Vendor Payment")
		link := reconciliation.EntityLink{
			EntityType:  reconciliation.EntityTypeSupplier,
			EntityID:    uuid.New(),
			ReferenceID: uuid.New(),
			Outcome: reconciliation.IntegrationOutcome{
				Status:    reconciliation.IntegrationStatusFailed,
				ErrorCode: shared.CodeExceedsOutstanding,
				Error:     "bill_payment: payment exceeds outstanding balance",
				Warnings:  []string{"odometer: reading does not advance", "multi\nline"},
			},
		}

		require.NoError(t, repo.LinkEntity(ctx, expense.ID, link))

		got, err := repo.FindByID(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, reconciliation.IntegrationStatusFailed, got.Outcome.Status)
		assert.False(t, got.Outcome.Succeeded())
		assert.Equal(t, shared.CodeExceedsOutstanding, got.Outcome.ErrorCode)
		assert.Equal(t, link.Outcome.Error, got.Outcome.Error)
		assert.Equal(t, []string{"odometer: reading does not advance", "multi line"}, got.Outcome.Warnings)
	})

	t.Run("unlinked expense has no outcome", func(t *testing.T) {
		expense := seedExpense(t, db, "20", "Fuel")
		got, err := repo.FindByID(ctx, expense.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Outcome.Status)
		assert.Nil(t, got.Outcome.Warnings)
	})

	t.Run("missing expense", func(t *testing.T) {
		err := repo.LinkEntity(ctx, uuid.New(), reconciliation.EntityLink{
			EntityType:  reconciliation.EntityTypeTruck,
			EntityID:    uuid.New(),
			ReferenceID: uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects an incomplete link", func(t *testing.T) {
		expense := seedExpense(t, db, "10", "Fuel")
		err := repo.LinkEntity(ctx, expense.ID, reconciliation.EntityLink{
			EntityType: reconciliation.EntityTypeTruck,
			EntityID:   uuid.New(),
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestGormExpenseRepository_LinkEntity_ConditionalUpdate(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormExpenseRepository(db.DB)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "expenses" SET .+ WHERE id = \$\d+ AND entity_reference_id IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.LinkEntity(context.Background(), id, reconciliation.EntityLink{
		EntityType:  reconciliation.EntityTypeEmployee,
		EntityID:    uuid.New(),
		ReferenceID: uuid.New(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormExpenseRepository_LinkEntity_StoreFailure(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	repo := NewGormExpenseRepository(db.DB)

	mock.ExpectExec(`UPDATE "expenses" SET`).WillReturnError(assert.AnError)

	err := repo.LinkEntity(context.Background(), uuid.New(), reconciliation.EntityLink{
		EntityType:  reconciliation.EntityTypeEmployee,
		EntityID:    uuid.New(),
		ReferenceID: uuid.New(),
	})
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.ErrorIs(t, err, assert.AnError)
}
