package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftPayroll(t *testing.T, employeeID uuid.UUID) *reconciliation.PayrollRecord {
	t.Helper()
	rec, err := reconciliation.NewPaidDisbursement(reconciliation.DisbursementInput{
		EmployeeID: employeeID,
		Kind:       reconciliation.PaymentKindSalary,
		Amount:     decimal.NewFromInt(3000),
		PaidOn:     day(2024, time.May, 31),
	})
	require.NoError(t, err)
	rec.Status = reconciliation.PayrollStatusProcessed
	rec.ProcessedAt = nil
	rec.ProcessedBy = nil
	return rec
}

func TestGormPayrollRecordRepository_CreateAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormPayrollRecordRepository(db)
	ctx := context.Background()

	expense := seedExpense(t, db, "1200", "Salary")
	rec, err := reconciliation.NewPaidDisbursement(reconciliation.DisbursementInput{
		EmployeeID: uuid.New(),
		ExpenseID:  expense.ID,
		Kind:       reconciliation.PaymentKindReimbursement,
		Amount:     decimal.NewFromInt(1200),
		PaidOn:     day(2024, time.May, 1),
		PaidBy:     expense.CreatedBy,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, reconciliation.PayrollStatusPaid, got.Status)
	assert.True(t, got.ReimbursementAmount.Equal(decimal.NewFromInt(1200)))
	assert.True(t, got.GrossSalary.Equal(got.BucketTotal()))
	require.NotNil(t, got.ExpenseID)
	assert.Equal(t, expense.ID, *got.ExpenseID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPayrollRecordRepository_MarkPaid(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormPayrollRecordRepository(db)
	ctx := context.Background()

	employeeID := uuid.New()
	rec := newDraftPayroll(t, employeeID)
	require.NoError(t, repo.Create(ctx, rec))

	t.Run("wrong employee is not found", func(t *testing.T) {
		_, err := repo.MarkPaid(ctx, rec.ID, uuid.New(), uuid.New(), time.Now())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("settles the record", func(t *testing.T) {
		processor := uuid.New()
		got, err := repo.MarkPaid(ctx, rec.ID, employeeID, processor, time.Now())
		require.NoError(t, err)
		assert.Equal(t, reconciliation.PayrollStatusPaid, got.Status)
		require.NotNil(t, got.ProcessedBy)
		assert.Equal(t, processor, *got.ProcessedBy)
		assert.NotNil(t, got.ProcessedAt)
		assert.Equal(t, rec.Version+1, got.Version)
	})

	t.Run("paying twice is an invalid state", func(t *testing.T) {
		_, err := repo.MarkPaid(ctx, rec.ID, employeeID, uuid.New(), time.Now())
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}
