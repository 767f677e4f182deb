package reconciliation

import (
	"testing"
	"time"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaidDisbursement_Salary(t *testing.T) {
	employeeID := uuid.New()
	paidOn := time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)
	amount := decimal.NewFromInt(50000)

	rec, err := NewPaidDisbursement(DisbursementInput{
		EmployeeID: employeeID,
		ExpenseID:  uuid.New(),
		Kind:       PaymentKindSalary,
		Amount:     amount,
		PaidOn:     paidOn,
	})
	require.NoError(t, err)

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, day, rec.PayPeriodStart)
	assert.Equal(t, day, rec.PayPeriodEnd)
	assert.True(t, rec.BasicSalary.Equal(amount))
	assert.True(t, rec.GrossSalary.Equal(amount))
	assert.True(t, rec.NetSalary.Equal(amount))
	assert.Equal(t, 30, rec.WorkingDays)
	assert.Equal(t, 30, rec.PresentDays)
	assert.Equal(t, PayrollStatusPaid, rec.Status)
	assert.NotNil(t, rec.ProcessedAt)
	assert.Nil(t, rec.ProcessedBy)
}

func TestNewPaidDisbursement_Buckets(t *testing.T) {
	amount := decimal.NewFromInt(1200)

	tests := []struct {
		kind   PaymentKind
		bucket func(*PayrollRecord) decimal.Decimal
	}{
		{PaymentKindAllowance, func(r *PayrollRecord) decimal.Decimal { return r.TotalAllowances }},
		{PaymentKindOvertime, func(r *PayrollRecord) decimal.Decimal { return r.OvertimeAmount }},
		{PaymentKindBonus, func(r *PayrollRecord) decimal.Decimal { return r.Bonus }},
		{PaymentKindIncentive, func(r *PayrollRecord) decimal.Decimal { return r.Bonus }},
		{PaymentKindReimbursement, func(r *PayrollRecord) decimal.Decimal { return r.ReimbursementAmount }},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			rec, err := NewPaidDisbursement(DisbursementInput{
				EmployeeID: uuid.New(),
				Kind:       tt.kind,
				Amount:     amount,
				PaidOn:     time.Now(),
				PaidBy:     uuid.New(),
			})
			require.NoError(t, err)

			assert.True(t, tt.bucket(rec).Equal(amount), "amount lands in its bucket")
			assert.True(t, rec.BucketTotal().Equal(amount), "and in no other bucket")
			assert.True(t, rec.BasicSalary.IsZero())
			assert.True(t, rec.GrossSalary.Equal(amount))
			assert.True(t, rec.NetSalary.Equal(amount))
			assert.Equal(t, PayrollStatusPaid, rec.Status)
			assert.NotNil(t, rec.ProcessedBy)
			assert.Nil(t, rec.ExpenseID)
		})
	}

	t.Run("overtime stamps default hours", func(t *testing.T) {
		rec, err := NewPaidDisbursement(DisbursementInput{
			EmployeeID: uuid.New(), Kind: PaymentKindOvertime, Amount: amount, PaidOn: time.Now(),
		})
		require.NoError(t, err)
		assert.True(t, rec.OvertimeHours.Equal(decimal.NewFromInt(8)))
	})
}

func TestNewPaidDisbursement_Validation(t *testing.T) {
	base := DisbursementInput{
		EmployeeID: uuid.New(),
		Kind:       PaymentKindBonus,
		Amount:     decimal.NewFromInt(10),
		PaidOn:     time.Now(),
	}

	t.Run("non payroll kind", func(t *testing.T) {
		in := base
		in.Kind = PaymentKindFuel
		_, err := NewPaidDisbursement(in)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("missing employee", func(t *testing.T) {
		in := base
		in.EmployeeID = uuid.Nil
		_, err := NewPaidDisbursement(in)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("zero amount", func(t *testing.T) {
		in := base
		in.Amount = decimal.Zero
		_, err := NewPaidDisbursement(in)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPayrollRecord_CheckSettlement(t *testing.T) {
	tests := []struct {
		status  PayrollStatus
		settles bool
	}{
		{PayrollStatusDraft, true},
		{PayrollStatusProcessed, true},
		{PayrollStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			rec := &PayrollRecord{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: tt.status}
			err := rec.CheckSettlement()
			if tt.settles {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, shared.ErrInvalidState)
		})
	}
}

func TestPayrollStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PayrollStatusDraft.CanTransitionTo(PayrollStatusProcessed))
	assert.True(t, PayrollStatusProcessed.CanTransitionTo(PayrollStatusPaid))
	assert.False(t, PayrollStatusPaid.CanTransitionTo(PayrollStatusProcessed))
	assert.False(t, PayrollStatusProcessed.CanTransitionTo(PayrollStatusDraft))
	assert.False(t, PayrollStatusDraft.CanTransitionTo(PayrollStatus("void")))
}
