package reconciliation

import (
	"testing"

	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveBillStatus(t *testing.T) {
	total := decimal.NewFromInt(10000)

	assert.Equal(t, BillStatusPending, DeriveBillStatus(decimal.Zero, total))
	assert.Equal(t, BillStatusPartial, DeriveBillStatus(decimal.NewFromInt(1), total))
	assert.Equal(t, BillStatusPartial, DeriveBillStatus(decimal.NewFromInt(9999), total))
	assert.Equal(t, BillStatusPaid, DeriveBillStatus(total, total))
	assert.Equal(t, BillStatusPaid, DeriveBillStatus(decimal.NewFromInt(10001), total))
	// a zero-total bill with nothing paid is still pending
	assert.Equal(t, BillStatusPending, DeriveBillStatus(decimal.Zero, decimal.Zero))
}

func newTestBill(t *testing.T, total, paid int64) *VendorBill {
	t.Helper()
	bill, err := NewVendorBill(uuid.New(), "BILL-001", decimal.NewFromInt(total))
	require.NoError(t, err)
	bill.PaidAmount = decimal.NewFromInt(paid)
	bill.Status = DeriveBillStatus(bill.PaidAmount, bill.TotalAmount)
	return bill
}

func TestVendorBill_ValidatePayment(t *testing.T) {
	tests := []struct {
		name    string
		paid    int64
		amount  decimal.Decimal
		wantErr error
	}{
		{"settles the remaining balance", 4000, decimal.NewFromInt(6000), nil},
		{"first payment", 0, decimal.NewFromInt(3000), nil},
		{"overpayment", 9000, decimal.NewFromInt(1500), shared.ErrExceedsOutstanding},
		{"zero amount", 0, decimal.Zero, shared.ErrInvalidInput},
		{"negative amount", 0, decimal.NewFromInt(-5), shared.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := newTestBill(t, 10000, tt.paid)
			err := bill.ValidatePayment(tt.amount)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("overpayment names the outstanding amount", func(t *testing.T) {
		bill := newTestBill(t, 10000, 9000)
		err := bill.ValidatePayment(decimal.NewFromInt(1500))
		assert.Contains(t, err.Error(), "1000.00")
	})
}

func TestVendorBill_CheckStatus(t *testing.T) {
	bill := newTestBill(t, 10000, 3000)
	assert.NoError(t, bill.CheckStatus())

	bill.Status = BillStatusPaid
	assert.ErrorIs(t, bill.CheckStatus(), shared.ErrInvalidState)
}

func TestNewVendorBill_Validation(t *testing.T) {
	_, err := NewVendorBill(uuid.Nil, "B", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewVendorBill(uuid.New(), "B", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
