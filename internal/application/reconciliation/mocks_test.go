package reconciliation

import (
	"context"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Expense), args.Error(1)
}

func (m *MockExpenseRepository) LinkEntity(ctx context.Context, expenseID uuid.UUID, link reconciliation.EntityLink) error {
	args := m.Called(ctx, expenseID, link)
	return args.Error(0)
}

type MockVendorBillRepository struct {
	mock.Mock
}

func (m *MockVendorBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.VendorBill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.VendorBill), args.Error(1)
}

func (m *MockVendorBillRepository) Save(ctx context.Context, bill *reconciliation.VendorBill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockVendorBillRepository) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*reconciliation.VendorBill, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.VendorBill), args.Error(1)
}

type MockVendorPaymentRepository struct {
	mock.Mock
}

func (m *MockVendorPaymentRepository) Create(ctx context.Context, record *reconciliation.VendorPaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockVendorPaymentRepository) FindByBillID(ctx context.Context, billID uuid.UUID) ([]reconciliation.VendorPaymentRecord, error) {
	args := m.Called(ctx, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconciliation.VendorPaymentRecord), args.Error(1)
}

type MockPayrollRecordRepository struct {
	mock.Mock
}

func (m *MockPayrollRecordRepository) Create(ctx context.Context, record *reconciliation.PayrollRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPayrollRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.PayrollRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.PayrollRecord), args.Error(1)
}

func (m *MockPayrollRecordRepository) MarkPaid(ctx context.Context, id, employeeID, processedBy uuid.UUID, at time.Time) (*reconciliation.PayrollRecord, error) {
	args := m.Called(ctx, id, employeeID, processedBy, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.PayrollRecord), args.Error(1)
}

type MockTruckRepository struct {
	mock.Mock
}

func (m *MockTruckRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Truck, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconciliation.Truck), args.Error(1)
}

func (m *MockTruckRepository) Save(ctx context.Context, truck *reconciliation.Truck) error {
	args := m.Called(ctx, truck)
	return args.Error(0)
}

func (m *MockTruckRepository) AdvanceOdometer(ctx context.Context, id uuid.UUID, reading decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, reading)
	return args.Bool(0), args.Error(1)
}

func (m *MockTruckRepository) AdvanceMaintenanceDate(ctx context.Context, id uuid.UUID, on time.Time) (bool, error) {
	args := m.Called(ctx, id, on)
	return args.Bool(0), args.Error(1)
}

type MockVehicleLogRepository struct {
	mock.Mock
}

func (m *MockVehicleLogRepository) CreateExpenseLog(ctx context.Context, entry *reconciliation.VehicleExpenseLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockVehicleLogRepository) CreateMaintenanceLog(ctx context.Context, entry *reconciliation.VehicleMaintenanceLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// =============================================================================
// Mock Locker and Event Publisher
// =============================================================================

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Lock, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shared.Lock), args.Error(1)
}

type MockLock struct {
	mock.Mock
}

func (m *MockLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var (
	_ reconciliation.ExpenseRepository       = (*MockExpenseRepository)(nil)
	_ reconciliation.VendorBillRepository    = (*MockVendorBillRepository)(nil)
	_ reconciliation.VendorPaymentRepository = (*MockVendorPaymentRepository)(nil)
	_ reconciliation.PayrollRecordRepository = (*MockPayrollRecordRepository)(nil)
	_ reconciliation.TruckRepository         = (*MockTruckRepository)(nil)
	_ reconciliation.VehicleLogRepository    = (*MockVehicleLogRepository)(nil)
	_ shared.Locker                          = (*MockLocker)(nil)
	_ shared.EventPublisher                  = (*MockEventPublisher)(nil)
)

// =============================================================================
// Fixtures
// =============================================================================

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func newExpense(amount string, category, subcategory string) *reconciliation.Expense {
	return &reconciliation.Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            mustDecimal(amount),
		Date:              time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Category:          category,
		Subcategory:       subcategory,
		Description:       category + " payment",
		PaymentMethod:     "bank_transfer",
		CreatedBy:         uuid.New(),
	}
}

func newRequest(expense *reconciliation.Expense) *IntegrationRequest {
	return &IntegrationRequest{
		ExpenseID:     expense.ID,
		Amount:        expense.Amount,
		Date:          expense.Date,
		Category:      expense.Category,
		Subcategory:   expense.Subcategory,
		Description:   expense.Description,
		PaymentMethod: expense.PaymentMethod,
		CreatedBy:     expense.CreatedBy,
	}
}
