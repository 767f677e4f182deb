package reconciliation

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/cache"
	"github.com/erp/reconciler/internal/infrastructure/event"
	"github.com/erp/reconciler/internal/infrastructure/persistence"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type engine struct {
	db      *gorm.DB
	service *ExpenseIntegrationService
	audit   *observer.ObservedLogs
}

// newEngine wires the service over real GORM repositories on a SQLite file.
// The pool holds one connection, so concurrent callers here contend on the
// integration lock while their statements run one at a time. Parallel writers
// against the conditional UPDATEs are covered by the PostgreSQL container test
// in the persistence package.
func newEngine(t *testing.T, strict bool) *engine {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "engine.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	core, audit := observer.New(zapcore.InfoLevel)
	bus := event.NewInMemoryEventBus(zap.NewNop())
	auditHandler := NewIntegrationAuditHandler(zap.New(core))
	bus.Subscribe(auditHandler, auditHandler.EventTypes()...)

	service := NewExpenseIntegrationService(ExpenseIntegrationServiceConfig{
		Expenses: persistence.NewGormExpenseRepository(db),
		Handlers: NewHandlerRegistry(
			NewVendorHandler(persistence.NewGormVendorPaymentRepository(db), persistence.NewGormVendorBillRepository(db)),
			NewEmployeeHandler(persistence.NewGormPayrollRecordRepository(db)),
			NewVehicleHandler(persistence.NewGormTruckRepository(db), persistence.NewGormVehicleLogRepository(db)),
		),
		Locker: cache.NewInMemoryLocker(),
		Strict: strict,
		Events: bus,
	})
	return &engine{db: db, service: service, audit: audit}
}

func (e *engine) seedExpense(t *testing.T, amount, category, subcategory string) *reconciliation.Expense {
	t.Helper()
	expense := newExpense(amount, category, subcategory)
	require.NoError(t, persistence.NewGormExpenseRepository(e.db).Create(context.Background(), expense))
	return expense
}

func TestEngine_BillPaidInTwoInstalments(t *testing.T) {
	e := newEngine(t, true)
	ctx := context.Background()
	bills := persistence.NewGormVendorBillRepository(e.db)

	supplierID := uuid.New()
	bill, err := reconciliation.NewVendorBill(supplierID, "INV-2024-0042", mustDecimal("10000"))
	require.NoError(t, err)
	require.NoError(t, bills.Save(ctx, bill))

	for i, amount := range []string{"4000", "6000"} {
		expense := e.seedExpense(t, amount, "Raw Materials", "Steel")
		req := newRequest(expense)
		req.SupplierID = &supplierID
		req.VendorBillID = &bill.ID

		resp, err := e.service.Integrate(ctx, req)
		require.NoError(t, err)
		require.True(t, resp.Success, "instalment %d: %s", i, resp.Error)

		stored, err := persistence.NewGormExpenseRepository(e.db).FindByID(ctx, expense.ID)
		require.NoError(t, err)
		link := stored.Link()
		require.NotNil(t, link)
		assert.Equal(t, resp.Integrations["supplier"].ReferenceID, link.ReferenceID)
	}

	got, err := bills.FindByID(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.Equal(mustDecimal("10000")))
	assert.Equal(t, reconciliation.BillStatusPaid, got.Status)

	records, err := persistence.NewGormVendorPaymentRepository(e.db).FindByBillID(ctx, bill.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Len(t, e.audit.FilterMessage("Expense integrated").All(), 2)
}

func TestEngine_OverpaymentStrictVsLenient(t *testing.T) {
	for _, strict := range []bool{true, false} {
		t.Run(map[bool]string{true: "strict", false: "lenient"}[strict], func(t *testing.T) {
			e := newEngine(t, strict)
			ctx := context.Background()
			bills := persistence.NewGormVendorBillRepository(e.db)

			supplierID := uuid.New()
			bill, err := reconciliation.NewVendorBill(supplierID, "INV-9", mustDecimal("1000"))
			require.NoError(t, err)
			require.NoError(t, bills.Save(ctx, bill))

			expense := e.seedExpense(t, "3000", "Vendor", "Steel")
			req := newRequest(expense)
			req.SupplierID = &supplierID
			req.VendorBillID = &bill.ID

			resp, err := e.service.Integrate(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, !strict, resp.Success)
			if strict {
				assert.Equal(t, shared.CodeExceedsOutstanding, resp.ErrorCode)
			} else {
				require.Len(t, resp.Warnings, 1)
			}

			got, err := bills.FindByID(ctx, bill.ID)
			require.NoError(t, err)
			assert.True(t, got.PaidAmount.IsZero(), "an overpayment leaves the bill untouched")
			assert.Equal(t, reconciliation.BillStatusPending, got.Status)

			// A resubmission reports the stored verdict instead of a fresh success.
			again, err := e.service.Integrate(ctx, req)
			require.NoError(t, err)
			assert.True(t, again.Replayed)
			assert.Equal(t, resp.Success, again.Success)
			assert.Equal(t, resp.ErrorCode, again.ErrorCode)
			assert.Equal(t, resp.Error, again.Error)
			assert.Equal(t, resp.Warnings, again.Warnings)

			stored, err := persistence.NewGormExpenseRepository(e.db).FindByID(ctx, expense.ID)
			require.NoError(t, err)
			wantStatus := reconciliation.IntegrationStatusCompleted
			if strict {
				wantStatus = reconciliation.IntegrationStatusFailed
			}
			assert.Equal(t, wantStatus, stored.Outcome.Status)

			got, err = bills.FindByID(ctx, bill.ID)
			require.NoError(t, err)
			assert.True(t, got.PaidAmount.IsZero())
		})
	}
}

func TestEngine_OdometerRatchet(t *testing.T) {
	e := newEngine(t, true)
	ctx := context.Background()
	trucks := persistence.NewGormTruckRepository(e.db)

	truck, err := reconciliation.NewTruck("KA-05-7788", mustDecimal("15000"))
	require.NoError(t, err)
	require.NoError(t, trucks.Save(ctx, truck))

	steps := []struct {
		reading string
		want    string
		warned  bool
	}{
		{"14500", "15000", true},
		{"15500", "15500", false},
	}
	for _, s := range steps {
		expense := e.seedExpense(t, "2500", "Fleet", "Fuel")
		req := newRequest(expense)
		req.TruckID = &truck.ID
		req.Odometer = ptr(mustDecimal(s.reading))

		resp, err := e.service.Integrate(ctx, req)
		require.NoError(t, err)
		require.True(t, resp.Success)
		assert.Equal(t, s.warned, len(resp.Warnings) == 1, "reading %s", s.reading)

		got, err := trucks.FindByID(ctx, truck.ID)
		require.NoError(t, err)
		assert.True(t, got.CurrentOdometer.Equal(mustDecimal(s.want)), "after %s got %s", s.reading, got.CurrentOdometer)
	}
}

func TestEngine_SalaryDisbursement(t *testing.T) {
	e := newEngine(t, true)
	ctx := context.Background()

	employeeID := uuid.New()
	expense := e.seedExpense(t, "50000", "Payroll", "Salary")
	req := newRequest(expense)
	req.EmployeeID = &employeeID

	resp, err := e.service.Integrate(ctx, req)
	require.NoError(t, err)
	require.True(t, resp.Success)

	rec, err := persistence.NewGormPayrollRecordRepository(e.db).FindByID(ctx, resp.Integrations["employee"].ReferenceID)
	require.NoError(t, err)
	assert.Equal(t, employeeID, rec.EmployeeID)
	assert.Equal(t, reconciliation.PayrollStatusPaid, rec.Status)
	assert.True(t, rec.BasicSalary.Equal(mustDecimal("50000")))
	assert.True(t, rec.NetSalary.Equal(mustDecimal("50000")))
	assert.Equal(t, 30, rec.WorkingDays)
	assert.Equal(t, "2024-05-01", rec.PayPeriodStart.UTC().Format(time.DateOnly))
}

func TestEngine_EmployeeKindsFromSubcategory(t *testing.T) {
	tests := []struct {
		name        string
		subcategory string
		check       func(t *testing.T, rec *reconciliation.PayrollRecord)
	}{
		{"reimbursement", "Travel Reimbursement", func(t *testing.T, rec *reconciliation.PayrollRecord) {
			assert.True(t, rec.ReimbursementAmount.Equal(mustDecimal("1200")))
			assert.True(t, rec.BasicSalary.IsZero())
		}},
		{"wages", "Wages - Production", func(t *testing.T, rec *reconciliation.PayrollRecord) {
			assert.True(t, rec.BasicSalary.Equal(mustDecimal("1200")))
			assert.True(t, rec.ReimbursementAmount.IsZero())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, true)
			ctx := context.Background()

			employeeID := uuid.New()
			expense := e.seedExpense(t, "1200", "Employee Reimbursement", tt.subcategory)
			req := newRequest(expense)
			req.EmployeeID = &employeeID

			resp, err := e.service.Integrate(ctx, req)
			require.NoError(t, err)
			require.True(t, resp.Success, resp.Error)

			rec, err := persistence.NewGormPayrollRecordRepository(e.db).FindByID(ctx, resp.Integrations["employee"].ReferenceID)
			require.NoError(t, err)
			assert.Equal(t, employeeID, rec.EmployeeID)
			assert.True(t, rec.GrossSalary.Equal(mustDecimal("1200")))
			assert.True(t, rec.NetSalary.Equal(mustDecimal("1200")))
			tt.check(t, rec)
		})
	}
}

func TestEngine_ResubmissionReplays(t *testing.T) {
	e := newEngine(t, true)
	ctx := context.Background()

	supplierID := uuid.New()
	expense := e.seedExpense(t, "780", "Purchase", "Packaging")
	req := newRequest(expense)
	req.SupplierID = &supplierID

	first, err := e.service.Integrate(ctx, req)
	require.NoError(t, err)
	require.True(t, first.Success)

	second, err := e.service.Integrate(ctx, req)
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Integrations["supplier"].ReferenceID, second.Integrations["supplier"].ReferenceID)

	var count int64
	require.NoError(t, e.db.Model(&models.VendorPaymentRecordModel{}).Where("expense_id = ?", expense.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	other := uuid.New()
	req.EntityType = reconciliation.EntityTypeSupplier
	req.EntityID = &other
	_, err = e.service.Integrate(ctx, req)
	assert.ErrorIs(t, err, shared.ErrAlreadyIntegrated)
}

func TestEngine_ConcurrentSubmissionsWriteOnce(t *testing.T) {
	e := newEngine(t, true)
	ctx := context.Background()

	supplierID := uuid.New()
	expense := e.seedExpense(t, "150", "Supplier", "Bolts")
	req := newRequest(expense)
	req.SupplierID = &supplierID

	const callers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		written  int
		replayed int
		busy     int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := *req
			resp, err := e.service.Integrate(ctx, &local)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
				busy++
			case resp.Replayed:
				replayed++
			case resp.Success:
				written++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, written)
	assert.Equal(t, callers, written+replayed+busy)

	var count int64
	require.NoError(t, e.db.Model(&models.VendorPaymentRecordModel{}).Where("expense_id = ?", expense.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
