package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/migration"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

// newSQLiteDB opens a file-backed SQLite database with the reconciliation schema.
// A single connection keeps writers from tripping over SQLite's database lock,
// which also means goroutines here run their statements one at a time. Truly
// parallel writers are exercised by newPostgresDB tests, and the sqlmock tests
// pin that each guard sits inside its UPDATE with no read ahead of it.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reconciler.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

// newPostgresDB starts a PostgreSQL container and applies the shipped migrations.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("erp_reconciler_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	path, err := filepath.Abs(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	m, err := migration.NewFromDSN(dsn, path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(25)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func seedExpense(t *testing.T, db *gorm.DB, amount string, category string) *reconciliation.Expense {
	t.Helper()
	expense := &reconciliation.Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Amount:            decimal.RequireFromString(amount),
		Date:              day(2024, time.May, 1),
		Category:          category,
		Description:       fmt.Sprintf("%s expense", category),
		PaymentMethod:     "bank_transfer",
		CreatedBy:         uuid.New(),
	}
	require.NoError(t, NewGormExpenseRepository(db).Create(context.Background(), expense))
	return expense
}

func seedBill(t *testing.T, db *gorm.DB, total string) *reconciliation.VendorBill {
	t.Helper()
	bill, err := reconciliation.NewVendorBill(uuid.New(), "BILL-"+uuid.NewString()[:8], decimal.RequireFromString(total))
	require.NoError(t, err)
	require.NoError(t, NewGormVendorBillRepository(db).Save(context.Background(), bill))
	return bill
}

func seedTruck(t *testing.T, db *gorm.DB, odometer string) *reconciliation.Truck {
	t.Helper()
	truck, err := reconciliation.NewTruck("TRK-"+uuid.NewString()[:8], decimal.RequireFromString(odometer))
	require.NoError(t, err)
	require.NoError(t, NewGormTruckRepository(db).Save(context.Background(), truck))
	return truck
}
