package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayrollRecordRepository implements reconciliation.PayrollRecordRepository using GORM
type GormPayrollRecordRepository struct {
	db *gorm.DB
}

// NewGormPayrollRecordRepository creates a new GormPayrollRecordRepository
func NewGormPayrollRecordRepository(db *gorm.DB) *GormPayrollRecordRepository {
	return &GormPayrollRecordRepository{db: db}
}

// Create inserts a payroll record
func (r *GormPayrollRecordRepository) Create(ctx context.Context, record *reconciliation.PayrollRecord) error {
	if err := r.db.WithContext(ctx).Create(models.PayrollRecordModelFromDomain(record)).Error; err != nil {
		return shared.NewPersistenceError("create payroll record", err)
	}
	return nil
}

// FindByID finds a payroll record by its ID
func (r *GormPayrollRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.PayrollRecord, error) {
	var model models.PayrollRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("payroll record", id)
		}
		return nil, shared.NewPersistenceError("load payroll record", err)
	}
	return model.ToDomain(), nil
}

// MarkPaid moves an unpaid record owned by employeeID to paid. The status guard
// sits in the WHERE clause, so a record is settled at most once.
func (r *GormPayrollRecordRepository) MarkPaid(ctx context.Context, id, employeeID, processedBy uuid.UUID, at time.Time) (*reconciliation.PayrollRecord, error) {
	updates := map[string]any{
		"status":       string(reconciliation.PayrollStatusPaid),
		"processed_at": at,
		"version":      gorm.Expr("version + 1"),
		"updated_at":   time.Now(),
	}
	if processedBy != uuid.Nil {
		updates["processed_by"] = processedBy
	}

	result := r.db.WithContext(ctx).
		Model(&models.PayrollRecordModel{}).
		Where("id = ? AND employee_id = ? AND status <> ?", id, employeeID, string(reconciliation.PayrollStatusPaid)).
		Updates(updates)
	if result.Error != nil {
		return nil, shared.NewPersistenceError("mark payroll record paid", result.Error)
	}

	var model models.PayrollRecordModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND employee_id = ?", id, employeeID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("payroll record", id)
		}
		return nil, shared.NewPersistenceError("load payroll record", err)
	}
	rec := model.ToDomain()
	if result.RowsAffected == 0 {
		if err := rec.CheckSettlement(); err != nil {
			return nil, err
		}
		return nil, shared.NewConflictError(shared.CodeInvalidState,
			"payroll record %s was not settled", id)
	}
	return rec, nil
}

// Ensure GormPayrollRecordRepository implements the interface
var _ reconciliation.PayrollRecordRepository = (*GormPayrollRecordRepository)(nil)
