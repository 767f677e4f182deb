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

// GormExpenseRepository implements reconciliation.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("expense", id)
		}
		return nil, shared.NewPersistenceError("load expense", err)
	}
	return model.ToDomain(), nil
}

// Create inserts a new expense. The expense workflow owns expenses; this exists
// for seeding and tests.
func (r *GormExpenseRepository) Create(ctx context.Context, expense *reconciliation.Expense) error {
	if err := r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(expense)).Error; err != nil {
		return shared.NewPersistenceError("create expense", err)
	}
	return nil
}

// LinkEntity writes the back-link and the integration outcome in one
// conditional UPDATE. The statement only matches an unlinked row, so of two
// racing writers exactly one succeeds.
func (r *GormExpenseRepository) LinkEntity(ctx context.Context, expenseID uuid.UUID, link reconciliation.EntityLink) error {
	if !link.EntityType.IsValid() {
		return shared.NewValidationError("invalid entity type %q", link.EntityType)
	}
	if link.EntityID == uuid.Nil || link.ReferenceID == uuid.Nil {
		return shared.NewValidationError("entity id and reference id are required to link an expense")
	}

	var status any
	if link.Outcome.Status != "" {
		status = string(link.Outcome.Status)
	}
	result := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("id = ? AND entity_reference_id IS NULL", expenseID).
		Updates(map[string]any{
			"entity_type":            string(link.EntityType),
			"entity_id":              link.EntityID,
			"entity_reference_id":    link.ReferenceID,
			"integration_status":     status,
			"integration_error_code": link.Outcome.ErrorCode,
			"integration_error":      link.Outcome.Error,
			"integration_warnings":   models.EncodeWarnings(link.Outcome.Warnings),
			"version":                gorm.Expr("version + 1"),
			"updated_at":             time.Now(),
		})
	if result.Error != nil {
		return shared.NewPersistenceError("link expense", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("id = ?", expenseID).
		Count(&count).Error; err != nil {
		return shared.NewPersistenceError("load expense", err)
	}
	if count == 0 {
		return shared.NewNotFoundError("expense", expenseID)
	}
	return shared.NewConflictError(shared.CodeAlreadyIntegrated, "expense %s is already linked", expenseID)
}

// Ensure GormExpenseRepository implements the interface
var _ reconciliation.ExpenseRepository = (*GormExpenseRepository)(nil)
