package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormVendorBillRepository implements reconciliation.VendorBillRepository using GORM
type GormVendorBillRepository struct {
	db *gorm.DB
}

// NewGormVendorBillRepository creates a new GormVendorBillRepository
func NewGormVendorBillRepository(db *gorm.DB) *GormVendorBillRepository {
	return &GormVendorBillRepository{db: db}
}

// FindByID finds a vendor bill by its ID
func (r *GormVendorBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.VendorBill, error) {
	var model models.VendorBillModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("vendor bill", id)
		}
		return nil, shared.NewPersistenceError("load vendor bill", err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a vendor bill
func (r *GormVendorBillRepository) Save(ctx context.Context, bill *reconciliation.VendorBill) error {
	if err := r.db.WithContext(ctx).Save(models.VendorBillModelFromDomain(bill)).Error; err != nil {
		return shared.NewPersistenceError("save vendor bill", err)
	}
	return nil
}

// ApplyPayment increments paid_amount and re-derives status in a single
// statement. The WHERE clause carries the outstanding-balance guard, so
// concurrent payments serialize on the row and can never overpay the bill.
// SET expressions read the pre-update row in both PostgreSQL and SQLite.
//
// The status CASE mirrors reconciliation.DeriveBillStatus; the stored row is
// checked against it after every update.
func (r *GormVendorBillRepository) ApplyPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*reconciliation.VendorBill, error) {
	if err := reconciliation.ValidatePaymentAmount(amount); err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Model(&models.VendorBillModel{}).
		Where("id = ? AND paid_amount + ? <= total_amount", id, amount).
		Updates(map[string]any{
			"paid_amount": gorm.Expr("paid_amount + ?", amount),
			"status": gorm.Expr(
				"CASE WHEN paid_amount + ? <= 0 THEN ? WHEN paid_amount + ? < total_amount THEN ? ELSE ? END",
				amount, string(reconciliation.BillStatusPending),
				amount, string(reconciliation.BillStatusPartial),
				string(reconciliation.BillStatusPaid),
			),
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, shared.NewPersistenceError("apply vendor bill payment", result.Error)
	}

	bill, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.RowsAffected == 0 {
		if err := bill.ValidatePayment(amount); err != nil {
			return nil, err
		}
		// paid_amount only grows, so a rejected payment stays rejected on reload
		return nil, shared.NewConflictError(shared.CodeExceedsOutstanding,
			"payment %s exceeds outstanding amount on bill %s", amount.StringFixed(2), id)
	}
	if err := bill.CheckStatus(); err != nil {
		return nil, err
	}
	return bill, nil
}

// Ensure GormVendorBillRepository implements the interface
var _ reconciliation.VendorBillRepository = (*GormVendorBillRepository)(nil)
