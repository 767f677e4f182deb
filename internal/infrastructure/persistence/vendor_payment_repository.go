package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVendorPaymentRepository implements reconciliation.VendorPaymentRepository using GORM
type GormVendorPaymentRepository struct {
	db *gorm.DB
}

// NewGormVendorPaymentRepository creates a new GormVendorPaymentRepository
func NewGormVendorPaymentRepository(db *gorm.DB) *GormVendorPaymentRepository {
	return &GormVendorPaymentRepository{db: db}
}

// Create appends a vendor payment record
func (r *GormVendorPaymentRepository) Create(ctx context.Context, record *reconciliation.VendorPaymentRecord) error {
	if err := r.db.WithContext(ctx).Create(models.VendorPaymentRecordModelFromDomain(record)).Error; err != nil {
		return shared.NewPersistenceError("create vendor payment record", err)
	}
	return nil
}

// FindByBillID returns the payments recorded against a bill, oldest first
func (r *GormVendorPaymentRepository) FindByBillID(ctx context.Context, billID uuid.UUID) ([]reconciliation.VendorPaymentRecord, error) {
	var rows []models.VendorPaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("vendor_bill_id = ?", billID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list vendor payment records", err)
	}

	records := make([]reconciliation.VendorPaymentRecord, len(rows))
	for i := range rows {
		records[i] = *rows[i].ToDomain()
	}
	return records, nil
}

// Ensure GormVendorPaymentRepository implements the interface
var _ reconciliation.VendorPaymentRepository = (*GormVendorPaymentRepository)(nil)
