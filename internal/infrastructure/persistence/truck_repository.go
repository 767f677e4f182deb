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

// GormTruckRepository implements reconciliation.TruckRepository using GORM
type GormTruckRepository struct {
	db *gorm.DB
}

// NewGormTruckRepository creates a new GormTruckRepository
func NewGormTruckRepository(db *gorm.DB) *GormTruckRepository {
	return &GormTruckRepository{db: db}
}

// FindByID finds a truck by its ID
func (r *GormTruckRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.Truck, error) {
	var model models.TruckModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("truck", id)
		}
		return nil, shared.NewPersistenceError("load truck", err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates a truck
func (r *GormTruckRepository) Save(ctx context.Context, truck *reconciliation.Truck) error {
	if err := r.db.WithContext(ctx).Save(models.TruckModelFromDomain(truck)).Error; err != nil {
		return shared.NewPersistenceError("save truck", err)
	}
	return nil
}

// AdvanceOdometer raises current_odometer to reading only when reading is
// strictly greater. It reports whether the row changed.
func (r *GormTruckRepository) AdvanceOdometer(ctx context.Context, id uuid.UUID, reading decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TruckModel{}).
		Where("id = ? AND current_odometer < ?", id, reading).
		Updates(map[string]any{
			"current_odometer": reading,
			"version":          gorm.Expr("version + 1"),
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return false, shared.NewPersistenceError("advance truck odometer", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// AdvanceMaintenanceDate moves last_maintenance_date forward to on, never back.
func (r *GormTruckRepository) AdvanceMaintenanceDate(ctx context.Context, id uuid.UUID, on time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.TruckModel{}).
		Where("id = ? AND (last_maintenance_date IS NULL OR last_maintenance_date < ?)", id, on).
		Updates(map[string]any{
			"last_maintenance_date": on,
			"version":               gorm.Expr("version + 1"),
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return false, shared.NewPersistenceError("advance truck maintenance date", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormTruckRepository implements the interface
var _ reconciliation.TruckRepository = (*GormTruckRepository)(nil)
