package persistence

import (
	"context"

	"github.com/erp/reconciler/internal/domain/reconciliation"
	"github.com/erp/reconciler/internal/domain/shared"
	"github.com/erp/reconciler/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormVehicleLogRepository implements reconciliation.VehicleLogRepository using GORM
type GormVehicleLogRepository struct {
	db *gorm.DB
}

// NewGormVehicleLogRepository creates a new GormVehicleLogRepository
func NewGormVehicleLogRepository(db *gorm.DB) *GormVehicleLogRepository {
	return &GormVehicleLogRepository{db: db}
}

// CreateExpenseLog appends a fleet cost entry
func (r *GormVehicleLogRepository) CreateExpenseLog(ctx context.Context, entry *reconciliation.VehicleExpenseLog) error {
	if err := r.db.WithContext(ctx).Create(models.VehicleExpenseLogModelFromDomain(entry)).Error; err != nil {
		return shared.NewPersistenceError("create vehicle expense log", err)
	}
	return nil
}

// CreateMaintenanceLog appends a maintenance log entry
func (r *GormVehicleLogRepository) CreateMaintenanceLog(ctx context.Context, entry *reconciliation.VehicleMaintenanceLog) error {
	if err := r.db.WithContext(ctx).Create(models.VehicleMaintenanceLogModelFromDomain(entry)).Error; err != nil {
		return shared.NewPersistenceError("create vehicle maintenance log", err)
	}
	return nil
}

// FindExpenseLogsByTruck lists the cost entries of a truck, newest first
func (r *GormVehicleLogRepository) FindExpenseLogsByTruck(ctx context.Context, truckID uuid.UUID) ([]reconciliation.VehicleExpenseLog, error) {
	var rows []models.VehicleExpenseLogModel
	if err := r.db.WithContext(ctx).
		Where("truck_id = ?", truckID).
		Order("expense_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list vehicle expense logs", err)
	}

	logs := make([]reconciliation.VehicleExpenseLog, len(rows))
	for i := range rows {
		logs[i] = *rows[i].ToDomain()
	}
	return logs, nil
}

// Ensure GormVehicleLogRepository implements the interface
var _ reconciliation.VehicleLogRepository = (*GormVehicleLogRepository)(nil)
