package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// GormCODRemittanceRepository implements CODRemittanceRepository using GORM.
// Remittance batches originate with the carrier; locally they are read-only.
type GormCODRemittanceRepository struct {
	db *gorm.DB
}

// NewGormCODRemittanceRepository creates a new GormCODRemittanceRepository
func NewGormCODRemittanceRepository(db *gorm.DB) *GormCODRemittanceRepository {
	return &GormCODRemittanceRepository{db: db}
}

// FindAllForTenant lists remittance batches with items, newest first
func (r *GormCODRemittanceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.CODRemittance, error) {
	var batches []shipping.CODRemittance
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ?", tenantID).
		Order("remitted_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// CountForTenant counts remittance batches for a tenant
func (r *GormCODRemittanceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&shipping.CODRemittance{}).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCODRemittanceRepository implements CODRemittanceRepository
var _ shipping.CODRemittanceRepository = (*GormCODRemittanceRepository)(nil)
