package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/shipping/internal/domain/order"
	"github.com/erp/shipping/internal/domain/shared"
)

// GormSalesOrderRepository implements the shipping core's narrow view of the
// order store: read the order with items, write back exactly the status pair
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByIDForTenant finds a sales order with its items for a tenant
func (r *GormSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*order.SalesOrder, error) {
	var ord order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&ord).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ord, nil
}

// UpdateStatus updates the order status and, when non-empty, the fulfillment
// status. No other order column is touched.
func (r *GormSalesOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status, fulfillment order.FulfillmentStatus) error {
	updates := map[string]interface{}{
		"status":     status.String(),
		"updated_at": time.Now(),
	}
	if fulfillment != "" {
		updates["fulfillment_status"] = string(fulfillment)
	}

	result := r.db.WithContext(ctx).
		Model(&order.SalesOrder{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ order.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
