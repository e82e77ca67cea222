package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/erp/shipping/internal/domain/order"
	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// GormShipmentRepository implements ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).First(&shipment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByIDForTenant finds a shipment by ID within a tenant
func (r *GormShipmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByIDWithEvents loads a shipment with its tracking events, newest first
func (r *GormShipmentRepository) FindByIDWithEvents(ctx context.Context, tenantID, id uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Preload("TrackingEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("event_at DESC")
		}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByAWB finds a shipment by its tracking number across tenants
func (r *GormShipmentRepository) FindByAWB(ctx context.Context, awbNumber string) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("awb_number = ?", awbNumber).
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindByOrder finds the shipment linked to a sales order
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*shipping.Shipment, error) {
	var shipment shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &shipment, nil
}

// FindAllForTenant finds all shipments for a tenant with filtering
func (r *GormShipmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&shipping.Shipment{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// CountForTenant counts shipments for a tenant with filtering
func (r *GormShipmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&shipping.Shipment{}).Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAWBPending lists non-terminal shipments still lacking an AWB.
// A uuid.Nil tenant scans all tenants; the background sweep uses that.
func (r *GormShipmentRepository) FindAWBPending(ctx context.Context, tenantID uuid.UUID, limit int) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	query := r.db.WithContext(ctx).
		Where("awb_number IS NULL").
		Where("status NOT IN ?", []string{
			shipping.ShipmentStatusCancelled.String(),
			shipping.ShipmentStatusDelivered.String(),
			shipping.ShipmentStatusRTODelivered.String(),
			shipping.ShipmentStatusLost.String(),
		}).
		Order("created_at ASC").
		Limit(limit)
	if tenantID != uuid.Nil {
		query = query.Where("tenant_id = ?", tenantID)
	}

	if err := query.Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// CreateWithOrderTransition atomically inserts the shipment, its initial
// tracking event, and the linked order's status transition
func (r *GormShipmentRepository) CreateWithOrderTransition(ctx context.Context, shipment *shipping.Shipment, initial shipping.ShipmentTracking, orderStatus string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(shipment).Error; err != nil {
			return err
		}

		initial.ShipmentID = shipment.ID
		if err := tx.Create(&initial).Error; err != nil {
			return err
		}

		result := tx.Model(&order.SalesOrder{}).
			Where("id = ?", shipment.OrderID).
			Updates(map[string]interface{}{
				"status":     orderStatus,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Save persists shipment field changes
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	return r.db.WithContext(ctx).Omit("TrackingEvents").Save(shipment).Error
}

// AssignAWB stores the AWB and courier fields behind an IS NULL guard, so a
// concurrent second assignment fails instead of overwriting
func (r *GormShipmentRepository) AssignAWB(ctx context.Context, shipmentID uuid.UUID, awbNumber string, courierCompanyID *int, courierName string) error {
	updates := map[string]interface{}{
		"awb_number":         awbNumber,
		"courier_company_id": courierCompanyID,
		"updated_at":         time.Now(),
	}
	if courierName != "" {
		updates["carrier_name"] = courierName
	}

	result := r.db.WithContext(ctx).
		Model(&shipping.Shipment{}).
		Where("id = ? AND awb_number IS NULL", shipmentID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&shipping.Shipment{}).
			Where("id = ?", shipmentID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return shipping.ErrAWBAlreadyAssigned
		}
		return shared.ErrNotFound
	}
	return nil
}

// TrackingEventExists checks the pull-sync idempotency key
func (r *GormShipmentRepository) TrackingEventExists(ctx context.Context, shipmentID uuid.UUID, status string, eventAt time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&shipping.ShipmentTracking{}).
		Where("shipment_id = ? AND status = ? AND event_at = ?", shipmentID, status, eventAt).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TrackingEventExistsByCode checks the webhook dedupe key
func (r *GormShipmentRepository) TrackingEventExistsByCode(ctx context.Context, shipmentID uuid.UUID, statusCode string, eventAt time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&shipping.ShipmentTracking{}).
		Where("shipment_id = ? AND status_code = ? AND event_at = ?", shipmentID, statusCode, eventAt).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AppendTrackingEvent appends one event to the append-only log
func (r *GormShipmentRepository) AppendTrackingEvent(ctx context.Context, event shipping.ShipmentTracking) error {
	return r.db.WithContext(ctx).Create(&event).Error
}

// CODPending aggregates delivered, uncollected COD shipments
func (r *GormShipmentRepository) CODPending(ctx context.Context, tenantID uuid.UUID) (*shipping.CODPendingSummary, error) {
	var shipments []shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ? AND cod_amount IS NOT NULL AND cod_collected = ?",
			tenantID, shipping.ShipmentStatusDelivered.String(), false).
		Order("delivered_at ASC").
		Find(&shipments).Error; err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range shipments {
		if shipments[i].CODAmount != nil {
			total = total.Add(*shipments[i].CODAmount)
		}
	}
	return &shipping.CODPendingSummary{
		Shipments:    shipments,
		TotalPending: total,
		Count:        len(shipments),
	}, nil
}

// ExistsByShipmentNumber checks if a shipment number exists for a tenant
func (r *GormShipmentRepository) ExistsByShipmentNumber(ctx context.Context, tenantID uuid.UUID, shipmentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&shipping.Shipment{}).
		Where("tenant_id = ? AND shipment_number = ?", tenantID, shipmentNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateShipmentNumber generates a unique shipment number for a tenant
// Format: SHP-YYYY-NNNNN (e.g., SHP-2026-00001)
func (r *GormShipmentRepository) GenerateShipmentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("SHP-%d-", year)

	var last shipping.Shipment
	err := r.db.WithContext(ctx).
		Model(&shipping.Shipment{}).
		Where("tenant_id = ? AND shipment_number LIKE ?", tenantID, prefix+"%").
		Order("shipment_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.ShipmentNumber != "" {
		parts := strings.Split(last.ShipmentNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	shipmentNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByShipmentNumber(ctx, tenantID, shipmentNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			shipmentNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByShipmentNumber(ctx, tenantID, shipmentNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return shipmentNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormShipmentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, ShipmentSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormShipmentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("shipment_number ILIKE ? OR awb_number ILIKE ? OR carrier_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "ndr_status":
			query = query.Where("ndr_status = ?", value)
		case "order_id":
			query = query.Where("order_id = ?", value)
		case "carrier_account_id":
			query = query.Where("carrier_account_id = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormShipmentRepository implements ShipmentRepository
var _ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)
