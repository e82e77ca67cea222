package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// GormCarrierAccountRepository implements CarrierAccountRepository using GORM
type GormCarrierAccountRepository struct {
	db *gorm.DB
}

// NewGormCarrierAccountRepository creates a new GormCarrierAccountRepository
func NewGormCarrierAccountRepository(db *gorm.DB) *GormCarrierAccountRepository {
	return &GormCarrierAccountRepository{db: db}
}

// FindByID finds a carrier account by its ID
func (r *GormCarrierAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.CarrierAccount, error) {
	var account shipping.CarrierAccount
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindAllForTenant lists carrier accounts for a tenant
func (r *GormCarrierAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.CarrierAccount, error) {
	var accounts []shipping.CarrierAccount
	query := r.db.WithContext(ctx).
		Model(&shipping.CarrierAccount{}).
		Where("tenant_id = ?", tenantID)

	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if provider, ok := filter.Filters["provider"]; ok {
		query = query.Where("provider = ?", provider)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, CarrierAccountSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	if err := query.Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save creates or updates a carrier account
func (r *GormCarrierAccountRepository) Save(ctx context.Context, account *shipping.CarrierAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// UpdateToken persists the cached bearer token and its expiry as one write
func (r *GormCarrierAccountRepository) UpdateToken(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&shipping.CarrierAccount{}).
		Where("id = ?", accountID).
		Updates(map[string]interface{}{
			"api_token":        token,
			"token_expires_at": expiresAt,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCarrierAccountRepository implements CarrierAccountRepository
var _ shipping.CarrierAccountRepository = (*GormCarrierAccountRepository)(nil)
