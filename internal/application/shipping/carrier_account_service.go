package shipping

import (
	"context"

	"github.com/google/uuid"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

// CarrierAccountService manages tenant carrier account registrations
type CarrierAccountService struct {
	accounts shipping.CarrierAccountRepository
}

// NewCarrierAccountService creates a new CarrierAccountService
func NewCarrierAccountService(accounts shipping.CarrierAccountRepository) *CarrierAccountService {
	return &CarrierAccountService{accounts: accounts}
}

// Create registers a carrier account for a tenant
func (s *CarrierAccountService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCarrierAccountRequest) (*CarrierAccountResponse, error) {
	account, err := shipping.NewCarrierAccount(tenantID, req.Name, req.Provider, req.APIKey, req.APISecret)
	if err != nil {
		return nil, err
	}
	account.PickupLocationName = req.PickupLocationName

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	resp := ToCarrierAccountResponse(account)
	return &resp, nil
}

// Update modifies a carrier account. Changing credentials invalidates the
// cached token so the next carrier call re-authenticates.
func (s *CarrierAccountService) Update(ctx context.Context, tenantID, accountID uuid.UUID, req UpdateCarrierAccountRequest) (*CarrierAccountResponse, error) {
	account, err := s.findForTenant(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	credentialsChanged := false
	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Carrier account name cannot be empty")
		}
		account.Name = *req.Name
	}
	if req.APIKey != nil {
		account.APIKey = *req.APIKey
		credentialsChanged = true
	}
	if req.APISecret != nil {
		account.APISecret = *req.APISecret
		credentialsChanged = true
	}
	if req.PickupLocationName != nil {
		account.PickupLocationName = *req.PickupLocationName
	}
	if req.Active != nil {
		account.Active = *req.Active
	}
	if credentialsChanged {
		account.APIToken = ""
		account.TokenExpiresAt = nil
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	resp := ToCarrierAccountResponse(account)
	return &resp, nil
}

// GetByID retrieves a carrier account for a tenant
func (s *CarrierAccountService) GetByID(ctx context.Context, tenantID, accountID uuid.UUID) (*CarrierAccountResponse, error) {
	account, err := s.findForTenant(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}
	resp := ToCarrierAccountResponse(account)
	return &resp, nil
}

// List retrieves carrier accounts for a tenant
func (s *CarrierAccountService) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) (shared.Paginated[CarrierAccountResponse], error) {
	f := shared.DefaultFilter()
	if page > 0 {
		f.Page = page
	}
	if pageSize > 0 {
		f.PageSize = pageSize
	}

	accounts, err := s.accounts.FindAllForTenant(ctx, tenantID, f)
	if err != nil {
		return shared.Paginated[CarrierAccountResponse]{}, err
	}

	responses := make([]CarrierAccountResponse, 0, len(accounts))
	for i := range accounts {
		responses = append(responses, ToCarrierAccountResponse(&accounts[i]))
	}
	return shared.NewPaginated(responses, int64(len(responses)), f.Page, f.PageSize), nil
}

// findForTenant loads an account and enforces tenant ownership; the
// repository key is the bare account id because the context resolver also
// loads accounts without tenant scope.
func (s *CarrierAccountService) findForTenant(ctx context.Context, tenantID, accountID uuid.UUID) (*shipping.CarrierAccount, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.TenantID != tenantID {
		return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Carrier account not found")
	}
	return account, nil
}
