package shipping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/erp/shipping/internal/domain/shipping"
)

// AdapterRegistry resolves a carrier provider to its adapter. Resolution
// never fails; unknown providers get an inert adapter.
type AdapterRegistry interface {
	Resolve(provider shipping.CarrierProvider) shipping.CarrierAdapter
}

// CarrierContext bundles everything one carrier call needs: the account, its
// adapter, and a token that is valid at resolution time.
type CarrierContext struct {
	Account *shipping.CarrierAccount
	Adapter shipping.CarrierAdapter
	Token   string
}

// CarrierContextResolver loads carrier accounts and keeps their cached bearer
// tokens fresh. Concurrent callers hitting the same expired account share a
// single authentication round trip.
type CarrierContextResolver struct {
	accounts shipping.CarrierAccountRepository
	registry AdapterRegistry
	auth     singleflight.Group
	now      func() time.Time
}

// NewCarrierContextResolver creates a carrier context resolver
func NewCarrierContextResolver(accounts shipping.CarrierAccountRepository, registry AdapterRegistry) *CarrierContextResolver {
	return &CarrierContextResolver{
		accounts: accounts,
		registry: registry,
		now:      time.Now,
	}
}

// Resolve loads the carrier account and returns it with a usable token,
// re-authenticating against the carrier when the cached token is absent or
// expired. The refreshed token and its expiry are persisted together before
// the context is handed out.
func (r *CarrierContextResolver) Resolve(ctx context.Context, accountID uuid.UUID) (*CarrierContext, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load carrier account: %w", err)
	}

	adapter := r.registry.Resolve(account.Provider)
	if account.TokenValid(r.now()) {
		return &CarrierContext{Account: account, Adapter: adapter, Token: account.APIToken}, nil
	}

	token, err := r.refreshToken(ctx, account, adapter)
	if err != nil {
		return nil, err
	}
	return &CarrierContext{Account: account, Adapter: adapter, Token: token}, nil
}

func (r *CarrierContextResolver) refreshToken(ctx context.Context, account *shipping.CarrierAccount, adapter shipping.CarrierAdapter) (string, error) {
	v, err, _ := r.auth.Do(account.ID.String(), func() (interface{}, error) {
		auth, err := adapter.Authenticate(ctx, account.APIKey, account.APISecret)
		if err != nil {
			return nil, err
		}
		if err := r.accounts.UpdateToken(ctx, account.ID, auth.Token, auth.ExpiresAt); err != nil {
			return nil, fmt.Errorf("persist carrier token: %w", err)
		}
		account.UpdateToken(auth.Token, auth.ExpiresAt)
		return auth.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
