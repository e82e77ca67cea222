package shipping

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/erp/shipping/internal/domain/shared"
	"github.com/erp/shipping/internal/domain/shipping"
)

func newTestAccount(token string, expiresAt *time.Time) *shipping.CarrierAccount {
	return &shipping.CarrierAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
		Name:                "Main Shiprocket",
		Provider:            shipping.CarrierProviderShiprocket,
		APIKey:              "ops@example.com",
		APISecret:           "secret",
		APIToken:            token,
		TokenExpiresAt:      expiresAt,
		Active:              true,
	}
}

func TestCarrierContextResolver_CachedTokenReused(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	account := newTestAccount("cached-token", &expiry)

	accounts := new(MockCarrierAccountRepository)
	adapter := new(MockCarrierAdapter)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)

	resolver := NewCarrierContextResolver(accounts, &staticRegistry{adapter: adapter})
	cc, err := resolver.Resolve(context.Background(), account.ID)

	assert.NoError(t, err)
	assert.Equal(t, "cached-token", cc.Token)
	assert.Same(t, account, cc.Account)
	adapter.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCarrierContextResolver_ExpiredTokenRefreshed(t *testing.T) {
	expiry := time.Now().Add(-time.Minute)
	account := newTestAccount("stale-token", &expiry)
	newExpiry := time.Now().Add(10 * 24 * time.Hour)

	accounts := new(MockCarrierAccountRepository)
	adapter := new(MockCarrierAdapter)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	adapter.On("Authenticate", mock.Anything, "ops@example.com", "secret").
		Return(&shipping.AuthResult{Token: "fresh-token", ExpiresAt: newExpiry}, nil)
	accounts.On("UpdateToken", mock.Anything, account.ID, "fresh-token", newExpiry).Return(nil)

	resolver := NewCarrierContextResolver(accounts, &staticRegistry{adapter: adapter})
	cc, err := resolver.Resolve(context.Background(), account.ID)

	assert.NoError(t, err)
	assert.Equal(t, "fresh-token", cc.Token)
	assert.Equal(t, "fresh-token", account.APIToken)
	accounts.AssertExpectations(t)
}

func TestCarrierContextResolver_MissingTokenRefreshed(t *testing.T) {
	account := newTestAccount("", nil)
	newExpiry := time.Now().Add(time.Hour)

	accounts := new(MockCarrierAccountRepository)
	adapter := new(MockCarrierAdapter)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	adapter.On("Authenticate", mock.Anything, mock.Anything, mock.Anything).
		Return(&shipping.AuthResult{Token: "first-token", ExpiresAt: newExpiry}, nil)
	accounts.On("UpdateToken", mock.Anything, account.ID, "first-token", newExpiry).Return(nil)

	resolver := NewCarrierContextResolver(accounts, &staticRegistry{adapter: adapter})
	cc, err := resolver.Resolve(context.Background(), account.ID)

	assert.NoError(t, err)
	assert.Equal(t, "first-token", cc.Token)
}

func TestCarrierContextResolver_AuthFailureNotPersisted(t *testing.T) {
	account := newTestAccount("", nil)

	accounts := new(MockCarrierAccountRepository)
	adapter := new(MockCarrierAdapter)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	adapter.On("Authenticate", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shipping.ErrCarrierAuthFailed)

	resolver := NewCarrierContextResolver(accounts, &staticRegistry{adapter: adapter})
	cc, err := resolver.Resolve(context.Background(), account.ID)

	assert.Nil(t, cc)
	assert.ErrorIs(t, err, shipping.ErrCarrierAuthFailed)
	accounts.AssertNotCalled(t, "UpdateToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCarrierContextResolver_PersistFailureSurfaces(t *testing.T) {
	account := newTestAccount("", nil)

	accounts := new(MockCarrierAccountRepository)
	adapter := new(MockCarrierAdapter)
	accounts.On("FindByID", mock.Anything, account.ID).Return(account, nil)
	adapter.On("Authenticate", mock.Anything, mock.Anything, mock.Anything).
		Return(&shipping.AuthResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil)
	accounts.On("UpdateToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("db down"))

	resolver := NewCarrierContextResolver(accounts, &staticRegistry{adapter: adapter})
	_, err := resolver.Resolve(context.Background(), account.ID)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "persist carrier token")
}

// stubAccountRepo hands out an independent copy per load, the way a real
// repository does. Used where concurrent callers would otherwise share one
// struct.
type stubAccountRepo struct {
	mu       sync.Mutex
	template shipping.CarrierAccount
	updates  int32
}

func (r *stubAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*shipping.CarrierAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acct := r.template
	return &acct, nil
}

func (r *stubAccountRepo) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]shipping.CarrierAccount, error) {
	return nil, nil
}

func (r *stubAccountRepo) Save(ctx context.Context, account *shipping.CarrierAccount) error {
	return nil
}

func (r *stubAccountRepo) UpdateToken(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error {
	atomic.AddInt32(&r.updates, 1)
	return nil
}

// slowAuthAdapter counts authentication round trips
type slowAuthAdapter struct {
	shipping.CarrierAdapter
	calls int32
}

func (a *slowAuthAdapter) Authenticate(ctx context.Context, apiKey, apiSecret string) (*shipping.AuthResult, error) {
	atomic.AddInt32(&a.calls, 1)
	time.Sleep(30 * time.Millisecond)
	return &shipping.AuthResult{Token: "shared-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func TestCarrierContextResolver_ConcurrentRefreshCoalesced(t *testing.T) {
	repo := &stubAccountRepo{template: *newTestAccount("", nil)}
	adapter := &slowAuthAdapter{}

	resolver := NewCarrierContextResolver(repo, &staticRegistry{adapter: adapter})
	accountID := repo.template.ID

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cc, err := resolver.Resolve(context.Background(), accountID)
			assert.NoError(t, err)
			assert.Equal(t, "shared-token", cc.Token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&adapter.calls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.updates))
}
