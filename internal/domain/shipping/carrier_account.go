package shipping

import (
	"time"

	"github.com/google/uuid"

	"github.com/erp/shipping/internal/domain/shared"
)

// CarrierProvider identifies a supported logistics carrier
type CarrierProvider string

const (
	// CarrierProviderShiprocket is the Shiprocket aggregator
	CarrierProviderShiprocket CarrierProvider = "SHIPROCKET"
	// CarrierProviderDelhivery is the Delhivery express network
	CarrierProviderDelhivery CarrierProvider = "DELHIVERY"
	// CarrierProviderNone is the inert development/unconfigured provider
	CarrierProviderNone CarrierProvider = "NONE"
)

// IsValid returns true if the provider is known
func (p CarrierProvider) IsValid() bool {
	switch p {
	case CarrierProviderShiprocket, CarrierProviderDelhivery, CarrierProviderNone:
		return true
	}
	return false
}

// String returns the string representation of CarrierProvider
func (p CarrierProvider) String() string {
	return string(p)
}

// CarrierAccount is one tenant-provider pairing with its API credentials and
// cached bearer token. The token and its expiry are always written together:
// the pair is either absent/expired or valid for future use, never half set.
type CarrierAccount struct {
	shared.TenantAggregateRoot
	Name               string
	Provider           CarrierProvider
	APIKey             string
	APISecret          string
	APIToken           string
	TokenExpiresAt     *time.Time
	PickupLocationName string
	Active             bool
}

// NewCarrierAccount creates a carrier account for a tenant
func NewCarrierAccount(tenantID uuid.UUID, name string, provider CarrierProvider, apiKey, apiSecret string) (*CarrierAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Carrier account name cannot be empty")
	}
	if !provider.IsValid() {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Unknown carrier provider")
	}
	return &CarrierAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Provider:            provider,
		APIKey:              apiKey,
		APISecret:           apiSecret,
		Active:              true,
	}, nil
}

// TokenValid reports whether the cached token can still be used
func (a *CarrierAccount) TokenValid(now time.Time) bool {
	if a.APIToken == "" {
		return false
	}
	if a.TokenExpiresAt != nil && a.TokenExpiresAt.Before(now) {
		return false
	}
	return true
}

// UpdateToken replaces the cached token and expiry as one unit
func (a *CarrierAccount) UpdateToken(token string, expiresAt time.Time) {
	a.APIToken = token
	a.TokenExpiresAt = &expiresAt
	a.UpdatedAt = time.Now()
}
