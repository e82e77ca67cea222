package carrier

import (
	"sync"

	"github.com/erp/shipping/internal/domain/shipping"
)

// Registry resolves a carrier provider to its adapter. Unknown or
// unconfigured providers fall back to the inert adapter rather than failing,
// so a misconfigured account degrades to synthetic behavior instead of
// blocking the shipment flow.
type Registry struct {
	mu       sync.RWMutex
	adapters map[shipping.CarrierProvider]shipping.CarrierAdapter
	fallback shipping.CarrierAdapter
}

// NewRegistry creates a registry with the inert adapter as fallback
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[shipping.CarrierProvider]shipping.CarrierAdapter),
		fallback: NewNoopAdapter(),
	}
}

// Register adds an adapter under its own provider code
func (r *Registry) Register(adapter shipping.CarrierAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Provider()] = adapter
}

// Resolve returns the adapter for a provider, or the fallback when none is
// registered
func (r *Registry) Resolve(provider shipping.CarrierProvider) shipping.CarrierAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if adapter, ok := r.adapters[provider]; ok {
		return adapter
	}
	return r.fallback
}
