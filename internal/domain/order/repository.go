package order

import (
	"context"

	"github.com/google/uuid"
)

// SalesOrderRepository defines the read-mostly persistence contract the
// shipping core has on the order record. UpdateStatus is the only write path
// and touches exactly the status and fulfillment_status columns.
type SalesOrderRepository interface {
	// FindByIDForTenant finds a sales order with its items for a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)

	// UpdateStatus updates the order status and, when non-empty, the
	// fulfillment status. No other order field is ever written.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, fulfillment FulfillmentStatus) error
}
