package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shared"
)

// CODPendingSummary aggregates shipments awaiting COD remittance
type CODPendingSummary struct {
	Shipments    []Shipment
	TotalPending decimal.Decimal
	Count        int
}

// ShipmentRepository defines the persistence contract for shipments and
// their tracking events
type ShipmentRepository interface {
	// FindByID finds a shipment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)

	// FindByIDForTenant finds a shipment by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Shipment, error)

	// FindByIDWithEvents loads a shipment with tracking events, newest first
	FindByIDWithEvents(ctx context.Context, tenantID, id uuid.UUID) (*Shipment, error)

	// FindByAWB finds a shipment by its tracking number across tenants;
	// webhook payloads carry no tenant context
	FindByAWB(ctx context.Context, awbNumber string) (*Shipment, error)

	// FindByOrder finds the shipment linked to a sales order
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*Shipment, error)

	// FindAllForTenant lists shipments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Shipment, error)

	// CountForTenant counts shipments for a tenant with filtering
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindAWBPending lists non-terminal shipments that still lack an AWB,
	// so failed best-effort assignments stay discoverable and retryable
	FindAWBPending(ctx context.Context, tenantID uuid.UUID, limit int) ([]Shipment, error)

	// CreateWithOrderTransition atomically inserts the shipment, appends the
	// initial tracking event, and transitions the linked order to the given
	// status. Either all three happen or none do.
	CreateWithOrderTransition(ctx context.Context, shipment *Shipment, initial ShipmentTracking, orderStatus string) error

	// Save persists shipment field changes
	Save(ctx context.Context, shipment *Shipment) error

	// AssignAWB stores the AWB and courier fields, guarded so that a second
	// concurrent assignment observes "already assigned" instead of
	// overwriting. Returns ErrAWBAlreadyAssigned when the guard fires.
	AssignAWB(ctx context.Context, shipmentID uuid.UUID, awbNumber string, courierCompanyID *int, courierName string) error

	// TrackingEventExists checks the pull-sync idempotency key
	// (shipment, status, event timestamp)
	TrackingEventExists(ctx context.Context, shipmentID uuid.UUID, status string, eventAt time.Time) (bool, error)

	// TrackingEventExistsByCode checks the webhook best-effort dedupe key
	// (shipment, status code, event timestamp)
	TrackingEventExistsByCode(ctx context.Context, shipmentID uuid.UUID, statusCode string, eventAt time.Time) (bool, error)

	// AppendTrackingEvent appends one event to the append-only log
	AppendTrackingEvent(ctx context.Context, event ShipmentTracking) error

	// CODPending aggregates delivered, uncollected COD shipments
	CODPending(ctx context.Context, tenantID uuid.UUID) (*CODPendingSummary, error)

	// GenerateShipmentNumber generates a tenant-scoped shipment number
	GenerateShipmentNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// CarrierAccountRepository defines the persistence contract for carrier
// accounts
type CarrierAccountRepository interface {
	// FindByID finds a carrier account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CarrierAccount, error)

	// FindAllForTenant lists carrier accounts for a tenant
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CarrierAccount, error)

	// Save persists a carrier account
	Save(ctx context.Context, account *CarrierAccount) error

	// UpdateToken persists the cached token and its expiry as one write
	UpdateToken(ctx context.Context, accountID uuid.UUID, token string, expiresAt time.Time) error
}

// CODRemittanceItem is one shipment settled within a remittance batch
type CODRemittanceItem struct {
	ID           uuid.UUID
	RemittanceID uuid.UUID `gorm:"index"`
	ShipmentID   uuid.UUID
	AWBNumber    string
	Amount       decimal.Decimal
	CreatedAt    time.Time
}

// CODRemittance is a carrier payout batch of collected COD amounts. Batches
// originate with the carrier; this core only reads them.
type CODRemittance struct {
	shared.TenantAggregateRoot
	RemittanceNumber string
	CarrierName      string
	TotalAmount      decimal.Decimal
	UTRNumber        string // bank transfer reference
	RemittedAt       *time.Time
	Items            []CODRemittanceItem `gorm:"foreignKey:RemittanceID"`
}

// CODRemittanceRepository defines read access to remittance batches
type CODRemittanceRepository interface {
	// FindAllForTenant lists remittance batches with items, newest first
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]CODRemittance, error)

	// CountForTenant counts remittance batches for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error)
}
