package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shared"
)

// ShipmentStatus represents the canonical, carrier-agnostic lifecycle state
// of a shipment
type ShipmentStatus string

const (
	ShipmentStatusCreated         ShipmentStatus = "CREATED"
	ShipmentStatusPickupScheduled ShipmentStatus = "PICKUP_SCHEDULED"
	ShipmentStatusPickedUp        ShipmentStatus = "PICKED_UP"
	ShipmentStatusInTransit       ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusOutForDelivery  ShipmentStatus = "OUT_FOR_DELIVERY"
	ShipmentStatusDelivered       ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled       ShipmentStatus = "CANCELLED"
	ShipmentStatusRTOInitiated    ShipmentStatus = "RTO_INITIATED"
	ShipmentStatusRTODelivered    ShipmentStatus = "RTO_DELIVERED"
	ShipmentStatusLost            ShipmentStatus = "LOST"
)

// IsValid checks if the status is a valid ShipmentStatus
func (s ShipmentStatus) IsValid() bool {
	switch s {
	case ShipmentStatusCreated, ShipmentStatusPickupScheduled, ShipmentStatusPickedUp,
		ShipmentStatusInTransit, ShipmentStatusOutForDelivery, ShipmentStatusDelivered,
		ShipmentStatusCancelled, ShipmentStatusRTOInitiated, ShipmentStatusRTODelivered,
		ShipmentStatusLost:
		return true
	}
	return false
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status permits no further carrier activity.
// Terminal shipments cannot be cancelled.
func (s ShipmentStatus) IsTerminal() bool {
	switch s {
	case ShipmentStatusDelivered, ShipmentStatusRTODelivered, ShipmentStatusLost:
		return true
	}
	return false
}

// NDRStatus is the orthogonal non-delivery-report sub-state of a shipment
type NDRStatus string

const (
	NDRStatusNone           NDRStatus = "NONE"
	NDRStatusActionRequired NDRStatus = "ACTION_REQUIRED"
)

// Shipment is the aggregate root of the shipping core. It is created in the
// same transaction as the order's transition to PROCESSING, mutated by the
// orchestrator (AWB, label, pickup) and the tracking reconciler (status,
// timestamps, NDR fields), and never hard-deleted: cancellation is a terminal
// status, not a row removal.
type Shipment struct {
	shared.TenantAggregateRoot
	ShipmentNumber   string
	OrderID          uuid.UUID // 1:1, immutable after creation
	CarrierAccountID *uuid.UUID
	CarrierOrderID   string  // carrier-assigned order id
	CarrierShipmentID string // carrier-assigned shipment id, when distinct
	AWBNumber        *string `gorm:"uniqueIndex"`
	CourierCompanyID *int
	CarrierName      string

	// Package snapshot copied from the order at creation time, immutable
	WeightGrams int
	LengthCm    int
	BreadthCm   int
	HeightCm    int

	// COD; nil amount means prepaid
	CODAmount    *decimal.Decimal
	CODCollected bool

	Status       ShipmentStatus
	CurrentEvent string

	NDRStatus   NDRStatus
	NDRReason   string
	NDRAttempts int

	LabelURL string

	// Lifecycle timestamps, each set at most once (first write wins)
	PickedUpAt       *time.Time
	InTransitAt      *time.Time
	OutForDeliveryAt *time.Time
	DeliveredAt      *time.Time

	TrackingEvents []ShipmentTracking `gorm:"foreignKey:ShipmentID"`
}

// NewShipment creates a shipment for an order that has already been accepted
// by the carrier
func NewShipment(tenantID uuid.UUID, shipmentNumber string, orderID uuid.UUID, carrierAccountID uuid.UUID, carrierOrderID, carrierShipmentID string) (*Shipment, error) {
	if shipmentNumber == "" {
		return nil, shared.NewDomainError("INVALID_SHIPMENT_NUMBER", "Shipment number cannot be empty")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}

	accountID := carrierAccountID
	return &Shipment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ShipmentNumber:      shipmentNumber,
		OrderID:             orderID,
		CarrierAccountID:    &accountID,
		CarrierOrderID:      carrierOrderID,
		CarrierShipmentID:   carrierShipmentID,
		Status:              ShipmentStatusCreated,
		NDRStatus:           NDRStatusNone,
	}, nil
}

// SetPackage snapshots package dimensions and weight from the order
func (s *Shipment) SetPackage(weightGrams, lengthCm, breadthCm, heightCm int) {
	s.WeightGrams = weightGrams
	s.LengthCm = lengthCm
	s.BreadthCm = breadthCm
	s.HeightCm = heightCm
}

// SetCOD records the cash-on-delivery amount; nil means prepaid
func (s *Shipment) SetCOD(amount *decimal.Decimal) {
	s.CODAmount = amount
}

// AssignAWB stores the carrier-issued tracking number. A non-nil AWB is
// never reassigned; a second attempt fails rather than overwriting.
func (s *Shipment) AssignAWB(awbNumber string, courierCompanyID *int, courierName string) error {
	if s.AWBNumber != nil {
		return ErrAWBAlreadyAssigned
	}
	if awbNumber == "" {
		return shared.NewDomainError("INVALID_AWB", "AWB number cannot be empty")
	}
	s.AWBNumber = &awbNumber
	s.CourierCompanyID = courierCompanyID
	if courierName != "" {
		s.CarrierName = courierName
	}
	s.UpdatedAt = time.Now()
	return nil
}

// HasAWB reports whether a tracking number has been assigned
func (s *Shipment) HasAWB() bool {
	return s.AWBNumber != nil && *s.AWBNumber != ""
}

// SetLabelURL records the generated shipping label location
func (s *Shipment) SetLabelURL(url string) {
	s.LabelURL = url
	s.UpdatedAt = time.Now()
}

// MarkPickupScheduled moves the shipment into PICKUP_SCHEDULED
func (s *Shipment) MarkPickupScheduled() {
	s.Status = ShipmentStatusPickupScheduled
	s.UpdatedAt = time.Now()
}

// ApplyStatus applies a mapped canonical status from a tracking update and
// sets the matching lifecycle timestamp if it is not already set. Repeated
// application of the same status is idempotent: the first captured time wins.
func (s *Shipment) ApplyStatus(status ShipmentStatus, currentEvent string, at time.Time) {
	s.Status = status
	if currentEvent != "" {
		s.CurrentEvent = currentEvent
	}

	switch status {
	case ShipmentStatusPickedUp:
		if s.PickedUpAt == nil {
			s.PickedUpAt = &at
		}
	case ShipmentStatusInTransit:
		if s.InTransitAt == nil {
			s.InTransitAt = &at
		}
	case ShipmentStatusOutForDelivery:
		if s.OutForDeliveryAt == nil {
			s.OutForDeliveryAt = &at
		}
	case ShipmentStatusDelivered:
		if s.DeliveredAt == nil {
			s.DeliveredAt = &at
		}
	}
	s.UpdatedAt = time.Now()
}

// FlagNDR marks the shipment as requiring merchant action after a failed
// delivery attempt. The attempt counter is monotonic and never reset here.
func (s *Shipment) FlagNDR(reason string) {
	s.NDRStatus = NDRStatusActionRequired
	if reason != "" {
		s.NDRReason = reason
	}
	s.NDRAttempts++
	s.UpdatedAt = time.Now()
}

// ClearNDR resets the NDR flag after a successful reattempt or RTO decision.
// The attempt counter is preserved.
func (s *Shipment) ClearNDR() {
	s.NDRStatus = NDRStatusNone
	s.NDRReason = ""
	s.UpdatedAt = time.Now()
}

// Cancel marks the shipment CANCELLED. Shipments in a terminal status cannot
// be cancelled.
func (s *Shipment) Cancel() error {
	if s.Status.IsTerminal() {
		return ErrShipmentTerminal
	}
	s.Status = ShipmentStatusCancelled
	s.UpdatedAt = time.Now()
	return nil
}

// MarkCODCollected records that the carrier has collected the COD amount
func (s *Shipment) MarkCODCollected() error {
	if s.CODAmount == nil {
		return shared.NewDomainError("NOT_COD", "Shipment is not cash-on-delivery")
	}
	s.CODCollected = true
	s.UpdatedAt = time.Now()
	return nil
}

// ShipmentTracking is an append-only log entry belonging to one shipment.
// Rows are never updated; the (shipment, status, event timestamp) tuple is
// the idempotency key for pull-sync ingestion.
type ShipmentTracking struct {
	ID          uuid.UUID
	ShipmentID  uuid.UUID `gorm:"index"`
	Status      string
	StatusCode  string
	Description string
	Location    string
	City        string
	RawPayload  []byte `gorm:"type:jsonb"` // opaque upstream payload, stored for audit
	EventAt     time.Time
	CreatedAt   time.Time
}

// NewShipmentTracking creates a tracking event for a shipment
func NewShipmentTracking(shipmentID uuid.UUID, status, statusCode, description, location, city string, rawPayload []byte, eventAt time.Time) ShipmentTracking {
	return ShipmentTracking{
		ID:          uuid.New(),
		ShipmentID:  shipmentID,
		Status:      status,
		StatusCode:  statusCode,
		Description: description,
		Location:    location,
		City:        city,
		RawPayload:  rawPayload,
		EventAt:     eventAt,
		CreatedAt:   time.Now(),
	}
}
