package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shared"
)

// Status represents the status of a sales order
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusConfirmed  Status = "CONFIRMED"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// FulfillmentStatus represents the fulfillment state of a sales order
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "UNFULFILLED"
	FulfillmentFulfilled   FulfillmentStatus = "FULFILLED"
)

// SalesOrderItem represents a line item in a sales order.
// Items are read-only from the shipping core's perspective; they are
// snapshotted into the carrier payload at shipment creation time.
type SalesOrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	HSNCode     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SalesOrder is the order record consumed by the shipping core. The core
// reads everything and writes exactly two fields: Status and
// FulfillmentStatus (via the repository's UpdateStatus).
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber       string
	CustomerName      string
	Status            Status
	FulfillmentStatus FulfillmentStatus

	// Billing contact; falls back to shipping fields when empty.
	BillingName    string
	BillingPhone   string
	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingPincode string

	// Shipping contact
	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingPincode string
	ShippingEmail   string

	// Payment
	Total     decimal.Decimal
	IsCOD     bool
	CODAmount *decimal.Decimal

	// Physical package attributes; zero means "use configured fallback"
	WeightGrams int
	LengthCm    int
	BreadthCm   int
	HeightCm    int

	Items []SalesOrderItem `gorm:"foreignKey:OrderID"`
}

// IsShippable reports whether a shipment may be created for this order
func (o *SalesOrder) IsShippable() bool {
	return o.Status == StatusConfirmed || o.Status == StatusProcessing
}

// BillingOrShippingName returns the billing name, falling back to shipping
func (o *SalesOrder) BillingOrShippingName() string {
	if o.BillingName != "" {
		return o.BillingName
	}
	return o.ShippingName
}

// BillingOrShippingPhone returns the billing phone, falling back to shipping
func (o *SalesOrder) BillingOrShippingPhone() string {
	if o.BillingPhone != "" {
		return o.BillingPhone
	}
	return o.ShippingPhone
}

// BillingOrShippingAddress returns the billing address, falling back to shipping
func (o *SalesOrder) BillingOrShippingAddress() string {
	if o.BillingAddress != "" {
		return o.BillingAddress
	}
	return o.ShippingAddress
}

// BillingOrShippingCity returns the billing city, falling back to shipping
func (o *SalesOrder) BillingOrShippingCity() string {
	if o.BillingCity != "" {
		return o.BillingCity
	}
	return o.ShippingCity
}

// BillingOrShippingState returns the billing state, falling back to shipping
func (o *SalesOrder) BillingOrShippingState() string {
	if o.BillingState != "" {
		return o.BillingState
	}
	return o.ShippingState
}

// BillingOrShippingPincode returns the billing pincode, falling back to shipping
func (o *SalesOrder) BillingOrShippingPincode() string {
	if o.BillingPincode != "" {
		return o.BillingPincode
	}
	return o.ShippingPincode
}

// EffectiveCODAmount returns the amount the carrier must collect on delivery.
// Nil for prepaid orders; defaults to the order total when no explicit COD
// amount was captured.
func (o *SalesOrder) EffectiveCODAmount() *decimal.Decimal {
	if !o.IsCOD {
		return nil
	}
	if o.CODAmount != nil {
		return o.CODAmount
	}
	total := o.Total
	return &total
}
