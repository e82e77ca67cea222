package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Carrier Errors
// ---------------------------------------------------------------------------

var (
	// ErrCarrierAuthFailed indicates the carrier rejected the credentials
	ErrCarrierAuthFailed = errors.New("carrier: authentication failed")
	// ErrCarrierUnavailable indicates the carrier API could not be reached
	ErrCarrierUnavailable = errors.New("carrier: temporarily unavailable")
	// ErrCarrierRequestFailed indicates the carrier returned a non-success HTTP status
	ErrCarrierRequestFailed = errors.New("carrier: request failed")
	// ErrCarrierInvalidResponse indicates the carrier response could not be parsed
	ErrCarrierInvalidResponse = errors.New("carrier: invalid response")

	// ErrAWBAlreadyAssigned indicates an attempt to overwrite an assigned AWB
	ErrAWBAlreadyAssigned = errors.New("shipment: AWB already assigned")
	// ErrShipmentTerminal indicates an operation on a completed shipment
	ErrShipmentTerminal = errors.New("shipment: already in a terminal state")
	// ErrNoCarrierAccount indicates the shipment has no linked carrier account
	ErrNoCarrierAccount = errors.New("shipment: no carrier account linked")
	// ErrNoAWB indicates a tracking operation on a shipment without an AWB
	ErrNoAWB = errors.New("shipment: no AWB assigned")
	// ErrOrderNotShippable indicates the order is not in a shippable status
	ErrOrderNotShippable = errors.New("shipment: order must be confirmed before shipping")
)

// ---------------------------------------------------------------------------
// Canonical request/response shapes
// ---------------------------------------------------------------------------

// ShipmentItem is a line item in the canonical carrier order payload
type ShipmentItem struct {
	Name         string
	SKU          string
	Units        int
	SellingPrice decimal.Decimal
	HSNCode      string
}

// CreateOrderParams is the canonical order payload pushed to a carrier
type CreateOrderParams struct {
	OrderNumber string
	OrderDate   string // YYYY-MM-DD

	BillingName    string
	BillingPhone   string
	BillingAddress string
	BillingCity    string
	BillingState   string
	BillingPincode string
	BillingCountry string
	BillingEmail   string

	ShippingName    string
	ShippingPhone   string
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingPincode string
	ShippingCountry string

	PaymentMethod string // "COD" or "Prepaid"
	SubTotal      decimal.Decimal
	CODAmount     *decimal.Decimal // present only for COD

	WeightGrams int
	LengthCm    int
	BreadthCm   int
	HeightCm    int

	PickupLocationID string
	Items            []ShipmentItem
}

// AuthResult is the outcome of a carrier authentication call
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
}

// CreateOrderResult is the carrier's answer to an order push. Expected
// business-validation failures come back as Success=false with the carrier's
// error text, not as a Go error.
type CreateOrderResult struct {
	Success        bool
	Error          string
	CarrierOrderID string
	ShipmentID     string
}

// AWBResult is the outcome of a tracking-number assignment
type AWBResult struct {
	Success          bool
	Error            string
	AWBNumber        string
	CourierCompanyID *int
	CourierName      string
}

// LabelResult is the outcome of label generation
type LabelResult struct {
	Success  bool
	Error    string
	LabelURL string
}

// PickupResult is the outcome of pickup scheduling
type PickupResult struct {
	Success             bool
	Error               string
	PickupScheduledDate string
	PickupTokenNumber   string
}

// TrackingEvent is one scan reported by the carrier
type TrackingEvent struct {
	Status      string
	StatusCode  string
	Description string
	Location    string
	City        string
	Timestamp   time.Time
	RawPayload  []byte
}

// TrackingResult is the carrier's full tracking history for an AWB
type TrackingResult struct {
	Success           bool
	Error             string
	CurrentStatus     string
	CurrentStatusCode string
	Events            []TrackingEvent
}

// ServiceabilityParams describes a lane to check
type ServiceabilityParams struct {
	PickupPincode   string
	DeliveryPincode string
	WeightGrams     int
	IsCOD           bool
}

// CourierOption is one courier available on a serviceable lane
type CourierOption struct {
	CourierID      int
	CourierName    string
	EstimatedDays  int
	FreightCharge  decimal.Decimal
	CODCharges     decimal.Decimal
	TotalCharge    decimal.Decimal
	IsCODAvailable bool
}

// ServiceabilityResult is the outcome of a serviceability check
type ServiceabilityResult struct {
	Success           bool
	Error             string
	Serviceable       bool
	AvailableCouriers []CourierOption
}

// NDRAction is the merchant's decision on a non-delivery report
type NDRAction string

const (
	// NDRActionReattempt asks the carrier to retry delivery
	NDRActionReattempt NDRAction = "reattempt"
	// NDRActionRTO asks the carrier to return the shipment to origin
	NDRActionRTO NDRAction = "rto"
)

// NDRActionParams describes an NDR instruction to the carrier
type NDRActionParams struct {
	AWBNumber        string
	Action           NDRAction
	ReattemptDate    string
	ReattemptAddress string
	Comments         string
}

// NDRActionResult is the outcome of an NDR instruction
type NDRActionResult struct {
	Success bool
	Error   string
}

// CancelParams carries both identifiers a cancellation may key on. Aggregators
// cancel by their order id; carriers that manifest directly cancel by waybill.
type CancelParams struct {
	CarrierOrderID string
	AWBNumber      string
}

// CancelResult is the outcome of a carrier-side cancellation
type CancelResult struct {
	Success bool
	Error   string
}

// ---------------------------------------------------------------------------
// CarrierAdapter
// ---------------------------------------------------------------------------

// CarrierAdapter is the uniform capability contract implemented per carrier
// provider. Adapters are stateless translators: the bearer token is passed
// explicitly on every call so the context resolver remains the single owner
// of token lifecycle.
type CarrierAdapter interface {
	// Provider returns the carrier this adapter talks to
	Provider() CarrierProvider

	// Authenticate exchanges credentials for a bearer token
	Authenticate(ctx context.Context, apiKey, apiSecret string) (*AuthResult, error)

	// CreateOrder pushes the canonical order payload to the carrier
	CreateOrder(ctx context.Context, params *CreateOrderParams, token string) (*CreateOrderResult, error)

	// AssignAWB requests a tracking number for a carrier order or shipment id
	AssignAWB(ctx context.Context, carrierShipmentID string, courierCompanyID *int, token string) (*AWBResult, error)

	// GenerateLabel produces a shipping label for a carrier shipment id
	GenerateLabel(ctx context.Context, carrierShipmentID string, token string) (*LabelResult, error)

	// SchedulePickup books a pickup for the given date (YYYY-MM-DD)
	SchedulePickup(ctx context.Context, carrierShipmentID, pickupDate string, token string) (*PickupResult, error)

	// GetTracking fetches the full tracking history for an AWB
	GetTracking(ctx context.Context, awbNumber string, token string) (*TrackingResult, error)

	// CheckServiceability checks whether a lane is serviceable
	CheckServiceability(ctx context.Context, params *ServiceabilityParams, token string) (*ServiceabilityResult, error)

	// HandleNDR instructs the carrier on a non-delivery report
	HandleNDR(ctx context.Context, params *NDRActionParams, token string) (*NDRActionResult, error)

	// CancelShipment cancels the carrier-side order or waybill
	CancelShipment(ctx context.Context, params *CancelParams, token string) (*CancelResult, error)
}
