package carrier

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shipping"
)

// NoopAdapter simulates carrier responses without network calls. It backs
// accounts with no configured provider, so development and staging
// environments exercise the full shipment flow against synthetic data.
type NoopAdapter struct{}

// NewNoopAdapter creates a new inert adapter
func NewNoopAdapter() *NoopAdapter {
	return &NoopAdapter{}
}

// Provider returns the carrier this adapter talks to
func (a *NoopAdapter) Provider() shipping.CarrierProvider {
	return shipping.CarrierProviderNone
}

// Authenticate issues a synthetic ten-day token
func (a *NoopAdapter) Authenticate(ctx context.Context, apiKey, apiSecret string) (*shipping.AuthResult, error) {
	return &shipping.AuthResult{
		Token:     fmt.Sprintf("noop_token_%d", time.Now().UnixMilli()),
		ExpiresAt: time.Now().Add(10 * 24 * time.Hour),
	}, nil
}

// CreateOrder always accepts the order
func (a *NoopAdapter) CreateOrder(ctx context.Context, params *shipping.CreateOrderParams, token string) (*shipping.CreateOrderResult, error) {
	now := time.Now().UnixMilli()
	return &shipping.CreateOrderResult{
		Success:        true,
		CarrierOrderID: fmt.Sprintf("NOOP-%d", now),
		ShipmentID:     fmt.Sprintf("NOOP-SHP-%d", now),
	}, nil
}

// AssignAWB hands out a random eleven-digit tracking number
func (a *NoopAdapter) AssignAWB(ctx context.Context, carrierShipmentID string, courierCompanyID *int, token string) (*shipping.AWBResult, error) {
	courierID := 1
	return &shipping.AWBResult{
		Success:          true,
		AWBNumber:        fmt.Sprintf("%d", 10000000000+rand.Int63n(90000000000)),
		CourierCompanyID: &courierID,
		CourierName:      "NoopExpress",
	}, nil
}

// GenerateLabel returns a placeholder label URL
func (a *NoopAdapter) GenerateLabel(ctx context.Context, carrierShipmentID string, token string) (*shipping.LabelResult, error) {
	return &shipping.LabelResult{
		Success:  true,
		LabelURL: "https://example.com/labels/" + carrierShipmentID + ".pdf",
	}, nil
}

// SchedulePickup confirms any requested date
func (a *NoopAdapter) SchedulePickup(ctx context.Context, carrierShipmentID, pickupDate string, token string) (*shipping.PickupResult, error) {
	return &shipping.PickupResult{
		Success:             true,
		PickupScheduledDate: pickupDate,
		PickupTokenNumber:   fmt.Sprintf("PK-%d", time.Now().UnixMilli()),
	}, nil
}

// GetTracking fabricates a three-scan in-transit history
func (a *NoopAdapter) GetTracking(ctx context.Context, awbNumber string, token string) (*shipping.TrackingResult, error) {
	now := time.Now()
	return &shipping.TrackingResult{
		Success:           true,
		CurrentStatus:     "In Transit",
		CurrentStatusCode: "17",
		Events: []shipping.TrackingEvent{
			{
				Status:      "Shipment Created",
				StatusCode:  "1",
				Description: "Shipment has been created",
				Location:    "Warehouse",
				City:        "Mumbai",
				Timestamp:   now.Add(-72 * time.Hour),
			},
			{
				Status:      "Picked Up",
				StatusCode:  "6",
				Description: "Shipment picked up by courier",
				Location:    "Hub",
				City:        "Mumbai",
				Timestamp:   now.Add(-48 * time.Hour),
			},
			{
				Status:      "In Transit",
				StatusCode:  "17",
				Description: "Shipment in transit to destination",
				Location:    "Transit Hub",
				City:        "Pune",
				Timestamp:   now,
			},
		},
	}, nil
}

// CheckServiceability reports every lane serviceable by two synthetic couriers
func (a *NoopAdapter) CheckServiceability(ctx context.Context, params *shipping.ServiceabilityParams, token string) (*shipping.ServiceabilityResult, error) {
	codCharge := decimal.Zero
	premiumCODCharge := decimal.Zero
	if params.IsCOD {
		codCharge = decimal.NewFromInt(30)
		premiumCODCharge = decimal.NewFromInt(40)
	}

	standard := decimal.NewFromInt(65)
	premium := decimal.NewFromInt(120)

	return &shipping.ServiceabilityResult{
		Success:     true,
		Serviceable: true,
		AvailableCouriers: []shipping.CourierOption{
			{
				CourierID:      1,
				CourierName:    "NoopExpress",
				EstimatedDays:  3,
				FreightCharge:  standard,
				CODCharges:     codCharge,
				TotalCharge:    standard.Add(codCharge),
				IsCODAvailable: true,
			},
			{
				CourierID:      2,
				CourierName:    "NoopPremium",
				EstimatedDays:  1,
				FreightCharge:  premium,
				CODCharges:     premiumCODCharge,
				TotalCharge:    premium.Add(premiumCODCharge),
				IsCODAvailable: true,
			},
		},
	}, nil
}

// HandleNDR acknowledges any instruction
func (a *NoopAdapter) HandleNDR(ctx context.Context, params *shipping.NDRActionParams, token string) (*shipping.NDRActionResult, error) {
	return &shipping.NDRActionResult{Success: true}, nil
}

// CancelShipment acknowledges any cancellation
func (a *NoopAdapter) CancelShipment(ctx context.Context, params *shipping.CancelParams, token string) (*shipping.CancelResult, error) {
	return &shipping.CancelResult{Success: true}, nil
}

// Ensure NoopAdapter implements CarrierAdapter interface
var _ shipping.CarrierAdapter = (*NoopAdapter)(nil)
