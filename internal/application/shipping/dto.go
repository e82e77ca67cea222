package shipping

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shipping"
)

// ==================== Shipment DTOs ====================

// CreateShipmentRequest represents a request to create a shipment for an order
type CreateShipmentRequest struct {
	OrderID          uuid.UUID `json:"order_id" binding:"required"`
	CarrierAccountID uuid.UUID `json:"carrier_account_id" binding:"required"`
	// PickupLocation overrides the account's registered pickup location
	PickupLocation string `json:"pickup_location"`
}

// AssignAWBRequest represents a request to assign a tracking number
type AssignAWBRequest struct {
	// CourierCompanyID pins a specific courier; nil lets the carrier choose
	CourierCompanyID *int `json:"courier_company_id"`
}

// SchedulePickupRequest represents a request to book a pickup
type SchedulePickupRequest struct {
	PickupDate string `json:"pickup_date" binding:"required"` // YYYY-MM-DD
}

// NDRActionRequest represents the merchant's decision on a non-delivery report
type NDRActionRequest struct {
	Action           shipping.NDRAction `json:"action" binding:"required,oneof=reattempt rto"`
	ReattemptDate    string             `json:"reattempt_date"`
	ReattemptAddress string             `json:"reattempt_address"`
	Comments         string             `json:"comments"`
}

// ServiceabilityRequest represents a lane serviceability check
type ServiceabilityRequest struct {
	CarrierAccountID uuid.UUID `json:"carrier_account_id" form:"carrier_account_id" binding:"required"`
	PickupPincode    string    `json:"pickup_pincode" form:"pickup_pincode" binding:"required"`
	DeliveryPincode  string    `json:"delivery_pincode" form:"delivery_pincode" binding:"required"`
	WeightGrams      int       `json:"weight_grams" form:"weight_grams"`
	IsCOD            bool      `json:"is_cod" form:"is_cod"`
}

// ShipmentListFilter represents filter options for shipment list
type ShipmentListFilter struct {
	Search   string  `form:"search"`
	Status   *string `form:"status"`
	NDROnly  bool    `form:"ndr_only"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string  `form:"order_by"`
	OrderDir string  `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TrackingEventResponse represents one tracking event
type TrackingEventResponse struct {
	Status      string    `json:"status"`
	StatusCode  string    `json:"status_code"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	EventAt     time.Time `json:"event_at"`
}

// ShipmentResponse represents a shipment in API responses
type ShipmentResponse struct {
	ID                uuid.UUID        `json:"id"`
	ShipmentNumber    string           `json:"shipment_number"`
	OrderID           uuid.UUID        `json:"order_id"`
	CarrierAccountID  *uuid.UUID       `json:"carrier_account_id"`
	CarrierOrderID    string           `json:"carrier_order_id"`
	CarrierShipmentID string           `json:"carrier_shipment_id"`
	AWBNumber         *string          `json:"awb_number"`
	CourierCompanyID  *int             `json:"courier_company_id"`
	CarrierName       string           `json:"carrier_name"`
	Status            string           `json:"status"`
	CurrentEvent      string           `json:"current_event"`
	NDRStatus         string           `json:"ndr_status"`
	NDRReason         string           `json:"ndr_reason,omitempty"`
	NDRAttempts       int              `json:"ndr_attempts"`
	LabelURL          string           `json:"label_url,omitempty"`
	WeightGrams       int              `json:"weight_grams"`
	LengthCm          int              `json:"length_cm"`
	BreadthCm         int              `json:"breadth_cm"`
	HeightCm          int              `json:"height_cm"`
	CODAmount         *decimal.Decimal `json:"cod_amount"`
	CODCollected      bool             `json:"cod_collected"`
	PickedUpAt        *time.Time       `json:"picked_up_at"`
	InTransitAt       *time.Time       `json:"in_transit_at"`
	OutForDeliveryAt  *time.Time       `json:"out_for_delivery_at"`
	DeliveredAt       *time.Time       `json:"delivered_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`

	TrackingEvents []TrackingEventResponse `json:"tracking_events,omitempty"`
}

// ToShipmentResponse converts a shipment aggregate to its response DTO
func ToShipmentResponse(s *shipping.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:                s.ID,
		ShipmentNumber:    s.ShipmentNumber,
		OrderID:           s.OrderID,
		CarrierAccountID:  s.CarrierAccountID,
		CarrierOrderID:    s.CarrierOrderID,
		CarrierShipmentID: s.CarrierShipmentID,
		AWBNumber:         s.AWBNumber,
		CourierCompanyID:  s.CourierCompanyID,
		CarrierName:       s.CarrierName,
		Status:            s.Status.String(),
		CurrentEvent:      s.CurrentEvent,
		NDRStatus:         string(s.NDRStatus),
		NDRReason:         s.NDRReason,
		NDRAttempts:       s.NDRAttempts,
		LabelURL:          s.LabelURL,
		WeightGrams:       s.WeightGrams,
		LengthCm:          s.LengthCm,
		BreadthCm:         s.BreadthCm,
		HeightCm:          s.HeightCm,
		CODAmount:         s.CODAmount,
		CODCollected:      s.CODCollected,
		PickedUpAt:        s.PickedUpAt,
		InTransitAt:       s.InTransitAt,
		OutForDeliveryAt:  s.OutForDeliveryAt,
		DeliveredAt:       s.DeliveredAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	for _, ev := range s.TrackingEvents {
		resp.TrackingEvents = append(resp.TrackingEvents, TrackingEventResponse{
			Status:      ev.Status,
			StatusCode:  ev.StatusCode,
			Description: ev.Description,
			Location:    ev.Location,
			City:        ev.City,
			EventAt:     ev.EventAt,
		})
	}
	return resp
}

// CourierOptionResponse represents one courier on a serviceable lane
type CourierOptionResponse struct {
	CourierID      int             `json:"courier_id"`
	CourierName    string          `json:"courier_name"`
	EstimatedDays  int             `json:"estimated_days"`
	FreightCharge  decimal.Decimal `json:"freight_charge"`
	CODCharges     decimal.Decimal `json:"cod_charges"`
	TotalCharge    decimal.Decimal `json:"total_charge"`
	IsCODAvailable bool            `json:"is_cod_available"`
}

// ServiceabilityResponse represents the outcome of a serviceability check
type ServiceabilityResponse struct {
	Serviceable       bool                    `json:"serviceable"`
	AvailableCouriers []CourierOptionResponse `json:"available_couriers"`
}

// AWBSweepResult summarizes one pass of the pending-AWB retry sweep
type AWBSweepResult struct {
	Scanned  int `json:"scanned"`
	Assigned int `json:"assigned"`
	Failed   int `json:"failed"`
}

// ==================== Carrier Account DTOs ====================

// CreateCarrierAccountRequest represents a request to register a carrier account
type CreateCarrierAccountRequest struct {
	Name               string                   `json:"name" binding:"required,min=1,max=100"`
	Provider           shipping.CarrierProvider `json:"provider" binding:"required"`
	APIKey             string                   `json:"api_key"`
	APISecret          string                   `json:"api_secret"`
	PickupLocationName string                   `json:"pickup_location_name"`
}

// UpdateCarrierAccountRequest represents a request to update a carrier account
type UpdateCarrierAccountRequest struct {
	Name               *string `json:"name"`
	APIKey             *string `json:"api_key"`
	APISecret          *string `json:"api_secret"`
	PickupLocationName *string `json:"pickup_location_name"`
	Active             *bool   `json:"active"`
}

// CarrierAccountResponse represents a carrier account in API responses.
// Credentials are never echoed back.
type CarrierAccountResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Provider           string     `json:"provider"`
	PickupLocationName string     `json:"pickup_location_name"`
	Active             bool       `json:"active"`
	TokenExpiresAt     *time.Time `json:"token_expires_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToCarrierAccountResponse converts a carrier account to its response DTO
func ToCarrierAccountResponse(a *shipping.CarrierAccount) CarrierAccountResponse {
	return CarrierAccountResponse{
		ID:                 a.ID,
		Name:               a.Name,
		Provider:           a.Provider.String(),
		PickupLocationName: a.PickupLocationName,
		Active:             a.Active,
		TokenExpiresAt:     a.TokenExpiresAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// ==================== COD DTOs ====================

// CODPendingResponse summarizes shipments awaiting COD remittance
type CODPendingResponse struct {
	TotalPending decimal.Decimal    `json:"total_pending"`
	Count        int                `json:"count"`
	Shipments    []ShipmentResponse `json:"shipments"`
}

// CODRemittanceItemResponse represents one settled shipment in a remittance
type CODRemittanceItemResponse struct {
	ShipmentID uuid.UUID       `json:"shipment_id"`
	AWBNumber  string          `json:"awb_number"`
	Amount     decimal.Decimal `json:"amount"`
}

// CODRemittanceResponse represents a carrier payout batch
type CODRemittanceResponse struct {
	ID               uuid.UUID                   `json:"id"`
	RemittanceNumber string                      `json:"remittance_number"`
	CarrierName      string                      `json:"carrier_name"`
	TotalAmount      decimal.Decimal             `json:"total_amount"`
	UTRNumber        string                      `json:"utr_number"`
	RemittedAt       *time.Time                  `json:"remitted_at"`
	Items            []CODRemittanceItemResponse `json:"items"`
}

// ToCODRemittanceResponse converts a remittance batch to its response DTO
func ToCODRemittanceResponse(r *shipping.CODRemittance) CODRemittanceResponse {
	resp := CODRemittanceResponse{
		ID:               r.ID,
		RemittanceNumber: r.RemittanceNumber,
		CarrierName:      r.CarrierName,
		TotalAmount:      r.TotalAmount,
		UTRNumber:        r.UTRNumber,
		RemittedAt:       r.RemittedAt,
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, CODRemittanceItemResponse{
			ShipmentID: item.ShipmentID,
			AWBNumber:  item.AWBNumber,
			Amount:     item.Amount,
		})
	}
	return resp
}
