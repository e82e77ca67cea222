package carrier

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// shiprocketErrorResponse is the error envelope returned on non-2xx responses
type shiprocketErrorResponse struct {
	Message string `json:"message"`
}

// shiprocketAuthRequest is the /auth/login request body
type shiprocketAuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// shiprocketAuthResponse is the /auth/login response body
type shiprocketAuthResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

// shiprocketOrderItem is a line item in the adhoc order request
type shiprocketOrderItem struct {
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Units        int             `json:"units"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	HSN          string          `json:"hsn"`
}

// shiprocketCreateOrderRequest is the /orders/create/adhoc request body
type shiprocketCreateOrderRequest struct {
	OrderID        string `json:"order_id"`
	OrderDate      string `json:"order_date"`
	PickupLocation string `json:"pickup_location"`

	BillingCustomerName string `json:"billing_customer_name"`
	BillingLastName     string `json:"billing_last_name"`
	BillingAddress      string `json:"billing_address"`
	BillingCity         string `json:"billing_city"`
	BillingPincode      string `json:"billing_pincode"`
	BillingState        string `json:"billing_state"`
	BillingCountry      string `json:"billing_country"`
	BillingEmail        string `json:"billing_email"`
	BillingPhone        string `json:"billing_phone"`

	ShippingIsBilling    bool   `json:"shipping_is_billing"`
	ShippingCustomerName string `json:"shipping_customer_name"`
	ShippingLastName     string `json:"shipping_last_name"`
	ShippingAddress      string `json:"shipping_address"`
	ShippingCity         string `json:"shipping_city"`
	ShippingPincode      string `json:"shipping_pincode"`
	ShippingState        string `json:"shipping_state"`
	ShippingCountry      string `json:"shipping_country"`
	ShippingPhone        string `json:"shipping_phone"`

	OrderItems    []shiprocketOrderItem `json:"order_items"`
	PaymentMethod string                `json:"payment_method"`
	SubTotal      decimal.Decimal       `json:"sub_total"`

	// Dimensions are centimetres, weight is kilograms
	Weight  float64 `json:"weight"`
	Length  int     `json:"length"`
	Breadth int     `json:"breadth"`
	Height  int     `json:"height"`
}

// shiprocketCreateOrderResponse is the /orders/create/adhoc response body
type shiprocketCreateOrderResponse struct {
	OrderID    json.Number `json:"order_id"`
	ShipmentID json.Number `json:"shipment_id"`
	Status     string      `json:"status"`
	Message    string      `json:"message"`
}

// shiprocketAssignAWBRequest is the /courier/assign/awb request body
type shiprocketAssignAWBRequest struct {
	ShipmentID string `json:"shipment_id"`
	CourierID  *int   `json:"courier_id,omitempty"`
}

// shiprocketAssignAWBResponse is the /courier/assign/awb response body.
// The AWB payload sits two levels deep under response.data.
type shiprocketAssignAWBResponse struct {
	AWBAssignStatus int `json:"awb_assign_status"`
	Response        struct {
		Data struct {
			AWBCode          string `json:"awb_code"`
			CourierCompanyID int    `json:"courier_company_id"`
			CourierName      string `json:"courier_name"`
		} `json:"data"`
	} `json:"response"`
	Message string `json:"message"`
}

// shiprocketLabelRequest is the /courier/generate/label request body
type shiprocketLabelRequest struct {
	ShipmentID []string `json:"shipment_id"`
}

// shiprocketLabelResponse is the /courier/generate/label response body
type shiprocketLabelResponse struct {
	LabelCreated int    `json:"label_created"`
	LabelURL     string `json:"label_url"`
	Response     string `json:"response"`
}

// shiprocketPickupRequest is the /courier/generate/pickup request body
type shiprocketPickupRequest struct {
	ShipmentID []string `json:"shipment_id"`
	PickupDate []string `json:"pickup_date"`
}

// shiprocketPickupResponse is the /courier/generate/pickup response body
type shiprocketPickupResponse struct {
	PickupStatus      int         `json:"pickup_status"`
	PickupTokenNumber json.Number `json:"pickup_token_number"`
}

// shiprocketTrackActivity is one scan in the tracking history.
// "sr-status" carries the numeric status code, "sr-status-label" the text.
type shiprocketTrackActivity struct {
	Date        string `json:"date"`
	SRStatus    string `json:"sr-status"`
	SRStatusTxt string `json:"sr-status-label"`
	Activity    string `json:"activity"`
	Location    string `json:"location"`
}

// shiprocketTrackingResponse is the /courier/track/awb/{awb} response body
type shiprocketTrackingResponse struct {
	TrackingData struct {
		TrackStatus             int                       `json:"track_status"`
		ShipmentStatus          json.Number               `json:"shipment_status"`
		ShipmentTrackActivities []shiprocketTrackActivity `json:"shipment_track_activities"`
	} `json:"tracking_data"`
}

// shiprocketCourierCompany is one courier in the serviceability response
type shiprocketCourierCompany struct {
	CourierCompanyID      int             `json:"courier_company_id"`
	CourierName           string          `json:"courier_name"`
	EstimatedDeliveryDays json.Number     `json:"estimated_delivery_days"`
	FreightCharge         decimal.Decimal `json:"freight_charge"`
	CODCharges            decimal.Decimal `json:"cod_charges"`
	Rate                  decimal.Decimal `json:"rate"`
	COD                   int             `json:"cod"`
}

// shiprocketServiceabilityResponse is the /courier/serviceability/ response body
type shiprocketServiceabilityResponse struct {
	Status int `json:"status"`
	Data   struct {
		AvailableCourierCompanies []shiprocketCourierCompany `json:"available_courier_companies"`
	} `json:"data"`
}

// shiprocketNDRRequest is the /ndr/reattempt and /ndr/rto request body
type shiprocketNDRRequest struct {
	AWB              string `json:"awb"`
	ReAttemptDate    string `json:"re_attempt_date,omitempty"`
	ReAttemptAddress string `json:"re_attempt_address,omitempty"`
	Comments         string `json:"comments,omitempty"`
}

// shiprocketCancelRequest is the /orders/cancel request body
type shiprocketCancelRequest struct {
	IDs []string `json:"ids"`
}
