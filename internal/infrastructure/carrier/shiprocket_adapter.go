package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erp/shipping/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed response size from a carrier API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// shiprocketTimeLayout is the timestamp format used in tracking activities
const shiprocketTimeLayout = "2006-01-02 15:04:05"

// ShiprocketAdapter implements CarrierAdapter for the Shiprocket aggregator.
// The adapter is a stateless translator: credentials and tokens come in on
// every call, so one instance serves all accounts.
type ShiprocketAdapter struct {
	config     *ShiprocketConfig
	httpClient *http.Client
}

// NewShiprocketAdapter creates a new Shiprocket adapter with the given configuration
func NewShiprocketAdapter(config *ShiprocketConfig) (*ShiprocketAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ShiprocketAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Provider returns the carrier this adapter talks to
func (a *ShiprocketAdapter) Provider() shipping.CarrierProvider {
	return shipping.CarrierProviderShiprocket
}

// Authenticate exchanges account credentials for a bearer token.
// Shiprocket tokens are valid for ten days.
func (a *ShiprocketAdapter) Authenticate(ctx context.Context, apiKey, apiSecret string) (*shipping.AuthResult, error) {
	body, err := json.Marshal(shiprocketAuthRequest{Email: apiKey, Password: apiSecret})
	if err != nil {
		return nil, fmt.Errorf("shiprocket: failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.APIBaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shiprocket: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shiprocket: failed to read response: %w", err)
	}

	var authResp shiprocketAuthResponse
	if err := json.Unmarshal(respBody, &authResp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if resp.StatusCode >= 400 || authResp.Token == "" {
		if authResp.Message != "" {
			return nil, fmt.Errorf("%w: %s", shipping.ErrCarrierAuthFailed, authResp.Message)
		}
		return nil, fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierAuthFailed, resp.StatusCode)
	}

	return &shipping.AuthResult{
		Token:     authResp.Token,
		ExpiresAt: time.Now().Add(shiprocketTokenTTL),
	}, nil
}

// CreateOrder pushes an adhoc order to Shiprocket. Business rejections come
// back as Success=false with the carrier's message; transport and parse
// failures are returned as errors.
func (a *ShiprocketAdapter) CreateOrder(ctx context.Context, params *shipping.CreateOrderParams, token string) (*shipping.CreateOrderResult, error) {
	pickupLocation := params.PickupLocationID
	if pickupLocation == "" {
		pickupLocation = "Primary"
	}

	items := make([]shiprocketOrderItem, 0, len(params.Items))
	for _, item := range params.Items {
		items = append(items, shiprocketOrderItem{
			Name:         item.Name,
			SKU:          item.SKU,
			Units:        item.Units,
			SellingPrice: item.SellingPrice,
			HSN:          item.HSNCode,
		})
	}

	reqBody := shiprocketCreateOrderRequest{
		OrderID:              params.OrderNumber,
		OrderDate:            params.OrderDate,
		PickupLocation:       pickupLocation,
		BillingCustomerName:  params.BillingName,
		BillingAddress:       params.BillingAddress,
		BillingCity:          params.BillingCity,
		BillingPincode:       params.BillingPincode,
		BillingState:         params.BillingState,
		BillingCountry:       defaultCountry(params.BillingCountry),
		BillingEmail:         params.BillingEmail,
		BillingPhone:         params.BillingPhone,
		ShippingIsBilling:    false,
		ShippingCustomerName: params.ShippingName,
		ShippingAddress:      params.ShippingAddress,
		ShippingCity:         params.ShippingCity,
		ShippingPincode:      params.ShippingPincode,
		ShippingState:        params.ShippingState,
		ShippingCountry:      defaultCountry(params.ShippingCountry),
		ShippingPhone:        params.ShippingPhone,
		OrderItems:           items,
		PaymentMethod:        params.PaymentMethod,
		SubTotal:             params.SubTotal,
		Weight:               float64(params.WeightGrams) / 1000, // Shiprocket uses kg
		Length:               params.LengthCm,
		Breadth:              params.BreadthCm,
		Height:               params.HeightCm,
	}

	respBody, reject, err := a.doPost(ctx, "/orders/create/adhoc", token, reqBody)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.CreateOrderResult{Success: false, Error: reject}, nil
	}

	var resp shiprocketCreateOrderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if resp.OrderID.String() == "" || resp.OrderID.String() == "0" {
		msg := resp.Message
		if msg == "" {
			msg = "order was not created"
		}
		return &shipping.CreateOrderResult{Success: false, Error: msg}, nil
	}

	return &shipping.CreateOrderResult{
		Success:        true,
		CarrierOrderID: resp.OrderID.String(),
		ShipmentID:     resp.ShipmentID.String(),
	}, nil
}

// AssignAWB requests a tracking number for a Shiprocket shipment id
func (a *ShiprocketAdapter) AssignAWB(ctx context.Context, carrierShipmentID string, courierCompanyID *int, token string) (*shipping.AWBResult, error) {
	reqBody := shiprocketAssignAWBRequest{
		ShipmentID: carrierShipmentID,
		CourierID:  courierCompanyID,
	}

	respBody, reject, err := a.doPost(ctx, "/courier/assign/awb", token, reqBody)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.AWBResult{Success: false, Error: reject}, nil
	}

	var resp shiprocketAssignAWBResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	awb := resp.Response.Data
	if awb.AWBCode == "" {
		msg := resp.Message
		if msg == "" {
			msg = "no AWB returned"
		}
		return &shipping.AWBResult{Success: false, Error: msg}, nil
	}

	result := &shipping.AWBResult{
		Success:     true,
		AWBNumber:   awb.AWBCode,
		CourierName: awb.CourierName,
	}
	if awb.CourierCompanyID > 0 {
		courierID := awb.CourierCompanyID
		result.CourierCompanyID = &courierID
	}
	return result, nil
}

// GenerateLabel produces a shipping label for a Shiprocket shipment id
func (a *ShiprocketAdapter) GenerateLabel(ctx context.Context, carrierShipmentID string, token string) (*shipping.LabelResult, error) {
	respBody, reject, err := a.doPost(ctx, "/courier/generate/label", token, shiprocketLabelRequest{
		ShipmentID: []string{carrierShipmentID},
	})
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.LabelResult{Success: false, Error: reject}, nil
	}

	var resp shiprocketLabelResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if resp.LabelURL == "" {
		return &shipping.LabelResult{Success: false, Error: "label was not generated"}, nil
	}

	return &shipping.LabelResult{Success: true, LabelURL: resp.LabelURL}, nil
}

// SchedulePickup books a pickup for the given date
func (a *ShiprocketAdapter) SchedulePickup(ctx context.Context, carrierShipmentID, pickupDate string, token string) (*shipping.PickupResult, error) {
	respBody, reject, err := a.doPost(ctx, "/courier/generate/pickup", token, shiprocketPickupRequest{
		ShipmentID: []string{carrierShipmentID},
		PickupDate: []string{pickupDate},
	})
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.PickupResult{Success: false, Error: reject}, nil
	}

	var resp shiprocketPickupResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	return &shipping.PickupResult{
		Success:             true,
		PickupScheduledDate: pickupDate,
		PickupTokenNumber:   resp.PickupTokenNumber.String(),
	}, nil
}

// GetTracking fetches the full tracking history for an AWB
func (a *ShiprocketAdapter) GetTracking(ctx context.Context, awbNumber string, token string) (*shipping.TrackingResult, error) {
	respBody, reject, err := a.doGet(ctx, "/courier/track/awb/"+url.PathEscape(awbNumber), token)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.TrackingResult{Success: false, Error: reject}, nil
	}

	var resp shiprocketTrackingResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	statusCode := resp.TrackingData.ShipmentStatus.String()
	result := &shipping.TrackingResult{
		Success:           true,
		CurrentStatus:     statusCode,
		CurrentStatusCode: statusCode,
		Events:            make([]shipping.TrackingEvent, 0, len(resp.TrackingData.ShipmentTrackActivities)),
	}

	for _, act := range resp.TrackingData.ShipmentTrackActivities {
		event := shipping.TrackingEvent{
			Status:      act.SRStatusTxt,
			StatusCode:  act.SRStatus,
			Description: act.Activity,
			Location:    act.Location,
			City:        act.Location,
			Timestamp:   parseShiprocketTime(act.Date),
		}
		if raw, err := json.Marshal(act); err == nil {
			event.RawPayload = raw
		}
		result.Events = append(result.Events, event)
	}

	return result, nil
}

// CheckServiceability checks whether a lane is serviceable
func (a *ShiprocketAdapter) CheckServiceability(ctx context.Context, params *shipping.ServiceabilityParams, token string) (*shipping.ServiceabilityResult, error) {
	query := url.Values{}
	query.Set("pickup_postcode", params.PickupPincode)
	query.Set("delivery_postcode", params.DeliveryPincode)
	query.Set("weight", strconv.FormatFloat(float64(params.WeightGrams)/1000, 'f', -1, 64))
	if params.IsCOD {
		query.Set("cod", "1")
	} else {
		query.Set("cod", "0")
	}

	respBody, reject, err := a.doGet(ctx, "/courier/serviceability/?"+query.Encode(), token)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.ServiceabilityResult{Success: false, Error: reject}, nil
	}

	var resp shiprocketServiceabilityResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	couriers := make([]shipping.CourierOption, 0, len(resp.Data.AvailableCourierCompanies))
	for _, c := range resp.Data.AvailableCourierCompanies {
		days, _ := strconv.Atoi(c.EstimatedDeliveryDays.String())
		couriers = append(couriers, shipping.CourierOption{
			CourierID:      c.CourierCompanyID,
			CourierName:    c.CourierName,
			EstimatedDays:  days,
			FreightCharge:  c.FreightCharge,
			CODCharges:     c.CODCharges,
			TotalCharge:    c.Rate,
			IsCODAvailable: c.COD == 1,
		})
	}

	return &shipping.ServiceabilityResult{
		Success:           true,
		Serviceable:       len(couriers) > 0,
		AvailableCouriers: couriers,
	}, nil
}

// HandleNDR instructs Shiprocket on a non-delivery report
func (a *ShiprocketAdapter) HandleNDR(ctx context.Context, params *shipping.NDRActionParams, token string) (*shipping.NDRActionResult, error) {
	endpoint := "/ndr/rto"
	reqBody := shiprocketNDRRequest{AWB: params.AWBNumber}
	if params.Action == shipping.NDRActionReattempt {
		endpoint = "/ndr/reattempt"
		reqBody.ReAttemptDate = params.ReattemptDate
		reqBody.ReAttemptAddress = params.ReattemptAddress
		reqBody.Comments = params.Comments
	}

	_, reject, err := a.doPost(ctx, endpoint, token, reqBody)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.NDRActionResult{Success: false, Error: reject}, nil
	}

	return &shipping.NDRActionResult{Success: true}, nil
}

// CancelShipment cancels the Shiprocket-side order
func (a *ShiprocketAdapter) CancelShipment(ctx context.Context, params *shipping.CancelParams, token string) (*shipping.CancelResult, error) {
	_, reject, err := a.doPost(ctx, "/orders/cancel", token, shiprocketCancelRequest{
		IDs: []string{params.CarrierOrderID},
	})
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.CancelResult{Success: false, Error: reject}, nil
	}

	return &shipping.CancelResult{Success: true}, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doPost performs an authenticated POST to the Shiprocket API. Carrier
// rejections (HTTP 4xx/5xx with a message body) are returned as the reject
// string; transport failures are returned as errors.
func (a *ShiprocketAdapter) doPost(ctx context.Context, endpoint, token string, payload any) ([]byte, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("shiprocket: failed to encode request: %w", err)
	}
	return a.doRequest(ctx, http.MethodPost, endpoint, token, bytes.NewReader(body))
}

// doGet performs an authenticated GET to the Shiprocket API
func (a *ShiprocketAdapter) doGet(ctx context.Context, endpoint, token string) ([]byte, string, error) {
	return a.doRequest(ctx, http.MethodGet, endpoint, token, nil)
}

func (a *ShiprocketAdapter) doRequest(ctx context.Context, method, endpoint, token string, body io.Reader) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+endpoint, body)
	if err != nil {
		return nil, "", fmt.Errorf("shiprocket: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("shiprocket: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp shiprocketErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Message != "" {
			return nil, errResp.Message, nil
		}
		return nil, fmt.Sprintf("Shiprocket API error: HTTP %d", resp.StatusCode), nil
	}

	return respBody, "", nil
}

// parseShiprocketTime parses a tracking activity timestamp, falling back to
// RFC3339. A zero time is returned when the carrier sends nothing usable.
func parseShiprocketTime(value string) time.Time {
	if t, err := time.ParseInLocation(shiprocketTimeLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

// defaultCountry returns India when the order carries no country
func defaultCountry(country string) string {
	if country == "" {
		return "India"
	}
	return country
}

// Ensure ShiprocketAdapter implements CarrierAdapter interface
var _ shipping.CarrierAdapter = (*ShiprocketAdapter)(nil)
