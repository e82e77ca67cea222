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
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/shipping/internal/domain/shipping"
)

// delhiveryTimeLayout is the timestamp format in scan records
const delhiveryTimeLayout = "2006-01-02T15:04:05.999999"

// DelhiveryAdapter implements CarrierAdapter for direct Delhivery integration.
// Delhivery differs from an aggregator in two ways this adapter absorbs: the
// API token is static rather than exchanged per login, and the waybill is
// allocated at manifest time rather than by a separate assignment call.
type DelhiveryAdapter struct {
	config     *DelhiveryConfig
	httpClient *http.Client
}

// NewDelhiveryAdapter creates a new Delhivery adapter with the given configuration
func NewDelhiveryAdapter(config *DelhiveryConfig) (*DelhiveryAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &DelhiveryAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Provider returns the carrier this adapter talks to
func (a *DelhiveryAdapter) Provider() shipping.CarrierProvider {
	return shipping.CarrierProviderDelhivery
}

// Authenticate echoes the static API token. Delhivery issues long-lived
// tokens from its panel, so there is no login exchange; credentials are
// verified lazily by the first real call.
func (a *DelhiveryAdapter) Authenticate(ctx context.Context, apiKey, apiSecret string) (*shipping.AuthResult, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing API token", shipping.ErrCarrierAuthFailed)
	}
	return &shipping.AuthResult{
		Token:     apiKey,
		ExpiresAt: time.Now().Add(delhiveryTokenTTL),
	}, nil
}

// CreateOrder manifests a package with Delhivery. The returned ShipmentID is
// the allocated waybill.
func (a *DelhiveryAdapter) CreateOrder(ctx context.Context, params *shipping.CreateOrderParams, token string) (*shipping.CreateOrderResult, error) {
	paymentMode := "Prepaid"
	codAmount := ""
	if params.CODAmount != nil {
		paymentMode = "COD"
		codAmount = params.CODAmount.StringFixed(2)
	}

	totalUnits := 0
	descriptions := make([]string, 0, len(params.Items))
	hsn := ""
	for _, item := range params.Items {
		totalUnits += item.Units
		descriptions = append(descriptions, item.Name)
		if hsn == "" {
			hsn = item.HSNCode
		}
	}

	pickupLocation := params.PickupLocationID
	if pickupLocation == "" {
		pickupLocation = a.config.PickupLocation
	}

	manifest := delhiveryManifestData{
		Shipments: []delhiveryShipment{{
			Name:           params.ShippingName,
			Add:            params.ShippingAddress,
			Pin:            params.ShippingPincode,
			City:           params.ShippingCity,
			State:          params.ShippingState,
			Country:        defaultCountry(params.ShippingCountry),
			Phone:          params.ShippingPhone,
			Order:          params.OrderNumber,
			PaymentMode:    paymentMode,
			CODAmount:      codAmount,
			TotalAmount:    params.SubTotal.StringFixed(2),
			ProductsDesc:   strings.Join(descriptions, ", "),
			HSNCode:        hsn,
			Quantity:       strconv.Itoa(totalUnits),
			Weight:         strconv.Itoa(params.WeightGrams),
			ShipmentLength: strconv.Itoa(params.LengthCm),
			ShipmentWidth:  strconv.Itoa(params.BreadthCm),
			ShipmentHeight: strconv.Itoa(params.HeightCm),
		}},
	}
	manifest.PickupLocation.Name = pickupLocation

	data, err := json.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("delhivery: failed to encode manifest: %w", err)
	}

	form := url.Values{}
	form.Set("format", "json")
	form.Set("data", string(data))

	respBody, reject, err := a.doForm(ctx, "/api/cmu/create.json", token, form)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.CreateOrderResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryManifestResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if len(resp.Packages) == 0 || !strings.EqualFold(resp.Packages[0].Status, "Success") {
		msg := resp.RMK
		if msg == "" {
			msg = "manifest rejected"
		}
		return &shipping.CreateOrderResult{Success: false, Error: msg}, nil
	}

	pkg := resp.Packages[0]
	return &shipping.CreateOrderResult{
		Success:        true,
		CarrierOrderID: pkg.RefNum,
		ShipmentID:     pkg.Waybill,
	}, nil
}

// AssignAWB surfaces the waybill Delhivery already allocated at manifest
// time, keeping the orchestration flow uniform across providers.
func (a *DelhiveryAdapter) AssignAWB(ctx context.Context, carrierShipmentID string, courierCompanyID *int, token string) (*shipping.AWBResult, error) {
	if carrierShipmentID == "" {
		return &shipping.AWBResult{Success: false, Error: "no waybill allocated"}, nil
	}
	return &shipping.AWBResult{
		Success:     true,
		AWBNumber:   carrierShipmentID,
		CourierName: "Delhivery",
	}, nil
}

// GenerateLabel fetches the packing slip PDF for a waybill
func (a *DelhiveryAdapter) GenerateLabel(ctx context.Context, carrierShipmentID string, token string) (*shipping.LabelResult, error) {
	query := url.Values{}
	query.Set("wbns", carrierShipmentID)
	query.Set("pdf", "true")

	respBody, reject, err := a.doGet(ctx, "/api/p/packing_slip?"+query.Encode(), token)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.LabelResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryLabelResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if len(resp.Packages) == 0 || resp.Packages[0].PDFDownloadLink == "" {
		return &shipping.LabelResult{Success: false, Error: "label was not generated"}, nil
	}

	return &shipping.LabelResult{Success: true, LabelURL: resp.Packages[0].PDFDownloadLink}, nil
}

// SchedulePickup books a pickup from the configured warehouse
func (a *DelhiveryAdapter) SchedulePickup(ctx context.Context, carrierShipmentID, pickupDate string, token string) (*shipping.PickupResult, error) {
	reqBody := delhiveryPickupRequest{
		PickupLocation:       a.config.PickupLocation,
		PickupDate:           pickupDate,
		PickupTime:           "11:00:00",
		ExpectedPackageCount: 1,
	}

	respBody, reject, err := a.doPost(ctx, "/fm/request/new/", token, reqBody)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.PickupResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryPickupResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	return &shipping.PickupResult{
		Success:             true,
		PickupScheduledDate: pickupDate,
		PickupTokenNumber:   strconv.FormatInt(resp.PickupID, 10),
	}, nil
}

// GetTracking fetches the scan history for a waybill. Delhivery's scan names
// are normalized to the shared numeric status codes.
func (a *DelhiveryAdapter) GetTracking(ctx context.Context, awbNumber string, token string) (*shipping.TrackingResult, error) {
	query := url.Values{}
	query.Set("waybill", awbNumber)

	respBody, reject, err := a.doGet(ctx, "/api/v1/packages/json/?"+query.Encode(), token)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.TrackingResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryTrackingResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}
	if len(resp.ShipmentData) == 0 {
		return &shipping.TrackingResult{Success: false, Error: "waybill not found"}, nil
	}

	shp := resp.ShipmentData[0].Shipment
	currentCode := mapDelhiveryStatus(shp.Status.Status, shp.Status.StatusType)

	result := &shipping.TrackingResult{
		Success:           true,
		CurrentStatus:     shp.Status.Status,
		CurrentStatusCode: currentCode,
		Events:            make([]shipping.TrackingEvent, 0, len(shp.Scans)),
	}

	for _, scan := range shp.Scans {
		detail := scan.ScanDetail
		event := shipping.TrackingEvent{
			Status:      detail.Scan,
			StatusCode:  mapDelhiveryStatus(detail.Scan, detail.ScanType),
			Description: detail.Instructions,
			Location:    detail.ScannedLocation,
			City:        detail.ScannedLocation,
			Timestamp:   parseDelhiveryTime(detail.ScanDateTime),
		}
		if raw, err := json.Marshal(detail); err == nil {
			event.RawPayload = raw
		}
		result.Events = append(result.Events, event)
	}

	return result, nil
}

// CheckServiceability looks up the destination pincode. Delhivery serves a
// lane with its own fleet, so a serviceable pincode yields a single option.
func (a *DelhiveryAdapter) CheckServiceability(ctx context.Context, params *shipping.ServiceabilityParams, token string) (*shipping.ServiceabilityResult, error) {
	query := url.Values{}
	query.Set("filter_codes", params.DeliveryPincode)

	respBody, reject, err := a.doGet(ctx, "/c/api/pin-codes/json/?"+query.Encode(), token)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.ServiceabilityResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryPincodeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", shipping.ErrCarrierInvalidResponse, err)
	}

	if len(resp.DeliveryCodes) == 0 {
		return &shipping.ServiceabilityResult{Success: true, Serviceable: false, AvailableCouriers: []shipping.CourierOption{}}, nil
	}

	codAvailable := strings.EqualFold(resp.DeliveryCodes[0].PostalCode.COD, "Y")
	if params.IsCOD && !codAvailable {
		return &shipping.ServiceabilityResult{Success: true, Serviceable: false, AvailableCouriers: []shipping.CourierOption{}}, nil
	}

	return &shipping.ServiceabilityResult{
		Success:     true,
		Serviceable: true,
		AvailableCouriers: []shipping.CourierOption{{
			CourierName:    "Delhivery",
			FreightCharge:  decimal.Zero,
			CODCharges:     decimal.Zero,
			TotalCharge:    decimal.Zero,
			IsCODAvailable: codAvailable,
		}},
	}, nil
}

// HandleNDR instructs Delhivery on a non-delivery report
func (a *DelhiveryAdapter) HandleNDR(ctx context.Context, params *shipping.NDRActionParams, token string) (*shipping.NDRActionResult, error) {
	act := "RTO"
	if params.Action == shipping.NDRActionReattempt {
		act = "RE-ATTEMPT"
	}

	var reqBody delhiveryUpdateRequest
	reqBody.Data = append(reqBody.Data, struct {
		Waybill string `json:"waybill"`
		Act     string `json:"act"`
	}{Waybill: params.AWBNumber, Act: act})

	respBody, reject, err := a.doPost(ctx, "/api/p/update", token, reqBody)
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.NDRActionResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryStatusResponse
	if err := json.Unmarshal(respBody, &resp); err == nil && !resp.Status && resp.Error != "" {
		return &shipping.NDRActionResult{Success: false, Error: resp.Error}, nil
	}

	return &shipping.NDRActionResult{Success: true}, nil
}

// CancelShipment cancels a manifested package. The edit API keys on the
// waybill, not the merchant order reference.
func (a *DelhiveryAdapter) CancelShipment(ctx context.Context, params *shipping.CancelParams, token string) (*shipping.CancelResult, error) {
	if params.AWBNumber == "" {
		return &shipping.CancelResult{Success: false, Error: "no waybill to cancel"}, nil
	}
	respBody, reject, err := a.doPost(ctx, "/api/p/edit", token, delhiveryEditRequest{
		Waybill:      params.AWBNumber,
		Cancellation: "true",
	})
	if err != nil {
		return nil, err
	}
	if reject != "" {
		return &shipping.CancelResult{Success: false, Error: reject}, nil
	}

	var resp delhiveryStatusResponse
	if err := json.Unmarshal(respBody, &resp); err == nil && !resp.Status && resp.Error != "" {
		return &shipping.CancelResult{Success: false, Error: resp.Error}, nil
	}

	return &shipping.CancelResult{Success: true}, nil
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

func (a *DelhiveryAdapter) doPost(ctx context.Context, endpoint, token string, payload any) ([]byte, string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("delhivery: failed to encode request: %w", err)
	}
	return a.doRequest(ctx, http.MethodPost, endpoint, token, "application/json", bytes.NewReader(body))
}

func (a *DelhiveryAdapter) doForm(ctx context.Context, endpoint, token string, form url.Values) ([]byte, string, error) {
	return a.doRequest(ctx, http.MethodPost, endpoint, token, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (a *DelhiveryAdapter) doGet(ctx context.Context, endpoint, token string) ([]byte, string, error) {
	return a.doRequest(ctx, http.MethodGet, endpoint, token, "", nil)
}

func (a *DelhiveryAdapter) doRequest(ctx context.Context, method, endpoint, token, contentType string, body io.Reader) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.APIBaseURL+endpoint, body)
	if err != nil {
		return nil, "", fmt.Errorf("delhivery: failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Token "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", shipping.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, "", fmt.Errorf("delhivery: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, "", fmt.Errorf("%w: HTTP %d", shipping.ErrCarrierAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		var errResp delhiveryStatusResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return nil, errResp.Error, nil
		}
		return nil, fmt.Sprintf("Delhivery API error: HTTP %d", resp.StatusCode), nil
	}

	return respBody, "", nil
}

// mapDelhiveryStatus normalizes Delhivery scan names to the shared numeric
// status codes. StatusType RT marks the return leg, which flips a delivered
// scan into an RTO delivery.
func mapDelhiveryStatus(status, statusType string) string {
	switch strings.ToLower(status) {
	case "manifested":
		return "1"
	case "picked up", "pickup done":
		return "6"
	case "in transit":
		return "18"
	case "dispatched", "out for delivery":
		return "19"
	case "delivered":
		if strings.EqualFold(statusType, "RT") {
			return "10"
		}
		return "7"
	case "rto", "rto initiated", "returned":
		return "9"
	case "canceled", "cancelled":
		return "8"
	case "lost":
		return "12"
	case "pending":
		// failed delivery attempt awaiting action
		return "21"
	default:
		return ""
	}
}

func parseDelhiveryTime(value string) time.Time {
	if t, err := time.ParseInLocation(delhiveryTimeLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}

// Ensure DelhiveryAdapter implements CarrierAdapter interface
var _ shipping.CarrierAdapter = (*DelhiveryAdapter)(nil)
