package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/shipping/internal/domain/shipping"
)

// newShiprocketTestAdapter points the adapter at a local test server
func newShiprocketTestAdapter(t *testing.T, handler http.HandlerFunc) *ShiprocketAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewShiprocketAdapter(&ShiprocketConfig{APIBaseURL: server.URL, TimeoutSeconds: 5})
	require.NoError(t, err)
	return adapter
}

func TestShiprocketConfig_Validate(t *testing.T) {
	config := &ShiprocketConfig{}
	require.NoError(t, config.Validate())
	assert.Equal(t, ShiprocketProductionAPIURL, config.APIBaseURL)
	assert.Equal(t, 30, config.TimeoutSeconds)
}

func TestShiprocketAdapter_Provider(t *testing.T) {
	adapter, err := NewShiprocketAdapter(NewShiprocketConfig())
	require.NoError(t, err)
	assert.Equal(t, shipping.CarrierProviderShiprocket, adapter.Provider())
}

func TestShiprocketAdapter_Authenticate(t *testing.T) {
	t.Run("successful login", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/auth/login", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			var body shiprocketAuthRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "merchant@example.com", body.Email)
			assert.Equal(t, "s3cret", body.Password)

			json.NewEncoder(w).Encode(map[string]string{"token": "tok_abc"})
		})

		result, err := adapter.Authenticate(context.Background(), "merchant@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "tok_abc", result.Token)
		assert.False(t, result.ExpiresAt.IsZero())
	})

	t.Run("rejected credentials", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
		})

		_, err := adapter.Authenticate(context.Background(), "merchant@example.com", "wrong")
		assert.ErrorIs(t, err, shipping.ErrCarrierAuthFailed)
		assert.Contains(t, err.Error(), "Invalid credentials")
	})
}

func TestShiprocketAdapter_CreateOrder(t *testing.T) {
	params := &shipping.CreateOrderParams{
		OrderNumber:     "SO-1001",
		OrderDate:       "2026-08-29",
		BillingName:     "Asha Rao",
		BillingPhone:    "9876543210",
		BillingAddress:  "12 MG Road",
		BillingCity:     "Bengaluru",
		BillingState:    "Karnataka",
		BillingPincode:  "560001",
		ShippingName:    "Asha Rao",
		ShippingPhone:   "9876543210",
		ShippingAddress: "12 MG Road",
		ShippingCity:    "Bengaluru",
		ShippingState:   "Karnataka",
		ShippingPincode: "560001",
		PaymentMethod:   "Prepaid",
		SubTotal:        decimal.NewFromInt(1499),
		WeightGrams:     500,
		LengthCm:        20,
		BreadthCm:       15,
		HeightCm:        10,
		Items: []shipping.ShipmentItem{
			{Name: "Blue Kurta", SKU: "KUR-BL-M", Units: 1, SellingPrice: decimal.NewFromInt(1499)},
		},
	}

	t.Run("accepted order", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/create/adhoc", r.URL.Path)
			assert.Equal(t, "Bearer tok_abc", r.Header.Get("Authorization"))

			var body shiprocketCreateOrderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "SO-1001", body.OrderID)
			assert.Equal(t, "Primary", body.PickupLocation)
			assert.Equal(t, "India", body.BillingCountry)
			assert.False(t, body.ShippingIsBilling)
			assert.InDelta(t, 0.5, body.Weight, 0.001) // grams converted to kg
			require.Len(t, body.OrderItems, 1)
			assert.Equal(t, "KUR-BL-M", body.OrderItems[0].SKU)

			json.NewEncoder(w).Encode(map[string]any{"order_id": 443344, "shipment_id": 443322})
		})

		result, err := adapter.CreateOrder(context.Background(), params, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "443344", result.CarrierOrderID)
		assert.Equal(t, "443322", result.ShipmentID)
	})

	t.Run("carrier rejection surfaces as failed result", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"message": "Invalid pincode"})
		})

		result, err := adapter.CreateOrder(context.Background(), params, "tok_abc")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Invalid pincode", result.Error)
	})
}

func TestShiprocketAdapter_AssignAWB(t *testing.T) {
	t.Run("AWB assigned", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/courier/assign/awb", r.URL.Path)

			var body shiprocketAssignAWBRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "443322", body.ShipmentID)
			require.NotNil(t, body.CourierID)
			assert.Equal(t, 5, *body.CourierID)

			w.Write([]byte(`{"awb_assign_status":1,"response":{"data":{"awb_code":"AWB555","courier_company_id":5,"courier_name":"BlueDart"}}}`))
		})

		courierID := 5
		result, err := adapter.AssignAWB(context.Background(), "443322", &courierID, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "AWB555", result.AWBNumber)
		require.NotNil(t, result.CourierCompanyID)
		assert.Equal(t, 5, *result.CourierCompanyID)
		assert.Equal(t, "BlueDart", result.CourierName)
	})

	t.Run("no AWB available", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"awb_assign_status":0,"message":"No couriers serviceable"}`))
		})

		result, err := adapter.AssignAWB(context.Background(), "443322", nil, "tok_abc")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "No couriers serviceable", result.Error)
	})
}

func TestShiprocketAdapter_GenerateLabel(t *testing.T) {
	adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courier/generate/label", r.URL.Path)

		var body shiprocketLabelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"443322"}, body.ShipmentID)

		json.NewEncoder(w).Encode(map[string]any{"label_created": 1, "label_url": "https://cdn.example.com/label.pdf"})
	})

	result, err := adapter.GenerateLabel(context.Background(), "443322", "tok_abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "https://cdn.example.com/label.pdf", result.LabelURL)
}

func TestShiprocketAdapter_SchedulePickup(t *testing.T) {
	adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courier/generate/pickup", r.URL.Path)

		var body shiprocketPickupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"443322"}, body.ShipmentID)
		assert.Equal(t, []string{"2026-09-01"}, body.PickupDate)

		json.NewEncoder(w).Encode(map[string]any{"pickup_status": 1, "pickup_token_number": 998877})
	})

	result, err := adapter.SchedulePickup(context.Background(), "443322", "2026-09-01", "tok_abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "2026-09-01", result.PickupScheduledDate)
	assert.Equal(t, "998877", result.PickupTokenNumber)
}

func TestShiprocketAdapter_GetTracking(t *testing.T) {
	adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/courier/track/awb/AWB555", r.URL.Path)
		w.Write([]byte(`{
			"tracking_data": {
				"track_status": 1,
				"shipment_status": 7,
				"shipment_track_activities": [
					{"date": "2026-08-27 10:15:00", "sr-status": "6", "sr-status-label": "Picked Up", "activity": "Shipment picked up", "location": "Mumbai Hub"},
					{"date": "2026-08-29 14:30:00", "sr-status": "7", "sr-status-label": "Delivered", "activity": "Shipment delivered", "location": "Pune"}
				]
			}
		}`))
	})

	result, err := adapter.GetTracking(context.Background(), "AWB555", "tok_abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "7", result.CurrentStatusCode)
	require.Len(t, result.Events, 2)

	first := result.Events[0]
	assert.Equal(t, "6", first.StatusCode)
	assert.Equal(t, "Picked Up", first.Status)
	assert.Equal(t, "Mumbai Hub", first.Location)
	assert.Equal(t, "Mumbai Hub", first.City)
	assert.False(t, first.Timestamp.IsZero())
	assert.NotEmpty(t, first.RawPayload)

	mapped, ok := shipping.MapCarrierStatus(result.Events[1].StatusCode)
	require.True(t, ok)
	assert.Equal(t, shipping.ShipmentStatusDelivered, mapped)
}

func TestShiprocketAdapter_CheckServiceability(t *testing.T) {
	t.Run("serviceable lane", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/courier/serviceability/", r.URL.Path)
			assert.Equal(t, "560001", r.URL.Query().Get("pickup_postcode"))
			assert.Equal(t, "411001", r.URL.Query().Get("delivery_postcode"))
			assert.Equal(t, "0.5", r.URL.Query().Get("weight"))
			assert.Equal(t, "1", r.URL.Query().Get("cod"))

			w.Write([]byte(`{"status":200,"data":{"available_courier_companies":[
				{"courier_company_id":5,"courier_name":"BlueDart","estimated_delivery_days":"2","freight_charge":85.5,"cod_charges":30,"rate":115.5,"cod":1}
			]}}`))
		})

		result, err := adapter.CheckServiceability(context.Background(), &shipping.ServiceabilityParams{
			PickupPincode:   "560001",
			DeliveryPincode: "411001",
			WeightGrams:     500,
			IsCOD:           true,
		}, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Serviceable)
		require.Len(t, result.AvailableCouriers, 1)

		courier := result.AvailableCouriers[0]
		assert.Equal(t, 5, courier.CourierID)
		assert.Equal(t, 2, courier.EstimatedDays)
		assert.True(t, courier.TotalCharge.Equal(decimal.NewFromFloat(115.5)))
		assert.True(t, courier.IsCODAvailable)
	})

	t.Run("no couriers means not serviceable", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":200,"data":{"available_courier_companies":[]}}`))
		})

		result, err := adapter.CheckServiceability(context.Background(), &shipping.ServiceabilityParams{
			PickupPincode:   "560001",
			DeliveryPincode: "999999",
			WeightGrams:     500,
		}, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.False(t, result.Serviceable)
	})
}

func TestShiprocketAdapter_HandleNDR(t *testing.T) {
	t.Run("reattempt", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ndr/reattempt", r.URL.Path)

			var body shiprocketNDRRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "AWB555", body.AWB)
			assert.Equal(t, "2026-09-02", body.ReAttemptDate)

			w.Write([]byte(`{"success":true}`))
		})

		result, err := adapter.HandleNDR(context.Background(), &shipping.NDRActionParams{
			AWBNumber:     "AWB555",
			Action:        shipping.NDRActionReattempt,
			ReattemptDate: "2026-09-02",
		}, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("return to origin", func(t *testing.T) {
		adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/ndr/rto", r.URL.Path)
			w.Write([]byte(`{"success":true}`))
		})

		result, err := adapter.HandleNDR(context.Background(), &shipping.NDRActionParams{
			AWBNumber: "AWB555",
			Action:    shipping.NDRActionRTO,
		}, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}

func TestShiprocketAdapter_CancelShipment(t *testing.T) {
	adapter := newShiprocketTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/cancel", r.URL.Path)

		var body shiprocketCancelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"443344"}, body.IDs)

		w.Write([]byte(`{"message":"Order cancelled successfully"}`))
	})

	result, err := adapter.CancelShipment(context.Background(), &shipping.CancelParams{
		CarrierOrderID: "443344",
		AWBNumber:      "AWB555",
	}, "tok_abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
}
