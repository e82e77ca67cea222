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

func newDelhiveryTestAdapter(t *testing.T, handler http.HandlerFunc) *DelhiveryAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewDelhiveryAdapter(&DelhiveryConfig{
		APIBaseURL:     server.URL,
		PickupLocation: "Main Warehouse",
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)
	return adapter
}

func TestDelhiveryAdapter_Authenticate(t *testing.T) {
	adapter, err := NewDelhiveryAdapter(NewDelhiveryConfig())
	require.NoError(t, err)

	t.Run("static token is echoed", func(t *testing.T) {
		result, err := adapter.Authenticate(context.Background(), "static_token", "")
		require.NoError(t, err)
		assert.Equal(t, "static_token", result.Token)
		assert.False(t, result.ExpiresAt.IsZero())
	})

	t.Run("empty token rejected", func(t *testing.T) {
		_, err := adapter.Authenticate(context.Background(), "", "")
		assert.ErrorIs(t, err, shipping.ErrCarrierAuthFailed)
	})
}

func TestDelhiveryAdapter_CreateOrder(t *testing.T) {
	cod := decimal.NewFromInt(899)
	params := &shipping.CreateOrderParams{
		OrderNumber:     "SO-1001",
		ShippingName:    "Asha Rao",
		ShippingPhone:   "9876543210",
		ShippingAddress: "12 MG Road",
		ShippingCity:    "Bengaluru",
		ShippingState:   "Karnataka",
		ShippingPincode: "560001",
		PaymentMethod:   "COD",
		CODAmount:       &cod,
		SubTotal:        decimal.NewFromInt(899),
		WeightGrams:     500,
		LengthCm:        20,
		BreadthCm:       15,
		HeightCm:        10,
		Items: []shipping.ShipmentItem{
			{Name: "Blue Kurta", SKU: "KUR-BL-M", Units: 1, SellingPrice: decimal.NewFromInt(899)},
		},
	}

	t.Run("manifest accepted with waybill", func(t *testing.T) {
		adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cmu/create.json", r.URL.Path)
			assert.Equal(t, "Token tok_abc", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "json", r.PostFormValue("format"))

			var manifest delhiveryManifestData
			require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("data")), &manifest))
			require.Len(t, manifest.Shipments, 1)
			assert.Equal(t, "SO-1001", manifest.Shipments[0].Order)
			assert.Equal(t, "COD", manifest.Shipments[0].PaymentMode)
			assert.Equal(t, "899.00", manifest.Shipments[0].CODAmount)
			assert.Equal(t, "500", manifest.Shipments[0].Weight) // grams, unconverted
			assert.Equal(t, "Main Warehouse", manifest.PickupLocation.Name)

			w.Write([]byte(`{"success":true,"packages":[{"status":"Success","waybill":"DL123456789","refnum":"SO-1001"}]}`))
		})

		result, err := adapter.CreateOrder(context.Background(), params, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "SO-1001", result.CarrierOrderID)
		assert.Equal(t, "DL123456789", result.ShipmentID)
	})

	t.Run("manifest rejected", func(t *testing.T) {
		adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"rmk":"Pincode not serviceable","packages":[]}`))
		})

		result, err := adapter.CreateOrder(context.Background(), params, "tok_abc")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Pincode not serviceable", result.Error)
	})
}

func TestDelhiveryAdapter_AssignAWB(t *testing.T) {
	adapter, err := NewDelhiveryAdapter(NewDelhiveryConfig())
	require.NoError(t, err)

	t.Run("waybill from manifest becomes the AWB", func(t *testing.T) {
		result, err := adapter.AssignAWB(context.Background(), "DL123456789", nil, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "DL123456789", result.AWBNumber)
		assert.Equal(t, "Delhivery", result.CourierName)
	})

	t.Run("missing waybill fails", func(t *testing.T) {
		result, err := adapter.AssignAWB(context.Background(), "", nil, "tok_abc")
		require.NoError(t, err)
		assert.False(t, result.Success)
	})
}

func TestDelhiveryAdapter_GetTracking(t *testing.T) {
	adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/packages/json/", r.URL.Path)
		assert.Equal(t, "DL123456789", r.URL.Query().Get("waybill"))

		w.Write([]byte(`{"ShipmentData":[{"Shipment":{
			"AWB":"DL123456789",
			"Status":{"Status":"Delivered","StatusType":"DL","StatusDateTime":"2026-08-29T14:30:00.000000","StatusLocation":"Pune"},
			"Scans":[
				{"ScanDetail":{"Scan":"Picked Up","ScanType":"UD","ScanDateTime":"2026-08-27T10:15:00.000000","ScannedLocation":"Mumbai Hub","Instructions":"Shipment picked up"}},
				{"ScanDetail":{"Scan":"Delivered","ScanType":"DL","ScanDateTime":"2026-08-29T14:30:00.000000","ScannedLocation":"Pune","Instructions":"Delivered to consignee"}}
			]
		}}]}`))
	})

	result, err := adapter.GetTracking(context.Background(), "DL123456789", "tok_abc")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "7", result.CurrentStatusCode)
	require.Len(t, result.Events, 2)
	assert.Equal(t, "6", result.Events[0].StatusCode)
	assert.Equal(t, "7", result.Events[1].StatusCode)
	assert.False(t, result.Events[0].Timestamp.IsZero())
}

func TestMapDelhiveryStatus(t *testing.T) {
	cases := []struct {
		status     string
		statusType string
		want       string
	}{
		{"Manifested", "UD", "1"},
		{"Picked Up", "UD", "6"},
		{"In Transit", "UD", "18"},
		{"Dispatched", "UD", "19"},
		{"Delivered", "DL", "7"},
		{"Delivered", "RT", "10"},
		{"RTO Initiated", "RT", "9"},
		{"Pending", "UD", "21"},
		{"Lost", "UD", "12"},
		{"Unknown Scan", "UD", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, mapDelhiveryStatus(tc.status, tc.statusType), "%s/%s", tc.status, tc.statusType)
	}
}

func TestDelhiveryAdapter_CheckServiceability(t *testing.T) {
	t.Run("COD lane without COD support", func(t *testing.T) {
		adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/c/api/pin-codes/json/", r.URL.Path)
			w.Write([]byte(`{"delivery_codes":[{"postal_code":{"pin":411001,"pre_paid":"Y","cod":"N"}}]}`))
		})

		result, err := adapter.CheckServiceability(context.Background(), &shipping.ServiceabilityParams{
			DeliveryPincode: "411001",
			IsCOD:           true,
		}, "tok_abc")
		require.NoError(t, err)
		assert.False(t, result.Serviceable)
	})

	t.Run("serviceable pincode", func(t *testing.T) {
		adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"delivery_codes":[{"postal_code":{"pin":411001,"pre_paid":"Y","cod":"Y"}}]}`))
		})

		result, err := adapter.CheckServiceability(context.Background(), &shipping.ServiceabilityParams{
			DeliveryPincode: "411001",
		}, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Serviceable)
		require.Len(t, result.AvailableCouriers, 1)
		assert.Equal(t, "Delhivery", result.AvailableCouriers[0].CourierName)
	})
}

func TestDelhiveryAdapter_CancelShipment(t *testing.T) {
	t.Run("keys the edit API on the waybill", func(t *testing.T) {
		adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/p/edit", r.URL.Path)

			var body delhiveryEditRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "DL123456789", body.Waybill)
			assert.Equal(t, "true", body.Cancellation)

			w.Write([]byte(`{"status":true}`))
		})

		result, err := adapter.CancelShipment(context.Background(), &shipping.CancelParams{
			CarrierOrderID: "SO-1001",
			AWBNumber:      "DL123456789",
		}, "tok_abc")
		require.NoError(t, err)
		assert.True(t, result.Success)
	})

	t.Run("refuses without a waybill", func(t *testing.T) {
		adapter := newDelhiveryTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no API call expected without a waybill")
		})

		result, err := adapter.CancelShipment(context.Background(), &shipping.CancelParams{
			CarrierOrderID: "SO-1001",
		}, "tok_abc")
		require.NoError(t, err)
		assert.False(t, result.Success)
	})
}
