package carrier

import "github.com/shopspring/decimal"

// delhiveryShipment is one shipment in the manifest request
type delhiveryShipment struct {
	Name         string `json:"name"`
	Add          string `json:"add"`
	Pin          string `json:"pin"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Order        string `json:"order"`
	PaymentMode  string `json:"payment_mode"`
	CODAmount    string `json:"cod_amount,omitempty"`
	TotalAmount  string `json:"total_amount"`
	ProductsDesc string `json:"products_desc"`
	HSNCode      string `json:"hsn_code,omitempty"`
	Quantity     string `json:"quantity"`

	// Weight is grams, dimensions are centimetres
	Weight         string `json:"weight"`
	ShipmentLength string `json:"shipment_length"`
	ShipmentWidth  string `json:"shipment_width"`
	ShipmentHeight string `json:"shipment_height"`
}

// delhiveryManifestData is the JSON payload carried in the create request's
// form-encoded "data" field
type delhiveryManifestData struct {
	Shipments      []delhiveryShipment `json:"shipments"`
	PickupLocation struct {
		Name string `json:"name"`
	} `json:"pickup_location"`
}

// delhiveryManifestResponse is the /api/cmu/create.json response body
type delhiveryManifestResponse struct {
	Success  bool   `json:"success"`
	RMK      string `json:"rmk"`
	Packages []struct {
		Status  string `json:"status"`
		Waybill string `json:"waybill"`
		RefNum  string `json:"refnum"`
		Remarks any    `json:"remarks"`
	} `json:"packages"`
}

// delhiveryLabelResponse is the /api/p/packing_slip response body
type delhiveryLabelResponse struct {
	Packages []struct {
		Waybill         string `json:"wbn"`
		PDFDownloadLink string `json:"pdf_download_link"`
	} `json:"packages"`
}

// delhiveryPickupRequest is the /fm/request/new/ request body
type delhiveryPickupRequest struct {
	PickupLocation       string `json:"pickup_location"`
	PickupDate           string `json:"pickup_date"`
	PickupTime           string `json:"pickup_time"`
	ExpectedPackageCount int    `json:"expected_package_count"`
}

// delhiveryPickupResponse is the /fm/request/new/ response body
type delhiveryPickupResponse struct {
	PickupID   int64  `json:"pickup_id"`
	PickupDate string `json:"pickup_date"`
}

// delhiveryScan is one scan in the tracking response
type delhiveryScan struct {
	ScanDetail struct {
		Scan            string `json:"Scan"`
		ScanType        string `json:"ScanType"`
		ScanDateTime    string `json:"ScanDateTime"`
		ScannedLocation string `json:"ScannedLocation"`
		Instructions    string `json:"Instructions"`
	} `json:"ScanDetail"`
}

// delhiveryTrackingResponse is the /api/v1/packages/json/ response body
type delhiveryTrackingResponse struct {
	ShipmentData []struct {
		Shipment struct {
			AWB    string `json:"AWB"`
			Status struct {
				Status       string `json:"Status"`
				StatusType   string `json:"StatusType"`
				StatusDateTime string `json:"StatusDateTime"`
				StatusLocation string `json:"StatusLocation"`
			} `json:"Status"`
			Scans []delhiveryScan `json:"Scans"`
		} `json:"Shipment"`
	} `json:"ShipmentData"`
}

// delhiveryPincodeResponse is the /c/api/pin-codes/json/ response body
type delhiveryPincodeResponse struct {
	DeliveryCodes []struct {
		PostalCode struct {
			Pin     int    `json:"pin"`
			PrePaid string `json:"pre_paid"`
			COD     string `json:"cod"`
		} `json:"postal_code"`
	} `json:"delivery_codes"`
}

// delhiveryUpdateRequest is the /api/p/update request body used for NDR
// instructions
type delhiveryUpdateRequest struct {
	Data []struct {
		Waybill string `json:"waybill"`
		Act     string `json:"act"`
	} `json:"data"`
}

// delhiveryEditRequest is the /api/p/edit request body used for cancellation
type delhiveryEditRequest struct {
	Waybill      string `json:"waybill"`
	Cancellation string `json:"cancellation"`
}

// delhiveryStatusResponse is the generic status envelope for edit/update calls
type delhiveryStatusResponse struct {
	Status bool   `json:"status"`
	Error  string `json:"error"`
}

// zeroIfNil renders a decimal pointer for Delhivery's string-typed amounts
func zeroIfNil(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
