package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ShipmentSortFields contains allowed sort fields for shipments
var ShipmentSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"shipment_number": true,
	"awb_number":      true,
	"carrier_name":    true,
	"status":          true,
	"ndr_status":      true,
	"picked_up_at":    true,
	"delivered_at":    true,
}

// CarrierAccountSortFields contains allowed sort fields for carrier accounts
var CarrierAccountSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"provider":   true,
	"active":     true,
}

// SalesOrderSortFields contains allowed sort fields for sales orders
var SalesOrderSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"order_number":       true,
	"customer_name":      true,
	"status":             true,
	"fulfillment_status": true,
	"total":              true,
}

// CODRemittanceSortFields contains allowed sort fields for COD remittances
var CODRemittanceSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"remittance_number": true,
	"carrier_name":      true,
	"total_amount":      true,
	"remitted_at":       true,
}
