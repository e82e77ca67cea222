package shipping

// Carrier status-code mapping shared by the pull-sync and webhook ingestion
// paths. Both paths must produce the identical canonical status for a given
// code; unmapped codes leave the local status untouched.
var carrierStatusMap = map[string]ShipmentStatus{
	"1":  ShipmentStatusCreated,
	"2":  ShipmentStatusPickupScheduled,
	"6":  ShipmentStatusPickedUp,
	"17": ShipmentStatusInTransit,
	"18": ShipmentStatusInTransit,
	"7":  ShipmentStatusDelivered,
	"8":  ShipmentStatusCancelled,
	"9":  ShipmentStatusRTOInitiated,
	"10": ShipmentStatusRTODelivered,
	"19": ShipmentStatusOutForDelivery,
	"12": ShipmentStatusLost,
	"21": ShipmentStatusOutForDelivery, // undelivered, out with courier for reattempt
}

// NDR-indicating carrier codes; recognized on the webhook path only.
const (
	carrierCodeNDROutForDelivery = "21"
	carrierCodeNDRHeld           = "22"
)

// MapCarrierStatus maps a carrier status code onto the canonical status.
// ok is false for unknown codes, which callers must ignore rather than guess.
func MapCarrierStatus(code string) (ShipmentStatus, bool) {
	status, ok := carrierStatusMap[code]
	return status, ok
}

// IsNDRCode reports whether a carrier status code signals a non-delivery
// report requiring merchant action
func IsNDRCode(code string) bool {
	return code == carrierCodeNDROutForDelivery || code == carrierCodeNDRHeld
}
