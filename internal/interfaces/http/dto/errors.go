package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeOrderNotShippable is used when the order is not in a shippable state
	ErrCodeOrderNotShippable = "ERR_ORDER_NOT_SHIPPABLE"
	// ErrCodeShipmentTerminal is used when a shipment can no longer change state
	ErrCodeShipmentTerminal = "ERR_SHIPMENT_TERMINAL"
	// ErrCodeAWBAssigned is used when a tracking number is already present
	ErrCodeAWBAssigned = "ERR_AWB_ALREADY_ASSIGNED"
	// ErrCodeNoAWB is used when the operation needs a tracking number first
	ErrCodeNoAWB = "ERR_NO_AWB"
	// ErrCodeNoCarrierAccount is used when no carrier account is linked
	ErrCodeNoCarrierAccount = "ERR_NO_CARRIER_ACCOUNT"
)

// Carrier integration error codes
const (
	// ErrCodeCarrierRejected is used when the carrier refused the request
	ErrCodeCarrierRejected = "ERR_CARRIER_REJECTED"
	// ErrCodeCarrierUnavailable is used when the carrier API cannot be reached
	ErrCodeCarrierUnavailable = "ERR_CARRIER_UNAVAILABLE"
	// ErrCodeCarrierAuthFailed is used when carrier credentials are rejected
	ErrCodeCarrierAuthFailed = "ERR_CARRIER_AUTH_FAILED"
	// ErrCodeCarrierInvalidResponse is used when the carrier reply cannot be parsed
	ErrCodeCarrierInvalidResponse = "ERR_CARRIER_INVALID_RESPONSE"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,
	ErrCodeOrderNotShippable: http.StatusUnprocessableEntity,
	ErrCodeShipmentTerminal:  http.StatusUnprocessableEntity,
	ErrCodeNoAWB:             http.StatusUnprocessableEntity,
	ErrCodeNoCarrierAccount:  http.StatusUnprocessableEntity,
	ErrCodeAWBAssigned:       http.StatusConflict,

	// Carrier errors -> 422 for business refusals, 502 for upstream failures
	ErrCodeCarrierRejected:        http.StatusUnprocessableEntity,
	ErrCodeCarrierUnavailable:     http.StatusBadGateway,
	ErrCodeCarrierAuthFailed:      http.StatusBadGateway,
	ErrCodeCarrierInvalidResponse: http.StatusBadGateway,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Shipping domain codes
	"CARRIER_REJECTED":        ErrCodeCarrierRejected,
	"SHIPMENT_EXISTS":         ErrCodeAlreadyExists,
	"ACCOUNT_NOT_FOUND":       ErrCodeNotFound,
	"INVALID_ACCOUNT_NAME":    ErrCodeValidation,
	"INVALID_PROVIDER":        ErrCodeValidation,
	"INVALID_AWB":             ErrCodeValidation,
	"INVALID_SHIPMENT_NUMBER": ErrCodeValidation,
	"INVALID_ORDER":           ErrCodeValidation,
	"NOT_COD":                 ErrCodeInvalidState,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
