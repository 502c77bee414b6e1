package dto

import "net/http"

// Error codes surfaced by the API that do not originate in the domain
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeReconcile  = "RECONCILE_FAILED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes absent from the map fall back to 422: they describe business
// rules the request violated, not a broken server.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeReconcile:  http.StatusInternalServerError,

	"NOT_FOUND":       http.StatusNotFound,
	"INVALID_PRODUCT": http.StatusNotFound,

	"VALIDATION_FAILED":  http.StatusBadRequest,
	"INVALID_INPUT":      http.StatusBadRequest,
	"INVALID_QUANTITY":   http.StatusBadRequest,
	"INVALID_PRICE":      http.StatusBadRequest,
	"INVALID_UNIT_TYPE":  http.StatusBadRequest,
	"INVALID_PACKAGING":  http.StatusBadRequest,
	"INVALID_TAX_RATE":   http.StatusBadRequest,
	"MISSING_MULTIPLIER": http.StatusBadRequest,
	"NO_ITEMS":           http.StatusBadRequest,

	"ALREADY_EXISTS":       http.StatusConflict,
	"DUPLICATE_OPERATION":  http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
