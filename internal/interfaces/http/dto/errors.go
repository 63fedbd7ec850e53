package dto

import (
	"errors"
	"net/http"

	"github.com/erp/salesengine/internal/domain/shared"
)

// Error code constants
// Format: ERR_<CATEGORY>
const (
	ErrCodeInternal          = "ERR_INTERNAL"
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeBusinessRule      = "ERR_BUSINESS_RULE"

	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
	ErrCodeUnavailable     = "ERR_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:          http.StatusInternalServerError,
	ErrCodeValidation:        http.StatusBadRequest,
	ErrCodeNotFound:          http.StatusNotFound,
	ErrCodeConflict:          http.StatusConflict,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeInvalidState:      http.StatusConflict,
	ErrCodeBusinessRule:      http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUnavailable:     http.StatusServiceUnavailable,
}

// kindErrorCodes maps each domain error kind to its API error code
var kindErrorCodes = map[shared.ErrorKind]string{
	shared.KindValidation:         ErrCodeValidation,
	shared.KindReferenceNotFound:  ErrCodeNotFound,
	shared.KindConflict:           ErrCodeConflict,
	shared.KindInsufficientStock:  ErrCodeInsufficientStock,
	shared.KindStateTransition:    ErrCodeInvalidState,
	shared.KindInvariantViolation: ErrCodeBusinessRule,
	shared.KindInternal:           ErrCodeInternal,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorCodeForKind returns the API error code of a domain error kind
func ErrorCodeForKind(kind shared.ErrorKind) string {
	if code, ok := kindErrorCodes[kind]; ok {
		return code
	}
	return ErrCodeInternal
}

// NewDomainErrorResponse converts err into an error body and its HTTP status.
// Errors that carry no DomainError are reported as internal without their message.
func NewDomainErrorResponse(err error, requestID string) (int, Response) {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) || domainErr.Kind == shared.KindInternal {
		code := ErrCodeInternal
		return GetHTTPStatus(code), NewErrorResponseWithRequestID(code, "An unexpected error occurred", requestID)
	}

	code := ErrorCodeForKind(domainErr.Kind)
	resp := NewErrorResponseWithRequestID(code, domainErr.Error(), requestID)
	resp.Error.Reason = domainErr.Code
	resp.Error.Line = domainErr.Line
	resp.Error.Field = domainErr.Field
	return GetHTTPStatus(code), resp
}
