// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "net/http"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Code is a stable machine-readable kind; Detail is the human message.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Validation error", Fields: fields}
}

// Stable business-conflict codes. Conflicts are never silently coerced:
// the caller always sees the kind and decides what to do.
const (
	CodeVariantUnavailable = "VARIANT_UNAVAILABLE"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeOverPayment        = "OVER_PAYMENT"
	CodeNotAccepted        = "NOT_ACCEPTED"
	CodeDuplicateBarcode   = "DUPLICATE_BARCODE"
	CodeDuplicateSerial    = "DUPLICATE_SERIAL"
	CodeDuplicateName      = "DUPLICATE_NAME"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeNotFound           = "NOT_FOUND"
)

// BusinessError is a typed business-rule violation raised by the service layer.
// Handlers map it to the right HTTP status via Status().
type BusinessError struct {
	Code   string
	Detail string
}

func (e *BusinessError) Error() string { return e.Detail }

// Status maps the business code to an HTTP status code.
func (e *BusinessError) Status() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeVariantUnavailable, CodeInsufficientStock, CodeOverPayment,
		CodeNotAccepted, CodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// Business creates a typed business-rule error.
func Business(code, detail string) *BusinessError {
	return &BusinessError{Code: code, Detail: detail}
}

// NotFound creates a typed not-found error.
func NotFound(detail string) *BusinessError {
	return &BusinessError{Code: CodeNotFound, Detail: detail}
}
