package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error           string `json:"error"`
	Message         string `json:"message"`
	CouponErrorCode int    `json:"couponErrorCode,omitempty"`
	CorrelationID   string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeCouponNotFound   = "COUPON_NOT_FOUND"
	ErrCodeCouponInvalid    = "COUPON_INVALID"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound    = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity  = "INVALID_QUANTITY"
	ErrCodeUnauthorised     = "UNAUTHORIZED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrCouponNotFound  = NewDomainError(ErrCodeCouponNotFound, "Coupon does not exist")
	ErrProductNotFound = NewDomainError(ErrCodeProductNotFound, "One or more products not found")
	ErrOrderNotFound   = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
)

// Coupon error codes reported on the coupon engine's numeric error channel.
const (
	CouponErrInvalidFiltered    = 100
	CouponErrNotExist           = 105
	CouponErrNotApplicable      = 109
	CouponErrExcludedCategories = 114
)

// CouponError reports why a coupon could not be applied. Message is the
// shopper-facing text.
type CouponError struct {
	Code    int
	Message string
}

func (e *CouponError) Error() string {
	return fmt.Sprintf("coupon error %d: %s", e.Code, e.Message)
}
