package model

import (
	"time"

	"github.com/google/uuid"
)

// Order represents a customer order.
type Order struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CouponCode *string   `json:"couponCode,omitempty" db:"coupon_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order.
type OrderItem struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OrderID       uuid.UUID `json:"-" db:"order_id"`
	ProductID     int64     `json:"productId" db:"product_id"`
	Quantity      int       `json:"quantity" db:"quantity"`
	CouponApplied bool      `json:"couponApplied" db:"coupon_applied"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	CouponCode *string            `json:"couponCode,omitempty"`
	Items      []OrderItemRequest `json:"items"`
}

// OrderItemRequest represents a single item in an order or cart request.
type OrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// OrderResponse represents the response payload for an order.
// CouponMessage explains why the order's coupon no longer applies to any
// item after a recalculation.
type OrderResponse struct {
	ID            uuid.UUID   `json:"id"`
	Coupon        *string     `json:"couponCode,omitempty"`
	CouponMessage string      `json:"couponMessage,omitempty"`
	Items         []OrderItem `json:"items"`
	Products      []Product   `json:"products"`
}
