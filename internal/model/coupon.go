package model

import "time"

// DiscountType identifies how a coupon discounts the cart.
type DiscountType string

const (
	DiscountFixedCart    DiscountType = "fixed_cart"
	DiscountPercent      DiscountType = "percent"
	DiscountFixedProduct DiscountType = "fixed_product"
)

// Valid reports whether the discount type is one the engine understands.
func (d DiscountType) Valid() bool {
	switch d {
	case DiscountFixedCart, DiscountPercent, DiscountFixedProduct:
		return true
	}
	return false
}

// Coupon represents a discount rule and its native eligibility restrictions.
// ProductCategories and ExcludedProductCategories are the engine's own
// exact-match category restrictions.
type Coupon struct {
	ID                        int64        `json:"id" db:"id"`
	Code                      string       `json:"code" db:"code"`
	DiscountType              DiscountType `json:"discountType" db:"discount_type"`
	ProductCategories         []int64      `json:"productCategories,omitempty" db:"product_categories"`
	ExcludedProductCategories []int64      `json:"excludedProductCategories,omitempty" db:"excluded_product_categories"`
	CreatedAt                 time.Time    `json:"createdAt" db:"created_at"`
}

// IsProductScoped reports whether the coupon discounts individual products
// rather than the whole cart.
func (c *Coupon) IsProductScoped() bool {
	return c.DiscountType == DiscountPercent || c.DiscountType == DiscountFixedProduct
}

// CouponApplication is the outcome of successfully applying a coupon.
type CouponApplication struct {
	CouponCode         string  `json:"couponCode"`
	DiscountType       string  `json:"discountType"`
	EligibleProductIDs []int64 `json:"eligibleProductIds"`
}

// CouponValidationRequest is the request payload for validating a coupon
// against a prospective cart.
type CouponValidationRequest struct {
	CouponCode string             `json:"couponCode"`
	Items      []OrderItemRequest `json:"items"`
}
