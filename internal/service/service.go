// Package service holds the storefront's use cases: browsing products,
// applying coupons to a prospective cart and placing orders.
package service

import (
	"context"

	"category-coupons/internal/engine"
	"category-coupons/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for product management.
type ProductService interface {
	// GetAll retrieves all products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)
}

// CouponService applies coupons to prospective carts.
type CouponService interface {
	// Apply validates a coupon against the given items. A rejected coupon
	// is reported as a *model.CouponError.
	Apply(ctx context.Context, req *model.CouponValidationRequest) (*model.CouponApplication, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder creates a new order, applying the coupon when one is given.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetByID retrieves an order by its ID with all items and product details.
	GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// RecalculateCoupon re-checks the order's coupon against its stored
	// items and rewrites each item's coupon_applied flag.
	RecalculateCoupon(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)
}

// CouponEngine validates coupons. *engine.Engine implements it.
type CouponEngine interface {
	ValidateCart(ctx context.Context, coupon *model.Coupon, cart *model.Cart) (*engine.Result, error)
	ValidateOrder(ctx context.Context, coupon *model.Coupon, lines []model.LineItem) (*engine.Result, error)
}
