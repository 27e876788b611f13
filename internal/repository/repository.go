// Package repository implements PostgreSQL data access for the catalogue,
// the category forest, coupons and orders.
package repository

import (
	"context"

	"category-coupons/internal/coupon"
	"category-coupons/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// GetAll retrieves all products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. It returns nil when the
	// product does not exist.
	GetByID(ctx context.Context, id int64) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []int64) ([]model.Product, error)

	// ValidateProductsExist returns model.ErrProductNotFound if any id is
	// missing.
	ValidateProductsExist(ctx context.Context, ids []int64) error

	// CategoryIDs returns the categories attached directly to a product.
	CategoryIDs(ctx context.Context, productID int64) ([]int64, error)
}

// CategoryRepository defines read access to the category forest.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]model.Category, error)

	// Descendants returns every transitive child of categoryID, excluding
	// categoryID itself.
	Descendants(ctx context.Context, categoryID int64) ([]int64, error)

	// Upsert inserts or replaces a category.
	Upsert(ctx context.Context, c model.Category) error
}

// CouponRepository defines coupon and coupon metadata access.
type CouponRepository interface {
	// GetByCode retrieves a coupon by its code, case-insensitively. It
	// returns nil when no coupon has the code.
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)

	// Create inserts a coupon and sets its ID.
	Create(ctx context.Context, c *model.Coupon) error

	// CategoryList reads one stored category list. A missing entry is an
	// empty list; an undecodable one is ErrMalformedMeta.
	CategoryList(ctx context.Context, couponID int64, key coupon.MetaKey) ([]int64, error)

	// SaveCategoryList stores a category list, dropping duplicates and
	// non-positive ids.
	SaveCategoryList(ctx context.Context, couponID int64, key coupon.MetaKey, ids []int64) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdateCouponApplied records, per item, whether the order's coupon
	// applies to it.
	UpdateCouponApplied(ctx context.Context, orderID uuid.UUID, applied map[uuid.UUID]bool) error
}
