// Package coupon evaluates category restrictions on coupons, including
// restrictions that cover a category together with all of its descendants.
package coupon

import (
	"context"
)

// MetaKey names one of the four category restriction lists stored against a
// coupon.
type MetaKey string

const (
	MetaAllowedWithChildren  MetaKey = "allowed_categories_with_children"
	MetaExcludedWithChildren MetaKey = "excluded_categories_with_children"
	MetaAllowedExact         MetaKey = "allowed_categories_exact"
	MetaExcludedExact        MetaKey = "excluded_categories_exact"
)

// MetaKeys lists every restriction key in storage order.
var MetaKeys = []MetaKey{
	MetaAllowedWithChildren,
	MetaExcludedWithChildren,
	MetaAllowedExact,
	MetaExcludedExact,
}

// MetadataStore reads a coupon's configured category restriction lists.
type MetadataStore interface {
	// CategoryList returns the ordered category ids stored under key.
	// Missing metadata may be reported as an empty list or as an error.
	CategoryList(ctx context.Context, couponID int64, key MetaKey) ([]int64, error)
}

// Taxonomy answers subtree queries against the product category tree.
type Taxonomy interface {
	// Descendants returns every transitive descendant of categoryID,
	// excluding categoryID itself.
	Descendants(ctx context.Context, categoryID int64) ([]int64, error)
}

// CategoryResolver looks up the categories attached to a product.
type CategoryResolver interface {
	CategoryIDs(ctx context.Context, productID int64) ([]int64, error)
}
