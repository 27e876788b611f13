// Package engine is the storefront's coupon engine. It runs the native
// coupon checks and exposes named extension points that other packages
// subscribe filters to.
package engine

import (
	"context"
	"fmt"

	"category-coupons/internal/model"

	"github.com/rs/zerolog"
)

// Extension point names.
const (
	HookCouponIsValid           = "coupon_is_valid"
	HookCouponIsValidForProduct = "coupon_is_valid_for_product"
	HookCouponError             = "coupon_error"
)

// CartFilter decides whether a coupon is valid for a set of lines. A filter
// that returns an error rejects the coupon with the error's message.
type CartFilter func(ctx context.Context, valid bool, coupon *model.Coupon, lines []model.LineItem) (bool, error)

// ProductFilter decides whether a coupon applies to one line's product.
type ProductFilter func(ctx context.Context, valid bool, product *model.Product, coupon *model.Coupon, line model.LineItem) bool

// ErrorFilter rewrites the message for a coupon error code. cart is nil when
// the coupon is validated outside a shopper's cart.
type ErrorFilter func(ctx context.Context, message string, code int, coupon *model.Coupon, cart *model.Cart) string

// CategoryResolver looks up the categories attached to a product.
type CategoryResolver interface {
	CategoryIDs(ctx context.Context, productID int64) ([]int64, error)
}

// Result lists the lines a valid coupon applies to.
type Result struct {
	EligibleLines []model.LineItem
}

// EligibleProductIDs returns the distinct product ids of eligible lines.
func (r *Result) EligibleProductIDs() []int64 {
	products := model.DistinctProducts(r.EligibleLines)
	ids := make([]int64, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

// Engine validates coupons. Filters must be registered before the engine
// serves requests; validation itself holds no mutable state.
type Engine struct {
	resolver       CategoryResolver
	cartFilters    []CartFilter
	productFilters []ProductFilter
	errorFilters   []ErrorFilter
	logger         zerolog.Logger
}

// New creates a new coupon engine.
func New(resolver CategoryResolver, logger zerolog.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		logger:   logger.With().Str("component", "coupon-engine").Logger(),
	}
}

// OnCouponValid subscribes f to HookCouponIsValid.
func (e *Engine) OnCouponValid(f CartFilter) {
	e.cartFilters = append(e.cartFilters, f)
}

// OnCouponValidForProduct subscribes f to HookCouponIsValidForProduct.
func (e *Engine) OnCouponValidForProduct(f ProductFilter) {
	e.productFilters = append(e.productFilters, f)
}

// OnCouponError subscribes f to HookCouponError.
func (e *Engine) OnCouponError(f ErrorFilter) {
	e.errorFilters = append(e.errorFilters, f)
}

// ValidateCart checks whether coupon can be applied to a shopper's cart. A
// rejected coupon is reported as a *model.CouponError.
func (e *Engine) ValidateCart(ctx context.Context, coupon *model.Coupon, cart *model.Cart) (*Result, error) {
	var lines []model.LineItem
	if cart != nil {
		lines = cart.Lines
	}
	return e.validate(ctx, coupon, lines, cart)
}

// ValidateOrder checks coupon against stored order lines, as done when an
// order is recalculated.
func (e *Engine) ValidateOrder(ctx context.Context, coupon *model.Coupon, lines []model.LineItem) (*Result, error) {
	return e.validate(ctx, coupon, lines, nil)
}

func (e *Engine) validate(ctx context.Context, coupon *model.Coupon, lines []model.LineItem, cart *model.Cart) (*Result, error) {
	if coupon == nil {
		return nil, &model.CouponError{
			Code:    model.CouponErrNotExist,
			Message: e.errorMessage(ctx, model.CouponErrNotExist, nil, cart),
		}
	}

	logger := e.logger.With().Str("coupon_code", coupon.Code).Logger()

	if !coupon.IsProductScoped() {
		if code := e.checkCartCategories(ctx, coupon, lines); code != 0 {
			logger.Debug().Int("error_code", code).Msg("coupon failed native category check")
			return nil, e.reject(ctx, code, coupon, cart)
		}
	}

	eligible := lines
	if coupon.IsProductScoped() {
		eligible = make([]model.LineItem, 0, len(lines))
		for _, line := range lines {
			if e.IsValidForProduct(ctx, coupon, line) {
				eligible = append(eligible, line)
			}
		}
		if len(eligible) == 0 {
			logger.Debug().Int("line_count", len(lines)).Msg("coupon applies to no cart line")
			return nil, e.reject(ctx, model.CouponErrNotApplicable, coupon, cart)
		}
	}

	valid := true
	for _, f := range e.cartFilters {
		ok, err := f(ctx, valid, coupon, lines)
		if err != nil {
			logger.Debug().Err(err).Msg("coupon rejected by filter")
			return nil, &model.CouponError{Code: model.CouponErrInvalidFiltered, Message: err.Error()}
		}
		valid = ok
	}
	if !valid {
		return nil, e.reject(ctx, model.CouponErrInvalidFiltered, coupon, cart)
	}

	logger.Debug().
		Int("line_count", len(lines)).
		Int("eligible_count", len(eligible)).
		Msg("coupon valid")

	return &Result{EligibleLines: eligible}, nil
}

// IsValidForProduct reports whether coupon applies to line's product. Only
// product-scoped coupons apply to individual products.
func (e *Engine) IsValidForProduct(ctx context.Context, coupon *model.Coupon, line model.LineItem) bool {
	if line.Product == nil {
		return false
	}

	valid := false
	if coupon.IsProductScoped() {
		cats := e.productCategories(ctx, line.Product)
		valid = len(coupon.ProductCategories) == 0 || intersects(coupon.ProductCategories, cats)
		if valid && intersects(coupon.ExcludedProductCategories, cats) {
			valid = false
		}
	}

	for _, f := range e.productFilters {
		valid = f(ctx, valid, line.Product, coupon, line)
	}
	return valid
}

// ErrorMessage returns the shopper-facing message for code after every
// error filter has run.
func (e *Engine) ErrorMessage(ctx context.Context, code int, coupon *model.Coupon, cart *model.Cart) string {
	return e.errorMessage(ctx, code, coupon, cart)
}

func (e *Engine) errorMessage(ctx context.Context, code int, coupon *model.Coupon, cart *model.Cart) string {
	msg := defaultErrorMessage(code, coupon)
	for _, f := range e.errorFilters {
		msg = f(ctx, msg, code, coupon, cart)
	}
	return msg
}

func (e *Engine) reject(ctx context.Context, code int, coupon *model.Coupon, cart *model.Cart) *model.CouponError {
	return &model.CouponError{Code: code, Message: e.errorMessage(ctx, code, coupon, cart)}
}

// checkCartCategories runs the native category restrictions of a whole-cart
// coupon and returns the failing error code, or 0.
func (e *Engine) checkCartCategories(ctx context.Context, coupon *model.Coupon, lines []model.LineItem) int {
	if len(coupon.ProductCategories) == 0 && len(coupon.ExcludedProductCategories) == 0 {
		return 0
	}

	matched := false
	for _, p := range model.DistinctProducts(lines) {
		cats := e.productCategories(ctx, p)
		if intersects(coupon.ExcludedProductCategories, cats) {
			return model.CouponErrExcludedCategories
		}
		if intersects(coupon.ProductCategories, cats) {
			matched = true
		}
	}
	if len(coupon.ProductCategories) > 0 && !matched {
		return model.CouponErrNotApplicable
	}
	return 0
}

func (e *Engine) productCategories(ctx context.Context, p *model.Product) map[int64]struct{} {
	cats := make(map[int64]struct{}, len(p.CategoryIDs))
	for _, id := range p.CategoryIDs {
		cats[id] = struct{}{}
	}
	if !p.IsVariation() || e.resolver == nil {
		return cats
	}
	parentCats, err := e.resolver.CategoryIDs(ctx, p.ParentID)
	if err != nil {
		e.logger.Warn().Err(err).Int64("parent_id", p.ParentID).Msg("failed to load parent product categories")
		return cats
	}
	for _, id := range parentCats {
		cats[id] = struct{}{}
	}
	return cats
}

func intersects(ids []int64, cats map[int64]struct{}) bool {
	for _, id := range ids {
		if _, ok := cats[id]; ok {
			return true
		}
	}
	return false
}

func defaultErrorMessage(code int, coupon *model.Coupon) string {
	switch code {
	case model.CouponErrNotExist:
		if coupon == nil {
			return "Coupon does not exist!"
		}
		return fmt.Sprintf("Coupon %q does not exist!", coupon.Code)
	case model.CouponErrNotApplicable:
		return "Sorry, this coupon is not applicable to your cart contents."
	case model.CouponErrExcludedCategories:
		return "Sorry, this coupon is not applicable to the categories in your cart."
	default:
		return "Coupon is not valid."
	}
}
