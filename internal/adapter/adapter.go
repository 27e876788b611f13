// Package adapter subscribes the category restriction evaluator to the
// coupon engine's extension points.
package adapter

import (
	"context"

	"category-coupons/internal/coupon"
	"category-coupons/internal/engine"
	"category-coupons/internal/model"

	"github.com/rs/zerolog"
)

// Adapter connects a coupon.Evaluator to an engine.Engine.
type Adapter struct {
	evaluator *coupon.Evaluator
	messenger *coupon.Messenger
	logger    zerolog.Logger
}

// New creates a new adapter.
func New(evaluator *coupon.Evaluator, messenger *coupon.Messenger, logger zerolog.Logger) *Adapter {
	return &Adapter{
		evaluator: evaluator,
		messenger: messenger,
		logger:    logger.With().Str("component", "restriction-adapter").Logger(),
	}
}

// Register subscribes the adapter's filters to e.
func (a *Adapter) Register(e *engine.Engine) {
	e.OnCouponValid(a.ValidateCart)
	e.OnCouponValidForProduct(a.ValidateProduct)
	e.OnCouponError(a.RewriteError)

	a.logger.Info().
		Strs("hooks", []string{
			engine.HookCouponIsValid,
			engine.HookCouponIsValidForProduct,
			engine.HookCouponError,
		}).
		Msg("category restriction filters registered")
}

// ValidateCart checks whole-cart coupons against the cart's categories.
// Product-scoped coupons are checked per line by ValidateProduct instead.
func (a *Adapter) ValidateCart(ctx context.Context, valid bool, c *model.Coupon, lines []model.LineItem) (bool, error) {
	if !valid || c.IsProductScoped() {
		return valid, nil
	}

	f := a.evaluator.Check(ctx, c.ID, coupon.CartContext(lines))
	if f == nil {
		return true, nil
	}

	a.logger.Debug().
		Str("coupon_code", c.Code).
		Str("tag", string(f.Tag)).
		Msg("cart rejected by category restriction")

	return false, a.messenger.Error(c, f)
}

// ValidateProduct checks one line's product against the coupon.
func (a *Adapter) ValidateProduct(ctx context.Context, valid bool, p *model.Product, c *model.Coupon, line model.LineItem) bool {
	if !valid {
		return false
	}
	return a.evaluator.Check(ctx, c.ID, coupon.ProductContext(p)) == nil
}

// RewriteError replaces the engine's generic "not applicable" message with
// a classified one, but only when every cart line fails the category
// restrictions. Otherwise the failure belongs to some other check and the
// message is left alone.
func (a *Adapter) RewriteError(ctx context.Context, message string, code int, c *model.Coupon, cart *model.Cart) string {
	if code != model.CouponErrNotApplicable || c == nil || cart == nil {
		return message
	}

	f := a.evaluator.Reconcile(ctx, c.ID, cart.Lines)
	if f == nil {
		return message
	}

	a.logger.Debug().
		Str("coupon_code", c.Code).
		Str("tag", string(f.Tag)).
		Msg("not applicable error attributed to category restriction")

	return a.messenger.Message(c, f)
}
