package adapter

import (
	"context"
	"testing"

	"category-coupons/internal/coupon"
	"category-coupons/internal/engine"
	"category-coupons/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type metaStore map[coupon.MetaKey][]int64

func (m metaStore) CategoryList(ctx context.Context, couponID int64, key coupon.MetaKey) ([]int64, error) {
	return m[key], nil
}

// shoeTaxonomy is Shoes(1) -> Sneakers(2) -> Running(3).
type shoeTaxonomy struct{}

func (shoeTaxonomy) Descendants(ctx context.Context, categoryID int64) ([]int64, error) {
	switch categoryID {
	case 1:
		return []int64{2, 3}, nil
	case 2:
		return []int64{3}, nil
	}
	return nil, nil
}

func newEngine(meta metaStore) *engine.Engine {
	logger := zerolog.Nop()
	loader := coupon.NewRestrictionLoader(meta, shoeTaxonomy{}, logger)
	evaluator := coupon.NewEvaluator(loader, nil, logger)
	e := engine.New(nil, logger)
	New(evaluator, coupon.NewMessenger(logger), logger).Register(e)
	return e
}

func cartOf(products ...*model.Product) *model.Cart {
	cart := &model.Cart{}
	for _, p := range products {
		cart.Lines = append(cart.Lines, model.LineItem{Key: p.Name, Product: p, Quantity: 1})
	}
	return cart
}

func couponError(t *testing.T, err error) *model.CouponError {
	t.Helper()
	var ce *model.CouponError
	require.ErrorAs(t, err, &ce)
	return ce
}

var (
	running = &model.Product{ID: 1, Name: "running", CategoryIDs: []int64{3}}
	hat     = &model.Product{ID: 2, Name: "hat", CategoryIDs: []int64{10}}
	scarf   = &model.Product{ID: 3, Name: "scarf", CategoryIDs: []int64{11}}
)

const (
	msgNotValid = "This coupon is not valid for the product categories in your cart."
	msgExcluded = "This coupon cannot be used with some product categories in your cart."
	msgGeneric  = "Sorry, this coupon is not applicable to your cart contents."
)

func TestAdapter_CartMode(t *testing.T) {
	tests := []struct {
		name    string
		meta    metaStore
		cart    *model.Cart
		message string
	}{
		{
			name: "Descendant of allowed subtree passes",
			meta: metaStore{coupon.MetaAllowedWithChildren: {1}},
			cart: cartOf(running),
		},
		{
			name:    "Exact allow does not include descendants",
			meta:    metaStore{coupon.MetaAllowedExact: {1}},
			cart:    cartOf(running),
			message: msgNotValid,
		},
		{
			name:    "Descendant of excluded subtree fails",
			meta:    metaStore{coupon.MetaExcludedWithChildren: {2}},
			cart:    cartOf(running),
			message: msgExcluded,
		},
		{
			name: "No restrictions",
			meta: metaStore{},
			cart: cartOf(hat),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(tt.meta)
			c := &model.Coupon{ID: 7, Code: "CART5", DiscountType: model.DiscountFixedCart}

			res, err := e.ValidateCart(context.Background(), c, tt.cart)

			if tt.message == "" {
				require.NoError(t, err)
				assert.NotNil(t, res)
				return
			}
			ce := couponError(t, err)
			assert.Equal(t, model.CouponErrInvalidFiltered, ce.Code)
			assert.Equal(t, tt.message, ce.Message)
		})
	}
}

func TestAdapter_ProductMode(t *testing.T) {
	e := newEngine(metaStore{coupon.MetaAllowedWithChildren: {1}})
	c := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountPercent}

	res, err := e.ValidateCart(context.Background(), c, cartOf(running, hat))

	require.NoError(t, err)
	assert.Equal(t, []int64{1}, res.EligibleProductIDs())
}

func TestAdapter_ProductModeRespectsNativeVerdict(t *testing.T) {
	e := newEngine(metaStore{coupon.MetaAllowedWithChildren: {1}})
	// Natively restricted to hats; ours only allows shoes.
	c := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountPercent, ProductCategories: []int64{10}}

	assert.False(t, e.IsValidForProduct(context.Background(), c, model.LineItem{Product: running}))
	assert.False(t, e.IsValidForProduct(context.Background(), c, model.LineItem{Product: hat}))
}

func TestAdapter_SingleItemCartAgreement(t *testing.T) {
	meta := metaStore{coupon.MetaAllowedWithChildren: {2}, coupon.MetaExcludedExact: {11}}
	e := newEngine(meta)
	cartCoupon := &model.Coupon{ID: 7, Code: "CART5", DiscountType: model.DiscountFixedCart}
	productCoupon := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountFixedProduct}

	for _, p := range []*model.Product{running, hat, scarf} {
		_, cartErr := e.ValidateCart(context.Background(), cartCoupon, cartOf(p))
		productValid := e.IsValidForProduct(context.Background(), productCoupon, model.LineItem{Product: p})
		assert.Equal(t, cartErr == nil, productValid, "product %s", p.Name)
	}
}

func TestAdapter_Reconciliation_OneLinePassesKeepsGenericMessage(t *testing.T) {
	e := newEngine(metaStore{coupon.MetaAllowedWithChildren: {1}})
	// The hat fails our restriction; the running shoe passes ours but fails
	// the engine's native category restriction.
	c := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountPercent, ProductCategories: []int64{10}}

	_, err := e.ValidateCart(context.Background(), c, cartOf(hat, running))

	ce := couponError(t, err)
	assert.Equal(t, model.CouponErrNotApplicable, ce.Code)
	assert.Equal(t, msgGeneric, ce.Message)
}

func TestAdapter_Reconciliation_AllLinesFailRewritesMessage(t *testing.T) {
	e := newEngine(metaStore{coupon.MetaAllowedWithChildren: {1}})
	c := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountPercent}

	_, err := e.ValidateCart(context.Background(), c, cartOf(hat, scarf))

	ce := couponError(t, err)
	assert.Equal(t, model.CouponErrNotApplicable, ce.Code)
	assert.Equal(t, msgNotValid, ce.Message)
}

func TestAdapter_Reconciliation_ExcludeTagMessage(t *testing.T) {
	e := newEngine(metaStore{coupon.MetaExcludedWithChildren: {2}})
	c := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountPercent}

	_, err := e.ValidateCart(context.Background(), c, cartOf(running))

	ce := couponError(t, err)
	assert.Equal(t, msgExcluded, ce.Message)
}

func TestAdapter_RewriteError_OnlyNotApplicableWithCart(t *testing.T) {
	logger := zerolog.Nop()
	loader := coupon.NewRestrictionLoader(metaStore{coupon.MetaAllowedWithChildren: {1}}, shoeTaxonomy{}, logger)
	a := New(coupon.NewEvaluator(loader, nil, logger), coupon.NewMessenger(logger), logger)
	c := &model.Coupon{ID: 7, Code: "SHOES10", DiscountType: model.DiscountPercent}
	ctx := context.Background()

	assert.Equal(t, "other", a.RewriteError(ctx, "other", model.CouponErrExcludedCategories, c, cartOf(hat)))
	assert.Equal(t, "no cart", a.RewriteError(ctx, "no cart", model.CouponErrNotApplicable, c, nil))
	assert.Equal(t, "no coupon", a.RewriteError(ctx, "no coupon", model.CouponErrNotApplicable, nil, cartOf(hat)))
	assert.Equal(t, msgNotValid, a.RewriteError(ctx, msgGeneric, model.CouponErrNotApplicable, c, cartOf(hat)))
}

func TestAdapter_ValidateCart_PassesThroughInvalidAndProductScoped(t *testing.T) {
	logger := zerolog.Nop()
	loader := coupon.NewRestrictionLoader(metaStore{coupon.MetaAllowedWithChildren: {1}}, shoeTaxonomy{}, logger)
	a := New(coupon.NewEvaluator(loader, nil, logger), coupon.NewMessenger(logger), logger)
	lines := cartOf(hat).Lines
	ctx := context.Background()

	valid, err := a.ValidateCart(ctx, false, &model.Coupon{ID: 7, DiscountType: model.DiscountFixedCart}, lines)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = a.ValidateCart(ctx, true, &model.Coupon{ID: 7, DiscountType: model.DiscountPercent}, lines)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = a.ValidateCart(ctx, true, &model.Coupon{ID: 7, DiscountType: model.DiscountFixedCart}, lines)
	assert.False(t, valid)
	var ve *coupon.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, coupon.TagAllowed, ve.Tag)
}
