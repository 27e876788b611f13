package coupon

import (
	"context"

	"category-coupons/internal/model"

	"github.com/rs/zerolog"
)

// Mode selects how an evaluation context aggregates categories.
type Mode int

const (
	// CartMode evaluates the union of categories across every distinct
	// product in the cart.
	CartMode Mode = iota
	// ProductMode evaluates the categories of a single product.
	ProductMode
)

func (m Mode) String() string {
	if m == ProductMode {
		return "product"
	}
	return "cart"
}

// EvaluationContext is the transient input of a single evaluation.
type EvaluationContext struct {
	Mode  Mode
	Lines []model.LineItem
}

// CartContext evaluates lines as a whole cart.
func CartContext(lines []model.LineItem) EvaluationContext {
	return EvaluationContext{Mode: CartMode, Lines: lines}
}

// ProductContext evaluates a single product.
func ProductContext(product *model.Product) EvaluationContext {
	return EvaluationContext{
		Mode:  ProductMode,
		Lines: []model.LineItem{{Product: product, Quantity: 1}},
	}
}

// Result is the outcome of evaluating a bundle. The zero value passes.
type Result struct {
	Tag Tag
}

// Passed reports whether every configured check passed.
func (r Result) Passed() bool {
	return r.Tag == ""
}

// Failure describes a rejected evaluation along with the bundle that
// rejected it.
type Failure struct {
	Tag    Tag
	Bundle *Bundle
}

// Evaluate applies the configured checks to cats in fixed order and reports
// the first one that fails. Expanded checks run before exact checks, and
// allow checks before exclude checks of the same kind.
func Evaluate(b *Bundle, cats CategorySet) Result {
	if b == nil {
		return Result{}
	}
	if b.AllowedExpand.Size() > 0 && !b.AllowedExpand.Intersects(cats) {
		return Result{Tag: TagAllowed}
	}
	if b.ExcludedExpand.Size() > 0 && b.ExcludedExpand.Intersects(cats) {
		return Result{Tag: TagExcluded}
	}
	if b.AllowedExactSet.Size() > 0 && !b.AllowedExactSet.Intersects(cats) {
		return Result{Tag: TagAllowedExact}
	}
	if b.ExcludedExactSet.Size() > 0 && b.ExcludedExactSet.Intersects(cats) {
		return Result{Tag: TagExcludedExact}
	}
	return Result{}
}

// Evaluator checks carts and products against a coupon's category
// restrictions. It holds no per-call state and is safe to reuse.
type Evaluator struct {
	loader   *RestrictionLoader
	resolver CategoryResolver
	logger   zerolog.Logger
}

// NewEvaluator creates a new evaluator. resolver supplies the categories of
// a variation's parent product.
func NewEvaluator(loader *RestrictionLoader, resolver CategoryResolver, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		loader:   loader,
		resolver: resolver,
		logger:   logger.With().Str("component", "restriction-evaluator").Logger(),
	}
}

// Check evaluates the coupon's restrictions against ec. It returns nil when
// the coupon passes or has no restriction configured.
func (e *Evaluator) Check(ctx context.Context, couponID int64, ec EvaluationContext) *Failure {
	b := e.loader.Load(ctx, couponID)
	if b == nil {
		return nil
	}
	return e.check(ctx, couponID, b, ec)
}

func (e *Evaluator) check(ctx context.Context, couponID int64, b *Bundle, ec EvaluationContext) *Failure {
	// A product context holds one line, so both modes reduce to a union.
	cats := e.CartCategories(ctx, ec.Lines)

	res := Evaluate(b, cats)
	if res.Passed() {
		return nil
	}

	e.logger.Debug().
		Int64("coupon_id", couponID).
		Str("mode", ec.Mode.String()).
		Str("tag", string(res.Tag)).
		Ints64("categories", cats.IDs()).
		Msg("category restriction failed")

	return &Failure{Tag: res.Tag, Bundle: b}
}

// Reconcile decides whether this package's restrictions explain a coupon
// that was rejected as not applicable to any line. It re-runs product mode
// for every line and returns a failure only when all of them fail; the tag
// is taken from the first line. It returns nil for an empty line list.
func (e *Evaluator) Reconcile(ctx context.Context, couponID int64, lines []model.LineItem) *Failure {
	b := e.loader.Load(ctx, couponID)
	if b == nil {
		return nil
	}

	var first *Failure
	for _, p := range model.DistinctProducts(lines) {
		f := e.check(ctx, couponID, b, ProductContext(p))
		if f == nil {
			e.logger.Debug().
				Int64("coupon_id", couponID).
				Int64("product_id", p.ID).
				Msg("product passes category restrictions, leaving error untouched")
			return nil
		}
		if first == nil {
			first = f
		}
	}
	return first
}

// ProductCategories returns the categories of p, plus those of its parent
// product when p is a variation.
func (e *Evaluator) ProductCategories(ctx context.Context, p *model.Product) CategorySet {
	cats := NewCategorySet(p.CategoryIDs...)
	if !p.IsVariation() || e.resolver == nil {
		return cats
	}

	parentCats, err := e.resolver.CategoryIDs(ctx, p.ParentID)
	if err != nil {
		e.logger.Warn().
			Err(err).
			Int64("product_id", p.ID).
			Int64("parent_id", p.ParentID).
			Msg("failed to load parent product categories")
		return cats
	}
	cats.Add(parentCats...)
	return cats
}

// CartCategories returns the union of categories across every distinct
// product among lines.
func (e *Evaluator) CartCategories(ctx context.Context, lines []model.LineItem) CategorySet {
	cats := NewCategorySet()
	for _, p := range model.DistinctProducts(lines) {
		cats.Union(e.ProductCategories(ctx, p))
	}
	return cats
}
