package service

import (
	"context"
	"fmt"
	"strings"

	"category-coupons/internal/model"
	"category-coupons/internal/repository"

	"github.com/rs/zerolog"
)

// couponService implements CouponService.
type couponService struct {
	couponRepo  repository.CouponRepository
	productRepo repository.ProductRepository
	engine      CouponEngine
	logger      zerolog.Logger
}

// NewCouponService creates a new coupon service.
func NewCouponService(
	couponRepo repository.CouponRepository,
	productRepo repository.ProductRepository,
	engine CouponEngine,
	logger zerolog.Logger,
) CouponService {
	return &couponService{
		couponRepo:  couponRepo,
		productRepo: productRepo,
		engine:      engine,
		logger:      logger.With().Str("service", "coupon").Logger(),
	}
}

// Apply loads the coupon and products fresh and runs the engine over the
// resulting cart.
func (s *couponService) Apply(ctx context.Context, req *model.CouponValidationRequest) (*model.CouponApplication, error) {
	if req == nil || strings.TrimSpace(req.CouponCode) == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "couponCode is required")
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	c, err := s.couponRepo.GetByCode(ctx, req.CouponCode)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_code", req.CouponCode).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	products, err := s.productRepo.GetByIDs(ctx, itemProductIDs(req.Items))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	lines, err := buildLines(req.Items, products, requestLineKey)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.ValidateCart(ctx, c, &model.Cart{Lines: lines})
	if err != nil {
		s.logger.Info().
			Err(err).
			Str("coupon_code", req.CouponCode).
			Int("line_count", len(lines)).
			Msg("coupon rejected")
		return nil, err
	}

	app := &model.CouponApplication{
		CouponCode:         c.Code,
		DiscountType:       string(c.DiscountType),
		EligibleProductIDs: res.EligibleProductIDs(),
	}

	s.logger.Debug().
		Str("coupon_code", c.Code).
		Int("eligible_products", len(app.EligibleProductIDs)).
		Msg("coupon applied")

	return app, nil
}

// validateItems checks a cart or order request's items.
func validateItems(items []model.OrderItemRequest) error {
	if len(items) == 0 {
		return model.NewDomainError(model.ErrCodeMissingField, "at least one item is required")
	}
	for i, item := range items {
		if item.ProductID <= 0 {
			return model.NewDomainError(model.ErrCodeMissingField, fmt.Sprintf("item %d: productId is required", i))
		}
		if item.Quantity <= 0 {
			return model.ErrInvalidQuantity
		}
	}
	return nil
}

func itemProductIDs(items []model.OrderItemRequest) []int64 {
	ids := make([]int64, len(items))
	for i, item := range items {
		ids[i] = item.ProductID
	}
	return distinctIDs(ids)
}

func requestLineKey(i int) string {
	return fmt.Sprintf("line-%d", i)
}

// buildLines pairs each item with its product. Every item's product must be
// present in products.
func buildLines(items []model.OrderItemRequest, products []model.Product, key func(i int) string) ([]model.LineItem, error) {
	byID := make(map[int64]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]model.LineItem, len(items))
	for i, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			return nil, model.ErrProductNotFound
		}
		lines[i] = model.LineItem{Key: key(i), Product: p, Quantity: item.Quantity}
	}
	return lines, nil
}

// eligibleKeys returns the keys of the lines a coupon applies to.
func eligibleKeys(lines []model.LineItem) map[string]bool {
	keys := make(map[string]bool, len(lines))
	for _, line := range lines {
		keys[line.Key] = true
	}
	return keys
}
