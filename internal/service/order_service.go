package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"category-coupons/internal/model"
	"category-coupons/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	couponRepo  repository.CouponRepository
	engine      CouponEngine
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	engine CouponEngine,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		couponRepo:  couponRepo,
		engine:      engine,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder creates a new order. When a coupon code is given the coupon
// must apply to the cart, and each item records whether it is discounted.
func (s *orderService) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "order request is required")
	}
	if err := validateItems(req.Items); err != nil {
		s.logger.Warn().Err(err).Int("item_count", len(req.Items)).Msg("invalid order request")
		return nil, err
	}

	productIDs := itemProductIDs(req.Items)
	if err := s.productRepo.ValidateProductsExist(ctx, productIDs); err != nil {
		s.logger.Warn().
			Int("product_count", len(productIDs)).
			Err(err).
			Msg("product validation failed")
		return nil, err
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	now := time.Now()
	order := &model.Order{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	if req.CouponCode != nil && *req.CouponCode != "" {
		code, err := s.applyCoupon(ctx, *req.CouponCode, req.Items, products, orderItems)
		if err != nil {
			return nil, err
		}
		order.CouponCode = &code
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Int("item_count", len(orderItems)).
		Bool("has_coupon", order.CouponCode != nil).
		Msg("order created successfully")

	return &model.OrderResponse{
		ID:       order.ID,
		Coupon:   order.CouponCode,
		Items:    orderItems,
		Products: products,
	}, nil
}

// applyCoupon validates code against the order's cart and flags the
// discounted items. It returns the coupon's stored code.
func (s *orderService) applyCoupon(
	ctx context.Context,
	code string,
	items []model.OrderItemRequest,
	products []model.Product,
	orderItems []model.OrderItem,
) (string, error) {
	c, err := s.couponRepo.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to get coupon")
		return "", fmt.Errorf("failed to get coupon: %w", err)
	}

	lines, err := buildLines(items, products, func(i int) string { return orderItems[i].ID.String() })
	if err != nil {
		return "", err
	}

	res, err := s.engine.ValidateCart(ctx, c, &model.Cart{Lines: lines})
	if err != nil {
		s.logger.Warn().
			Str("coupon_code", code).
			Err(err).
			Msg("coupon rejected for order")
		return "", err
	}

	eligible := eligibleKeys(res.EligibleLines)
	for i := range orderItems {
		orderItems[i].CouponApplied = eligible[orderItems[i].ID.String()]
	}

	s.logger.Debug().
		Str("coupon_code", c.Code).
		Int("eligible_count", len(res.EligibleLines)).
		Msg("coupon applied to order")

	return c.Code, nil
}

// GetByID retrieves an order by its ID with all items and product details.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	return &model.OrderResponse{
		ID:       order.ID,
		Coupon:   order.CouponCode,
		Items:    items,
		Products: products,
	}, nil
}

// RecalculateCoupon re-checks the order's coupon item by item. A coupon that
// no longer applies clears every flag and explains why in CouponMessage.
func (s *orderService) RecalculateCoupon(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, products, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &model.OrderResponse{
		ID:       order.ID,
		Coupon:   order.CouponCode,
		Items:    items,
		Products: products,
	}
	if order.CouponCode == nil || *order.CouponCode == "" {
		return resp, nil
	}

	c, err := s.couponRepo.GetByCode(ctx, *order.CouponCode)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get coupon")
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	requests := make([]model.OrderItemRequest, len(items))
	for i, item := range items {
		requests[i] = model.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	lines, err := buildLines(requests, products, func(i int) string { return items[i].ID.String() })
	if err != nil {
		return nil, err
	}

	eligible := map[string]bool{}
	res, err := s.engine.ValidateOrder(ctx, c, lines)
	var couponErr *model.CouponError
	switch {
	case err == nil:
		eligible = eligibleKeys(res.EligibleLines)
	case errors.As(err, &couponErr):
		resp.CouponMessage = couponErr.Message
	default:
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to validate coupon for order")
		return nil, fmt.Errorf("failed to validate coupon: %w", err)
	}

	applied := make(map[uuid.UUID]bool, len(items))
	for i := range resp.Items {
		ok := eligible[resp.Items[i].ID.String()]
		resp.Items[i].CouponApplied = ok
		applied[resp.Items[i].ID] = ok
	}

	if err := s.orderRepo.UpdateCouponApplied(ctx, id, applied); err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to update coupon applied flags")
		return nil, fmt.Errorf("failed to recalculate coupon: %w", err)
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("coupon_code", *order.CouponCode).
		Int("eligible_count", len(eligible)).
		Msg("order coupon recalculated")

	return resp, nil
}

func (s *orderService) load(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, []model.Product, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, nil, nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil, nil, model.ErrOrderNotFound
	}

	productIDs := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, distinctIDs(productIDs))
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to retrieve product details")
		return nil, nil, nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	return order, items, products, nil
}
