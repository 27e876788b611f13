package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"category-coupons/internal/coupon"
	"category-coupons/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrMalformedMeta is returned when a stored category list is not a JSON
// array of integers or integer strings.
var ErrMalformedMeta = errors.New("malformed coupon metadata")

// couponRepository implements CouponRepository using PostgreSQL.
type couponRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCouponRepository creates a new PostgreSQL-backed coupon repository.
func NewCouponRepository(pool *pgxpool.Pool, logger zerolog.Logger) CouponRepository {
	return &couponRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "coupon").Logger(),
	}
}

// GetByCode retrieves a coupon by its code.
func (r *couponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		SELECT id, code, discount_type, product_categories, excluded_product_categories, created_at
		FROM coupons
		WHERE lower(code) = lower($1)
	`

	var (
		c            model.Coupon
		discountType string
	)
	err := r.pool.QueryRow(ctx, query, strings.TrimSpace(code)).Scan(
		&c.ID,
		&c.Code,
		&discountType,
		&c.ProductCategories,
		&c.ExcludedProductCategories,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("coupon_code", code).Msg("coupon not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("coupon_code", code).Msg("failed to query coupon")
		return nil, fmt.Errorf("failed to query coupon: %w", err)
	}
	c.DiscountType = model.DiscountType(discountType)

	return &c, nil
}

// Create inserts a coupon and sets its ID and CreatedAt.
func (r *couponRepository) Create(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (code, discount_type, product_categories, excluded_product_categories)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	include := c.ProductCategories
	if include == nil {
		include = []int64{}
	}
	exclude := c.ExcludedProductCategories
	if exclude == nil {
		exclude = []int64{}
	}

	err := r.pool.QueryRow(ctx, query, c.Code, string(c.DiscountType), include, exclude).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("coupon_code", c.Code).Msg("failed to create coupon")
		return fmt.Errorf("failed to create coupon: %w", err)
	}

	r.logger.Debug().Int64("coupon_id", c.ID).Str("coupon_code", c.Code).Msg("coupon created successfully")
	return nil
}

// CategoryList reads one stored category list.
func (r *couponRepository) CategoryList(ctx context.Context, couponID int64, key coupon.MetaKey) ([]int64, error) {
	query := `
		SELECT meta_value
		FROM coupon_meta
		WHERE coupon_id = $1 AND meta_key = $2
	`

	var raw []byte
	err := r.pool.QueryRow(ctx, query, couponID, string(key)).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).
			Int64("coupon_id", couponID).
			Str("meta_key", string(key)).
			Msg("failed to query coupon metadata")
		return nil, fmt.Errorf("failed to query coupon metadata: %w", err)
	}

	ids, err := decodeCategoryList(raw)
	if err != nil {
		return nil, fmt.Errorf("coupon %d %s: %w", couponID, key, err)
	}
	return ids, nil
}

// SaveCategoryList stores a category list as a JSON array of integers.
func (r *couponRepository) SaveCategoryList(ctx context.Context, couponID int64, key coupon.MetaKey, ids []int64) error {
	clean := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		clean = append(clean, id)
	}

	value, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("failed to encode category list: %w", err)
	}

	query := `
		INSERT INTO coupon_meta (coupon_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (coupon_id, meta_key) DO UPDATE SET meta_value = EXCLUDED.meta_value
	`

	if _, err := r.pool.Exec(ctx, query, couponID, string(key), value); err != nil {
		r.logger.Error().Err(err).
			Int64("coupon_id", couponID).
			Str("meta_key", string(key)).
			Msg("failed to save coupon metadata")
		return fmt.Errorf("failed to save coupon metadata: %w", err)
	}
	return nil
}

// decodeCategoryList accepts [1, 2] and ["1", "2"] alike.
func decodeCategoryList(raw []byte) ([]int64, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMeta, err)
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		id, err := decodeCategoryID(item)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func decodeCategoryID(item json.RawMessage) (int64, error) {
	var n int64
	if err := json.Unmarshal(item, &n); err == nil && string(item) != "null" {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("%w: unexpected list element %s", ErrMalformedMeta, string(item))
}
