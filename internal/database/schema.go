package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema creates every table the service reads and writes. It is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS categories (
		id BIGINT PRIMARY KEY,
		parent_id BIGINT NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		slug TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_categories_parent_id ON categories(parent_id);

	CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		parent_id BIGINT NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		price NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_products_parent_id ON products(parent_id);

	CREATE TABLE IF NOT EXISTS product_categories (
		product_id BIGINT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		category_id BIGINT NOT NULL,
		PRIMARY KEY (product_id, category_id)
	);
	CREATE INDEX IF NOT EXISTS idx_product_categories_category_id ON product_categories(category_id);

	CREATE TABLE IF NOT EXISTS coupons (
		id BIGSERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		discount_type TEXT NOT NULL CHECK (discount_type IN ('fixed_cart', 'percent', 'fixed_product')),
		product_categories BIGINT[] NOT NULL DEFAULT '{}',
		excluded_product_categories BIGINT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS coupon_meta (
		coupon_id BIGINT NOT NULL REFERENCES coupons(id) ON DELETE CASCADE,
		meta_key TEXT NOT NULL,
		meta_value JSONB NOT NULL,
		PRIMARY KEY (coupon_id, meta_key)
	);

	CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		coupon_code TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id BIGINT NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		coupon_applied BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	logger.Info().Str("component", "database").Msg("database schema applied")
	return nil
}
