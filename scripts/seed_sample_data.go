//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"

	"category-coupons/internal/config"
	"category-coupons/internal/coupon"
	"category-coupons/internal/database"
	"category-coupons/internal/model"
	"category-coupons/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type sampleCoupon struct {
	coupon model.Coupon
	lists  map[coupon.MetaKey][]int64
	note   string
}

// Seeds categories, products and coupons demonstrating each restriction
// list into the database named by DB_* settings.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()
	logger := zerolog.Nop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	categories := repository.NewCategoryRepository(pool, logger)
	for _, c := range []model.Category{
		{ID: 1, Name: "Shoes", Slug: "shoes"},
		{ID: 2, ParentID: 1, Name: "Sneakers", Slug: "sneakers"},
		{ID: 3, ParentID: 2, Name: "Running", Slug: "running"},
		{ID: 4, ParentID: 1, Name: "Boots", Slug: "boots"},
		{ID: 10, Name: "Accessories", Slug: "accessories"},
		{ID: 11, ParentID: 10, Name: "Hats", Slug: "hats"},
		{ID: 12, ParentID: 10, Name: "Socks", Slug: "socks"},
	} {
		if err := categories.Upsert(ctx, c); err != nil {
			log.Fatalf("Failed to seed category %d: %v", c.ID, err)
		}
	}

	for _, p := range []model.Product{
		{ID: 100, Name: "Trail Runner", Price: decimal.RequireFromString("89.99"), CategoryIDs: []int64{3}},
		{ID: 101, Name: "Canvas Sneaker", Price: decimal.RequireFromString("49.50"), CategoryIDs: []int64{2}},
		{ID: 102, Name: "Hiking Boot", Price: decimal.RequireFromString("129.00"), CategoryIDs: []int64{4}},
		{ID: 103, ParentID: 102, Name: "Hiking Boot - 42", Price: decimal.RequireFromString("129.00")},
		{ID: 200, Name: "Wool Beanie", Price: decimal.RequireFromString("19.99"), CategoryIDs: []int64{11}},
		{ID: 201, Name: "Running Socks", Price: decimal.RequireFromString("9.99"), CategoryIDs: []int64{12, 3}},
	} {
		if _, err := pool.Exec(ctx,
			`INSERT INTO products (id, parent_id, name, price) VALUES ($1, $2, $3, $4::numeric)
			 ON CONFLICT (id) DO UPDATE SET parent_id = EXCLUDED.parent_id, name = EXCLUDED.name, price = EXCLUDED.price`,
			p.ID, p.ParentID, p.Name, p.Price.String(),
		); err != nil {
			log.Fatalf("Failed to seed product %d: %v", p.ID, err)
		}
		for _, c := range p.CategoryIDs {
			if _, err := pool.Exec(ctx,
				`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				p.ID, c,
			); err != nil {
				log.Fatalf("Failed to attach category %d to product %d: %v", c, p.ID, err)
			}
		}
	}

	coupons := repository.NewCouponRepository(pool, logger)
	samples := []sampleCoupon{
		{
			coupon: model.Coupon{Code: "SHOES10", DiscountType: model.DiscountFixedCart},
			lists:  map[coupon.MetaKey][]int64{coupon.MetaAllowedWithChildren: {1}},
			note:   "Shoes and every subcategory",
		},
		{
			coupon: model.Coupon{Code: "NOBOOTS", DiscountType: model.DiscountFixedCart},
			lists: map[coupon.MetaKey][]int64{
				coupon.MetaAllowedWithChildren:  {1},
				coupon.MetaExcludedWithChildren: {4},
			},
			note: "Shoes except Boots",
		},
		{
			coupon: model.Coupon{Code: "SNEAKERSONLY", DiscountType: model.DiscountFixedCart},
			lists:  map[coupon.MetaKey][]int64{coupon.MetaAllowedExact: {2}},
			note:   "Sneakers exactly, not Running",
		},
		{
			coupon: model.Coupon{Code: "RUN15", DiscountType: model.DiscountPercent},
			lists:  map[coupon.MetaKey][]int64{coupon.MetaAllowedWithChildren: {2}},
			note:   "15% off sneaker products, per item",
		},
	}

	for _, s := range samples {
		existing, err := coupons.GetByCode(ctx, s.coupon.Code)
		if err != nil {
			log.Fatalf("Failed to look up coupon %s: %v", s.coupon.Code, err)
		}
		c := existing
		if c == nil {
			c = &s.coupon
			if err := coupons.Create(ctx, c); err != nil {
				log.Fatalf("Failed to create coupon %s: %v", s.coupon.Code, err)
			}
		}
		for key, ids := range s.lists {
			if err := coupons.SaveCategoryList(ctx, c.ID, key, ids); err != nil {
				log.Fatalf("Failed to save %s for %s: %v", key, c.Code, err)
			}
		}
		fmt.Printf("  - %-13s %s\n", c.Code, s.note)
	}

	fmt.Println("\nSample data seeded successfully!")
}
