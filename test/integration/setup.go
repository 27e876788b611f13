// Package integration exercises the assembled service against a real
// PostgreSQL instance.
package integration

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"category-coupons/internal/adapter"
	"category-coupons/internal/coupon"
	"category-coupons/internal/database"
	"category-coupons/internal/engine"
	"category-coupons/internal/handler"
	"category-coupons/internal/model"
	"category-coupons/internal/repository"
	"category-coupons/internal/router"
	"category-coupons/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestAPIKey is accepted by servers built with NewServer.
const TestAPIKey = "test-api-key"

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container with the service schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	opts := database.DefaultPoolOptions()
	opts.MaxConns = 10
	opts.MinConns = 2

	pool, err := database.Connect(ctx, connStr, opts, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, zerolog.Nop()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// Categories is the seeded forest:
//
//	Shoes(1) > Sneakers(2) > Running(3)
//	Shoes(1) > Boots(4)
//	Accessories(10) > Hats(11)
var Categories = []model.Category{
	{ID: 1, Name: "Shoes", Slug: "shoes"},
	{ID: 2, ParentID: 1, Name: "Sneakers", Slug: "sneakers"},
	{ID: 3, ParentID: 2, Name: "Running", Slug: "running"},
	{ID: 4, ParentID: 1, Name: "Boots", Slug: "boots"},
	{ID: 10, Name: "Accessories", Slug: "accessories"},
	{ID: 11, ParentID: 10, Name: "Hats", Slug: "hats"},
}

// Seeded product ids. HikingBoot42 is a variation of HikingBoot and has
// no categories of its own.
const (
	TrailRunner   int64 = 100
	CanvasSneaker int64 = 101
	HikingBoot    int64 = 102
	HikingBoot42  int64 = 103
	WoolBeanie    int64 = 200
)

// Products is the seeded catalogue.
var Products = []model.Product{
	{ID: TrailRunner, Name: "Trail Runner", Price: decimal.RequireFromString("89.99"), CategoryIDs: []int64{3}},
	{ID: CanvasSneaker, Name: "Canvas Sneaker", Price: decimal.RequireFromString("49.50"), CategoryIDs: []int64{2}},
	{ID: HikingBoot, Name: "Hiking Boot", Price: decimal.RequireFromString("129.00"), CategoryIDs: []int64{4}},
	{ID: HikingBoot42, ParentID: HikingBoot, Name: "Hiking Boot - 42", Price: decimal.RequireFromString("129.00")},
	{ID: WoolBeanie, Name: "Wool Beanie", Price: decimal.RequireFromString("19.99"), CategoryIDs: []int64{11}},
}

// SeedCatalogue inserts Categories and Products.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	categories := repository.NewCategoryRepository(pool, zerolog.Nop())
	for _, c := range Categories {
		if err := categories.Upsert(ctx, c); err != nil {
			t.Fatalf("failed to seed category %d: %v", c.ID, err)
		}
	}

	for _, p := range Products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, parent_id, name, price) VALUES ($1, $2, $3, $4::numeric)",
			p.ID, p.ParentID, p.Name, p.Price.String(),
		)
		if err != nil {
			t.Fatalf("failed to seed product %d: %v", p.ID, err)
		}
		for _, c := range p.CategoryIDs {
			_, err := pool.Exec(ctx,
				"INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)",
				p.ID, c,
			)
			if err != nil {
				t.Fatalf("failed to attach category %d to product %d: %v", c, p.ID, err)
			}
		}
	}
}

// SeedCoupon creates c and stores its restriction lists. It returns the
// coupon with its assigned id.
func SeedCoupon(t *testing.T, pool *pgxpool.Pool, c model.Coupon, lists map[coupon.MetaKey][]int64) *model.Coupon {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewCouponRepository(pool, zerolog.Nop())
	if err := repo.Create(ctx, &c); err != nil {
		t.Fatalf("failed to seed coupon %s: %v", c.Code, err)
	}
	for key, ids := range lists {
		if err := repo.SaveCategoryList(ctx, c.ID, key, ids); err != nil {
			t.Fatalf("failed to save %s for coupon %s: %v", key, c.Code, err)
		}
	}
	return &c
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "coupon_meta", "coupons", "product_categories", "products", "categories"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// NewServer assembles the HTTP stack the way the API binary does, with
// the database as taxonomy and rate limiting disabled.
func NewServer(t *testing.T, pool *pgxpool.Pool) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	restrictions := coupon.NewRestrictionLoader(couponRepo, categoryRepo, logger)
	evaluator := coupon.NewEvaluator(restrictions, productRepo, logger)
	couponEngine := engine.New(productRepo, logger)
	adapter.New(evaluator, coupon.NewMessenger(logger), logger).Register(couponEngine)

	productService := service.NewProductService(productRepo, logger)
	couponService := service.NewCouponService(couponRepo, productRepo, couponEngine, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, couponRepo, couponEngine, logger)

	return router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Coupon:  handler.NewCouponHandler(couponService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}, TestAPIKey, nil, logger)
}

// WriteSnapshot writes cats as a gzipped id,parent_id,name CSV.
func WriteSnapshot(t *testing.T, path string, cats []model.Category) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create snapshot: %v", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	w := csv.NewWriter(gz)
	_ = w.Write([]string{"id", "parent_id", "name"})
	for _, c := range cats {
		_ = w.Write([]string{strconv.FormatInt(c.ID, 10), strconv.FormatInt(c.ParentID, 10), c.Name})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("failed to write snapshot: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close snapshot: %v", err)
	}
}
