package repository

import (
	"context"
	"testing"
	"time"

	"category-coupons/internal/database"
	"category-coupons/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the service schema.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping repository test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := database.Connect(ctx, connStr, database.DefaultPoolOptions(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, pool, zerolog.Nop()))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return pool
}

// seedCategories inserts the shoe forest: Shoes(1) > Sneakers(2) >
// Running(3), Shoes(1) > Boots(4), Accessories(10) > Hats(11).
func seedCategories(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	repo := NewCategoryRepository(pool, zerolog.Nop())
	for _, c := range []model.Category{
		{ID: 1, Name: "Shoes", Slug: "shoes"},
		{ID: 2, ParentID: 1, Name: "Sneakers", Slug: "sneakers"},
		{ID: 3, ParentID: 2, Name: "Running", Slug: "running"},
		{ID: 4, ParentID: 1, Name: "Boots", Slug: "boots"},
		{ID: 10, Name: "Accessories", Slug: "accessories"},
		{ID: 11, ParentID: 10, Name: "Hats", Slug: "hats"},
	} {
		require.NoError(t, repo.Upsert(context.Background(), c))
	}
}

// seedProduct inserts a product and attaches its categories.
func seedProduct(t *testing.T, pool *pgxpool.Pool, p model.Product) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx,
		`INSERT INTO products (id, parent_id, name, price) VALUES ($1, $2, $3, $4::numeric)`,
		p.ID, p.ParentID, p.Name, p.Price.String(),
	)
	require.NoError(t, err)

	for _, c := range p.CategoryIDs {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2)`,
			p.ID, c,
		)
		require.NoError(t, err)
	}
}
