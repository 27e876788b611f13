package repository

import (
	"context"
	"fmt"

	"category-coupons/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// categoryRepository implements CategoryRepository using PostgreSQL.
type categoryRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool *pgxpool.Pool, logger zerolog.Logger) CategoryRepository {
	return &categoryRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "category").Logger(),
	}
}

// GetAll lists every category ordered by id.
func (r *categoryRepository) GetAll(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT id, parent_id, name, slug
		FROM categories
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query categories")
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}

	cats, err := pgx.CollectRows(rows, pgx.RowToStructByPos[model.Category])
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to scan category rows")
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return cats, nil
}

// Descendants walks the parent links downward. UNION discards rows already
// produced, so a cycle terminates.
func (r *categoryRepository) Descendants(ctx context.Context, categoryID int64) ([]int64, error) {
	query := `
		WITH RECURSIVE tree(id) AS (
			SELECT id FROM categories WHERE parent_id = $1 AND id <> $1
			UNION
			SELECT c.id
			FROM categories c
			JOIN tree t ON c.parent_id = t.id
		)
		SELECT id FROM tree WHERE id <> $1 ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to query category descendants")
		return nil, fmt.Errorf("failed to query category descendants: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to scan category descendants")
		return nil, fmt.Errorf("failed to scan category descendants: %w", err)
	}
	return ids, nil
}

// Upsert inserts or replaces a category.
func (r *categoryRepository) Upsert(ctx context.Context, c model.Category) error {
	query := `
		INSERT INTO categories (id, parent_id, name, slug)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET parent_id = EXCLUDED.parent_id, name = EXCLUDED.name, slug = EXCLUDED.slug
	`

	if _, err := r.pool.Exec(ctx, query, c.ID, c.ParentID, c.Name, c.Slug); err != nil {
		r.logger.Error().Err(err).Int64("category_id", c.ID).Msg("failed to upsert category")
		return fmt.Errorf("failed to upsert category: %w", err)
	}
	return nil
}
