package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"category-coupons/internal/adapter"
	"category-coupons/internal/config"
	"category-coupons/internal/coupon"
	"category-coupons/internal/database"
	"category-coupons/internal/engine"
	"category-coupons/internal/handler"
	"category-coupons/internal/middleware"
	"category-coupons/internal/repository"
	"category-coupons/internal/router"
	"category-coupons/internal/service"
	"category-coupons/internal/taxonomy"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting category-coupons API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	productRepo := repository.NewProductRepository(pool, logger)
	categoryRepo := repository.NewCategoryRepository(pool, logger)
	couponRepo := repository.NewCouponRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	tax, err := newTaxonomy(ctx, cfg, categoryRepo, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize taxonomy: %w", err)
	}

	messenger := coupon.NewMessenger(logger)
	if cfg.Messages.File != "" {
		overrides, err := coupon.LoadMessageOverrides(cfg.Messages.File)
		if err != nil {
			return fmt.Errorf("failed to load message overrides: %w", err)
		}
		messenger.Use(overrides)
		logger.Info().Str("file", cfg.Messages.File).Msg("restriction message overrides loaded")
	}

	// Category restrictions subscribe to the coupon engine's extension points.
	restrictions := coupon.NewRestrictionLoader(couponRepo, tax, logger)
	evaluator := coupon.NewEvaluator(restrictions, productRepo, logger)
	couponEngine := engine.New(productRepo, logger)
	adapter.New(evaluator, messenger, logger).Register(couponEngine)

	productService := service.NewProductService(productRepo, logger)
	couponService := service.NewCouponService(couponRepo, productRepo, couponEngine, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, couponRepo, couponEngine, logger)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RequestsPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, logger)
		defer limiter.Stop()
	}

	mux := router.New(router.Handlers{
		Product: handler.NewProductHandler(productService, logger),
		Coupon:  handler.NewCouponHandler(couponService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
	}, cfg.Auth.APIKey, limiter, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newTaxonomy returns the category store used to expand restriction lists:
// the live categories table, or a snapshot loaded once at startup from S3
// with a local fallback.
func newTaxonomy(ctx context.Context, cfg *config.Config, categories repository.CategoryRepository, logger zerolog.Logger) (coupon.Taxonomy, error) {
	if cfg.Taxonomy.Source != config.TaxonomySourceSnapshot {
		logger.Info().Msg("using database taxonomy")
		return categories, nil
	}

	fileLoader := taxonomy.NewFileLoader(logger)
	var s3Loader taxonomy.Loader

	if cfg.S3.Enabled {
		l, err := taxonomy.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	}

	loader := taxonomy.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)
	tree, err := loader.Load(ctx, cfg.Taxonomy.Snapshot)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("categories", tree.Size()).
		Str("snapshot", cfg.Taxonomy.Snapshot).
		Msg("using taxonomy snapshot")
	return tree, nil
}
