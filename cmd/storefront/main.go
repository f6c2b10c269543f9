package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/admin"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/middleware"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/obs"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/review"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/seed"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/upload"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/user"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/wishlist"
)

func main() {
	cfg := config.Load()
	logger := obs.NewLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("storefront stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Money is written as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer pool.Close()

	reporting, err := db.OpenReporting(ctx, cfg.ReportingDSN)
	if err != nil {
		return fmt.Errorf("connect reporting db: %w", err)
	}
	defer reporting.Close()

	// RabbitMQ
	var publisher order.EventPublisher = events.NoopPublisher{}
	if cfg.RabbitURL != "" {
		conn, err := events.Dial(cfg.RabbitURL)
		if err != nil {
			return err
		}
		defer conn.Close()

		p, err := events.NewPublisher(conn, sequence.NewRepository(pool), events.PublisherOptions{
			PublishEnveloped: cfg.PublishEnvelopedEvents,
			Correlation:      middleware.GetCorrelationID,
		})
		if err != nil {
			return fmt.Errorf("order publisher: %w", err)
		}
		defer p.Close()
		publisher = p
	} else {
		logger.Warn("RABBITMQ_URL not set, order events are not published")
	}

	// Uploads
	var (
		store     upload.Store
		uploadDir string
	)
	switch cfg.UploadBackend {
	case "s3":
		s3Store, err := upload.NewS3Store(cfg.AWSRegion, cfg.S3Bucket, cfg.UploadPublicBaseURL)
		if err != nil {
			return fmt.Errorf("s3 store: %w", err)
		}
		store = s3Store
	default:
		disk := upload.NewDiskStore(cfg.UploadDir, cfg.UploadPublicBaseURL)
		store, uploadDir = disk, disk.Dir()
	}

	// Services
	tokens := auth.NewTokenManager(cfg.JWTKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTTTL)
	userRepo := user.NewPostgresRepository(pool)
	authSvc := auth.NewService(userRepo, auth.NewPostgresResetStore(pool), tokens, logger)
	cartSvc := cart.NewService(cart.NewPostgresRepository(pool), logger)

	if err := seed.New(authSvc, pool, logger).Run(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.SeedCatalogFile); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:    logger,
		Cfg:       cfg,
		Tokens:    tokens,
		Auth:      authSvc,
		Catalog:   catalog.NewService(catalog.NewPostgresRepository(pool), logger),
		Cart:      cartSvc,
		Wishlist:  wishlist.NewService(wishlist.NewPostgresRepository(pool), cartSvc, logger),
		Orders:    order.NewService(order.NewPostgresRepository(pool), publisher, logger),
		Reviews:   review.NewService(review.NewPostgresRepository(pool), logger),
		Users:     user.NewService(userRepo, logger),
		Admin:     admin.NewService(admin.NewSQLReports(reporting), logger),
		Uploads:   upload.NewService(store, logger),
		UploadDir: uploadDir,
	})

	// HTTP
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", cfg.HTTPAddr, "upload_backend", cfg.UploadBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
