package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dukerupert/vanir/internal"
	"github.com/dukerupert/vanir/internal/cart"
	"github.com/dukerupert/vanir/internal/cms"
	"github.com/dukerupert/vanir/internal/email"
	"github.com/dukerupert/vanir/internal/events"
	"github.com/dukerupert/vanir/internal/handler/api"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/order"
	"github.com/dukerupert/vanir/internal/postgres"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/dukerupert/vanir/internal/router"
	"github.com/dukerupert/vanir/internal/service"
	"github.com/dukerupert/vanir/internal/shipping"
	"github.com/dukerupert/vanir/internal/tax"
	"github.com/dukerupert/vanir/internal/telemetry"
	"github.com/dukerupert/vanir/internal/worker"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	flushSentry, err := telemetry.InitSentry(cfg.Sentry, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Migrations run over database/sql; the application itself uses pgx pools.
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed")

	pool, err := postgres.Connect(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Persistence
	cartDB := postgres.NewCartDB(pool)
	catalog := postgres.NewCatalogStore(pool)
	storeDB := postgres.NewStoreDB(pool)

	// Cart core
	resolver := pricing.NewResolver()
	refresher := cart.NewRefresher(catalog, resolver, cartDB)
	populator := cart.NewPopulator(refresher, cartDB)
	merger := cart.NewMerger(catalog, cartDB)

	// Events
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NATSUrl != "" {
		natsPublisher, err := events.Connect(cfg.NATSUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		publisher = natsPublisher
		logger.Info("Connected to NATS", "url", cfg.NATSUrl)
	} else {
		logger.Info("NATS_URL not set, event publishing disabled")
	}

	businessMetrics := telemetry.NewBusinessMetrics(prometheus.DefaultRegisterer)

	// Services
	cartService := service.NewCartService(cartDB, catalog, populator, merger, publisher, businessMetrics, logger)
	storeService := service.NewStoreService(storeDB)

	// Shipping provider
	var rates shipping.Provider
	switch cfg.Shipping.Provider {
	case "easypost":
		rates, err = shipping.NewEasyPostProvider(shipping.EasyPostConfig{
			APIKey: cfg.Shipping.EasyPostAPIKey,
			Logger: logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize EasyPost provider: %w", err)
		}
	default:
		rates = shipping.NewFlatRateProvider([]shipping.FlatRate{
			{ServiceName: "Standard Shipping", ServiceCode: "standard", CostCents: cfg.Shipping.FlatRateCents, DaysMin: 5, DaysMax: 7},
		})
	}
	logger.Info("Shipping provider initialized", "provider", cfg.Shipping.Provider)

	// Tax
	var taxes tax.Calculator = tax.NewNoTaxCalculator()
	if cfg.Tax.Rate > 0 {
		taxes, err = tax.NewPercentageCalculator(cfg.Tax.Rate)
		if err != nil {
			return fmt.Errorf("failed to initialize tax calculator: %w", err)
		}
	}
	totals := order.NewTotalsCalculator(taxes)

	// CMS content behind a TTL cache
	content := cms.NewCache(cms.NewService(pool), cfg.CMSCacheTTL)

	// Email
	var sender email.Sender
	if cfg.Email.PostmarkToken != "" {
		sender = email.NewPostmarkSender(cfg.Email.PostmarkToken)
	} else {
		sender = email.NewSMTPSender(&email.SMTPConfig{
			Host:     cfg.Email.Host,
			Port:     int(cfg.Email.Port),
			Username: cfg.Email.Username,
			Password: cfg.Email.Password,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		})
	}
	emailService, err := email.NewService(sender, cfg.Email.From, cfg.Email.FromName, cfg.Email.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	// Abandoned-cart recovery sweep
	if cfg.Worker.Enabled {
		recovery := worker.NewRecoveryWorker(
			postgres.NewRecoveryDB(pool),
			cartService,
			catalog,
			emailService,
			worker.Config{
				PollInterval: cfg.Worker.PollInterval,
				AbandonAfter: cfg.Worker.AbandonAfter,
				BatchSize:    cfg.Worker.BatchSize,
				CartURLBase:  cfg.Worker.CartURLBase,
			},
			logger,
		)
		go func() {
			if err := recovery.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("recovery worker stopped", "error", err)
			}
		}()
	}

	// HTTP surface
	httpMetrics := middleware.NewMetrics("vanir", prometheus.DefaultRegisterer)

	r := router.New(
		middleware.Recover,
		middleware.RequestID,
		telemetry.SentryMiddleware(),
		httpMetrics.Middleware,
		middleware.MaxBodySize(middleware.DefaultMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		middleware.ResolveStore(middleware.StoreConfig{
			Stores:     storeService,
			BaseDomain: cfg.BaseDomain,
		}),
		middleware.WithRequestLogger(logger),
		middleware.AccessLog,
	)

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		httpMetrics.Handler().ServeHTTP(w, req)
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Store-scoped API routes
	apiRouter := r.Group(middleware.RequireStore)
	api.NewCartHandler(cartService).RegisterRoutes(apiRouter)
	api.NewProductHandler(catalog).RegisterRoutes(apiRouter)
	api.NewContentHandler(content).RegisterRoutes(apiRouter)
	api.NewQuoteHandler(
		cartService,
		catalog,
		rates,
		totals,
		cfg.Shipping.Origin,
		publisher,
		businessMetrics,
	).RegisterRoutes(apiRouter)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.CORS(cfg.AllowedOrigins)(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
