package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/evergreenfarmers/storefront/api/middleware"
	"github.com/evergreenfarmers/storefront/api/routes"
	"github.com/evergreenfarmers/storefront/internal/cart"
	"github.com/evergreenfarmers/storefront/internal/catalog"
	"github.com/evergreenfarmers/storefront/internal/checkout"
	"github.com/evergreenfarmers/storefront/internal/contact"
	"github.com/evergreenfarmers/storefront/internal/customers"
	"github.com/evergreenfarmers/storefront/internal/newsletter"
	"github.com/evergreenfarmers/storefront/internal/orders"
	"github.com/evergreenfarmers/storefront/internal/reviews"
	"github.com/evergreenfarmers/storefront/pkg/config"
	"github.com/evergreenfarmers/storefront/pkg/db"
	"github.com/evergreenfarmers/storefront/pkg/env"
	"github.com/evergreenfarmers/storefront/pkg/instance"
	"github.com/evergreenfarmers/storefront/pkg/logger"
	"github.com/evergreenfarmers/storefront/pkg/metrics"
	"github.com/evergreenfarmers/storefront/pkg/migrate"
	"github.com/evergreenfarmers/storefront/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Console:     cfg.App.LogFormat == "console",
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	var cache redis.Cache
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		cache = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; idempotency, rate limits and home cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, cache, storefrontMetrics)
	if err != nil {
		return err
	}

	addr := ":" + env.FirstOf(cfg.App.Port, "PORT")
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"redis":    redisClient != nil,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, dbClient, redisClient, middleware.NewCartSessionStore(cfg.Session), registry, svcs),
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, cache redis.Cache, m *metrics.StorefrontMetrics) (routes.Services, error) {
	conn := dbClient.DB()
	catalogRepo := catalog.NewRepository(conn)

	reviewService, err := reviews.NewService(reviews.NewRepository(conn), catalogRepo, logg, m, cfg.Reviews)
	if err != nil {
		return routes.Services{}, err
	}
	catalogService, err := catalog.NewService(catalogRepo, reviewService, cache, logg, cfg.Catalog)
	if err != nil {
		return routes.Services{}, err
	}

	cartRepo := cart.NewRepository(conn)
	cartService, err := cart.NewService(cartRepo, dbClient, logg, m)
	if err != nil {
		return routes.Services{}, err
	}
	checkoutService, err := checkout.NewService(checkout.Deps{
		Carts:     cartRepo,
		CartView:  cartService,
		Customers: customers.NewRepository(conn),
		Orders:    orders.NewRepository(conn),
		Tx:        dbClient,
		Logger:    logg,
		Metrics:   m,
		WhatsApp:  cfg.WhatsApp,
		Checkout:  cfg.Checkout,
	})
	if err != nil {
		return routes.Services{}, err
	}

	newsletterService, err := newsletter.NewService(newsletter.NewRepository(conn), logg)
	if err != nil {
		return routes.Services{}, err
	}
	contactService, err := contact.NewService(conn, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Catalog:    catalogService,
		Cart:       cartService,
		Checkout:   checkoutService,
		Reviews:    reviewService,
		Newsletter: newsletterService,
		Contact:    contactService,
	}, nil
}
