package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/leadcapture-api/cmd/mainconfig"
	"github.com/wolfman30/leadcapture-api/internal/api/router"
	"github.com/wolfman30/leadcapture-api/internal/app/bootstrap"
	"github.com/wolfman30/leadcapture-api/internal/auth"
	appconfig "github.com/wolfman30/leadcapture-api/internal/config"
	"github.com/wolfman30/leadcapture-api/internal/http/middleware"
	"github.com/wolfman30/leadcapture-api/internal/leads"
	"github.com/wolfman30/leadcapture-api/internal/observability/metrics"
	"github.com/wolfman30/leadcapture-api/pkg/logging"
)

func main() {
	if err := appconfig.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadcapture API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(cfg *appconfig.Config, logger *logging.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	store, err := bootstrap.BuildLeadStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("failed to close lead store", "error", err)
		}
	}()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	handler, leadMetrics := setupLeadMetrics()
	routerCfg := buildRouterConfig(cfg, logger, store)
	routerCfg.RateLimiter = bootstrap.BuildRateLimiter(cfg, redisClient, logger)
	defer stopRateLimiter(routerCfg.RateLimiter)
	routerCfg.Metrics = leadMetrics
	routerCfg.MetricsHandler = handler

	svc := leads.NewService(leads.ServiceConfig{
		Repo:     store.Repo,
		Observer: leadMetrics,
		Notifier: setupNotifier(ctx, cfg, logger),
		Logger:   logger,
	})
	routerCfg.LeadsHandler = leads.NewHandler(svc, logger)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "store", store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func buildRouterConfig(cfg *appconfig.Config, logger *logging.Logger, store *bootstrap.Store) *router.Config {
	issuer := auth.NewIssuer(auth.Config{
		Secret:       cfg.AdminJWTSecret,
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		TTL:          cfg.AdminTokenTTL,
	})
	if !issuer.Enabled() {
		logger.Warn("admin login disabled; set ADMIN_JWT_SECRET, ADMIN_USERNAME and ADMIN_PASSWORD_HASH")
	}

	return &router.Config{
		Logger:             logger,
		AuthHandler:        auth.NewHandler(issuer, logger),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: bootstrap.CORSOrigins(cfg),
		HealthCheck: func(r *http.Request) error {
			if store == nil || store.Ping == nil {
				return nil
			}
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			return store.Ping(ctx)
		},
	}
}

// stopRateLimiter stops the in-memory limiter's eviction loop. Redis-backed
// limiters have nothing to stop.
func stopRateLimiter(limiter middleware.Limiter) {
	if c, ok := limiter.(interface{ Close() }); ok {
		c.Close()
	}
}

func setupNotifier(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) leads.Notifier {
	if len(cfg.SalesNotifyEmail) == 0 {
		return nil
	}
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Warn("failed to load AWS config; SES unavailable", "error", err)
		return bootstrap.BuildLeadNotifier(cfg, bootstrap.BuildEmailSender(cfg, nil, logger), logger)
	}
	return bootstrap.BuildLeadNotifier(cfg, bootstrap.BuildEmailSender(cfg, &awsCfg, logger), logger)
}

func setupLeadMetrics() (http.Handler, *metrics.LeadMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewLeadMetrics(reg)
}
