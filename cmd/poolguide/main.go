package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/poolguide/pkg/accounts"
	"github.com/platinummonkey/poolguide/pkg/api"
	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/config"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage/cache"
	"github.com/platinummonkey/poolguide/pkg/storage/sqlstore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "poolguide: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout).
		WithField("service", "poolguide").
		WithField("env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)

	providers, err := observability.InitOTel(ctx, cfg.Observability.OTel(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	shutdown.RegisterShutdownFunc("opentelemetry", func(ctx context.Context) error {
		return observability.ShutdownOTel(ctx, providers, logger)
	})

	store, err := sqlstore.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	shutdown.RegisterShutdownFunc("database", func(context.Context) error {
		return store.Close()
	})
	logger.WithField("storage", cfg.Storage.Type).Info("Storage ready")

	var redisClient *redis.Client
	if cfg.Storage.RedisURL != "" {
		redisClient, err = newRedisClient(cfg.Storage)
		if err != nil {
			return err
		}
		shutdown.RegisterShutdownFunc("redis", func(context.Context) error {
			return redisClient.Close()
		})
	}

	registry := observability.NewRegistry()
	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(registry)
	}

	var catalogStore cache.CatalogStore = store
	var poolCache *cache.PoolCache
	if cfg.Storage.CacheEnabled {
		poolCache = cache.NewPoolCache(store, cache.Config{
			Size: cfg.Storage.CacheSize,
			TTL:  cfg.Storage.CacheTTL,
		}, metrics)
		catalogStore = poolCache
	}

	limiters, err := newLimiters(cfg.RateLimit, redisClient)
	if err != nil {
		return err
	}

	issuer, err := auth.NewTokenIssuer([]byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	logger.WithFields(map[string]interface{}{
		"token_ttl":   issuer.TTL().String(),
		"bcrypt_cost": hasher.Cost(),
	}).Info("Auth configured")

	accountService, err := accounts.NewService(store, hasher, issuer, metrics)
	if err != nil {
		return err
	}

	auditLogger, err := audit.NewSink(cfg.Audit.Sink(), logger)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	shutdown.RegisterShutdownFunc("audit", func(context.Context) error {
		return auditLogger.Close()
	})

	checker := observability.NewHealthChecker(store.DB(), redisClient)
	checker.SetVersion(version)

	server := api.NewServer(api.Options{
		Accounts:       accountService,
		Users:          store,
		Verifier:       issuer,
		Pools:          catalogStore,
		Reviews:        catalogStore,
		Health:         checker,
		Logger:         logger,
		Metrics:        metrics,
		Audit:          auditLogger,
		GeneralLimiter: limiters.General,
		AuthLimiter:    limiters.Auth,
		TrustProxy:     cfg.Server.TrustProxy,
		CORSOrigins:    cfg.Server.CORSOrigins,
		Tracing:        cfg.Observability.OTelEnabled,
	})

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, checker)
	if metrics != nil {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	shutdown.RegisterServer(apiServer)
	shutdown.RegisterServer(healthServer)

	scheduler, err := scheduleMaintenance(logger, maintenance{
		limiters: limiters,
		conns:    store.Connections(),
		cache:    poolCache,
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	shutdown.RegisterShutdownFunc("scheduler", func(ctx context.Context) error {
		select {
		case <-scheduler.Stop().Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("API server listening on %s", apiServer.Addr)
		return serve(apiServer)
	})
	g.Go(func() error {
		logger.Infof("Health server listening on %s", healthServer.Addr)
		return serve(healthServer)
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown(gctx)
	})

	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server %s: %w", srv.Addr, err)
	}
	return nil
}
