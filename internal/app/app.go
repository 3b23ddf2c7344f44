package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/utafrali/storefront/internal/client"
	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/domain"
	handler "github.com/utafrali/storefront/internal/handler/http"
	"github.com/utafrali/storefront/internal/storage"
	pgstorage "github.com/utafrali/storefront/internal/storage/postgres"
	redisstorage "github.com/utafrali/storefront/internal/storage/redis"
	sqlitestorage "github.com/utafrali/storefront/internal/storage/sqlite"
	"github.com/utafrali/storefront/internal/store"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/tracing"
)

const (
	serviceName        = "storefront"
	slowQueryThreshold = 250 * time.Millisecond
)

// App wires together all dependencies and serves the storefront views.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	kv             storage.KV
	cart           *store.CartStore
	auth           *store.AuthStore
	tracerShutdown tracing.Shutdown
	httpServer     *http.Server
}

// NewApp opens storage, rehydrates both stores and builds the HTTP server.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tracerCfg := tracing.DefaultConfig(serviceName)
	tracerCfg.Environment = cfg.Environment
	tracerCfg.Enabled = cfg.OTELEnabled
	tracerCfg.OTLPEndpoint = cfg.OTELEndpoint
	tracerCfg.SampleRate = cfg.OTELSampleRate
	tracerShutdown, err := tracing.InitTracer(ctx, tracerCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	kv, err := openStorage(ctx, cfg)
	if err != nil {
		_ = tracerShutdown(ctx)
		return nil, err
	}
	logger.Info("storage opened", slog.String("backend", cfg.StorageBackend))

	database.SetSlowQueryLogging(slowQueryThreshold, logger)
	if pooled, ok := kv.(interface{ Stats() database.PoolStats }); ok {
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pooled.Stats, cfg.StorageBackend); err != nil {
			logger.Warn("storage pool metrics not registered", slog.String("error", err.Error()))
		}
	}

	money, err := domain.NewMoneyFormatter(cfg.Currency, cfg.Locale)
	if err != nil {
		_ = kv.Close()
		_ = tracerShutdown(ctx)
		return nil, fmt.Errorf("money formatter: %w", err)
	}

	// REST collaborators share one pooled client. Requests are never retried.
	hc := httpclient.New(httpclient.Config{
		Timeout:         cfg.APITimeout,
		MaxConnsPerHost: httpclient.DefaultConfig().MaxConnsPerHost,
	})
	authClient := client.NewAuth(hc, cfg.APIBase)

	cartStore := store.NewCartStore(kv, logger)
	authStore := store.NewAuthStore(kv, authClient, logger)
	catalog := client.NewCatalog(hc, cfg.APIBase, authStore.Token)

	if err := rehydrate(ctx, cartStore, authStore); err != nil {
		_ = kv.Close()
		_ = tracerShutdown(ctx)
		return nil, err
	}
	logger.Info("stores rehydrated",
		slog.Int("cart_count", cartStore.Count()),
		slog.Bool("authenticated", authStore.Session().Authenticated()),
	)

	healthHandler := health.NewHandler(health.DefaultTimeout)
	healthHandler.Register("storage", kv.Ping)

	router := handler.NewRouter(handler.Handlers{
		Catalog: handler.NewCatalogHandler(catalog, logger),
		Cart:    handler.NewCartHandler(cartStore, authStore, catalog, money, cfg.RequireLoginForCart, logger),
		Auth:    handler.NewAuthHandler(authStore, logger),
		Admin:   handler.NewAdminHandler(authStore, catalog, logger),
	}, healthHandler, logger, cfg.AllowedOrigins)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.APITimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		kv:             kv,
		cart:           cartStore,
		auth:           authStore,
		tracerShutdown: tracerShutdown,
		httpServer:     httpServer,
	}, nil
}

// openStorage opens the configured key-value backend.
func openStorage(ctx context.Context, cfg *config.Config) (storage.KV, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendSQLite:
		kv, err := sqlitestorage.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite storage: %w", err)
		}
		return kv, nil
	case config.BackendRedis:
		kv, err := redisstorage.Open(ctx, redisstorage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
			TTL:      cfg.StorageTTLDuration(),
		})
		if err != nil {
			return nil, fmt.Errorf("open redis storage: %w", err)
		}
		return kv, nil
	case config.BackendPostgres:
		kv, err := pgstorage.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func rehydrate(ctx context.Context, cart *store.CartStore, auth *store.AuthStore) error {
	return errors.Join(cart.Load(ctx), auth.Load(ctx))
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("api_base", a.cfg.APIBase),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown stops the server, then flushes traces and closes storage.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}

	if err := a.kv.Close(); err != nil {
		a.logger.Error("storage close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
