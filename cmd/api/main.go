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

	"github.com/geocoder89/storefront/internal/actorctx"
	"github.com/geocoder89/storefront/internal/auth"
	"github.com/geocoder89/storefront/internal/cache"
	"github.com/geocoder89/storefront/internal/config"
	"github.com/geocoder89/storefront/internal/db"
	httpx "github.com/geocoder89/storefront/internal/http"
	"github.com/geocoder89/storefront/internal/http/handlers"
	"github.com/geocoder89/storefront/internal/observability"
	"github.com/geocoder89/storefront/internal/repo/memory"
	"github.com/geocoder89/storefront/internal/repo/postgres"
	"github.com/geocoder89/storefront/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type accountStore interface {
	auth.AccountStore
	db.AdminStore
}

// accountAttrs stamps the signed-in account on records logged with a request
// context.
func accountAttrs(ctx context.Context) []slog.Attr {
	if id, ok := actorctx.AccountIDFrom(ctx); ok {
		return []slog.Attr{slog.String("account_id", id)}
	}
	return nil
}

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, accountAttrs)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: observability.ServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	checks := map[string]handlers.Pinger{}

	var (
		accounts accountStore
		products handlers.ProductsStore
	)

	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store; data is lost on restart")
		accounts = memory.NewAccountsRepo()
		products = memory.NewProductsRepo()
	case "postgres":
		if err := db.Migrate(ctx, cfg.DBURL); err != nil {
			return err
		}
		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		checks["postgres"] = pool.Ping
		accounts = postgres.NewAccountsRepo(pool, prom)
		products = postgres.NewProductsRepo(pool, prom)
	default:
		return fmt.Errorf("unknown STORE %q", cfg.Store)
	}

	var listCache cache.ProductListCache = cache.NewMemoryProductCache(cfg.ProductsCacheTTL())
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		checks["redis"] = cache.RedisPinger(rdb)
		listCache = cache.NewRedisProductCache(rdb, cfg.ProductsCacheTTL(), log)
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	seedCtx, cancelSeed := context.WithTimeout(ctx, 10*time.Second)
	err = db.EnsureAdminAccount(seedCtx, accounts, hasher, cfg)
	cancelSeed()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if cfg.Env != "dev" && cfg.JWTSecret == "dev-secret-change-me" {
		log.Warn("JWT_SECRET is the development default")
	}

	authSvc := auth.NewService(accounts, auth.NewManager(cfg.JWTSecret, cfg.JWTTTL()), hasher)

	router := httpx.NewRouter(log, httpx.Deps{
		Config:   cfg,
		Auth:     authSvc,
		Products: products,
		Cache:    listCache,
		Prom:     prom,
		Gatherer: reg,
		Checks:   checks,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
