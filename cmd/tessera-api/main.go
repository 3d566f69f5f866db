// Command tessera-api runs the Tessera contract-coordination HTTP service:
// it wires the long-lived singletons spec.md §9 calls for (persistence
// pool, cache client, webhook worker) and starts the chi router built by
// internal/httpapi, shutting down gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tessera-contracts/tessera/internal/auth"
	"github.com/tessera-contracts/tessera/internal/cache"
	"github.com/tessera-contracts/tessera/internal/config"
	"github.com/tessera-contracts/tessera/internal/httpapi"
	"github.com/tessera-contracts/tessera/internal/impact"
	"github.com/tessera-contracts/tessera/internal/logging"
	"github.com/tessera-contracts/tessera/internal/metrics"
	"github.com/tessera-contracts/tessera/internal/proposal"
	"github.com/tessera-contracts/tessera/internal/publication"
	"github.com/tessera-contracts/tessera/internal/ratelimit"
	"github.com/tessera-contracts/tessera/internal/store/postgres"
	"github.com/tessera-contracts/tessera/internal/webhook"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal startup error", logging.NewFields().Component("main").Operation("run").Err(err).Zap()...)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := postgres.Open(postgres.Config{
		DSN:              cfg.Persistence.DSN,
		MaxOpenConns:     cfg.Persistence.MaxOpenConns,
		MaxOverflowConns: cfg.Persistence.MaxOverflowConns,
		AcquireTimeout:   cfg.Persistence.AcquireTimeout,
		ConnMaxLifetime:  cfg.Persistence.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open persistence pool: %w", err)
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	metricsRegistry := metrics.New(reg)

	ch := buildCache(cfg, logger, metricsRegistry)

	authenticator := auth.NewAuthenticator(db, auth.BootstrapKey{
		Raw:    cfg.Auth.BootstrapKey,
		TeamID: cfg.Auth.BootstrapTeamID,
	})

	webhookCfg := webhook.Config{
		RequestTimeout: cfg.Webhook.RequestTimeout,
		MaxAttempts:    cfg.Webhook.MaxAttempts,
		WorkerInterval: cfg.Webhook.WorkerInterval,
		WorkerCount:    cfg.Webhook.WorkerCount,
		TargetURL:      cfg.Webhook.TargetURL,
	}
	webhookTracker := webhook.NewTracker(db, webhookCfg)
	webhookWorker := webhook.NewWorker(db, webhookCfg, logger)

	defaultExpiration := time.Duration(cfg.Proposal.DefaultExpirationDays) * 24 * time.Hour
	publicationSvc := publication.New(db, ch, webhookTracker, defaultExpiration)
	proposalSvc := proposal.New(db, ch, webhookTracker, defaultExpiration)
	impactSvc := impact.New(db, ch, cfg.Impact.DefaultDepth, cfg.Impact.MaxDepth)

	limiter := ratelimit.New(ratelimit.Config{
		ReadsPerMinute:  cfg.RateLimit.ReadsPerMinute,
		WritesPerMinute: cfg.RateLimit.WritesPerMinute,
		AdminPerMinute:  cfg.RateLimit.AdminPerMinute,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Store:          db,
		Cache:          ch,
		Publication:    publicationSvc,
		Proposal:       proposalSvc,
		Impact:         impactSvc,
		Authenticator:  authenticator,
		Sessions:       httpapi.NewSessionCodec(cfg.Auth.SessionSigningKey),
		Limiter:        limiter,
		Metrics:        metricsRegistry,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger,
		Pagination:     cfg.Pagination,
		BootstrapEnv:   "production",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	go func() {
		if err := webhookWorker.Run(workerCtx); err != nil {
			logger.Error("webhook worker stopped", logging.NewFields().Component("webhook").Operation("run").Err(err).Zap()...)
		}
	}()
	go runExpirationSweep(workerCtx, proposalSvc, logger)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Info("tessera-api listening", logging.NewFields().Component("main").Operation("listen").Zap()...)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", logging.NewFields().Component("main").Operation("listen").Err(err).Zap()...)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received", logging.NewFields().Component("main").Operation("shutdown").Zap()...)

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// buildCache connects the optional Redis backend. An empty DSN, or a
// failed connection, degrades to a disabled cache (nil Backend) per
// spec.md §4.8 — caching is never required for correctness.
func buildCache(cfg *config.Config, logger *zap.Logger, obs cache.Observer) *cache.Cache {
	ttls := cache.TTLs{
		cache.NamespaceContract:     cfg.Cache.ContractTTL,
		cache.NamespaceAsset:        cfg.Cache.AssetTTL,
		cache.NamespaceLineage:      cfg.Cache.LineageTTL,
		cache.NamespaceSchemaDiff:   cfg.Cache.SchemaDiffTTL,
		cache.NamespaceGlobalSearch: cfg.Cache.GlobalSearchTTL,
	}

	if cfg.Cache.DSN == "" {
		return cache.New(nil, ttls, obs)
	}

	opts, err := redis.ParseURL(cfg.Cache.DSN)
	if err != nil {
		logger.Warn("invalid cache dsn, running without cache", logging.NewFields().Component("cache").Operation("connect").Err(err).Zap()...)
		return cache.New(nil, ttls, obs)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("cache backend unreachable at startup, degrading to disabled", logging.NewFields().Component("cache").Operation("connect").Err(err).Zap()...)
		return cache.New(nil, ttls, obs)
	}

	return cache.New(cache.NewRedisBackend(client, logger), ttls, obs)
}

// runExpirationSweep periodically invokes proposal.Service.ExpireSweep,
// the periodic task spec.md §4.4 calls for. It runs on a fixed interval
// rather than cfg.Webhook.WorkerInterval — proposal expiration is a much
// lower-frequency concern than webhook delivery — so it uses its own
// ticker rather than sharing the webhook worker's.
func runExpirationSweep(ctx context.Context, svc *proposal.Service, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := svc.ExpireSweep(ctx)
			fields := logging.NewFields().Component("proposal").Operation("expire_sweep")
			if err != nil {
				logger.Error("proposal expiration sweep failed", fields.Err(err).Zap()...)
				continue
			}
			if n > 0 {
				logger.Info("proposal expiration sweep completed", fields.Zap()...)
			}
		}
	}
}
