// Command searchd starts the document search service.
//
// The service accepts new documents via POST /api/v1/documents, tokenizes
// and indexes them into PostgreSQL, and answers ranked TF-IDF queries via
// GET /api/v1/search with a Redis result cache in front of the scorer.
// Health probes live at /health/live and /health/ready.
//
// Usage:
//
//	go run ./cmd/searchd [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Un3xpecteed/Search-Engine/internal/analytics"
	analyticsstore "github.com/Un3xpecteed/Search-Engine/internal/analytics/aggregator"
	"github.com/Un3xpecteed/Search-Engine/internal/indexer"
	"github.com/Un3xpecteed/Search-Engine/internal/indexer/store"
	ingesthandler "github.com/Un3xpecteed/Search-Engine/internal/ingestion/handler"
	"github.com/Un3xpecteed/Search-Engine/internal/searcher/cache"
	searchhandler "github.com/Un3xpecteed/Search-Engine/internal/searcher/handler"
	"github.com/Un3xpecteed/Search-Engine/internal/searcher/scorer"
	"github.com/Un3xpecteed/Search-Engine/internal/searcher/service"
	"github.com/Un3xpecteed/Search-Engine/pkg/config"
	"github.com/Un3xpecteed/Search-Engine/pkg/health"
	"github.com/Un3xpecteed/Search-Engine/pkg/kafka"
	"github.com/Un3xpecteed/Search-Engine/pkg/logger"
	"github.com/Un3xpecteed/Search-Engine/pkg/metrics"
	"github.com/Un3xpecteed/Search-Engine/pkg/middleware"
	"github.com/Un3xpecteed/Search-Engine/pkg/postgres"
	pkgredis "github.com/Un3xpecteed/Search-Engine/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting search service", "port", cfg.Server.Port)

	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to postgres")

	m := metrics.New()
	var metricsShutdown func(context.Context) error
	if cfg.Metrics.Enabled {
		metricsShutdown = metrics.StartServer(cfg.Metrics.Port)
	}

	var resultCache *cache.ResultCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, result caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		resultCache = cache.New(redisClient, cfg.Redis.CacheTTL, m)
		slog.Info("result cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	indexStore := store.New(db)

	var invalidator indexer.CacheInvalidator
	if resultCache != nil {
		invalidator = resultCache
	}
	ix := indexer.New(indexStore, invalidator, m)

	var svcCache service.ResultCache
	if resultCache != nil {
		svcCache = resultCache
	}
	svc := service.New(scorer.New(indexStore), svcCache, cfg.Search.MaxResults, m)

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer producer.Close()
	collector := analytics.NewCollector(producer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	aggregator := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := consumer.Start(ctx); err != nil {
			slog.Error("analytics consumer error", "error", err)
		}
	}()
	snapshots := analyticsstore.NewStore(db)
	analyticsH := analytics.NewHandler(aggregator, snapshots)
	snapshots.StartPeriodicSave(ctx, aggregator, cfg.Search.SnapshotInterval)
	slog.Info("analytics aggregator started")

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := db.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	ingestH := ingesthandler.New(ix, indexStore, collector)
	searchH := searchhandler.New(svc, resultCache, collector)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/documents", ingestH.Upload)
	mux.HandleFunc("GET /api/v1/documents/{name}", ingestH.GetDocument)
	mux.HandleFunc("GET /api/v1/search", searchH.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", searchH.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", searchH.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /api/v1/analytics/snapshot", analyticsH.Snapshot)
	mux.HandleFunc("GET /health", ingestH.Health)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
		if metricsShutdown != nil {
			if err := metricsShutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}
	}()

	slog.Info("search service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
