package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/velozpay/ledger/internal/api"
	"github.com/velozpay/ledger/internal/api/middleware"
	"github.com/velozpay/ledger/internal/config"
	"github.com/velozpay/ledger/internal/db"
	"github.com/velozpay/ledger/internal/events"
	"github.com/velozpay/ledger/internal/idempotency"
	"github.com/velozpay/ledger/internal/ledger"
	"github.com/velozpay/ledger/internal/lock"
	"github.com/velozpay/ledger/internal/observability"
	"github.com/velozpay/ledger/internal/repository"
	"github.com/velozpay/ledger/internal/worker"
	"go.uber.org/zap"
)

// Run bootstraps the HTTP server and reconciliation worker, blocking until
// shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)
	observability.Init()
	middleware.SetJWTSecret(cfg.JWTSecret)
	middleware.SetJWTValidation(cfg.JWTIssuer, cfg.JWTAudience)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	accounts, operations, admin, pool, err := newStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	rawPublisher, closePublisher := newRawPublisher(cfg, logger)
	defer closePublisher()

	publisher := events.NewRetryPublisher(rawPublisher, logger).
		WithMaxAttempts(cfg.PublishMaxAttempts).
		WithBaseDelay(cfg.PublishBaseDelay)

	svc := ledger.NewService(accounts, operations, lock.NewRegistry(), publisher, logger)

	reconciliation := worker.NewReconciliationWorker(ledger.NewReconciliationService(admin), logger).
		WithInterval(cfg.ReconciliationInterval)
	stopWorker := reconciliation.Run(ctx)

	redisClient, idemCache, err := newIdempotency(cfg, logger)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	router := api.NewRouter(cfg, logger, pool, redisCmdable(redisClient), svc, admin, idemCache)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageDriver))
		serverErr <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("stopping reconciliation worker")
	stopWorker()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}

	logger.Info("shutdown complete")
	return nil
}

func newStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ledger.AccountStore, ledger.OperationStore, ledger.AdminStore, *pgxpool.Pool, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		store := repository.NewPostgresStore(pool)
		if cfg.SeedDemoData {
			if err := repository.Seed(ctx, store, logger); err != nil {
				pool.Close()
				return nil, nil, nil, nil, fmt.Errorf("seed database: %w", err)
			}
		}
		return store.Accounts(), store.Operations(), store, pool, nil
	case config.StorageDriverMemory:
		store := repository.NewMemoryStore()
		if cfg.SeedDemoData {
			if err := repository.Seed(ctx, store, logger); err != nil {
				return nil, nil, nil, nil, fmt.Errorf("seed store: %w", err)
			}
		}
		return store.Accounts(), store.Operations(), store, nil, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

func newRawPublisher(cfg *config.Config, logger *zap.Logger) (events.Publisher, func()) {
	if cfg.RabbitURL == "" {
		logger.Warn("rabbitmq url not set, events stay in memory")
		return events.NewInMemoryPublisher(), func() {}
	}
	rabbit := events.NewRabbitMQPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	return rabbit, func() {
		if err := rabbit.Close(); err != nil {
			logger.Warn("rabbitmq close failed", zap.Error(err))
		}
	}
}

func newIdempotency(cfg *config.Config, logger *zap.Logger) (*redis.Client, *idempotency.Cache, error) {
	if cfg.RedisURL == "" {
		logger.Warn("redis url not set, idempotency response cache disabled")
		return nil, nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, idempotency.NewCache(client, cfg.IdempotencyTTL), nil
}

func redisCmdable(client *redis.Client) redis.Cmdable {
	if client == nil {
		return nil
	}
	return client
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info", "":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}
