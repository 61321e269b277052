package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/velozpay/ledger/internal/api/handler"
	"github.com/velozpay/ledger/internal/api/middleware"
	"github.com/velozpay/ledger/internal/api/spec"
	"github.com/velozpay/ledger/internal/config"
	"github.com/velozpay/ledger/internal/idempotency"
	"github.com/velozpay/ledger/internal/ledger"
	"go.uber.org/zap"
)

type Router struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *pgxpool.Pool
	redis  redis.Cmdable
	svc    *ledger.Service
	admin  ledger.AdminStore
	idem   *idempotency.Cache
}

func NewRouter(cfg *config.Config, logger *zap.Logger, db *pgxpool.Pool, redisClient redis.Cmdable, svc *ledger.Service, admin ledger.AdminStore, idem *idempotency.Cache) *Router {
	return &Router{
		cfg:    cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
		svc:    svc,
		admin:  admin,
		idem:   idem,
	}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)

	operationHandler := handler.NewOperationHandler(api.svc)
	adminHandler := handler.NewAdminHandler(api.admin)
	healthHandler := handler.NewHealthHandler(api.db, api.redis)

	r.Get("/healthz/live", healthHandler.Live)
	r.Get("/healthz/ready", healthHandler.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))
		r.Use(middleware.IdempotencyMiddleware(api.idem, api.logger))

		r.Post("/v1/operations/credit", operationHandler.Credit)
		r.Post("/v1/operations/debit", operationHandler.Debit)
		r.Post("/v1/operations/reserve", operationHandler.Reserve)
		r.Post("/v1/operations/capture", operationHandler.Capture)
		r.Post("/v1/operations/release", operationHandler.Release)
		r.Post("/v1/operations/transfer", operationHandler.Transfer)
		r.Post("/v1/operations/revert", operationHandler.Revert)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS))

		r.Get("/v1/operations/{operationID}", operationHandler.GetOperation)
		r.Get("/v1/accounts/{accountID}", operationHandler.GetAccount)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)
		r.Use(middleware.RequireRole("admin"))

		r.Get("/v1/admin/clients", adminHandler.ListClients)
		r.Get("/v1/admin/accounts", adminHandler.ListAccounts)
		r.Get("/v1/admin/operations", adminHandler.ListOperations)
	})

	return r
}
