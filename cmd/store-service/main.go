package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	cartapp "github.com/dmehra2102/shopease/internal/cart/application"
	carthttp "github.com/dmehra2102/shopease/internal/cart/infrastructure/http"
	cartpg "github.com/dmehra2102/shopease/internal/cart/infrastructure/postgres"
	catalogapp "github.com/dmehra2102/shopease/internal/catalog/application"
	cataloghttp "github.com/dmehra2102/shopease/internal/catalog/infrastructure/http"
	catalogpg "github.com/dmehra2102/shopease/internal/catalog/infrastructure/postgres"
	customerapp "github.com/dmehra2102/shopease/internal/customer/application"
	customerhttp "github.com/dmehra2102/shopease/internal/customer/infrastructure/http"
	customerpg "github.com/dmehra2102/shopease/internal/customer/infrastructure/postgres"
	orderapp "github.com/dmehra2102/shopease/internal/order/application"
	orderhttp "github.com/dmehra2102/shopease/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/shopease/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/shopease/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/shopease/internal/platform/auth"
	"github.com/dmehra2102/shopease/internal/platform/config"
	"github.com/dmehra2102/shopease/internal/platform/httpx"
	"github.com/dmehra2102/shopease/internal/platform/metrics"
	"github.com/dmehra2102/shopease/internal/platform/postgres"
	reviewapp "github.com/dmehra2102/shopease/internal/review/application"
	reviewhttp "github.com/dmehra2102/shopease/internal/review/infrastructure/http"
	reviewpg "github.com/dmehra2102/shopease/internal/review/infrastructure/postgres"
	"github.com/dmehra2102/shopease/pkg/idempotency"
	"github.com/dmehra2102/shopease/pkg/logging"
	"github.com/dmehra2102/shopease/pkg/outbox"
	"github.com/dmehra2102/shopease/pkg/shutdown"
	"github.com/dmehra2102/shopease/pkg/tracing"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "store-service", cfg.OTLPURL, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres
	pool, err := postgres.Connect(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Error("pg migrate failed", "err", err)
		os.Exit(1)
	}

	// Redis for idempotency keys
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis ping failed", "err", err)
		os.Exit(1)
	}
	idem := idempotency.NewStore(rdb, cfg.IdempotencyTTL)

	// Kafka producer & outbox relay
	writer := orderkafka.NewWriter(log, cfg.KafkaBrokers)
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, postgres.NewOutboxStore(log, pool), dispatch, cfg.RelayID)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer)
	byPrincipal := func(prefix string) func(r *http.Request) string {
		return func(r *http.Request) string {
			p, _ := auth.FromContext(r.Context())
			return prefix + ":" + p.UserID + ":" + r.URL.Path
		}
	}

	catalogSvc := catalogapp.NewService(catalogpg.NewProductRepository(log, pool), catalogpg.NewCollectionRepository(log, pool))
	cartSvc := cartapp.NewService(cartpg.NewRepository(log, pool), m)
	orderSvc := orderapp.NewService(orderpg.NewRepository(log, pool), m)
	customerSvc := customerapp.NewService(customerpg.NewRepository(log, pool))
	reviewSvc := reviewapp.NewService(reviewpg.NewRepository(log, pool))

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(tokens, log))
		cataloghttp.NewHandler(log, catalogSvc).Register(r)
		reviewhttp.NewHandler(log, reviewSvc).Register(r)
		carthttp.NewHandler(log, cartSvc,
			carthttp.WithWriteGuard(idempotency.Middleware(idem, log, byPrincipal("cart"))),
		).Register(r)
		orderhttp.NewHandler(log, orderSvc,
			orderhttp.WithPlaceGuard(idempotency.Middleware(idem, log, byPrincipal("order"))),
		).Register(r)
		customerhttp.NewHandler(log, customerSvc).Register(r)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relay.Run(gctx)
	})
	g.Go(func() error {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return shutdown.HTTPServer(gctx, srv, 10*time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Error("store-service stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("store-service shutdown complete")
}
