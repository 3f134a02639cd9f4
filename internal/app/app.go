package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/otakumart/checkout-api/internal/auth"
	"github.com/otakumart/checkout-api/internal/domain/order"
	"github.com/otakumart/checkout-api/internal/domain/payment"
	"github.com/otakumart/checkout-api/internal/events"
	"github.com/otakumart/checkout-api/internal/gateway"
	"github.com/otakumart/checkout-api/internal/handler"
	"github.com/otakumart/checkout-api/internal/storage/postgres"
	redisstore "github.com/otakumart/checkout-api/internal/storage/redis"
	"github.com/otakumart/checkout-api/pkg/health"
	"github.com/otakumart/checkout-api/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Redis client for cart storage.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := rdb.Close(); err != nil {
			lg.Warn("Redis close error", zap.Error(err))
		}
	}()

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddReadinessCheck("redis", 5*time.Second, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	cartStore := redisstore.NewCartStore(rdb, cfg.CartTTL)

	// Event publisher: Kafka when brokers are configured, no-op otherwise.
	var (
		orderEvents   order.EventPublisher   = events.Nop{}
		paymentEvents payment.EventPublisher = events.Nop{}
	)
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, lg.Named("events"))
		producer.Start(ctx)
		defer producer.WaitClosed()
		orderEvents = producer
		paymentEvents = producer
	} else {
		lg.Info("Kafka brokers not configured, event publishing disabled")
	}

	// Payment gateway client. Left nil when credentials are absent so the
	// payment endpoints report the misconfiguration explicitly.
	gwCfg := gateway.Config{
		BaseURL:   cfg.Gateway.BaseURL,
		KeyID:     cfg.Gateway.KeyID,
		KeySecret: cfg.Gateway.KeySecret,
	}
	var gw payment.Gateway
	if gwCfg.Configured() {
		gw = gateway.New(gwCfg)
	} else {
		lg.Warn("Payment gateway credentials not configured")
	}

	// Domain services.
	orderService := order.NewService(userRepo, productRepo, cartStore, orderRepo, orderEvents)
	paymentService := payment.NewService(
		orderRepo, cartStore, gw,
		[]byte(cfg.Gateway.KeySecret), cfg.Gateway.Currency,
		paymentEvents,
	)

	// HTTP routes: health endpoints + API routes on one server.
	h := handler.New(userRepo, productRepo, cartStore, orderRepo, orderService, paymentService)

	router := chi.NewRouter()
	router.Get("/livez", healthSvc.LiveEndpoint)
	router.Get("/readyz", healthSvc.ReadyEndpoint)
	h.Register(router, auth.Middleware([]byte(cfg.JWTSecret)))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
