package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ronjeternate/BizarreAdventure/internal/auth"
	"github.com/ronjeternate/BizarreAdventure/internal/config"
	"github.com/ronjeternate/BizarreAdventure/internal/event"
	handler "github.com/ronjeternate/BizarreAdventure/internal/handler/http"
	"github.com/ronjeternate/BizarreAdventure/internal/notifier"
	pgrepo "github.com/ronjeternate/BizarreAdventure/internal/repository/postgres"
	redisrepo "github.com/ronjeternate/BizarreAdventure/internal/repository/redis"
	"github.com/ronjeternate/BizarreAdventure/internal/service"
	"github.com/ronjeternate/BizarreAdventure/migrations"
	"github.com/ronjeternate/BizarreAdventure/pkg/database"
	"github.com/ronjeternate/BizarreAdventure/pkg/health"
	"github.com/ronjeternate/BizarreAdventure/pkg/httpclient"
	pkgkafka "github.com/ronjeternate/BizarreAdventure/pkg/kafka"
	"github.com/ronjeternate/BizarreAdventure/pkg/middleware"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	rdb        *redis.Client
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// PostgreSQL pool and schema migrations.
	pool, err := database.NewPostgresPool(ctx, cfg.PostgresConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Redis client for cart storage.
	rdb, err := database.NewRedisClient(ctx, cfg.RedisConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// Kafka producer for domain events.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Repositories.
	productRepo := pgrepo.NewProductRepository(pool)
	addressRepo := pgrepo.NewAddressRepository(pool)
	orderRepo := pgrepo.NewOrderRepository(pool)
	userRepo := pgrepo.NewUserRepository(pool)
	testimonialRepo := pgrepo.NewTestimonialRepository(pool)
	cartRepo := redisrepo.NewCartRepository(rdb, cfg.CartTTL)

	// Outbound email relay behind a retrying client and a circuit breaker.
	relayClient := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("email-relay"),
		logger,
	)
	emailRelay := notifier.NewEmailRelay(relayClient, cfg.EmailRelayURL, logger)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	eventProducer := event.NewProducer(producer, logger)

	services := handler.Services{
		Catalog:     service.NewCatalogService(productRepo, logger),
		Cart:        service.NewCartService(cartRepo, productRepo, eventProducer, logger),
		Address:     service.NewAddressService(addressRepo, logger),
		Checkout:    service.NewCheckoutService(orderRepo, cartRepo, addressRepo, userRepo, eventProducer, emailRelay, logger),
		Order:       service.NewOrderService(orderRepo, userRepo, eventProducer, emailRelay, logger),
		User:        service.NewUserService(userRepo, jwtManager, emailRelay, logger),
		Testimonial: service.NewTestimonialService(testimonialRepo, userRepo, logger),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})

	router := handler.NewRouter(services, jwtManager, healthHandler, logger, cfg.AllowedOrigins)
	rateLimited := middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)(router)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      rateLimited,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		rdb:        rdb,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
