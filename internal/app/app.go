// Package app wires configuration, storage, services and HTTP routes into a
// runnable Fiber application.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/config"
	"fulfillment/internal/handlers"
	"fulfillment/internal/middleware"
	"fulfillment/internal/repositories"
	"fulfillment/internal/services"
	"fulfillment/pkg/idempotency"
	"fulfillment/pkg/kafka"
	"fulfillment/pkg/rabbitmq"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired service.
type App struct {
	Fiber *fiber.App
	DB    *gorm.DB

	// MQ is set when events go to RabbitMQ. main attaches a consumer to it.
	MQ *rabbitmq.Client

	closers []func() error
}

// New opens the database, connects the optional brokers and registers every
// route. Call Shutdown to release what it acquired.
func New(cfg config.Config) (*App, error) {
	db, err := OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	a := &App{DB: db}
	a.closers = append(a.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	publisher, err := a.connectPublisher(cfg)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	store, err := a.connectIdempotencyStore(cfg)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	// --- Repositories ---
	itemRepo := repositories.NewGORMItemRepository(db)
	cartRepo := repositories.NewGORMCartRepository(db)
	discountRepo := repositories.NewGORMDiscountRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	operatorRepo := repositories.NewGORMOperatorRepository(db)
	txManager := repositories.NewGORMTxManager(db, cfg.TxIsolation)

	// --- Services ---
	itemService := services.NewItemService(itemRepo)
	cartService := services.NewCartService(cartRepo, itemRepo)
	discountService := services.NewDiscountService(discountRepo, cfg.MintedDiscountPercentage)
	checkoutService := services.NewCheckoutService(txManager, orderRepo, discountService, publisher, services.CheckoutConfig{
		DiscountEveryNOrders: cfg.DiscountEveryNOrders,
		MaxAttempts:          cfg.CheckoutMaxAttempts,
		Timeout:              cfg.CheckoutTimeout,
	})
	orderService := services.NewOrderService(orderRepo)
	reportService := services.NewReportService(orderRepo, discountRepo)
	authService := services.NewAuthService(operatorRepo, cfg.JWTSecret)

	// --- Fiber ---
	a.Fiber = fiber.New(fiber.Config{
		AppName:               "toko",
		DisableStartupMessage: true,
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(logger.New(logger.Config{Output: log.Logger}))

	adminGuard := fiber.Handler(handlers.NoGuard)
	if cfg.AdminAuthEnabled {
		adminGuard = middleware.OperatorAuth(authService)
	}

	checkoutMiddlewares := []fiber.Handler{}
	if cfg.CheckoutRateLimit > 0 {
		checkoutMiddlewares = append(checkoutMiddlewares, limiter.New(limiter.Config{
			Max:        cfg.CheckoutRateLimit,
			Expiration: time.Minute,
		}))
	}
	checkoutMiddlewares = append(checkoutMiddlewares, middleware.Idempotency(store, "checkout", cfg.IdempotencyTTL))

	handlers.NewItemHandler(itemService).RegisterRoutes(a.Fiber, adminGuard)
	handlers.NewCheckoutHandler(checkoutService).RegisterRoutes(a.Fiber, checkoutMiddlewares...)
	handlers.NewCartHandler(cartService).RegisterRoutes(a.Fiber)
	handlers.NewOrderHandler(orderService).RegisterRoutes(a.Fiber)
	handlers.NewAdminHandler(discountService, reportService).RegisterRoutes(a.Fiber, adminGuard)
	handlers.NewAuthHandler(authService).RegisterRoutes(a.Fiber)

	a.Fiber.Get("/health", a.handleHealth)

	return a, nil
}

func (a *App) connectPublisher(cfg config.Config) (services.EventPublisher, error) {
	switch cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ client: %w", err)
		}
		a.MQ = client
		a.closers = append(a.closers, client.Close)
		log.Info().Msg("publishing events to RabbitMQ")
		return client, nil
	case config.BrokerKafka:
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		a.closers = append(a.closers, publisher.Close)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to Kafka")
		return publisher, nil
	default:
		return nil, nil
	}
}

func (a *App) connectIdempotencyStore(cfg config.Config) (idempotency.Store, error) {
	if cfg.RedisAddr == "" {
		return idempotency.NewMemoryStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	a.closers = append(a.closers, rdb.Close)
	return idempotency.NewRedisStore(rdb), nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	status, database := fiber.StatusOK, "connected"
	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		log.Warn().Err(err).Msg("health check failed")
		status, database = fiber.StatusServiceUnavailable, "unreachable"
	}

	body := fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	}
	if status != fiber.StatusOK {
		body["status"] = "unhealthy"
	}
	return c.Status(status).JSON(body)
}

// Shutdown stops the HTTP server and closes brokers and the database.
func (a *App) Shutdown() error {
	var errs []error
	if a.Fiber != nil {
		if err := a.Fiber.ShutdownWithTimeout(shutdownTimeout); err != nil {
			errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
		}
	}
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// close releases resources in reverse acquisition order.
func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
