package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/seed"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	log, err := newLogger(cfg.App)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped with error", zap.Error(err))
	}
}

func newLogger(app config.AppConfig) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if app.IsDevelopment() {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(app.LogLevel)
	return zapCfg.Build()
}

// healthCheck reports whether a backing service is reachable.
type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// appDeps carries everything the HTTP layer is built from.
type appDeps struct {
	log          *zap.Logger
	authService  *services.AuthService
	queryService *services.ProductQueryService
	productSvc   *services.ProductService
	imageSvc     *services.ImageService
	checks       []healthCheck
}

// newApp builds the Fiber application with all routes registered.
func newApp(deps appDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		components := fiber.Map{}
		for _, check := range deps.checks {
			if err := check.ping(ctx); err != nil {
				deps.log.Warn("health check failed", zap.String("component", check.name), zap.Error(err))
				components[check.name] = "unavailable"
				status = fiber.StatusServiceUnavailable
				continue
			}
			components[check.name] = "connected"
		}

		health := "healthy"
		if status != fiber.StatusOK {
			health = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":     health,
			"time":       time.Now().Format(time.RFC3339),
			"components": components,
		})
	})

	// --- API Routes ---
	apiV1 := app.Group("/api/v1", middleware.Authenticate(deps.authService, deps.log))
	handlers.NewAuthHandler(deps.authService, deps.log).RegisterRoutes(apiV1)
	handlers.NewProductHandler(deps.queryService, deps.productSvc, deps.imageSvc, deps.log).
		RegisterRoutes(apiV1, middleware.AuthRequired())

	return app
}

func databaseCheck(db *gorm.DB) healthCheck {
	return healthCheck{name: "database", ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()

	// --- Database ---
	db, err := repositories.OpenDatabase(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return err
	}
	if err := repositories.Migrate(db); err != nil {
		return err
	}
	checks := []healthCheck{databaseCheck(db)}

	// --- Initialize Repositories ---
	productRepo := repositories.NewGORMProductRepository(db)
	categoryRepo := repositories.NewGORMCategoryRepository(db)
	imageRepo := repositories.NewGORMProductImageRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	if cfg.Seed.Enabled {
		seeder := seed.NewSeeder(categoryRepo, userRepo, productRepo, log)
		admin := seed.Admin{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
		superAdmin := seed.Admin{Email: cfg.Seed.SuperAdminEmail, Password: cfg.Seed.SuperAdminPassword}
		if err := seeder.Run(ctx, admin, superAdmin); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	// --- Optional event publisher and response cache ---
	// Interfaces stay nil when a backend is not configured.
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, log)
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Info("RABBITMQ_URL not set, catalog events are disabled")
	}

	var responseCache services.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			return err
		}
		defer redisCache.Close()
		responseCache = redisCache
		checks = append(checks, healthCheck{name: "redis", ping: redisCache.Ping})
	} else {
		log.Info("REDIS_ADDR not set, response cache is disabled")
	}

	// --- Initialize Services ---
	policy := services.AdminPolicy(cfg.Auth.EnforceAdminRole)
	app := newApp(appDeps{
		log:          log,
		authService:  services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.JWTTTL, log),
		queryService: services.NewProductQueryService(productRepo, categoryRepo, policy, responseCache, log),
		productSvc:   services.NewProductService(productRepo, categoryRepo, policy, publisher, responseCache, log),
		imageSvc:     services.NewImageService(productRepo, imageRepo, policy, publisher, responseCache, log),
		checks:       checks,
	})

	// --- Start HTTP Server ---
	serverErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.App.Port), zap.String("env", cfg.App.Env))
		serverErr <- app.Listen(cfg.App.Port)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		log.Info("shutting down server", zap.String("signal", sig.String()))
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during Fiber shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server gracefully stopped")
	return nil
}
