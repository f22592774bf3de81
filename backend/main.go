package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"educprogress/backend/cache"
	"educprogress/backend/config"
	"educprogress/backend/middleware"
	"educprogress/backend/routes"
	"educprogress/backend/services"
	"educprogress/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.InitLogger().Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger(utils.LoggerConfig{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
	})

	shutdownTracer := utils.InitTracer(cfg.TracingEnabled, cfg.ServiceName, logger)

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatalf("Error initializing database: %v", err)
	}

	// Optional summary cache
	var summaryCache services.SummaryCache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisSummaryCache(context.Background(), cfg.RedisURL, cfg.SummaryCacheTTL)
		if err != nil {
			logger.WithError(err).Warn("summary cache disabled")
		} else {
			defer redisCache.Close()
			summaryCache = redisCache
		}
	}

	clock := services.SystemClock{}
	identity := services.NewGormIdentityStore(db)
	catalog := services.NewGormModuleCatalog(db)
	reader := services.NewProgressReader(db)
	notifications := services.NewNotificationService(db, clock)
	progress := services.NewProgressService(db, identity, catalog, notifications, reader, logger, services.ProgressServiceOptions{
		Cache:           summaryCache,
		Clock:           clock,
		NotifyGuardians: cfg.NotifyGuardians,
	})
	summary := services.NewSummaryService(identity, reader, summaryCache, logger)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "educ-progress",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, routes.Deps{
		DB:            db,
		Progress:      progress,
		Summary:       summary,
		Notifications: notifications,
		Log:           logger,
	}, cfg)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.WithError(err).Error("server shutdown")
		}
	}()

	// Start server
	logger.Infof("listening on :%s", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Error("server stopped")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracer(ctx); err != nil {
		logger.WithError(err).Warn("tracer shutdown")
	}
}
