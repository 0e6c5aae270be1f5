package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/barterly/pos-sync/internal/cache"
	"github.com/barterly/pos-sync/internal/config"
	"github.com/barterly/pos-sync/internal/crypto"
	"github.com/barterly/pos-sync/internal/database"
	"github.com/barterly/pos-sync/internal/handler"
	"github.com/barterly/pos-sync/internal/middleware"
	"github.com/barterly/pos-sync/internal/repository"
	"github.com/barterly/pos-sync/internal/service"
	"github.com/barterly/pos-sync/internal/utils"
	"github.com/barterly/pos-sync/internal/worker"
)

// main is the application entrypoint for the POS product sync service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting pos sync service")

	utils.InitJWT(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	progressCache := cache.NewProgressCache(redisClient)

	// 4. Initialize repositories
	integrationRepo := repository.NewIntegrationRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	progressRepo := repository.NewSyncProgressRepository(db)

	// 5. Token cipher for credentials at rest
	tokenCipher, err := crypto.NewTokenCipher(cfg.TokenKey)
	if err != nil {
		log.Error().Err(err).Msg("token cipher initialization failed")
		fmt.Fprintf(os.Stderr, "token cipher initialization failed: %v\n", err)
		os.Exit(1)
	}

	// 6. Initialize services
	categoryMapper := service.NewCategoryMapper(categoryRepo)
	reporter := service.NewProgressReporter(progressRepo, progressCache)

	registry := service.NewAdapterRegistry()
	registry.Register(service.NewSquareAdapter(productRepo, categoryMapper, reporter))
	registry.Register(service.NewShopifyAdapter(productRepo, categoryMapper, reporter))
	registry.Register(service.NewCloverAdapter(productRepo, integrationRepo, categoryMapper, reporter))
	registry.Register(service.NewLightspeedAdapter(productRepo, categoryMapper, reporter))
	registry.Register(service.NewToastAdapter())
	log.Info().Int("adapters", len(registry.Providers())).Msg("POS adapters registered")

	refreshSvc := service.NewTokenRefreshService(integrationRepo, tokenCipher, cfg)
	syncSvc := service.NewSyncService(integrationRepo, productRepo, registry, reporter, tokenCipher, refreshSvc)
	progressSvc := service.NewProgressService(progressRepo, integrationRepo, progressCache)
	integrationSvc := service.NewIntegrationService(integrationRepo, registry)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:      handler.NewHealthHandler(db, redisClient),
		Sync:        handler.NewSyncHandler(syncSvc, progressSvc),
		Integration: handler.NewIntegrationHandler(integrationSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	if cfg.Worker.CatalogSyncEnabled {
		go worker.NewCatalogSyncWorker(integrationRepo, syncSvc, cfg.Worker.CatalogSyncInterval).Start(ctx)
	}

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health      *handler.HealthHandler
	Sync        *handler.SyncHandler
	Integration *handler.IntegrationHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/health", handlers.Health.GetHealth)

	pos := router.Group("/api/v1/pos")
	pos.Use(jwtMiddleware.Handle())
	{
		pos.POST("/sync", handlers.Sync.SyncProducts)
		pos.GET("/sync/:progressId", handlers.Sync.GetProgress)
		pos.GET("/integrations", handlers.Integration.GetIntegrations)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
