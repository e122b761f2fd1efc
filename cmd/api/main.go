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

	"github.com/lodgio/lodgio-api/internal/cache"
	"github.com/lodgio/lodgio-api/internal/config"
	"github.com/lodgio/lodgio-api/internal/database"
	"github.com/lodgio/lodgio-api/internal/handler"
	"github.com/lodgio/lodgio-api/internal/middleware"
	"github.com/lodgio/lodgio-api/internal/pricing"
	"github.com/lodgio/lodgio-api/internal/repository"
	"github.com/lodgio/lodgio-api/internal/service"
	"github.com/lodgio/lodgio-api/internal/sse"
	"github.com/lodgio/lodgio-api/internal/worker"
	"github.com/lodgio/lodgio-api/pkg/channelpush"
)

// main is the application entrypoint for the inventory and pricing engine.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting lodgio api")

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

	// 3c. Initialize change cache
	changeCache := cache.NewAvailabilityChangeCache(redisClient)

	// 4. Initialize channel push client
	channelClient := channelpush.NewClient(cfg.Channel.BaseURL, cfg.Channel.HotelCode, cfg.Channel.APIKey)

	// 5. Initialize repositories
	productRepo := repository.NewProductRepository(db)
	unitStatusRepo := repository.NewUnitStatusRepository(db)
	blockRepo := repository.NewBlockHoldRepository(db)
	unassignedRepo := repository.NewUnassignedSaleRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	ratePlanRepo := repository.NewRatePlanRepository(db)
	basePriceRepo := repository.NewBasePriceRepository(db)
	sellingPriceRepo := repository.NewSellingPriceRepository(db)
	taxRepo := repository.NewTaxRepository(db)
	occupancyRepo := repository.NewOccupancyRateRepository(db)
	amenityRepo := repository.NewAmenityRepository(db)

	// 6. Initialize SSE hub for extranet live updates
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	// 7. Initialize services
	composer := pricing.NewComposer(basePriceRepo, ratePlanRepo, occupancyRepo, amenityRepo, taxRepo, sellingPriceRepo)
	repriceSvc := service.NewRepriceService(productRepo, ratePlanRepo, ratePlanRepo, composer)
	restrictionSvc := service.NewRestrictionService()
	overbookingSvc := service.NewOverbookingService(availabilityRepo)
	debouncer := service.NewSyncDebouncer(channelClient, cfg.Engine.DebounceQuiet)
	dispatcher := worker.NewDispatcher(cfg.Engine.DispatcherQueue)

	availabilitySvc := service.NewAvailabilityService(
		productRepo,
		productRepo,
		unitStatusRepo,
		blockRepo,
		unassignedRepo,
		availabilityRepo,
		changeCache,
		dispatcher,
		restrictionSvc,
		repriceSvc,
		debouncer,
		notifier,
	)
	mutationSvc := service.NewMutationService(unitStatusRepo, blockRepo, availabilityRepo, productRepo, availabilitySvc)
	reservationSvc := service.NewReservationService(unitStatusRepo, unassignedRepo, overbookingSvc, availabilitySvc)

	// 8. Initialize handlers
	handlers := &Handlers{
		Health:       handler.NewHealthHandler(db, redisClient),
		Availability: handler.NewAvailabilityHandler(availabilitySvc, mutationSvc, availabilityRepo),
		Inventory:    handler.NewInventoryHandler(mutationSvc),
		Reservation:  handler.NewReservationHandler(reservationSvc),
		Pricing:      handler.NewPricingHandler(sellingPriceRepo, basePriceRepo, repriceSvc),
		SSE:          handler.NewSSEHandler(hub, cfg.APIKey),
	}

	// 9. Initialize middleware
	authMw := middleware.NewAuthMiddleware(cfg.APIKey)

	// 10. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, authMw)

	// 11. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 12. Start workers
	dispatcher.Start(ctx)
	go worker.NewResyncWorker(productRepo, availabilitySvc, cfg.Engine.ResyncInterval, cfg.Engine.HorizonDays).Start(ctx)

	// 13. Start HTTP server
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

	// 14. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 15. Cancel context to stop workers, then drain queued pushes so
	// debounced channel updates are not silently dropped.
	cancel()
	dispatcher.Wait()
	debouncer.Flush()

	// 16. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health       *handler.HealthHandler
	Availability *handler.AvailabilityHandler
	Inventory    *handler.InventoryHandler
	Reservation  *handler.ReservationHandler
	Pricing      *handler.PricingHandler
	SSE          *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/v1/health", handlers.Health.Check)

	// SSE stream authenticates via query param; EventSource cannot set headers.
	router.GET("/v1/events", handlers.SSE.Stream)

	v1 := router.Group("/v1")
	v1.Use(authMiddleware.Handle())
	{
		// Availability
		v1.GET("/availability", handlers.Availability.GetAvailability)
		v1.POST("/availability/reconcile", handlers.Availability.Reconcile)
		v1.PUT("/availability/adjustment", handlers.Availability.ApplyAdjustment)

		// Inventory facts
		v1.PUT("/units/status", handlers.Inventory.SetUnitStatus)
		v1.PUT("/blocks", handlers.Inventory.SetBlockHold)

		// Reservations
		v1.POST("/reservations/commit", handlers.Reservation.Commit)
		v1.POST("/reservations/cancel", handlers.Reservation.Cancel)

		// Pricing
		v1.GET("/prices", handlers.Pricing.GetPrices)
		v1.POST("/prices/base", handlers.Pricing.SetBasePrice)
		v1.PUT("/rate-plans/:id/adjustment", handlers.Pricing.ApplyRatePlanAdjustment)
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

	// Run migrations
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
