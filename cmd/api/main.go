package main

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/drivemate/rental-platform/internal/claims"
	"github.com/drivemate/rental-platform/internal/disputes"
	"github.com/drivemate/rental-platform/internal/notifications"
	"github.com/drivemate/rental-platform/internal/payments"
	"github.com/drivemate/rental-platform/internal/suspensions"
	"github.com/drivemate/rental-platform/internal/tripcharges"
	"github.com/drivemate/rental-platform/pkg/common"
	"github.com/drivemate/rental-platform/pkg/config"
	"github.com/drivemate/rental-platform/pkg/database"
	"github.com/drivemate/rental-platform/pkg/logger"
	"github.com/drivemate/rental-platform/pkg/middleware"
	"github.com/drivemate/rental-platform/pkg/redis"
	"github.com/drivemate/rental-platform/pkg/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load("api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Environment, cfg.Server.ServiceName); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Connect to PostgreSQL
	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL database")

	// Connect to Redis
	redisClient, err := redis.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Connected to Redis")

	// Register domain validation tags before any handler binds a payload
	if err := validation.RegisterCustomValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	// Payment processor
	stripeClient := payments.NewStripeClient(&cfg.Stripe)

	// Notifications (no email provider wired yet, failures are logged only)
	notifier := notifications.NewService(nil)

	// Trip charges
	calculator := tripcharges.NewCalculator(cfg.Rates)
	tripChargeRepo := tripcharges.NewRepository(db)
	tripChargeService := tripcharges.NewService(tripChargeRepo, calculator, notifier)
	tripChargeHandler := tripcharges.NewHandler(tripChargeService)

	// Claims
	claimRepo := claims.NewRepository(db)
	claimService := claims.NewService(claimRepo, stripeClient, notifier, cfg.Rates)
	claimHandler := claims.NewHandler(claimService)

	// Disputes
	disputeRepo := disputes.NewRepository(db)
	disputeService := disputes.NewService(disputeRepo, stripeClient, notifier)
	disputeHandler := disputes.NewHandler(disputeService)

	// Suspensions
	suspensionRepo := suspensions.NewRepository(db)
	suspensionService := suspensions.NewService(suspensionRepo, redisClient, notifier)
	suspensionHandler := suspensions.NewHandler(suspensionService)

	// Set up Gin router
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.CORSOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Correlation-ID"}
	router.Use(cors.New(corsConfig))

	// Health check and metrics
	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, "1.0.0", map[string]func() error{
		"postgres": func() error { return db.Ping(context.Background()) },
		"redis":    func() error { return redisClient.Ping(context.Background()).Err() },
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("/:booking_id/finalize", tripChargeHandler.FinalizeTrip)
			bookings.POST("/:booking_id/charges/preview", tripChargeHandler.PreviewCharges)
			bookings.GET("/:booking_id/charges", tripChargeHandler.GetCharges)
		}

		charges := api.Group("/charges")
		{
			charges.POST("/:record_id/dispute", disputeHandler.FileDispute)
			charges.POST("/:record_id/resolve", disputeHandler.ResolveDispute)
		}

		hosts := api.Group("/hosts")
		{
			hosts.POST("/:host_id/claims", claimHandler.CreateClaim)
			hosts.GET("/:host_id/claims", claimHandler.ListHostClaims)
		}

		claimRoutes := api.Group("/claims")
		{
			claimRoutes.GET("/:claim_id", claimHandler.GetClaim)
			claimRoutes.POST("/:claim_id/approve", claimHandler.ApproveClaim)
			claimRoutes.POST("/:claim_id/deny", claimHandler.DenyClaim)
			claimRoutes.POST("/:claim_id/charge-guest", claimHandler.ChargeGuest)
		}

		transfers := api.Group("/transfers")
		{
			transfers.GET("/pending", claimHandler.ListPendingTransfers)
			transfers.POST("/:transfer_id/retry", claimHandler.RetryTransfer)
		}

		suspensionRoutes := api.Group("/suspensions")
		{
			suspensionRoutes.POST("", suspensionHandler.SuspendUser)
			suspensionRoutes.GET("/violation-types", suspensionHandler.ListViolationTypes)
			suspensionRoutes.GET("/:user_id/:role", suspensionHandler.GetStatus)
			suspensionRoutes.DELETE("/:user_id/:role", suspensionHandler.LiftSuspension)
		}
	}

	addr := ":" + cfg.Server.Port
	logger.Info("API server starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
