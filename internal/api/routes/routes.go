package routes

import (
	"enforcement-backend/internal/api/handlers"
	"enforcement-backend/internal/api/middleware"
	"enforcement-backend/internal/config"
	"enforcement-backend/internal/repository"
	"enforcement-backend/internal/services"
	"enforcement-backend/pkg/cache"
	"enforcement-backend/pkg/ratelimit"
	"enforcement-backend/pkg/sms"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func SetupRoutes(router *gin.Engine, db *mongo.Database, vehicleCache cache.VehicleCache, cfg *config.Config) {
	// Repositories
	vehicleRepo := repository.NewMongoVehicleRepository(db)
	fineRepo := repository.NewMongoFineRepository(db)
	adminRepo := repository.NewMongoAdminRepository(db)

	// Notification channel; credentials come from configuration.
	sender := sms.NewGatewaySender(sms.GatewayConfig{
		BaseURL:  cfg.SMS.GatewayURL,
		APIKey:   cfg.SMS.APIKey,
		SenderID: cfg.SMS.SenderID,
		Timeout:  cfg.SMS.Timeout,
	})

	// Services
	tokenService := services.NewTokenService(vehicleRepo)
	fineService := services.NewFineService(vehicleRepo, fineRepo, tokenService, sender, cfg.FineBaseURL)
	settlementService := services.NewSettlementService(fineRepo, vehicleRepo, sender)
	vehicleService := services.NewVehicleService(vehicleRepo)
	if vehicleCache != nil {
		vehicleService.SetVehicleCache(vehicleCache)
	}
	authService := services.NewAuthService(adminRepo)
	reportService := services.NewReportService(fineRepo, vehicleRepo)

	// Handlers
	scanHandler := handlers.NewScanHandler(fineService)
	fineHandler := handlers.NewFineHandler(fineService, settlementService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	authHandler := handlers.NewAuthHandler(authService)
	reportHandler := handlers.NewReportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(db)

	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultConfig())

	api := router.Group("/api/v1")

	api.GET("/health", healthHandler.Health)

	// Public enforcement surface: scanners and owner self-service. Rate
	// limited so access tokens cannot be enumerated.
	public := api.Group("/")
	public.Use(middleware.RateLimitMiddleware(limiter))
	{
		public.POST("/scan", scanHandler.ScanVehicle)
		public.POST("/fines/impose", fineHandler.ImposeFine)
		public.POST("/fines/settle", fineHandler.Settle)
		public.GET("/fines/:token", fineHandler.ListFines)
		public.POST("/auth/login", authHandler.Login)
	}

	// Admin surface
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		vehicles := protected.Group("/vehicles")
		{
			vehicles.GET("", vehicleHandler.GetVehicles)
			vehicles.POST("", vehicleHandler.CreateVehicle)
			vehicles.GET("/:id", vehicleHandler.GetVehicle)
			vehicles.GET("/rfid/:rfid", vehicleHandler.GetVehicleByRFID)
			vehicles.PATCH("/:id", vehicleHandler.UpdateVehicle)
			vehicles.DELETE("/:id", vehicleHandler.DeleteVehicle)
		}

		protected.GET("/reports/summary", reportHandler.Summary)
	}
}
