package main

import (
	"context"

	"enforcement-backend/internal/api/routes"
	"enforcement-backend/internal/config"
	"enforcement-backend/internal/repository"
	"enforcement-backend/pkg/cache"
	"enforcement-backend/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to MongoDB
	db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		logrus.Fatal("Failed to connect to database: ", err)
	}
	defer database.Disconnect(db.Client())

	// Index bootstrap; lookups depend on these but startup survives failure.
	ctx := context.Background()
	if err := repository.NewMongoVehicleRepository(db).CreateIndexes(ctx); err != nil {
		logrus.Warn("Failed to create vehicle indexes: ", err)
	}
	if err := repository.NewMongoFineRepository(db).CreateIndexes(ctx); err != nil {
		logrus.Warn("Failed to create fine indexes: ", err)
	}
	if err := repository.NewMongoAdminRepository(db).CreateIndexes(ctx); err != nil {
		logrus.Warn("Failed to create admin indexes: ", err)
	}

	// Optional vehicle read cache
	var vehicleCache cache.VehicleCache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisVehicleCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisCache.HealthCheck(ctx); err != nil {
			logrus.Warn("Redis unavailable, running without vehicle cache: ", err)
		} else {
			logrus.Info("Redis vehicle cache enabled at ", cfg.Redis.Addr)
			vehicleCache = redisCache
			defer redisCache.Close()
		}
	}

	// Setup Gin router
	router := gin.Default()

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}

	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, vehicleCache, cfg)

	logrus.Info("Server starting on port ", cfg.Port)
	logrus.Fatal(router.Run(":" + cfg.Port))
}
