package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/domain"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/handlers"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth         *usecase.AuthService
	Recovery     *usecase.RecoveryService
	Users        *usecase.UserService
	Producers    *usecase.ProducerService
	Farms        *usecase.FarmService
	Crops        *usecase.CropService
	Harvests     *usecase.HarvestService
	PlantedCrops *usecase.PlantedCropService
	Dashboard    *usecase.DashboardService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	if deps.Config != nil && len(deps.Config.App.CORSAllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.CORSAllowedOrigins))
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)
	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)
	adminOnly := middleware.RequireRole(domain.RoleAdmin, domain.RoleSuperAdmin)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		loginLimit, recoveryLimit := 0, 0
		if deps.Config != nil {
			loginLimit = deps.Config.RateLimit.LoginMaxAttempts
			recoveryLimit = deps.Config.RateLimit.RecoveryMaxAttempts
		}

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup, ipRateLimit(deps, "auth_login_ip", loginLimit)...)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.Recovery)
		passwordHandler.RegisterRoutes(authGroup, ipRateLimit(deps, "password_recovery_ip", recoveryLimit)...)

		userHandler := handlers.NewUserHandler(deps.Services.Users)

		profileGroup := api.Group("/profile")
		profileGroup.Use(authMiddleware)
		userHandler.RegisterProfileRoutes(profileGroup)

		userGroup := api.Group("/users")
		userGroup.Use(authMiddleware, adminOnly)
		userHandler.RegisterRoutes(userGroup)

		producerGroup := api.Group("/producers")
		producerGroup.Use(authMiddleware, adminOnly)
		handlers.NewProducerHandler(deps.Services.Producers).RegisterRoutes(producerGroup)

		farmGroup := api.Group("/farms")
		farmGroup.Use(authMiddleware, adminOnly)
		handlers.NewFarmHandler(deps.Services.Farms).RegisterRoutes(farmGroup)

		cropGroup := api.Group("/crops")
		cropGroup.Use(authMiddleware, adminOnly)
		handlers.NewCropHandler(deps.Services.Crops).RegisterRoutes(cropGroup)

		harvestGroup := api.Group("/harvests")
		harvestGroup.Use(authMiddleware, adminOnly)
		handlers.NewHarvestHandler(deps.Services.Harvests).RegisterRoutes(harvestGroup)

		plantedGroup := api.Group("/planted-crops")
		plantedGroup.Use(authMiddleware, adminOnly)
		handlers.NewPlantedCropHandler(deps.Services.PlantedCrops).RegisterRoutes(plantedGroup)

		dashboardGroup := api.Group("/dashboard")
		dashboardGroup.Use(authMiddleware, adminOnly)
		handlers.NewDashboardHandler(deps.Services.Dashboard).RegisterRoutes(dashboardGroup)
	}

	return r
}

// ipRateLimit builds a per-client-IP sliding window rule when a limiter and
// a positive limit are configured.
func ipRateLimit(deps Dependencies, name string, limit int) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
