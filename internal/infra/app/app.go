package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/KevinRuanSoares/serasa-test-api/internal/core/port"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/config"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/database"
	kafkainfra "github.com/KevinRuanSoares/serasa-test-api/internal/infra/kafka"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/logger"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/notify"
	redisinfra "github.com/KevinRuanSoares/serasa-test-api/internal/infra/redis"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/security"
	"github.com/KevinRuanSoares/serasa-test-api/internal/infra/telemetry"
	postgresrepo "github.com/KevinRuanSoares/serasa-test-api/internal/repository/postgres"
	redisrepo "github.com/KevinRuanSoares/serasa-test-api/internal/repository/redis"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/middleware"
	"github.com/KevinRuanSoares/serasa-test-api/internal/transport/http/routes"
	"github.com/KevinRuanSoares/serasa-test-api/internal/usecase"
)

// Application wires configuration, infrastructure, services, and the HTTP
// engine together and owns their shutdown order.
type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

// New assembles the application from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var kafkaProducer *kafkainfra.Producer
	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			kafkaProducer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log).WithMetrics(metrics)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitTTL := cfg.Redis.RateLimitTTL
	if rateLimitTTL <= 0 {
		rateLimitTTL = rateLimitWindow * 2
	}
	rateLimitPrefix := cfg.Redis.RateLimitPrefix
	if rateLimitPrefix == "" {
		rateLimitPrefix = "agro:rate_limit"
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: rateLimitPrefix,
		TTL:       rateLimitTTL,
	})
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	passwordPolicy := security.NewPasswordPolicy()
	notifier := notify.NewLoggingRecoveryNotifier(log)

	authService := usecase.NewAuthService(cfg, repos.Users, repos.Tokens, rateLimitStore, log)
	recoveryService := usecase.NewRecoveryService(cfg, repos.Users, rateLimitStore, eventPublisher, notifier, passwordPolicy, log)
	userService := usecase.NewUserService(repos.Users, passwordPolicy)
	producerService := usecase.NewProducerService(repos.Producers, eventPublisher, log)
	farmService := usecase.NewFarmService(repos.Farms, repos.Producers, eventPublisher, log)
	cropService := usecase.NewCropService(repos.Crops, eventPublisher, log)
	harvestService := usecase.NewHarvestService(repos.Harvests, repos.Farms, eventPublisher, log)
	plantedCropService := usecase.NewPlantedCropService(repos.PlantedCrops, repos.Harvests, repos.Crops, eventPublisher, log)
	dashboardService := usecase.NewDashboardService(repos.Dashboard)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Recovery:     recoveryService,
			Users:        userService,
			Producers:    producerService,
			Farms:        farmService,
			Crops:        cropService,
			Harvests:     harvestService,
			PlantedCrops: plantedCropService,
			Dashboard:    dashboardService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: kafkaProducer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down in order.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			if err := a.producer.Close(); err != nil {
				a.logger.Warn("close kafka producer", zap.Error(err))
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting registry API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
