package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prohmpiriya/residence-gate/internal/di"
	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/gateway"
	"github.com/prohmpiriya/residence-gate/internal/handler"
	"github.com/prohmpiriya/residence-gate/internal/metrics"
	"github.com/prohmpiriya/residence-gate/internal/middleware"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/internal/seed"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/internal/worker"
	"github.com/prohmpiriya/residence-gate/pkg/config"
	"github.com/prohmpiriya/residence-gate/pkg/database"
	"github.com/prohmpiriya/residence-gate/pkg/logger"
	pkgmiddleware "github.com/prohmpiriya/residence-gate/pkg/middleware"
	pkgredis "github.com/prohmpiriya/residence-gate/pkg/redis"
	"github.com/prohmpiriya/residence-gate/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Residence Gate...", zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// Initialize tracing and metrics
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn("Telemetry disabled", zap.Error(err))
	}
	if err := metrics.Init(); err != nil {
		appLog.Warn("Metrics disabled", zap.Error(err))
	}

	// Redis backs shared occupancy counts and idempotency keys
	var redisClient *pkgredis.Client
	var counter repository.OccupancyCounter
	var idempotency gin.HandlerFunc
	if cfg.Redis.Enabled {
		redisCfg := pkgredis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisClient, err = pkgredis.NewClient(ctx, redisCfg)
		if err != nil {
			appLog.Fatal("Redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()

		counter = repository.NewRedisOccupancyCounter(redisClient)
		if err := redisClient.LoadScripts(ctx); err != nil {
			appLog.Warn("Failed to pre-load Lua scripts", zap.Error(err))
		}
		idempotency = pkgmiddleware.Idempotency(pkgmiddleware.IdempotencyConfig{
			Store: pkgmiddleware.NewRedisIdempotencyStore(redisClient),
			TTL:   cfg.Redis.IdempotencyTTL,
		})
		appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Event fan-out: Kafka and the Postgres audit trail, each optional
	var publishers []service.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, events will not be streamed", zap.Error(err))
		} else {
			publishers = append(publishers, kafkaPublisher)
			appLog.Info("Kafka event publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	}

	var auditDB *database.PostgresDB
	if cfg.AuditDatabase.Enabled {
		dbCfg := database.DefaultPostgresConfig(cfg.AuditDatabase.DSN())
		dbCfg.MaxConns = cfg.AuditDatabase.MaxConns
		dbCfg.MinConns = cfg.AuditDatabase.MinConns
		dbCfg.MaxConnLifetime = cfg.AuditDatabase.ConnMaxLifetime
		dbCfg.MaxConnIdleTime = cfg.AuditDatabase.ConnMaxIdleTime

		auditDB, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal("Audit database connection failed", zap.Error(err))
		}
		defer auditDB.Close()

		if err := auditDB.Migrate(ctx, repository.AuditSchema...); err != nil {
			appLog.Fatal("Audit schema migration failed", zap.Error(err))
		}
		publishers = append(publishers, service.NewAuditEventPublisher(repository.NewPostgresAuditRepository(auditDB)))
		appLog.Info("Audit database connected", zap.String("dbname", cfg.AuditDatabase.DBName))
	}

	// Delivery runs off the request path so a degraded broker cannot stall mutations
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if len(publishers) > 0 {
		eventPublisher = service.NewAsyncEventPublisher(service.NewMultiEventPublisher(publishers...), &service.AsyncEventPublisherConfig{
			QueueSize:      cfg.Kafka.PublishQueueSize,
			PublishTimeout: cfg.Kafka.PublishTimeout,
		})
	}

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		AuditDB:          auditDB,
		Redis:            redisClient,
		OccupancyCounter: counter,
		EventPublisher:   eventPublisher,
		PaymentGateway: gateway.NewMockGateway(&gateway.MockGatewayConfig{
			SuccessRate:    cfg.Payment.MockSuccessRate,
			Delay:          cfg.Payment.MockDelay,
			FailureReasons: gateway.DefaultMockGatewayConfig().FailureReasons,
		}),
		AuthConfig: &service.AuthServiceConfig{
			JWTSecret:         cfg.JWT.Secret,
			Issuer:            cfg.JWT.Issuer,
			AccessTokenExpiry: cfg.JWT.AccessTokenTTL,
		},
		VisitorConfig: &service.VisitorServiceConfig{PassValidity: cfg.Visitor.PassValidity},
		BookingConfig: &service.BookingServiceConfig{
			Hours:    domain.OperatingHours{Open: cfg.Booking.OpenTime, Close: cfg.Booking.CloseTime},
			Currency: cfg.Payment.Currency,
		},
		HandlerConfig: &handler.VisitorHandlerConfig{MaxImportBytes: cfg.Visitor.MaxImportBytes},
	})
	if err != nil {
		appLog.Fatal("Failed to build container", zap.Error(err))
	}
	defer container.Close()

	if cfg.App.SeedDemo {
		if _, err := seed.Up(ctx, container.AmenityRepo, container.OccupancyCounter, time.Now()); err != nil {
			appLog.Fatal("Failed to seed amenities", zap.Error(err))
		}
	}

	// Background pass expiry
	var expiryWorker *worker.ExpiryWorker
	if cfg.Worker.ExpiryEnabled {
		expiryWorker = worker.NewExpiryWorker(container.VisitorService, &worker.ExpiryWorkerConfig{
			ScanInterval: cfg.Worker.ScanInterval,
		})
		if err := expiryWorker.Start(ctx); err != nil {
			appLog.Fatal("Failed to start expiry worker", zap.Error(err))
		}
	}

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(pkgmiddleware.RequestID())
	router.Use(pkgmiddleware.Logger(appLog, "/health", "/ready"))
	corsCfg := pkgmiddleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	router.Use(pkgmiddleware.CORSWithConfig(corsCfg))
	router.Use(telemetry.TracingMiddleware())
	router.Use(middleware.RequestMetrics())

	handler.RegisterRoutes(router, container.Handlers, handler.RouteConfig{
		Auth:        middleware.Auth(container.AuthService),
		Idempotency: idempotency,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		appLog.Info("Residence Gate listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if expiryWorker != nil {
		expiryWorker.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		appLog.Warn("Failed to flush traces", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}
