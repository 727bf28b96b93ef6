package di

import (
	"fmt"

	"github.com/prohmpiriya/residence-gate/internal/gateway"
	"github.com/prohmpiriya/residence-gate/internal/handler"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/internal/service"
	"github.com/prohmpiriya/residence-gate/pkg/database"
	"github.com/prohmpiriya/residence-gate/pkg/redis"
)

// Container holds all dependencies for the residence gate service
type Container struct {
	// Infrastructure
	AuditDB *database.PostgresDB
	Redis   *redis.Client

	// Repositories
	VisitorRepo      repository.VisitorRepository
	AmenityRepo      repository.AmenityRepository
	BookingRepo      repository.BookingRepository
	AlertRepo        repository.AlertRepository
	OccupancyCounter repository.OccupancyCounter

	// Publishers and gateways
	EventPublisher service.EventPublisher
	PaymentGateway gateway.PaymentGateway

	// Services
	AuthService      service.AuthService
	VisitorService   service.VisitorService
	AmenityService   service.AmenityService
	BookingService   service.BookingService
	AlertService     service.AlertService
	OccupancyService service.OccupancyService
	AnalyticsService service.AnalyticsService

	// Handlers
	Handlers *handler.Handlers
}

// ContainerConfig contains configuration for building the container.
// Nil repositories fall back to the in-memory stores.
type ContainerConfig struct {
	AuditDB          *database.PostgresDB
	Redis            *redis.Client
	VisitorRepo      repository.VisitorRepository
	AmenityRepo      repository.AmenityRepository
	BookingRepo      repository.BookingRepository
	AlertRepo        repository.AlertRepository
	OccupancyCounter repository.OccupancyCounter
	EventPublisher   service.EventPublisher
	PaymentGateway   gateway.PaymentGateway
	Users            []service.DemoUser

	AuthConfig    *service.AuthServiceConfig
	VisitorConfig *service.VisitorServiceConfig
	AmenityConfig *service.AmenityServiceConfig
	BookingConfig *service.BookingServiceConfig
	AlertConfig   *service.AlertServiceConfig
	HandlerConfig *handler.VisitorHandlerConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg == nil {
		cfg = &ContainerConfig{}
	}
	c := &Container{
		AuditDB:          cfg.AuditDB,
		Redis:            cfg.Redis,
		VisitorRepo:      cfg.VisitorRepo,
		AmenityRepo:      cfg.AmenityRepo,
		BookingRepo:      cfg.BookingRepo,
		AlertRepo:        cfg.AlertRepo,
		OccupancyCounter: cfg.OccupancyCounter,
		EventPublisher:   cfg.EventPublisher,
		PaymentGateway:   cfg.PaymentGateway,
	}

	// Default infrastructure
	if c.VisitorRepo == nil {
		c.VisitorRepo = repository.NewMemoryVisitorRepository()
	}
	if c.AmenityRepo == nil {
		c.AmenityRepo = repository.NewMemoryAmenityRepository()
	}
	if c.BookingRepo == nil {
		c.BookingRepo = repository.NewMemoryBookingRepository()
	}
	if c.AlertRepo == nil {
		c.AlertRepo = repository.NewMemoryAlertRepository()
	}
	if c.OccupancyCounter == nil {
		c.OccupancyCounter = repository.NewMemoryOccupancyCounter()
	}
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}
	if c.PaymentGateway == nil {
		c.PaymentGateway = gateway.NewMockGateway(nil)
	}
	users := cfg.Users
	if users == nil {
		users = service.DemoUsers()
	}

	// Initialize services
	auth, err := service.NewAuthService(users, cfg.AuthConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	c.AuthService = auth
	c.VisitorService = service.NewVisitorService(c.VisitorRepo, c.EventPublisher, cfg.VisitorConfig)
	c.AmenityService = service.NewAmenityService(c.AmenityRepo, c.OccupancyCounter, c.EventPublisher, cfg.AmenityConfig)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.AmenityRepo, c.PaymentGateway, c.EventPublisher, cfg.BookingConfig)
	c.AlertService = service.NewAlertService(c.AlertRepo, c.EventPublisher, cfg.AlertConfig)
	c.OccupancyService = service.NewOccupancyService(c.AmenityService, c.VisitorService)
	c.AnalyticsService = service.NewAnalyticsService(c.VisitorService, c.AmenityService, c.BookingRepo, c.AlertService, c.OccupancyService)

	// Initialize handlers
	health := handler.NewHealthHandler()
	// untyped nil reports "not configured" instead of a typed-nil panic
	if c.Redis != nil {
		health.Register("redis", c.Redis)
	} else {
		health.Register("redis", nil)
	}
	if c.AuditDB != nil {
		health.Register("audit_database", c.AuditDB)
	} else {
		health.Register("audit_database", nil)
	}

	c.Handlers = &handler.Handlers{
		Health:  health,
		Auth:    handler.NewAuthHandler(c.AuthService),
		Visitor: handler.NewVisitorHandler(c.VisitorService, cfg.HandlerConfig),
		Amenity: handler.NewAmenityHandler(c.AmenityService),
		Booking: handler.NewBookingHandler(c.BookingService),
		Alert:   handler.NewAlertHandler(c.AlertService),
		Report:  handler.NewReportHandler(c.OccupancyService, c.AnalyticsService),
	}

	return c, nil
}

// Close releases the publisher; connections are owned by the caller
func (c *Container) Close() error {
	if c.EventPublisher != nil {
		return c.EventPublisher.Close()
	}
	return nil
}
