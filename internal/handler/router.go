package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes
type Handlers struct {
	Health  *HealthHandler
	Auth    *AuthHandler
	Visitor *VisitorHandler
	Amenity *AmenityHandler
	Booking *BookingHandler
	Alert   *AlertHandler
	Report  *ReportHandler
}

// RouteConfig carries the middleware applied to authenticated routes
type RouteConfig struct {
	// Auth resolves the acting user; required
	Auth gin.HandlerFunc
	// Idempotency replays repeated mutating requests; nil disables it
	Idempotency gin.HandlerFunc
}

// RegisterRoutes mounts the health probes and the /api/v1 API
func RegisterRoutes(router gin.IRouter, h *Handlers, cfg RouteConfig) {
	router.GET("/health", h.Health.Health)
	router.GET("/ready", h.Health.Ready)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", h.Auth.Login)

	api := v1.Group("")
	api.Use(cfg.Auth)
	if cfg.Idempotency != nil {
		api.Use(cfg.Idempotency)
	}

	api.GET("/auth/me", h.Auth.Me)

	visitors := api.Group("/visitors")
	{
		visitors.POST("", h.Visitor.Register)
		visitors.POST("/bulk", h.Visitor.BulkRegister)
		visitors.POST("/import", h.Visitor.Import)
		visitors.GET("/export", h.Visitor.Export)
		visitors.GET("/template", h.Visitor.Template)
		visitors.GET("", h.Visitor.List)
		visitors.GET("/qr/:code", h.Visitor.GetByQRCode)
		visitors.GET("/:id", h.Visitor.Get)
		visitors.POST("/:id/approve", h.Visitor.Transition(domain.VisitorActionApprove))
		visitors.POST("/:id/reject", h.Visitor.Transition(domain.VisitorActionReject))
		visitors.POST("/:id/check-in", h.Visitor.Transition(domain.VisitorActionCheckIn))
		visitors.POST("/:id/check-out", h.Visitor.Transition(domain.VisitorActionCheckOut))
		visitors.POST("/:id/blacklist", h.Visitor.Blacklist)
		visitors.GET("/:id/zones/:zone", h.Visitor.ZoneAccess)
	}

	amenities := api.Group("/amenities")
	{
		amenities.GET("", h.Amenity.List)
		amenities.GET("/:id", h.Amenity.Get)
		amenities.POST("", h.Amenity.Create)
		amenities.PATCH("/:id", h.Amenity.Update)
		amenities.DELETE("/:id", h.Amenity.Delete)
		amenities.POST("/:id/check-in", h.Amenity.CheckIn)
		amenities.POST("/:id/check-out", h.Amenity.CheckOut)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", h.Booking.Create)
		bookings.GET("", h.Booking.List)
		bookings.GET("/:id", h.Booking.Get)
		bookings.POST("/:id/approve", h.Booking.Transition(domain.BookingActionApprove))
		bookings.POST("/:id/cancel", h.Booking.Transition(domain.BookingActionCancel))
		bookings.POST("/:id/complete", h.Booking.Transition(domain.BookingActionComplete))
		bookings.POST("/:id/no-show", h.Booking.Transition(domain.BookingActionNoShow))
		bookings.POST("/:id/pay", h.Booking.Pay)
	}

	alerts := api.Group("/alerts")
	{
		alerts.POST("", h.Alert.Trigger)
		alerts.GET("", h.Alert.List)
		alerts.GET("/:id", h.Alert.Get)
		alerts.POST("/:id/acknowledge", h.Alert.Acknowledge)
		alerts.POST("/:id/resolve", h.Alert.Resolve)
	}

	api.GET("/occupancy", h.Report.Occupancy)
	api.GET("/analytics/summary", h.Report.AnalyticsSummary)
}
