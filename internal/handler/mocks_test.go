package handler

import (
	"context"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/repository"
	"github.com/prohmpiriya/residence-gate/internal/service"
)

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	LoginFunc         func(ctx context.Context, email, password string) (*service.Session, error)
	ValidateTokenFunc func(ctx context.Context, token string) (domain.Actor, error)
	GetUserFunc       func(ctx context.Context, userID string) (domain.Actor, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, nil
}

func (m *MockAuthService) ValidateToken(ctx context.Context, token string) (domain.Actor, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return domain.Actor{}, nil
}

func (m *MockAuthService) GetUser(ctx context.Context, userID string) (domain.Actor, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, userID)
	}
	return domain.Actor{}, nil
}

// MockVisitorService is a mock implementation of VisitorService for testing
type MockVisitorService struct {
	RegisterFunc        func(ctx context.Context, actor domain.Actor, reg *domain.VisitorRegistration) (*domain.Visitor, error)
	BulkRegisterFunc    func(ctx context.Context, actor domain.Actor, rows []service.BulkRow) (*service.BulkResult, error)
	TransitionFunc      func(ctx context.Context, actor domain.Actor, visitorID string, action domain.VisitorAction) (*domain.Visitor, error)
	SetBlacklistedFunc  func(ctx context.Context, actor domain.Actor, visitorID string, blacklisted bool) (*domain.Visitor, error)
	GetFunc             func(ctx context.Context, actor domain.Actor, visitorID string) (*domain.Visitor, error)
	GetByQRCodeFunc     func(ctx context.Context, actor domain.Actor, code string) (*domain.Visitor, error)
	ListFunc            func(ctx context.Context, actor domain.Actor, filter repository.VisitorFilter) ([]*domain.Visitor, error)
	CheckZoneAccessFunc func(ctx context.Context, actor domain.Actor, visitorID, zone string) (bool, error)
	ExpireStaleFunc     func(ctx context.Context) (int, error)
	CountOnSiteFunc     func(ctx context.Context) (int, error)
}

func (m *MockVisitorService) Register(ctx context.Context, actor domain.Actor, reg *domain.VisitorRegistration) (*domain.Visitor, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, actor, reg)
	}
	return &domain.Visitor{}, nil
}

func (m *MockVisitorService) BulkRegister(ctx context.Context, actor domain.Actor, rows []service.BulkRow) (*service.BulkResult, error) {
	if m.BulkRegisterFunc != nil {
		return m.BulkRegisterFunc(ctx, actor, rows)
	}
	return &service.BulkResult{Total: len(rows)}, nil
}

func (m *MockVisitorService) Transition(ctx context.Context, actor domain.Actor, visitorID string, action domain.VisitorAction) (*domain.Visitor, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, actor, visitorID, action)
	}
	return &domain.Visitor{ID: visitorID}, nil
}

func (m *MockVisitorService) SetBlacklisted(ctx context.Context, actor domain.Actor, visitorID string, blacklisted bool) (*domain.Visitor, error) {
	if m.SetBlacklistedFunc != nil {
		return m.SetBlacklistedFunc(ctx, actor, visitorID, blacklisted)
	}
	return &domain.Visitor{ID: visitorID, IsBlacklisted: blacklisted}, nil
}

func (m *MockVisitorService) Get(ctx context.Context, actor domain.Actor, visitorID string) (*domain.Visitor, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, visitorID)
	}
	return &domain.Visitor{ID: visitorID}, nil
}

func (m *MockVisitorService) GetByQRCode(ctx context.Context, actor domain.Actor, code string) (*domain.Visitor, error) {
	if m.GetByQRCodeFunc != nil {
		return m.GetByQRCodeFunc(ctx, actor, code)
	}
	return &domain.Visitor{QRCode: code}, nil
}

func (m *MockVisitorService) List(ctx context.Context, actor domain.Actor, filter repository.VisitorFilter) ([]*domain.Visitor, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, filter)
	}
	return nil, nil
}

func (m *MockVisitorService) CheckZoneAccess(ctx context.Context, actor domain.Actor, visitorID, zone string) (bool, error) {
	if m.CheckZoneAccessFunc != nil {
		return m.CheckZoneAccessFunc(ctx, actor, visitorID, zone)
	}
	return false, nil
}

func (m *MockVisitorService) ExpireStale(ctx context.Context) (int, error) {
	if m.ExpireStaleFunc != nil {
		return m.ExpireStaleFunc(ctx)
	}
	return 0, nil
}

func (m *MockVisitorService) CountOnSite(ctx context.Context) (int, error) {
	if m.CountOnSiteFunc != nil {
		return m.CountOnSiteFunc(ctx)
	}
	return 0, nil
}

// MockAmenityService is a mock implementation of AmenityService for testing
type MockAmenityService struct {
	CreateFunc   func(ctx context.Context, actor domain.Actor, a *domain.Amenity) (*service.AmenityView, error)
	GetFunc      func(ctx context.Context, amenityID string) (*service.AmenityView, error)
	ListFunc     func(ctx context.Context) ([]*service.AmenityView, error)
	UpdateFunc   func(ctx context.Context, actor domain.Actor, amenityID string, patch *domain.AmenityPatch) (*service.AmenityView, error)
	DeleteFunc   func(ctx context.Context, actor domain.Actor, amenityID string) error
	CheckInFunc  func(ctx context.Context, actor domain.Actor, amenityID string) (*service.AmenityView, error)
	CheckOutFunc func(ctx context.Context, actor domain.Actor, amenityID string) (*service.AmenityView, error)
}

func amenityView(id string) *service.AmenityView {
	return service.NewAmenityView(&domain.Amenity{ID: id, Capacity: 10})
}

func (m *MockAmenityService) Create(ctx context.Context, actor domain.Actor, a *domain.Amenity) (*service.AmenityView, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, a)
	}
	return service.NewAmenityView(a), nil
}

func (m *MockAmenityService) Get(ctx context.Context, amenityID string) (*service.AmenityView, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, amenityID)
	}
	return amenityView(amenityID), nil
}

func (m *MockAmenityService) List(ctx context.Context) ([]*service.AmenityView, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockAmenityService) Update(ctx context.Context, actor domain.Actor, amenityID string, patch *domain.AmenityPatch) (*service.AmenityView, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, actor, amenityID, patch)
	}
	return amenityView(amenityID), nil
}

func (m *MockAmenityService) Delete(ctx context.Context, actor domain.Actor, amenityID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, actor, amenityID)
	}
	return nil
}

func (m *MockAmenityService) CheckIn(ctx context.Context, actor domain.Actor, amenityID string) (*service.AmenityView, error) {
	if m.CheckInFunc != nil {
		return m.CheckInFunc(ctx, actor, amenityID)
	}
	return amenityView(amenityID), nil
}

func (m *MockAmenityService) CheckOut(ctx context.Context, actor domain.Actor, amenityID string) (*service.AmenityView, error) {
	if m.CheckOutFunc != nil {
		return m.CheckOutFunc(ctx, actor, amenityID)
	}
	return amenityView(amenityID), nil
}

// MockBookingService is a mock implementation of BookingService for testing
type MockBookingService struct {
	CreateFunc     func(ctx context.Context, actor domain.Actor, req *domain.BookingRequest) (*domain.Booking, error)
	GetFunc        func(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error)
	ListFunc       func(ctx context.Context, actor domain.Actor, filter repository.BookingFilter) ([]*domain.Booking, error)
	TransitionFunc func(ctx context.Context, actor domain.Actor, bookingID string, action domain.BookingAction) (*domain.Booking, error)
	PayFunc        func(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error)
}

func (m *MockBookingService) Create(ctx context.Context, actor domain.Actor, req *domain.BookingRequest) (*domain.Booking, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, actor, req)
	}
	return &domain.Booking{}, nil
}

func (m *MockBookingService) Get(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, actor, bookingID)
	}
	return &domain.Booking{ID: bookingID}, nil
}

func (m *MockBookingService) List(ctx context.Context, actor domain.Actor, filter repository.BookingFilter) ([]*domain.Booking, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, actor, filter)
	}
	return nil, nil
}

func (m *MockBookingService) Transition(ctx context.Context, actor domain.Actor, bookingID string, action domain.BookingAction) (*domain.Booking, error) {
	if m.TransitionFunc != nil {
		return m.TransitionFunc(ctx, actor, bookingID, action)
	}
	return &domain.Booking{ID: bookingID}, nil
}

func (m *MockBookingService) Pay(ctx context.Context, actor domain.Actor, bookingID string) (*domain.Booking, error) {
	if m.PayFunc != nil {
		return m.PayFunc(ctx, actor, bookingID)
	}
	return &domain.Booking{ID: bookingID}, nil
}

// MockAlertService is a mock implementation of AlertService for testing
type MockAlertService struct {
	TriggerFunc     func(ctx context.Context, actor domain.Actor, trigger *domain.AlertTrigger) (*domain.EmergencyAlert, error)
	AcknowledgeFunc func(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error)
	ResolveFunc     func(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error)
	GetFunc         func(ctx context.Context, alertID string) (*domain.EmergencyAlert, error)
	ListFunc        func(ctx context.Context, activeOnly bool) ([]*domain.EmergencyAlert, error)
}

func (m *MockAlertService) Trigger(ctx context.Context, actor domain.Actor, trigger *domain.AlertTrigger) (*domain.EmergencyAlert, error) {
	if m.TriggerFunc != nil {
		return m.TriggerFunc(ctx, actor, trigger)
	}
	return &domain.EmergencyAlert{}, nil
}

func (m *MockAlertService) Acknowledge(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error) {
	if m.AcknowledgeFunc != nil {
		return m.AcknowledgeFunc(ctx, actor, alertID)
	}
	return &domain.EmergencyAlert{ID: alertID}, nil
}

func (m *MockAlertService) Resolve(ctx context.Context, actor domain.Actor, alertID string) (*domain.EmergencyAlert, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, actor, alertID)
	}
	return &domain.EmergencyAlert{ID: alertID}, nil
}

func (m *MockAlertService) Get(ctx context.Context, alertID string) (*domain.EmergencyAlert, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, alertID)
	}
	return &domain.EmergencyAlert{ID: alertID}, nil
}

func (m *MockAlertService) List(ctx context.Context, activeOnly bool) ([]*domain.EmergencyAlert, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, activeOnly)
	}
	return nil, nil
}

// MockOccupancyService is a mock implementation of OccupancyService for testing
type MockOccupancyService struct {
	TotalOccupancyFunc func(ctx context.Context) (int, error)
	SiteOccupancyFunc  func(ctx context.Context) (*service.SiteOccupancy, error)
}

func (m *MockOccupancyService) TotalOccupancy(ctx context.Context) (int, error) {
	if m.TotalOccupancyFunc != nil {
		return m.TotalOccupancyFunc(ctx)
	}
	return 0, nil
}

func (m *MockOccupancyService) SiteOccupancy(ctx context.Context) (*service.SiteOccupancy, error) {
	if m.SiteOccupancyFunc != nil {
		return m.SiteOccupancyFunc(ctx)
	}
	return &service.SiteOccupancy{}, nil
}

// MockAnalyticsService is a mock implementation of AnalyticsService for testing
type MockAnalyticsService struct {
	SummaryFunc func(ctx context.Context, actor domain.Actor, date string) (*service.AnalyticsSummary, error)
}

func (m *MockAnalyticsService) Summary(ctx context.Context, actor domain.Actor, date string) (*service.AnalyticsSummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, actor, date)
	}
	return &service.AnalyticsSummary{Date: date}, nil
}
