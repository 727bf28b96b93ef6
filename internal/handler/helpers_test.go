package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/middleware"
	"github.com/prohmpiriya/residence-gate/pkg/response"
)

var (
	adminActor    = domain.Actor{UserID: "1", Name: "Sarah Johnson", Role: domain.RoleAdmin}
	residentActor = domain.Actor{UserID: "2", Name: "Michael Chen", Apartment: "A-101", Role: domain.RoleResident}
	securityActor = domain.Actor{UserID: "3", Name: "David Rodriguez", Role: domain.RoleSecurity}
)

type testEnv struct {
	auth      *MockAuthService
	visitors  *MockVisitorService
	amenities *MockAmenityService
	bookings  *MockBookingService
	alerts    *MockAlertService
	occupancy *MockOccupancyService
	analytics *MockAnalyticsService
	health    *HealthHandler
	router    *gin.Engine
}

// newTestEnv mounts every route behind a fake auth middleware acting as actor;
// a nil actor makes every authenticated route answer 401
func newTestEnv(actor *domain.Actor) *testEnv {
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		auth:      &MockAuthService{},
		visitors:  &MockVisitorService{},
		amenities: &MockAmenityService{},
		bookings:  &MockBookingService{},
		alerts:    &MockAlertService{},
		occupancy: &MockOccupancyService{},
		analytics: &MockAnalyticsService{},
		health:    NewHealthHandler(),
	}

	fakeAuth := func(c *gin.Context) {
		if actor == nil {
			response.Abort(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}
		c.Set(middleware.ActorKey, *actor)
		c.Next()
	}

	env.router = gin.New()
	RegisterRoutes(env.router, &Handlers{
		Health:  env.health,
		Auth:    NewAuthHandler(env.auth),
		Visitor: NewVisitorHandler(env.visitors, &VisitorHandlerConfig{MaxImportBytes: 1 << 10}),
		Amenity: NewAmenityHandler(env.amenities),
		Booking: NewBookingHandler(env.bookings),
		Alert:   NewAlertHandler(env.alerts),
		Report:  NewReportHandler(env.occupancy, env.analytics),
	}, RouteConfig{Auth: fakeAuth})
	return env
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	return e.do(method, path, body, "application/json")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta *response.Meta `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode(t, w)
	require.NotNil(t, env.Error, "expected error envelope, got %s", w.Body.String())
	return env.Error.Code
}
