package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/residence-gate/internal/domain"
	"github.com/prohmpiriya/residence-gate/internal/service"
)

func TestAmenityHandler_Create(t *testing.T) {
	env := newTestEnv(&adminActor)
	var got *domain.Amenity
	env.amenities.CreateFunc = func(_ context.Context, _ domain.Actor, a *domain.Amenity) (*service.AmenityView, error) {
		got = a
		a.ID = "cinema"
		a.MaintenanceStatus = domain.MaintenanceOperational
		return service.NewAmenityView(a), nil
	}

	w := env.doJSON(t, http.MethodPost, "/api/v1/amenities", map[string]interface{}{
		"name": "Cinema Hall", "code": "CIN", "location": "basement",
		"type": "payment-required", "capacity": 20, "requires_payment": true, "price_per_hour": "25",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, got)
	assert.True(t, got.IsAvailable)
	assert.Equal(t, "25", got.PricePerHour.String())

	var view struct {
		ID              string                 `json:"id"`
		OccupancyStatus domain.OccupancyStatus `json:"occupancy_status"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &view))
	assert.Equal(t, "cinema", view.ID)
	assert.Equal(t, domain.OccupancyAvailable, view.OccupancyStatus)
}

func TestAmenityHandler_CreateDuplicateID(t *testing.T) {
	env := newTestEnv(&adminActor)
	env.amenities.CreateFunc = func(_ context.Context, _ domain.Actor, a *domain.Amenity) (*service.AmenityView, error) {
		return nil, fmt.Errorf("%w: %s", domain.ErrAmenityExists, a.ID)
	}

	w := env.doJSON(t, http.MethodPost, "/api/v1/amenities", map[string]interface{}{
		"id": "amen-gf-01", "name": "Library", "code": "LIB", "location": "ground-floor",
		"type": "open-access", "capacity": 30,
	})

	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))
}

func TestAmenityHandler_UpdatePassesPatch(t *testing.T) {
	env := newTestEnv(&adminActor)
	var got *domain.AmenityPatch
	env.amenities.UpdateFunc = func(_ context.Context, _ domain.Actor, id string, patch *domain.AmenityPatch) (*service.AmenityView, error) {
		got = patch
		return amenityView(id), nil
	}

	w := env.doJSON(t, http.MethodPatch, "/api/v1/amenities/library", map[string]interface{}{"current_occupancy": 99})

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	require.NotNil(t, got.CurrentOccupancy)
	assert.Equal(t, 99, *got.CurrentOccupancy)
	assert.Nil(t, got.Capacity)
}

func TestAmenityHandler_Delete(t *testing.T) {
	env := newTestEnv(&residentActor)
	env.amenities.DeleteFunc = func(_ context.Context, actor domain.Actor, _ string) error {
		return actor.Authorize(domain.OpAmenityDelete)
	}

	w := env.do(http.MethodDelete, "/api/v1/amenities/library", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	env = newTestEnv(&adminActor)
	w = env.do(http.MethodDelete, "/api/v1/amenities/library", nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAmenityHandler_CheckInErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"full", domain.ErrCapacityExceeded, http.StatusConflict, "CAPACITY_EXCEEDED"},
		{"wrong mode", domain.ErrUnsupportedAmenityMode, http.StatusUnprocessableEntity, "UNSUPPORTED_AMENITY_MODE"},
		{"closed", domain.ErrAmenityUnavailable, http.StatusUnprocessableEntity, "AMENITY_UNAVAILABLE"},
		{"missing", domain.ErrAmenityNotFound, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(&residentActor)
			env.amenities.CheckInFunc = func(_ context.Context, _ domain.Actor, _ string) (*service.AmenityView, error) {
				return nil, tt.err
			}

			w := env.do(http.MethodPost, "/api/v1/amenities/library/check-in", nil, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestAmenityHandler_ListAndCheckOut(t *testing.T) {
	env := newTestEnv(&residentActor)
	env.amenities.ListFunc = func(_ context.Context) ([]*service.AmenityView, error) {
		return []*service.AmenityView{amenityView("a"), amenityView("b"), amenityView("c")}, nil
	}
	var checkedOut string
	env.amenities.CheckOutFunc = func(_ context.Context, _ domain.Actor, id string) (*service.AmenityView, error) {
		checkedOut = id
		return amenityView(id), nil
	}

	w := env.do(http.MethodGet, "/api/v1/amenities", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode(t, w).Meta.Total)

	w = env.do(http.MethodPost, "/api/v1/amenities/gym/check-out", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gym", checkedOut)
}
