package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

func TestCreateAmenityRequest_ToAmenity(t *testing.T) {
	var req CreateAmenityRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Cinema Hall", "code": "CIN", "location": "basement",
		"type": "payment-required", "capacity": 20, "requires_payment": true,
		"price_per_hour": 25
	}`), &req))

	a := req.ToAmenity()
	assert.True(t, a.IsAvailable, "availability defaults to true")
	assert.Equal(t, domain.AmenityTypePaymentRequired, a.Type)
	assert.Equal(t, "25", a.PricePerHour.String())
	assert.NoError(t, a.Validate())

	require.NoError(t, json.Unmarshal([]byte(`{"is_available": false}`), &req))
	assert.False(t, req.ToAmenity().IsAvailable)
}

func TestUpdateAmenityRequest_ToPatch(t *testing.T) {
	var req UpdateAmenityRequest
	require.NoError(t, json.Unmarshal([]byte(`{"maintenance_status": "maintenance", "capacity": 12}`), &req))

	p := req.ToPatch()
	require.NotNil(t, p.MaintenanceStatus)
	assert.Equal(t, domain.MaintenanceInProgress, *p.MaintenanceStatus)
	require.NotNil(t, p.Capacity)
	assert.Equal(t, 12, *p.Capacity)
	assert.Nil(t, p.Name)
	assert.Nil(t, p.Location)
	assert.Nil(t, p.Type)
}
