package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

// CreateAmenityRequest represents an amenity creation body
type CreateAmenityRequest struct {
	ID                string          `json:"id,omitempty"`
	Name              string          `json:"name"`
	Code              string          `json:"code"`
	Location          string          `json:"location"`
	Type              string          `json:"type"`
	Capacity          int             `json:"capacity"`
	CurrentOccupancy  int             `json:"current_occupancy"`
	IsAvailable       *bool           `json:"is_available"`
	RequiresApproval  bool            `json:"requires_approval"`
	RequiresGuardian  bool            `json:"requires_guardian"`
	RequiresPayment   bool            `json:"requires_payment"`
	PricePerHour      decimal.Decimal `json:"price_per_hour"`
	MaintenanceStatus string          `json:"maintenance_status,omitempty"`
	Equipment         []string        `json:"equipment,omitempty"`
	Rules             []string        `json:"rules,omitempty"`
}

// ToAmenity converts the body to a domain amenity; availability defaults to true
func (r *CreateAmenityRequest) ToAmenity() *domain.Amenity {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return &domain.Amenity{
		ID:                r.ID,
		Name:              r.Name,
		Code:              r.Code,
		Location:          domain.AmenityLocation(r.Location),
		Type:              domain.AmenityType(r.Type),
		Capacity:          r.Capacity,
		CurrentOccupancy:  r.CurrentOccupancy,
		IsAvailable:       available,
		RequiresApproval:  r.RequiresApproval,
		RequiresGuardian:  r.RequiresGuardian,
		RequiresPayment:   r.RequiresPayment,
		PricePerHour:      r.PricePerHour,
		MaintenanceStatus: domain.MaintenanceStatus(r.MaintenanceStatus),
		Equipment:         r.Equipment,
		Rules:             r.Rules,
	}
}

// UpdateAmenityRequest is a partial update; omitted fields are unchanged
type UpdateAmenityRequest struct {
	Name              *string          `json:"name"`
	Code              *string          `json:"code"`
	Location          *string          `json:"location"`
	Type              *string          `json:"type"`
	Capacity          *int             `json:"capacity"`
	CurrentOccupancy  *int             `json:"current_occupancy"`
	IsAvailable       *bool            `json:"is_available"`
	RequiresApproval  *bool            `json:"requires_approval"`
	RequiresGuardian  *bool            `json:"requires_guardian"`
	RequiresPayment   *bool            `json:"requires_payment"`
	PricePerHour      *decimal.Decimal `json:"price_per_hour"`
	MaintenanceStatus *string          `json:"maintenance_status"`
	LastCleaned       *time.Time       `json:"last_cleaned"`
	NextMaintenance   *time.Time       `json:"next_maintenance"`
	Equipment         []string         `json:"equipment"`
	Rules             []string         `json:"rules"`
}

// ToPatch converts the body to a domain patch
func (r *UpdateAmenityRequest) ToPatch() *domain.AmenityPatch {
	p := &domain.AmenityPatch{
		Name:             r.Name,
		Code:             r.Code,
		Capacity:         r.Capacity,
		CurrentOccupancy: r.CurrentOccupancy,
		IsAvailable:      r.IsAvailable,
		RequiresApproval: r.RequiresApproval,
		RequiresGuardian: r.RequiresGuardian,
		RequiresPayment:  r.RequiresPayment,
		PricePerHour:     r.PricePerHour,
		LastCleaned:      r.LastCleaned,
		NextMaintenance:  r.NextMaintenance,
		Equipment:        r.Equipment,
		Rules:            r.Rules,
	}
	if r.Location != nil {
		l := domain.AmenityLocation(*r.Location)
		p.Location = &l
	}
	if r.Type != nil {
		t := domain.AmenityType(*r.Type)
		p.Type = &t
	}
	if r.MaintenanceStatus != nil {
		m := domain.MaintenanceStatus(*r.MaintenanceStatus)
		p.MaintenanceStatus = &m
	}
	return p
}
