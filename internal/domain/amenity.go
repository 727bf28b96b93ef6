package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AmenityType selects how an amenity is used
type AmenityType string

const (
	AmenityTypeReservation     AmenityType = "reservation"
	AmenityTypeOpenAccess      AmenityType = "open-access"
	AmenityTypeMonitoring      AmenityType = "monitoring"
	AmenityTypePaymentRequired AmenityType = "payment-required"
)

// IsValid checks if the amenity type is known
func (t AmenityType) IsValid() bool {
	switch t {
	case AmenityTypeReservation, AmenityTypeOpenAccess, AmenityTypeMonitoring, AmenityTypePaymentRequired:
		return true
	}
	return false
}

// IsBookable reports whether the type takes time-slot bookings
func (t AmenityType) IsBookable() bool {
	return t == AmenityTypeReservation || t == AmenityTypePaymentRequired
}

// AmenityLocation is a physical zone of the building
type AmenityLocation string

const (
	LocationGroundFloor   AmenityLocation = "ground-floor"
	LocationRooftopClosed AmenityLocation = "rooftop-closed"
	LocationRooftopOpen   AmenityLocation = "rooftop-open"
	LocationBasement      AmenityLocation = "basement"
	LocationParking       AmenityLocation = "parking"
)

// IsValid checks if the location is known
func (l AmenityLocation) IsValid() bool {
	switch l {
	case LocationGroundFloor, LocationRooftopClosed, LocationRooftopOpen, LocationBasement, LocationParking:
		return true
	}
	return false
}

// MaintenanceStatus gates every booking and check-in
type MaintenanceStatus string

const (
	MaintenanceOperational MaintenanceStatus = "operational"
	MaintenanceInProgress  MaintenanceStatus = "maintenance"
	MaintenanceOutOfOrder  MaintenanceStatus = "out-of-order"
)

// IsValid checks if the maintenance status is known
func (m MaintenanceStatus) IsValid() bool {
	switch m {
	case MaintenanceOperational, MaintenanceInProgress, MaintenanceOutOfOrder:
		return true
	}
	return false
}

// OccupancyStatus is the display projection of an amenity's load
type OccupancyStatus string

const (
	OccupancyAvailable OccupancyStatus = "available"
	OccupancyBusy      OccupancyStatus = "busy"
	OccupancyFull      OccupancyStatus = "full"
	OccupancyClosed    OccupancyStatus = "closed"
)

// Occupancy thresholds
const (
	FullOccupancyRate = 0.90
	BusyOccupancyRate = 0.70
)

// Amenity represents a shared facility
type Amenity struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Code              string            `json:"code"`
	Location          AmenityLocation   `json:"location"`
	Type              AmenityType       `json:"type"`
	Capacity          int               `json:"capacity"`
	CurrentOccupancy  int               `json:"current_occupancy"`
	IsAvailable       bool              `json:"is_available"`
	RequiresApproval  bool              `json:"requires_approval"`
	RequiresGuardian  bool              `json:"requires_guardian"`
	RequiresPayment   bool              `json:"requires_payment"`
	PricePerHour      decimal.Decimal   `json:"price_per_hour"`
	MaintenanceStatus MaintenanceStatus `json:"maintenance_status"`
	LastCleaned       *time.Time        `json:"last_cleaned,omitempty"`
	NextMaintenance   *time.Time        `json:"next_maintenance,omitempty"`
	Equipment         []string          `json:"equipment,omitempty"`
	Rules             []string          `json:"rules,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Validate checks the fields required to create an amenity
func (a *Amenity) Validate() error {
	verr := NewValidationError()
	if strings.TrimSpace(a.Name) == "" {
		verr.Add("name", "Name is required")
	}
	if strings.TrimSpace(a.Code) == "" {
		verr.Add("code", "Code is required")
	}
	if !a.Location.IsValid() {
		verr.Add("location", "Location is invalid")
	}
	if !a.Type.IsValid() {
		verr.Add("type", "Type is invalid")
	}
	if a.Capacity < 0 {
		verr.Add("capacity", "Capacity cannot be negative")
	}
	if a.CurrentOccupancy < 0 {
		verr.Add("current_occupancy", "Current occupancy cannot be negative")
	}
	if a.PricePerHour.IsNegative() {
		verr.Add("price_per_hour", "Price per hour cannot be negative")
	}
	if a.MaintenanceStatus != "" && !a.MaintenanceStatus.IsValid() {
		verr.Add("maintenance_status", "Maintenance status is invalid")
	}
	return verr.OrNil()
}

// IsOperational reports whether bookings and check-ins are allowed
func (a *Amenity) IsOperational() bool {
	return a.IsAvailable && a.MaintenanceStatus == MaintenanceOperational
}

// OccupancyRate returns currentOccupancy/capacity, 0 when capacity is unset
func (a *Amenity) OccupancyRate() float64 {
	if a.Capacity <= 0 {
		return 0
	}
	return float64(a.CurrentOccupancy) / float64(a.Capacity)
}

// OccupancyStatus derives the display status
func (a *Amenity) OccupancyStatus() OccupancyStatus {
	if !a.IsOperational() {
		return OccupancyClosed
	}
	r := a.OccupancyRate()
	switch {
	case r >= FullOccupancyRate:
		return OccupancyFull
	case r >= BusyOccupancyRate:
		return OccupancyBusy
	default:
		return OccupancyAvailable
	}
}

// EnsureOperational returns ErrAmenityUnavailable when the amenity is closed
func (a *Amenity) EnsureOperational() error {
	if !a.IsOperational() {
		return fmt.Errorf("%w: %s is %s", ErrAmenityUnavailable, a.Name, a.closedReason())
	}
	return nil
}

func (a *Amenity) closedReason() string {
	if !a.IsAvailable {
		return "not available"
	}
	return string(a.MaintenanceStatus)
}

// CanCheckIn reports whether walk-ins are accepted; headcount limits are enforced by the occupancy counter
func (a *Amenity) CanCheckIn() error {
	if a.Type != AmenityTypeOpenAccess {
		return fmt.Errorf("%w: %s is %s", ErrUnsupportedAmenityMode, a.Name, a.Type)
	}
	return a.EnsureOperational()
}

// CanCheckOut reports whether the amenity tracks walk-out headcounts
func (a *Amenity) CanCheckOut() error {
	if a.Type != AmenityTypeOpenAccess {
		return fmt.Errorf("%w: %s is %s", ErrUnsupportedAmenityMode, a.Name, a.Type)
	}
	return nil
}

// RecordOccupancy stores the headcount reported by the counter, never going below zero
func (a *Amenity) RecordOccupancy(n int, now time.Time) {
	if n < 0 {
		n = 0
	}
	a.CurrentOccupancy = n
	a.UpdatedAt = now
}

// AmenityPatch is a partial update; nil fields are left untouched
type AmenityPatch struct {
	Name              *string
	Code              *string
	Location          *AmenityLocation
	Type              *AmenityType
	Capacity          *int
	CurrentOccupancy  *int
	IsAvailable       *bool
	RequiresApproval  *bool
	RequiresGuardian  *bool
	RequiresPayment   *bool
	PricePerHour      *decimal.Decimal
	MaintenanceStatus *MaintenanceStatus
	LastCleaned       *time.Time
	NextMaintenance   *time.Time
	Equipment         []string
	Rules             []string
}

// Apply merges the patch field by field without cross-field checks
func (p *AmenityPatch) Apply(a *Amenity, now time.Time) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Code != nil {
		a.Code = *p.Code
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Capacity != nil {
		a.Capacity = *p.Capacity
	}
	if p.CurrentOccupancy != nil {
		a.CurrentOccupancy = *p.CurrentOccupancy
	}
	if p.IsAvailable != nil {
		a.IsAvailable = *p.IsAvailable
	}
	if p.RequiresApproval != nil {
		a.RequiresApproval = *p.RequiresApproval
	}
	if p.RequiresGuardian != nil {
		a.RequiresGuardian = *p.RequiresGuardian
	}
	if p.RequiresPayment != nil {
		a.RequiresPayment = *p.RequiresPayment
	}
	if p.PricePerHour != nil {
		a.PricePerHour = *p.PricePerHour
	}
	if p.MaintenanceStatus != nil {
		a.MaintenanceStatus = *p.MaintenanceStatus
	}
	if p.LastCleaned != nil {
		a.LastCleaned = cloneTime(p.LastCleaned)
	}
	if p.NextMaintenance != nil {
		a.NextMaintenance = cloneTime(p.NextMaintenance)
	}
	if p.Equipment != nil {
		a.Equipment = append([]string(nil), p.Equipment...)
	}
	if p.Rules != nil {
		a.Rules = append([]string(nil), p.Rules...)
	}
	a.UpdatedAt = now
}

// Clone returns a deep copy
func (a *Amenity) Clone() *Amenity {
	c := *a
	c.Equipment = append([]string(nil), a.Equipment...)
	c.Rules = append([]string(nil), a.Rules...)
	c.LastCleaned = cloneTime(a.LastCleaned)
	c.NextMaintenance = cloneTime(a.NextMaintenance)
	return &c
}
