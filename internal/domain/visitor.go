package domain

import (
	"net/mail"
	"strings"
	"time"
)

// VisitorStatus represents the lifecycle status of a visitor
type VisitorStatus string

const (
	VisitorStatusPending    VisitorStatus = "pending"
	VisitorStatusApproved   VisitorStatus = "approved"
	VisitorStatusRejected   VisitorStatus = "rejected"
	VisitorStatusCheckedIn  VisitorStatus = "checked-in"
	VisitorStatusCheckedOut VisitorStatus = "checked-out"
	VisitorStatusExpired    VisitorStatus = "expired"
)

// IsValid checks if the status is a valid VisitorStatus
func (s VisitorStatus) IsValid() bool {
	switch s {
	case VisitorStatusPending, VisitorStatusApproved, VisitorStatusRejected,
		VisitorStatusCheckedIn, VisitorStatusCheckedOut, VisitorStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of VisitorStatus
func (s VisitorStatus) String() string {
	return string(s)
}

// VisitorAction is a lifecycle command applied to a visitor
type VisitorAction string

const (
	VisitorActionApprove  VisitorAction = "approve"
	VisitorActionReject   VisitorAction = "reject"
	VisitorActionCheckIn  VisitorAction = "check-in"
	VisitorActionCheckOut VisitorAction = "check-out"
)

// Operation returns the capability required to apply the action
func (a VisitorAction) Operation() Operation {
	switch a {
	case VisitorActionApprove:
		return OpVisitorApprove
	case VisitorActionReject:
		return OpVisitorReject
	case VisitorActionCheckIn:
		return OpVisitorCheckIn
	case VisitorActionCheckOut:
		return OpVisitorCheckOut
	}
	return ""
}

var visitorTransitions = map[VisitorStatus]map[VisitorAction]VisitorStatus{
	VisitorStatusPending: {
		VisitorActionApprove: VisitorStatusApproved,
		VisitorActionReject:  VisitorStatusRejected,
	},
	VisitorStatusApproved: {
		VisitorActionCheckIn: VisitorStatusCheckedIn,
	},
	VisitorStatusCheckedIn: {
		VisitorActionCheckOut: VisitorStatusCheckedOut,
	},
}

// DeliveryType classifies the reason for a visit
type DeliveryType string

const (
	DeliveryTypePersonal DeliveryType = "personal"
	DeliveryTypeFood     DeliveryType = "food"
	DeliveryTypeGrocery  DeliveryType = "grocery"
	DeliveryTypeCourier  DeliveryType = "courier"
	DeliveryTypeService  DeliveryType = "service"
)

// IsValid checks if the delivery type is known
func (d DeliveryType) IsValid() bool {
	switch d {
	case DeliveryTypePersonal, DeliveryTypeFood, DeliveryTypeGrocery, DeliveryTypeCourier, DeliveryTypeService:
		return true
	}
	return false
}

// VendorType identifies the delivery vendor
type VendorType string

const (
	VendorAmazon    VendorType = "amazon"
	VendorSwiggy    VendorType = "swiggy"
	VendorZomato    VendorType = "zomato"
	VendorFlipkart  VendorType = "flipkart"
	VendorBigBasket VendorType = "bigbasket"
	VendorGrofers   VendorType = "grofers"
	VendorOther     VendorType = "other"
)

// IsValid checks if the vendor type is known
func (v VendorType) IsValid() bool {
	switch v {
	case VendorAmazon, VendorSwiggy, VendorZomato, VendorFlipkart, VendorBigBasket, VendorGrofers, VendorOther:
		return true
	}
	return false
}

// RegistrationSource records how a visitor entered the system
type RegistrationSource string

const (
	SourceManual          RegistrationSource = "manual"
	SourcePreRegistration RegistrationSource = "pre-registration"
	SourceBulkImport      RegistrationSource = "bulk-import"
)

// Date and time layouts used by visit and booking fields
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Visitor represents a visitor record
type Visitor struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Phone         string             `json:"phone"`
	Email         string             `json:"email"`
	IDNumber      string             `json:"id_number"`
	Photo         string             `json:"photo,omitempty"`
	Purpose       string             `json:"purpose"`
	HostID        string             `json:"host_id"`
	HostName      string             `json:"host_name"`
	HostApartment string             `json:"host_apartment"`
	VisitDate     string             `json:"visit_date"`
	VisitTime     string             `json:"visit_time"`
	CheckInTime   *time.Time         `json:"check_in_time,omitempty"`
	CheckOutTime  *time.Time         `json:"check_out_time,omitempty"`
	Status        VisitorStatus      `json:"status"`
	QRCode        string             `json:"qr_code"`
	IsBlacklisted bool               `json:"is_blacklisted"`
	VehicleNumber string             `json:"vehicle_number,omitempty"`
	AccessZones   []string           `json:"access_zones,omitempty"`
	ValidUntil    *time.Time         `json:"valid_until,omitempty"`
	DeliveryType  DeliveryType       `json:"delivery_type,omitempty"`
	VendorType    VendorType         `json:"vendor_type,omitempty"`
	Assets        []string           `json:"assets,omitempty"`
	Source        RegistrationSource `json:"source"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// VisitorRegistration holds the caller-supplied fields of a new visitor
type VisitorRegistration struct {
	Name          string
	Phone         string
	Email         string
	IDNumber      string
	Photo         string
	Purpose       string
	HostID        string
	HostName      string
	HostApartment string
	VisitDate     string
	VisitTime     string
	VehicleNumber string
	AccessZones   []string
	DeliveryType  DeliveryType
	VendorType    VendorType
	Assets        []string
	Source        RegistrationSource
}

// Validate checks every field and accumulates all problems
func (r *VisitorRegistration) Validate() error {
	verr := NewValidationError()

	required := []struct {
		field, label, value string
	}{
		{"name", "Name", r.Name},
		{"phone", "Phone", r.Phone},
		{"email", "Email", r.Email},
		{"id_number", "ID Number", r.IDNumber},
		{"purpose", "Purpose", r.Purpose},
		{"visit_date", "Visit Date", r.VisitDate},
		{"visit_time", "Visit Time", r.VisitTime},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.Add(f.field, f.label+" is required")
		}
	}

	if email := strings.TrimSpace(r.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			verr.Add("email", "Email is invalid")
		}
	}
	if d := strings.TrimSpace(r.VisitDate); d != "" {
		if _, err := time.Parse(DateLayout, d); err != nil {
			verr.Add("visit_date", "Visit Date must be in YYYY-MM-DD format")
		}
	}
	if t := strings.TrimSpace(r.VisitTime); t != "" {
		if _, err := time.Parse(ClockLayout, t); err != nil {
			verr.Add("visit_time", "Visit Time must be in HH:MM format")
		}
	}
	if r.DeliveryType != "" && !r.DeliveryType.IsValid() {
		verr.Add("delivery_type", "Delivery Type is invalid")
	}
	if r.VendorType != "" && !r.VendorType.IsValid() {
		verr.Add("vendor_type", "Vendor Type is invalid")
	}

	return verr.OrNil()
}

// NewVisitor builds a pending visitor from a validated registration
func NewVisitor(id, qrCode string, r *VisitorRegistration, now time.Time, validity time.Duration) *Visitor {
	source := r.Source
	if source == "" {
		source = SourceManual
	}
	validUntil := now.Add(validity)
	return &Visitor{
		ID:            id,
		Name:          strings.TrimSpace(r.Name),
		Phone:         strings.TrimSpace(r.Phone),
		Email:         strings.TrimSpace(r.Email),
		IDNumber:      strings.TrimSpace(r.IDNumber),
		Photo:         r.Photo,
		Purpose:       strings.TrimSpace(r.Purpose),
		HostID:        r.HostID,
		HostName:      r.HostName,
		HostApartment: r.HostApartment,
		VisitDate:     strings.TrimSpace(r.VisitDate),
		VisitTime:     strings.TrimSpace(r.VisitTime),
		Status:        VisitorStatusPending,
		QRCode:        qrCode,
		VehicleNumber: strings.TrimSpace(r.VehicleNumber),
		AccessZones:   append([]string(nil), r.AccessZones...),
		ValidUntil:    &validUntil,
		DeliveryType:  r.DeliveryType,
		VendorType:    r.VendorType,
		Assets:        append([]string(nil), r.Assets...),
		Source:        source,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Apply performs a lifecycle action or fails without changing the visitor
func (v *Visitor) Apply(action VisitorAction, now time.Time) error {
	next, ok := visitorTransitions[v.Status][action]
	if !ok {
		return newTransitionError("visitor", string(v.Status), string(action))
	}
	if v.IsBlacklisted && (action == VisitorActionApprove || action == VisitorActionCheckIn) {
		return ErrVisitorBlacklisted
	}

	switch action {
	case VisitorActionCheckIn:
		v.CheckInTime = &now
	case VisitorActionCheckOut:
		v.CheckOutTime = &now
	}
	v.Status = next
	v.UpdatedAt = now
	return nil
}

// IsStale reports whether an approved or checked-in pass has outlived its validity
func (v *Visitor) IsStale(now time.Time) bool {
	if v.ValidUntil == nil {
		return false
	}
	if v.Status != VisitorStatusApproved && v.Status != VisitorStatusCheckedIn {
		return false
	}
	return now.After(*v.ValidUntil)
}

// ExpireIfStale promotes a stale pass to expired and reports whether it did
func (v *Visitor) ExpireIfStale(now time.Time) bool {
	if !v.IsStale(now) {
		return false
	}
	v.Status = VisitorStatusExpired
	v.UpdatedAt = now
	return true
}

// IsOnSite reports whether the visitor currently counts toward site occupancy
func (v *Visitor) IsOnSite(now time.Time) bool {
	return v.Status == VisitorStatusCheckedIn && !v.IsStale(now)
}

// CanAccessZone reports whether a checked-in visitor is permitted in the zone
func (v *Visitor) CanAccessZone(zone string) bool {
	if v.Status != VisitorStatusCheckedIn {
		return false
	}
	for _, z := range v.AccessZones {
		if strings.EqualFold(z, zone) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (v *Visitor) Clone() *Visitor {
	c := *v
	c.AccessZones = append([]string(nil), v.AccessZones...)
	c.Assets = append([]string(nil), v.Assets...)
	c.CheckInTime = cloneTime(v.CheckInTime)
	c.CheckOutTime = cloneTime(v.CheckOutTime)
	c.ValidUntil = cloneTime(v.ValidUntil)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
