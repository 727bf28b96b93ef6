package dto

import "github.com/prohmpiriya/residence-gate/internal/domain"

// RegisterVisitorRequest represents a visitor registration body
type RegisterVisitorRequest struct {
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email"`
	IDNumber      string   `json:"id_number"`
	Photo         string   `json:"photo,omitempty"`
	Purpose       string   `json:"purpose"`
	HostID        string   `json:"host_id,omitempty"`
	HostName      string   `json:"host_name,omitempty"`
	HostApartment string   `json:"host_apartment,omitempty"`
	VisitDate     string   `json:"visit_date"`
	VisitTime     string   `json:"visit_time"`
	VehicleNumber string   `json:"vehicle_number,omitempty"`
	AccessZones   []string `json:"access_zones,omitempty"`
	DeliveryType  string   `json:"delivery_type,omitempty"`
	VendorType    string   `json:"vendor_type,omitempty"`
	Assets        []string `json:"assets,omitempty"`
	Source        string   `json:"source,omitempty"`
}

// ToRegistration converts the body to a domain registration
func (r *RegisterVisitorRequest) ToRegistration() *domain.VisitorRegistration {
	return &domain.VisitorRegistration{
		Name:          r.Name,
		Phone:         r.Phone,
		Email:         r.Email,
		IDNumber:      r.IDNumber,
		Photo:         r.Photo,
		Purpose:       r.Purpose,
		HostID:        r.HostID,
		HostName:      r.HostName,
		HostApartment: r.HostApartment,
		VisitDate:     r.VisitDate,
		VisitTime:     r.VisitTime,
		VehicleNumber: r.VehicleNumber,
		AccessZones:   r.AccessZones,
		DeliveryType:  domain.DeliveryType(r.DeliveryType),
		VendorType:    domain.VendorType(r.VendorType),
		Assets:        r.Assets,
		Source:        domain.RegistrationSource(r.Source),
	}
}

// BulkRegisterRequest carries several registrations at once
type BulkRegisterRequest struct {
	Visitors []RegisterVisitorRequest `json:"visitors" binding:"required"`
}

// BlacklistRequest flags or clears a visitor; omitted means flag
type BlacklistRequest struct {
	Blacklisted *bool `json:"blacklisted"`
}

// ZoneAccessResponse answers a zone access check
type ZoneAccessResponse struct {
	VisitorID string `json:"visitor_id"`
	Zone      string `json:"zone"`
	Allowed   bool   `json:"allowed"`
}
