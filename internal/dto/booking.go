package dto

import "github.com/prohmpiriya/residence-gate/internal/domain"

// CreateBookingRequest represents a booking body
type CreateBookingRequest struct {
	AmenityID       string   `json:"amenity_id"`
	Date            string   `json:"date"`
	StartTime       string   `json:"start_time"`
	EndTime         string   `json:"end_time"`
	Attendees       int      `json:"attendees"`
	Equipment       []string `json:"equipment,omitempty"`
	SpecialRequests string   `json:"special_requests,omitempty"`
}

// ToBookingRequest converts the body to a domain request
func (r *CreateBookingRequest) ToBookingRequest() *domain.BookingRequest {
	return &domain.BookingRequest{
		AmenityID:       r.AmenityID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Attendees:       r.Attendees,
		Equipment:       r.Equipment,
		SpecialRequests: r.SpecialRequests,
	}
}
