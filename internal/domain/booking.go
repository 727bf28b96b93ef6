package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusNoShow    BookingStatus = "no-show"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled,
		BookingStatusCompleted, BookingStatusNoShow:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// PaymentStatus is set only for bookings of paid amenities
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// BookingAction is a lifecycle command applied to a booking
type BookingAction string

const (
	BookingActionApprove  BookingAction = "approve"
	BookingActionCancel   BookingAction = "cancel"
	BookingActionComplete BookingAction = "complete"
	BookingActionNoShow   BookingAction = "no-show"
)

// Operation returns the capability required to apply the action
func (a BookingAction) Operation() Operation {
	switch a {
	case BookingActionApprove:
		return OpBookingApprove
	case BookingActionCancel:
		return OpBookingCancel
	case BookingActionComplete:
		return OpBookingComplete
	case BookingActionNoShow:
		return OpBookingNoShow
	}
	return ""
}

var bookingTransitions = map[BookingStatus]map[BookingAction]BookingStatus{
	BookingStatusPending: {
		BookingActionApprove: BookingStatusConfirmed,
		BookingActionCancel:  BookingStatusCancelled,
	},
	BookingStatusConfirmed: {
		BookingActionCancel:   BookingStatusCancelled,
		BookingActionComplete: BookingStatusCompleted,
		BookingActionNoShow:   BookingStatusNoShow,
	},
}

// OperatingHours bounds the clock times bookings may use
type OperatingHours struct {
	Open  string
	Close string
}

// DefaultOperatingHours matches the community's booking window
func DefaultOperatingHours() OperatingHours {
	return OperatingHours{Open: "06:00", Close: "22:00"}
}

// Booking represents a reservation of an amenity time slot
type Booking struct {
	ID               string          `json:"id"`
	AmenityID        string          `json:"amenity_id"`
	AmenityName      string          `json:"amenity_name"`
	UserID           string          `json:"user_id"`
	UserName         string          `json:"user_name"`
	UserApartment    string          `json:"user_apartment"`
	Date             string          `json:"date"`
	StartTime        string          `json:"start_time"`
	EndTime          string          `json:"end_time"`
	Status           BookingStatus   `json:"status"`
	SpecialRequests  string          `json:"special_requests,omitempty"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	PaymentStatus    PaymentStatus   `json:"payment_status,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	Attendees        int             `json:"attendees"`
	Equipment        []string        `json:"equipment,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// BookingRequest holds the caller-supplied fields of a new booking
type BookingRequest struct {
	AmenityID       string
	Date            string
	StartTime       string
	EndTime         string
	Attendees       int
	Equipment       []string
	SpecialRequests string
}

// Validate checks the request shape and accumulates every problem
func (r *BookingRequest) Validate(hours OperatingHours) error {
	verr := NewValidationError()

	if strings.TrimSpace(r.AmenityID) == "" {
		verr.Add("amenity_id", "Amenity is required")
	}
	if strings.TrimSpace(r.Date) == "" {
		verr.Add("date", "Date is required")
	} else if _, err := time.Parse(DateLayout, r.Date); err != nil {
		verr.Add("date", "Date must be in YYYY-MM-DD format")
	}

	start, startErr := parseClock(r.StartTime)
	end, endErr := parseClock(r.EndTime)
	switch {
	case strings.TrimSpace(r.StartTime) == "":
		verr.Add("start_time", "Start time is required")
	case startErr != nil:
		verr.Add("start_time", "Start time must be in HH:MM format")
	}
	switch {
	case strings.TrimSpace(r.EndTime) == "":
		verr.Add("end_time", "End time is required")
	case endErr != nil:
		verr.Add("end_time", "End time must be in HH:MM format")
	}

	if startErr == nil && endErr == nil {
		if end <= start {
			verr.Add("end_time", "End time must be after start time")
		}
		open, openErr := parseClock(hours.Open)
		closing, closeErr := parseClock(hours.Close)
		if openErr == nil && closeErr == nil && (start < open || end > closing) {
			verr.Add("start_time", fmt.Sprintf("Bookings must be between %s and %s", hours.Open, hours.Close))
		}
	}

	if r.Attendees < 0 {
		verr.Add("attendees", "Attendees cannot be negative")
	}

	return verr.OrNil()
}

// NewBooking prices and gates a validated request against the amenity
func NewBooking(id string, amenity *Amenity, actor Actor, r *BookingRequest, now time.Time) (*Booking, error) {
	if !amenity.Type.IsBookable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedAmenityMode, amenity.Name, amenity.Type)
	}
	if err := amenity.EnsureOperational(); err != nil {
		return nil, err
	}

	attendees := r.Attendees
	if attendees == 0 {
		attendees = 1
	}
	if attendees > amenity.Capacity {
		return nil, fmt.Errorf("%w: %d attendees for capacity %d", ErrCapacityExceeded, attendees, amenity.Capacity)
	}

	start, _ := parseClock(r.StartTime)
	end, _ := parseClock(r.EndTime)

	b := &Booking{
		ID:              id,
		AmenityID:       amenity.ID,
		AmenityName:     amenity.Name,
		UserID:          actor.UserID,
		UserName:        actor.Name,
		UserApartment:   actor.Apartment,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		Status:          BookingStatusConfirmed,
		SpecialRequests: strings.TrimSpace(r.SpecialRequests),
		TotalAmount:     decimal.Zero,
		Attendees:       attendees,
		Equipment:       append([]string(nil), r.Equipment...),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if amenity.RequiresApproval {
		b.Status = BookingStatusPending
	}
	if amenity.RequiresPayment {
		b.PaymentStatus = PaymentStatusPending
		b.TotalAmount = PriceFor(amenity.PricePerHour, end-start)
	}
	return b, nil
}

// PriceFor returns minutes/60 × pricePerHour rounded to cents
func PriceFor(pricePerHour decimal.Decimal, minutes int) decimal.Decimal {
	return pricePerHour.
		Mul(decimal.NewFromInt(int64(minutes))).
		Div(decimal.NewFromInt(60)).
		Round(2)
}

// DurationMinutes returns the length of the booked interval
func (b *Booking) DurationMinutes() int {
	start, end := b.window()
	return end - start
}

// BlocksCalendar reports whether the booking still holds its slot
func (b *Booking) BlocksCalendar() bool {
	return b.Status != BookingStatusCancelled
}

// Overlaps reports whether two bookings intersect on the same amenity and date
func (b *Booking) Overlaps(other *Booking) bool {
	if b.AmenityID != other.AmenityID || b.Date != other.Date {
		return false
	}
	aStart, aEnd := b.window()
	bStart, bEnd := other.window()
	return aStart < bEnd && bStart < aEnd
}

func (b *Booking) window() (int, int) {
	start, _ := parseClock(b.StartTime)
	end, _ := parseClock(b.EndTime)
	return start, end
}

// Apply performs a lifecycle action or fails without changing the booking
func (b *Booking) Apply(action BookingAction, now time.Time) error {
	next, ok := bookingTransitions[b.Status][action]
	if !ok {
		return newTransitionError("booking", string(b.Status), string(action))
	}
	b.Status = next
	b.UpdatedAt = now
	return nil
}

// MarkPaid records a successful charge
func (b *Booking) MarkPaid(reference string, now time.Time) error {
	if b.PaymentStatus == "" {
		return ErrPaymentNotRequired
	}
	if b.PaymentStatus != PaymentStatusPending || b.Status == BookingStatusCancelled {
		return newTransitionError("booking payment", string(b.PaymentStatus), "pay")
	}
	b.PaymentStatus = PaymentStatusPaid
	b.PaymentReference = reference
	b.UpdatedAt = now
	return nil
}

// MarkRefunded records a refund of a paid booking
func (b *Booking) MarkRefunded(now time.Time) error {
	if b.PaymentStatus != PaymentStatusPaid {
		return newTransitionError("booking payment", string(b.PaymentStatus), "refund")
	}
	b.PaymentStatus = PaymentStatusRefunded
	b.UpdatedAt = now
	return nil
}

// Clone returns a deep copy
func (b *Booking) Clone() *Booking {
	c := *b
	c.Equipment = append([]string(nil), b.Equipment...)
	return &c
}

// parseClock converts HH:MM into minutes after midnight
func parseClock(s string) (int, error) {
	t, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
