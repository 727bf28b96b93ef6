package domain

import "time"

// EventType names a domain event
type EventType string

const (
	EventVisitorRegistered  EventType = "visitor.registered"
	EventVisitorApproved    EventType = "visitor.approved"
	EventVisitorRejected    EventType = "visitor.rejected"
	EventVisitorCheckedIn   EventType = "visitor.checked_in"
	EventVisitorCheckedOut  EventType = "visitor.checked_out"
	EventVisitorExpired     EventType = "visitor.expired"
	EventVisitorBlacklisted EventType = "visitor.blacklisted"

	EventAmenityCreated    EventType = "amenity.created"
	EventAmenityUpdated    EventType = "amenity.updated"
	EventAmenityDeleted    EventType = "amenity.deleted"
	EventAmenityCheckedIn  EventType = "amenity.checked_in"
	EventAmenityCheckedOut EventType = "amenity.checked_out"

	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingCompleted EventType = "booking.completed"
	EventBookingNoShow    EventType = "booking.no_show"
	EventBookingPaid      EventType = "booking.paid"
	EventBookingRefunded  EventType = "booking.refunded"

	EventAlertTriggered    EventType = "alert.triggered"
	EventAlertAcknowledged EventType = "alert.acknowledged"
	EventAlertResolved     EventType = "alert.resolved"
)

// Aggregate names
const (
	AggregateVisitor = "visitor"
	AggregateAmenity = "amenity"
	AggregateBooking = "booking"
	AggregateAlert   = "alert"
)

// EventVersion is bumped when the payload shape changes
const EventVersion = 1

// DomainEvent is emitted after every successful mutation
type DomainEvent struct {
	EventID       string      `json:"event_id"`
	EventType     EventType   `json:"event_type"`
	AggregateType string      `json:"aggregate_type"`
	AggregateID   string      `json:"aggregate_id"`
	ActorID       string      `json:"actor_id"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Version       int         `json:"version"`
	Data          interface{} `json:"data"`
}

// Key returns the partition key so events of one record stay ordered
func (e *DomainEvent) Key() string {
	return e.AggregateType + ":" + e.AggregateID
}

func newEvent(eventID string, eventType EventType, aggregateType, aggregateID, actorID string, data interface{}) *DomainEvent {
	return &DomainEvent{
		EventID:       eventID,
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		ActorID:       actorID,
		OccurredAt:    time.Now(),
		Version:       EventVersion,
		Data:          data,
	}
}

// NewVisitorEvent snapshots a visitor into an event
func NewVisitorEvent(eventID string, eventType EventType, v *Visitor, actorID string) *DomainEvent {
	return newEvent(eventID, eventType, AggregateVisitor, v.ID, actorID, v.Clone())
}

// NewAmenityEvent snapshots an amenity into an event
func NewAmenityEvent(eventID string, eventType EventType, a *Amenity, actorID string) *DomainEvent {
	return newEvent(eventID, eventType, AggregateAmenity, a.ID, actorID, a.Clone())
}

// NewBookingEvent snapshots a booking into an event
func NewBookingEvent(eventID string, eventType EventType, b *Booking, actorID string) *DomainEvent {
	return newEvent(eventID, eventType, AggregateBooking, b.ID, actorID, b.Clone())
}

// NewAlertEvent snapshots an alert into an event
func NewAlertEvent(eventID string, eventType EventType, a *EmergencyAlert, actorID string) *DomainEvent {
	return newEvent(eventID, eventType, AggregateAlert, a.ID, actorID, a.Clone())
}

// VisitorEventFor maps a lifecycle action to its event
func VisitorEventFor(action VisitorAction) EventType {
	switch action {
	case VisitorActionApprove:
		return EventVisitorApproved
	case VisitorActionReject:
		return EventVisitorRejected
	case VisitorActionCheckIn:
		return EventVisitorCheckedIn
	case VisitorActionCheckOut:
		return EventVisitorCheckedOut
	}
	return ""
}

// BookingEventFor maps a lifecycle action to its event
func BookingEventFor(action BookingAction) EventType {
	switch action {
	case BookingActionApprove:
		return EventBookingConfirmed
	case BookingActionCancel:
		return EventBookingCancelled
	case BookingActionComplete:
		return EventBookingCompleted
	case BookingActionNoShow:
		return EventBookingNoShow
	}
	return ""
}
