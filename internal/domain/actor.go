package domain

import "fmt"

// Role represents the acting user's role
type Role string

const (
	RoleResident        Role = "resident"
	RoleVisitor         Role = "visitor"
	RoleAdmin           Role = "admin"
	RoleSecurity        Role = "security"
	RoleFacilityManager Role = "facility-manager"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleResident, RoleVisitor, RoleAdmin, RoleSecurity, RoleFacilityManager:
		return true
	}
	return false
}

// Actor is the identity presented with every core operation
type Actor struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	Role      Role   `json:"role"`
}

// SystemActor is used by background workers
var SystemActor = Actor{UserID: "system", Name: "system", Role: RoleAdmin}

// Operation names a capability-checked command
type Operation string

const (
	OpVisitorRegister     Operation = "visitor.register"
	OpVisitorBulkRegister Operation = "visitor.bulk-register"
	OpVisitorApprove      Operation = "visitor.approve"
	OpVisitorReject       Operation = "visitor.reject"
	OpVisitorCheckIn      Operation = "visitor.check-in"
	OpVisitorCheckOut     Operation = "visitor.check-out"
	OpVisitorBlacklist    Operation = "visitor.blacklist"
	OpVisitorRead         Operation = "visitor.read"

	OpAmenityCreate   Operation = "amenity.create"
	OpAmenityUpdate   Operation = "amenity.update"
	OpAmenityDelete   Operation = "amenity.delete"
	OpAmenityCheckIn  Operation = "amenity.check-in"
	OpAmenityCheckOut Operation = "amenity.check-out"

	OpBookingCreate   Operation = "booking.create"
	OpBookingApprove  Operation = "booking.approve"
	OpBookingCancel   Operation = "booking.cancel"
	OpBookingComplete Operation = "booking.complete"
	OpBookingNoShow   Operation = "booking.no-show"
	OpBookingPay      Operation = "booking.pay"

	OpAlertTrigger     Operation = "alert.trigger"
	OpAlertAcknowledge Operation = "alert.acknowledge"
	OpAlertResolve     Operation = "alert.resolve"

	OpAnalyticsRead Operation = "analytics.read"
)

var allRoles = []Role{RoleResident, RoleVisitor, RoleAdmin, RoleSecurity, RoleFacilityManager}

var capabilities = map[Operation][]Role{
	OpVisitorRegister:     {RoleResident, RoleAdmin, RoleSecurity},
	OpVisitorBulkRegister: {RoleResident, RoleAdmin},
	OpVisitorApprove:      {RoleResident, RoleAdmin},
	OpVisitorReject:       {RoleResident, RoleAdmin},
	OpVisitorCheckIn:      {RoleSecurity, RoleAdmin},
	OpVisitorCheckOut:     {RoleSecurity, RoleAdmin},
	OpVisitorBlacklist:    {RoleSecurity, RoleAdmin},
	OpVisitorRead:         {RoleResident, RoleAdmin, RoleSecurity, RoleFacilityManager},

	OpAmenityCreate:   {RoleAdmin},
	OpAmenityUpdate:   {RoleAdmin},
	OpAmenityDelete:   {RoleAdmin},
	OpAmenityCheckIn:  allRoles,
	OpAmenityCheckOut: allRoles,

	OpBookingCreate:   {RoleResident, RoleVisitor, RoleAdmin},
	OpBookingApprove:  {RoleFacilityManager, RoleAdmin},
	OpBookingCancel:   allRoles,
	OpBookingComplete: {RoleFacilityManager, RoleAdmin},
	OpBookingNoShow:   {RoleFacilityManager, RoleAdmin},
	OpBookingPay:      allRoles,

	OpAlertTrigger:     {RoleSecurity, RoleAdmin},
	OpAlertAcknowledge: allRoles,
	OpAlertResolve:     {RoleSecurity, RoleAdmin},

	OpAnalyticsRead: {RoleAdmin, RoleSecurity, RoleFacilityManager},
}

// PermittedRoles returns the roles allowed to invoke an operation
func PermittedRoles(op Operation) []Role {
	return append([]Role(nil), capabilities[op]...)
}

// Can reports whether the actor's role may invoke the operation
func (a Actor) Can(op Operation) bool {
	for _, r := range capabilities[op] {
		if r == a.Role {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden when the actor may not invoke the operation
func (a Actor) Authorize(op Operation) error {
	if a.UserID == "" || !a.Role.IsValid() {
		return fmt.Errorf("%w: missing or unknown actor", ErrForbidden)
	}
	if !a.Can(op) {
		return fmt.Errorf("%w: role %s cannot %s", ErrForbidden, a.Role, op)
	}
	return nil
}

// IsAdmin reports whether the actor has the admin role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
