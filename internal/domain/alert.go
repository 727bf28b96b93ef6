package domain

import (
	"strings"
	"time"
)

// AlertType classifies an emergency
type AlertType string

const (
	AlertTypeEvacuation  AlertType = "evacuation"
	AlertTypeFire        AlertType = "fire"
	AlertTypeMedical     AlertType = "medical"
	AlertTypeSecurity    AlertType = "security"
	AlertTypePanic       AlertType = "panic"
	AlertTypeMaintenance AlertType = "maintenance"
)

// IsValid checks if the alert type is known
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeEvacuation, AlertTypeFire, AlertTypeMedical, AlertTypeSecurity, AlertTypePanic, AlertTypeMaintenance:
		return true
	}
	return false
}

// DefaultSeverity is used when the trigger does not name one
func (t AlertType) DefaultSeverity() AlertSeverity {
	switch t {
	case AlertTypeFire, AlertTypeEvacuation:
		return SeverityCritical
	case AlertTypeMaintenance:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// AlertSeverity ranks an emergency
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// IsValid checks if the severity is known
func (s AlertSeverity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// EmergencyAlert is a site-wide incident requiring acknowledgement
type EmergencyAlert struct {
	ID             string        `json:"id"`
	Type           AlertType     `json:"type"`
	Message        string        `json:"message"`
	Severity       AlertSeverity `json:"severity"`
	Location       string        `json:"location,omitempty"`
	ReportedBy     string        `json:"reported_by"`
	ResponseTeam   []string      `json:"response_team,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
	IsActive       bool          `json:"is_active"`
	AcknowledgedBy []string      `json:"acknowledged_by"`
	ResolvedAt     *time.Time    `json:"resolved_at,omitempty"`
	ResolvedBy     string        `json:"resolved_by,omitempty"`
}

// AlertTrigger holds the caller-supplied fields of a new alert
type AlertTrigger struct {
	Type         AlertType
	Message      string
	Severity     AlertSeverity
	Location     string
	ResponseTeam []string
}

// Validate checks the trigger fields
func (t *AlertTrigger) Validate() error {
	verr := NewValidationError()
	if !t.Type.IsValid() {
		verr.Add("type", "Type is invalid")
	}
	if strings.TrimSpace(t.Message) == "" {
		verr.Add("message", "Message is required")
	}
	if t.Severity != "" && !t.Severity.IsValid() {
		verr.Add("severity", "Severity is invalid")
	}
	return verr.OrNil()
}

// NewEmergencyAlert builds an active alert with no acknowledgements
func NewEmergencyAlert(id string, t *AlertTrigger, reportedBy string, now time.Time) *EmergencyAlert {
	severity := t.Severity
	if severity == "" {
		severity = t.Type.DefaultSeverity()
	}
	return &EmergencyAlert{
		ID:             id,
		Type:           t.Type,
		Message:        strings.TrimSpace(t.Message),
		Severity:       severity,
		Location:       t.Location,
		ReportedBy:     reportedBy,
		ResponseTeam:   append([]string(nil), t.ResponseTeam...),
		Timestamp:      now,
		IsActive:       true,
		AcknowledgedBy: []string{},
	}
}

// Acknowledge adds the user once; it reports whether the set changed
func (a *EmergencyAlert) Acknowledge(userID string) (bool, error) {
	if !a.IsActive {
		return false, newTransitionError("alert", "resolved", "acknowledge")
	}
	if a.IsAcknowledgedBy(userID) {
		return false, nil
	}
	a.AcknowledgedBy = append(a.AcknowledgedBy, userID)
	return true, nil
}

// IsAcknowledgedBy reports whether the user already acknowledged
func (a *EmergencyAlert) IsAcknowledgedBy(userID string) bool {
	for _, id := range a.AcknowledgedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Resolve deactivates the alert
func (a *EmergencyAlert) Resolve(userID string, now time.Time) error {
	if !a.IsActive {
		return newTransitionError("alert", "resolved", "resolve")
	}
	a.IsActive = false
	a.ResolvedAt = &now
	a.ResolvedBy = userID
	return nil
}

// Clone returns a deep copy
func (a *EmergencyAlert) Clone() *EmergencyAlert {
	c := *a
	c.ResponseTeam = append([]string(nil), a.ResponseTeam...)
	c.AcknowledgedBy = append([]string{}, a.AcknowledgedBy...)
	c.ResolvedAt = cloneTime(a.ResolvedAt)
	return &c
}
