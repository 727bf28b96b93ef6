package dto

import "github.com/prohmpiriya/residence-gate/internal/domain"

// TriggerAlertRequest represents an emergency alert body
type TriggerAlertRequest struct {
	Type         string   `json:"type"`
	Message      string   `json:"message"`
	Severity     string   `json:"severity,omitempty"`
	Location     string   `json:"location,omitempty"`
	ResponseTeam []string `json:"response_team,omitempty"`
}

// ToTrigger converts the body to a domain trigger
func (r *TriggerAlertRequest) ToTrigger() *domain.AlertTrigger {
	return &domain.AlertTrigger{
		Type:         domain.AlertType(r.Type),
		Message:      r.Message,
		Severity:     domain.AlertSeverity(r.Severity),
		Location:     r.Location,
		ResponseTeam: r.ResponseTeam,
	}
}
