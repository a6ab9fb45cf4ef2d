package models

import (
	"encoding/json"
	"time"
)

// Статусы обращения в поддержку.
const (
	HelpPending  = "pending"
	HelpRead     = "read"
	HelpResolved = "resolved"
)

// HelpMessage — обращение жителя в поддержку.
type HelpMessage struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	UserName      string     `json:"user_name"`
	UserEmail     string     `json:"user_email"`
	UserAddress   string     `json:"user_address"`
	Message       string     `json:"message"`
	Status        string     `json:"status"`
	AdminResponse *string    `json:"admin_response,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

// MarshalJSON отдаёт created_at и resolved_at в формате DisplayTimeLayout.
func (m HelpMessage) MarshalJSON() ([]byte, error) {
	type message HelpMessage
	out := struct {
		message
		CreatedAt  string  `json:"created_at"`
		ResolvedAt *string `json:"resolved_at,omitempty"`
	}{message: message(m), CreatedAt: m.CreatedAt.Format(DisplayTimeLayout)}
	if m.ResolvedAt != nil {
		resolved := m.ResolvedAt.Format(DisplayTimeLayout)
		out.ResolvedAt = &resolved
	}
	return json.Marshal(out)
}

// Stats — сводка для панели администратора.
type Stats struct {
	TotalUsers           int `json:"total_users"`
	TotalSubscriptions   int `json:"total_subscriptions"`
	ActiveSubscriptions  int `json:"active_subscriptions"`
	TrialSubscriptions   int `json:"trial_subscriptions"`
	BlockedSubscriptions int `json:"blocked_subscriptions"`
	TotalAlerts          int `json:"total_alerts"`
	PendingHelpMessages  int `json:"pending_help_messages"`
}
