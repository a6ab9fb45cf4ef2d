package models

import "time"

// Типы тревог.
const (
	AlertInvasion  = "invasion"
	AlertRobbery   = "robbery"
	AlertEmergency = "emergency"
)

// Location — приблизительные координаты тревоги.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Alert — тревога, видимая жителям той же улицы.
type Alert struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Address             // адрес автора на момент создания
	Location  Location  `json:"location"`
	Timestamp time.Time `json:"timestamp"`
	IsActive  bool      `json:"is_active"`
}

// EmergencyNotification — запись рассылки тревоги соседям.
// Автор тревоги не получает уведомление о своей же тревоге.
type EmergencyNotification struct {
	ID                   string    `json:"id"`
	AlertID              string    `json:"alert_id"`
	AlertType            string    `json:"alert_type"`
	RequesterName        string    `json:"requester_name"`
	RequesterAddress     string    `json:"requester_address"`
	TargetUsers          []string  `json:"target_users"`
	IsSilentForRequester bool      `json:"is_silent_for_requester"`
	CreatedAt            time.Time `json:"created_at"`
}

// AlertResult — ответ на создание тревоги.
type AlertResult struct {
	Message            string `json:"message"`
	AlertID            string `json:"alert_id"`
	NotificationSentTo int    `json:"notification_sent_to"`
	SilentForRequester bool   `json:"silent_for_requester"`
	TargetAddress      string `json:"target_address"`
}

// AlertView — тревога в списке для жителей улицы.
type AlertView struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	UserName     string `json:"user_name"`
	State        string `json:"state"`
	City         string `json:"city"`
	Neighborhood string `json:"neighborhood"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Timestamp    string `json:"timestamp"`
	IsActive     bool   `json:"is_active"`
}
