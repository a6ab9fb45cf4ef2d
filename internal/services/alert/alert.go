// Package alert реализует тревоги SafeZone: создание, рассылку соседям
// по улице, просмотр и остановку.
package alert

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
)

// ListLimit — максимальное число тревог в списке.
const ListLimit = 10

// TimestampLayout — формат времени тревоги в списке.
const TimestampLayout = "02/01/2006 15:04"

// Базовая точка, вокруг которой строится приблизительная координата.
const (
	baseLat = -23.55
	baseLng = -46.63
)

const msgStopped = "Alerta interrompido com sucesso"

// Repository описывает контракт хранилища тревог.
type Repository interface {
	CreateAlert(ctx context.Context, alert models.Alert) error
	// FindNeighbours возвращает ID жителей той же улицы, кроме excludeUserID.
	FindNeighbours(ctx context.Context, addr models.Address, excludeUserID string) ([]string, error)
	CreateNotification(ctx context.Context, n models.EmergencyNotification) error
	// ListActiveAlerts возвращает активные тревоги улицы, новые первыми.
	ListActiveAlerts(ctx context.Context, addr models.Address, limit int) ([]*models.Alert, error)
	// DeactivateAlert снимает тревогу, если она принадлежит userID.
	// Возвращает false, если такой тревоги нет.
	DeactivateAlert(ctx context.Context, id, userID string) (bool, error)
}

// Publisher отправляет уведомление в брокер сообщений.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// Metrics получает события тревог.
type Metrics interface {
	AlertCreated(alertType string, recipients int)
	NotificationPublishFailed()
}

// StopResult — ответ на остановку тревоги.
type StopResult struct {
	Message string `json:"message"`
}

// Service управляет тревогами.
type Service struct {
	repo      Repository
	publisher Publisher
	metrics   Metrics
	log       *slog.Logger
	now       func() time.Time
}

// New создаёт Service. publisher и metrics могут быть nil.
func New(repo Repository, publisher Publisher, metrics Metrics, log *slog.Logger, now func() time.Time) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		now:       now,
	}
}

// ValidType сообщает, известен ли тип тревоги.
func ValidType(alertType string) bool {
	switch alertType {
	case models.AlertInvasion, models.AlertRobbery, models.AlertEmergency:
		return true
	}
	return false
}

// Create сохраняет тревогу и записывает уведомление для всех соседей по улице.
// Автор тревоги уведомление не получает.
func (s *Service) Create(ctx context.Context, user *models.User, alertType string) (*models.AlertResult, error) {
	const op = "alert.Create"

	if !ValidType(alertType) {
		return nil, apperr.ErrInvalidAlertType
	}

	now := s.now()
	a := models.Alert{
		ID:        uuid.NewString(),
		Type:      alertType,
		UserID:    user.ID,
		UserName:  user.DisplayName(),
		Address:   user.Address,
		Location:  ApproxLocation(user.ID),
		Timestamp: now,
		IsActive:  true,
	}
	if err := s.repo.CreateAlert(ctx, a); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	neighbours, err := s.repo.FindNeighbours(ctx, user.Address, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	n := models.EmergencyNotification{
		ID:                   uuid.NewString(),
		AlertID:              a.ID,
		AlertType:            alertType,
		RequesterName:        user.Name,
		RequesterAddress:     user.Address.String(),
		TargetUsers:          neighbours,
		IsSilentForRequester: true,
		CreatedAt:            now,
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, n)
	if s.metrics != nil {
		s.metrics.AlertCreated(alertType, len(neighbours))
	}
	s.log.Info("alert created",
		slog.String("alert_id", a.ID),
		slog.String("type", alertType),
		slog.Int("recipients", len(neighbours)),
	)

	return &models.AlertResult{
		Message:            fmt.Sprintf("Alerta de %s enviado com sucesso!", alertType),
		AlertID:            a.ID,
		NotificationSentTo: len(neighbours),
		SilentForRequester: true,
		TargetAddress:      fmt.Sprintf("Rua %s, %s", user.Street, user.Neighborhood),
	}, nil
}

// publish отправляет уведомление в брокер. Ошибка брокера не отменяет
// тревогу: запись уведомления уже сохранена.
func (s *Service) publish(ctx context.Context, n models.EmergencyNotification) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyEmergency, n); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationPublishFailed()
		}
		s.log.Error("failed to publish emergency notification", slog.String("alert_id", n.AlertID), sl.Err(err))
	}
}

// List возвращает активные тревоги на улице пользователя.
func (s *Service) List(ctx context.Context, user *models.User) ([]models.AlertView, error) {
	const op = "alert.List"

	alerts, err := s.repo.ListActiveAlerts(ctx, user.Address, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	views := make([]models.AlertView, 0, len(alerts))
	for _, a := range alerts {
		views = append(views, models.AlertView{
			ID:           a.ID,
			Type:         a.Type,
			UserName:     a.UserName,
			State:        a.State,
			City:         a.City,
			Neighborhood: a.Neighborhood,
			Street:       a.Street,
			Number:       a.Number,
			Timestamp:    a.Timestamp.Format(TimestampLayout),
			IsActive:     a.IsActive,
		})
	}
	return views, nil
}

// Stop снимает тревогу. Снять тревогу может только её автор; для чужой,
// несуществующей или уже снятой тревоги возвращается apperr.ErrAlertNotFound.
func (s *Service) Stop(ctx context.Context, user *models.User, alertID string) (*StopResult, error) {
	const op = "alert.Stop"

	ok, err := s.repo.DeactivateAlert(ctx, alertID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, apperr.ErrAlertNotFound
	}
	s.log.Info("alert stopped", slog.String("alert_id", alertID))
	return &StopResult{Message: msgStopped}, nil
}

// ApproxLocation возвращает координату рядом с базовой точкой. Смещение
// детерминировано: для одного пользователя оно всегда одинаково.
func ApproxLocation(userID string) models.Location {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	offset := (float64(h.Sum32()%100) - 50) / 5000
	return models.Location{Lat: baseLat + offset, Lng: baseLng + offset}
}
