// Package help реализует обращения жителей в поддержку SafeZone.
package help

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/models"
)

const (
	msgSent      = "Sua mensagem foi enviada com sucesso! Nossa equipe responderá em breve."
	msgResponded = "Resposta enviada com sucesso"
)

// Repository описывает контракт хранилища обращений.
type Repository interface {
	CreateHelpMessage(ctx context.Context, m models.HelpMessage) error
	ListHelpMessages(ctx context.Context) ([]*models.HelpMessage, error)
	// RespondHelpMessage возвращает false, если обращения нет.
	RespondHelpMessage(ctx context.Context, id, response string, resolvedAt time.Time) (bool, error)
}

// Result — ответ на отправку обращения и на ответ администратора.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service управляет обращениями.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// New создаёт Service.
func New(repo Repository, log *slog.Logger, now func() time.Time) *Service {
	return &Service{repo: repo, log: log, now: now}
}

// Send сохраняет обращение пользователя со статусом pending.
func (s *Service) Send(ctx context.Context, user *models.User, message string) (*Result, error) {
	const op = "help.Send"

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.ErrInvalidRequest
	}

	m := models.HelpMessage{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		UserName:    user.Name,
		UserEmail:   user.Email,
		UserAddress: user.Address.String(),
		Message:     message,
		Status:      models.HelpPending,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateHelpMessage(ctx, m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("help message received", slog.String("help_message_id", m.ID), slog.String("user_id", user.ID))
	return &Result{Success: true, Message: msgSent}, nil
}

// List возвращает все обращения, новые первыми.
func (s *Service) List(ctx context.Context) ([]*models.HelpMessage, error) {
	const op = "help.List"

	messages, err := s.repo.ListHelpMessages(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return messages, nil
}

// Respond сохраняет ответ администратора и помечает обращение решённым.
func (s *Service) Respond(ctx context.Context, id, response string) (*Result, error) {
	const op = "help.Respond"

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, apperr.ErrResponseRequired
	}

	ok, err := s.repo.RespondHelpMessage(ctx, id, response, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return nil, apperr.ErrHelpMessageNotFound
	}

	s.log.Info("help message resolved", slog.String("help_message_id", id))
	return &Result{Success: true, Message: msgResponded}, nil
}
