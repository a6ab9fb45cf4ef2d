// Package admin реализует панель администратора SafeZone: статистику,
// список и выгрузку пользователей, выдачу прав администратора и VIP.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/services/identity"
	"github.com/magabrotheeeer/safezone/internal/storage"
)

// Repository описывает контракт хранилища для панели администратора.
type Repository interface {
	Stats(ctx context.Context) (models.Stats, error)
	ListUsers(ctx context.Context) ([]*models.UserSummary, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserAccess(ctx context.Context, id string, upd models.AccessUpdate) error
}

// UserInvalidator сбрасывает закешированного пользователя после смены прав.
type UserInvalidator interface {
	InvalidateUser(ctx context.Context, userID string)
}

// SetAccessRequest — изменение прав пользователя.
//
// VIPPermanent принимается для совместимости с клиентом, но ни на что не
// влияет: выданный VIP всегда бессрочный.
type SetAccessRequest struct {
	Email        string
	IsAdmin      bool
	IsVIP        bool
	VIPPermanent bool
}

// Result — ответ на изменение прав.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service реализует операции администратора.
type Service struct {
	repo        Repository
	invalidator UserInvalidator
	log         *slog.Logger
	now         func() time.Time
}

// New создаёт Service. invalidator может быть nil.
func New(repo Repository, invalidator UserInvalidator, log *slog.Logger, now func() time.Time) *Service {
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		log:         log,
		now:         now,
	}
}

// Stats возвращает сводку по пользователям, подпискам, тревогам и обращениям.
func (s *Service) Stats(ctx context.Context, actor *models.User) (models.Stats, error) {
	const op = "admin.Stats"

	if err := authorize(actor); err != nil {
		return models.Stats{}, err
	}
	st, err := s.repo.Stats(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// ListUsers возвращает всех пользователей, новые первыми.
func (s *Service) ListUsers(ctx context.Context, actor *models.User) ([]*models.UserSummary, error) {
	const op = "admin.ListUsers"

	if err := authorize(actor); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// SetAccess выдаёт или снимает права администратора и VIP.
func (s *Service) SetAccess(ctx context.Context, actor *models.User, req SetAccessRequest) (*Result, error) {
	const op = "admin.SetAccess"

	if err := authorize(actor); err != nil {
		return nil, err
	}

	email := identity.NormalizeEmail(req.Email)
	target, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrTargetUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upd := models.AccessUpdate{IsAdmin: req.IsAdmin, IsVIP: req.IsVIP}
	if err := s.repo.UpdateUserAccess(ctx, target.ID, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.ErrTargetUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(ctx, target.ID)
	}

	s.log.Info("user access changed",
		slog.String("actor_id", actor.ID),
		slog.String("target_id", target.ID),
		slog.Bool("is_admin", req.IsAdmin),
		slog.Bool("is_vip", req.IsVIP),
	)
	return &Result{Success: true, Message: accessMessage(email, req)}, nil
}

func accessMessage(email string, req SetAccessRequest) string {
	action := "removido de"
	if req.IsAdmin {
		action = "promovido a"
	}
	vip := ""
	if req.IsVIP {
		vip = " e VIP"
	}
	return fmt.Sprintf("Usuário %s %s admin%s com sucesso", email, action, vip)
}

func authorize(actor *models.User) error {
	if actor == nil || !actor.IsAdmin {
		return apperr.ErrAdminRequired
	}
	return nil
}
