// Package subscription реализует жизненный цикл подписки SafeZone:
// пробный период, оплату, период ожидания оплаты и блокировку.
//
// Состояние не обновляется фоновыми задачами: каждый запрос статуса
// вычисляет его заново через Derive и сохраняет обнаруженный переход.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/services/identity"
	"github.com/magabrotheeeer/safezone/internal/storage"
)

// BillingCycleMonthly — единственный поддерживаемый период оплаты.
const BillingCycleMonthly = "monthly"

// Repository описывает контракт хранилища подписок.
type Repository interface {
	// CreateSubscription сохраняет подписку; storage.ErrDuplicate, если
	// у пользователя уже есть незавершённая.
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	// GetOpenSubscription возвращает незавершённую подписку или storage.ErrNotFound.
	GetOpenSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	// GetSubscription возвращает подписку пользователя по ID или storage.ErrNotFound.
	GetSubscription(ctx context.Context, id, userID string) (*models.Subscription, error)
	// UpdateSubscription атомарно применяет изменение к одной подписке.
	UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error
}

// Metrics получает события жизненного цикла подписок.
type Metrics interface {
	SubscriptionCreated(paymentMethod string)
	SubscriptionTransition(from, to models.SubscriptionStatus)
}

// Result — ответ на подтверждение оплаты и отмену подписки.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service управляет подписками пользователей.
type Service struct {
	repo    Repository
	policy  Policy
	log     *slog.Logger
	now     func() time.Time
	metrics Metrics
}

// New создаёт Service. metrics может быть nil.
func New(repo Repository, policy Policy, log *slog.Logger, now func() time.Time, metrics Metrics) *Service {
	return &Service{
		repo:    repo,
		policy:  policy,
		log:     log,
		now:     now,
		metrics: metrics,
	}
}

// Create оформляет подписку с пробным периодом и возвращает заглушку
// платёжного шлюза для выбранного способа оплаты.
func (s *Service) Create(ctx context.Context, user *models.User, paymentMethod string) (*models.PaymentResponse, error) {
	const op = "subscription.Create"

	if !ValidPaymentMethod(paymentMethod) {
		return nil, apperr.ErrInvalidPaymentMethod
	}

	_, err := s.repo.GetOpenSubscription(ctx, user.ID)
	if err == nil {
		return nil, apperr.ErrDuplicateSubscription
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	trialEnd := now.Add(s.policy.TrialPeriod)
	graceEnd := trialEnd.Add(s.policy.GracePeriod)
	dueDate := graceEnd
	sub := models.Subscription{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		PaymentMethod:  paymentMethod,
		Status:         models.StatusTrial,
		StartDate:      now,
		TrialEndDate:   trialEnd,
		NextPayment:    trialEnd,
		PaymentDueDate: &dueDate,
		GracePeriodEnd: &graceEnd,
		IsTrial:        true,
		Amount:         s.policy.Amount,
		BillingCycle:   BillingCycleMonthly,
		CreatedAt:      now,
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.ErrDuplicateSubscription
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.metrics != nil {
		s.metrics.SubscriptionCreated(paymentMethod)
	}
	s.log.Info("subscription created",
		slog.String("user_id", user.ID),
		slog.String("subscription_id", sub.ID),
		slog.String("payment_method", paymentMethod),
	)

	return paymentStub(paymentMethod, sub.ID, s.policy.trialDays()), nil
}

// Status возвращает текущее состояние подписки пользователя.
// Пользователь с действующим VIP всегда получает статус vip.
func (s *Service) Status(ctx context.Context, user *models.User) (models.StatusView, error) {
	const op = "subscription.Status"

	now := s.now()
	if identity.IsVIPActive(user, now) {
		return VIPView(user.IsAdmin), nil
	}

	sub, err := s.repo.GetOpenSubscription(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return NoneView(), nil
	}
	if err != nil {
		return models.StatusView{}, fmt.Errorf("%s: %w", op, err)
	}

	view, upd := Derive(sub, now, s.policy)
	if upd == nil {
		return view, nil
	}

	if err := s.repo.UpdateSubscription(ctx, sub.ID, *upd); err != nil {
		return models.StatusView{}, fmt.Errorf("%s: %w", op, err)
	}
	if s.metrics != nil {
		s.metrics.SubscriptionTransition(sub.Status, upd.Status)
	}
	s.log.Info("subscription transition persisted",
		slog.String("subscription_id", sub.ID),
		slog.String("from", string(sub.Status)),
		slog.String("to", string(upd.Status)),
	)
	return view, nil
}

// CheckAccess возвращает apperr.ErrSubscriptionBlocked, если приложение
// для пользователя заблокировано.
func (s *Service) CheckAccess(ctx context.Context, user *models.User) error {
	view, err := s.Status(ctx, user)
	if err != nil {
		return err
	}
	if view.IsBlocked {
		return apperr.ErrSubscriptionBlocked
	}
	return nil
}

// ConfirmPayment активирует подписку на следующий период оплаты
// и снимает блокировку.
func (s *Service) ConfirmPayment(ctx context.Context, user *models.User, subscriptionID string) (*Result, error) {
	const op = "subscription.ConfirmPayment"

	sub, err := s.repo.GetSubscription(ctx, subscriptionID, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	next := now.Add(s.policy.BillingCycle)
	isTrial := false
	upd := models.SubscriptionUpdate{
		Status:          models.StatusActive,
		LastPaymentDate: &now,
		NextPayment:     &next,
		IsTrial:         &isTrial,
		ClearBlockedAt:  true,
	}
	if err := s.repo.UpdateSubscription(ctx, sub.ID, upd); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.ErrDuplicateSubscription
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.metrics != nil {
		s.metrics.SubscriptionTransition(sub.Status, models.StatusActive)
	}
	s.log.Info("payment confirmed",
		slog.String("subscription_id", sub.ID),
		slog.String("previous_status", string(sub.Status)),
	)
	return &Result{Success: true, Message: msgConfirmed}, nil
}

// Cancel отменяет незавершённую подписку пользователя. У пользователя
// с действующим VIP подписки нет, поэтому отменять нечего.
func (s *Service) Cancel(ctx context.Context, user *models.User) (*Result, error) {
	const op = "subscription.Cancel"

	now := s.now()
	if identity.IsVIPActive(user, now) {
		return nil, apperr.ErrVIPNoSubscription
	}

	sub, err := s.repo.GetOpenSubscription(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upd := models.SubscriptionUpdate{
		Status:      models.StatusCancelled,
		CancelledAt: &now,
	}
	if err := s.repo.UpdateSubscription(ctx, sub.ID, upd); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.metrics != nil {
		s.metrics.SubscriptionTransition(sub.Status, models.StatusCancelled)
	}
	s.log.Info("subscription cancelled", slog.String("subscription_id", sub.ID))
	return &Result{Success: true, Message: msgCancelled}, nil
}
