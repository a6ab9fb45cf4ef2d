package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/safezone/internal/models"
)

const subscriptionColumns = `id, user_id, payment_method, status, start_date, trial_end_date,
	next_payment, payment_due_date, grace_period_end, is_trial, amount, billing_cycle,
	last_payment_date, blocked_at, cancelled_at, created_at`

// CreateSubscription сохраняет подписку. Второй незавершённой подписке
// пользователя мешает частичный уникальный индекс.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `INSERT INTO subscriptions (` + subscriptionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.UserID, sub.PaymentMethod, string(sub.Status), sub.StartDate, sub.TrialEndDate,
		sub.NextPayment, sub.PaymentDueDate, sub.GracePeriodEnd, sub.IsTrial, sub.Amount, sub.BillingCycle,
		sub.LastPaymentDate, sub.BlockedAt, sub.CancelledAt, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetOpenSubscription возвращает незавершённую подписку пользователя.
func (s *Storage) GetOpenSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	const op = "storage.GetOpenSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1 AND status NOT IN ('cancelled', 'expired')
			  LIMIT 1`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// GetSubscription возвращает подписку по ID, если она принадлежит userID.
func (s *Storage) GetSubscription(ctx context.Context, id, userID string) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND user_id = $2`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return sub, nil
}

// UpdateSubscription применяет изменение одной командой UPDATE. Если задан
// upd.From и хранимый статус уже другой, запись не меняется и ошибки нет.
func (s *Storage) UpdateSubscription(ctx context.Context, id string, upd models.SubscriptionUpdate) error {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	args := []any{id}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Status != "" {
		set("status", string(upd.Status))
	}
	if upd.PaymentDueDate != nil {
		set("payment_due_date", *upd.PaymentDueDate)
	}
	if upd.ClearBlockedAt {
		sets = append(sets, "blocked_at = NULL")
	} else if upd.BlockedAt != nil {
		set("blocked_at", *upd.BlockedAt)
	}
	if upd.NextPayment != nil {
		set("next_payment", *upd.NextPayment)
	}
	if upd.LastPaymentDate != nil {
		set("last_payment_date", *upd.LastPaymentDate)
	}
	if upd.IsTrial != nil {
		set("is_trial", *upd.IsTrial)
	}
	if upd.CancelledAt != nil {
		set("cancelled_at", *upd.CancelledAt)
	}
	if len(sets) == 0 {
		return nil
	}

	where := "id = $1"
	if upd.From != "" {
		args = append(args, string(upd.From))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	query := `UPDATE subscriptions SET ` + strings.Join(sets, ", ") + ` WHERE ` + where
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	if err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, mapError(sql.ErrNoRows))
	}
	return nil
}

func scanSubscription(row *sql.Row) (*models.Subscription, error) {
	sub := &models.Subscription{}
	var (
		status                            string
		paymentDue, graceEnd, lastPayment sql.NullTime
		blockedAt, cancelledAt            sql.NullTime
	)
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PaymentMethod, &status, &sub.StartDate, &sub.TrialEndDate,
		&sub.NextPayment, &paymentDue, &graceEnd, &sub.IsTrial, &sub.Amount, &sub.BillingCycle,
		&lastPayment, &blockedAt, &cancelledAt, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.Status = models.SubscriptionStatus(status)
	sub.StartDate = sub.StartDate.UTC()
	sub.TrialEndDate = sub.TrialEndDate.UTC()
	sub.NextPayment = sub.NextPayment.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()
	sub.PaymentDueDate = timePtr(paymentDue)
	sub.GracePeriodEnd = timePtr(graceEnd)
	sub.LastPaymentDate = timePtr(lastPayment)
	sub.BlockedAt = timePtr(blockedAt)
	sub.CancelledAt = timePtr(cancelledAt)
	return sub, nil
}
