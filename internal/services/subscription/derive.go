package subscription

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/safezone/internal/models"
)

// Derive вычисляет состояние подписки в момент now.
//
// Хранимый статус может отставать от времени: переходы trial → overdue →
// blocked и active → overdue → blocked обнаруживаются при чтении. Если
// обнаружен переход, вторым значением возвращается изменение, которое
// нужно сохранить. Функция не имеет побочных эффектов.
func Derive(sub *models.Subscription, now time.Time, p Policy) (models.StatusView, *models.SubscriptionUpdate) {
	if sub == nil {
		return NoneView(), nil
	}

	switch {
	case sub.Status == models.StatusTrial,
		sub.Status == models.StatusOverdue && sub.IsTrial:
		return deriveTrial(sub, now, p)
	case sub.Status == models.StatusActive,
		sub.Status == models.StatusOverdue:
		return deriveActive(sub, now, p)
	case sub.Status == models.StatusBlocked:
		return blockedView(sub, p), nil
	default:
		return models.StatusView{
			Status:       models.StatusUnknown,
			IsBlocked:    true,
			Message:      msgUnknown,
			NeedsPayment: true,
		}, nil
	}
}

// VIPView — статус пользователя с действующим VIP.
func VIPView(isAdmin bool) models.StatusView {
	msg := msgVIP
	if isAdmin {
		msg = msgVIPOwner
	}
	return models.StatusView{
		HasSubscription: true,
		Status:          models.StatusVIP,
		Message:         msg,
	}
}

// NoneView — статус пользователя без незавершённой подписки.
func NoneView() models.StatusView {
	return models.StatusView{
		Status:       models.StatusNone,
		IsBlocked:    true,
		Message:      msgNone,
		NeedsPayment: true,
	}
}

func deriveTrial(sub *models.Subscription, now time.Time, p Policy) (models.StatusView, *models.SubscriptionUpdate) {
	trialEnd := sub.TrialEndDate
	if now.Before(trialEnd) {
		days := wholeDays(trialEnd.Sub(now))
		return models.StatusView{
			HasSubscription: true,
			SubscriptionID:  sub.ID,
			Status:          models.StatusTrial,
			DaysRemaining:   &days,
			TrialEndDate:    trialEnd.Format(DateLayout),
			Message:         fmt.Sprintf(msgTrial, days),
		}, nil
	}

	graceEnd := trialEnd.Add(p.GracePeriod)
	if sub.GracePeriodEnd != nil {
		graceEnd = *sub.GracePeriodEnd
	}
	if now.Before(graceEnd) {
		dueDate := graceEnd
		if sub.PaymentDueDate != nil {
			dueDate = *sub.PaymentDueDate
		}
		days := wholeDays(graceEnd.Sub(now))
		view := models.StatusView{
			HasSubscription: true,
			SubscriptionID:  sub.ID,
			Status:          models.StatusOverdue,
			DaysRemaining:   &days,
			PaymentDueDate:  dueDate.Format(DateLayout),
			GracePeriodEnd:  graceEnd.Format(DateLayout),
			Message:         fmt.Sprintf(msgTrialDue, days, formatAmount(p.Amount)),
			NeedsPayment:    true,
		}
		if sub.Status == models.StatusOverdue {
			return view, nil
		}
		return view, &models.SubscriptionUpdate{From: sub.Status, Status: models.StatusOverdue}
	}

	return blockedView(sub, p), blockUpdate(sub.Status, now)
}

func deriveActive(sub *models.Subscription, now time.Time, p Policy) (models.StatusView, *models.SubscriptionUpdate) {
	next := sub.NextPayment
	if now.Before(next) {
		days := wholeDays(next.Sub(now))
		return models.StatusView{
			HasSubscription: true,
			SubscriptionID:  sub.ID,
			Status:          models.StatusActive,
			DaysRemaining:   &days,
			Message:         fmt.Sprintf(msgActive, days),
		}, nil
	}

	graceEnd := next.Add(p.GracePeriod)
	if now.Before(graceEnd) {
		days := wholeDays(graceEnd.Sub(now))
		view := models.StatusView{
			HasSubscription: true,
			SubscriptionID:  sub.ID,
			Status:          models.StatusOverdue,
			DaysRemaining:   &days,
			PaymentDueDate:  graceEnd.Format(DateLayout),
			Message:         fmt.Sprintf(msgActiveDue, days, formatAmount(p.Amount)),
			NeedsPayment:    true,
		}
		if sub.Status == models.StatusOverdue && sub.PaymentDueDate != nil && sub.PaymentDueDate.Equal(graceEnd) {
			return view, nil
		}
		return view, &models.SubscriptionUpdate{From: sub.Status, Status: models.StatusOverdue, PaymentDueDate: &graceEnd}
	}

	return blockedView(sub, p), blockUpdate(sub.Status, now)
}

func blockedView(sub *models.Subscription, p Policy) models.StatusView {
	return models.StatusView{
		HasSubscription: true,
		SubscriptionID:  sub.ID,
		Status:          models.StatusBlocked,
		IsBlocked:       true,
		Message:         fmt.Sprintf(msgBlocked, formatAmount(p.Amount)),
		NeedsPayment:    true,
	}
}

// blockUpdate фиксирует момент блокировки; вызывается только на переходе
// в blocked, поэтому BlockedAt не перезаписывается при повторных чтениях.
func blockUpdate(from models.SubscriptionStatus, now time.Time) *models.SubscriptionUpdate {
	return &models.SubscriptionUpdate{From: from, Status: models.StatusBlocked, BlockedAt: &now}
}
