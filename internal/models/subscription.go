package models

import "time"

// SubscriptionStatus — сохранённое или вычисленное состояние подписки.
type SubscriptionStatus string

const (
	StatusTrial     SubscriptionStatus = "trial"
	StatusActive    SubscriptionStatus = "active"
	StatusOverdue   SubscriptionStatus = "overdue"
	StatusBlocked   SubscriptionStatus = "blocked"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"

	// Синтетические статусы, которые никогда не сохраняются.
	StatusVIP     SubscriptionStatus = "vip"
	StatusNone    SubscriptionStatus = "none"
	StatusUnknown SubscriptionStatus = "unknown"
)

// Terminal сообщает, завершена ли подписка. Пользователь может иметь
// не более одной незавершённой подписки.
func (s SubscriptionStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusExpired
}

// Способы оплаты.
const (
	PaymentCreditCard = "credit-card"
	PaymentPix        = "pix"
	PaymentBoleto     = "boleto"
)

// Subscription — подписка пользователя на приложение.
type Subscription struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id"`
	PaymentMethod   string             `json:"payment_method"`
	Status          SubscriptionStatus `json:"status"`
	StartDate       time.Time          `json:"start_date"`
	TrialEndDate    time.Time          `json:"trial_end_date"`
	NextPayment     time.Time          `json:"next_payment"`
	PaymentDueDate  *time.Time         `json:"payment_due_date,omitempty"`
	GracePeriodEnd  *time.Time         `json:"grace_period_end,omitempty"`
	IsTrial         bool               `json:"is_trial"`
	Amount          float64            `json:"amount"`
	BillingCycle    string             `json:"billing_cycle"`
	LastPaymentDate *time.Time         `json:"last_payment_date,omitempty"`
	BlockedAt       *time.Time         `json:"blocked_at,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}

// SubscriptionUpdate — частичное изменение подписки, применяемое одной
// атомарной записью по ID. Поля-указатели равные nil не изменяются.
type SubscriptionUpdate struct {
	// From, если задан, делает запись условной: изменение применяется,
	// только пока хранимый статус равен From.
	From            SubscriptionStatus
	Status          SubscriptionStatus
	PaymentDueDate  *time.Time
	BlockedAt       *time.Time
	ClearBlockedAt  bool
	NextPayment     *time.Time
	LastPaymentDate *time.Time
	IsTrial         *bool
	CancelledAt     *time.Time
}

// Matches сообщает, применимо ли условное изменение к подписке.
func (u SubscriptionUpdate) Matches(sub *Subscription) bool {
	return u.From == "" || sub.Status == u.From
}

// Apply применяет изменение к копии подписки в памяти.
func (u SubscriptionUpdate) Apply(sub *Subscription) {
	if u.Status != "" {
		sub.Status = u.Status
	}
	if u.PaymentDueDate != nil {
		sub.PaymentDueDate = u.PaymentDueDate
	}
	if u.ClearBlockedAt {
		sub.BlockedAt = nil
	} else if u.BlockedAt != nil {
		sub.BlockedAt = u.BlockedAt
	}
	if u.NextPayment != nil {
		sub.NextPayment = *u.NextPayment
	}
	if u.LastPaymentDate != nil {
		sub.LastPaymentDate = u.LastPaymentDate
	}
	if u.IsTrial != nil {
		sub.IsTrial = *u.IsTrial
	}
	if u.CancelledAt != nil {
		sub.CancelledAt = u.CancelledAt
	}
}

// StatusView — ответ на запрос статуса подписки.
type StatusView struct {
	HasSubscription bool               `json:"has_subscription"`
	SubscriptionID  string             `json:"subscription_id,omitempty"`
	Status          SubscriptionStatus `json:"status"`
	DaysRemaining   *int               `json:"days_remaining"`
	IsBlocked       bool               `json:"is_blocked"`
	TrialEndDate    string             `json:"trial_end_date,omitempty"`
	PaymentDueDate  string             `json:"payment_due_date,omitempty"`
	GracePeriodEnd  string             `json:"grace_period_end,omitempty"`
	Message         string             `json:"message"`
	NeedsPayment    bool               `json:"needs_payment"`
}

// PaymentResponse — заглушка ответа платёжного шлюза при оформлении подписки.
type PaymentResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	SubscriptionID string `json:"subscription_id"`
	PaymentURL     string `json:"payment_url,omitempty"`
	PixCode        string `json:"pix_code,omitempty"`
	BoletoURL      string `json:"boleto_url,omitempty"`
}
