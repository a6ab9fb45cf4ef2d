// Package apperr описывает типизированные ошибки бизнес-логики.
//
// Каждая ошибка несёт вид (Kind), по которому HTTP-слой выбирает код ответа,
// и стабильный код (Code), по которому подбирается локализованный текст.
// Бизнес-логика сравнивает ошибки только через errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindPaymentRequired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindPaymentRequired:
		return "payment_required"
	default:
		return "internal"
	}
}

// Code — стабильный машинный код ошибки.
type Code string

const (
	CodeInternal              Code = "internal"
	CodeInvalidRequest        Code = "invalid_request"
	CodeDuplicateEmail        Code = "duplicate_email"
	CodeDuplicateSubscription Code = "duplicate_subscription"
	CodeInvalidCredentials    Code = "invalid_credentials"
	CodeInvalidToken          Code = "invalid_token"
	CodeUserNotFound          Code = "user_not_found"
	CodeAdminRequired         Code = "admin_required"
	CodeVIPNoSubscription     Code = "vip_no_subscription"
	CodeSubscriptionNotFound  Code = "subscription_not_found"
	CodeSubscriptionBlocked   Code = "subscription_blocked"
	CodeInvalidPaymentMethod  Code = "invalid_payment_method"
	CodeAlertNotFound         Code = "alert_not_found"
	CodeInvalidAlertType      Code = "invalid_alert_type"
	CodeHelpMessageNotFound   Code = "help_message_not_found"
	CodeResponseRequired      Code = "response_required"
	CodeTargetUserNotFound    Code = "target_user_not_found"
)

// Error — ошибка бизнес-логики.
type Error struct {
	Kind Kind
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает ошибки по коду, поэтому обёрнутые копии совпадают с эталоном.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New создаёт ошибку без причины.
func New(kind Kind, code Code) *Error {
	return &Error{Kind: kind, Code: code}
}

// Wrap создаёт ошибку с причиной.
func Wrap(kind Kind, code Code, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

// KindOf возвращает вид ошибки; для посторонних ошибок KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf возвращает код ошибки; для посторонних ошибок CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Эталонные ошибки.
var (
	ErrInvalidRequest        = New(KindValidation, CodeInvalidRequest)
	ErrDuplicateEmail        = New(KindConflict, CodeDuplicateEmail)
	ErrDuplicateSubscription = New(KindConflict, CodeDuplicateSubscription)
	ErrInvalidCredentials    = New(KindUnauthorized, CodeInvalidCredentials)
	ErrInvalidToken          = New(KindUnauthorized, CodeInvalidToken)
	ErrUserNotFound          = New(KindUnauthorized, CodeUserNotFound)
	ErrAdminRequired         = New(KindForbidden, CodeAdminRequired)
	ErrVIPNoSubscription     = New(KindForbidden, CodeVIPNoSubscription)
	ErrSubscriptionNotFound  = New(KindNotFound, CodeSubscriptionNotFound)
	ErrSubscriptionBlocked   = New(KindPaymentRequired, CodeSubscriptionBlocked)
	ErrInvalidPaymentMethod  = New(KindValidation, CodeInvalidPaymentMethod)
	ErrAlertNotFound         = New(KindNotFound, CodeAlertNotFound)
	ErrInvalidAlertType      = New(KindValidation, CodeInvalidAlertType)
	ErrHelpMessageNotFound   = New(KindNotFound, CodeHelpMessageNotFound)
	ErrResponseRequired      = New(KindValidation, CodeResponseRequired)
	ErrTargetUserNotFound    = New(KindNotFound, CodeTargetUserNotFound)
)
