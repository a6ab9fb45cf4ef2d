// Package confirm реализует HTTP-обработчик подтверждения оплаты.
package confirm

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/safezone/internal/http/middlewarectx"
	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/services/subscription"
)

// Request — подтверждение оплаты. PaymentMethod и TransactionID только
// попадают в лог.
type Request struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	PaymentMethod  string `json:"payment_method"`
	TransactionID  string `json:"transaction_id,omitempty"`
}

// Service описывает подтверждение оплаты.
type Service interface {
	ConfirmPayment(ctx context.Context, user *models.User, subscriptionID string) (*subscription.Result, error)
}

// Handler обрабатывает подтверждение оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подтверждение оплаты
// @Description Переводит подписку в статус active и сдвигает дату следующего платежа на один расчетный период.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор подписки"
// @Success 200 {object} response.Response{data=subscription.Result}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 409 {object} response.ErrorResponse "Есть другая открытая подписка"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /confirm-payment [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.confirm"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Token de acesso ausente"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.ConfirmPayment(r.Context(), user, req.SubscriptionID)
	if err != nil {
		log.Error("failed to confirm payment", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("payment confirmed",
		slog.String("subscription_id", req.SubscriptionID),
		slog.String("payment_method", req.PaymentMethod),
		slog.String("transaction_id", req.TransactionID),
	)
	render.JSON(w, r, response.StatusOKWithData(res))
}
