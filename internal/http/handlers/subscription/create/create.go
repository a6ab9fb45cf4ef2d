// Package create реализует HTTP-обработчик оформления подписки.
//
// Обработчик принимает способ оплаты, создает подписку с пробным периодом
// и возвращает заглушку платежного шлюза: код PIX, ссылку на boleto или
// страницу оплаты картой.
package create

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
)

// Request — параметры оформления подписки. Данные карты принимаются,
// но не обрабатываются.
type Request struct {
	PaymentMethod string `json:"payment_method" validate:"required"`
	CardNumber    string `json:"card_number,omitempty"`
	CardName      string `json:"card_name,omitempty"`
	CardExpiry    string `json:"card_expiry,omitempty"`
	CardCVV       string `json:"card_cvv,omitempty"`
}

// Service описывает оформление подписки.
type Service interface {
	Create(ctx context.Context, user *models.User, paymentMethod string) (*models.PaymentResponse, error)
}

// Handler обрабатывает HTTP-запросы на создание подписки.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис жизненного цикла подписок
	validate *validator.Validate // Валидатор входных данных
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформление подписки
// @Description Создает подписку с пробным периодом. Повторное оформление при открытой подписке запрещено.
// @Tags Subscription
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Способ оплаты: credit-card, pix или boleto"
// @Success 200 {object} response.Response{data=models.PaymentResponse}
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 409 {object} response.ErrorResponse "Подписка уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /create-subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.create"

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

	res, err := h.service.Create(r.Context(), user, req.PaymentMethod)
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("subscription created",
		slog.String("subscription_id", res.SubscriptionID),
		slog.String("payment_method", req.PaymentMethod),
	)
	render.JSON(w, r, response.StatusOKWithData(res))
}
