// Package create реализует HTTP-обработчик тревоги.
//
// Тревога привязывается к адресу жителя; соседи с той же улицы получают
// уведомление, сам отправитель его не видит.
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

// Request — тип тревоги: invasion, robbery или emergency.
type Request struct {
	Type string `json:"type" validate:"required"`
}

// Service описывает создание тревоги.
type Service interface {
	Create(ctx context.Context, user *models.User, alertType string) (*models.AlertResult, error)
}

// Handler обрабатывает создание тревоги.
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
// @Summary Отправка тревоги
// @Description Создает тревогу и уведомляет соседей с той же улицы.
// @Tags Alerts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Тип тревоги"
// @Success 200 {object} response.Response{data=models.AlertResult}
// @Failure 400 {object} response.ErrorResponse "Неизвестный тип тревоги"
// @Failure 402 {object} response.ErrorResponse "Подписка заблокирована"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /alerts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.alert.create"

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

	res, err := h.service.Create(r.Context(), user, req.Type)
	if err != nil {
		log.Error("failed to create alert", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("alert created",
		slog.String("alert_id", res.AlertID),
		slog.Int("recipients", res.NotificationSentTo),
	)
	render.JSON(w, r, response.StatusOKWithData(res))
}
