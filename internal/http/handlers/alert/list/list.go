// Package list отдает активные тревоги на улице пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/safezone/internal/http/middlewarectx"
	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
)

// Service описывает получение тревог.
type Service interface {
	List(ctx context.Context, user *models.User) ([]models.AlertView, error)
}

// Handler обрабатывает запрос списка тревог.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Тревоги на улице
// @Description Последние активные тревоги на улице пользователя, не более десяти.
// @Tags Alerts
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.AlertView}
// @Failure 402 {object} response.ErrorResponse "Подписка заблокирована"
// @Router /alerts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.alert.list"

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

	alerts, err := h.service.List(r.Context(), user)
	if err != nil {
		log.Error("failed to list alerts", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	if alerts == nil {
		alerts = []models.AlertView{}
	}

	render.JSON(w, r, response.StatusOKWithData(alerts))
}
