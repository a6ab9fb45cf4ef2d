// Package stop реализует HTTP-обработчик остановки тревоги.
package stop

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/safezone/internal/http/middlewarectx"
	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/services/alert"
)

// Service описывает остановку тревоги.
type Service interface {
	Stop(ctx context.Context, user *models.User, alertID string) (*alert.StopResult, error)
}

// Handler обрабатывает остановку тревоги.
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
// @Summary Остановка тревоги
// @Description Остановить тревогу может только ее автор.
// @Tags Alerts
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID тревоги"
// @Success 200 {object} response.Response{data=alert.StopResult}
// @Failure 404 {object} response.ErrorResponse "Тревога не найдена"
// @Router /alerts/{id}/stop [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.alert.stop"

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

	alertID := chi.URLParam(r, "id")
	res, err := h.service.Stop(r.Context(), user, alertID)
	if err != nil {
		log.Error("failed to stop alert", slog.String("alert_id", alertID), sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("alert stopped", slog.String("alert_id", alertID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
