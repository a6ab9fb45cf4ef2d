// Package cancel реализует HTTP-обработчик отмены подписки.
package cancel

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
	"github.com/magabrotheeeer/safezone/internal/services/subscription"
)

// Service описывает отмену подписки.
type Service interface {
	Cancel(ctx context.Context, user *models.User) (*subscription.Result, error)
}

// Handler обрабатывает отмену подписки.
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
// @Summary Отмена подписки
// @Tags Subscription
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=subscription.Result}
// @Failure 403 {object} response.ErrorResponse "У VIP нет подписки"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Router /cancel-subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"

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

	res, err := h.service.Cancel(r.Context(), user)
	if err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("subscription cancelled", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
