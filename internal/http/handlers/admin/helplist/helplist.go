// Package helplist отдает обращения в поддержку администратору.
package helplist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
)

// Service описывает получение обращений.
type Service interface {
	List(ctx context.Context) ([]*models.HelpMessage, error)
}

// Handler обрабатывает запрос списка обращений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Обращения в поддержку
// @Description Сначала новые. Маршрут закрыт middleware AdminOnly.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.HelpMessage}
// @Failure 403 {object} response.ErrorResponse "Только для администраторов"
// @Router /admin/help-messages [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.helplist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	messages, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list help messages", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	if messages == nil {
		messages = []*models.HelpMessage{}
	}

	render.JSON(w, r, response.StatusOKWithData(messages))
}
