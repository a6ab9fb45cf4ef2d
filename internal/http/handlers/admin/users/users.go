package users

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

type Service interface {
	ListUsers(ctx context.Context, actor *models.User) ([]*models.UserSummary, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Сначала новые.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.UserSummary}
// @Failure 403 {object} response.ErrorResponse "Только для администраторов"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, _ := middlewarectx.UserFromContext(r.Context())
	users, err := h.service.ListUsers(r.Context(), actor)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.FromError(w, r, err)
		return
	}
	if users == nil {
		users = []*models.UserSummary{}
	}

	render.JSON(w, r, response.StatusOKWithData(users))
}
