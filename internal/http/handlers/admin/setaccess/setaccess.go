// Package setaccess реализует выдачу прав администратора и VIP.
//
// Пользователь ищется по email. Выданный VIP всегда бессрочный, поле
// vip_permanent принимается, но ни на что не влияет.
package setaccess

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
	"github.com/magabrotheeeer/safezone/internal/services/admin"
)

// Request — новые права пользователя.
type Request struct {
	Email        string `json:"email" validate:"required,email"`
	IsAdmin      bool   `json:"is_admin"`
	IsVIP        bool   `json:"is_vip"`
	VIPPermanent *bool  `json:"vip_permanent,omitempty"`
}

// Service описывает изменение прав.
type Service interface {
	SetAccess(ctx context.Context, actor *models.User, req admin.SetAccessRequest) (*admin.Result, error)
}

// Handler обрабатывает изменение прав.
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
// @Summary Права администратора и VIP
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Email и флаги"
// @Success 200 {object} response.Response{data=admin.Result}
// @Failure 403 {object} response.ErrorResponse "Только для администраторов"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /admin/set-admin [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.setaccess"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	permanent := true
	if req.VIPPermanent != nil {
		permanent = *req.VIPPermanent
	}

	actor, _ := middlewarectx.UserFromContext(r.Context())
	res, err := h.service.SetAccess(r.Context(), actor, admin.SetAccessRequest{
		Email:        req.Email,
		IsAdmin:      req.IsAdmin,
		IsVIP:        req.IsVIP,
		VIPPermanent: permanent,
	})
	if err != nil {
		log.Error("failed to set access", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("access updated",
		slog.String("email", req.Email),
		slog.Bool("is_admin", req.IsAdmin),
		slog.Bool("is_vip", req.IsVIP),
	)
	render.JSON(w, r, response.StatusOKWithData(res))
}
