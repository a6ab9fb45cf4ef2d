// Package register реализует HTTP-обработчик регистрации жителя.
//
// Обработчик декодирует и валидирует анкету, делегирует создание
// пользователя сервису идентификации и возвращает пользователя вместе
// с токеном доступа.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
	"github.com/magabrotheeeer/safezone/internal/services/identity"
)

// Request — анкета нового жителя.
type Request struct {
	Name          string   `json:"name" validate:"required,max=100"`
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=6"`
	State         string   `json:"state" validate:"required"`
	City          string   `json:"city" validate:"required"`
	Neighborhood  string   `json:"neighborhood" validate:"required"`
	Street        string   `json:"street" validate:"required"`
	Number        string   `json:"number" validate:"required"`
	ResidentNames []string `json:"resident_names"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, req identity.RegisterRequest) (*identity.AuthResult, error)
}

// Handler обрабатывает HTTP-запросы регистрации.
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
// @Summary Регистрация жителя
// @Description Создает учетную запись с адресом проживания и возвращает токен доступа.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Анкета жителя"
// @Success 200 {object} response.Response{data=identity.AuthResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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

	res, err := h.service.Register(r.Context(), identity.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address: models.Address{
			State:        req.State,
			City:         req.City,
			Neighborhood: req.Neighborhood,
			Street:       req.Street,
			Number:       req.Number,
		},
		ResidentNames: req.ResidentNames,
	})
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("user registered", slog.String("user_id", res.User.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
