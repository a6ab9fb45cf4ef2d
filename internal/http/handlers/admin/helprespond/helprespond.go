// Package helprespond реализует ответ администратора на обращение.
package helprespond

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/services/help"
)

// Request — ответ администратора. Пустой ответ отклоняет сервис.
type Request struct {
	Response string `json:"response"`
}

// Service описывает ответ на обращение.
type Service interface {
	Respond(ctx context.Context, id, response string) (*help.Result, error)
}

// Handler обрабатывает ответ на обращение.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Ответ на обращение
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID обращения"
// @Param request body Request true "Ответ"
// @Success 200 {object} response.Response{data=help.Result}
// @Failure 400 {object} response.ErrorResponse "Пустой ответ"
// @Failure 404 {object} response.ErrorResponse "Обращение не найдено"
// @Router /admin/help-messages/{id}/respond [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.helprespond"

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

	id := chi.URLParam(r, "id")
	res, err := h.service.Respond(r.Context(), id, req.Response)
	if err != nil {
		log.Error("failed to respond help message", slog.String("help_id", id), sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	log.Info("help message resolved", slog.String("help_id", id))
	render.JSON(w, r, response.StatusOKWithData(res))
}
