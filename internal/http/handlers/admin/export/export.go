// Package export отдает список пользователей файлом XLSX.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/safezone/internal/http/middlewarectx"
	"github.com/magabrotheeeer/safezone/internal/http/response"
	"github.com/magabrotheeeer/safezone/internal/lib/sl"
	"github.com/magabrotheeeer/safezone/internal/models"
)

// ContentType — MIME-тип книги XLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service описывает выгрузку пользователей.
type Service interface {
	ExportUsers(ctx context.Context, actor *models.User) ([]byte, error)
}

// Handler обрабатывает выгрузку.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// New создает Handler. now задает дату в имени файла.
func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	return &Handler{log: log, service: service, now: now}
}

// ServeHTTP godoc
// @Summary Выгрузка пользователей
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Failure 403 {object} response.ErrorResponse "Только для администраторов"
// @Router /admin/users/export [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, _ := middlewarectx.UserFromContext(r.Context())
	data, err := h.service.ExportUsers(r.Context(), actor)
	if err != nil {
		log.Error("failed to export users", sl.Err(err))
		response.FromError(w, r, err)
		return
	}

	filename := fmt.Sprintf("safezone-users-%s.xlsx", h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Error("failed to write export", sl.Err(err))
	}
}
