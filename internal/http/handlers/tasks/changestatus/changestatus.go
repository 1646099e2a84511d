// Package changestatus реализует HTTP-обработчик смены статуса задачи.
//
// Параметры запроса: id — ID задачи, new_status — целый код статуса
// (0 TO_DO, 1 IN_WORK, 2 COMPLETE). Коды вне этого множества отклоняются.
package changestatus

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Handler обрабатывает PATCH /tasks/change_status.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс смены статуса.
type Service interface {
	ChangeStatus(ctx context.Context, principal *models.Principal, id int64, code int) (*models.Task, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сменить статус задачи
// @Tags Tasks
// @Produce  json
// @Security BasicAuth
// @Param id query int true "ID задачи"
// @Param new_status query int true "Код статуса: 0, 1 или 2"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный код статуса"
// @Failure 404 {object} response.ErrorResponse
// @Router /tasks/change_status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.changestatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, ok := middlewarectx.PrincipalFromContext(r.Context())
	if !ok {
		log.Error("principal not found in context")
		response.WriteError(w, r, models.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	id, err := strconv.ParseInt(q.Get("id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from query"))
		return
	}
	code, err := strconv.Atoi(q.Get("new_status"))
	if err != nil {
		log.Error("failed to decode new_status from query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode new_status from query"))
		return
	}

	task, err := h.service.ChangeStatus(r.Context(), principal, id, code)
	if err != nil {
		log.Error("failed to change task status", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("task status changed", slog.Int64("task_id", task.ID), slog.String("status", task.Status.String()))
	render.JSON(w, r, response.OKWithData(task))
}
