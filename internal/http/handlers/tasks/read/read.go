// Package read реализует HTTP-обработчик получения задачи по ID.
//
// Задача другого пользователя неотличима от отсутствующей: в обоих случаях 404.
package read

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Handler обрабатывает запросы на получение задачи.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис журнала задач
}

// Service описывает интерфейс чтения задачи.
type Service interface {
	Get(ctx context.Context, principal *models.Principal, id int64) (*models.Task, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить задачу
// @Tags Tasks
// @Produce  json
// @Security BasicAuth
// @Param id path int true "ID задачи"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /tasks/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.read"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	task, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		log.Error("failed to read task", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Debug("task read", slog.Int64("task_id", task.ID))
	render.JSON(w, r, response.OKWithData(task))
}
