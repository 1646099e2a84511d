// Package update реализует HTTP-обработчик частичного изменения задачи.
//
// ID задачи передаётся в параметре запроса id. Применяются только непустые
// поля тела; некорректный код статуса отклоняется без изменения задачи.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Request — изменяемые поля задачи.
type Request struct {
	Title   string `json:"title" validate:"max=256"`
	Content string `json:"content"`
	Status  *int   `json:"status"`
}

// Handler обрабатывает PATCH /tasks/update?id=.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис журнала задач
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс изменения задачи.
type Service interface {
	Update(ctx context.Context, principal *models.Principal, id int64, patch models.TaskPatch) (*models.Task, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить задачу
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Security BasicAuth
// @Param id query int true "ID задачи"
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /tasks/update [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.update"

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

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from query"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("failed to decode request"))
		return
	}

	task, err := h.service.Update(r.Context(), principal, id, models.TaskPatch{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		log.Error("failed to update task", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("task updated", slog.Int64("task_id", task.ID))
	render.JSON(w, r, response.OKWithData(task))
}
