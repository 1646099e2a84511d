// Package create реализует HTTP-обработчик создания задачи.
//
// Handler принимает JSON с названием, необязательным содержимым и кодом статуса,
// создаёт задачу от имени аутентифицированного пользователя и возвращает её.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Request — данные новой задачи. Status — код 0, 1 или 2; по умолчанию 0.
type Request struct {
	Title   string  `json:"title" validate:"required,max=256"`
	Content *string `json:"content"`
	Status  *int    `json:"status"`
}

// Handler управляет HTTP-запросами на создание задач.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания задачи.
type Service interface {
	Create(ctx context.Context, principal *models.Principal, in models.NewTask) (*models.Task, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать задачу
// @Description Создаёт задачу текущего пользователя. Статус по умолчанию TO_DO (0).
// @Tags Tasks
// @Accept  json
// @Produce  json
// @Security BasicAuth
// @Param request body Request true "Данные новой задачи"
// @Success 200 {object} response.Response "Созданная задача"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или статус"
// @Failure 401 {object} response.ErrorResponse "Пользователь не аутентифицирован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tasks/create [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tasks.create"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	task, err := h.service.Create(r.Context(), principal, models.NewTask{
		Title:   req.Title,
		Content: req.Content,
		Status:  req.Status,
	})
	if err != nil {
		log.Error("failed to create task", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("task created", slog.Int64("task_id", task.ID))
	render.JSON(w, r, response.OKWithData(task))
}
