// Package read реализует HTTP-обработчик получения профиля пользователя
// вместе с его задачами. Профиль доступен только его владельцу.
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

// Handler обрабатывает GET /users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс чтения профиля.
type Service interface {
	GetByID(ctx context.Context, principal *models.Principal, id int64) (*models.User, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.read"

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

	user, err := h.service.GetByID(r.Context(), principal, id)
	if err != nil {
		log.Error("failed to read user", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	if user.Tasks == nil {
		user.Tasks = []models.Task{}
	}
	render.JSON(w, r, response.OKWithData(userView{User: user, Tasks: user.Tasks}))
}

// userView всегда сериализует tasks, даже пустой список.
type userView struct {
	*models.User
	Tasks []models.Task `json:"tasks"`
}
