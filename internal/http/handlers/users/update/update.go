// Package update реализует HTTP-обработчик изменения собственного профиля.
//
// Handler принимает JSON с необязательными полями name и password и применяет
// только непустые из них к учётной записи вызывающего пользователя.
package update

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

// Request — изменяемые поля профиля.
type Request struct {
	Name     string `json:"name" validate:"max=256"`
	Password string `json:"password" validate:"max=72"`
}

// Service описывает интерфейс изменения профиля.
type Service interface {
	UpdateSelf(ctx context.Context, principal *models.Principal, patch models.UserPatch) (*models.User, error)
}

// Handler обрабатывает PATCH /users/update.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис каталога пользователей
	validate *validator.Validate // Валидатор структуры входящих данных
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
// @Summary Изменить свой профиль
// @Description Пустые поля не меняются. Новый пароль хешируется.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BasicAuth
// @Param request body Request true "Новые имя и/или пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Имя занято или некорректный запрос"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /users/update [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.update"

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

	user, err := h.service.UpdateSelf(r.Context(), principal, models.UserPatch{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		log.Error("failed to update user", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user updated", slog.Int64("user_id", user.ID))
	render.JSON(w, r, response.OKWithData(user))
}
