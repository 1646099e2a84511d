// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Handler принимает JSON с именем и паролем, валидирует его и создаёт
// пользователя через сервис каталога. Один и тот же обработчик обслуживает
// /auth/register (200) и /users/create (201).
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Request — входные данные для регистрации.
type Request struct {
	Name     string `json:"name" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=72"`
}

// Service описывает интерфейс регистрации пользователя.
type Service interface {
	Register(ctx context.Context, name, password string) (*models.User, error)
}

// Handler обрабатывает запросы на регистрацию.
type Handler struct {
	log           *slog.Logger
	service       Service
	validate      *validator.Validate
	successStatus int
}

// New создает Handler, отвечающий successStatus при успешной регистрации.
func New(log *slog.Logger, service Service, successStatus int) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		validate:      validator.New(),
		successStatus: successStatus,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создаёт пользователя с ролью обычного пользователя. Имя должно быть уникальным.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Имя и пароль"
// @Success 200 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Имя занято или некорректный запрос"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /auth/register [post]
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
		render.Status(r, http.StatusBadRequest)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Password)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	render.Status(r, h.successStatus)
	render.JSON(w, r, response.OKWithData(user))
}
