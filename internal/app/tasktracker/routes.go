// Package tasktracker собирает HTTP-приложение сервиса задач.
package tasktracker

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/health"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/changestatus"
	taskcreate "github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/create"
	taskread "github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/read"
	taskremove "github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/remove"
	taskupdate "github.com/magabrotheeeer/task-tracker/internal/http/handlers/tasks/update"
	"github.com/magabrotheeeer/task-tracker/internal/http/handlers/users/me"
	userread "github.com/magabrotheeeer/task-tracker/internal/http/handlers/users/read"
	userremove "github.com/magabrotheeeer/task-tracker/internal/http/handlers/users/remove"
	userupdate "github.com/magabrotheeeer/task-tracker/internal/http/handlers/users/update"
	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	taskservice "github.com/magabrotheeeer/task-tracker/internal/services/tasks"
	userservice "github.com/magabrotheeeer/task-tracker/internal/services/users"
)

// Deps содержит зависимости обработчиков.
type Deps struct {
	Auth           middlewarectx.Authenticator
	Guard          middlewarectx.LoginGuard // nil отключает блокировку
	Users          *userservice.UserService
	Tasks          *taskservice.TaskService
	Registry       *prometheus.Registry
	RequestTimeout time.Duration
	RateRPS        float64
	RateBurst      int
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	metrics := middlewarectx.NewMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)
	if d.RequestTimeout > 0 {
		r.Use(middleware.Timeout(d.RequestTimeout))
	}

	r.Get("/", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	// Открытые конечные точки с общим ограничением частоты
	limit := middlewarectx.RateLimitMiddleware(d.RateRPS, d.RateBurst, logger)
	r.With(limit).Post("/auth/register", register.New(logger, d.Users, http.StatusOK).ServeHTTP)
	r.With(limit).Post("/users/create", register.New(logger, d.Users, http.StatusCreated).ServeHTTP)

	// Группа с Basic-аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.BasicAuth(d.Auth, d.Guard, logger))

		r.Get("/users/me", me.New(logger).ServeHTTP)
		r.Get("/users/{id}", userread.New(logger, d.Users).ServeHTTP)
		r.Patch("/users/update", userupdate.New(logger, d.Users).ServeHTTP)
		r.Delete("/users/delete/{id}", userremove.New(logger, d.Users).ServeHTTP)

		r.Get("/tasks/{id}", taskread.New(logger, d.Tasks).ServeHTTP)
		r.Post("/tasks/create", taskcreate.New(logger, d.Tasks).ServeHTTP)
		r.Patch("/tasks/update", taskupdate.New(logger, d.Tasks).ServeHTTP)
		r.Delete("/tasks/delete/{id}", taskremove.New(logger, d.Tasks).ServeHTTP)
		r.Patch("/tasks/change_status", changestatus.New(logger, d.Tasks).ServeHTTP)
	})
}
