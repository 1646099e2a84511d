package tasktracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/task-tracker/internal/cache"
	"github.com/magabrotheeeer/task-tracker/internal/config"
	"github.com/magabrotheeeer/task-tracker/internal/events"
	"github.com/magabrotheeeer/task-tracker/internal/grpc/client"
	"github.com/magabrotheeeer/task-tracker/internal/http/middlewarectx"
	"github.com/magabrotheeeer/task-tracker/internal/lib/password"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/migrations"
	authservice "github.com/magabrotheeeer/task-tracker/internal/services/auth"
	taskservice "github.com/magabrotheeeer/task-tracker/internal/services/tasks"
	userservice "github.com/magabrotheeeer/task-tracker/internal/services/users"
	"github.com/magabrotheeeer/task-tracker/internal/storage"
)

// publisher публикует события и освобождает соединение при остановке.
type publisher interface {
	taskservice.EventPublisher
	Close() error
}

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *storage.Storage
	publisher publisher
	closers   []func() error
}

// New поднимает хранилище, применяет миграции, создаёт администратора
// и собирает HTTP-сервер. Redis, RabbitMQ и удалённая проверка учётных
// данных подключаются, только если настроены.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "tasktracker.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{
		logger:    logger,
		db:        db,
		publisher: events.Noop{},
	}

	if err := app.init(ctx, cfg); err != nil {
		app.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return app, nil
}

func (a *App) init(ctx context.Context, cfg *config.Config) error {
	if err := migrations.Run(a.db.DB, cfg.MigrationsPath, a.logger); err != nil {
		return err
	}

	hasher := password.New(cfg.PasswordCost)
	users := userservice.NewUserService(a.db, a.db, hasher, a.logger)
	if _, err := users.EnsureAdminSeed(ctx, cfg.Admin.Name, cfg.Admin.Password); err != nil {
		return err
	}

	if cfg.RabbitMQ.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange,
			cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay, a.logger)
		if err != nil {
			return err
		}
		a.publisher = p
	}
	tasks := taskservice.NewTaskService(a.db, a.db, a.publisher, a.logger)

	var auth middlewarectx.Authenticator = authservice.NewAuthService(a.db, hasher)
	if cfg.GRPCAuth.Remote {
		authClient, err := client.NewAuthClient(cfg.GRPCAuth.Address)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, authClient.Close)
		auth = authClient
		a.logger.Info("credentials are verified by auth service", slog.String("address", cfg.GRPCAuth.Address))
	}

	var guard middlewarectx.LoginGuard
	if cfg.Redis.Address != "" {
		g, err := cache.InitServer(ctx, cfg.Redis, cfg.LoginGuard)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, g.Close)
		guard = g
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, a.logger, Deps{
		Auth:           auth,
		Guard:          guard,
		Users:          users,
		Tasks:          tasks,
		Registry:       registry,
		RequestTimeout: cfg.HTTPServer.RequestTimeout,
		RateRPS:        cfg.RateLimit.RPS,
		RateBurst:      cfg.RateLimit.Burst,
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return nil
}

// Handler возвращает корневой HTTP-обработчик.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер
// и освобождает ресурсы.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

// close освобождает ресурсы: сначала брокер и клиенты, хранилище последним.
func (a *App) close() {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close events publisher", sl.Err(err))
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
