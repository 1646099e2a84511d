// Package services реализует журнал задач. Каждая операция выполняется
// от имени аутентифицированного пользователя и видит только его задачи.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/task-tracker/internal/events"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// TaskRepository определяет методы хранилища задач. Все методы,
// принимающие ownerID, фильтруют по владельцу.
type TaskRepository interface {
	CreateTask(ctx context.Context, task models.Task) (*models.Task, error)
	GetTask(ctx context.Context, id, ownerID int64) (*models.Task, error)
	LockTask(ctx context.Context, id, ownerID int64) (*models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) (*models.Task, error)
	DeleteTask(ctx context.Context, id, ownerID int64) error
}

// Transactor выполняет функцию в единице работы.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher публикует события об изменении задач.
type EventPublisher interface {
	Publish(ctx context.Context, event events.TaskEvent) error
}

// TaskService реализует операции над задачами.
type TaskService struct {
	repo      TaskRepository
	tx        Transactor
	publisher EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

// NewTaskService создает новый экземпляр TaskService.
// publisher может быть nil, тогда события не отправляются.
func NewTaskService(repo TaskRepository, tx Transactor, publisher EventPublisher, log *slog.Logger) *TaskService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &TaskService{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Create создает задачу, принадлежащую principal. Статус по умолчанию TO_DO.
func (s *TaskService) Create(ctx context.Context, principal *models.Principal, in models.NewTask) (*models.Task, error) {
	const op = "services.tasks.Create"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%s: title is required: %w", op, models.ErrInvalidInput)
	}
	status := models.TaskStatusToDo
	if in.Status != nil {
		var err error
		if status, err = models.ParseTaskStatus(*in.Status); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	now := s.touch(time.Time{})
	task := models.Task{
		Title:     title,
		Content:   in.Content,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    principal.ID,
	}

	var created *models.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.CreateTask(ctx, task)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.TaskCreated, created)
	return created, nil
}

// Get возвращает задачу principal. Чужая задача неотличима от отсутствующей.
func (s *TaskService) Get(ctx context.Context, principal *models.Principal, id int64) (*models.Task, error) {
	const op = "services.tasks.Get"

	var task *models.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		task, err = s.repo.GetTask(ctx, id, principal.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

// Update применяет непустые поля patch. Некорректный статус отклоняется
// до каких-либо изменений.
func (s *TaskService) Update(ctx context.Context, principal *models.Principal, id int64, patch models.TaskPatch) (*models.Task, error) {
	const op = "services.tasks.Update"

	var status *models.TaskStatus
	if patch.Status != nil {
		st, err := models.ParseTaskStatus(*patch.Status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		status = &st
	}
	title := strings.TrimSpace(patch.Title)

	var (
		updated       *models.Task
		statusChanged bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		task, err := s.repo.LockTask(ctx, id, principal.ID)
		if err != nil {
			return err
		}
		if title != "" {
			task.Title = title
		}
		if patch.Content != "" {
			content := patch.Content
			task.Content = &content
		}
		if status != nil {
			statusChanged = task.Status != *status
			task.Status = *status
		}
		task.UpdatedAt = s.touch(task.UpdatedAt)

		updated, err = s.repo.UpdateTask(ctx, *task)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.TaskUpdated, updated)
	if statusChanged {
		s.publish(ctx, events.TaskStatusChanged, updated)
	}
	return updated, nil
}

// ChangeStatus переводит задачу в статус с кодом code. Переходы между
// любыми статусами разрешены, включая переход в тот же статус.
// Чужая или отсутствующая задача проверяется раньше кода статуса.
func (s *TaskService) ChangeStatus(ctx context.Context, principal *models.Principal, id int64, code int) (*models.Task, error) {
	const op = "services.tasks.ChangeStatus"

	var updated *models.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		task, err := s.repo.LockTask(ctx, id, principal.ID)
		if err != nil {
			return err
		}
		status, err := models.ParseTaskStatus(code)
		if err != nil {
			return err
		}
		task.Status = status
		task.UpdatedAt = s.touch(task.UpdatedAt)

		updated, err = s.repo.UpdateTask(ctx, *task)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.TaskStatusChanged, updated)
	return updated, nil
}

// Delete удаляет задачу principal.
func (s *TaskService) Delete(ctx context.Context, principal *models.Principal, id int64) error {
	const op = "services.tasks.Delete"

	var deleted *models.Task
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if deleted, err = s.repo.LockTask(ctx, id, principal.ID); err != nil {
			return err
		}
		return s.repo.DeleteTask(ctx, id, principal.ID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, events.TaskDeleted, deleted)
	return nil
}

// touch возвращает момент изменения строго позже prev с точностью
// до микросекунды, с которой хранит время PostgreSQL.
func (s *TaskService) touch(prev time.Time) time.Time {
	now := s.now().UTC().Truncate(time.Microsecond)
	if !now.After(prev) {
		now = prev.Add(time.Microsecond)
	}
	return now
}

// publish вызывается после фиксации транзакции; ошибка брокера
// не отменяет уже выполненную операцию.
func (s *TaskService) publish(ctx context.Context, eventType string, task *models.Task) {
	event := events.NewTaskEvent(eventType, task, task.UpdatedAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish task event",
			slog.String("type", eventType),
			slog.Int64("task_id", task.ID),
			sl.Err(err),
		)
	}
}
