package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

const taskColumns = `id, title, content, status, created_at, updated_at, user_id`

// Все выборки и изменения отдельной задачи фильтруются по владельцу:
// чужая задача неотличима от отсутствующей и даёт models.ErrNotFound.

// CreateTask вставляет новую задачу и возвращает её с присвоенным ID.
func (s *Storage) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	const op = "storage.CreateTask"

	query := `INSERT INTO tasks (title, content, status, created_at, updated_at, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + taskColumns
	created, err := scanTask(s.conn(ctx).QueryRowContext(ctx, query,
		task.Title, task.Content, int(task.Status), task.CreatedAt, task.UpdatedAt, task.UserID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// GetTask возвращает задачу по ID, если она принадлежит ownerID.
func (s *Storage) GetTask(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	const op = "storage.GetTask"

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	task, err := scanTask(s.conn(ctx).QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return task, nil
}

// LockTask как GetTask, но блокирует строку до конца транзакции.
func (s *Storage) LockTask(ctx context.Context, id, ownerID int64) (*models.Task, error) {
	const op = "storage.LockTask"

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`
	task, err := scanTask(s.conn(ctx).QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return task, nil
}

// ListTasksByUser возвращает все задачи пользователя одним запросом.
func (s *Storage) ListTasksByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	const op = "storage.ListTasksByUser"

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY id`
	rows, err := s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		result = append(result, *task)
	}
	if err = rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return result, nil
}

// UpdateTask сохраняет изменяемые поля задачи. Владелец задачи не меняется.
func (s *Storage) UpdateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	const op = "storage.UpdateTask"

	query := `UPDATE tasks
			  SET title = $1, content = $2, status = $3, updated_at = $4
			  WHERE id = $5 AND user_id = $6
			  RETURNING ` + taskColumns
	updated, err := scanTask(s.conn(ctx).QueryRowContext(ctx, query,
		task.Title, task.Content, int(task.Status), task.UpdatedAt, task.ID, task.UserID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return updated, nil
}

// DeleteTask удаляет задачу, принадлежащую ownerID.
func (s *Storage) DeleteTask(ctx context.Context, id, ownerID int64) error {
	const op = "storage.DeleteTask"

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t       models.Task
		content sql.NullString
		status  int
	)
	if err := row.Scan(&t.ID, &t.Title, &content, &status, &t.CreatedAt, &t.UpdatedAt, &t.UserID); err != nil {
		return nil, err
	}
	if content.Valid {
		t.Content = &content.String
	}
	t.Status = models.TaskStatus(status)
	return &t, nil
}
