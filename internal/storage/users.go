package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

const userColumns = `id, name, password_hash, is_admin`

// CreateUser сохраняет нового пользователя и возвращает его с присвоенным ID.
// Занятое имя даёт models.ErrConflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.CreateUser"

	query := `INSERT INTO users (name, password_hash, is_admin)
			  VALUES ($1, $2, $3)
			  RETURNING ` + userColumns
	created, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query,
		user.Name, user.PasswordHash, user.IsAdmin))
	if err != nil {
		return nil, wrap(op, err)
	}
	return created, nil
}

// CreateUserIfAbsent создаёт пользователя, только если имя ещё свободно.
// Возвращает false, если пользователь с таким именем уже есть.
func (s *Storage) CreateUserIfAbsent(ctx context.Context, user models.User) (bool, error) {
	const op = "storage.CreateUserIfAbsent"

	query := `INSERT INTO users (name, password_hash, is_admin)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (name) DO NOTHING`
	res, err := s.conn(ctx).ExecContext(ctx, query, user.Name, user.PasswordHash, user.IsAdmin)
	if err != nil {
		return false, wrap(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrap(op, err)
	}
	return n == 1, nil
}

// GetUserByName возвращает пользователя по имени.
func (s *Storage) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	const op = "storage.GetUserByName"

	query := `SELECT ` + userColumns + ` FROM users WHERE name = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// UpdateUser сохраняет имя и хэш пароля пользователя.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.UpdateUser"

	query := `UPDATE users
			  SET name = $1, password_hash = $2
			  WHERE id = $3
			  RETURNING ` + userColumns
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, user.Name, user.PasswordHash, user.ID))
	if err != nil {
		return nil, wrap(op, err)
	}
	return u, nil
}

// DeleteUser удаляет пользователя. Задачи пользователя удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.IsAdmin); err != nil {
		return nil, err
	}
	return &u, nil
}
