// Package services содержит бизнес-логику каталога пользователей:
// регистрацию, профиль, удаление и создание администратора при старте.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/task-tracker/internal/lib/password"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// UserRepository определяет методы для работы с пользователями в хранилище.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	CreateUserIfAbsent(ctx context.Context, user models.User) (bool, error)
	GetUserByName(ctx context.Context, name string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListTasksByUser(ctx context.Context, userID int64) ([]models.Task, error)
}

// Transactor выполняет функцию в единице работы.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PasswordHasher хеширует пароль перед сохранением.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserService реализует каталог пользователей.
type UserService struct {
	repo   UserRepository
	tx     Transactor
	hasher PasswordHasher
	log    *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(repo UserRepository, tx Transactor, hasher PasswordHasher, log *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		tx:     tx,
		hasher: hasher,
		log:    log,
	}
}

// Register создает пользователя с хэшированным паролем и is_admin=false.
// Занятое имя даёт models.ErrConflict, существующая запись не меняется.
func (s *UserService) Register(ctx context.Context, name, plain string) (*models.User, error) {
	const op = "services.users.Register"

	name = strings.TrimSpace(name)
	if err := validateCredentials(name, plain); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var created *models.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.repo.GetUserByName(ctx, name)
		switch {
		case err == nil:
			return fmt.Errorf("user with name %s already exists: %w", name, models.ErrConflict)
		case !errors.Is(err, models.ErrNotFound):
			return err
		}

		created, err = s.repo.CreateUser(ctx, models.User{Name: name, PasswordHash: hash})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("user_id", created.ID))
	return created, nil
}

// EnsureAdminSeed создает администратора, если пользователя с таким именем нет.
// Повторные вызовы не создают дубликатов. Возвращает true, если запись создана.
func (s *UserService) EnsureAdminSeed(ctx context.Context, name, plain string) (bool, error) {
	const op = "services.users.EnsureAdminSeed"

	hash, err := s.hasher.Hash(plain)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var created bool
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = s.repo.CreateUserIfAbsent(ctx, models.User{Name: name, PasswordHash: hash, IsAdmin: true})
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if created {
		s.log.Info("admin account created", slog.String("name", name))
	} else {
		s.log.Debug("admin account already exists", slog.String("name", name))
	}
	return created, nil
}

// UpdateSelf применяет непустые поля patch к учётной записи самого вызывающего.
// Новый пароль хешируется перед сохранением.
func (s *UserService) UpdateSelf(ctx context.Context, principal *models.Principal, patch models.UserPatch) (*models.User, error) {
	const op = "services.users.UpdateSelf"

	patch.Name = strings.TrimSpace(patch.Name)
	if !models.Storable(patch.Name) {
		return nil, fmt.Errorf("%s: name contains invalid characters: %w", op, models.ErrInvalidInput)
	}
	var hash string
	if patch.Password != "" {
		if len(patch.Password) > password.MaxLength {
			return nil, fmt.Errorf("%s: password is too long: %w", op, models.ErrInvalidInput)
		}
		var err error
		if hash, err = s.hasher.Hash(patch.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	var updated *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.repo.GetUserByID(ctx, principal.ID)
		if err != nil {
			return err
		}
		if patch.Name != "" {
			user.Name = patch.Name
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		updated, err = s.repo.UpdateUser(ctx, *user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user updated", slog.Int64("user_id", updated.ID))
	return updated, nil
}

// Delete удаляет учётную запись вместе с задачами. Удалить можно только себя:
// чужой id неотличим от отсутствующего.
func (s *UserService) Delete(ctx context.Context, principal *models.Principal, id int64) error {
	const op = "services.users.Delete"

	if principal.ID != id {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.repo.DeleteUser(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deleted", slog.Int64("user_id", id))
	return nil
}

// GetByID возвращает профиль вместе со всеми задачами пользователя.
// Доступен только самому пользователю.
func (s *UserService) GetByID(ctx context.Context, principal *models.Principal, id int64) (*models.User, error) {
	const op = "services.users.GetByID"

	if principal.ID != id {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}

	var user *models.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.repo.GetUserByID(ctx, id); err != nil {
			return err
		}
		user.Tasks, err = s.repo.ListTasksByUser(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func validateCredentials(name, plain string) error {
	switch {
	case name == "":
		return fmt.Errorf("name is required: %w", models.ErrInvalidInput)
	case len(name) > 256:
		return fmt.Errorf("name is too long: %w", models.ErrInvalidInput)
	case !models.Storable(name):
		return fmt.Errorf("name contains invalid characters: %w", models.ErrInvalidInput)
	case plain == "":
		return fmt.Errorf("password is required: %w", models.ErrInvalidInput)
	case len(plain) > password.MaxLength:
		return fmt.Errorf("password is too long: %w", models.ErrInvalidInput)
	}
	return nil
}
