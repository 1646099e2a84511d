// Package services содержит логику проверки учётных данных пользователя.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// UserRepository описывает контракт поиска пользователя по имени.
type UserRepository interface {
	// GetUserByName возвращает пользователя по имени или models.ErrNotFound.
	GetUserByName(ctx context.Context, name string) (*models.User, error)
}

// PasswordHasher хеширует и проверяет пароль.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// AuthService сопоставляет пару имя/пароль с принципалом.
type AuthService struct {
	users  UserRepository
	hasher PasswordHasher

	dummyOnce sync.Once
	dummy     string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, hasher PasswordHasher) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
	}
}

// Authenticate проверяет пароль пользователя и возвращает принципала.
//
// Отсутствующий пользователь и неверный пароль дают одну и ту же ошибку
// models.ErrUnauthorized. Имя с невалидным UTF-8 или нулевым байтом не может
// принадлежать пользователю и отклоняется так же, без запроса к хранилищу.
// Для отсутствующего пользователя пароль всё равно сверяется с фиктивным
// хэшем, чтобы время ответа не выдавало наличие имени.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Principal, error) {
	const op = "services.auth.Authenticate"

	if !models.Storable(username) {
		s.hasher.Verify(password, s.dummyHash())
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}

	user, err := s.users.GetUserByName(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		s.hasher.Verify(password, s.dummyHash())
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, models.ErrUnauthorized)
	}
	return user.Principal(), nil
}

func (s *AuthService) dummyHash() string {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		if h, err := s.hasher.Hash(hex.EncodeToString(buf)); err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}
