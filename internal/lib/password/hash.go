// Package password реализует хранилище секретов пользователей:
// одностороннее хеширование bcrypt с солью и проверку пароля по хэшу.
//
// Hash создает bcrypt-хеш пароля для безопасного хранения.
// Verify сравнивает пароль с хэшем за время, не зависящее от совпадения.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength — ограничение bcrypt на длину пароля в байтах.
const MaxLength = 72

// Hasher хранит параметр стоимости bcrypt.
type Hasher struct {
	cost int
}

// New создает Hasher с указанной стоимостью. Значение вне допустимого
// диапазона bcrypt заменяется на bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Каждый вызов использует новую соль, поэтому два хэша одного пароля различаются.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сообщает, был ли digest получен из password.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
