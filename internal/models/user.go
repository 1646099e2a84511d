// Package models содержит доменные структуры сервиса задач: пользователя,
// задачу, статус задачи и принципала запроса, а также виды доменных ошибок.
package models

import (
	"strings"
	"unicode/utf8"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
	Tasks        []Task `json:"tasks,omitempty"`
}

// Principal — личность, установленная по учётным данным запроса.
// Хэш пароля сюда не попадает.
type Principal struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

// Principal возвращает минимальное представление пользователя для обработчиков.
func (u *User) Principal() *Principal {
	return &Principal{
		ID:      u.ID,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}
}

// UserPatch — частичное обновление профиля. Пустые поля не применяются.
type UserPatch struct {
	Name     string
	Password string
}

// Storable сообщает, может ли имя храниться в текстовом столбце PostgreSQL:
// валидный UTF-8 без нулевых байтов. Пользователя с другим именем не существует.
func Storable(name string) bool {
	return utf8.ValidString(name) && !strings.ContainsRune(name, 0)
}
