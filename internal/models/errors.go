package models

import "errors"

// Виды доменных ошибок. Граница (HTTP, gRPC) отображает их на коды ответа через errors.Is.
var (
	// ErrConflict: нарушение уникальности (например, имя пользователя занято).
	ErrConflict = errors.New("conflict")
	// ErrNotFound: ресурс отсутствует или не принадлежит вызывающему.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized: учётные данные отсутствуют или неверны.
	ErrUnauthorized = errors.New("incorrect username or password")
	// ErrInvalidInput: некорректные входные данные.
	ErrInvalidInput = errors.New("invalid input")
)
