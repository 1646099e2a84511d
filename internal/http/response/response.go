// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: успешных ответов, ошибок
// и сообщений валидации в едином формате.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/task-tracker/internal/models"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (при неуспехе).
// Поле Data — данные ответа (при успехе).
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"not found"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Realm указывается в заголовке WWW-Authenticate.
const Realm = "task-tracker"

// OKWithData возвращает успешный Response с переданными данными.
func OKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ответ с ошибкой и переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение превращается в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is too long", err.Field()))
		case "min", "gte", "lte", "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is out of range", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// Classify сопоставляет доменную ошибку HTTP-статусу и сообщению для клиента.
// Неизвестные ошибки дают 500 без подробностей.
func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, models.ErrConflict):
		return http.StatusBadRequest, "already exists"
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, invalidInputMessage(err)
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, models.ErrUnauthorized.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// WriteError отправляет ответ с ошибкой по результату Classify.
func WriteError(w http.ResponseWriter, r *http.Request, err error) int {
	status, msg := Classify(err)
	if status == http.StatusUnauthorized {
		Challenge(w)
	}
	render.Status(r, status)
	render.JSON(w, r, Error(msg))
	return status
}

// Challenge выставляет заголовок WWW-Authenticate для схемы Basic.
func Challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`", charset="UTF-8"`)
}

// invalidInputMessage возвращает самое внутреннее пояснение перед ErrInvalidInput,
// например "status code 99 is out of range".
func invalidInputMessage(err error) string {
	msg := err.Error()
	suffix := ": " + models.ErrInvalidInput.Error()
	if i := strings.LastIndex(msg, suffix); i >= 0 {
		msg = msg[:i]
		if j := strings.LastIndex(msg, ": "); j >= 0 {
			msg = msg[j+2:]
		}
		return msg
	}
	return models.ErrInvalidInput.Error()
}
