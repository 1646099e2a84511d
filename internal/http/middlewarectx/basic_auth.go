// Package middlewarectx содержит HTTP middleware сервиса задач.
//
// BasicAuth проверяет учётные данные из заголовка Authorization при каждом
// запросе и помещает аутентифицированного пользователя в контекст.
// Обработчики получают его через PrincipalFromContext и выполняют
// операции только от его имени.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/task-tracker/internal/http/response"
	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/task-tracker/internal/models"
)

type principalKey struct{}

// Authenticator проверяет пару имя/пароль.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.Principal, error)
}

// LoginGuard ограничивает число неудачных попыток входа с одного адреса.
type LoginGuard interface {
	Blocked(ctx context.Context, ip, name string) (bool, error)
	Fail(ctx context.Context, ip, name string) error
	Reset(ctx context.Context, ip, name string) error
}

// WithPrincipal возвращает контекст с аутентифицированным пользователем.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext извлекает пользователя, установленного BasicAuth.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*models.Principal)
	return p, ok && p != nil
}

// BasicAuth возвращает middleware, которое аутентифицирует каждый запрос.
//
// Нет заголовка или неверные учётные данные дают 401 с WWW-Authenticate.
// Если guard не nil и имя заблокировано для адреса клиента после серии
// ошибок, ответ 429 без обращения к хранилищу. Ошибки guard только логируются.
func BasicAuth(auth Authenticator, guard LoginGuard, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.BasicAuth"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			username, password, ok := r.BasicAuth()
			if !ok || username == "" {
				log.Info("missing basic credentials")
				response.Challenge(w)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication required"))
				return
			}

			ip := clientIP(r)
			if guard != nil {
				blocked, err := guard.Blocked(r.Context(), ip, username)
				if err != nil {
					log.Warn("login guard unavailable", sl.Err(err))
				}
				if blocked {
					log.Warn("login temporarily blocked", slog.String("username", username), slog.String("ip", ip))
					render.Status(r, http.StatusTooManyRequests)
					render.JSON(w, r, response.Error("too many failed login attempts"))
					return
				}
			}

			principal, err := auth.Authenticate(r.Context(), username, password)
			if err != nil {
				if errors.Is(err, models.ErrUnauthorized) && guard != nil {
					if ferr := guard.Fail(r.Context(), ip, username); ferr != nil {
						log.Warn("failed to record login failure", sl.Err(ferr))
					}
				}
				log.Info("authentication failed", sl.Err(err))
				response.WriteError(w, r, err)
				return
			}

			if guard != nil {
				if err := guard.Reset(r.Context(), ip, username); err != nil {
					log.Warn("failed to reset login failures", sl.Err(err))
				}
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// clientIP возвращает адрес соединения без порта. Заголовки прокси не
// учитываются: иначе клиент подставлял бы новый адрес на каждую попытку.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
