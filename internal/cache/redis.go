// Package cache хранит в redis счётчики неудачных попыток входа
// и блокирует пару (адрес клиента, имя пользователя) после серии ошибок.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/task-tracker/internal/config"
)

const failuresPrefix = "login_failures:"

// LoginGuard считает неудачные попытки входа по паре адрес клиента и имя.
// После MaxFailures ошибок за Window пара блокируется до истечения окна.
// Ошибки с одного адреса не блокируют вход того же пользователя с других.
type LoginGuard struct {
	Db          *redis.Client
	maxFailures int64
	window      time.Duration
}

// InitServer подключается к redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection, guard config.LoginGuard) (*LoginGuard, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginGuard{
		Db:          db,
		maxFailures: int64(guard.MaxFailures),
		window:      guard.Window,
	}, nil
}

// Blocked сообщает, исчерпан ли лимит неудачных попыток для name с адреса ip.
func (g *LoginGuard) Blocked(ctx context.Context, ip, name string) (bool, error) {
	const op = "cache.Blocked"
	n, err := g.Db.Get(ctx, failuresKey(ip, name)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n >= g.maxFailures, nil
}

// Fail увеличивает счётчик неудач. Окно отсчитывается от первой ошибки.
func (g *LoginGuard) Fail(ctx context.Context, ip, name string) error {
	const op = "cache.Fail"
	key := failuresKey(ip, name)

	n, err := g.Db.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 1 {
		if err := g.Db.Expire(ctx, key, g.window).Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// Reset сбрасывает счётчик после успешного входа.
func (g *LoginGuard) Reset(ctx context.Context, ip, name string) error {
	const op = "cache.Reset"
	if err := g.Db.Del(ctx, failuresKey(ip, name)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// failuresKey: адрес идёт первым, в нём не бывает '|', поэтому ключи разных пар не совпадают.
func failuresKey(ip, name string) string {
	return failuresPrefix + ip + "|" + name
}

// Close закрывает соединение с redis.
func (g *LoginGuard) Close() error {
	return g.Db.Close()
}
