// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	PasswordCost            int    `yaml:"password_cost" env:"PASSWORD_COST" env-default:"10"`

	HTTPServer HTTPServer      `yaml:"http_server"`
	GRPCAuth   GRPCAuth        `yaml:"grpc_auth"`
	Admin      Admin           `yaml:"admin"`
	Redis      RedisConnection `yaml:"redis_connection"`
	LoginGuard LoginGuard      `yaml:"login_guard"`
	RabbitMQ   RabbitMQ        `yaml:"rabbitmq"`
	RateLimit  RateLimit       `yaml:"rate_limit"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	Address        string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	Timeout        time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// GRPCAuth структура для настройки gRPC-сервиса проверки учётных данных.
// Remote включает проверку учётных данных HTTP-сервером через этот сервис.
type GRPCAuth struct {
	Address string `yaml:"address" env:"GRPC_AUTH_ADDRESS" env-default:":50051"`
	Remote  bool   `yaml:"remote" env:"GRPC_AUTH_REMOTE"`
}

// Admin учётная запись администратора, создаваемая при старте.
type Admin struct {
	Name     string `yaml:"name" env-default:"admin"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD" env-default:"admin"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает защиту от перебора паролей.
type RedisConnection struct {
	Address     string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	User        string        `yaml:"user"`
	DB          int           `yaml:"db"`
	MaxRetries  int           `yaml:"max_retries" env-default:"3"`
	DialTimeout time.Duration `yaml:"dial_timeout" env-default:"5s"`
	Timeout     time.Duration `yaml:"timeout" env-default:"3s"`
}

// LoginGuard настройки блокировки после серии неудачных входов.
type LoginGuard struct {
	MaxFailures int           `yaml:"max_failures" env-default:"5"`
	Window      time.Duration `yaml:"window" env-default:"15m"`
}

// RabbitMQ настройки публикации событий задач. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Exchange   string        `yaml:"exchange" env-default:"tasks"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// RateLimit ограничение частоты запросов к открытым конечным точкам.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
}

// Load читает конфиг из файла по пути path с учётом переменных окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if path == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"  RequestTimeout: %s\n"+
			"GRPCAuth:\n"+
			"  Address: %s\n"+
			"  Remote: %t\n"+
			"Admin:\n"+
			"  Name: %s\n"+
			"  Password: %s\n"+
			"Redis:\n"+
			"  Address: %s\n"+
			"  Password: %s\n"+
			"LoginGuard:\n"+
			"  MaxFailures: %d\n"+
			"  Window: %s\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"  Exchange: %s\n"+
			"RateLimit:\n"+
			"  RPS: %g\n"+
			"  Burst: %d\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.MigrationsPath,
		c.HTTPServer.Address,
		c.HTTPServer.Timeout,
		c.HTTPServer.IdleTimeout,
		c.HTTPServer.RequestTimeout,
		c.GRPCAuth.Address,
		c.GRPCAuth.Remote,
		c.Admin.Name,
		mask(c.Admin.Password),
		c.Redis.Address,
		mask(c.Redis.Password),
		c.LoginGuard.MaxFailures,
		c.LoginGuard.Window,
		mask(c.RabbitMQ.URL),
		c.RabbitMQ.Exchange,
		c.RateLimit.RPS,
		c.RateLimit.Burst,
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "******"
}
