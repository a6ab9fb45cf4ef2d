// Package config предоставляет структуры и функции для загрузки конфигурации.
//
// Конфигурация читается из YAML-файла, путь к которому задаётся переменной
// CONFIG_PATH; любое поле можно переопределить переменной окружения.
// Перед чтением подхватывается файл .env, если он есть.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	GRPC       `yaml:"grpc"`
	Storage    `yaml:"storage"`
	Redis      `yaml:"redis"`
	RabbitMQ   `yaml:"rabbitmq"`
	JWTToken   `yaml:"jwttoken"`
	Billing    `yaml:"billing"`
	RateLimit  `yaml:"rate_limit"`
	CORS       `yaml:"cors"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// GRPC структура для настройки gRPC health-сервера. Пустой адрес отключает сервер.
type GRPC struct {
	AddressGRPC string `yaml:"address" env:"GRPC_ADDRESS"`
}

// Storage структура для настройки хранилища.
type Storage struct {
	Driver           string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	ConnectionString string `yaml:"connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath   string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
}

// Redis структура для настройки подключения к redis. Пустой адрес отключает кеш.
type Redis struct {
	AddressRedis string        `yaml:"address" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeout" env-default:"3s"`
	UserCacheTTL time.Duration `yaml:"user_cache_ttl" env-default:"5m"`
}

// RabbitMQ структура для настройки брокера. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	Retries    int           `yaml:"retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env:"JWT_TOKEN_TTL" env-default:"24h"`
}

// Billing задаёт параметры жизненного цикла подписки.
type Billing struct {
	TrialPeriod  time.Duration `yaml:"trial_period" env-default:"720h"`
	BillingCycle time.Duration `yaml:"billing_cycle" env-default:"720h"`
	GracePeriod  time.Duration `yaml:"grace_period" env-default:"120h"`
	Amount       float64       `yaml:"amount" env-default:"30"`
}

// RateLimit задаёт лимит запросов на одного клиента.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"5"`
	Burst int     `yaml:"burst" env-default:"10"`
	// IdleTTL: через сколько без запросов лимитер клиента удаляется.
	IdleTTL time.Duration `yaml:"idle_ttl" env-default:"10m"`
}

// CORS задаёт источники, с которых фронтенду разрешено обращаться к API.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// Load читает конфигурацию из файла path.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if path == "" {
		return nil, fmt.Errorf("%s: config path is empty", op)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.Storage.Driver != "postgres" && cfg.Storage.Driver != "memory" {
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.ConnectionString == "" {
		return nil, fmt.Errorf("%s: storage connection string is required for postgres", op)
	}
	return &cfg, nil
}

// MustLoad загружает .env (если есть) и конфиг из CONFIG_PATH, завершая процесс при ошибке.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("cannot read .env: %s", err)
	}

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
