package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config — всё, что берётся из окружения (и .env вне production).
type Config struct {
	Env  string
	Addr string

	// postgres | sqlite | memory; пусто — postgres при DATABASE_URL, иначе sqlite
	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	// memory | redis | file
	SessionDriver string
	RedisAddr     string
	SessionDir    string
	SessionSecret string
	SessionTTL    time.Duration
	SecureCookies bool

	PublicBaseURL     string
	StaticDir         string
	SaveTimeout       time.Duration
	AdminPasswordHash string

	// static | s3
	AssetsDriver  string
	AssetsBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PathStyle   bool

	TelegramBotToken string
	TelegramChatID   string
}

// LoadConfig читает переменные окружения. .env подхватывается,
// если APP_ENV != production.
func LoadConfig() (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}
	return configFrom(os.Getenv)
}

func configFrom(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Env:               get("APP_ENV", "development"),
		Addr:              ":3040",
		StoreDriver:       strings.ToLower(get("STORE_DRIVER", "")),
		DatabaseURL:       get("DATABASE_URL", ""),
		SQLitePath:        get("SQLITE_PATH", "configurator.db"),
		SessionDriver:     strings.ToLower(get("SESSION_DRIVER", "memory")),
		RedisAddr:         get("REDIS_ADDR", "localhost:6379"),
		SessionDir:        get("SESSION_DIR", "sessions"),
		SessionSecret:     get("SESSION_SECRET", ""),
		PublicBaseURL:     get("PUBLIC_BASE_URL", "http://localhost:3040"),
		StaticDir:         get("STATIC_DIR", "static"),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
		AssetsDriver:      strings.ToLower(get("AR_ASSETS_DRIVER", "static")),
		AssetsBaseURL:     get("AR_ASSETS_BASE_URL", "/static"),
		S3Bucket:          get("AR_S3_BUCKET", ""),
		S3Region:          get("AR_S3_REGION", ""),
		S3Endpoint:        get("AR_S3_ENDPOINT", ""),
		S3AccessKey:       get("AR_S3_ACCESS_KEY", ""),
		S3SecretKey:       get("AR_S3_SECRET_KEY", ""),
		TelegramBotToken:  get("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:    get("TELEGRAM_CHAT_ID", ""),
	}
	if p := get("PORT", ""); p != "" {
		cfg.Addr = ":" + p
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "sqlite"
		if cfg.DatabaseURL != "" {
			cfg.StoreDriver = "postgres"
		}
	}

	var err error
	if cfg.SessionTTL, err = parseDuration(get("SESSION_TTL", "720h")); err != nil {
		return Config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.SaveTimeout, err = parseDuration(get("SAVE_TIMEOUT", "5s")); err != nil {
		return Config{}, fmt.Errorf("SAVE_TIMEOUT: %w", err)
	}
	if cfg.SecureCookies, err = strconv.ParseBool(get("SESSION_SECURE", "false")); err != nil {
		return Config{}, fmt.Errorf("SESSION_SECURE: %w", err)
	}
	if cfg.S3PathStyle, err = strconv.ParseBool(get("AR_S3_PATH_STYLE", "false")); err != nil {
		return Config{}, fmt.Errorf("AR_S3_PATH_STYLE: %w", err)
	}

	if cfg.SessionSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = "dev-session-secret"
	}
	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required for postgres store")
		}
	case "sqlite", "memory":
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	switch cfg.SessionDriver {
	case "memory", "redis", "file":
	default:
		return Config{}, fmt.Errorf("unknown SESSION_DRIVER %q", cfg.SessionDriver)
	}
	switch cfg.AssetsDriver {
	case "static":
	case "s3":
		if cfg.S3Bucket == "" {
			return Config{}, fmt.Errorf("AR_S3_BUCKET is required for s3 assets")
		}
	default:
		return Config{}, fmt.Errorf("unknown AR_ASSETS_DRIVER %q", cfg.AssetsDriver)
	}
	return cfg, nil
}

func (c Config) Production() bool {
	return c.Env == "production" || c.Env == "prod"
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}
