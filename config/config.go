// Package config loads the process-wide configuration once at startup.
// Everything downstream receives it by injection and treats it as read-only.
package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"APP_ENV" env-default:"development"`
	HTTPAddr string `env:"HTTP_ADDR" env-default:":4001"`
	BaseURL  string `env:"BASE_URL" env-default:"http://localhost:4001"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	UploadDir   string `env:"UPLOAD_DIR" env-default:"uploads"`

	Redis RedisConfig

	JWT  JWTConfig
	Mail MailConfig

	CookieDomain        string        `env:"COOKIE_DOMAIN"`
	VerificationCodeTTL time.Duration `env:"VERIFICATION_CODE_TTL" env-default:"2m"`
}

// RedisConfig is optional; an empty Addr disables the catalog cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"JWT_SECRET" env-required:"true"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET" env-required:"true"`
	Issuer        string        `env:"JWT_ISSUER" env-default:"avtosalon"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" env-default:"360h"`
}

type MailConfig struct {
	ResendAPIKey string `env:"RESEND_API_KEY"`
	From         string `env:"MAIL_FROM"`
}

// MustLoad reads .env when present, then the environment. It exits the
// process on a missing required variable; there is no point serving without
// a database or signing secrets.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %s", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
