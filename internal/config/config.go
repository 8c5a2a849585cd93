package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	RedisURL string

	MeiliSearchHost string
	MeiliMasterKey  string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LoginAttempts   int
	OTPLifetime     time.Duration
	LockoutDuration time.Duration

	CookieSecure bool

	MaxInlineUploadSize int64
	PhotoStagingDir     string

	BankName         string
	DefaultFromEmail string
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPass         string
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DBHost: getEnv("DB_HOST", "localhost"),
		DBUser: getEnv("DB_USER", "postgres"),
		DBPass: os.Getenv("DB_PASS"),
		DBName: getEnv("DB_NAME", "nextgen_bank"),
		DBPort: getEnv("DB_PORT", "5432"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		JWTSecret: getEnv("JWT_SECRET", "change-me"),

		CookieSecure: getEnv("COOKIE_SECURE", "true") == "true",

		PhotoStagingDir: getEnv("PHOTO_STAGING_DIR", os.TempDir()),

		BankName:         getEnv("BANK_NAME", "NextGen Bank"),
		DefaultFromEmail: getEnv("DEFAULT_FROM_EMAIL", "no-reply@nextgenbank.example.com"),
		SMTPHost:         os.Getenv("SMTP_HOST"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
	}

	var err error
	if cfg.AccessTokenTTL, err = parseDuration("ACCESS_TOKEN_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.RefreshTokenTTL, err = parseDuration("REFRESH_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.OTPLifetime, err = parseDuration("OTP_LIFETIME", "5m"); err != nil {
		return nil, err
	}
	if cfg.LockoutDuration, err = parseDuration("LOCKOUT_DURATION", "30m"); err != nil {
		return nil, err
	}

	if cfg.LoginAttempts, err = parseInt("LOGIN_ATTEMPTS", 3); err != nil {
		return nil, err
	}

	maxInline, err := parseInt("MAX_INLINE_UPLOAD_SIZE", 1<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxInlineUploadSize = int64(maxInline)

	return cfg, nil
}

func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPass, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, fallback int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
