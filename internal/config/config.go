package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string
	LogLevel string
	LogFile  string

	DatabaseURL string

	SessionSecret string
	SessionIssuer string
	SessionTTL    time.Duration
	CookieSecure  bool

	VerificationCodeTTL time.Duration

	SMTPHost               string
	SMTPPort               int
	SMTPUsername           string
	SMTPPassword           string
	SMTPFrom               string
	SMTPInsecureSkipVerify bool

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	RedisAddr string

	CORSAllowedOrigins []string

	AuthRateLimitPerMin int
	APIRateLimitPerMin  int
}

func Load() (*Config, error) {
	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFile:                os.Getenv("LOG_FILE"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		SessionSecret:          os.Getenv("SESSION_SECRET"),
		SessionIssuer:          getEnv("SESSION_ISSUER", "community-events-service"),
		CookieSecure:           getEnvBool("COOKIE_SECURE", true),
		SMTPHost:               os.Getenv("SMTP_HOST"),
		SMTPPort:               getEnvInt("SMTP_PORT", 587),
		SMTPUsername:           os.Getenv("SMTP_USERNAME"),
		SMTPPassword:           os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:               os.Getenv("SMTP_FROM"),
		SMTPInsecureSkipVerify: getEnvBool("SMTP_INSECURE_SKIP_VERIFY", false),
		MinIOEndpoint:          os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:         os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:         os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:            getEnv("MINIO_BUCKET", "community-media"),
		MinIOUseSSL:            getEnvBool("MINIO_USE_SSL", true),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		CORSAllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		AuthRateLimitPerMin:    getEnvInt("AUTH_RATE_LIMIT_PER_MIN", 30),
		APIRateLimitPerMin:     getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
	}

	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = sessionTTL

	codeTTL, err := time.ParseDuration(getEnv("VERIFICATION_CODE_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("parse VERIFICATION_CODE_TTL: %w", err)
	}
	cfg.VerificationCodeTTL = codeTTL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.SessionSecret) < 32 {
		errs = append(errs, "SESSION_SECRET must be at least 32 chars")
	}
	if c.SessionTTL <= 0 || c.SessionTTL > 30*24*time.Hour {
		errs = append(errs, "SESSION_TTL must be between 1s and 30d")
	}
	if c.VerificationCodeTTL < time.Minute || c.VerificationCodeTTL > 72*time.Hour {
		errs = append(errs, "VERIFICATION_CODE_TTL must be between 1m and 72h")
	}
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		errs = append(errs, "SMTP_FROM is required when SMTP_HOST is set")
	}
	if c.SMTPInsecureSkipVerify && c.Env == "production" {
		errs = append(errs, "SMTP_INSECURE_SKIP_VERIFY must not be set in production")
	}
	if c.AuthRateLimitPerMin <= 0 {
		errs = append(errs, "AUTH_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// MailerConfigured reports whether outbound SMTP delivery is set up; without
// it the service falls back to the dev notifier that logs codes.
func (c *Config) MailerConfigured() bool {
	return c.SMTPHost != ""
}

// StorageConfigured reports whether the MinIO media store is set up.
func (c *Config) StorageConfigured() bool {
	return c.MinIOEndpoint != ""
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
