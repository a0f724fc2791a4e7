package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Env:                 "test",
		DatabaseURL:         "postgres://localhost/community_test",
		SessionSecret:       strings.Repeat("s", 32),
		SessionTTL:          12 * time.Hour,
		VerificationCodeTTL: 24 * time.Hour,
		AuthRateLimitPerMin: 30,
		APIRateLimitPerMin:  120,
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsMissingDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidateRejectsShortSessionSecret(t *testing.T) {
	cfg := validConfig()
	cfg.SessionSecret = "short"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SESSION_SECRET") {
		t.Fatalf("expected SESSION_SECRET error, got %v", err)
	}
}

func TestValidateRejectsCodeTTLOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.VerificationCodeTTL = time.Second
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "VERIFICATION_CODE_TTL") {
		t.Fatalf("expected VERIFICATION_CODE_TTL error, got %v", err)
	}
}

func TestValidateRejectsInsecureSMTPInProduction(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	cfg.SMTPInsecureSkipVerify = true
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SMTP_INSECURE_SKIP_VERIFY") {
		t.Fatalf("expected insecure override rejection, got %v", err)
	}

	cfg.Env = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("insecure override should be allowed outside production: %v", err)
	}
}

func TestValidateRequiresSMTPFromWithHost(t *testing.T) {
	cfg := validConfig()
	cfg.SMTPHost = "smtp.example.com"
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "SMTP_FROM") {
		t.Fatalf("expected SMTP_FROM error, got %v", err)
	}
	cfg.SMTPFrom = "noreply@example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid SMTP config: %v", err)
	}
	if !cfg.MailerConfigured() {
		t.Fatal("expected mailer to be configured")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/community_test")
	t.Setenv("SESSION_SECRET", strings.Repeat("k", 40))
	t.Setenv("VERIFICATION_CODE_TTL", "30m")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("unexpected port %q", cfg.HTTPPort)
	}
	if cfg.VerificationCodeTTL != 30*time.Minute {
		t.Fatalf("unexpected code TTL %v", cfg.VerificationCodeTTL)
	}
	if cfg.SMTPInsecureSkipVerify {
		t.Fatal("insecure SMTP override must default to off")
	}
}
