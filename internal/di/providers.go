// Package di wires the application graph with google/wire.
package di

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/app"
	"github.com/DevDeP100/Shalom.pt/internal/config"
	"github.com/DevDeP100/Shalom.pt/internal/database"
	"github.com/DevDeP100/Shalom.pt/internal/http/handler"
	"github.com/DevDeP100/Shalom.pt/internal/http/middleware"
	"github.com/DevDeP100/Shalom.pt/internal/http/router"
	"github.com/DevDeP100/Shalom.pt/internal/mailer"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
	"github.com/DevDeP100/Shalom.pt/internal/security"
	"github.com/DevDeP100/Shalom.pt/internal/service"
	"github.com/DevDeP100/Shalom.pt/internal/validation"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(provideLogger)

var RuntimeInfraSet = wire.NewSet(
	provideOpenDB,
	provideRedisClient,
	provideLimiter,
	provideMailer,
	provideStorage,
)

var RepositorySet = wire.NewSet(
	repository.NewAccountRepository,
	repository.NewVerificationCodeRepository,
	repository.NewEventRepository,
	repository.NewEnrollmentRepository,
	repository.NewCertificateRepository,
	repository.NewEvaluationRepository,
	repository.NewArticleRepository,
)

var SecuritySet = wire.NewSet(
	provideSessionManager,
	provideCookieManager,
)

var ServiceSet = wire.NewSet(
	validation.New,
	provideVerificationService,
	service.NewAccountService,
	service.NewEventService,
	service.NewEnrollmentService,
	service.NewCertificateService,
	service.NewEvaluationService,
	service.NewArticleService,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewAccountHandler,
	handler.NewEventHandler,
	handler.NewEnrollmentHandler,
	handler.NewArticleHandler,
	provideRouterDependencies,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

// provideLogger mirrors every record into LOG_FILE when the operator sets
// one, alongside the stdout stream.
func provideLogger(cfg *config.Config) (*slog.Logger, error) {
	if cfg.LogFile == "" {
		return observability.NewLogger(cfg.LogLevel, nil), nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return observability.NewLogger(cfg.LogLevel, f), nil
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
}

// provideLimiter shares window counters through redis when available, so
// replicas enforce one combined budget. Without redis each replica counts
// alone.
func provideLimiter(client redis.UniversalClient) middleware.Limiter {
	if client == nil {
		return middleware.NewLocalFixedWindowLimiter()
	}
	return middleware.NewRedisFixedWindowLimiter(client, "rl")
}

func provideMailer(cfg *config.Config, logger *slog.Logger) mailer.Mailer {
	if cfg.MailerConfigured() {
		return mailer.NewSMTPMailer(cfg, logger)
	}
	return mailer.NewLogMailer(logger)
}

func provideStorage(cfg *config.Config) (service.StorageService, error) {
	if !cfg.StorageConfigured() {
		return service.NewDisabledStorageService(), nil
	}
	return service.NewMinIOStorageService(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
}

func provideSessionManager(cfg *config.Config) *security.SessionManager {
	return security.NewSessionManager(cfg.SessionSecret, cfg.SessionIssuer, cfg.SessionTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieSecure)
}

func provideVerificationService(codes repository.VerificationCodeRepository, cfg *config.Config, logger *slog.Logger) *service.VerificationService {
	return service.NewVerificationService(codes, cfg.VerificationCodeTTL, logger)
}

func provideRouterDependencies(
	auth *handler.AuthHandler,
	accounts *handler.AccountHandler,
	events *handler.EventHandler,
	enrollments *handler.EnrollmentHandler,
	articles *handler.ArticleHandler,
	sessions *security.SessionManager,
	limiter middleware.Limiter,
	logger *slog.Logger,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		Auth:             auth,
		Accounts:         accounts,
		Events:           events,
		Enrollments:      enrollments,
		Articles:         articles,
		Sessions:         sessions,
		Limiter:          limiter,
		Logger:           logger,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:  cfg.APIRateLimitPerMin,
	}
}

func provideHTTPServer(cfg *config.Config, dep router.Dependencies) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router.New(dep),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// MigrationRunner applies the schema and the baseline seed data.
type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	if _, err := database.SeedSync(m.db); err != nil {
		return fmt.Errorf("seed baseline data: %w", err)
	}
	return nil
}
