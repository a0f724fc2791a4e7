package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
	"github.com/DevDeP100/Shalom.pt/internal/security"
)

const verificationCodeDigits = 6

// codeIssueAttempts bounds retries when a freshly generated code collides
// with one already in the table.
const codeIssueAttempts = 5

// VerificationService issues and checks the single-use email verification
// codes. At any moment only the newest unused code for an account can verify.
type VerificationService struct {
	codes  repository.VerificationCodeRepository
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time
}

func NewVerificationService(codes repository.VerificationCodeRepository, ttl time.Duration, logger *slog.Logger) *VerificationService {
	return &VerificationService{codes: codes, ttl: ttl, logger: logger, now: time.Now}
}

// Issue invalidates every outstanding code for the account and creates a
// fresh one.
func (s *VerificationService) Issue(ctx context.Context, accountID uint, email string) (*domain.VerificationCode, error) {
	if err := s.codes.InvalidateActiveByAccount(accountID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	for attempt := 0; attempt < codeIssueAttempts; attempt++ {
		value, err := security.NewNumericCode(verificationCodeDigits)
		if err != nil {
			return nil, err
		}
		if _, err := s.codes.FindByCode(value); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrCodeNotFound) {
			return nil, err
		}

		code := &domain.VerificationCode{
			AccountID: accountID,
			Code:      value,
			Email:     email,
			ExpiresAt: now.Add(s.ttl),
		}
		if err := s.codes.Create(code); err != nil {
			return nil, err
		}
		observability.RecordAccountLifecycleEvent(ctx, "code_issue", "success")
		s.logger.InfoContext(ctx, "verification code issued",
			"account_id", accountID,
			"expires_at", code.ExpiresAt,
		)
		return code, nil
	}
	observability.RecordAccountLifecycleEvent(ctx, "code_issue", "error")
	return nil, domain.NewError(domain.KindDependency, "could not generate a unique verification code")
}

// Validate checks the submitted value against the account's newest active
// code. Stale codes, even if their value matches an older row, never verify.
func (s *VerificationService) Validate(ctx context.Context, accountID uint, submitted string) (*domain.VerificationCode, error) {
	active, err := s.codes.FindActiveByAccount(accountID, s.now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			observability.RecordAccountLifecycleEvent(ctx, "code_validate", "rejected")
			return nil, domain.WrapError(domain.KindValidation, "no active verification code, request a new one", err)
		}
		return nil, err
	}
	if active.Code != submitted {
		observability.RecordAccountLifecycleEvent(ctx, "code_validate", "rejected")
		return nil, domain.NewError(domain.KindValidation, "incorrect verification code")
	}
	observability.RecordAccountLifecycleEvent(ctx, "code_validate", "success")
	return active, nil
}

// Consume marks the code used. Consuming an already-used code is a no-op.
func (s *VerificationService) Consume(ctx context.Context, codeID uint) error {
	if err := s.codes.Consume(codeID); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil
		}
		return err
	}
	observability.RecordAccountLifecycleEvent(ctx, "code_consume", "success")
	return nil
}

// PurgeExpired removes codes whose expiry has passed. Used by the cleanup
// tooling, never by the request path.
func (s *VerificationService) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.codes.DeleteExpired(s.now().UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "expired verification codes purged", "count", removed)
	}
	return removed, nil
}
