package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/mailer"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
	"github.com/DevDeP100/Shalom.pt/internal/security"
	"github.com/DevDeP100/Shalom.pt/internal/validation"
)

type RegisterInput struct {
	Handle          string `validate:"required,handle"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
	FullName        string `validate:"max=200"`
	Phone           string `validate:"max=20"`
	Newsletter      bool
}

type ProfileInput struct {
	FullName   string `validate:"max=200"`
	Phone      string `validate:"max=20"`
	BirthDate  *time.Time
	Address    string `validate:"max=512"`
	PostalCode string `validate:"postalcode_pt"`
	City       string `validate:"max=100"`
	District   string `validate:"max=100"`
	Bio        string `validate:"max=2048"`
	Newsletter bool
}

// AccountService owns the account lifecycle: registration, email
// verification, login and profile upkeep.
type AccountService struct {
	accounts      repository.AccountRepository
	verifications *VerificationService
	mail          mailer.Mailer
	sessions      *security.SessionManager
	validate      *validator.Validate
	logger        *slog.Logger
}

func NewAccountService(
	accounts repository.AccountRepository,
	verifications *VerificationService,
	mail mailer.Mailer,
	sessions *security.SessionManager,
	validate *validator.Validate,
	logger *slog.Logger,
) *AccountService {
	return &AccountService{
		accounts:      accounts,
		verifications: verifications,
		mail:          mail,
		sessions:      sessions,
		validate:      validate,
		logger:        logger,
	}
}

// Register creates an inactive account, issues a verification code, and
// emails it. When delivery fails the account and code are already persisted,
// so the error is returned alongside the created account: the caller can
// prompt for a resend instead of re-registering.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	if err := validation.Validate(ctx, s.validate, in); err != nil {
		return nil, err
	}

	if _, err := s.accounts.FindByEmail(in.Email); err == nil {
		observability.RecordAccountLifecycleEvent(ctx, "register", "rejected")
		return nil, domain.NewError(domain.KindConflict, "email already registered")
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}
	if _, err := s.accounts.FindByHandle(in.Handle); err == nil {
		observability.RecordAccountLifecycleEvent(ctx, "register", "rejected")
		return nil, domain.NewError(domain.KindConflict, "handle already taken")
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		Handle:       in.Handle,
		Email:        in.Email,
		PasswordHash: hash,
		Profile: &domain.Profile{
			FullName:   in.FullName,
			Phone:      in.Phone,
			Newsletter: in.Newsletter,
		},
	}
	if err := s.accounts.Create(account); err != nil {
		if errors.Is(err, repository.ErrDuplicateAccount) {
			observability.RecordAccountLifecycleEvent(ctx, "register", "rejected")
			return nil, domain.WrapError(domain.KindConflict, "handle or email already registered", err)
		}
		observability.RecordAccountLifecycleEvent(ctx, "register", "error")
		return nil, err
	}
	observability.RecordAccountLifecycleEvent(ctx, "register", "success")

	code, err := s.verifications.Issue(ctx, account.ID, account.Email)
	if err != nil {
		return account, err
	}
	if err := s.mail.Send(ctx, mailer.VerificationMessage(account.Email, code.Code, code.ExpiresAt)); err != nil {
		s.logger.ErrorContext(ctx, "verification email delivery failed",
			"account_id", account.ID,
			"error", err,
		)
		return account, domain.WrapError(domain.KindDependency, "verification email could not be delivered, request a resend", err)
	}
	return account, nil
}

// Verify activates the account named by email using the submitted code.
// Verifying an already-active account is a no-op.
func (s *AccountService) Verify(ctx context.Context, email, submitted string) (*domain.Account, error) {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "account not found", err)
		}
		return nil, err
	}
	if account.Active {
		return account, nil
	}

	code, err := s.verifications.Validate(ctx, account.ID, submitted)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.ActivateWithCode(account.ID, code.ID); err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			observability.RecordAccountLifecycleEvent(ctx, "verify", "rejected")
			return nil, domain.WrapError(domain.KindConflict, "verification code already used", err)
		}
		observability.RecordAccountLifecycleEvent(ctx, "verify", "error")
		return nil, err
	}
	observability.RecordAccountLifecycleEvent(ctx, "verify", "success")
	s.logger.InfoContext(ctx, "account activated", "account_id", account.ID)

	account.Active = true
	if account.Profile != nil {
		account.Profile.EmailVerified = true
	}
	return account, nil
}

// ResendCode reissues a verification code for an inactive account. The prior
// code stops working the moment the new one exists.
func (s *AccountService) ResendCode(ctx context.Context, email string) error {
	account, err := s.accounts.FindByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domain.WrapError(domain.KindNotFound, "account not found", err)
		}
		return err
	}
	if account.Active {
		return domain.NewError(domain.KindState, "account already verified")
	}
	code, err := s.verifications.Issue(ctx, account.ID, account.Email)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, mailer.VerificationMessage(account.Email, code.Code, code.ExpiresAt)); err != nil {
		s.logger.ErrorContext(ctx, "verification email delivery failed",
			"account_id", account.ID,
			"error", err,
		)
		return domain.WrapError(domain.KindDependency, "verification email could not be delivered", err)
	}
	return nil
}

// Login authenticates by handle or email and returns a signed session token.
func (s *AccountService) Login(ctx context.Context, handleOrEmail, password string) (*domain.Account, string, error) {
	account, err := s.accounts.FindByHandle(handleOrEmail)
	if errors.Is(err, repository.ErrAccountNotFound) {
		account, err = s.accounts.FindByEmail(handleOrEmail)
	}
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			observability.RecordAccountLifecycleEvent(ctx, "login", "rejected")
			return nil, "", domain.NewError(domain.KindValidation, "invalid credentials")
		}
		return nil, "", err
	}
	if !security.CheckPassword(account.PasswordHash, password) {
		observability.RecordAccountLifecycleEvent(ctx, "login", "rejected")
		return nil, "", domain.NewError(domain.KindValidation, "invalid credentials")
	}
	if !account.Active {
		observability.RecordAccountLifecycleEvent(ctx, "login", "rejected")
		return nil, "", domain.NewError(domain.KindState, "account not verified")
	}

	verified := account.Profile != nil && account.Profile.EmailVerified
	token, err := s.sessions.Sign(account.ID, account.Staff, verified)
	if err != nil {
		return nil, "", err
	}
	observability.RecordAccountLifecycleEvent(ctx, "login", "success")
	return account, token, nil
}

// Get loads an account with its profile.
func (s *AccountService) Get(ctx context.Context, accountID uint) (*domain.Account, error) {
	account, err := s.accounts.FindByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "account not found", err)
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile rewrites the editable profile fields. Verification state is
// not among them.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID uint, in ProfileInput) (*domain.Account, error) {
	if err := validation.Validate(ctx, s.validate, in); err != nil {
		return nil, err
	}
	profile := &domain.Profile{
		AccountID:  accountID,
		FullName:   in.FullName,
		Phone:      in.Phone,
		BirthDate:  in.BirthDate,
		Address:    in.Address,
		PostalCode: in.PostalCode,
		City:       in.City,
		District:   in.District,
		Bio:        in.Bio,
		Newsletter: in.Newsletter,
	}
	if err := s.accounts.UpdateProfile(profile); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "profile not found", err)
		}
		return nil, err
	}
	return s.Get(ctx, accountID)
}

// SetPhotoKey points the profile at a freshly uploaded photo object.
func (s *AccountService) SetPhotoKey(ctx context.Context, accountID uint, photoKey string) error {
	if err := s.accounts.UpdatePhotoKey(accountID, photoKey); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domain.WrapError(domain.KindNotFound, "profile not found", err)
		}
		return err
	}
	return nil
}
