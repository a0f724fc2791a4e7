package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/mailer"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
)

// EnrollmentService drives the participation lifecycle: enroll, cancel, and
// the privileged confirm and mark-present transitions.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	events      repository.EventRepository
	accounts    repository.AccountRepository
	mail        mailer.Mailer
	logger      *slog.Logger
	now         func() time.Time
}

func NewEnrollmentService(
	enrollments repository.EnrollmentRepository,
	events repository.EventRepository,
	accounts repository.AccountRepository,
	mail mailer.Mailer,
	logger *slog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		events:      events,
		accounts:    accounts,
		mail:        mail,
		logger:      logger,
		now:         time.Now,
	}
}

// Enroll creates a pending enrollment. The published/duplicate/capacity
// checks run inside the repository's locked transaction, so two requests for
// the last seat cannot both win.
func (s *EnrollmentService) Enroll(ctx context.Context, accountID, eventID uint) (*domain.Enrollment, error) {
	account, err := s.accounts.FindByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "account not found", err)
		}
		return nil, err
	}
	if account.Profile == nil || !account.Profile.EmailVerified {
		observability.RecordEnrollmentEvent(ctx, "enroll", "rejected")
		return nil, domain.NewError(domain.KindState, "email verification required before enrolling")
	}

	event, err := s.events.FindByID(eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return nil, err
	}
	if event.HasExternalSignup() {
		observability.RecordEnrollmentEvent(ctx, "enroll", "rejected")
		return nil, domain.NewError(domain.KindState, "enrollment for this event is handled on an external site")
	}

	enrollment := &domain.Enrollment{
		EventID:   eventID,
		AccountID: accountID,
		Status:    domain.EnrollmentPending,
	}
	if err := s.enrollments.EnrollTx(ctx, enrollment); err != nil {
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			return nil, domain.WrapError(domain.KindNotFound, "event not found", err)
		case errors.Is(err, repository.ErrEventNotOpen):
			observability.RecordEnrollmentEvent(ctx, "enroll", "rejected")
			return nil, domain.WrapError(domain.KindState, "event is not open for enrollment", err)
		case errors.Is(err, repository.ErrDuplicateEnrollment):
			observability.RecordEnrollmentEvent(ctx, "enroll", "rejected")
			return nil, domain.WrapError(domain.KindConflict, "already enrolled in this event", err)
		case errors.Is(err, repository.ErrEventFull):
			observability.RecordEnrollmentEvent(ctx, "enroll", "rejected")
			return nil, domain.WrapError(domain.KindConflict, "event is full", err)
		}
		observability.RecordEnrollmentEvent(ctx, "enroll", "error")
		return nil, err
	}
	observability.RecordEnrollmentEvent(ctx, "enroll", "success")
	s.notify(ctx, account.Email, event.Title, "pending")
	return enrollment, nil
}

// Cancel moves the caller's enrollment to cancelled. Cancelling twice is a
// no-op.
func (s *EnrollmentService) Cancel(ctx context.Context, accountID, eventID uint) error {
	enrollment, err := s.enrollments.FindByEventAccount(eventID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return domain.WrapError(domain.KindNotFound, "enrollment not found", err)
		}
		return err
	}
	if enrollment.Status == domain.EnrollmentCancelled {
		return nil
	}
	if err := s.enrollments.SetStatus(enrollment.ID, domain.EnrollmentCancelled); err != nil {
		observability.RecordEnrollmentEvent(ctx, "cancel", "error")
		return err
	}
	observability.RecordEnrollmentEvent(ctx, "cancel", "success")
	if account, err := s.accounts.FindByID(accountID); err == nil && enrollment.Event != nil {
		s.notify(ctx, account.Email, enrollment.Event.Title, "cancelled")
	}
	return nil
}

// Confirm seats a pending enrollment. Capacity is re-checked so confirming
// a backlog of pendings cannot exceed the cap.
func (s *EnrollmentService) Confirm(ctx context.Context, enrollmentID uint) error {
	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return domain.WrapError(domain.KindNotFound, "enrollment not found", err)
		}
		return err
	}
	if !enrollment.CanConfirm() {
		observability.RecordEnrollmentEvent(ctx, "confirm", "rejected")
		return domain.NewError(domain.KindState, "only pending enrollments can be confirmed")
	}
	if enrollment.Event != nil && !enrollment.Event.Unlimited() {
		seated, err := s.events.CountConfirmed(enrollment.EventID)
		if err != nil {
			return err
		}
		if enrollment.Event.Full(int(seated)) {
			observability.RecordEnrollmentEvent(ctx, "confirm", "rejected")
			return domain.NewError(domain.KindConflict, "event is full")
		}
	}
	if err := s.enrollments.Confirm(enrollmentID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			observability.RecordEnrollmentEvent(ctx, "confirm", "rejected")
			return domain.WrapError(domain.KindState, "enrollment is no longer pending", err)
		}
		observability.RecordEnrollmentEvent(ctx, "confirm", "error")
		return err
	}
	observability.RecordEnrollmentEvent(ctx, "confirm", "success")
	if account, err := s.accounts.FindByID(enrollment.AccountID); err == nil && enrollment.Event != nil {
		s.notify(ctx, account.Email, enrollment.Event.Title, "confirmed")
	}
	return nil
}

// MarkPresent records attendance for a confirmed enrollment.
func (s *EnrollmentService) MarkPresent(ctx context.Context, enrollmentID uint) error {
	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return domain.WrapError(domain.KindNotFound, "enrollment not found", err)
		}
		return err
	}
	if !enrollment.CanMarkPresent() {
		observability.RecordEnrollmentEvent(ctx, "present", "rejected")
		return domain.NewError(domain.KindState, "presence requires a confirmed enrollment")
	}
	if err := s.enrollments.MarkPresent(enrollmentID, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			observability.RecordEnrollmentEvent(ctx, "present", "rejected")
			return domain.WrapError(domain.KindState, "enrollment is no longer confirmed", err)
		}
		observability.RecordEnrollmentEvent(ctx, "present", "error")
		return err
	}
	observability.RecordEnrollmentEvent(ctx, "present", "success")
	return nil
}

// ListMine pages through the account's own enrollments, newest first.
func (s *EnrollmentService) ListMine(ctx context.Context, accountID uint, page repository.PageRequest) (repository.PageResult[domain.Enrollment], error) {
	return s.enrollments.ListByAccount(accountID, page)
}

// ListForEvent returns every enrollment of an event for the staff roster.
func (s *EnrollmentService) ListForEvent(ctx context.Context, eventID uint) ([]domain.Enrollment, error) {
	if _, err := s.events.FindByID(eventID); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return nil, err
	}
	return s.enrollments.ListByEvent(eventID)
}

// Get loads an enrollment for the owner or staff.
func (s *EnrollmentService) Get(ctx context.Context, enrollmentID uint) (*domain.Enrollment, error) {
	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "enrollment not found", err)
		}
		return nil, err
	}
	return enrollment, nil
}

// notify sends a status email. The transition is already committed, so a
// delivery failure is logged loudly rather than unwinding the state change.
func (s *EnrollmentService) notify(ctx context.Context, email, eventTitle, status string) {
	if err := s.mail.Send(ctx, mailer.EnrollmentMessage(email, eventTitle, status)); err != nil {
		s.logger.ErrorContext(ctx, "enrollment email delivery failed",
			"to", email,
			"status", status,
			"error", err,
		)
	}
}
