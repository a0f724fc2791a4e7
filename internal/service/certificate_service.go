package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
	"github.com/DevDeP100/Shalom.pt/internal/security"
)

const defaultCertificateTemplate = "default"

// CertificateService issues participation certificates. An enrollment owns
// at most one certificate row; re-issuing replaces its code.
type CertificateService struct {
	enrollments  repository.EnrollmentRepository
	certificates repository.CertificateRepository
	logger       *slog.Logger
	now          func() time.Time
}

func NewCertificateService(
	enrollments repository.EnrollmentRepository,
	certificates repository.CertificateRepository,
	logger *slog.Logger,
) *CertificateService {
	return &CertificateService{
		enrollments:  enrollments,
		certificates: certificates,
		logger:       logger,
		now:          time.Now,
	}
}

// Issue creates or re-issues the certificate for an attended enrollment.
// Every call generates a fresh code; the enrollment keeps a single row.
func (s *CertificateService) Issue(ctx context.Context, enrollmentID uint) (*domain.Certificate, error) {
	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "enrollment not found", err)
		}
		return nil, err
	}
	if !enrollment.Attended() {
		return nil, domain.NewError(domain.KindState, "certificate requires recorded presence")
	}

	certificate := &domain.Certificate{
		EnrollmentID: enrollmentID,
		Code:         security.NewCertificateCode(),
		Template:     defaultCertificateTemplate,
		IssuedAt:     s.now().UTC(),
	}
	if err := s.certificates.Upsert(certificate); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "certificate issued",
		"enrollment_id", enrollmentID,
		"code", certificate.Code,
	)
	return certificate, nil
}

// Lookup resolves a certificate from its public code, for the verification
// page.
func (s *CertificateService) Lookup(ctx context.Context, code string) (*domain.Certificate, error) {
	certificate, err := s.certificates.FindByCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrCertificateNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "certificate not found", err)
		}
		return nil, err
	}
	return certificate, nil
}
