package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var ErrCertificateNotFound = errors.New("certificate not found")

type CertificateRepository interface {
	Upsert(certificate *domain.Certificate) error
	FindByEnrollment(enrollmentID uint) (*domain.Certificate, error)
	FindByCode(code string) (*domain.Certificate, error)
}

type GormCertificateRepository struct{ db *gorm.DB }

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &GormCertificateRepository{db: db}
}

// Upsert writes the enrollment's single certificate row. Re-issuing replaces
// the code and issue time in place rather than growing a history.
func (r *GormCertificateRepository) Upsert(certificate *domain.Certificate) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "template", "issued_at"}),
	}).Create(certificate).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "certificate", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "certificate", "upsert", "success")
	return nil
}

func (r *GormCertificateRepository) FindByEnrollment(enrollmentID uint) (*domain.Certificate, error) {
	var certificate domain.Certificate
	err := r.db.Where("enrollment_id = ?", enrollmentID).First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "certificate", "find_by_enrollment", "not_found")
			return nil, ErrCertificateNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "certificate", "find_by_enrollment", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "certificate", "find_by_enrollment", "success")
	return &certificate, nil
}

// FindByCode resolves a certificate from its public code, used by the
// verification page.
func (r *GormCertificateRepository) FindByCode(code string) (*domain.Certificate, error) {
	var certificate domain.Certificate
	err := r.db.Where("code = ?", code).First(&certificate).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "certificate", "find_by_code", "not_found")
			return nil, ErrCertificateNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "certificate", "find_by_code", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "certificate", "find_by_code", "success")
	return &certificate, nil
}
