package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var ErrCodeNotFound = errors.New("verification code not found")

type VerificationCodeRepository interface {
	Create(code *domain.VerificationCode) error
	FindActiveByAccount(accountID uint, now time.Time) (*domain.VerificationCode, error)
	FindByCode(code string) (*domain.VerificationCode, error)
	InvalidateActiveByAccount(accountID uint) error
	Consume(id uint) error
	DeleteExpired(before time.Time) (int64, error)
}

type GormVerificationCodeRepository struct{ db *gorm.DB }

func NewVerificationCodeRepository(db *gorm.DB) VerificationCodeRepository {
	return &GormVerificationCodeRepository{db: db}
}

func (r *GormVerificationCodeRepository) Create(code *domain.VerificationCode) error {
	code.Email = strings.TrimSpace(strings.ToLower(code.Email))
	if err := r.db.Create(code).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "verification_code", "create", "success")
	return nil
}

// FindActiveByAccount returns the newest unused, unexpired code for the
// account. Older codes may still exist in the table but are never
// authoritative.
func (r *GormVerificationCodeRepository) FindActiveByAccount(accountID uint, now time.Time) (*domain.VerificationCode, error) {
	var code domain.VerificationCode
	err := r.db.Where("account_id = ? AND used = ? AND expires_at >= ?", accountID, false, now).
		Order("created_at desc").Order("id desc").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "verification_code", "find_active", "not_found")
			return nil, ErrCodeNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "find_active", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "verification_code", "find_active", "success")
	return &code, nil
}

func (r *GormVerificationCodeRepository) FindByCode(raw string) (*domain.VerificationCode, error) {
	var code domain.VerificationCode
	err := r.db.Where("code = ?", strings.TrimSpace(raw)).First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "verification_code", "find_by_code", "not_found")
			return nil, ErrCodeNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "find_by_code", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "verification_code", "find_by_code", "success")
	return &code, nil
}

// InvalidateActiveByAccount marks every outstanding unused code for the
// account as used. Called right before issuing a replacement so only the
// newest code can ever verify.
func (r *GormVerificationCodeRepository) InvalidateActiveByAccount(accountID uint) error {
	err := r.db.Model(&domain.VerificationCode{}).
		Where("account_id = ? AND used = ?", accountID, false).
		Update("used", true).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "invalidate", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "verification_code", "invalidate", "success")
	return nil
}

// Consume marks the code used. The guarded update makes concurrent consumers
// race safely: exactly one caller sees the row flip, the rest get
// ErrCodeNotFound.
func (r *GormVerificationCodeRepository) Consume(id uint) error {
	res := r.db.Model(&domain.VerificationCode{}).
		Where("id = ? AND used = ?", id, false).
		Update("used", true)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "consume", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "consume", "not_found")
		return ErrCodeNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "verification_code", "consume", "success")
	return nil
}

func (r *GormVerificationCodeRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", before).Delete(&domain.VerificationCode{})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "verification_code", "delete_expired", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(context.Background(), "verification_code", "delete_expired", "success")
	return res.RowsAffected, nil
}
