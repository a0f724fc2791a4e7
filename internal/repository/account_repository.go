package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrDuplicateAccount = errors.New("account handle or email already exists")
)

type AccountRepository interface {
	Create(account *domain.Account) error
	FindByID(id uint) (*domain.Account, error)
	FindByEmail(email string) (*domain.Account, error)
	FindByHandle(handle string) (*domain.Account, error)
	ActivateWithCode(accountID, codeID uint) error
	UpdateProfile(profile *domain.Profile) error
	UpdatePhotoKey(accountID uint, photoKey string) error
}

type GormAccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) Create(account *domain.Account) error {
	account.Email = strings.TrimSpace(strings.ToLower(account.Email))
	account.Handle = strings.TrimSpace(account.Handle)
	if err := r.db.Create(account).Error; err != nil {
		// The unique indexes are the last line of defense when two
		// registrations race past the service-level lookups.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			observability.RecordRepositoryOperation(context.Background(), "account", "create", "conflict")
			return ErrDuplicateAccount
		}
		observability.RecordRepositoryOperation(context.Background(), "account", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "account", "create", "success")
	return nil
}

func (r *GormAccountRepository) FindByID(id uint) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Preload("Profile").First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "account", "find_by_id", "not_found")
			return nil, ErrAccountNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "account", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "account", "find_by_id", "success")
	return &account, nil
}

func (r *GormAccountRepository) FindByEmail(email string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Preload("Profile").
		Where("email = ?", strings.TrimSpace(strings.ToLower(email))).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "account", "find_by_email", "not_found")
			return nil, ErrAccountNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "account", "find_by_email", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "account", "find_by_email", "success")
	return &account, nil
}

func (r *GormAccountRepository) FindByHandle(handle string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.Preload("Profile").
		Where("handle = ?", strings.TrimSpace(handle)).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "account", "find_by_handle", "not_found")
			return nil, ErrAccountNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "account", "find_by_handle", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "account", "find_by_handle", "success")
	return &account, nil
}

// ActivateWithCode flips the account active, marks the profile email as
// verified, and consumes the verification code in a single transaction so a
// crash between the writes cannot leave a verified profile on an inactive
// account.
func (r *GormAccountRepository) ActivateWithCode(accountID, codeID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Account{}).Where("id = ?", accountID).Update("active", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		res = tx.Model(&domain.Profile{}).Where("account_id = ?", accountID).Update("email_verified", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProfileNotFound
		}
		res = tx.Model(&domain.VerificationCode{}).
			Where("id = ? AND used = ?", codeID, false).
			Update("used", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCodeNotFound
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrProfileNotFound) || errors.Is(err, ErrCodeNotFound) {
			outcome = "not_found"
		}
		observability.RecordRepositoryOperation(context.Background(), "account", "activate", outcome)
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "account", "activate", "success")
	return nil
}

func (r *GormAccountRepository) UpdateProfile(profile *domain.Profile) error {
	res := r.db.Model(&domain.Profile{}).Where("account_id = ?", profile.AccountID).Updates(map[string]any{
		"full_name":   strings.TrimSpace(profile.FullName),
		"phone":       strings.TrimSpace(profile.Phone),
		"birth_date":  profile.BirthDate,
		"address":     strings.TrimSpace(profile.Address),
		"postal_code": strings.TrimSpace(profile.PostalCode),
		"city":        strings.TrimSpace(profile.City),
		"district":    strings.TrimSpace(profile.District),
		"bio":         strings.TrimSpace(profile.Bio),
		"newsletter":  profile.Newsletter,
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "profile", "update", "not_found")
		return ErrProfileNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "update", "success")
	return nil
}

func (r *GormAccountRepository) UpdatePhotoKey(accountID uint, photoKey string) error {
	res := r.db.Model(&domain.Profile{}).Where("account_id = ?", accountID).Update("photo_key", photoKey)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "profile", "update_photo", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "profile", "update_photo", "not_found")
		return ErrProfileNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "profile", "update_photo", "success")
	return nil
}
