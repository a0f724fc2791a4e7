package database

import (
	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Account{},
		&domain.Profile{},
		&domain.VerificationCode{},
		&domain.Category{},
		&domain.Event{},
		&domain.Enrollment{},
		&domain.Certificate{},
		&domain.Evaluation{},
		&domain.Article{},
	)
}
