package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newRepositoryDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Account{},
		&domain.Profile{},
		&domain.VerificationCode{},
		&domain.Category{},
		&domain.Event{},
		&domain.Enrollment{},
		&domain.Certificate{},
		&domain.Evaluation{},
		&domain.Article{},
	); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return db
}
