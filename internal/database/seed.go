package database

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/security"
)

// SeedReport records what SeedSync changed.
type SeedReport struct {
	CreatedCategories int
	CreatedStaff      bool
	Noop              bool
}

var defaultCategories = []domain.Category{
	{Name: "Formação", Description: "Cursos e retiros", Color: "#007bff"},
	{Name: "Encontros", Description: "Encontros e convívios", Color: "#28a745"},
	{Name: "Música", Description: "Concertos e louvor", Color: "#ffc107"},
	{Name: "Solidariedade", Description: "Ações de voluntariado", Color: "#dc3545"},
}

// SeedSync inserts the default categories that the site expects. Running it
// twice is a no-op.
func SeedSync(db *gorm.DB) (SeedReport, error) {
	var report SeedReport
	for _, category := range defaultCategories {
		var existing domain.Category
		err := db.Where("name = ?", category.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return report, fmt.Errorf("lookup category %q: %w", category.Name, err)
		}
		c := category
		if err := db.Create(&c).Error; err != nil {
			return report, fmt.Errorf("create category %q: %w", category.Name, err)
		}
		report.CreatedCategories++
	}
	report.Noop = report.CreatedCategories == 0
	return report, nil
}

// SeedStaff bootstraps the first staff account so a fresh deployment can be
// administered. Existing accounts with the same email are left untouched.
func SeedStaff(db *gorm.DB, handle, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if handle == "" || email == "" || len(password) < 8 {
		return false, errors.New("staff seed requires handle, email and a password of at least 8 chars")
	}
	var existing domain.Account
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("lookup staff account: %w", err)
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash staff password: %w", err)
	}
	account := domain.Account{
		Handle:       strings.ToLower(strings.TrimSpace(handle)),
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		Staff:        true,
		Profile:      &domain.Profile{EmailVerified: true},
	}
	if err := db.Create(&account).Error; err != nil {
		return false, fmt.Errorf("create staff account: %w", err)
	}
	return true, nil
}
