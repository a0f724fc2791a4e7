package database

import (
	"testing"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/security"
)

func TestSeedSyncCreatesCategoriesAndNoopOnSecondRun(t *testing.T) {
	db := newSQLiteDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	report1, err := SeedSync(db)
	if err != nil {
		t.Fatalf("seed sync first run: %v", err)
	}
	if report1.Noop || report1.CreatedCategories == 0 {
		t.Fatalf("expected first seed run to create categories: %+v", report1)
	}

	report2, err := SeedSync(db)
	if err != nil {
		t.Fatalf("seed sync second run: %v", err)
	}
	if !report2.Noop || report2.CreatedCategories != 0 {
		t.Fatalf("expected second seed run to be a no-op: %+v", report2)
	}
}

func TestSeedStaffCreatesActiveStaffAccountOnce(t *testing.T) {
	db := newSQLiteDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	created, err := SeedStaff(db, "admin", "Admin@Example.org", "long-enough-secret")
	if err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	if !created {
		t.Fatal("expected staff account to be created")
	}

	var account domain.Account
	if err := db.Preload("Profile").Where("email = ?", "admin@example.org").First(&account).Error; err != nil {
		t.Fatalf("load staff account: %v", err)
	}
	if !account.Staff || !account.Active {
		t.Fatalf("expected active staff account, got %+v", account)
	}
	if account.Profile == nil || !account.Profile.EmailVerified {
		t.Fatal("expected verified profile on seeded staff account")
	}
	if !security.CheckPassword(account.PasswordHash, "long-enough-secret") {
		t.Fatal("expected stored hash to match the seed password")
	}

	again, err := SeedStaff(db, "admin", "admin@example.org", "long-enough-secret")
	if err != nil {
		t.Fatalf("seed staff second run: %v", err)
	}
	if again {
		t.Fatal("expected second seed run to leave the account untouched")
	}
}

func TestSeedStaffRejectsWeakInput(t *testing.T) {
	db := newSQLiteDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := SeedStaff(db, "admin", "admin@example.org", "short"); err == nil {
		t.Fatal("expected error for short password")
	}
	if _, err := SeedStaff(db, "", "admin@example.org", "long-enough-secret"); err == nil {
		t.Fatal("expected error for missing handle")
	}
}
