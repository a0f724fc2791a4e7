package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DevDeP100/Shalom.pt/internal/database"
	"github.com/DevDeP100/Shalom.pt/internal/domain"
)

func TestNewRootCommandStructure(t *testing.T) {
	cmd := NewRootCommand()
	if cmd.Use != "export" {
		t.Fatalf("unexpected root use: %s", cmd.Use)
	}
	if len(cmd.Commands()) != 4 {
		t.Fatalf("expected 4 subcommands, got %d", len(cmd.Commands()))
	}
	for _, name := range []string{"events", "accounts", "articles", "all"} {
		if c, _, err := cmd.Find([]string{name}); err != nil || c == nil {
			t.Fatalf("expected subcommand %q: err=%v", name, err)
		}
	}
}

func newExportDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestExportEventsWritesSnapshot(t *testing.T) {
	db := newExportDBForTest(t)
	category := domain.Category{Name: "Formação"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	event := domain.Event{
		Title:      "Retiro de Verão",
		CategoryID: category.ID,
		StartsAt:   time.Now().Add(24 * time.Hour),
		EndsAt:     time.Now().Add(48 * time.Hour),
		Status:     domain.EventPublished,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	snap := &Snapshot{ExportedAt: time.Now().UTC()}
	if err := exportEvents(context.Background(), db, snap); err != nil {
		t.Fatalf("export events: %v", err)
	}
	if len(snap.Categories) != 1 || len(snap.Events) != 1 {
		t.Fatalf("unexpected snapshot counts: categories=%d events=%d", len(snap.Categories), len(snap.Events))
	}

	out := filepath.Join(t.TempDir(), "export.json")
	if err := writeSnapshot(out, snap); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(decoded.Events) != 1 || decoded.Events[0].Title != "Retiro de Verão" {
		t.Fatalf("unexpected decoded snapshot: %+v", decoded.Events)
	}
}

func TestExportAllIncludesAccounts(t *testing.T) {
	db := newExportDBForTest(t)
	account := domain.Account{
		Handle:       "maria",
		Email:        "maria@example.org",
		PasswordHash: "x",
		Profile:      &domain.Profile{FullName: "Maria"},
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}

	snap := &Snapshot{}
	if err := exportAll(context.Background(), db, snap); err != nil {
		t.Fatalf("export all: %v", err)
	}
	if len(snap.Accounts) != 1 {
		t.Fatalf("expected one account, got %d", len(snap.Accounts))
	}
	if snap.Accounts[0].Profile == nil || snap.Accounts[0].Profile.FullName != "Maria" {
		t.Fatalf("expected preloaded profile, got %+v", snap.Accounts[0].Profile)
	}
}

func TestOpenDBRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := openDB(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
}
