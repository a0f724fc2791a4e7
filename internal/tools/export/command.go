// Package export dumps site data to JSON files, used when moving the
// database between hosting providers.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/config"
	"github.com/DevDeP100/Shalom.pt/internal/database"
	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/tools/common"
)

type options struct {
	envFile string
	out     string
	ci      bool
	timeout time.Duration
}

// Snapshot is the exported shape: every table the site owns.
type Snapshot struct {
	ExportedAt time.Time                 `json:"exported_at"`
	Accounts   []domain.Account          `json:"accounts,omitempty"`
	Categories []domain.Category         `json:"categories,omitempty"`
	Events     []domain.Event            `json:"events,omitempty"`
	Enrolled   []domain.Enrollment       `json:"enrollments,omitempty"`
	Certs      []domain.Certificate      `json:"certificates,omitempty"`
	Reviews    []domain.Evaluation       `json:"evaluations,omitempty"`
	Articles   []domain.Article          `json:"articles,omitempty"`
	Codes      []domain.VerificationCode `json:"verification_codes,omitempty"`
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "export",
		Short:         "Export site data to a JSON snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before connecting")
	root.PersistentFlags().StringVar(&opts.out, "out", "export.json", "output file path")
	root.PersistentFlags().BoolVar(&opts.ci, "ci", false, "emit a single JSON result line for CI")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall timeout")

	root.AddCommand(
		newSubCommand(opts, "events", "Export categories, events and enrollments", exportEvents),
		newSubCommand(opts, "accounts", "Export accounts and profiles", exportAccounts),
		newSubCommand(opts, "articles", "Export news articles", exportArticles),
		newSubCommand(opts, "all", "Export every table", exportAll),
	)
	return root
}

func newSubCommand(opts *options, use, short string, fill func(ctx context.Context, db *gorm.DB, snap *Snapshot) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "export "+use, fill)
			if opts.ci {
				common.PrintCIResult(err == nil, "export "+use, details, err)
				return err
			}
			if err != nil {
				return err
			}
			for _, d := range details {
				cmd.Println(d)
			}
			return nil
		},
	}
}

func run(opts *options, title string, fill func(ctx context.Context, db *gorm.DB, snap *Snapshot) error) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	db, err := openDB(opts.envFile)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{ExportedAt: time.Now().UTC()}
	if err := fill(ctx, db, snap); err != nil {
		return nil, err
	}
	if err := writeSnapshot(opts.out, snap); err != nil {
		return nil, err
	}
	return snap.details(opts.out), nil
}

func openDB(envFile string) (*gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return database.Open(&config.Config{DatabaseURL: dsn})
}

func exportEvents(ctx context.Context, db *gorm.DB, snap *Snapshot) error {
	if err := db.WithContext(ctx).Find(&snap.Categories).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	if err := db.WithContext(ctx).Find(&snap.Events).Error; err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if err := db.WithContext(ctx).Find(&snap.Enrolled).Error; err != nil {
		return fmt.Errorf("load enrollments: %w", err)
	}
	if err := db.WithContext(ctx).Find(&snap.Certs).Error; err != nil {
		return fmt.Errorf("load certificates: %w", err)
	}
	if err := db.WithContext(ctx).Find(&snap.Reviews).Error; err != nil {
		return fmt.Errorf("load evaluations: %w", err)
	}
	return nil
}

func exportAccounts(ctx context.Context, db *gorm.DB, snap *Snapshot) error {
	if err := db.WithContext(ctx).Preload("Profile").Find(&snap.Accounts).Error; err != nil {
		return fmt.Errorf("load accounts: %w", err)
	}
	return nil
}

func exportArticles(ctx context.Context, db *gorm.DB, snap *Snapshot) error {
	if err := db.WithContext(ctx).Find(&snap.Articles).Error; err != nil {
		return fmt.Errorf("load articles: %w", err)
	}
	return nil
}

func exportAll(ctx context.Context, db *gorm.DB, snap *Snapshot) error {
	if err := exportAccounts(ctx, db, snap); err != nil {
		return err
	}
	if err := exportEvents(ctx, db, snap); err != nil {
		return err
	}
	if err := exportArticles(ctx, db, snap); err != nil {
		return err
	}
	if err := db.WithContext(ctx).Find(&snap.Codes).Error; err != nil {
		return fmt.Errorf("load verification codes: %w", err)
	}
	return nil
}

func writeSnapshot(path string, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *Snapshot) details(out string) []string {
	return []string{
		fmt.Sprintf("out=%s", out),
		fmt.Sprintf("accounts=%d", len(s.Accounts)),
		fmt.Sprintf("categories=%d", len(s.Categories)),
		fmt.Sprintf("events=%d", len(s.Events)),
		fmt.Sprintf("enrollments=%d", len(s.Enrolled)),
		fmt.Sprintf("certificates=%d", len(s.Certs)),
		fmt.Sprintf("evaluations=%d", len(s.Reviews)),
		fmt.Sprintf("articles=%d", len(s.Articles)),
	}
}
