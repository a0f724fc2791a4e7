package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"gorm.io/gorm"
)

func seedPublishedEvent(t *testing.T, db *gorm.DB, capacity int) *domain.Event {
	t.Helper()
	now := time.Now().UTC()
	event := &domain.Event{
		Title:       "Community Workshop",
		CategoryID:  1,
		StartsAt:    now.Add(24 * time.Hour),
		EndsAt:      now.Add(26 * time.Hour),
		Capacity:    capacity,
		Status:      domain.EventPublished,
		OrganizerID: 1,
	}
	if err := db.Create(event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}

func TestEnrollmentRepositoryEnrollTx(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()
	event := seedPublishedEvent(t, db, 2)

	enrollment := &domain.Enrollment{EventID: event.ID, AccountID: 10, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, enrollment); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if enrollment.ID == 0 {
		t.Fatal("expected enrollment id to be assigned")
	}

	dup := &domain.Enrollment{EventID: event.ID, AccountID: 10, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, dup); !errors.Is(err, ErrDuplicateEnrollment) {
		t.Fatalf("expected ErrDuplicateEnrollment, got %v", err)
	}
}

func TestEnrollmentRepositoryEnrollTxRejectsUnpublished(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	event := seedPublishedEvent(t, db, 0)
	if err := db.Model(&domain.Event{}).Where("id = ?", event.ID).Update("status", domain.EventDraft).Error; err != nil {
		t.Fatalf("set draft: %v", err)
	}

	e := &domain.Enrollment{EventID: event.ID, AccountID: 10, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, e); !errors.Is(err, ErrEventNotOpen) {
		t.Fatalf("expected ErrEventNotOpen, got %v", err)
	}

	missing := &domain.Enrollment{EventID: event.ID + 99, AccountID: 10, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, missing); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestEnrollmentRepositoryCapacityCountsSeatedOnly(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()
	event := seedPublishedEvent(t, db, 1)

	pending := &domain.Enrollment{EventID: event.ID, AccountID: 10, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, pending); err != nil {
		t.Fatalf("enroll pending: %v", err)
	}

	// A pending enrollment holds no seat, so the second account still fits.
	second := &domain.Enrollment{EventID: event.ID, AccountID: 11, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, second); err != nil {
		t.Fatalf("enroll with only pending seats taken: %v", err)
	}

	if err := repo.Confirm(pending.ID, time.Now().UTC()); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	third := &domain.Enrollment{EventID: event.ID, AccountID: 12, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, third); !errors.Is(err, ErrEventFull) {
		t.Fatalf("expected ErrEventFull once the seat is confirmed, got %v", err)
	}
}

func TestEnrollmentRepositoryUnlimitedCapacity(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()
	event := seedPublishedEvent(t, db, 0)

	for accountID := uint(10); accountID < 15; accountID++ {
		e := &domain.Enrollment{EventID: event.ID, AccountID: accountID, Status: domain.EnrollmentConfirmed}
		if err := repo.EnrollTx(ctx, e); err != nil {
			t.Fatalf("enroll account %d: %v", accountID, err)
		}
	}
}

func TestEnrollmentRepositoryTransitions(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()
	event := seedPublishedEvent(t, db, 0)
	now := time.Now().UTC()

	e := &domain.Enrollment{EventID: event.ID, AccountID: 10, Status: domain.EnrollmentPending}
	if err := repo.EnrollTx(ctx, e); err != nil {
		t.Fatalf("enroll: %v", err)
	}

	// Presence before confirmation is not a legal transition.
	if err := repo.MarkPresent(e.ID, now); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("expected mark-present of pending enrollment to fail, got %v", err)
	}

	if err := repo.Confirm(e.ID, now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := repo.Confirm(e.ID, now); !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("expected repeated confirm to fail, got %v", err)
	}

	if err := repo.MarkPresent(e.ID, now); err != nil {
		t.Fatalf("mark present: %v", err)
	}

	got, err := repo.FindByID(e.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != domain.EnrollmentPresent || !got.Present {
		t.Fatalf("unexpected state after present: %+v", got)
	}
	if got.ConfirmedAt == nil || got.PresentAt == nil {
		t.Fatalf("expected transition timestamps to be set: %+v", got)
	}
	if got.Event == nil || got.Event.ID != event.ID {
		t.Fatalf("expected event preloaded, got %+v", got.Event)
	}
}

func TestEnrollmentRepositoryListByAccountPagination(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		event := seedPublishedEvent(t, db, 0)
		e := &domain.Enrollment{EventID: event.ID, AccountID: 10, Status: domain.EnrollmentPending}
		if err := repo.EnrollTx(ctx, e); err != nil {
			t.Fatalf("enroll %d: %v", i, err)
		}
	}

	page, err := repo.ListByAccount(10, PageRequest{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d items=%d", page.Total, page.TotalPages, len(page.Items))
	}

	other, err := repo.ListByAccount(99, PageRequest{})
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if other.Total != 0 || len(other.Items) != 0 {
		t.Fatalf("expected empty page for stranger account, got %+v", other)
	}
}
