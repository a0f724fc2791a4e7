package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
)

func TestEventRepositoryCreateUpdateFind(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEventRepository(db)
	now := time.Now().UTC()

	category := &domain.Category{Name: "Workshops"}
	if err := repo.CreateCategory(category); err != nil {
		t.Fatalf("create category: %v", err)
	}

	event := &domain.Event{
		Title:       "Go Basics",
		CategoryID:  category.ID,
		StartsAt:    now.Add(48 * time.Hour),
		EndsAt:      now.Add(50 * time.Hour),
		Capacity:    30,
		OrganizerID: 1,
		Status:      domain.EventDraft,
	}
	if err := repo.Create(event); err != nil {
		t.Fatalf("create event: %v", err)
	}

	event.Title = "Go Fundamentals"
	event.Capacity = 25
	if err := repo.Update(event); err != nil {
		t.Fatalf("update event: %v", err)
	}

	got, err := repo.FindByID(event.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Title != "Go Fundamentals" || got.Capacity != 25 {
		t.Fatalf("unexpected event after update: %+v", got)
	}
	if got.Category == nil || got.Category.Name != "Workshops" {
		t.Fatalf("expected category preloaded, got %+v", got.Category)
	}

	if _, err := repo.FindByID(event.ID + 99); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	if err := repo.Update(&domain.Event{ID: event.ID + 99, Title: "x"}); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected update of missing event to fail, got %v", err)
	}
}

func TestEventRepositoryListFilters(t *testing.T) {
	db := newRepositoryDBForTest(t)
	repo := NewEventRepository(db)
	now := time.Now().UTC()

	talks := &domain.Category{Name: "Talks"}
	social := &domain.Category{Name: "Social"}
	for _, c := range []*domain.Category{talks, social} {
		if err := repo.CreateCategory(c); err != nil {
			t.Fatalf("create category: %v", err)
		}
	}

	seed := []*domain.Event{
		{Title: "Published Talk", CategoryID: talks.ID, StartsAt: now.Add(24 * time.Hour), EndsAt: now.Add(26 * time.Hour), Status: domain.EventPublished, OrganizerID: 1},
		{Title: "Featured Social", CategoryID: social.ID, StartsAt: now.Add(48 * time.Hour), EndsAt: now.Add(50 * time.Hour), Status: domain.EventPublished, Featured: true, OrganizerID: 1},
		{Title: "Old Talk", CategoryID: talks.ID, StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-46 * time.Hour), Status: domain.EventPublished, OrganizerID: 1},
		{Title: "Hidden Draft", CategoryID: talks.ID, StartsAt: now.Add(24 * time.Hour), EndsAt: now.Add(26 * time.Hour), Status: domain.EventDraft, OrganizerID: 1},
	}
	for _, e := range seed {
		if err := repo.Create(e); err != nil {
			t.Fatalf("create %s: %v", e.Title, err)
		}
	}

	published, err := repo.List(EventListFilter{Status: domain.EventPublished}, PageRequest{})
	if err != nil {
		t.Fatalf("list published: %v", err)
	}
	if published.Total != 3 {
		t.Fatalf("expected 3 published events, got %d", published.Total)
	}

	upcoming, err := repo.List(EventListFilter{Status: domain.EventPublished, StartsAfter: &now}, PageRequest{})
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if upcoming.Total != 2 {
		t.Fatalf("expected 2 upcoming events, got %d", upcoming.Total)
	}
	if len(upcoming.Items) != 2 || upcoming.Items[0].Title != "Published Talk" {
		t.Fatalf("expected soonest-first ordering, got %+v", upcoming.Items)
	}

	featured, err := repo.List(EventListFilter{FeaturedOnly: true}, PageRequest{})
	if err != nil {
		t.Fatalf("list featured: %v", err)
	}
	if featured.Total != 1 || featured.Items[0].Title != "Featured Social" {
		t.Fatalf("unexpected featured page: %+v", featured.Items)
	}

	byCategory, err := repo.List(EventListFilter{CategoryID: social.ID}, PageRequest{})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if byCategory.Total != 1 {
		t.Fatalf("expected 1 social event, got %d", byCategory.Total)
	}
}

func TestEventRepositorySetStatusAndCountConfirmed(t *testing.T) {
	db := newRepositoryDBForTest(t)
	events := NewEventRepository(db)
	enrollments := NewEnrollmentRepository(db)
	ctx := context.Background()

	event := seedPublishedEvent(t, db, 10)
	now := time.Now().UTC()

	for accountID := uint(10); accountID < 14; accountID++ {
		e := &domain.Enrollment{EventID: event.ID, AccountID: accountID, Status: domain.EnrollmentPending}
		if err := enrollments.EnrollTx(ctx, e); err != nil {
			t.Fatalf("enroll %d: %v", accountID, err)
		}
		if accountID < 12 {
			if err := enrollments.Confirm(e.ID, now); err != nil {
				t.Fatalf("confirm %d: %v", accountID, err)
			}
		}
	}
	// One confirmed seat moves on to present; it still holds the seat.
	first, err := enrollments.FindByEventAccount(event.ID, 10)
	if err != nil {
		t.Fatalf("find first: %v", err)
	}
	if err := enrollments.MarkPresent(first.ID, now); err != nil {
		t.Fatalf("mark present: %v", err)
	}

	confirmed, err := events.CountConfirmed(event.ID)
	if err != nil {
		t.Fatalf("count confirmed: %v", err)
	}
	if confirmed != 2 {
		t.Fatalf("expected 2 seated enrollments, got %d", confirmed)
	}

	if err := events.SetStatus(event.ID, domain.EventFinished); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := events.FindByID(event.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Status != domain.EventFinished {
		t.Fatalf("expected finished status, got %s", got.Status)
	}
	if err := events.SetStatus(event.ID+99, domain.EventCancelled); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}
