package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
	"github.com/DevDeP100/Shalom.pt/internal/validation"
)

type EventInput struct {
	Title          string    `validate:"required,max=200"`
	Description    string    `validate:"max=10000"`
	CategoryID     uint      `validate:"required"`
	StartsAt       time.Time `validate:"required"`
	EndsAt         time.Time `validate:"required"`
	Location       string    `validate:"max=200"`
	Address        string    `validate:"max=512"`
	Capacity       int       `validate:"gte=0"`
	Price          int64     `validate:"gte=0"`
	ExternalURL    string    `validate:"omitempty,url,max=512"`
	UseExternalURL bool
	Featured       bool
}

// EventDetail pairs an event with its live seat availability, -1 when
// unlimited.
type EventDetail struct {
	Event          *domain.Event
	AvailableSeats int
}

// HomePage is the public landing payload: featured plus next upcoming
// events.
type HomePage struct {
	Featured []domain.Event
	Upcoming []domain.Event
}

// EventService covers public browsing and the staff-side event lifecycle.
type EventService struct {
	events   repository.EventRepository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewEventService(events repository.EventRepository, validate *validator.Validate, logger *slog.Logger) *EventService {
	return &EventService{events: events, validate: validate, logger: logger, now: time.Now}
}

// ListPublished pages through published events. With upcomingOnly set, events
// that already started are dropped.
func (s *EventService) ListPublished(ctx context.Context, categoryID uint, upcomingOnly bool, page repository.PageRequest) (repository.PageResult[domain.Event], error) {
	filter := repository.EventListFilter{
		Status:     domain.EventPublished,
		CategoryID: categoryID,
	}
	if upcomingOnly {
		now := s.now().UTC()
		filter.StartsAfter = &now
	}
	return s.events.List(filter, page)
}

// Get returns the event with its remaining seats.
func (s *EventService) Get(ctx context.Context, id uint) (*EventDetail, error) {
	event, err := s.events.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return nil, err
	}
	seated, err := s.events.CountConfirmed(id)
	if err != nil {
		return nil, err
	}
	return &EventDetail{Event: event, AvailableSeats: event.AvailableSeats(int(seated))}, nil
}

// Home assembles the landing page: featured events and the next few
// upcoming ones.
func (s *EventService) Home(ctx context.Context) (*HomePage, error) {
	featured, err := s.events.List(repository.EventListFilter{
		Status:       domain.EventPublished,
		FeaturedOnly: true,
	}, repository.PageRequest{PageSize: 6})
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	upcoming, err := s.events.List(repository.EventListFilter{
		Status:      domain.EventPublished,
		StartsAfter: &now,
	}, repository.PageRequest{PageSize: 6})
	if err != nil {
		return nil, err
	}
	return &HomePage{Featured: featured.Items, Upcoming: upcoming.Items}, nil
}

// Create stores a new draft event.
func (s *EventService) Create(ctx context.Context, organizerID uint, in EventInput) (*domain.Event, error) {
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}
	event := &domain.Event{
		Title:          in.Title,
		Description:    in.Description,
		CategoryID:     in.CategoryID,
		StartsAt:       in.StartsAt,
		EndsAt:         in.EndsAt,
		Location:       in.Location,
		Address:        in.Address,
		Capacity:       in.Capacity,
		Price:          in.Price,
		ExternalURL:    in.ExternalURL,
		UseExternalURL: in.UseExternalURL,
		Featured:       in.Featured,
		Status:         domain.EventDraft,
		OrganizerID:    organizerID,
	}
	if err := s.events.Create(event); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "event created", "event_id", event.ID, "organizer_id", organizerID)
	return event, nil
}

// Update rewrites an event's editable fields.
func (s *EventService) Update(ctx context.Context, id uint, in EventInput) (*domain.Event, error) {
	if err := s.checkInput(ctx, in); err != nil {
		return nil, err
	}
	current, err := s.events.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return nil, err
	}
	event := &domain.Event{
		ID:             id,
		ImageKey:       current.ImageKey,
		Title:          in.Title,
		Description:    in.Description,
		CategoryID:     in.CategoryID,
		StartsAt:       in.StartsAt,
		EndsAt:         in.EndsAt,
		Location:       in.Location,
		Address:        in.Address,
		Capacity:       in.Capacity,
		Price:          in.Price,
		ExternalURL:    in.ExternalURL,
		UseExternalURL: in.UseExternalURL,
		Featured:       in.Featured,
	}
	if err := s.events.Update(event); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return nil, err
	}
	return s.events.FindByID(id)
}

// SetImage points the event at a freshly uploaded image object.
func (s *EventService) SetImage(ctx context.Context, id uint, imageKey string) error {
	event, err := s.events.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return err
	}
	event.ImageKey = imageKey
	return s.events.Update(event)
}

// Publish opens a draft event for enrollment.
func (s *EventService) Publish(ctx context.Context, id uint) error {
	return s.transition(ctx, id, domain.EventDraft, domain.EventPublished)
}

// Cancel closes the event; existing enrollments stay readable.
func (s *EventService) Cancel(ctx context.Context, id uint) error {
	event, err := s.events.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return err
	}
	if event.Status == domain.EventCancelled {
		return nil
	}
	if event.Status == domain.EventFinished {
		return domain.NewError(domain.KindState, "finished events cannot be cancelled")
	}
	return s.events.SetStatus(id, domain.EventCancelled)
}

// Finish marks a published event as over.
func (s *EventService) Finish(ctx context.Context, id uint) error {
	return s.transition(ctx, id, domain.EventPublished, domain.EventFinished)
}

func (s *EventService) transition(ctx context.Context, id uint, from, to domain.EventStatus) error {
	event, err := s.events.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.WrapError(domain.KindNotFound, "event not found", err)
		}
		return err
	}
	if event.Status != from {
		return domain.NewError(domain.KindState, "event is not "+string(from))
	}
	if err := s.events.SetStatus(id, to); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "event status changed", "event_id", id, "status", to)
	return nil
}

func (s *EventService) checkInput(ctx context.Context, in EventInput) error {
	if err := validation.Validate(ctx, s.validate, in); err != nil {
		return err
	}
	if !in.EndsAt.After(in.StartsAt) {
		return domain.NewError(domain.KindValidation, "event must end after it starts")
	}
	if in.UseExternalURL && in.ExternalURL == "" {
		return domain.NewError(domain.KindValidation, "external signup requires an external URL")
	}
	return nil
}

// ListCategories returns all categories, sorted by name.
func (s *EventService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.events.ListCategories()
}

// CreateCategory adds a category for grouping events and articles.
func (s *EventService) CreateCategory(ctx context.Context, category *domain.Category) error {
	if category.Name == "" {
		return domain.NewError(domain.KindValidation, "category name is required")
	}
	return s.events.CreateCategory(category)
}
