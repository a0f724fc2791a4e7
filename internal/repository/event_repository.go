package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// EventListFilter narrows event listings. Zero values mean "no constraint".
type EventListFilter struct {
	Status       domain.EventStatus
	CategoryID   uint
	StartsAfter  *time.Time
	FeaturedOnly bool
}

type EventRepository interface {
	Create(event *domain.Event) error
	Update(event *domain.Event) error
	FindByID(id uint) (*domain.Event, error)
	List(filter EventListFilter, page PageRequest) (PageResult[domain.Event], error)
	SetStatus(id uint, status domain.EventStatus) error
	CountConfirmed(eventID uint) (int64, error)
	ListCategories() ([]domain.Category, error)
	CreateCategory(category *domain.Category) error
}

type GormEventRepository struct{ db *gorm.DB }

func NewEventRepository(db *gorm.DB) EventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(event *domain.Event) error {
	if err := r.db.Create(event).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "event", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "event", "create", "success")
	return nil
}

func (r *GormEventRepository) Update(event *domain.Event) error {
	res := r.db.Model(&domain.Event{}).Where("id = ?", event.ID).Updates(map[string]any{
		"title":            event.Title,
		"description":      event.Description,
		"category_id":      event.CategoryID,
		"starts_at":        event.StartsAt,
		"ends_at":          event.EndsAt,
		"location":         event.Location,
		"address":          event.Address,
		"capacity":         event.Capacity,
		"price":            event.Price,
		"image_key":        event.ImageKey,
		"external_url":     event.ExternalURL,
		"use_external_url": event.UseExternalURL,
		"featured":         event.Featured,
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "event", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "event", "update", "not_found")
		return ErrEventNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "event", "update", "success")
	return nil
}

func (r *GormEventRepository) FindByID(id uint) (*domain.Event, error) {
	var event domain.Event
	err := r.db.Preload("Category").First(&event, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "event", "find_by_id", "not_found")
			return nil, ErrEventNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "event", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "event", "find_by_id", "success")
	return &event, nil
}

func (r *GormEventRepository) List(filter EventListFilter, page PageRequest) (PageResult[domain.Event], error) {
	page = normalizePageRequest(page)

	q := r.db.Model(&domain.Event{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.StartsAfter != nil {
		q = q.Where("starts_at >= ?", *filter.StartsAfter)
	}
	if filter.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "event", "list", "error")
		return PageResult[domain.Event]{}, err
	}

	var events []domain.Event
	err := q.Preload("Category").
		Order("starts_at asc").Order("id asc").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&events).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "event", "list", "error")
		return PageResult[domain.Event]{}, err
	}
	observability.RecordRepositoryOperation(context.Background(), "event", "list", "success")
	return PageResult[domain.Event]{
		Items:      events,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormEventRepository) SetStatus(id uint, status domain.EventStatus) error {
	res := r.db.Model(&domain.Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "event", "set_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "event", "set_status", "not_found")
		return ErrEventNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "event", "set_status", "success")
	return nil
}

// CountConfirmed counts the enrollments holding seats: confirmed plus those
// already marked present, which started as confirmed seats.
func (r *GormEventRepository) CountConfirmed(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Enrollment{}).
		Where("event_id = ? AND status IN ?", eventID, []domain.EnrollmentStatus{domain.EnrollmentConfirmed, domain.EnrollmentPresent}).
		Count(&count).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "event", "count_confirmed", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "event", "count_confirmed", "success")
	return count, nil
}

func (r *GormEventRepository) ListCategories() ([]domain.Category, error) {
	var categories []domain.Category
	if err := r.db.Order("name asc").Find(&categories).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "category", "list", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "category", "list", "success")
	return categories, nil
}

func (r *GormEventRepository) CreateCategory(category *domain.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "category", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "category", "create", "success")
	return nil
}
