package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var (
	ErrEnrollmentNotFound  = errors.New("enrollment not found")
	ErrDuplicateEnrollment = errors.New("duplicate enrollment")
	ErrEventFull           = errors.New("event is full")
	ErrEventNotOpen        = errors.New("event not open for enrollment")
)

// seatHolders are the statuses that occupy a seat against the event capacity.
var seatHolders = []domain.EnrollmentStatus{domain.EnrollmentConfirmed, domain.EnrollmentPresent}

type EnrollmentRepository interface {
	EnrollTx(ctx context.Context, enrollment *domain.Enrollment) error
	FindByID(id uint) (*domain.Enrollment, error)
	FindByEventAccount(eventID, accountID uint) (*domain.Enrollment, error)
	ListByAccount(accountID uint, page PageRequest) (PageResult[domain.Enrollment], error)
	ListByEvent(eventID uint) ([]domain.Enrollment, error)
	SetStatus(id uint, status domain.EnrollmentStatus) error
	Confirm(id uint, at time.Time) error
	MarkPresent(id uint, at time.Time) error
}

type GormEnrollmentRepository struct{ db *gorm.DB }

func NewEnrollmentRepository(db *gorm.DB) EnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// EnrollTx inserts the enrollment after re-checking, inside one transaction,
// that the event is published, the account is not already enrolled, and a
// seat remains. The event row is locked for the duration so two concurrent
// enrollments on the last seat serialize instead of overselling.
func (r *GormEnrollmentRepository) EnrollTx(ctx context.Context, enrollment *domain.Enrollment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var event domain.Event
		if err := q.First(&event, enrollment.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if event.Status != domain.EventPublished {
			return ErrEventNotOpen
		}

		var existing int64
		if err := tx.Model(&domain.Enrollment{}).
			Where("event_id = ? AND account_id = ?", enrollment.EventID, enrollment.AccountID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicateEnrollment
		}

		if !event.Unlimited() {
			var seated int64
			if err := tx.Model(&domain.Enrollment{}).
				Where("event_id = ? AND status IN ?", enrollment.EventID, seatHolders).
				Count(&seated).Error; err != nil {
				return err
			}
			if event.Full(int(seated)) {
				return ErrEventFull
			}
		}

		return tx.Create(enrollment).Error
	})
	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, ErrEventNotFound), errors.Is(err, ErrEnrollmentNotFound):
			outcome = "not_found"
		case errors.Is(err, ErrDuplicateEnrollment), errors.Is(err, ErrEventFull), errors.Is(err, ErrEventNotOpen):
			outcome = "rejected"
		}
		observability.RecordRepositoryOperation(ctx, "enrollment", "enroll", outcome)
		return err
	}
	observability.RecordRepositoryOperation(ctx, "enrollment", "enroll", "success")
	return nil
}

func (r *GormEnrollmentRepository) FindByID(id uint) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.Preload("Event").First(&enrollment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "enrollment", "find_by_id", "not_found")
			return nil, ErrEnrollmentNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "find_by_id", "success")
	return &enrollment, nil
}

func (r *GormEnrollmentRepository) FindByEventAccount(eventID, accountID uint) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.Preload("Event").
		Where("event_id = ? AND account_id = ?", eventID, accountID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "enrollment", "find_by_event_account", "not_found")
			return nil, ErrEnrollmentNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "find_by_event_account", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "find_by_event_account", "success")
	return &enrollment, nil
}

func (r *GormEnrollmentRepository) ListByAccount(accountID uint, page PageRequest) (PageResult[domain.Enrollment], error) {
	page = normalizePageRequest(page)

	q := r.db.Model(&domain.Enrollment{}).Where("account_id = ?", accountID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "list_by_account", "error")
		return PageResult[domain.Enrollment]{}, err
	}

	var enrollments []domain.Enrollment
	err := q.Preload("Event").
		Order("created_at desc").Order("id desc").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&enrollments).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "list_by_account", "error")
		return PageResult[domain.Enrollment]{}, err
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "list_by_account", "success")
	return PageResult[domain.Enrollment]{
		Items:      enrollments,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormEnrollmentRepository) ListByEvent(eventID uint) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	err := r.db.Where("event_id = ?", eventID).Order("id asc").Find(&enrollments).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "list_by_event", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "list_by_event", "success")
	return enrollments, nil
}

func (r *GormEnrollmentRepository) SetStatus(id uint, status domain.EnrollmentStatus) error {
	res := r.db.Model(&domain.Enrollment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "set_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "set_status", "not_found")
		return ErrEnrollmentNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "set_status", "success")
	return nil
}

// Confirm flips pending to confirmed. The status guard in the WHERE clause
// keeps a repeated confirm, or one racing a cancel, from resurrecting a seat.
func (r *GormEnrollmentRepository) Confirm(id uint, at time.Time) error {
	res := r.db.Model(&domain.Enrollment{}).
		Where("id = ? AND status = ?", id, domain.EnrollmentPending).
		Updates(map[string]any{"status": domain.EnrollmentConfirmed, "confirmed_at": at})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "confirm", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "confirm", "not_found")
		return ErrEnrollmentNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "confirm", "success")
	return nil
}

func (r *GormEnrollmentRepository) MarkPresent(id uint, at time.Time) error {
	res := r.db.Model(&domain.Enrollment{}).
		Where("id = ? AND status = ?", id, domain.EnrollmentConfirmed).
		Updates(map[string]any{"status": domain.EnrollmentPresent, "present": true, "present_at": at})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "mark_present", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "enrollment", "mark_present", "not_found")
		return ErrEnrollmentNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "enrollment", "mark_present", "success")
	return nil
}
