package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var ErrEvaluationNotFound = errors.New("evaluation not found")

type EvaluationRepository interface {
	Upsert(evaluation *domain.Evaluation) error
	FindByEnrollment(enrollmentID uint) (*domain.Evaluation, error)
	AverageRating(eventID uint) (float64, int64, error)
}

type GormEvaluationRepository struct{ db *gorm.DB }

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &GormEvaluationRepository{db: db}
}

// Upsert writes the enrollment's single evaluation row. A second submission
// replaces the first.
func (r *GormEvaluationRepository) Upsert(evaluation *domain.Evaluation) error {
	evaluation.Comment = strings.TrimSpace(evaluation.Comment)
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "enrollment_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(evaluation).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "evaluation", "upsert", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "evaluation", "upsert", "success")
	return nil
}

func (r *GormEvaluationRepository) FindByEnrollment(enrollmentID uint) (*domain.Evaluation, error) {
	var evaluation domain.Evaluation
	err := r.db.Where("enrollment_id = ?", enrollmentID).First(&evaluation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "evaluation", "find_by_enrollment", "not_found")
			return nil, ErrEvaluationNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "evaluation", "find_by_enrollment", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "evaluation", "find_by_enrollment", "success")
	return &evaluation, nil
}

// AverageRating aggregates the event's ratings across all of its enrollments.
func (r *GormEvaluationRepository) AverageRating(eventID uint) (float64, int64, error) {
	type agg struct {
		Avg   float64
		Count int64
	}
	var out agg
	err := r.db.Model(&domain.Evaluation{}).
		Joins("JOIN enrollments ON enrollments.id = evaluations.enrollment_id").
		Where("enrollments.event_id = ?", eventID).
		Select("COALESCE(AVG(evaluations.rating), 0) AS avg, COUNT(*) AS count").
		Scan(&out).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "evaluation", "average_rating", "error")
		return 0, 0, err
	}
	observability.RecordRepositoryOperation(context.Background(), "evaluation", "average_rating", "success")
	return out.Avg, out.Count, nil
}
