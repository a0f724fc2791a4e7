package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/repository"
)

// EvaluationService records a participant's rating for an attended event.
// One evaluation per enrollment; resubmitting replaces the previous one.
type EvaluationService struct {
	enrollments repository.EnrollmentRepository
	evaluations repository.EvaluationRepository
	logger      *slog.Logger
}

func NewEvaluationService(
	enrollments repository.EnrollmentRepository,
	evaluations repository.EvaluationRepository,
	logger *slog.Logger,
) *EvaluationService {
	return &EvaluationService{
		enrollments: enrollments,
		evaluations: evaluations,
		logger:      logger,
	}
}

func (s *EvaluationService) Submit(ctx context.Context, enrollmentID uint, rating int, comment string) (*domain.Evaluation, error) {
	if !domain.RatingValid(rating) {
		return nil, domain.NewError(domain.KindValidation, "rating must be between 1 and 5")
	}
	enrollment, err := s.enrollments.FindByID(enrollmentID)
	if err != nil {
		if errors.Is(err, repository.ErrEnrollmentNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "enrollment not found", err)
		}
		return nil, err
	}
	if !enrollment.Attended() {
		return nil, domain.NewError(domain.KindState, "evaluation requires recorded presence")
	}

	evaluation := &domain.Evaluation{
		EnrollmentID: enrollmentID,
		Rating:       rating,
		Comment:      comment,
	}
	if err := s.evaluations.Upsert(evaluation); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "evaluation recorded",
		"enrollment_id", enrollmentID,
		"rating", rating,
	)
	return evaluation, nil
}

// EventAverage aggregates the ratings submitted for one event.
func (s *EvaluationService) EventAverage(ctx context.Context, eventID uint) (float64, int64, error) {
	return s.evaluations.AverageRating(eventID)
}
