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

type ArticleInput struct {
	Title      string `validate:"required,max=200"`
	Subtitle   string `validate:"max=300"`
	Summary    string `validate:"max=500"`
	Body       string `validate:"required"`
	CategoryID uint   `validate:"required"`
	Featured   bool
	Tags       string `validate:"max=500"`
}

// ArticleService serves the news section: public reading plus the staff-side
// publishing lifecycle.
type ArticleService struct {
	articles repository.ArticleRepository
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

func NewArticleService(articles repository.ArticleRepository, validate *validator.Validate, logger *slog.Logger) *ArticleService {
	return &ArticleService{articles: articles, validate: validate, logger: logger, now: time.Now}
}

// ListPublished pages through published articles, newest first.
func (s *ArticleService) ListPublished(ctx context.Context, categoryID uint, page repository.PageRequest) (repository.PageResult[domain.Article], error) {
	return s.articles.List(repository.ArticleListFilter{
		Status:     domain.ArticlePublished,
		CategoryID: categoryID,
	}, page)
}

// Get returns a published article and counts the view. Staff may also read
// drafts.
func (s *ArticleService) Get(ctx context.Context, id uint, staff bool) (*domain.Article, error) {
	article, err := s.articles.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "article not found", err)
		}
		return nil, err
	}
	if article.Status != domain.ArticlePublished && !staff {
		return nil, domain.NewError(domain.KindNotFound, "article not found")
	}
	if article.Status == domain.ArticlePublished {
		if err := s.articles.IncrementViews(id); err != nil {
			s.logger.WarnContext(ctx, "view counter update failed", "article_id", id, "error", err)
		} else {
			article.Views++
		}
	}
	return article, nil
}

// Create stores a new draft article.
func (s *ArticleService) Create(ctx context.Context, authorID uint, in ArticleInput) (*domain.Article, error) {
	if err := validation.Validate(ctx, s.validate, in); err != nil {
		return nil, err
	}
	article := &domain.Article{
		Title:      in.Title,
		Subtitle:   in.Subtitle,
		Summary:    in.Summary,
		Body:       in.Body,
		AuthorID:   authorID,
		CategoryID: in.CategoryID,
		Status:     domain.ArticleDraft,
		Featured:   in.Featured,
		Tags:       in.Tags,
	}
	if err := s.articles.Create(article); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "article created", "article_id", article.ID, "author_id", authorID)
	return article, nil
}

// Update rewrites an article's editable fields.
func (s *ArticleService) Update(ctx context.Context, id uint, in ArticleInput) (*domain.Article, error) {
	if err := validation.Validate(ctx, s.validate, in); err != nil {
		return nil, err
	}
	current, err := s.articles.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "article not found", err)
		}
		return nil, err
	}
	article := &domain.Article{
		ID:         id,
		ImageKey:   current.ImageKey,
		Title:      in.Title,
		Subtitle:   in.Subtitle,
		Summary:    in.Summary,
		Body:       in.Body,
		CategoryID: in.CategoryID,
		Featured:   in.Featured,
		Tags:       in.Tags,
	}
	if err := s.articles.Update(article); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return nil, domain.WrapError(domain.KindNotFound, "article not found", err)
		}
		return nil, err
	}
	return s.articles.FindByID(id)
}

// SetImage points the article at a freshly uploaded image object.
func (s *ArticleService) SetImage(ctx context.Context, id uint, imageKey string) error {
	article, err := s.articles.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.WrapError(domain.KindNotFound, "article not found", err)
		}
		return err
	}
	article.ImageKey = imageKey
	return s.articles.Update(article)
}

// Publish makes a draft article visible and stamps its publication time.
func (s *ArticleService) Publish(ctx context.Context, id uint) error {
	article, err := s.articles.FindByID(id)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.WrapError(domain.KindNotFound, "article not found", err)
		}
		return err
	}
	if article.Status == domain.ArticlePublished {
		return nil
	}
	return s.articles.Publish(id, s.now().UTC())
}

// Archive hides a published article without deleting it.
func (s *ArticleService) Archive(ctx context.Context, id uint) error {
	if err := s.articles.SetStatus(id, domain.ArticleArchived); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return domain.WrapError(domain.KindNotFound, "article not found", err)
		}
		return err
	}
	return nil
}
