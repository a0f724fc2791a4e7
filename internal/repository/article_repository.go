package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/DevDeP100/Shalom.pt/internal/domain"
	"github.com/DevDeP100/Shalom.pt/internal/observability"
)

var ErrArticleNotFound = errors.New("article not found")

// ArticleListFilter narrows article listings. Zero values mean "no
// constraint".
type ArticleListFilter struct {
	Status       domain.ArticleStatus
	CategoryID   uint
	FeaturedOnly bool
}

type ArticleRepository interface {
	Create(article *domain.Article) error
	Update(article *domain.Article) error
	FindByID(id uint) (*domain.Article, error)
	List(filter ArticleListFilter, page PageRequest) (PageResult[domain.Article], error)
	IncrementViews(id uint) error
	SetStatus(id uint, status domain.ArticleStatus) error
	Publish(id uint, at time.Time) error
}

type GormArticleRepository struct{ db *gorm.DB }

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &GormArticleRepository{db: db}
}

func (r *GormArticleRepository) Create(article *domain.Article) error {
	if err := r.db.Create(article).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "create", "success")
	return nil
}

func (r *GormArticleRepository) Update(article *domain.Article) error {
	res := r.db.Model(&domain.Article{}).Where("id = ?", article.ID).Updates(map[string]any{
		"title":       article.Title,
		"subtitle":    article.Subtitle,
		"summary":     article.Summary,
		"body":        article.Body,
		"image_key":   article.ImageKey,
		"category_id": article.CategoryID,
		"featured":    article.Featured,
		"tags":        article.Tags,
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "update", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "article", "update", "not_found")
		return ErrArticleNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "update", "success")
	return nil
}

func (r *GormArticleRepository) FindByID(id uint) (*domain.Article, error) {
	var article domain.Article
	err := r.db.Preload("Category").First(&article, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(context.Background(), "article", "find_by_id", "not_found")
			return nil, ErrArticleNotFound
		}
		observability.RecordRepositoryOperation(context.Background(), "article", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "find_by_id", "success")
	return &article, nil
}

func (r *GormArticleRepository) List(filter ArticleListFilter, page PageRequest) (PageResult[domain.Article], error) {
	page = normalizePageRequest(page)

	q := r.db.Model(&domain.Article{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != 0 {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.FeaturedOnly {
		q = q.Where("featured = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "list", "error")
		return PageResult[domain.Article]{}, err
	}

	var articles []domain.Article
	err := q.Preload("Category").
		Order("published_at desc").Order("id desc").
		Limit(page.PageSize).Offset(page.Offset()).
		Find(&articles).Error
	if err != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "list", "error")
		return PageResult[domain.Article]{}, err
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "list", "success")
	return PageResult[domain.Article]{
		Items:      articles,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      total,
		TotalPages: calcTotalPages(total, page.PageSize),
	}, nil
}

func (r *GormArticleRepository) IncrementViews(id uint) error {
	res := r.db.Model(&domain.Article{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "increment_views", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "article", "increment_views", "not_found")
		return ErrArticleNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "increment_views", "success")
	return nil
}

// Publish stamps the publication time along with the status flip.
func (r *GormArticleRepository) Publish(id uint, at time.Time) error {
	res := r.db.Model(&domain.Article{}).Where("id = ?", id).Updates(map[string]any{
		"status":       domain.ArticlePublished,
		"published_at": at,
	})
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "publish", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "article", "publish", "not_found")
		return ErrArticleNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "publish", "success")
	return nil
}

func (r *GormArticleRepository) SetStatus(id uint, status domain.ArticleStatus) error {
	res := r.db.Model(&domain.Article{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		observability.RecordRepositoryOperation(context.Background(), "article", "set_status", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(context.Background(), "article", "set_status", "not_found")
		return ErrArticleNotFound
	}
	observability.RecordRepositoryOperation(context.Background(), "article", "set_status", "success")
	return nil
}
