package domain

import (
	"strings"
	"time"
)

// ArticleStatus is the publication lifecycle of a news article.
type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
	ArticleArchived  ArticleStatus = "archived"
)

// Article is a news post on the community site.
type Article struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Title       string        `gorm:"size:200;not null" json:"title"`
	Subtitle    string        `gorm:"size:300" json:"subtitle"`
	Summary     string        `gorm:"size:500" json:"summary"`
	Body        string        `gorm:"type:text;not null" json:"body"`
	ImageKey    string        `gorm:"size:512" json:"image_key"`
	AuthorID    uint          `gorm:"index;not null" json:"author_id"`
	CategoryID  uint          `gorm:"index;not null" json:"category_id"`
	Category    *Category     `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Status      ArticleStatus `gorm:"size:20;index;not null;default:'draft'" json:"status"`
	Featured    bool          `gorm:"not null;default:false" json:"featured"`
	PublishedAt time.Time     `gorm:"index" json:"published_at"`
	Views       uint          `gorm:"not null;default:0" json:"views"`
	Tags        string        `gorm:"size:500" json:"tags"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// TagList splits the comma-separated tag field into clean tags.
func (a *Article) TagList() []string {
	if a.Tags == "" {
		return nil
	}
	parts := strings.Split(a.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
