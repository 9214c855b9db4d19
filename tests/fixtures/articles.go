// Package fixtures provides reusable article builders for tests. This
// package eliminates test data duplication across test suites.
package fixtures

import (
	"fmt"
	"time"

	"autopress/internal/domain/entity"
)

// ArticleOption mutates a generated article.
type ArticleOption func(*entity.Article)

// WithStatus sets the article status.
func WithStatus(status string) ArticleOption {
	return func(a *entity.Article) { a.Status = status }
}

// WithScheduledAt sets the raw scheduled timestamp text.
func WithScheduledAt(raw string) ArticleOption {
	return func(a *entity.Article) { a.ScheduledAt = raw }
}

// WithPublishedAt sets the raw published timestamp text.
func WithPublishedAt(raw string) ArticleOption {
	return func(a *entity.Article) { a.PublishedAt = raw }
}

// WithDate sets the raw date text.
func WithDate(raw string) ArticleOption {
	return func(a *entity.Article) { a.Date = raw }
}

// WithExternalID marks the article as already mirrored.
func WithExternalID(id string) ArticleOption {
	return func(a *entity.Article) { a.ExternalID = id }
}

// WithFeatured marks the article as featured.
func WithFeatured() ArticleOption {
	return func(a *entity.Article) { a.Featured = entity.FeaturedYes }
}

// WithImage sets the article image URL.
func WithImage(url string) ArticleOption {
	return func(a *entity.Article) { a.Image = url }
}

// WithFinished sets the completion flag.
func WithFinished(finished bool) ArticleOption {
	return func(a *entity.Article) { a.Finished = finished }
}

// NewArticle generates a draft article with populated content fields. It
// carries no timestamp text, so it is a candidate but never due.
func NewArticle(id int64, opts ...ArticleOption) *entity.Article {
	a := &entity.Article{
		ID:          id,
		Title:       fmt.Sprintf("Article %d", id),
		Description: fmt.Sprintf("Description for article %d", id),
		Content:     fmt.Sprintf("Body text for article %d.", id),
		Hashtags:    "#go #testing",
		Status:      entity.StatusDraft,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DueArticle generates a draft article scheduled one hour before now.
func DueArticle(id int64, now time.Time, opts ...ArticleOption) *entity.Article {
	opts = append([]ArticleOption{
		WithScheduledAt(now.Add(-time.Hour).UTC().Format(time.RFC3339)),
	}, opts...)
	return NewArticle(id, opts...)
}

// FutureArticle generates a draft article scheduled one hour after now.
func FutureArticle(id int64, now time.Time, opts ...ArticleOption) *entity.Article {
	opts = append([]ArticleOption{
		WithScheduledAt(now.Add(time.Hour).UTC().Format(time.RFC3339)),
	}, opts...)
	return NewArticle(id, opts...)
}
