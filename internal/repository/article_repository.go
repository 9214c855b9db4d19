package repository

import (
	"context"

	"autopress/internal/domain/entity"
)

// ArticlePatch describes a partial update to an article. Nil fields are
// left untouched by the update.
type ArticlePatch struct {
	Status      *string
	Finished    *bool
	PublishedAt *string
	ExternalID  *string
	Source      *string
}

// IsEmpty reports whether the patch would change nothing.
func (p ArticlePatch) IsEmpty() bool {
	return p.Status == nil && p.Finished == nil && p.PublishedAt == nil &&
		p.ExternalID == nil && p.Source == nil
}

type ArticleRepository interface {
	// ListByStatus retrieves all articles with the given status, ordered by
	// id so that batches are deterministic across cycles.
	ListByStatus(ctx context.Context, status string) ([]*entity.Article, error)
	// Patch applies a partial update to the article and returns the updated
	// row. Returns entity.ErrArticleNotFound if no row matched, which
	// callers must treat as "the update did not take effect".
	Patch(ctx context.Context, id int64, patch ArticlePatch) (*entity.Article, error)
}
