package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"autopress/internal/domain/entity"
	"autopress/internal/repository"
)

// Pipeline performs the publish state transition for a single article and
// triggers the post-publish cross-post.
type Pipeline struct {
	Articles repository.ArticleRepository
	Sync     *ExternalSync
	Clock    func() time.Time
}

// NewPipeline creates a Pipeline.
func NewPipeline(articles repository.ArticleRepository, sync *ExternalSync) *Pipeline {
	return &Pipeline{
		Articles: articles,
		Sync:     sync,
		Clock:    time.Now,
	}
}

// Publish transitions the article to published and, once the transition is
// committed, cross-posts it.
//
// The storage patch sets status=published, finished=true and keeps the
// article's own PublishedAt when present, stamping now otherwise. If the
// patch does not take effect the article's pipeline aborts here and the
// cross-post is not attempted; the article stays a candidate and is retried
// next cycle. Cross-post failure never rolls the publish back.
func (p *Pipeline) Publish(ctx context.Context, article *entity.Article) error {
	publishedAt := article.PublishedAt
	if publishedAt == "" {
		publishedAt = p.Clock().UTC().Format(time.RFC3339)
	}

	status := entity.StatusPublished
	finished := true
	updated, err := p.Articles.Patch(ctx, article.ID, repository.ArticlePatch{
		Status:      &status,
		Finished:    &finished,
		PublishedAt: &publishedAt,
	})
	if err != nil {
		return fmt.Errorf("publish article %d: %w", article.ID, err)
	}

	slog.Info("article published",
		slog.Int64("article_id", updated.ID),
		slog.String("title", updated.Title),
		slog.String("published_at", updated.PublishedAt))

	p.Sync.CrossPost(ctx, updated)
	return nil
}
