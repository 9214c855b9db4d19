package publish_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"autopress/internal/domain/entity"
	"autopress/internal/usecase/publish"
	"autopress/tests/fixtures"
)

func newPipeline(repo *stubArticleRepo, poster publish.CrossPoster, now time.Time) *publish.Pipeline {
	sync := publish.NewExternalSync(repo, mirrorSettings(), nil, poster)
	sync.Clock = fixedClock(now)
	pipeline := publish.NewPipeline(repo, sync)
	pipeline.Clock = fixedClock(now)
	return pipeline
}

func TestPublish_StampsNowWhenNoPublishedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubArticleRepo{}
	poster := &stubCrossPoster{result: publish.CrossPostResult{Success: true}}
	pipeline := newPipeline(repo, poster, now)

	article := fixtures.NewArticle(7, fixtures.WithScheduledAt("2026-02-01T08:00:00Z"))
	if err := pipeline.Publish(context.Background(), article); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	calls := repo.callsFor(7)
	if len(calls) != 1 {
		t.Fatalf("patch calls = %d, want 1", len(calls))
	}
	patch := calls[0].patch
	if patch.Status == nil || *patch.Status != entity.StatusPublished {
		t.Errorf("patch.Status = %v, want published", patch.Status)
	}
	if patch.Finished == nil || !*patch.Finished {
		t.Errorf("patch.Finished = %v, want true", patch.Finished)
	}
	if patch.PublishedAt == nil || *patch.PublishedAt != now.Format(time.RFC3339) {
		t.Errorf("patch.PublishedAt = %v, want %q", patch.PublishedAt, now.Format(time.RFC3339))
	}
	if poster.calls != 1 {
		t.Errorf("cross-post calls = %d, want 1", poster.calls)
	}
}

func TestPublish_KeepsExistingPublishedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubArticleRepo{}
	pipeline := newPipeline(repo, nil, now)

	article := fixtures.NewArticle(7, fixtures.WithPublishedAt("2026-01-15T09:00:00Z"))
	if err := pipeline.Publish(context.Background(), article); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	patch := repo.callsFor(7)[0].patch
	if patch.PublishedAt == nil || *patch.PublishedAt != "2026-01-15T09:00:00Z" {
		t.Errorf("patch.PublishedAt = %v, want the article's own timestamp", patch.PublishedAt)
	}
}

func TestPublish_PatchFailureSkipsCrossPost(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubArticleRepo{patchErrBy: map[int64]error{7: errors.New("db down")}}
	poster := &stubCrossPoster{result: publish.CrossPostResult{Success: true}}
	pipeline := newPipeline(repo, poster, now)

	err := pipeline.Publish(context.Background(), fixtures.NewArticle(7))
	if err == nil {
		t.Fatal("Publish must fail when the state transition does not commit")
	}
	if poster.calls != 0 {
		t.Errorf("cross-post calls = %d, want 0 after failed publish", poster.calls)
	}
}

func TestPublish_CrossPostFailureDoesNotFailPublish(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubArticleRepo{}
	poster := &stubCrossPoster{err: errors.New("social API down")}
	pipeline := newPipeline(repo, poster, now)

	if err := pipeline.Publish(context.Background(), fixtures.NewArticle(7)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if poster.calls != 1 {
		t.Errorf("cross-post calls = %d, want 1", poster.calls)
	}
}

func TestPublish_CrossPostSeesUpdatedArticle(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := &stubArticleRepo{}
	poster := &stubCrossPoster{result: publish.CrossPostResult{Success: true}}
	pipeline := newPipeline(repo, poster, now)

	if err := pipeline.Publish(context.Background(), fixtures.NewArticle(7)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if poster.last == nil {
		t.Fatal("cross-post received no article")
	}
	if poster.last.Status != entity.StatusPublished {
		t.Errorf("cross-post received article with status %q, want published", poster.last.Status)
	}
}
