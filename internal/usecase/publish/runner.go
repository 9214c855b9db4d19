package publish

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"autopress/internal/domain/entity"
	"autopress/internal/repository"

	"github.com/google/uuid"
)

// CycleStats contains statistics about one publication cycle.
type CycleStats struct {
	Candidates int
	Due        int
	Published  int
	Failed     int
	Duration   time.Duration
}

// Runner executes one publication cycle: scan candidates, filter by due
// date, process due articles strictly in order.
type Runner struct {
	Articles repository.ArticleRepository
	Sync     *ExternalSync
	Pipeline *Pipeline
	Clock    func() time.Time
}

// NewRunner creates a Runner.
func NewRunner(articles repository.ArticleRepository, sync *ExternalSync, pipeline *Pipeline) *Runner {
	return &Runner{
		Articles: articles,
		Sync:     sync,
		Pipeline: pipeline,
		Clock:    time.Now,
	}
}

// RunOnce executes a single publication cycle and always returns stats.
//
// Draft and pending candidates are fetched separately and concatenated
// draft-first; due articles are processed sequentially in that order to
// keep external call concurrency at one. One article's failure never
// aborts the batch, and no failure inside the cycle escapes to the
// caller — the scheduler's single-flight guard must always be released.
func (r *Runner) RunOnce(ctx context.Context) (stats *CycleStats) {
	cycleID := uuid.New().String()
	logger := slog.Default().With(slog.String("cycle_id", cycleID))
	start := r.Clock()
	stats = &CycleStats{}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic in publish cycle",
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
		}
		stats.Duration = time.Since(start)
		logger.Info("publish cycle finished",
			slog.Int("candidates", stats.Candidates),
			slog.Int("due", stats.Due),
			slog.Int("published", stats.Published),
			slog.Int("failed", stats.Failed),
			slog.Duration("duration", stats.Duration))
	}()

	candidates, err := r.collectCandidates(ctx)
	if err != nil {
		logger.Warn("candidate scan failed", slog.Any("error", err))
		return stats
	}
	stats.Candidates = len(candidates)
	if len(candidates) == 0 {
		return stats
	}

	// One "now" snapshot for the whole cycle keeps the due filter
	// consistent across the batch.
	now := r.Clock()
	due := make([]*entity.Article, 0, len(candidates))
	for _, article := range candidates {
		if IsDue(article, now) {
			due = append(due, article)
		}
	}
	stats.Due = len(due)
	if len(due) == 0 {
		return stats
	}

	logger.Info("due articles found",
		slog.Int("candidates", stats.Candidates),
		slog.Int("due", stats.Due))

	for _, article := range due {
		if err := r.processArticle(ctx, article); err != nil {
			stats.Failed++
			logger.Warn("article publication failed",
				slog.Int64("article_id", article.ID),
				slog.Any("error", err))
			continue
		}
		stats.Published++
	}

	return stats
}

// collectCandidates fetches draft then pending articles. The concatenation
// order is part of the processing-order contract.
func (r *Runner) collectCandidates(ctx context.Context) ([]*entity.Article, error) {
	drafts, err := r.Articles.ListByStatus(ctx, entity.StatusDraft)
	if err != nil {
		return nil, fmt.Errorf("list draft articles: %w", err)
	}
	pending, err := r.Articles.ListByStatus(ctx, entity.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending articles: %w", err)
	}
	return append(drafts, pending...), nil
}

// processArticle runs one article through ensure-mirror and publish inside
// its own failure boundary, so a panic here is converted into an error and
// the batch continues.
func (r *Runner) processArticle(ctx context.Context, article *entity.Article) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic while processing article",
				slog.Int64("article_id", article.ID),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic while processing article %d: %v", article.ID, rec)
		}
	}()

	synced := r.Sync.EnsureMirrored(ctx, article)
	return r.Pipeline.Publish(ctx, synced)
}
