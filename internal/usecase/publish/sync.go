package publish

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"autopress/internal/domain/entity"
	"autopress/internal/repository"
)

// Settings provider and keys gating the tabular mirror integration.
const (
	MirrorProvider   = "airtable"
	MirrorAPIKeyName = "api_key"
	MirrorBaseIDName = "base_id"
	MirrorTableName  = "table_name"
)

// MirrorConfig carries the settings-sourced configuration for one mirror
// create-record call.
type MirrorConfig struct {
	APIKey string
	BaseID string
	Table  string
}

// MirrorRecord is the field payload mirrored for one article.
type MirrorRecord struct {
	Name        string
	Description string
	Body        string
	Featured    bool
	Finished    bool
	Hashtags    string
	Scheduled   string
	Date        string
}

// MirrorClient creates one record in the external tabular mirror and
// returns the created record's identifier.
type MirrorClient interface {
	CreateRecord(ctx context.Context, cfg MirrorConfig, record MirrorRecord) (string, error)
}

// CrossPostResult is the outcome reported by the social cross-post
// adapter. Failures travel in the value so callers handle both branches
// without exceptions.
type CrossPostResult struct {
	Success bool
	Message string
}

// CrossPoster posts a published article to the external social service.
type CrossPoster interface {
	PostArticle(ctx context.Context, article *entity.Article) (CrossPostResult, error)
}

// ExternalSync performs best-effort synchronization of articles to the
// external mirror and social service. No method ever fails its caller:
// every error path logs and falls back to returning the input unchanged.
type ExternalSync struct {
	Articles    repository.ArticleRepository
	Settings    repository.SettingRepository
	Mirror      MirrorClient
	CrossPoster CrossPoster
	Clock       func() time.Time
}

// NewExternalSync creates an ExternalSync. Mirror and CrossPoster may be
// nil to disable the respective integration.
func NewExternalSync(
	articles repository.ArticleRepository,
	settings repository.SettingRepository,
	mirror MirrorClient,
	crossPoster CrossPoster,
) *ExternalSync {
	return &ExternalSync{
		Articles:    articles,
		Settings:    settings,
		Mirror:      mirror,
		CrossPoster: crossPoster,
		Clock:       time.Now,
	}
}

// loadMirrorConfig reads the three settings gating the mirror. ok is false
// when any of them is absent, which means the integration is simply not
// configured.
func (s *ExternalSync) loadMirrorConfig(ctx context.Context) (MirrorConfig, bool, error) {
	var cfg MirrorConfig
	for _, entry := range []struct {
		key string
		dst *string
	}{
		{MirrorAPIKeyName, &cfg.APIKey},
		{MirrorBaseIDName, &cfg.BaseID},
		{MirrorTableName, &cfg.Table},
	} {
		value, err := s.Settings.Get(ctx, MirrorProvider, entry.key)
		if errors.Is(err, entity.ErrSettingNotFound) {
			return MirrorConfig{}, false, nil
		}
		if err != nil {
			return MirrorConfig{}, false, err
		}
		if value == "" {
			return MirrorConfig{}, false, nil
		}
		*entry.dst = value
	}
	return cfg, true, nil
}

// buildMirrorRecord maps an article onto the mirror's field payload.
// Scheduled falls back to now when the article has no resolvable due date,
// Date falls back to now when the article carries no date.
func (s *ExternalSync) buildMirrorRecord(article *entity.Article) MirrorRecord {
	now := s.Clock().UTC()

	scheduled := now
	if due, ok := ResolveDueDate(article); ok {
		scheduled = due
	}

	date := now
	if ts, ok := parseInstant(article.Date); ok {
		date = ts
	}

	return MirrorRecord{
		Name:        article.Title,
		Description: article.Description,
		Body:        article.Content,
		Featured:    article.IsFeatured(),
		Finished:    article.Status == entity.StatusPublished || article.Finished,
		Hashtags:    article.Hashtags,
		Scheduled:   scheduled.Format(time.RFC3339),
		Date:        date.Format(time.RFC3339),
	}
}

// EnsureMirrored makes sure the article exists in the tabular mirror.
//
// It is a no-op when the article already carries an ExternalID (create-once
// contract) or when the mirror integration is not configured. On success
// the article is patched with the created record's ID and the mirror name
// as Source, and the patched article is returned. Every failure — settings,
// network, storage, even a panic — is logged and the input article is
// returned unchanged; this method never fails the caller.
func (s *ExternalSync) EnsureMirrored(ctx context.Context, article *entity.Article) (result *entity.Article) {
	result = article
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while mirroring article",
				slog.Int64("article_id", article.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			result = article
		}
	}()

	if article.ExternalID != "" {
		return article
	}
	if s.Mirror == nil {
		return article
	}

	cfg, ok, err := s.loadMirrorConfig(ctx)
	if err != nil {
		slog.Warn("failed to load mirror settings",
			slog.Int64("article_id", article.ID),
			slog.Any("error", err))
		return article
	}
	if !ok {
		slog.Info("mirror integration not configured, skipping",
			slog.Int64("article_id", article.ID))
		return article
	}

	recordID, err := s.Mirror.CreateRecord(ctx, cfg, s.buildMirrorRecord(article))
	if err != nil {
		slog.Warn("mirror record creation failed",
			slog.Int64("article_id", article.ID),
			slog.Any("error", err))
		return article
	}
	if recordID == "" {
		slog.Warn("mirror response carried no record id",
			slog.Int64("article_id", article.ID))
		return article
	}

	source := MirrorProvider
	patched, err := s.Articles.Patch(ctx, article.ID, repository.ArticlePatch{
		ExternalID: &recordID,
		Source:     &source,
	})
	if err != nil {
		slog.Warn("failed to store mirror record id",
			slog.Int64("article_id", article.ID),
			slog.String("record_id", recordID),
			slog.Any("error", err))
		return article
	}

	slog.Info("article mirrored",
		slog.Int64("article_id", article.ID),
		slog.String("record_id", recordID))
	return patched
}

// CrossPost posts the (already published) article to the social service.
// The outcome is logged; nothing propagates to the caller — the publish
// that preceded this call is authoritative either way.
func (s *ExternalSync) CrossPost(ctx context.Context, article *entity.Article) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while cross-posting article",
				slog.Int64("article_id", article.ID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	if s.CrossPoster == nil {
		return
	}

	outcome, err := s.CrossPoster.PostArticle(ctx, article)
	switch {
	case err != nil:
		slog.Warn("cross-post failed",
			slog.Int64("article_id", article.ID),
			slog.Any("error", err))
	case !outcome.Success:
		slog.Warn("cross-post rejected",
			slog.Int64("article_id", article.ID),
			slog.String("reason", outcome.Message))
	default:
		slog.Info("article cross-posted",
			slog.Int64("article_id", article.ID),
			slog.String("title", article.Title))
	}
}
